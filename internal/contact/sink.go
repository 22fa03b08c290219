package contact

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// LogSink records leads in the application log only.
type LogSink struct {
	Logger *zap.Logger
}

// SaveLead implements LeadSink.
func (s LogSink) SaveLead(ctx context.Context, lead Lead) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("contact lead received",
		zap.String("leadId", lead.ID),
		zap.String("source", lead.Source),
		zap.Time("submittedAt", lead.SubmittedAt),
	)
	return nil
}

// MultiSink fans a lead out to several sinks and joins their errors.
type MultiSink []LeadSink

// SaveLead implements LeadSink.
func (m MultiSink) SaveLead(ctx context.Context, lead Lead) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.SaveLead(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
