package contact

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
)

const (
	loggerEventRejected = "contact.submit.rejected"
	loggerEventAccepted = "contact.submit.accepted"
	loggerEventFailed   = "contact.submit.failed"
)

var (
	// ErrInvalidSubmission wraps validation failures returned by Submit.
	ErrInvalidSubmission = errors.New("contact: invalid submission")
	// ErrSinkFailure indicates the lead could not be handed off.
	ErrSinkFailure = errors.New("contact: lead sink failure")
)

// ValidationError carries every failing field of a rejected submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("contact: invalid fields: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidSubmission }

// Lead is an accepted contact submission.
type Lead struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	Email       string    `json:"email" firestore:"email"`
	Phone       string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Message     string    `json:"message" firestore:"message"`
	Source      string    `json:"source,omitempty" firestore:"source,omitempty"`
	RemoteIP    string    `json:"remoteIp,omitempty" firestore:"remoteIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty" firestore:"userAgent,omitempty"`
	SubmittedAt time.Time `json:"submittedAt" firestore:"submittedAt"`
}

// LeadSink receives accepted leads.
type LeadSink interface {
	SaveLead(ctx context.Context, lead Lead) error
}

// Submission is a form post plus request metadata.
type Submission struct {
	Values    Values
	Source    string
	RemoteIP  string
	UserAgent string
}

// ServiceDeps wires the contact service.
type ServiceDeps struct {
	Sink   LeadSink
	Clock  func() time.Time
	IDGen  func() string
	Logger func(ctx context.Context, event string, fields map[string]any)
}

// Service validates submissions and forwards leads to a sink.
type Service struct {
	sink   LeadSink
	clock  func() time.Time
	idgen  func() string
	policy *bluemonday.Policy
	logger func(context.Context, string, map[string]any)
}

// NewService constructs a contact Service.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Sink == nil {
		return nil, errors.New("contact service: sink is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idgen := deps.IDGen
	if idgen == nil {
		idgen = func() string {
			return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Service{
		sink: deps.Sink,
		clock: func() time.Time {
			return clock().UTC()
		},
		idgen:  idgen,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}, nil
}

// Submit validates the submission, strips markup from free text and hands the lead to the sink.
// Validation failures return a *ValidationError.
func (s *Service) Submit(ctx context.Context, sub Submission) (Lead, error) {
	res := Validate(sub.Values)
	if !res.OK() {
		s.logger(ctx, loggerEventRejected, map[string]any{
			"fields": res.FieldMap(),
			"source": sub.Source,
		})
		return Lead{}, &ValidationError{Fields: res.Errors}
	}

	lead := Lead{
		ID:          s.idgen(),
		Name:        s.plainText(res.Values.Name),
		Email:       strings.TrimSpace(res.Values.Email),
		Phone:       phoneSeparators.Replace(strings.TrimSpace(res.Values.Phone)),
		Message:     s.plainText(res.Values.Message),
		Source:      strings.TrimSpace(sub.Source),
		RemoteIP:    sub.RemoteIP,
		UserAgent:   sub.UserAgent,
		SubmittedAt: s.clock(),
	}
	if err := s.sink.SaveLead(ctx, lead); err != nil {
		s.logger(ctx, loggerEventFailed, map[string]any{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
		return Lead{}, fmt.Errorf("%w: %v", ErrSinkFailure, err)
	}
	s.logger(ctx, loggerEventAccepted, map[string]any{
		"leadId":   lead.ID,
		"source":   lead.Source,
		"hasPhone": lead.Phone != "",
	})
	return lead, nil
}

// plainText strips markup and decodes the entities the strict policy escapes.
func (s *Service) plainText(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
