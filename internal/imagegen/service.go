package imagegen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricNamespace = "github.com/RedOxDigital/red-ox-digital-sub001/internal/imagegen"

	loggerEventRequested = "imagegen.generate.requested"
	loggerEventCompleted = "imagegen.generate.completed"
	loggerEventFailed    = "imagegen.generate.failed"
)

// DefaultAspectRatio is used when the request leaves AspectRatio empty.
const DefaultAspectRatio = "16:9"

// AspectRatios lists the ratios the model accepts.
var AspectRatios = []string{"1:1", "16:9", "9:16", "4:3", "3:4"}

// BrandSuffix is appended to prompts unless branding is disabled.
const BrandSuffix = ", professional commercial photography, bold crimson red (#B3121B) accent colour, " +
	"set in Moreton Bay, Queensland, Australia, bright natural light, clean modern composition, no text or logos"

// Request asks for one image.
type Request struct {
	Prompt          string `json:"prompt,omitempty"`
	Category        string `json:"category,omitempty"`
	Subcategory     string `json:"subcategory,omitempty"`
	Filename        string `json:"filename"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	EnhanceBranding *bool  `json:"enhanceBranding,omitempty"`
}

// Result describes a stored image.
type Result struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	MIMEType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Prompt   string `json:"prompt"`
}

// ModelRequest is what the service sends to the external model.
type ModelRequest struct {
	Prompt      string
	AspectRatio string
}

// Image is raw model output.
type Image struct {
	Data     []byte
	MIMEType string
}

// ErrNoImage is returned by a Model when the response carried no images.
var ErrNoImage = errors.New("imagegen: model returned no images")

// Model generates one image per call.
type Model interface {
	GenerateImage(ctx context.Context, req ModelRequest) (Image, error)
}

// Sink persists image bytes under name and returns the public path.
type Sink interface {
	Put(ctx context.Context, name, mimeType string, data []byte) (string, error)
}

// ServiceDeps wires the generation service.
type ServiceDeps struct {
	Model     Model
	Sink      Sink
	Catalogue *Catalogue
	Meter     metric.Meter
	Clock     func() time.Time
	IDGen     func() string
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

// Service resolves prompts, calls the model once and stores the result.
type Service struct {
	model     Model
	sink      Sink
	catalogue *Catalogue
	clock     func() time.Time
	idgen     func() string
	logger    func(context.Context, string, map[string]any)
	latency   metric.Float64Histogram
}

// NewService constructs a Service. A nil Model is allowed; every Generate call then fails
// as an upstream failure.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Sink == nil {
		return nil, errors.New("imagegen service: sink is required")
	}
	catalogue := deps.Catalogue
	if catalogue == nil {
		catalogue = DefaultCatalogue()
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
	meter := deps.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	latency, err := meter.Float64Histogram(
		"imagegen.generate.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for image generation requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("imagegen service: register latency metric: %w", err)
	}
	return &Service{
		model:     deps.Model,
		sink:      deps.Sink,
		catalogue: catalogue,
		clock:     clock,
		idgen:     idgen,
		logger:    logger,
		latency:   latency,
	}, nil
}

// Catalogue exposes the prompt catalogue.
func (s *Service) Catalogue() *Catalogue {
	return s.catalogue
}

// ResolvePrompt picks the explicit prompt, else the catalogue entry, then applies branding.
func (s *Service) ResolvePrompt(req Request) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		category := strings.TrimSpace(req.Category)
		sub := strings.TrimSpace(req.Subcategory)
		if category == "" || sub == "" {
			return "", invalidInput("prompt or category/subcategory required")
		}
		found, ok := s.catalogue.Lookup(category, sub)
		if !ok {
			return "", invalidInput(fmt.Sprintf("Unknown prompt category: %s/%s", category, sub))
		}
		prompt = found
	}
	if req.EnhanceBranding == nil || *req.EnhanceBranding {
		prompt += BrandSuffix
	}
	return prompt, nil
}

// Generate runs one request end to end. There is no retry and no coordination between
// concurrent requests for the same filename; the last write wins.
func (s *Service) Generate(ctx context.Context, req Request) (result Result, err error) {
	start := s.clock()
	id := s.idgen()
	defer func() {
		s.record(ctx, start, err)
	}()

	filename, err := validateFilename(req.Filename)
	if err != nil {
		return Result{}, err
	}
	prompt, err := s.ResolvePrompt(req)
	if err != nil {
		return Result{}, err
	}
	ratio, err := validateAspectRatio(req.AspectRatio)
	if err != nil {
		return Result{}, err
	}

	s.logger(ctx, loggerEventRequested, map[string]any{
		"generationId": id,
		"filename":     filename,
		"category":     req.Category,
		"subcategory":  req.Subcategory,
		"aspectRatio":  ratio,
	})

	if s.model == nil {
		return Result{}, s.fail(ctx, id, upstreamFailure("image model is not configured", nil))
	}
	img, err := s.model.GenerateImage(ctx, ModelRequest{Prompt: prompt, AspectRatio: ratio})
	if err != nil {
		if errors.Is(err, ErrNoImage) {
			return Result{}, s.fail(ctx, id, upstreamFailure("No image generated", err))
		}
		return Result{}, s.fail(ctx, id, upstreamFailure(err.Error(), err))
	}
	if len(img.Data) == 0 || strings.TrimSpace(img.MIMEType) == "" {
		return Result{}, s.fail(ctx, id, upstreamFailure("Unexpected response format", nil))
	}

	name := OutputName(filename, img.MIMEType)
	publicPath, err := s.sink.Put(ctx, name, img.MIMEType, img.Data)
	if err != nil {
		return Result{}, s.fail(ctx, id, upstreamFailure(err.Error(), err))
	}

	result = Result{
		ID:       id,
		Path:     publicPath,
		MIMEType: img.MIMEType,
		Size:     int64(len(img.Data)),
		Prompt:   prompt,
	}
	result.Width, result.Height, _ = Dimensions(img.Data)

	s.logger(ctx, loggerEventCompleted, map[string]any{
		"generationId": id,
		"path":         result.Path,
		"mimeType":     result.MIMEType,
		"size":         result.Size,
	})
	return result, nil
}

func (s *Service) fail(ctx context.Context, id string, e *Error) error {
	s.logger(ctx, loggerEventFailed, map[string]any{
		"generationId": id,
		"kind":         string(e.Kind),
		"error":        e.Message,
	})
	return e
}

func (s *Service) record(ctx context.Context, start time.Time, err error) {
	if s.latency == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = string(KindOf(err))
	}
	elapsed := s.clock().Sub(start)
	s.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func validateFilename(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalidInput("filename is required")
	}
	if strings.ContainsAny(value, "/\\") {
		return "", invalidInput("filename contains invalid path characters")
	}
	if strings.Contains(value, "..") || strings.HasPrefix(value, ".") {
		return "", invalidInput("filename contains invalid traversal sequence")
	}
	return value, nil
}

func validateAspectRatio(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultAspectRatio, nil
	}
	for _, r := range AspectRatios {
		if r == value {
			return value, nil
		}
	}
	return "", invalidInput(fmt.Sprintf("aspectRatio must be one of %s", strings.Join(AspectRatios, ", ")))
}
