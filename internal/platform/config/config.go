package config

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 75 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultRequestTimeout  = 60 * time.Second
	defaultLogLevel        = "info"
	defaultBaseURL         = "https://www.redoxdigital.com.au"
	defaultPublicDir       = "public"
	defaultImageModel      = "imagen-4.0-generate-001"
	defaultImageTimeout    = 60 * time.Second
	defaultImageSink       = ImageSinkFile
	defaultContactSink     = ContactSinkLog
	defaultLeadCollection  = "leads"
	defaultContactPerMin   = 5
	defaultContentCacheTTL = 5 * time.Minute
)

// Image sink kinds.
const (
	ImageSinkFile = "file"
	ImageSinkGCS  = "gcs"
	ImageSinkS3   = "s3"
)

// Contact sink kinds.
const (
	ContactSinkLog       = "log"
	ContactSinkPubSub    = "pubsub"
	ContactSinkFirestore = "firestore"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Site      SiteConfig
	ImageGen  ImageGenConfig
	Contact   ContactConfig
	Analytics AnalyticsConfig
	Auth      AuthConfig
	GCP       GCPConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// SiteConfig locates site content on disk.
type SiteConfig struct {
	BaseURL         string
	PublicDir       string
	ImagesDir       string
	ContentDir      string
	TemplatesDir    string
	ContentCacheTTL time.Duration
	DevMode         bool
}

// ImageGenConfig configures the image model and where generated files land.
type ImageGenConfig struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	Sink          string
	GCSBucket     string
	S3Bucket      string
	S3Region      string
	PublicBaseURL string
}

// ContactConfig selects where accepted leads go.
type ContactConfig struct {
	Sink               string
	Topic              string
	Collection         string
	RateLimitPerMinute int
}

// AnalyticsConfig holds tag identifiers rendered after consent.
type AnalyticsConfig struct {
	GA4MeasurementID string
	GTMContainerID   string
}

// AuthConfig controls Firebase author authentication.
type AuthConfig struct {
	ProjectID       string
	CredentialsFile string
	RequireAuthor   bool
}

// GCPConfig carries the project shared by GCP clients.
type GCPConfig struct {
	ProjectID             string
	FirestoreEmulatorHost string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

// MissingSecretsError indicates that one or more required secrets resolved to nothing.
type MissingSecretsError struct {
	names []string
}

func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("missing required secrets [%s]", strings.Join(e.RedactedNames(), ", "))
}

// Names returns the config field names of the missing secrets.
func (e *MissingSecretsError) Names() []string {
	out := append([]string(nil), e.names...)
	sort.Strings(out)
	return out
}

// RedactedNames returns short hashes of the missing names, safe for logs.
func (e *MissingSecretsError) RedactedNames() []string {
	out := make([]string, 0, len(e.names))
	for _, name := range e.names {
		sum := sha256.Sum256([]byte(name))
		out = append(out, hex.EncodeToString(sum[:8]))
	}
	sort.Strings(out)
	return out
}

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile         string
	envMap          map[string]string
	useSystemEnv    bool
	secret          SecretResolver
	requiredSecrets []string
}

// WithEnvFile overrides the .env file path. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects values that win over the OS environment and the .env file.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv stops Load from reading the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) { o.secret = resolver }
}

// WithRequiredSecrets marks secret fields (e.g. "ImageGen.APIKey") as mandatory.
func WithRequiredSecrets(names ...string) Option {
	return func(o *loaderOptions) { o.requiredSecrets = append(o.requiredSecrets, names...) }
}

// Lookup returns a single value using the same precedence as Load. cmd/site uses it to
// read the project id needed to build the secret resolver before Load runs.
func Lookup(key string, opts ...Option) (string, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	lookup, err := options.lookup()
	if err != nil {
		return "", err
	}
	value, _ := lookup(key)
	return value, nil
}

// Load assembles the site configuration from defaults, .env, the environment and secrets.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	lookup, err := options.lookup()
	if err != nil {
		return Config{}, err
	}

	publicDir := stringWithDefault(lookup, "SITE_PUBLIC_DIR", defaultPublicDir)
	cfg := Config{
		Server: ServerConfig{
			Port:           stringWithDefault(lookup, "PORT", stringWithDefault(lookup, "SITE_SERVER_PORT", defaultPort)),
			ReadTimeout:    durationWithDefault(lookup, "SITE_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:   durationWithDefault(lookup, "SITE_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:    durationWithDefault(lookup, "SITE_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout: durationWithDefault(lookup, "SITE_SERVER_REQUEST_TIMEOUT", defaultRequestTimeout),
			LogLevel:       strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
		Site: SiteConfig{
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", defaultBaseURL), "/"),
			PublicDir:       publicDir,
			ImagesDir:       stringWithDefault(lookup, "SITE_IMAGES_DIR", filepath.Join(publicDir, "images")),
			ContentDir:      stringWithDefault(lookup, "SITE_CONTENT_DIR", ""),
			TemplatesDir:    stringWithDefault(lookup, "SITE_TEMPLATES_DIR", ""),
			ContentCacheTTL: durationWithDefault(lookup, "SITE_CONTENT_CACHE_TTL", defaultContentCacheTTL),
			DevMode:         boolWithDefault(lookup, "SITE_DEV_MODE", false),
		},
		ImageGen: ImageGenConfig{
			APIKey:        stringWithDefault(lookup, "GEMINI_API_KEY", ""),
			Model:         stringWithDefault(lookup, "SITE_IMAGEGEN_MODEL", defaultImageModel),
			Timeout:       durationWithDefault(lookup, "SITE_IMAGEGEN_TIMEOUT", defaultImageTimeout),
			Sink:          strings.ToLower(stringWithDefault(lookup, "SITE_IMAGEGEN_SINK", defaultImageSink)),
			GCSBucket:     stringWithDefault(lookup, "SITE_IMAGEGEN_GCS_BUCKET", ""),
			S3Bucket:      stringWithDefault(lookup, "SITE_IMAGEGEN_S3_BUCKET", ""),
			S3Region:      stringWithDefault(lookup, "SITE_IMAGEGEN_S3_REGION", ""),
			PublicBaseURL: strings.TrimRight(stringWithDefault(lookup, "SITE_IMAGEGEN_PUBLIC_BASE_URL", ""), "/"),
		},
		Contact: ContactConfig{
			Sink:               strings.ToLower(stringWithDefault(lookup, "SITE_CONTACT_SINK", defaultContactSink)),
			Topic:              stringWithDefault(lookup, "SITE_CONTACT_TOPIC", ""),
			Collection:         stringWithDefault(lookup, "SITE_CONTACT_COLLECTION", defaultLeadCollection),
			RateLimitPerMinute: intWithDefault(lookup, "SITE_CONTACT_RATELIMIT_PER_MIN", defaultContactPerMin),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "SITE_ANALYTICS_GA4_ID", ""),
			GTMContainerID:   stringWithDefault(lookup, "SITE_ANALYTICS_GTM_ID", ""),
		},
		Auth: AuthConfig{
			ProjectID:       stringWithDefault(lookup, "SITE_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "SITE_FIREBASE_CREDENTIALS_FILE", ""),
			RequireAuthor:   boolWithDefault(lookup, "SITE_AUTH_REQUIRE_AUTHOR", false),
		},
		GCP: GCPConfig{
			ProjectID:             stringWithDefault(lookup, "SITE_GCP_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			FirestoreEmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
		},
	}

	if cfg.Auth.ProjectID == "" {
		cfg.Auth.ProjectID = cfg.GCP.ProjectID
	}

	resolved := make(map[string]string)
	secretFields := []struct {
		name  string
		field *string
	}{
		{"ImageGen.APIKey", &cfg.ImageGen.APIKey},
	}
	for _, target := range secretFields {
		value, err := resolveSecret(ctx, *target.field, options.secret)
		if err != nil {
			return Config{}, err
		}
		*target.field = value
		resolved[target.name] = strings.TrimSpace(value)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	if missing := findMissingSecrets(options.requiredSecrets, resolved); missing != nil {
		return Config{}, missing
	}
	return cfg, nil
}

func defaultOptions() loaderOptions {
	return loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
		secret: SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
			return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
		}),
	}
}

func (o loaderOptions) lookup() (func(string) (string, bool), error) {
	dotEnv, err := loadDotEnv(o.envFile)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		if value, ok := o.envMap[key]; ok {
			return value, true
		}
		if o.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		value, ok := dotEnv[key]
		return value, ok
	}, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}
	if cfg.Server.RequestTimeout <= 0 {
		invalid = append(invalid, "Server.RequestTimeout")
	}
	if !strings.HasPrefix(cfg.Site.BaseURL, "http://") && !strings.HasPrefix(cfg.Site.BaseURL, "https://") {
		invalid = append(invalid, "Site.BaseURL")
	}
	if cfg.ImageGen.Timeout <= 0 {
		invalid = append(invalid, "ImageGen.Timeout")
	}
	switch cfg.ImageGen.Sink {
	case ImageSinkFile:
		if cfg.Site.ImagesDir == "" {
			invalid = append(invalid, "Site.ImagesDir")
		}
	case ImageSinkGCS:
		if cfg.ImageGen.GCSBucket == "" {
			invalid = append(invalid, "ImageGen.GCSBucket")
		}
	case ImageSinkS3:
		if cfg.ImageGen.S3Bucket == "" {
			invalid = append(invalid, "ImageGen.S3Bucket")
		}
	default:
		invalid = append(invalid, "ImageGen.Sink")
	}
	switch cfg.Contact.Sink {
	case ContactSinkLog:
	case ContactSinkPubSub:
		if cfg.Contact.Topic == "" {
			invalid = append(invalid, "Contact.Topic")
		}
		if cfg.GCP.ProjectID == "" {
			invalid = append(invalid, "GCP.ProjectID")
		}
	case ContactSinkFirestore:
		if cfg.Contact.Collection == "" {
			invalid = append(invalid, "Contact.Collection")
		}
		if cfg.GCP.ProjectID == "" {
			invalid = append(invalid, "GCP.ProjectID")
		}
	default:
		invalid = append(invalid, "Contact.Sink")
	}
	if cfg.Contact.RateLimitPerMinute < 0 {
		invalid = append(invalid, "Contact.RateLimitPerMinute")
	}
	if cfg.Auth.RequireAuthor && cfg.Auth.ProjectID == "" {
		invalid = append(invalid, "Auth.ProjectID")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	ref := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: ref, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, ref)
	if err != nil {
		return "", &SecretError{Ref: ref, Err: err}
	}
	return secret, nil
}

func findMissingSecrets(required []string, resolved map[string]string) *MissingSecretsError {
	var missing []string
	seen := make(map[string]struct{})
	for _, name := range required {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if resolved[name] == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingSecretsError{names: missing}
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(trimmed, "sm://"); ok {
		return "secret://" + rest
	}
	return trimmed
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
