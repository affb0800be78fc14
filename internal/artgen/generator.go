// Package artgen turns a text prompt into a hosted image URL.
//
// With a provider URL, a provider token and an uploader configured, the
// prompt is sent to the text-to-image provider and the returned image is
// uploaded through a hosting.Uploader. Otherwise a placeholder image is
// chosen from the prompt's leading mood after a fixed delay, and no network
// call is made.
package artgen

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/moodart/internal/hosting"
)

const (
	DefaultMockDelay     = 3 * time.Second
	DefaultFolder        = "moodart"
	DefaultCollectionTag = "mood-art"
)

// Config is everything the Generator needs to know about its environment.
type Config struct {
	ProviderURL   string
	ProviderToken string
	// MockDelay is how long the mock path waits before answering.
	MockDelay time.Duration
	// Folder and CollectionTag organise uploads at the hosting provider.
	Folder        string
	CollectionTag string
}

// Generator resolves prompts to image URLs.
type Generator struct {
	cfg      Config
	uploader hosting.Uploader
	provider *provider
	logger   *slog.Logger
	sleep    func(time.Duration)
}

// Option customises a Generator.
type Option func(*generatorOptions)

type generatorOptions struct {
	httpClient *http.Client
	sleep      func(time.Duration)
}

// WithHTTPClient sets the base client used to reach the provider.
func WithHTTPClient(c *http.Client) Option {
	return func(o *generatorOptions) { o.httpClient = c }
}

// WithSleep replaces time.Sleep for the mock delay.
func WithSleep(fn func(time.Duration)) Option {
	return func(o *generatorOptions) { o.sleep = fn }
}

// New builds a Generator. uploader may be nil, which forces the mock path.
func New(cfg Config, uploader hosting.Uploader, logger *slog.Logger, opts ...Option) *Generator {
	o := generatorOptions{sleep: time.Sleep}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	if cfg.CollectionTag == "" {
		cfg.CollectionTag = DefaultCollectionTag
	}

	g := &Generator{
		cfg:      cfg,
		uploader: uploader,
		logger:   logger,
		sleep:    o.sleep,
	}
	if cfg.ProviderURL != "" && cfg.ProviderToken != "" {
		g.provider = newProvider(cfg.ProviderURL, cfg.ProviderToken, o.httpClient)
	}
	return g
}

// Mocked reports whether Generate will use placeholder images.
func (g *Generator) Mocked() bool {
	return g.provider == nil || g.uploader == nil
}

// Generate returns the public URL of an image for prompt.
//
// A blank prompt yields ErrInvalidPrompt. Failures on the real path are
// *Error values; nothing is retried.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrInvalidPrompt
	}

	if g.Mocked() {
		return g.mock(prompt), nil
	}

	contentType, data, err := g.provider.generate(ctx, prompt)
	if err != nil {
		kind, _ := KindOf(err)
		g.logger.Error("image generation failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
		return "", err
	}

	url, err := g.uploader.Upload(ctx, hosting.Upload{
		DataURI: hosting.EncodeDataURI(contentType, data),
		Folder:  g.cfg.Folder,
		Tags:    []string{leadingKeyword(prompt), g.cfg.CollectionTag},
	})
	if err != nil {
		g.logger.Error("image upload failed", slog.String("error", err.Error()))
		return "", generationFailure(err)
	}

	g.logger.Info("image generated",
		slog.String("url", url),
		slog.Int("bytes", len(data)),
	)
	return url, nil
}

// mock waits the full delay even if the caller goes away.
func (g *Generator) mock(prompt string) string {
	if g.cfg.MockDelay > 0 {
		g.sleep(g.cfg.MockDelay)
	}
	url := SelectMock(prompt)
	g.logger.Debug("served mock image", slog.String("url", url))
	return url
}
