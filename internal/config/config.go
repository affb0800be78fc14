// Package config reads the server configuration from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sakif/moodart/internal/artgen"
	"github.com/sakif/moodart/internal/hosting"
)

// Hosting back-ends.
const (
	HostingS3       = "s3"
	HostingSupabase = "supabase"
)

type Config struct {
	Port     int
	LogLevel slog.Level

	// DBPath and JWTSecret are required.
	DBPath    string
	JWTSecret string

	ProviderURL   string
	ProviderToken string
	MockDelay     time.Duration

	HostingProvider string
	S3              hosting.S3Config
	SupabaseURL     string
	SupabaseKey     string
	SupabaseBucket  string
}

// Load reads the given env files (".env" when none are named), then the
// environment. Missing files are skipped.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (*Config, error) {
	c := &Config{
		DBPath:          os.Getenv("DB_PATH"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ProviderURL:     os.Getenv("ART_PROVIDER_URL"),
		ProviderToken:   os.Getenv("ART_PROVIDER_TOKEN"),
		HostingProvider: strings.ToLower(getEnv("HOSTING_PROVIDER", HostingS3)),
		S3: hosting.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
		},
		SupabaseURL:    os.Getenv("SUPABASE_URL"),
		SupabaseKey:    os.Getenv("SUPABASE_KEY"),
		SupabaseBucket: os.Getenv("SUPABASE_BUCKET"),
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("config: invalid PORT %q", os.Getenv("PORT"))
	}
	c.Port = port

	if err := c.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("config: invalid LOG_LEVEL: %w", err)
	}

	// MOCK_DELAY can lengthen the placeholder wait but never shorten it.
	delay, err := time.ParseDuration(getEnv("MOCK_DELAY", artgen.DefaultMockDelay.String()))
	if err != nil {
		return nil, fmt.Errorf("config: invalid MOCK_DELAY %q", os.Getenv("MOCK_DELAY"))
	}
	if delay < artgen.DefaultMockDelay {
		return nil, fmt.Errorf("config: MOCK_DELAY %s is below the minimum of %s", delay, artgen.DefaultMockDelay)
	}
	c.MockDelay = delay

	return c, nil
}

// Validate reports every missing or malformed required value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 characters"))
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together"))
	}
	switch c.HostingProvider {
	case HostingS3, HostingSupabase:
	default:
		errs = append(errs, fmt.Errorf("HOSTING_PROVIDER must be %q or %q, got %q",
			HostingS3, HostingSupabase, c.HostingProvider))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// HostingConfigured reports whether the selected hosting back-end has
// enough settings to upload. S3 needs only a bucket: without static keys
// the default AWS credential chain (environment, shared config, instance
// role) supplies them.
func (c *Config) HostingConfigured() bool {
	switch c.HostingProvider {
	case HostingSupabase:
		return c.SupabaseURL != "" && c.SupabaseKey != "" && c.SupabaseBucket != ""
	case HostingS3:
		return c.S3.Bucket != ""
	default:
		return false
	}
}

// ArtGen is the generator's view of the configuration.
func (c *Config) ArtGen() artgen.Config {
	return artgen.Config{
		ProviderURL:   c.ProviderURL,
		ProviderToken: c.ProviderToken,
		MockDelay:     c.MockDelay,
		Folder:        artgen.DefaultFolder,
		CollectionTag: artgen.DefaultCollectionTag,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
