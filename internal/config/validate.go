package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Validate checks configuration invariants and returns actionable errors.
// The working directory is not checked here; it is required when the CLI
// session is first acquired.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error

	if cfg.PrismaticURL != "" {
		if err := ValidateURL(cfg.PrismaticURL); err != nil {
			errs = append(errs, &Error{Key: "prismatic_url", Err: err})
		}
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
			errs = append(errs, Errorf("log.level", "invalid level %q", cfg.Log.Level))
		}
	}

	return errors.Join(errs...)
}

// ValidateURL requires an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q", raw)
	}
	if !strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q is missing a host", raw)
	}
	return nil
}
