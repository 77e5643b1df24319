package service

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// LinkBuilder normalises admin-entered link settings into usable URLs.
type LinkBuilder struct {
	logger *zap.Logger
}

// NewLinkBuilder constructs LinkBuilder.
func NewLinkBuilder(logger *zap.Logger) *LinkBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkBuilder{logger: logger}
}

// Build returns a normalised link and true, or false when the value is empty
// or not a usable link. Absolute URLs must be http(s) with a host; anything
// else is treated as a site-relative path.
func (b *LinkBuilder) Build(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	parsed, err := url.Parse(value)
	if err != nil {
		b.logger.Warn("ignoring malformed link setting", zap.String("value", value), zap.Error(err))
		return "", false
	}

	if parsed.Scheme != "" {
		scheme := strings.ToLower(parsed.Scheme)
		if (scheme == "http" || scheme == "https") && parsed.Host != "" {
			return parsed.String(), true
		}
		b.logger.Warn("ignoring link setting with unsupported scheme", zap.String("value", value))
		return "", false
	}

	if parsed.Host != "" {
		// protocol-relative "//host/path"
		return parsed.String(), true
	}

	switch value[0] {
	case '/', '?', '#':
		return value, true
	default:
		return "/" + value, true
	}
}

// WithQuery appends key=value to the link's query string, keeping any
// existing parameters and fragment.
func WithQuery(link, key, value string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	query := parsed.Query()
	query.Set(key, value)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
