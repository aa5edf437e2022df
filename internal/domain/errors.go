package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrProviderMisconfigured = errors.New("provider misconfigured")
	ErrInvalidDimensions     = errors.New("invalid dimensions")
	ErrUnsupportedSource     = errors.New("unsupported source")
	ErrCacheUnavailable      = errors.New("cache unavailable")
)
