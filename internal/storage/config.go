package storage

import (
	"fmt"
	"time"
)

// Config holds storage configuration
type Config struct {
	Type         string // "mock" or "local"
	Dir          string // Root directory for local storage
	BaseURL      string // Server base URL for generating upload/download URLs
	MaxFileSize  int64
	AllowedTypes []string
	URLExpiry    time.Duration
}

// New returns the storage backend named by cfg.Type.
func New(cfg Config) (*LocalStorage, error) {
	switch cfg.Type {
	case "", "mock", "local":
		return NewLocalStorage(cfg.BaseURL, cfg.Dir)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}

// AllowsType reports whether contentType may be uploaded. An empty list
// allows jpeg and png.
func (c Config) AllowsType(contentType string) bool {
	allowed := c.AllowedTypes
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png"}
	}
	for _, t := range allowed {
		if t == contentType {
			return true
		}
	}
	return false
}
