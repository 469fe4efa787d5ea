// Package storage provides object storage implementations for business logos.
package storage

import (
	"context"
	"fmt"
	"time"

	infraconfig "github.com/dasbor/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LogoStorage abstracts where uploaded business logos live
type LogoStorage interface {
	// Upload stores the logo bytes under the given key
	Upload(ctx context.Context, key string, data []byte, contentType string) error

	// Delete removes a stored logo
	Delete(ctx context.Context, key string) error

	// Exists checks whether a logo is stored under the key
	Exists(ctx context.Context, key string) (bool, error)

	// DownloadURL returns a URL the frontend can fetch the logo from,
	// valid until the returned time for presigned backends.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// providerS3 and providerLocal are the accepted config.storage.provider values
const (
	providerS3    = "s3"
	providerLocal = "local"
)

// NewFromConfig builds the logo storage selected by config.storage.provider.
// An empty provider falls back to local storage.
func NewFromConfig(cfg *infraconfig.StorageConfig, logger *zap.Logger) (LogoStorage, error) {
	switch cfg.Provider {
	case providerLocal, "":
		return NewLocalLogoStorage(cfg.LocalPath, "/uploads")
	case providerS3:
		return NewS3LogoStorage(cfg, WithLogger(logger))
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// LogoKey builds the storage key for a business logo
func LogoKey(businessID, filename string) string {
	return fmt.Sprintf("logos/%s/%s", businessID, filename)
}
