package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetrent-backend/internal/logger"
)

var ErrInvalidKey = errors.New("invalid storage key")

// LocalStorage keeps photos on the local filesystem and serves them through
// the server's own upload/download routes.
type LocalStorage struct {
	baseURL   string // Server URL (e.g., "http://localhost:8080")
	photosDir string
}

func NewLocalStorage(baseURL, uploadsDir string) (*LocalStorage, error) {
	photosDir := filepath.Join(uploadsDir, "photos")
	if err := os.MkdirAll(photosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}
	return &LocalStorage{
		baseURL:   strings.TrimRight(baseURL, "/"),
		photosDir: photosDir,
	}, nil
}

// GeneratePresignedUploadURL points the client at the server's PUT route.
// The expiry travels in the query and is checked by the handler.
func (m *LocalStorage) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	uploadToken := uuid.New().String()
	expires := time.Now().Add(expiresIn).Unix()
	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s&expires=%d", m.baseURL, uploadToken, url.QueryEscape(key), expires), nil
}

func (m *LocalStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := m.path(key); err != nil {
		return "", err
	}
	expires := time.Now().Add(expiresIn).Unix()
	return fmt.Sprintf("%s/api/v1/download/%s?key=%s&expires=%d", m.baseURL, encodeKey(key), url.QueryEscape(key), expires), nil
}

func (m *LocalStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return false, 0, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Photo not found", "key", key)
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (m *LocalStorage) DeleteFile(ctx context.Context, key string) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (m *LocalStorage) SaveFile(key string, reader io.Reader) error {
	fullPath, err := m.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	n, err := io.Copy(file, reader)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Info("Photo stored", "key", key, "bytes", n)
	return nil
}

func (m *LocalStorage) ReadFile(key string) (io.ReadCloser, error) {
	fullPath, err := m.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// path resolves key below the photos directory and refuses keys that would
// escape it.
func (m *LocalStorage) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidKey
	}
	return filepath.Join(m.photosDir, clean), nil
}

// encodeKey creates a URL-safe hash of the key
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
