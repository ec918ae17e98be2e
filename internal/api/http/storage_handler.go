package http

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/storage"
)

// StorageHandler serves the upload and download URLs handed out by local storage.
type StorageHandler struct {
	files storage.StorageInterface
	cfg   storage.Config
	now   func() time.Time
}

func NewStorageHandler(files storage.StorageInterface, cfg storage.Config) *StorageHandler {
	return &StorageHandler{files: files, cfg: cfg, now: time.Now}
}

// HandleUpload accepts the PUT a client sends to a presigned upload URL.
func (h *StorageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.grantedKey(w, r)
	if !ok {
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !h.cfg.AllowsType(contentType) {
		writeMessage(w, http.StatusBadRequest, "invalid content type")
		return
	}

	body := io.Reader(r.Body)
	if h.cfg.MaxFileSize > 0 {
		body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize)
	}
	if err := h.files.SaveFile(key, body); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			_ = h.files.DeleteFile(r.Context(), key)
			writeMessage(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, storage.ErrInvalidKey):
			writeMessage(w, http.StatusBadRequest, "invalid key")
		default:
			logger.Error("Failed to save photo", "key", key, "error", err)
			writeMessage(w, http.StatusInternalServerError, "failed to save file")
		}
		return
	}

	// S3 answers uploads with an ETag
	w.Header().Set("ETag", `"local-`+strconv.FormatInt(h.now().UnixNano(), 16)+`"`)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload streams a stored photo.
func (h *StorageHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.grantedKey(w, r)
	if !ok {
		return
	}

	file, err := h.files.ReadFile(key)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(key)) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".webp":
		contentType = "image/webp"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")

	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Photo download interrupted", "key", key, "error", err)
	}
}

// grantedKey reads the key and checks the URL has not expired.
func (h *StorageHandler) grantedKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" {
		writeMessage(w, http.StatusBadRequest, "missing key parameter")
		return "", false
	}
	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "missing expires parameter")
		return "", false
	}
	if h.now().Unix() > expires {
		writeMessage(w, http.StatusForbidden, "url has expired")
		return "", false
	}
	return key, true
}
