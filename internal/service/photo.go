package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"fleetrent-backend/internal/domain"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/storage"
)

type photoService struct {
	bookingRepo repository.BookingRepository
	store       storage.StorageInterface
	cfg         storage.Config
}

func NewPhotoService(bookingRepo repository.BookingRepository, store storage.StorageInterface, cfg storage.Config) PhotoService {
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = 15 * time.Minute
	}
	return &photoService{bookingRepo: bookingRepo, store: store, cfg: cfg}
}

// photoKeyPrefix scopes inspection photos to one booking.
func photoKeyPrefix(companyID, bookingID int32) string {
	return fmt.Sprintf("bookings/%d/%d/", companyID, bookingID)
}

func (s *photoService) GetUploadURL(ctx context.Context, companyID, bookingID int32, filename, contentType string) (*domain.PhotoUpload, error) {
	logger.EnterMethod("photoService.GetUploadURL", "companyID", companyID, "bookingID", bookingID, "filename", filename)

	if !s.cfg.AllowsType(contentType) {
		err := domain.ValidationError{Field: "content_type", Msg: fmt.Sprintf("%s is not allowed", contentType)}
		logger.ExitMethodWithError("photoService.GetUploadURL", err, "bookingID", bookingID)
		return nil, err
	}
	b, err := s.bookingRepo.GetByID(ctx, companyID, bookingID)
	if err != nil {
		logger.ExitMethodWithError("photoService.GetUploadURL", err, "bookingID", bookingID)
		return nil, err
	}
	if b.Status.IsTerminal() {
		err := domain.ValidationError{Field: "status", Msg: "booking is closed"}
		logger.ExitMethodWithError("photoService.GetUploadURL", err, "bookingID", bookingID)
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	key := photoKeyPrefix(companyID, bookingID) + uuid.New().String() + ext

	logger.ExternalServiceCall("storage", "GeneratePresignedUploadURL", "key", key)
	url, err := s.store.GeneratePresignedUploadURL(ctx, key, contentType, s.cfg.URLExpiry)
	logger.ExternalServiceResult("storage", "GeneratePresignedUploadURL", err, "key", key)
	if err != nil {
		logger.ExitMethodWithError("photoService.GetUploadURL", err, "bookingID", bookingID)
		return nil, err
	}

	upload := &domain.PhotoUpload{
		Key:       key,
		UploadURL: url,
		ExpiresAt: time.Now().Add(s.cfg.URLExpiry).Unix(),
	}
	logger.ExitMethod("photoService.GetUploadURL", "bookingID", bookingID, "key", key)
	return upload, nil
}

func (s *photoService) GetDownloadURL(ctx context.Context, companyID, bookingID int32, key string) (string, int64, error) {
	if !strings.HasPrefix(key, photoKeyPrefix(companyID, bookingID)) {
		return "", 0, domain.NotFoundError{Resource: "photo"}
	}
	if _, err := s.bookingRepo.GetByID(ctx, companyID, bookingID); err != nil {
		return "", 0, err
	}
	exists, _, err := s.store.FileExists(ctx, key)
	if err != nil {
		return "", 0, err
	}
	if !exists {
		return "", 0, domain.NotFoundError{Resource: "photo"}
	}
	url, err := s.store.GeneratePresignedDownloadURL(ctx, key, s.cfg.URLExpiry)
	if err != nil {
		return "", 0, err
	}
	return url, time.Now().Add(s.cfg.URLExpiry).Unix(), nil
}
