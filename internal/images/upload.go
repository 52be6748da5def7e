package images

import (
	"context"
	"errors"
	"time"

	"github.com/kylejryan/image-upload-service/internal/api"
	"github.com/kylejryan/image-upload-service/internal/ddb"
	"github.com/kylejryan/image-upload-service/internal/models"
	"github.com/kylejryan/image-upload-service/internal/s3io"
	"github.com/kylejryan/image-upload-service/internal/validate"
)

// Initiate validates the request, persists a pending record and returns a
// presigned PUT URL for images/{image_id}. The record is written before the
// URL is generated; if presigning fails the pending record is left behind.
func (s *Service) Initiate(ctx context.Context, req api.InitiateRequest) (Upload, error) {
	const op = "initiate"

	err := validate.All(
		func() error { return validate.UserID(req.UserID) },
		func() error { return validate.Filename(req.Filename) },
		func() error { return validate.ContentType(req.ContentType) },
		func() error { return validate.Size(req.Size) },
	)
	if err != nil {
		return Upload{}, newError(KindValidation, op, "invalid payload", err)
	}
	if req.Size > s.maxSize {
		return Upload{}, newError(KindTooLarge, op, "file too large", nil)
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	img := models.Image{
		ImageID:     s.newID(),
		UserID:      req.UserID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		Tags:        tags,
		Status:      models.StatusPending,
		CreatedAt:   s.timestamp(),
	}

	if err := s.meta.Put(ctx, img); err != nil {
		s.log.ErrorContext(ctx, "failed to create metadata", "op", op, "image_id", img.ImageID, "error", err)
		return Upload{}, newError(KindStorage, op, "ddb write error", err)
	}

	url, ttl, err := s.objects.PresignPut(ctx, s3io.BuildKey(img.ImageID), img.ContentType, s.putTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "presigned put generation failed", "op", op, "image_id", img.ImageID, "error", err)
		return Upload{}, newError(KindStorage, op, "s3 presign error", err)
	}

	s.log.InfoContext(ctx, "upload initiated", "image_id", img.ImageID, "user_id", img.UserID, "size", img.Size)
	return Upload{ImageID: img.ImageID, UploadURL: url, ExpiresIn: ttl}, nil
}

// Complete confirms that the object for imageID exists and records its actual
// size and ETag, flipping the record to complete. Calling it again on a
// complete record with the object still present rewrites the same values.
func (s *Service) Complete(ctx context.Context, imageID string) (View, error) {
	const op = "complete"

	if imageID == "" {
		return View{}, newError(KindBadRequest, op, "missing image_id", nil)
	}
	img, err := s.getRecord(ctx, op, imageID)
	if err != nil {
		return View{}, err
	}
	info, err := s.headObject(ctx, op, imageID)
	if err != nil {
		return View{}, err
	}

	completedAt := img.CompletedAt
	if completedAt == "" {
		completedAt = s.timestamp()
	}
	updated, err := s.meta.Update(ctx, imageID, map[string]any{
		models.AttrSize:        info.Size,
		models.AttrETag:        info.ETag,
		models.AttrStatus:      models.StatusComplete,
		models.AttrCompletedAt: completedAt,
	})
	if errors.Is(err, ddb.ErrNotFound) {
		return View{}, newError(KindNotFound, op, "not found", err)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to update metadata", "op", op, "image_id", imageID, "error", err)
		return View{}, newError(KindStorage, op, "ddb update error", err)
	}

	url, err := s.presignGet(ctx, op, imageID)
	if err != nil {
		return View{}, err
	}

	if img.Size != info.Size {
		s.log.InfoContext(ctx, "corrected declared size", "image_id", imageID, "declared", img.Size, "actual", info.Size)
	}
	return View{Image: updated, URL: url}, nil
}

// Fetch returns the record for imageID. With download set it also checks that
// the object exists and attaches a presigned GET URL; otherwise the object
// store is not contacted.
func (s *Service) Fetch(ctx context.Context, imageID string, download bool) (View, error) {
	const op = "fetch"

	if imageID == "" {
		return View{}, newError(KindBadRequest, op, "missing image_id", nil)
	}
	img, err := s.getRecord(ctx, op, imageID)
	if err != nil {
		return View{}, err
	}
	if !download {
		return View{Image: img}, nil
	}

	if _, err := s.headObject(ctx, op, imageID); err != nil {
		return View{}, err
	}
	url, err := s.presignGet(ctx, op, imageID)
	if err != nil {
		return View{}, err
	}
	return View{Image: img, URL: url}, nil
}

// ParseDownload interprets the download query flag. Only "1", "true" and
// "True" enable it.
func ParseDownload(v string) bool {
	switch v {
	case "1", "true", "True":
		return true
	}
	return false
}

func (s *Service) getRecord(ctx context.Context, op, imageID string) (models.Image, error) {
	img, err := s.meta.Get(ctx, imageID)
	if errors.Is(err, ddb.ErrNotFound) {
		return img, newError(KindNotFound, op, "not found", err)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "get_item failed", "op", op, "image_id", imageID, "error", err)
		return img, newError(KindStorage, op, "ddb read error", err)
	}
	return img, nil
}

func (s *Service) headObject(ctx context.Context, op, imageID string) (s3io.ObjectInfo, error) {
	info, err := s.objects.Head(ctx, s3io.BuildKey(imageID))
	if errors.Is(err, s3io.ErrNotFound) {
		return info, newError(KindNotFound, op, "object missing in s3", err)
	}
	if err != nil {
		s.log.ErrorContext(ctx, "head_object failed", "op", op, "image_id", imageID, "error", err)
		return info, newError(KindStorage, op, "s3 head error", err)
	}
	return info, nil
}

func (s *Service) presignGet(ctx context.Context, op, imageID string) (string, error) {
	url, _, err := s.objects.PresignGet(ctx, s3io.BuildKey(imageID), s.getTTL)
	if err != nil {
		s.log.ErrorContext(ctx, "presigned get generation failed", "op", op, "image_id", imageID, "error", err)
		return "", newError(KindStorage, op, "s3 presign error", err)
	}
	return url, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
