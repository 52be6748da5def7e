package images

import (
	"context"

	"github.com/kylejryan/image-upload-service/internal/ddb"
	"github.com/kylejryan/image-upload-service/internal/models"
	"github.com/kylejryan/image-upload-service/internal/s3io"
)

// Filter selects records for List. Empty fields match everything; set fields
// are combined with AND.
type Filter struct {
	UserID      string
	ContentType string
	Tag         string
}

// Match reports whether img satisfies every set field of f.
func (f Filter) Match(img models.Image) bool {
	if f.UserID != "" && img.UserID != f.UserID {
		return false
	}
	if f.ContentType != "" && img.ContentType != f.ContentType {
		return false
	}
	if f.Tag != "" && !img.HasTag(f.Tag) {
		return false
	}
	return true
}

// List reads every page of the metadata store and returns the matching
// records. Order follows the store's scan order and is not guaranteed.
// A failure on any page fails the whole listing.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Image, error) {
	const op = "list"

	var all []models.Image
	var cursor ddb.Cursor
	for {
		page, err := s.meta.Scan(ctx, cursor)
		if err != nil {
			s.log.ErrorContext(ctx, "scan_items failed", "op", op, "error", err)
			return nil, newError(KindStorage, op, "scan_items failed", err)
		}
		all = append(all, page.Items...)
		if page.Next == "" {
			break
		}
		cursor = page.Next
	}

	out := make([]models.Image, 0, len(all))
	for _, img := range all {
		if f.Match(img) {
			out = append(out, img)
		}
	}
	s.log.DebugContext(ctx, "listed images", "scanned", len(all), "matched", len(out))
	return out, nil
}

// Delete removes the object and then the record for imageID. A failed object
// delete is logged and ignored; a failed record delete is returned. Deleting
// an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, imageID string) (string, error) {
	const op = "delete"

	if imageID == "" {
		return "", newError(KindBadRequest, op, "missing image_id", nil)
	}

	if err := s.objects.Delete(ctx, s3io.BuildKey(imageID)); err != nil {
		s.log.WarnContext(ctx, "s3 delete failed", "op", op, "image_id", imageID, "error", err)
	}

	if err := s.meta.Delete(ctx, imageID); err != nil {
		s.log.ErrorContext(ctx, "ddb delete failed", "op", op, "image_id", imageID, "error", err)
		return "", newError(KindStorage, op, "ddb delete failed", err)
	}

	s.log.InfoContext(ctx, "image deleted", "image_id", imageID)
	return imageID, nil
}
