// Package api contains types for the API requests and responses.
package api

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"

	"github.com/kylejryan/image-upload-service/internal/models"
)

// InitiateRequest represents the request payload for starting an upload.
type InitiateRequest struct {
	UserID      string   `json:"user_id"`
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Tags        []string `json:"tags,omitempty"`
}

// UnmarshalJSON accepts any integral JSON number for size, including
// exponent forms. Values outside the int64 range saturate so that the
// size ceiling, not the decoder, rejects them.
func (r *InitiateRequest) UnmarshalJSON(b []byte) error {
	type plain InitiateRequest
	aux := struct {
		*plain
		Size json.Number `json:"size"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.Size == "" {
		r.Size = 0
		return nil
	}
	n, err := parseSize(aux.Size)
	if err != nil {
		return err
	}
	r.Size = n
	return nil
}

func parseSize(n json.Number) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, _, err := big.ParseFloat(n.String(), 10, 0, big.ToNearestEven)
	if err != nil {
		return 0, errors.New("size must be an integer")
	}
	if !f.IsInt() {
		return 0, errors.New("size must be an integer")
	}
	if i, acc := f.Int64(); acc == big.Exact {
		return i, nil
	}
	if f.Sign() > 0 {
		return math.MaxInt64, nil
	}
	return math.MinInt64, nil
}

// InitiateResponse carries the new image id and its presigned upload URL.
type InitiateResponse struct {
	ImageID   string `json:"image_id"`
	UploadURL string `json:"upload_url"`
	ExpiresIn int    `json:"expires_in"`
}

// RecordView is the outbound representation of an image record.
type RecordView struct {
	ImageID     string   `json:"image_id"`
	UserID      string   `json:"user_id"`
	Filename    string   `json:"filename"`
	ContentType string   `json:"content_type"`
	Size        int64    `json:"size"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	CompletedAt string   `json:"completed_at,omitempty"`
	ETag        string   `json:"s3_etag,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// ListResponse wraps the records returned by a listing.
type ListResponse struct {
	Items []RecordView `json:"items"`
}

// DeleteResponse confirms which image id was removed.
type DeleteResponse struct {
	Deleted string `json:"deleted"`
}

// ErrorResponse is returned for any failed API request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewRecordView converts a stored record into its outbound form. url is the
// presigned download URL, if one was issued.
func NewRecordView(img models.Image, url string) RecordView {
	tags := img.Tags
	if tags == nil {
		tags = []string{}
	}
	return RecordView{
		ImageID:     img.ImageID,
		UserID:      img.UserID,
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Size:        img.Size,
		Tags:        tags,
		Status:      string(img.Status),
		CreatedAt:   img.CreatedAt,
		CompletedAt: img.CompletedAt,
		ETag:        img.ETag,
		URL:         url,
	}
}

// NewListResponse converts records into a listing payload; never nil items.
func NewListResponse(imgs []models.Image) ListResponse {
	items := make([]RecordView, 0, len(imgs))
	for _, img := range imgs {
		items = append(items, NewRecordView(img, ""))
	}
	return ListResponse{Items: items}
}
