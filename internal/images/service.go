// Package images implements the upload-completion handshake and the listing
// and deletion operations on top of a metadata store and an object store.
package images

import (
	"context"
	"log/slog"
	"time"

	"github.com/kylejryan/image-upload-service/internal/ddb"
	"github.com/kylejryan/image-upload-service/internal/models"
	"github.com/kylejryan/image-upload-service/internal/s3io"

	"github.com/google/uuid"
)

// MetadataStore is the key-value record store holding image records.
// Get and Update return ddb.ErrNotFound when the record is absent.
type MetadataStore interface {
	Put(ctx context.Context, img models.Image) error
	Get(ctx context.Context, id string) (models.Image, error)
	Scan(ctx context.Context, cursor ddb.Cursor) (ddb.Page, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, fields map[string]any) (models.Image, error)
}

// ObjectStore is the blob store holding image bytes.
// Head returns s3io.ErrNotFound when the object is absent.
type ObjectStore interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Duration, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Duration, error)
	Head(ctx context.Context, key string) (s3io.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	PutTTL        time.Duration
	GetTTL        time.Duration
	MaxUploadSize int64
	Logger        *slog.Logger

	Now   func() time.Time
	NewID func() string
}

// Defaults used when Options leaves a field unset.
const (
	DefaultPresignTTL    = 300 * time.Second
	DefaultMaxUploadSize = int64(10 * 1024 * 1024)
)

// Service sequences calls to the metadata and object stores.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	meta    MetadataStore
	objects ObjectStore

	putTTL  time.Duration
	getTTL  time.Duration
	maxSize int64
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Upload is the result of initiating an upload.
type Upload struct {
	ImageID   string
	UploadURL string
	ExpiresIn time.Duration
}

// View is a record plus the presigned download URL issued for it, if any.
type View struct {
	Image models.Image
	URL   string
}

// New builds a Service over the given stores.
func New(meta MetadataStore, objects ObjectStore, opts Options) *Service {
	s := &Service{
		meta:    meta,
		objects: objects,
		putTTL:  opts.PutTTL,
		getTTL:  opts.GetTTL,
		maxSize: opts.MaxUploadSize,
		log:     opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.putTTL <= 0 {
		s.putTTL = DefaultPresignTTL
	}
	if s.getTTL <= 0 {
		s.getTTL = DefaultPresignTTL
	}
	if s.maxSize <= 0 {
		s.maxSize = DefaultMaxUploadSize
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}
