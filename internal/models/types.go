// Package models defines the data models used in the application.
package models

// ImageStatus represents the upload state of an image record.
type ImageStatus string

// Possible values for ImageStatus. A record only ever moves pending -> complete.
const (
	StatusPending  ImageStatus = "pending"
	StatusComplete ImageStatus = "complete"
)

// DynamoDB attribute names referenced outside of struct tags.
const (
	AttrImageID     = "image_id"
	AttrSize        = "size"
	AttrStatus      = "status"
	AttrETag        = "s3_etag"
	AttrCompletedAt = "completed_at"
)

// Image is the metadata record describing one uploaded image.
type Image struct {
	// DynamoDB key
	ImageID string `dynamodbav:"image_id"` // UUID, sole partition key

	UserID      string      `dynamodbav:"user_id"`
	Filename    string      `dynamodbav:"filename"`
	ContentType string      `dynamodbav:"content_type"`
	Size        int64       `dynamodbav:"size"` // declared at initiate, corrected at completion
	Tags        []string    `dynamodbav:"tags"`
	Status      ImageStatus `dynamodbav:"status"`
	CreatedAt   string      `dynamodbav:"created_at"`             // ISO8601, immutable
	CompletedAt string      `dynamodbav:"completed_at,omitempty"` // set on completion
	ETag        string      `dynamodbav:"s3_etag,omitempty"`
}

// HasTag reports whether tag is one of the record's tags.
func (i Image) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
