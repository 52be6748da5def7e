package s3io

import (
	"strings"
)

// KeyPrefix is the fixed prefix under which every image object is stored.
const KeyPrefix = "images/"

// BuildKey constructs the S3 key for a given imageID.
func BuildKey(imageID string) string {
	return KeyPrefix + imageID
}

// ParseKey extracts the imageID from an S3 key of the form images/{image_id}.
func ParseKey(key string) (imageID string, ok bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return "", false
	}
	imageID = strings.TrimPrefix(key, KeyPrefix)
	if imageID == "" || strings.Contains(imageID, "/") {
		return "", false
	}
	return imageID, true
}
