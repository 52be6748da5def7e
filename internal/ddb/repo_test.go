package ddb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kylejryan/image-upload-service/internal/awsfake"
	"github.com/kylejryan/image-upload-service/internal/ddb"
	"github.com/kylejryan/image-upload-service/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo() (*ddb.Repo, *awsfake.DynamoDB) {
	db := awsfake.NewDynamoDB(models.AttrImageID)
	return &ddb.Repo{DB: db, Table: "Images"}, db
}

func sample(id string) models.Image {
	return models.Image{
		ImageID:     id,
		UserID:      "u1",
		Filename:    "a.png",
		ContentType: "image/png",
		Size:        10,
		Tags:        []string{"cat"},
		Status:      models.StatusPending,
		CreatedAt:   "2026-01-01T00:00:00Z",
	}
}

func TestImageAttributeNames(t *testing.T) {
	img := sample("i1")
	img.ETag = "abc"
	img.CompletedAt = "2026-01-01T00:01:00Z"

	av, err := attributevalue.MarshalMap(img)
	require.NoError(t, err)

	for _, key := range []string{
		"image_id", "user_id", "filename", "content_type", "size",
		"tags", "status", "created_at", "completed_at", "s3_etag",
	} {
		assert.Contains(t, av, key)
	}
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()

	require.NoError(t, repo.Put(ctx, sample("i1")))

	got, err := repo.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, sample("i1"), got)
}

func TestPutRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()

	require.NoError(t, repo.Put(ctx, sample("i1")))
	err := repo.Put(ctx, sample("i1"))
	assert.ErrorIs(t, err, ddb.ErrExists)
}

func TestGetMissing(t *testing.T) {
	repo, _ := newRepo()
	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ddb.ErrNotFound)
}

func TestGetError(t *testing.T) {
	repo, db := newRepo()
	db.Err["GetItem"] = errors.New("throttled")
	_, err := repo.Get(context.Background(), "i1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ddb.ErrNotFound)
}

func TestScanPaginates(t *testing.T) {
	ctx := context.Background()
	repo, db := newRepo()
	repo.PageSize = 2
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Put(ctx, sample(id)))
	}

	var ids []string
	var cursor ddb.Cursor
	for {
		page, err := repo.Scan(ctx, cursor)
		require.NoError(t, err)
		for _, it := range page.Items {
			ids = append(ids, it.ImageID)
		}
		if page.Next == "" {
			break
		}
		cursor = page.Next
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	assert.Equal(t, 3, db.Calls("Scan"))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()
	require.NoError(t, repo.Put(ctx, sample("i1")))

	got, err := repo.Update(ctx, "i1", map[string]any{
		models.AttrSize:   int64(42),
		models.AttrETag:   "etag-1",
		models.AttrStatus: models.StatusComplete,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Size)
	assert.Equal(t, "etag-1", got.ETag)
	assert.Equal(t, models.StatusComplete, got.Status)
	assert.Equal(t, "u1", got.UserID)

	stored, err := repo.Get(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateMissingRecord(t *testing.T) {
	repo, db := newRepo()
	_, err := repo.Update(context.Background(), "ghost", map[string]any{models.AttrSize: int64(1)})
	assert.ErrorIs(t, err, ddb.ErrNotFound)
	assert.Equal(t, 0, db.Len())
}

func TestUpdateNoFields(t *testing.T) {
	repo, _ := newRepo()
	_, err := repo.Update(context.Background(), "i1", nil)
	assert.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo()
	require.NoError(t, repo.Put(ctx, sample("i1")))

	require.NoError(t, repo.Delete(ctx, "i1"))
	require.NoError(t, repo.Delete(ctx, "i1"))

	_, err := repo.Get(ctx, "i1")
	assert.ErrorIs(t, err, ddb.ErrNotFound)
}
