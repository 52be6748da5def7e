package awsfake

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type object struct {
	data        []byte
	contentType string
	etag        string
}

// S3 is an in-memory bucket store. It also serves the presigned URLs it
// issues, so tests can PUT bytes to an upload URL through net/http.
type S3 struct {
	// BaseURL prefixes presigned URLs, e.g. an httptest.Server URL.
	BaseURL string

	// Err, when set for an operation name ("HeadObject", "PresignPutObject", ...),
	// is returned instead of performing it.
	Err map[string]error

	mu      sync.Mutex
	objects map[string]object // bucket/key
	calls   map[string]int
}

// NewS3 returns an empty store issuing URLs under baseURL.
func NewS3(baseURL string) *S3 {
	return &S3{
		BaseURL: baseURL,
		Err:     map[string]error{},
		objects: map[string]object{},
		calls:   map[string]int{},
	}
}

// Calls returns how many times op was invoked.
func (f *S3) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// PutObjectBytes stores data directly, bypassing presigned URLs.
func (f *S3) PutObjectBytes(bucket, key, contentType string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(bucket+"/"+key, contentType, data)
}

// Has reports whether the object exists.
func (f *S3) Has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[bucket+"/"+key]
	return ok
}

func (f *S3) put(path, contentType string, data []byte) {
	sum := md5.Sum(data)
	f.objects[path] = object{data: data, contentType: contentType, etag: hex.EncodeToString(sum[:])}
}

func (f *S3) begin(op string) error {
	f.calls[op]++
	return f.Err[op]
}

// HeadObject implements s3io.API.
func (f *S3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("HeadObject"); err != nil {
		return nil, err
	}
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{Message: aws.String("Not Found")}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		ETag:          aws.String(strconv.Quote(obj.etag)),
	}, nil
}

// DeleteObject implements s3io.API.
func (f *S3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("DeleteObject"); err != nil {
		return nil, err
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// PresignPutObject implements s3io.Presigner.
func (f *S3) PresignPutObject(_ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("PresignPutObject"); err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", aws.ToString(in.ContentType))
	return &v4.PresignedHTTPRequest{
		URL:          f.presignedURL(aws.ToString(in.Bucket), aws.ToString(in.Key), optFns),
		Method:       http.MethodPut,
		SignedHeader: h,
	}, nil
}

// PresignGetObject implements s3io.Presigner.
func (f *S3) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("PresignGetObject"); err != nil {
		return nil, err
	}
	return &v4.PresignedHTTPRequest{
		URL:          f.presignedURL(aws.ToString(in.Bucket), aws.ToString(in.Key), optFns),
		Method:       http.MethodGet,
		SignedHeader: http.Header{},
	}, nil
}

func (f *S3) presignedURL(bucket, key string, optFns []func(*s3.PresignOptions)) string {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.Itoa(int(opts.Expires.Seconds())))
	q.Set("X-Amz-Signature", "fake")
	return fmt.Sprintf("%s/%s/%s?%s", strings.TrimSuffix(f.BaseURL, "/"), bucket, key, q.Encode())
}

// ServeHTTP accepts PUT and GET against /{bucket}/{key} paths issued by the presigner.
func (f *S3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.put(path, r.Header.Get("Content-Type"), data)
		etag := f.objects[path].etag
		f.mu.Unlock()
		w.Header().Set("ETag", strconv.Quote(etag))
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		f.mu.Lock()
		obj, ok := f.objects[path]
		f.mu.Unlock()
		if !ok {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", obj.contentType)
		_, _ = w.Write(obj.data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
