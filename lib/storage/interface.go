package storage

import (
	"context"
	"time"
)

// --------------------------------------------------------------------------
// Configuration and Data Types
// --------------------------------------------------------------------------

// Options configures the connection to an S3-compatible storage service.
type Options struct {
	// Endpoint is the base URL of the storage service.
	Endpoint string
	// AccessKey and SecretKey are the static credentials used to sign
	// requests.
	AccessKey string
	SecretKey string
	// Region is the signing region. S3-compatible services usually accept
	// any value, empty defaults to "us-east-1".
	Region string
}

// Bucket describes one bucket of the storage service.
type Bucket struct {
	Name      string
	CreatedAt time.Time
}

// Object describes one stored object without its content.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
	ContentType  string
}

// MultipartUpload is the handle of an in-progress multipart upload.
type MultipartUpload struct {
	UploadID string
	Bucket   string
	Key      string
}

// UploadPart identifies one uploaded part of a multipart upload.
type UploadPart struct {
	PartNumber int32
	ETag       string
}

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IObjectStorage is the interface for the SquirrelDB object storage service.
// All operations return a *document.Error (possibly wrapped) on failure so
// callers can branch on the error code.
type IObjectStorage interface {
	// ListBuckets returns all buckets of the storage service.
	ListBuckets(ctx context.Context) ([]Bucket, error)
	// CreateBucket creates a new bucket.
	CreateBucket(ctx context.Context, name string) error
	// DeleteBucket removes an empty bucket.
	DeleteBucket(ctx context.Context, name string) error
	// BucketExists reports whether the bucket is present.
	BucketExists(ctx context.Context, name string) (bool, error)

	// ListObjects returns up to maxKeys objects of a bucket whose keys
	// start with prefix. A non-positive maxKeys returns all objects.
	ListObjects(ctx context.Context, bucket, prefix string, maxKeys int32) ([]Object, error)
	// GetObject downloads the full content of an object.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	// PutObject uploads an object. An empty contentType defaults to
	// application/octet-stream.
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, bucket, key string) error
	// CopyObject copies an object server-side.
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	// ObjectExists reports whether the object is present.
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)

	// CreateMultipartUpload starts a multipart upload and returns its
	// handle.
	CreateMultipartUpload(ctx context.Context, bucket, key, contentType string) (*MultipartUpload, error)
	// UploadPart uploads one part of a multipart upload. Part numbers
	// start at 1.
	UploadPart(ctx context.Context, upload *MultipartUpload, partNumber int32, data []byte) (*UploadPart, error)
	// CompleteMultipartUpload assembles the uploaded parts into the final
	// object.
	CompleteMultipartUpload(ctx context.Context, upload *MultipartUpload, parts []UploadPart) error
	// AbortMultipartUpload cancels a multipart upload and discards its
	// parts.
	AbortMultipartUpload(ctx context.Context, upload *MultipartUpload) error

	// PresignGetObject returns a presigned download URL valid for the
	// given duration.
	PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}
