package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/golang/glog"
	"github.com/squirreldb/squirreldb-go/lib/document"
)

// objectStorage implements IObjectStorage on top of the AWS S3 client
type objectStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
}

// --------------------------------------------------------------------------
// Client Factory Method
// --------------------------------------------------------------------------

// NewObjectStorage creates a client for the storage service described by the
// options. No request is sent until the first operation.
func NewObjectStorage(ctx context.Context, opts Options) (IObjectStorage, error) {
	if opts.Endpoint == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "no endpoint provided")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, document.NewErrorf(document.ErrCInvalidArgument, "failed to build storage config: %v", err)
	}

	// Path-style addressing works without per-bucket DNS, which
	// S3-compatible services commonly rely on
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	glog.V(2).Infof("Created object storage client for %s", opts.Endpoint)

	return &objectStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IObjectStorage)
// --------------------------------------------------------------------------

func (s *objectStorage) ListBuckets(ctx context.Context) ([]Bucket, error) {
	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, mapError("list buckets", err)
	}

	buckets := make([]Bucket, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		buckets = append(buckets, Bucket{
			Name:      aws.ToString(b.Name),
			CreatedAt: aws.ToTime(b.CreationDate),
		})
	}
	return buckets, nil
}

func (s *objectStorage) CreateBucket(ctx context.Context, name string) error {
	if name == "" {
		return document.NewError(document.ErrCInvalidArgument, "bucket name must not be empty")
	}

	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return mapError("create bucket", err)
	}
	return nil
}

func (s *objectStorage) DeleteBucket(ctx context.Context, name string) error {
	if name == "" {
		return document.NewError(document.ErrCInvalidArgument, "bucket name must not be empty")
	}

	_, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		return mapError("delete bucket", err)
	}
	return nil
}

func (s *objectStorage) BucketExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, document.NewError(document.ErrCInvalidArgument, "bucket name must not be empty")
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, mapError("head bucket", err)
	}
	return true, nil
}

func (s *objectStorage) ListObjects(ctx context.Context, bucket, prefix string, maxKeys int32) ([]Object, error) {
	if bucket == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "bucket name must not be empty")
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	remaining := maxKeys
	objects := []Object{}

	// The paginator keeps fetching until the cap is reached or the
	// listing is exhausted
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError("list objects", err)
		}

		for _, obj := range page.Contents {
			if maxKeys > 0 && remaining <= 0 {
				return objects, nil
			}
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         aws.ToString(obj.ETag),
				LastModified: aws.ToTime(obj.LastModified),
			})
			remaining--
		}
	}
	return objects, nil
}

func (s *objectStorage) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError("get object", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, document.NewErrorf(document.ErrCReceiveFailed, "failed to read object body: %v", err)
	}
	return data, nil
}

func (s *objectStorage) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if bucket == "" || key == "" {
		return document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return mapError("put object", err)
	}
	return nil
}

func (s *objectStorage) DeleteObject(ctx context.Context, bucket, key string) error {
	if bucket == "" || key == "" {
		return document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapError("delete object", err)
	}
	return nil
}

func (s *objectStorage) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if srcBucket == "" || srcKey == "" || dstBucket == "" || dstKey == "" {
		return document.NewError(document.ErrCInvalidArgument, "source and destination must not be empty")
	}

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
	})
	if err != nil {
		return mapError("copy object", err)
	}
	return nil
}

func (s *objectStorage) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" || key == "" {
		return false, document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, mapError("head object", err)
	}
	return true, nil
}

func (s *objectStorage) CreateMultipartUpload(ctx context.Context, bucket, key, contentType string) (*MultipartUpload, error) {
	if bucket == "" || key == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	out, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, mapError("create multipart upload", err)
	}

	return &MultipartUpload{
		UploadID: aws.ToString(out.UploadId),
		Bucket:   bucket,
		Key:      key,
	}, nil
}

func (s *objectStorage) UploadPart(ctx context.Context, upload *MultipartUpload, partNumber int32, data []byte) (*UploadPart, error) {
	if upload == nil || upload.UploadID == "" {
		return nil, document.NewError(document.ErrCInvalidArgument, "upload handle must not be nil")
	}
	if partNumber < 1 {
		return nil, document.NewErrorf(document.ErrCInvalidArgument, "invalid part number %d", partNumber)
	}

	out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(upload.Bucket),
		Key:        aws.String(upload.Key),
		UploadId:   aws.String(upload.UploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(data),
	})
	if err != nil {
		return nil, mapError("upload part", err)
	}

	return &UploadPart{
		PartNumber: partNumber,
		ETag:       aws.ToString(out.ETag),
	}, nil
}

func (s *objectStorage) CompleteMultipartUpload(ctx context.Context, upload *MultipartUpload, parts []UploadPart) error {
	if upload == nil || upload.UploadID == "" {
		return document.NewError(document.ErrCInvalidArgument, "upload handle must not be nil")
	}
	if len(parts) == 0 {
		return document.NewError(document.ErrCInvalidArgument, "no parts provided")
	}

	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(p.PartNumber),
			ETag:       aws.String(p.ETag),
		})
	}

	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(upload.Bucket),
		Key:             aws.String(upload.Key),
		UploadId:        aws.String(upload.UploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return mapError("complete multipart upload", err)
	}
	return nil
}

func (s *objectStorage) AbortMultipartUpload(ctx context.Context, upload *MultipartUpload) error {
	if upload == nil || upload.UploadID == "" {
		return document.NewError(document.ErrCInvalidArgument, "upload handle must not be nil")
	}

	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(upload.Bucket),
		Key:      aws.String(upload.Key),
		UploadId: aws.String(upload.UploadID),
	})
	if err != nil {
		return mapError("abort multipart upload", err)
	}
	return nil
}

func (s *objectStorage) PresignGetObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if bucket == "" || key == "" {
		return "", document.NewError(document.ErrCInvalidArgument, "bucket and key must not be empty")
	}

	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", mapError("presign get object", err)
	}
	return out.URL, nil
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// isNotFound reports whether an error is a missing-bucket or missing-object
// answer from the service
func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound)
}

// mapError converts SDK errors into the shared error taxonomy. Service
// answers map by their API error code, everything else counts as a
// connection level failure.
func mapError(op string, err error) error {
	if isNotFound(err) {
		return document.NewErrorf(document.ErrCNotFound, "%s: %v", op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return document.NewErrorf(document.ErrCAuthFailed, "%s: %v", op, err)
		}
		return document.NewErrorf(document.ErrCServer, "%s: %v", op, err)
	}

	return document.NewErrorf(document.ErrCConnectFailed, "%s: %v", op, err)
}
