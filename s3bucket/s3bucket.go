package s3bucket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Bucket struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3Bucket(ctx context.Context, region string, bucket string) (*S3Bucket, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewS3BucketFromClient(s3.NewFromConfig(cfg), bucket), nil
}

func NewS3BucketFromClient(client *s3.Client, bucket string) *S3Bucket {
	return &S3Bucket{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}
}

func (bucket *S3Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := bucket.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket.bucket,
		Key:    &key,
	})
	if err != nil {
		var responseError *awshttp.ResponseError
		if errors.As(err, &responseError) && responseError.ResponseError.HTTPStatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// PresignGet returns a time-limited URL for downloading the object.
func (bucket *S3Bucket) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := bucket.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return req.URL, nil
}

func (bucket *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := bucket.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// ListFiles lists the keys of the objects under prefix.
func (bucket *S3Bucket) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: &bucket.bucket,
	}

	if prefix != "" {
		input.Prefix = &prefix
	}

	paginator := s3.NewListObjectsV2Paginator(bucket.client, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}

	return keys, nil
}
