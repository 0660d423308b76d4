package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"seniors/pkg/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DeleteObjects accepts at most this many keys per request.
const maxDeleteBatch = 1000

type Client struct {
	s3Client s3iface.S3API
	bucket   string
	endpoint string
	region   string
	useSSL   bool
}

func NewClient(cfg *config.Config) (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		),
	}

	useSSL := cfg.S3UseSSL != "false"

	// Support MinIO for local development
	if cfg.AWSEndpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.AWSEndpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!useSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	client := NewWithAPI(s3.New(sess), cfg.S3BucketName, cfg.AWSEndpoint, cfg.AWSRegion, useSSL)

	// Ensure bucket exists (for MinIO)
	_, err = client.s3Client.HeadBucket(&s3.HeadBucketInput{
		Bucket: aws.String(cfg.S3BucketName),
	})
	if err != nil {
		if _, err := client.s3Client.CreateBucket(&s3.CreateBucketInput{
			Bucket: aws.String(cfg.S3BucketName),
		}); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %s: %w", cfg.S3BucketName, err)
		}
	}

	return client, nil
}

// NewWithAPI wraps an existing S3 API implementation.
func NewWithAPI(api s3iface.S3API, bucket, endpoint, region string, useSSL bool) *Client {
	return &Client{
		s3Client: api,
		bucket:   bucket,
		endpoint: endpoint,
		region:   region,
		useSSL:   useSSL,
	}
}

// Upload stores body under key and returns the public URL of the object.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, body); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err := c.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return ObjectURL(c.endpoint, c.region, c.bucket, key, c.useSSL), nil
}

// Delete removes the given keys. Missing keys are not an error.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += maxDeleteBatch {
		end := min(start+maxDeleteBatch, len(keys))

		objects := make([]*s3.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
		}

		out, err := c.s3Client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(c.bucket),
			Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("failed to delete files from S3: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("failed to delete %d files from S3, first %s: %s",
				len(out.Errors), aws.StringValue(first.Key), aws.StringValue(first.Message))
		}
	}
	return nil
}

// DeletePrefix removes every object whose key starts with prefix.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	var keys []string
	err := c.s3Client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, aws.StringValue(obj.Key))
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to list files under %s: %w", prefix, err)
	}

	return c.Delete(ctx, keys...)
}

// ObjectURL builds the URL an object is served from, MinIO style when a
// custom endpoint is configured and virtual-hosted AWS style otherwise.
func ObjectURL(endpoint, region, bucket, key string, useSSL bool) string {
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "http"
		if useSSL {
			protocol = "https"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, bucket, key)
	}

	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
