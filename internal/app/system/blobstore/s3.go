// internal/app/system/blobstore/s3.go
package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the S3 backend. Blank credentials fall back to the
// default AWS credential chain (env, shared config, instance role).
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string // optional key prefix inside the bucket, e.g. "media/"
	PublicURL string // CDN or bucket URL; defaults to the virtual-hosted bucket URL
	AccessKey string
	SecretKey string
}

// S3 stores blobs in an S3 bucket.
type S3 struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// NewS3 loads AWS configuration and builds the client.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("blobstore: s3 bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("blobstore: load aws config: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		public = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: public,
	}, nil
}

func (s *S3) objectKey(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return s.prefix + k, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err = s.client.PutObject(ctx, in)
	return err
}

// Delete removes key. S3 reports success for missing keys.
func (s *S3) Delete(ctx context.Context, key string) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	return err
}

func (s *S3) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			o := Object{Key: strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)}
			if obj.Size != nil {
				o.Size = *obj.Size
			}
			if obj.LastModified != nil {
				o.ModTime = *obj.LastModified
			}
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *S3) URL(key string) string {
	return joinURL(s.publicURL, s.prefix+key)
}
