// Package storage holds the profile-image store. Images arrive as base64
// data URIs and live under profilePicture/<userID>/<name> in the bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const ProfilePicDir = "profilePicture"

type ImageStore interface {
	// UploadBase64 decodes a "data:image/...;base64,..." payload and stores
	// it under dir/name. The content type is taken from the data URI.
	UploadBase64(ctx context.Context, dir, name, dataURI string) error
	// URL returns a time-limited GET URL for the stored object, or "" when
	// the object name is empty.
	URL(ctx context.Context, dir, name string) string
	// Remove deletes a previously stored object; removing "" is a no-op.
	Remove(ctx context.Context, dir, name string) error
}

type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewS3(ctx context.Context, region, endpoint, key, secret, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &S3Store{client: client, presign: s3.NewPresignClient(client), bucket: bucket}, nil
}

// ExtensionFromDataURI pulls the image extension out of a base64 data URI,
// e.g. "png" from "data:image/png;base64,...".
func ExtensionFromDataURI(dataURI string) string {
	head, _, ok := strings.Cut(dataURI, ";")
	if !ok {
		return ""
	}
	_, ext, ok := strings.Cut(head, "/")
	if !ok {
		return ""
	}
	return ext
}

func (s *S3Store) UploadBase64(ctx context.Context, dir, name, dataURI string) error {
	head, payload, ok := strings.Cut(dataURI, ",")
	if !ok {
		return fmt.Errorf("malformed data uri")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(head, "data:"), ";base64")

	key := dir + "/" + name
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(raw),
		ContentType: &contentType,
	})
	return err
}

func (s *S3Store) URL(ctx context.Context, dir, name string) string {
	if name == "" {
		return ""
	}
	key := dir + "/" + name
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return ""
	}
	return req.URL
}

func (s *S3Store) Remove(ctx context.Context, dir, name string) error {
	if name == "" {
		return nil
	}
	key := dir + "/" + name
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	return err
}

// NoopStore stands in when no bucket is configured; uploads succeed silently
// and URLs come back empty.
type NoopStore struct{}

func (NoopStore) UploadBase64(ctx context.Context, dir, name, dataURI string) error { return nil }
func (NoopStore) URL(ctx context.Context, dir, name string) string                  { return "" }
func (NoopStore) Remove(ctx context.Context, dir, name string) error                { return nil }
