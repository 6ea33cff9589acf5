package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"estateflow/api/internal/util"
)

// MaxImageBytes caps a decoded image. The admin UI compresses photos
// to 800x800 JPEG before upload, so anything near this limit is
// either uncompressed or not an image at all.
const MaxImageBytes = 2 << 20

var contentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Service validates uploaded images and optionally offloads their
// bytes to object storage. Without a configured endpoint images stay
// inline as data URLs, which matches how small deployments run.
type Service struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO when an endpoint is configured. An empty
// endpoint disables offloading and is not an error.
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Service, error) {
	if endpoint == "" {
		return &Service{}, nil
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	return &Service{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the bucket if object storage is enabled.
func (s *Service) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// ValidateDataURL checks that s is a base64 data URL for a supported
// image type within the size limit.
func ValidateDataURL(s string) error {
	contentType, payload, err := splitDataURL(s)
	if err != nil {
		return err
	}
	if _, ok := contentTypes[contentType]; !ok {
		return fmt.Errorf("unsupported image type %q", contentType)
	}
	decoded := base64.StdEncoding.DecodedLen(len(payload))
	if decoded > MaxImageBytes {
		return fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return fmt.Errorf("invalid base64 image data: %w", err)
	}
	return nil
}

// Store validates the image and, when object storage is enabled,
// uploads the bytes and returns an opaque object reference. Otherwise
// the data URL is returned unchanged.
func (s *Service) Store(ctx context.Context, dataURL string) (string, error) {
	if err := ValidateDataURL(dataURL); err != nil {
		return "", err
	}
	if s.client == nil {
		return dataURL, nil
	}

	contentType, payload, _ := splitDataURL(dataURL)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	key := util.NewID("img") + contentTypes[contentType]
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return "obj://" + s.bucket + "/" + key, nil
}

// Remove deletes an offloaded object. Inline data URLs and foreign
// references are ignored.
func (s *Service) Remove(ctx context.Context, ref string) {
	if s.client == nil || !strings.HasPrefix(ref, "obj://"+s.bucket+"/") {
		return
	}
	key := strings.TrimPrefix(ref, "obj://"+s.bucket+"/")
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		log.Printf("media: remove object %s: %v", key, err)
	}
}

func splitDataURL(s string) (contentType, payload string, err error) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", fmt.Errorf("not a data URL")
	}
	rest := strings.TrimPrefix(s, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("malformed data URL")
	}
	contentType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", fmt.Errorf("data URL must be base64 encoded")
	}
	return contentType, payload, nil
}
