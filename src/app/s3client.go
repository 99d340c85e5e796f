package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ClientMinio is the slice of the minio client this service depends on:
// enumerate, write, remove. Narrow on purpose so tests can substitute it.
type ClientMinio interface {
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (info minio.UploadInfo, err error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ErrNotConfigured is returned by every store operation when no
// connection credential was available at process start. Callers surface
// it as an internal failure without ever touching the network.
var ErrNotConfigured = errors.New("object store is not configured")

// Only keys with these extensions are visible to the catalog.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

const defaultContentType = "application/octet-stream"

// MinioS3Client is the single long-lived store handle, constructed once
// at startup and shared by every handler.
type MinioS3Client struct {
	bucketName string
	publicBase string
	client     ClientMinio
}

// NewMinioS3Client connects to an S3-compatible endpoint. publicBase is
// the browser-facing URL prefix for stored objects; when empty the
// endpoint/bucket form is used.
func NewMinioS3Client(endpoint, accessKeyID, secretAccessKey, bucketName, publicBase string, useSSL bool) (*MinioS3Client, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if publicBase == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucketName)
	}

	return &MinioS3Client{
		bucketName: bucketName,
		publicBase: strings.TrimRight(publicBase, "/"),
		client:     minioClient,
	}, nil
}

// NewMinioS3ClientWith wraps an existing low-level client. Used by tests
// to substitute a fake store.
func NewMinioS3ClientWith(client ClientMinio, bucketName, publicBase string) *MinioS3Client {
	return &MinioS3Client{
		bucketName: bucketName,
		publicBase: strings.TrimRight(publicBase, "/"),
		client:     client,
	}
}

func (s3 *MinioS3Client) configured() bool {
	return s3 != nil && s3.client != nil
}

// ListPhotos enumerates the bucket and returns every image object,
// newest first. Objects without a last-modified timestamp sort as
// oldest; ordering between equal timestamps is implementation-defined
// (stable over enumeration order). The result is a one-shot snapshot,
// no pagination state survives the call.
func (s3 *MinioS3Client) ListPhotos(ctx context.Context) ([]Photo, error) {
	if !s3.configured() {
		return nil, ErrNotConfigured
	}

	photos := []Photo{}
	objectCh := s3.client.ListObjects(ctx, s3.bucketName, minio.ListObjectsOptions{
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects: %w", object.Err)
		}
		if !IsImageKey(object.Key) {
			continue
		}
		photo := Photo{Name: object.Key, URL: s3.PublicURL(object.Key)}
		if !object.LastModified.IsZero() {
			modified := object.LastModified
			photo.LastModified = &modified
		}
		photos = append(photos, photo)
	}

	sort.SliceStable(photos, func(i, j int) bool {
		return photoModTime(photos[i]).After(photoModTime(photos[j]))
	})
	return photos, nil
}

// UploadFile writes one object under key with the declared content type.
// A single attempt, no retry; atomicity is the store's problem.
func (s3 *MinioS3Client) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if !s3.configured() {
		return ErrNotConfigured
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	_, err := s3.client.PutObject(ctx, s3.bucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// DeleteFile removes the object at key.
func (s3 *MinioS3Client) DeleteFile(ctx context.Context, key string) error {
	if !s3.configured() {
		return ErrNotConfigured
	}
	if err := s3.client.RemoveObject(ctx, s3.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the browser-accessible address for a stored key.
func (s3 *MinioS3Client) PublicURL(key string) string {
	return s3.publicBase + "/" + key
}

// IsImageKey reports whether a store key carries one of the allowed
// image extensions, case-insensitively.
func IsImageKey(key string) bool {
	return imageExtensions[strings.ToLower(path.Ext(key))]
}

func photoModTime(p Photo) time.Time {
	if p.LastModified == nil {
		return time.Time{}
	}
	return *p.LastModified
}
