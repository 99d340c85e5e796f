package minio_mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
)

// PutCall records one PutObject invocation.
type PutCall struct {
	Bucket      string
	Key         string
	ContentType string
	Size        int64
	Body        []byte
}

// FakeClient is an in-memory stand-in for the minio client. Tests seed
// Objects and inspect Puts/Removes afterwards.
type FakeClient struct {
	mu sync.Mutex

	// Objects is streamed by ListObjects in slice order.
	Objects []minio.ObjectInfo
	// ListErr, when set, is emitted as the final list entry.
	ListErr error

	PutErr error
	Puts   []PutCall

	RemoveErr error
	Removes   []string
}

func (f *FakeClient) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		for _, object := range f.Objects {
			ch <- object
		}
		if f.ListErr != nil {
			ch <- minio.ObjectInfo{Err: f.ListErr}
		}
	}()
	return ch
}

func (f *FakeClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.PutErr != nil {
		return minio.UploadInfo{}, f.PutErr
	}
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, reader); err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Puts = append(f.Puts, PutCall{
		Bucket:      bucketName,
		Key:         objectName,
		ContentType: opts.ContentType,
		Size:        objectSize,
		Body:        buffer.Bytes(),
	})
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: objectSize}, nil
}

func (f *FakeClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removes = append(f.Removes, objectName)
	return nil
}
