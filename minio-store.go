package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore is the ObjectStore used against a MinIO server instead of S3.
type MinioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("MinIO client init error: %v", err)
	}

	logger.Infof("MinIO client initialized: %s", endpoint)
	return &MinioStore{client: client}, nil
}

func (m *MinioStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {

	object, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, newStorageError(opGet, bucket, key, classifyMinioError(err), err)
	}
	defer object.Close()

	// GetObject is lazy, a missing key only shows up on the first read
	content, err := io.ReadAll(object)
	if err != nil {
		return nil, newStorageError(opGet, bucket, key, classifyMinioError(err), err)
	}

	logger.Debugf("Downloaded %d bytes from minio %s/%s", len(content), bucket, key)
	return content, nil
}

func (m *MinioStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {

	info, err := m.client.PutObject(
		ctx,
		bucket,
		key,
		bytes.NewReader(body),
		int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return newStorageError(opPut, bucket, key, classifyMinioError(err), err)
	}

	logger.Debugf("Uploaded minio %s/%s (size: %d bytes)", bucket, key, info.Size)
	return nil
}

func classifyMinioError(err error) StorageFailure {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return FailureNotFound
	case "AccessDenied", "Forbidden":
		return FailureAccessDenied
	}
	return FailureTransient
}
