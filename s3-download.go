package main

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {

	buff := &aws.WriteAtBuffer{}

	numBytes, err := s.downloader.DownloadWithContext(ctx, buff,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
	if err != nil {
		return nil, newStorageError(opGet, bucket, key, classifyS3Error(err), err)
	}

	logger.Debugf("Downloaded %d bytes from s3://%s/%s", numBytes, bucket, key)

	return buff.Bytes(), nil
}
