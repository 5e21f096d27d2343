package objectstorage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// objects larger than this are not config and are refused
const maxObjectSize = 1 << 20

type MinioWrapper struct {
	minioClient *minio.Client
	init        bool
}

func NewMinioWrapper(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioWrapper, error) {
	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	w := &MinioWrapper{}
	w.minioClient = minioClient
	w.init = true
	return w, nil
}

// MakeBucket creates the bucket unless it already exists.
func (w *MinioWrapper) MakeBucket(bucketName string) error {
	if !w.init {
		return fmt.Errorf("Minio wrapper not init")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := w.minioClient.BucketExists(ctx, bucketName)
	if err == nil && exists {
		return nil
	}
	location := "us-east-1"
	return w.minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
}

func (w *MinioWrapper) GetObject(bucketName string, objectName string) ([]byte, error) {
	if !w.init {
		return nil, fmt.Errorf("Minio wrapper not init")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	obj, err := w.minioClient.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinioError(err)
	}
	defer obj.Close()
	data, err := io.ReadAll(io.LimitReader(obj, maxObjectSize+1))
	if err != nil {
		return nil, translateMinioError(err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("object %s/%s exceeds %d bytes", bucketName, objectName, maxObjectSize)
	}
	return data, nil
}

func translateMinioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrObjectNotFound
	}
	return err
}

func (w *MinioWrapper) PresignGetObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	presignedURL, err := w.minioClient.PresignedGetObject(
		ctx, bucketName,
		objectName,
		expiry,
		nil)
	if err != nil {
		return "", err
	}
	return url.PathUnescape(presignedURL.String())
}

func (w *MinioWrapper) PresigPutObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	presignedURL, err := w.minioClient.PresignedPutObject(
		ctx,
		bucketName,
		objectName,
		expiry)
	if err != nil {
		return "", err
	}
	return url.PathUnescape(presignedURL.String())
}
