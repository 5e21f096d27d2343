package objectstorage

import (
	"errors"
	"time"
)

var ErrObjectNotFound = errors.New("object not found")

type ObjStorage interface {
	MakeBucket(bucketName string) error
	GetObject(bucketName string, objectName string) ([]byte, error)
	PresignGetObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error)
	PresigPutObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error)
}

// EmptyStorage is used when no object storage is configured. Every object is
// missing.
type EmptyStorage struct{}

func (e *EmptyStorage) MakeBucket(bucketName string) error {
	return nil
}

func (e *EmptyStorage) GetObject(bucketName string, objectName string) ([]byte, error) {
	return nil, ErrObjectNotFound
}

func (e *EmptyStorage) PresignGetObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error) {
	return "", nil
}

func (e *EmptyStorage) PresigPutObject(bucketName string, objectName string, expiry time.Duration, params map[string]interface{}) (string, error) {
	return "", nil
}
