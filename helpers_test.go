package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

type storedObject struct {
	body        []byte
	contentType string
}

// memStore is an in-memory ObjectStore keyed by "bucket/key".
type memStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	getErr  error
	putErr  error
	onGet   func()
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string]storedObject)}
}

func (m *memStore) WithObject(bucket, key string, body []byte) *memStore {
	m.objects[bucket+"/"+key] = storedObject{body: body}
	return m
}

func (m *memStore) WithGetError(err error) *memStore {
	m.getErr = err
	return m
}

func (m *memStore) WithPutError(err error) *memStore {
	m.putErr = err
	return m
}

func (m *memStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if m.onGet != nil {
		m.onGet()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, newStorageError(opGet, bucket, key, FailureTransient, m.getErr)
	}
	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, newStorageError(opGet, bucket, key, FailureNotFound, errors.New("NoSuchKey: The specified key does not exist."))
	}
	return obj.body, nil
}

func (m *memStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putErr != nil {
		return newStorageError(opPut, bucket, key, FailureAccessDenied, m.putErr)
	}
	b := make([]byte, len(body))
	copy(b, body)
	m.objects[bucket+"/"+key] = storedObject{body: b, contentType: contentType}
	return nil
}

func (m *memStore) object(bucket, key string) (storedObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[bucket+"/"+key]
	return obj, ok
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func s3Event(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{
			{
				EventSource: "aws:s3",
				EventName:   "ObjectCreated:Put",
				S3: events.S3Entity{
					Bucket: events.S3Bucket{Name: bucket},
					Object: events.S3Object{Key: key},
				},
			},
		},
	}
}

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}
	return buf.Bytes()
}

// zeroWidthPNG is a valid 1x1 PNG with the IHDR width patched to zero.
func zeroWidthPNG(t *testing.T) []byte {
	t.Helper()
	b := pngBytes(t, 1, 1)
	// signature(8) + chunk length(4) + "IHDR"(4), then big-endian width
	copy(b[16:20], []byte{0, 0, 0, 0})
	return b
}

func imageConfig(t *testing.T, b []byte) (image.Config, string) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	return cfg, format
}
