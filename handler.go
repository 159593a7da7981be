package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resizedPrefix = "resized/"

	msgSuccess = "succesfully scaled image"
	msgFailure = "Error scaling image"
)

// Handler scales one S3 object per event. It keeps no per-request state, so a single
// Handler serves every invocation of the process.
type Handler struct {
	store      ObjectStore
	destBucket string
	log        *zap.SugaredLogger
}

func NewHandler(store ObjectStore, destBucket string, log *zap.SugaredLogger) *Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		store:      store,
		destBucket: destBucket,
		log:        log,
	}
}

// Handle always reports status 200. Failures of any kind, panics included, are logged
// and turned into the generic error body.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (resp Response, err error) {

	log := h.log.With("request_id", requestID(ctx))

	defer func() {
		if r := recover(); r != nil {
			log.Errorw("Error scaling image", "error", fmt.Sprintf("panic: %v", r))
			resp = newResponse(msgFailure)
			err = nil
		}
	}()

	if scaleErr := h.scale(ctx, log, event); scaleErr != nil {
		log.Errorw("Error scaling image", "error", scaleErr)
		return newResponse(msgFailure), nil
	}
	return newResponse(msgSuccess), nil
}

func (h *Handler) scale(ctx context.Context, log *zap.SugaredLogger, event events.S3Event) error {

	bucket, key, err := sourceObject(event)
	if err != nil {
		return err
	}
	destKey := resizedPrefix + key
	log = log.With("bucket", bucket, "key", key)

	log.Debugf("Downloading s3://%s/%s", bucket, key)
	content, err := h.store.Get(ctx, bucket, key)
	if err != nil {
		return err
	}

	src, err := decodeImage(content)
	if err != nil {
		return err
	}

	dst, err := halfScale(src)
	if err != nil {
		return err
	}
	log.Debugf("Scaled %s %dx%d to %dx%d", src.format, src.Width(), src.Height(), dst.Width(), dst.Height())

	encoded, err := encodeImage(dst)
	if err != nil {
		return err
	}

	if err := h.store.Put(ctx, h.destBucket, destKey, encoded, contentTypeFor(dst.format)); err != nil {
		return err
	}

	log.Infof("Scaled s3://%s/%s to s3://%s/%s (%dx%d, %d bytes)",
		bucket, key, h.destBucket, destKey, dst.Width(), dst.Height(), len(encoded))
	return nil
}

// sourceObject reads the first record only. Object keys in S3 notifications are
// URL-encoded, so the key is unescaped before it is used.
func sourceObject(event events.S3Event) (string, string, error) {
	if len(event.Records) == 0 {
		return "", "", fmt.Errorf("%w: no records", ErrMalformedEvent)
	}

	entity := event.Records[0].S3
	if entity.Bucket.Name == "" {
		return "", "", fmt.Errorf("%w: missing bucket name", ErrMalformedEvent)
	}
	if entity.Object.Key == "" {
		return "", "", fmt.Errorf("%w: missing object key", ErrMalformedEvent)
	}

	key, err := url.QueryUnescape(entity.Object.Key)
	if err != nil {
		return "", "", fmt.Errorf("%w: object key %q: %v", ErrMalformedEvent, entity.Object.Key, err)
	}
	return entity.Bucket.Name, key, nil
}

func newResponse(msg string) Response {
	body, _ := json.Marshal(msg)
	return Response{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
