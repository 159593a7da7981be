package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"
)

// invokeEventFile runs the handler once on an S3 notification read from a file and
// writes the response JSON to out.
func invokeEventFile(ctx context.Context, path string, h *Handler, out io.Writer) error {

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Event File Error: %v", err)
	}

	var event events.S3Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return fmt.Errorf("Event JSON Error: %s: %v", path, err)
	}

	resp, _ := h.Handle(ctx, event)
	return json.NewEncoder(out).Encode(resp)
}
