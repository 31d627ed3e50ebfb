// Package snapshot encodes the durable cache snapshot as gzip-compressed JSON.
package snapshot

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/humanbelnik/kinoreco/internal/model"
)

// ErrCorrupt marks a snapshot that exists but cannot be decoded. Callers
// recover from it the same way as from a missing snapshot, but it must be
// distinguishable for logging.
var ErrCorrupt = errors.New("corrupt snapshot")

func Encode(s model.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (model.Snapshot, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var s model.Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	return s, nil
}
