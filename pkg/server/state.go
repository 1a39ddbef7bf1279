package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/goliatone/go-mdform/pkg/submission"
)

// snapshot mirrors the latest result to a file. Writes replace the file
// atomically, so readers see either the previous or the new result.
type snapshot struct {
	path string
}

func newSnapshot(path string) *snapshot {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &snapshot{path: path}
}

func (s *snapshot) save(result submission.Result) error {
	payload, err := result.Pretty()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	payload = append(payload, '\n')
	if err := atomic.WriteFile(s.path, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// load reads a previous snapshot. A missing file is not an error.
func (s *snapshot) load() (submission.Result, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return submission.Result{}, false, nil
	}
	if err != nil {
		return submission.Result{}, false, err
	}
	var result submission.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return submission.Result{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return result, true, nil
}

func jsonBytes(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
