package fwsize

import (
	"encoding/json"
	"fmt"
	"os"
)

// LastFileName is the per-build-directory file recording the previous
// build's sizes, used to show deltas.
const LastFileName = "fw-size.last"

// LastSizes is the previous build's flash and RAM usage.
type LastSizes struct {
	ProgramSize   int64 `json:"program_size"`
	VariablesSize int64 `json:"variables_size"`
}

// ReadLast loads the previous build's sizes. A missing file returns
// (nil, nil).
func ReadLast(path string) (*LastSizes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var last LastSizes
	if err := json.Unmarshal(data, &last); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &last, nil
}

// WriteLast records this build's sizes for the next run.
func WriteLast(path string, a *Analysis) error {
	data, err := json.Marshal(LastSizes{
		ProgramSize:   a.Program,
		VariablesSize: a.Variables,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
