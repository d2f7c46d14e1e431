// Package datalib loads the data-library directory: one subdirectory per
// operator variant, each holding info.json plus weight_data.txt
// (Conv/FC only) and output_data.txt.
package datalib

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/blobio"
	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// Entry is one data-library variant.
type Entry struct {
	Info       libmatch.Info
	Dir        string
	WeightPath string // empty when the entry has no weight blob (Pool)
	OutputPath string
}

// ReadWeights reads the entry's weight blob. Callers must only invoke this
// for Conv/FC entries; WeightPath is empty for Pool.
func (e Entry) ReadWeights() ([]string, error) {
	return blobio.ReadWords(e.WeightPath)
}

// ReadOutputs reads the entry's output blob.
func (e Entry) ReadOutputs() ([]string, error) {
	return blobio.ReadWords(e.OutputPath)
}

// Load walks root and decodes every subdirectory that carries an info.json.
func Load(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, &xerrors.IOFailureError{Op: "read data-library directory", Path: root, Err: err}
	}
	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		opDir := filepath.Join(root, de.Name())
		infoPath := filepath.Join(opDir, "info.json")
		if _, statErr := os.Stat(infoPath); statErr != nil {
			continue
		}
		data, err := os.ReadFile(infoPath)
		if err != nil {
			return nil, &xerrors.IOFailureError{Op: "read data info.json", Path: infoPath, Err: err}
		}
		var info libmatch.Info
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, &xerrors.IOFailureError{Op: "parse data info.json", Path: infoPath, Err: err}
		}
		e := Entry{Info: info, Dir: opDir, OutputPath: filepath.Join(opDir, "output_data.txt")}
		weightPath := filepath.Join(opDir, "weight_data.txt")
		if _, statErr := os.Stat(weightPath); statErr == nil {
			e.WeightPath = weightPath
		}
		entries = append(entries, e)
	}
	return entries, nil
}
