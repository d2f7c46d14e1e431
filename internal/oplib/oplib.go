// Package oplib loads the operator-library directory: one subdirectory per
// operator variant, each holding info.json and the op_jili.txt instruction
// blob.
package oplib

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/example/excitation-compiler/internal/blobio"
	"github.com/example/excitation-compiler/internal/libmatch"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// Entry is one operator-library variant: its decoded info record plus the
// path to its instruction blob.
type Entry struct {
	Info            libmatch.Info
	Dir             string
	InstructionPath string
}

// ReadInstructions reads and validates the entry's instruction blob.
func (e Entry) ReadInstructions() ([]string, error) {
	return blobio.ReadWords(e.InstructionPath)
}

// Load walks libraryPath and decodes every subdirectory that carries an
// info.json. Subdirectories without one are skipped, matching the source's
// permissive directory scan; a subdirectory with a malformed info.json is a
// hard IOFailure since it is not a soft-warning condition in the spec.
func Load(libraryPath string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(libraryPath)
	if err != nil {
		return nil, &xerrors.IOFailureError{Op: "read op-library directory", Path: libraryPath, Err: err}
	}
	var entries []Entry
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		opDir := filepath.Join(libraryPath, de.Name())
		infoPath := filepath.Join(opDir, "info.json")
		if _, statErr := os.Stat(infoPath); statErr != nil {
			continue
		}
		data, err := os.ReadFile(infoPath)
		if err != nil {
			return nil, &xerrors.IOFailureError{Op: "read op info.json", Path: infoPath, Err: err}
		}
		var info libmatch.Info
		if err := json.Unmarshal(data, &info); err != nil {
			return nil, &xerrors.IOFailureError{Op: "parse op info.json", Path: infoPath, Err: err}
		}
		entries = append(entries, Entry{
			Info:            info,
			Dir:             opDir,
			InstructionPath: filepath.Join(opDir, "op_jili.txt"),
		})
	}
	return entries, nil
}
