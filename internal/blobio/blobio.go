// Package blobio reads the 128-bit-word text blobs shared by the operator
// and data libraries, validating every line before it ever reaches a
// stage's line buffer.
package blobio

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/example/excitation-compiler/internal/bitstream"
	"github.com/example/excitation-compiler/internal/xerrors"
)

// ReadWords reads path line by line and returns its words, with a trailing
// newline tolerated but not required. Every non-empty line must be a
// well-formed 128-bit word; the first violation is reported as a
// MalformedBlobError. A missing blob file is also a MalformedBlobError.
func ReadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &xerrors.MalformedBlobError{Path: path, Reason: "blob file is missing"}
		}
		return nil, &xerrors.IOFailureError{Op: "open blob", Path: path, Err: err}
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 256), 4096)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		if !bitstream.IsWord(line) {
			return nil, &xerrors.MalformedBlobError{
				Path:   path,
				Reason: fmt.Sprintf("line %d is not a 128-bit binary word", lineNo),
			}
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, &xerrors.IOFailureError{Op: "read blob", Path: path, Err: err}
	}
	return words, nil
}
