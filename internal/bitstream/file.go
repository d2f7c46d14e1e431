package bitstream

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadFile reads path and returns its lines with trailing newlines
// stripped, for re-loading a stream a previous stage already wrote.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 256), 4096)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return lines, nil
}

// WriteFile writes lines to path, one word per line, newline-terminated.
func WriteFile(path string, lines []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err = w.WriteString(line); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
		if err = w.WriteByte('\n'); err != nil {
			return fmt.Errorf("write %q: %w", path, err)
		}
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return nil
}
