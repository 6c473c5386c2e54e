// Package catalog reads the line-delimited catalog of canonical records.
package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/vidmatch/internal/domain/model"
)

// ErrReadCatalog marks an unreadable catalog source.
var ErrReadCatalog = errors.New("read catalog")

const maxLineBytes = 8 << 20

// Entry is one undecoded catalog line. Decoding is deferred to the worker
// so a malformed line fails only its own record.
type Entry struct {
	Line int
	Raw  []byte
	// Oversized marks a line longer than maxLineBytes. Its bytes are
	// dropped and Decode rejects it.
	Oversized bool
}

// ReadFile materializes every non-blank line of the file at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadCatalog, err)
	}
	defer f.Close()
	return Read(f)
}

// Read materializes every non-blank line of r. A line too long to hold
// is kept as an oversized entry instead of failing the whole catalog.
func Read(r io.Reader) ([]Entry, error) {
	var out []Entry
	br := bufio.NewReaderSize(r, 64*1024)
	for n := 1; ; n++ {
		line, oversized, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadCatalog, err)
		}
		if oversized {
			out = append(out, Entry{Line: n, Oversized: true})
			continue
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		out = append(out, Entry{Line: n, Raw: line})
	}
	return out, nil
}

// readLine returns the next line without its terminator in a freshly
// allocated slice. Past maxLineBytes it discards the rest of the line.
func readLine(br *bufio.Reader) (line []byte, oversized bool, err error) {
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !oversized {
			if len(line)+len(chunk) > maxLineBytes {
				oversized, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !more {
			return line, oversized, nil
		}
	}
}

// Decode parses and validates one entry.
func Decode(e Entry) (model.CanonicalRecord, error) {
	if e.Oversized {
		return model.CanonicalRecord{}, fmt.Errorf("%w: line %d: longer than %d bytes", model.ErrMalformedRecord, e.Line, maxLineBytes)
	}
	var rec model.CanonicalRecord
	if err := json.Unmarshal(e.Raw, &rec); err != nil {
		return model.CanonicalRecord{}, fmt.Errorf("%w: line %d: %w", model.ErrMalformedRecord, e.Line, err)
	}
	if err := rec.Validate(); err != nil {
		return model.CanonicalRecord{}, fmt.Errorf("line %d: %w", e.Line, err)
	}
	return rec, nil
}
