// Package textio persists composed artifacts with the exact byte
// conventions the target controllers demand: CR LF line termination and a
// single-byte codepage, written atomically.
//
// Earlier pipeline stages compose text as terminator-free line sequences;
// the join here is the only place terminators are introduced, which is
// what keeps CR CR LF artifacts impossible.
package textio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding selects the target byte encoding of an artifact.
type Encoding string

const (
	// CP1252 is the Windows-1252 codepage the macro controller reads.
	// Unmappable runes are substituted, never dropped.
	CP1252 Encoding = "cp1252"

	// ASCII passes UTF-8 bytes through untouched; the motion-code
	// consumers accept any ASCII-compatible encoding.
	ASCII Encoding = "ascii"
)

// Compose joins lines with CR LF and guarantees a terminator after the
// final line. Any terminator characters smuggled inside a line are
// removed first so the two-byte sequence can never double up.
func Compose(lines []string) string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		if strings.ContainsAny(line, "\r\n") {
			line = strings.NewReplacer("\r", "", "\n", "").Replace(line)
		}
		cleaned[i] = line
	}
	return strings.Join(cleaned, "\r\n") + "\r\n"
}

// WriteFile composes, encodes and atomically persists an artifact. Either
// the complete byte stream lands at path or the destination is left
// untouched; a partial temp file never survives an error.
func WriteFile(path string, lines []string, enc Encoding) error {
	data, err := Encode(Compose(lines), enc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Encode converts composed text to the artifact's byte encoding. The text
// already carries its CR LF terminators; no further newline translation
// happens past this point.
func Encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case CP1252:
		encoder := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
		data, _, err := transform.Bytes(encoder, []byte(text))
		if err != nil {
			return nil, fmt.Errorf("cp1252: %w", err)
		}
		return data, nil
	case ASCII, "":
		return []byte(text), nil
	}
	return nil, fmt.Errorf("unknown encoding %q", enc)
}
