// Package record reads and writes per-project dependency record files.
//
// A record file is UTF-16LE text with a byte order mark. After a fixed banner
// it holds one section per translation unit:
//
//	FILE=<tu-path>
//	    <header-path>
//	END FILE
//
// followed by two blank lines.
package record

import (
	"bufio"
	"bytes"
	"strings"

	"go.trai.ch/stale/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// Banner opens every record file.
	Banner = ";\n; stale dependency record\n;\n"

	fileTag    = "FILE="
	endFileTag = "END FILE"
	indent     = "    "
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// Encode renders entries in the record format, including the byte order mark.
func Encode(entries []domain.RecordEntry) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(Banner)
	for _, e := range entries {
		sb.WriteString(fileTag)
		sb.WriteString(e.Source)
		sb.WriteByte('\n')
		for _, h := range e.Headers {
			sb.WriteString(indent)
			sb.WriteString(h)
			sb.WriteByte('\n')
		}
		sb.WriteString(endFileTag)
		sb.WriteString("\n\n\n")
	}

	out, err := utf16LE.NewEncoder().Bytes([]byte(sb.String()))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode dependency record")
	}
	return out, nil
}

// Decode parses a record. UTF-16 input must start with a byte order mark;
// input without one is read as UTF-8.
func Decode(data []byte) ([]domain.RecordEntry, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, zerr.Wrap(domain.ErrMalformedRecordFile, "invalid text encoding")
	}

	var (
		entries []domain.RecordEntry
		current *domain.RecordEntry
		seen    = make(map[string]struct{})
		lineNo  int
	)

	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		switch {
		case current == nil && strings.HasPrefix(line, fileTag):
			name := strings.TrimSpace(strings.TrimPrefix(line, fileTag))
			if name == "" {
				return nil, malformed("empty translation unit name", lineNo)
			}
			if _, dup := seen[name]; dup {
				return nil, zerr.With(malformed("duplicate translation unit", lineNo), "source", name)
			}
			seen[name] = struct{}{}
			current = &domain.RecordEntry{Source: name}

		case current == nil:
			return nil, malformed("expected FILE= section", lineNo)

		case line == endFileTag:
			entries = append(entries, *current)
			current = nil

		case strings.HasPrefix(line, fileTag):
			return nil, malformed("FILE= inside an open section", lineNo)

		default:
			current.Headers = append(current.Headers, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(domain.ErrMalformedRecordFile, err.Error())
	}
	if current != nil {
		return nil, zerr.With(malformed("end of file inside a section", lineNo), "source", current.Source)
	}
	return entries, nil
}

func malformed(msg string, line int) error {
	return zerr.With(zerr.Wrap(domain.ErrMalformedRecordFile, msg), "line", line)
}
