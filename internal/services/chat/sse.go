package chat

import (
	"bufio"
	"io"
	"strings"
)

const (
	doneSentinel = "[DONE]"
	// maxEventLine bounds a single SSE line from the backend.
	maxEventLine = 1024 * 1024
)

// eventReader yields the data payload of each server-sent event. Multi-line
// data fields are joined with "\n"; comments and other fields are ignored.
type eventReader struct {
	scanner *bufio.Scanner
}

func newEventReader(r io.Reader) *eventReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	return &eventReader{scanner: scanner}
}

// Next blocks until a complete event is available. It returns io.EOF once the
// stream ends; a final event without a trailing blank line is still returned.
func (e *eventReader) Next() (string, error) {
	var data []string
	hasData := false

	for e.scanner.Scan() {
		line := e.scanner.Text()

		if line == "" {
			if hasData {
				return strings.Join(data, "\n"), nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		if field != "data" {
			continue
		}
		data = append(data, strings.TrimPrefix(value, " "))
		hasData = true
	}

	if err := e.scanner.Err(); err != nil {
		return "", err
	}
	if hasData {
		return strings.Join(data, "\n"), nil
	}
	return "", io.EOF
}
