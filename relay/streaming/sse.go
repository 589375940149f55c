package streaming

import (
	"bufio"
	"io"
	"strings"

	"github.com/Laisky/errors/v2"
)

// maxEventLineSize bounds a single SSE line. Data-URL echoes from some gateways
// can be large, so this is well above bufio's default.
const maxEventLineSize = 1024 * 1024

// Done is the sentinel payload that ends an OpenAI style stream.
const Done = "[DONE]"

// eventReader yields the data payload of each server-sent event.
type eventReader struct {
	scanner *bufio.Scanner
}

func newEventReader(r io.Reader) *eventReader {
	scanner := bufio.NewScanner(r)
	buffer := make([]byte, maxEventLineSize)
	scanner.Buffer(buffer, len(buffer))
	scanner.Split(bufio.ScanLines)
	return &eventReader{scanner: scanner}
}

// Next returns the data of the next event that carries any. Multiple data lines
// of one event are joined with "\n". Comments and the event, id and retry
// fields are ignored. It returns io.EOF once the body is exhausted.
func (r *eventReader) Next() (string, error) {
	var (
		data    []string
		hasData bool
	)

	for r.scanner.Scan() {
		line := r.scanner.Text()
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

	if err := r.scanner.Err(); err != nil {
		return "", errors.Wrap(err, "read event stream")
	}
	// a final event without the trailing blank line is still delivered
	if hasData {
		return strings.Join(data, "\n"), nil
	}
	return "", io.EOF
}
