package streaming

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Laisky/errors/v2"
	gutils "github.com/Laisky/go-utils/v5"

	"github.com/VaDeloitte/test-project-sub002/relay/adaptor/openai"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// ErrMalformedEvent aborts a stream whose event payload is not valid JSON.
var ErrMalformedEvent = errors.New("malformed stream event")

// maxErrorBodySize caps how much of a failed upstream response is read.
const maxErrorBodySize = 1 << 20

// Stream is an open upstream completion stream. It is not safe for concurrent use.
type Stream struct {
	Profile    string
	StatusCode int

	body   io.ReadCloser
	events *eventReader
	done   bool
}

// Open sends preq and waits for the upstream status. A non-200 response is read
// in full and returned as an error before anything is handed to the caller.
// Cancelling ctx aborts the upstream request at any point, including mid-stream.
func Open(ctx context.Context, client *http.Client, preq *model.ProviderRequest) (*Stream, *model.ErrorWithStatusCode) {
	body, err := json.Marshal(preq.Body)
	if err != nil {
		return nil, openai.ErrorWrapper(errors.Wrap(err, "marshal provider request"),
			"marshal_request_failed", http.StatusInternalServerError)
	}

	req, err := gutils.NewReusableRequest(ctx, http.MethodPost, preq.URL, bytes.NewReader(body))
	if err != nil {
		return nil, openai.ErrorWrapper(errors.Wrap(err, "new request failed"),
			"new_request_failed", http.StatusInternalServerError)
	}
	for k, v := range preq.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, openai.ErrorWrapper(errors.Wrap(err, "do request failed"),
			"do_request_failed", http.StatusBadGateway)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close() // nolint: errcheck
		return nil, upstreamError(resp)
	}

	return &Stream{
		Profile:    preq.Profile,
		StatusCode: resp.StatusCode,
		body:       resp.Body,
		events:     newEventReader(resp.Body),
	}, nil
}

// upstreamError turns a failed response into a relay error, keeping the
// provider's error fields when the body carries them.
func upstreamError(resp *http.Response) *model.ErrorWithStatusCode {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	if readErr == nil {
		var errResp model.GeneralErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil &&
			errResp.Error != nil && errResp.Error.Message != "" {
			e := *errResp.Error
			e.RawError = errors.Errorf("upstream status %d: %s", resp.StatusCode, e.Message)
			return &model.ErrorWithStatusCode{Error: e, StatusCode: resp.StatusCode}
		}
	}

	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = http.StatusText(resp.StatusCode)
	}
	return &model.ErrorWithStatusCode{
		Error: model.Error{
			Message:  status,
			Type:     "upstream_error",
			Code:     resp.StatusCode,
			RawError: errors.Errorf("upstream status %d, body: %s", resp.StatusCode, string(respBody)),
		},
		StatusCode: resp.StatusCode,
	}
}

// Recv returns the next non-empty text delta. It returns io.EOF once the
// provider signals completion with [DONE], a finish_reason, or by closing the
// stream. A payload that is not JSON yields ErrMalformedEvent.
func (s *Stream) Recv() (string, error) {
	for !s.done {
		payload, err := s.events.Next()
		if err != nil {
			s.done = true
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}

		if strings.TrimSpace(payload) == Done {
			s.done = true
			break
		}

		var chunk model.ChatCompletionsStreamResponse
		if err = json.Unmarshal([]byte(payload), &chunk); err != nil {
			s.done = true
			return "", errors.Wrapf(ErrMalformedEvent, "decode %q: %v", truncate(payload, 128), err)
		}

		// usage chunks and content filter preambles carry no choices
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != nil {
			s.done = true
			break
		}
		if text := choice.Delta.Content.Text(); text != "" {
			return text, nil
		}
	}

	return "", io.EOF
}

// Pipe writes every delta to w as it arrives, calling flush after each write.
// It returns the number of bytes written. A nil error means the provider
// completed normally.
func (s *Stream) Pipe(w io.Writer, flush func()) (int64, error) {
	var written int64
	for {
		text, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}

		n, err := io.WriteString(w, text)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write delta")
		}
		if flush != nil {
			flush()
		}
	}
}

// Close releases the upstream connection.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
