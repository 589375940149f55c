package streaming

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

func deltaEvent(text string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":%q},\"finish_reason\":null}]}\n\n", text)
}

const finishEvent = "data: {\"choices\":[{\"index\":0,\"delta\":{},\"finish_reason\":\"stop\"}]}\n\n"

// sseServer replays events, flushing after each one.
func sseServer(t *testing.T, events ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, e := range events {
			_, _ = io.WriteString(w, e)
			w.(http.Flusher).Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func providerRequest(url string) *model.ProviderRequest {
	return &model.ProviderRequest{
		Profile: "default",
		URL:     url,
		Headers: map[string]string{"api-key": "k", "Content-Type": "application/json"},
		Body:    &model.ProviderChatRequest{Messages: []model.ProviderMessage{}, Stream: true},
	}
}

func pipeAll(t *testing.T, url string) (string, error) {
	t.Helper()
	stream, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(url))
	require.Nil(t, relayErr)
	defer stream.Close() // nolint: errcheck

	var buf bytes.Buffer
	n, err := stream.Pipe(&buf, nil)
	require.EqualValues(t, buf.Len(), n)
	return buf.String(), err
}

func TestPipeDeltasInOrder(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("Hel"), deltaEvent("lo"), deltaEvent(", world"), "data: [DONE]\n\n")
	out, err := pipeAll(t, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Hello, world", out)
}

func TestPipeStopsAtFinishReason(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("a"), finishEvent, deltaEvent("after"), "data: [DONE]\n\n")
	out, err := pipeAll(t, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "a", out)
}

func TestPipeStopsAtDone(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("a"), "data: [DONE]\n\n", deltaEvent("after"))
	out, err := pipeAll(t, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "a", out)
}

func TestPipeSkipsChunksWithoutChoices(t *testing.T) {
	t.Parallel()

	srv := sseServer(t,
		"data: {\"choices\":[],\"prompt_filter_results\":[]}\n\n",
		": ping\n\n",
		deltaEvent("x"),
		"data: {\"choices\":[{\"index\":0,\"delta\":{\"role\":\"assistant\"},\"finish_reason\":null}]}\n\n",
		deltaEvent("y"),
		"data: {\"choices\":[],\"usage\":{\"total_tokens\":3}}\n\n",
		finishEvent,
	)
	out, err := pipeAll(t, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "xy", out)
}

func TestPipeAbortsOnMalformedEvent(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("ok"), "data: {not json\n\n", deltaEvent("never"))
	out, err := pipeAll(t, srv.URL)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedEvent))
	require.Equal(t, "ok", out)
}

func TestPipeWithoutDoneEndsAtEOF(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("partial"))
	out, err := pipeAll(t, srv.URL)
	require.NoError(t, err)
	require.Equal(t, "partial", out)
}

func TestPipeFlushesEachDelta(t *testing.T) {
	t.Parallel()

	srv := sseServer(t, deltaEvent("a"), deltaEvent("b"), deltaEvent("c"), finishEvent)
	stream, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(srv.URL))
	require.Nil(t, relayErr)
	defer stream.Close() // nolint: errcheck

	var (
		buf     bytes.Buffer
		flushed []string
	)
	_, err := stream.Pipe(&buf, func() { flushed = append(flushed, buf.String()) })
	require.NoError(t, err)
	require.Equal(t, []string{"a", "ab", "abc"}, flushed)
}

func TestOpenSendsRequest(t *testing.T) {
	t.Parallel()

	var (
		gotHeader http.Header
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	stream, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(srv.URL))
	require.Nil(t, relayErr)
	require.NoError(t, stream.Close())

	require.Equal(t, "k", gotHeader.Get("api-key"))
	require.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	require.Equal(t, true, gotBody["stream"])
	require.Equal(t, []any{}, gotBody["messages"])
}

func TestOpenStructuredError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit","param":"","code":"429"}}`)
	}))
	defer srv.Close()

	stream, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(srv.URL))
	require.Nil(t, stream)
	require.NotNil(t, relayErr)
	require.Equal(t, http.StatusTooManyRequests, relayErr.StatusCode)
	require.Equal(t, "rate limited", relayErr.Message)
	require.Equal(t, "rate_limit", relayErr.Type)
	require.Equal(t, "429", relayErr.Code)
}

func TestOpenUnparseableError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(srv.URL))
	require.NotNil(t, relayErr)
	require.Equal(t, "upstream_error", relayErr.Type)
	require.Equal(t, "502 Bad Gateway", relayErr.Message)
	require.Contains(t, relayErr.RawError.Error(), "bad gateway")
}

func TestOpenConnectionFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, relayErr := Open(context.Background(), http.DefaultClient, providerRequest(url))
	require.NotNil(t, relayErr)
	require.Equal(t, "do_request_failed", relayErr.Code)
}

func TestCancellationAbortsUpstream(t *testing.T) {
	t.Parallel()

	upstreamGone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, deltaEvent("first"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(upstreamGone)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stream, relayErr := Open(ctx, http.DefaultClient, providerRequest(srv.URL))
	require.Nil(t, relayErr)
	defer stream.Close() // nolint: errcheck

	text, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "first", text)

	cancel()
	_, err = stream.Recv()
	require.Error(t, err)
	require.False(t, errors.Is(err, io.EOF))

	select {
	case <-upstreamGone:
	case <-time.After(5 * time.Second):
		t.Fatal("upstream request was not aborted")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	require.Equal(t, "abc", truncate("abc", 3))
	require.True(t, strings.HasSuffix(truncate("abcdef", 3), "..."))
}
