package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/stretchr/testify/require"

	"github.com/VaDeloitte/test-project-sub002/common/logger"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

func testCtx() context.Context {
	return gmw.SetLogger(context.Background(), logger.Logger)
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()
	r := NewResolver(Options{BlobBaseURL: "https://blob.example.com/uploads/", SASToken: "?sv=1&sig=abc"})

	require.Equal(t, "https://cdn.example.com/a.png",
		r.AbsoluteURL(model.FileRef{Filename: "a.png", URL: "https://cdn.example.com/a.png"}))
	require.Equal(t, "https://blob.example.com/uploads/photo.jpg?sv=1&sig=abc",
		r.AbsoluteURL(model.FileRef{Filename: "photo.jpg"}))
	require.Equal(t, "https://blob.example.com/uploads/user%201/my%20photo.jpg?sv=1&sig=abc",
		r.AbsoluteURL(model.FileRef{Filename: "my photo.jpg", URL: "/user 1/my photo.jpg"}))

	noSAS := NewResolver(Options{BlobBaseURL: "https://blob.example.com"})
	require.Equal(t, "https://blob.example.com/note.mp3", noSAS.AbsoluteURL(model.FileRef{Filename: "note.mp3"}))
}

func TestResolveImageDirect(t *testing.T) {
	payload := []byte("\xff\xd8\xff\xe0jpeg-bytes")
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.jpg" {
			http.NotFound(w, r)
			return
		}
		require.Equal(t, "sig=1", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer blob.Close()

	r := NewResolver(Options{BlobBaseURL: blob.URL, SASToken: "sig=1", Client: blob.Client(), Timeout: time.Second})

	got, ok := r.ResolveImage(testCtx(), model.FileRef{Filename: "photo.jpg"})
	require.True(t, ok)
	require.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(payload), got)

	got, ok = r.ResolveImage(testCtx(), model.FileRef{Filename: "missing.png"})
	require.False(t, ok)
	require.Empty(t, got)
}

func TestResolveRefusesForeignHosts(t *testing.T) {
	var hits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG\r\n\x1a\n"))
	}))
	defer foreign.Close()
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"transcription": "leaked"})
	}))
	defer proxy.Close()

	r := NewResolver(Options{
		BlobBaseURL:           "https://blob.example.com",
		TranscriptionProxyURL: proxy.URL,
		Client:                foreign.Client(),
	})

	_, ok := r.ResolveImage(testCtx(), model.FileRef{Filename: "a.png", URL: foreign.URL + "/latest/meta-data/iam"})
	require.False(t, ok)
	_, ok = r.ResolveAudioTranscript(testCtx(), model.FileRef{Filename: "a.mp3", URL: foreign.URL + "/a.mp3"})
	require.False(t, ok)
	require.Zero(t, hits.Load())

	allowed := NewResolver(Options{
		AllowedHosts: []string{strings.TrimPrefix(foreign.URL, "http://")},
		Client:       foreign.Client(),
	})
	got, ok := allowed.ResolveImage(testCtx(), model.FileRef{Filename: "a.png", URL: foreign.URL + "/a.png"})
	require.True(t, ok)
	require.True(t, strings.HasPrefix(got, "data:image/png;base64,"))
}

func TestResolveImageViaProxy(t *testing.T) {
	var gotBlobURL string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req BlobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotBlobURL = req.BlobURL
		if strings.HasSuffix(req.BlobURL, "broken.png") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"dataUrl": "data:image/png;base64,AAAA"})
	}))
	defer proxy.Close()

	r := NewResolver(Options{
		BlobBaseURL:   "https://blob.example.com",
		ImageProxyURL: proxy.URL,
		Client:        proxy.Client(),
	})

	got, ok := r.ResolveImage(testCtx(), model.FileRef{Filename: "a.png"})
	require.True(t, ok)
	require.Equal(t, "data:image/png;base64,AAAA", got)
	require.Equal(t, "https://blob.example.com/a.png", gotBlobURL)

	_, ok = r.ResolveImage(testCtx(), model.FileRef{Filename: "broken.png"})
	require.False(t, ok)
}

func TestResolveImageTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	r := NewResolver(Options{BlobBaseURL: slow.URL, Client: slow.Client(), Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, ok := r.ResolveImage(testCtx(), model.FileRef{Filename: "hung.png"})
	require.False(t, ok)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveAudioTranscript(t *testing.T) {
	transcriber := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req BlobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch {
		case strings.HasSuffix(req.BlobURL, "/note.mp3"):
			_ = json.NewEncoder(w).Encode(map[string]string{"transcription": "hello there"})
		case strings.HasSuffix(req.BlobURL, "/empty.wav"):
			_, _ = w.Write([]byte(`{"foo":"bar"}`))
		default:
			http.Error(w, `{"error":"transcription failed"}`, http.StatusBadGateway)
		}
	}))
	defer transcriber.Close()

	r := NewResolver(Options{
		BlobBaseURL:           "https://blob.example.com",
		TranscriptionProxyURL: transcriber.URL,
		Client:                transcriber.Client(),
	})

	got, ok := r.ResolveAudioTranscript(testCtx(), model.FileRef{Filename: "note.mp3"})
	require.True(t, ok)
	require.Equal(t, "hello there", got)

	_, ok = r.ResolveAudioTranscript(testCtx(), model.FileRef{Filename: "bad.mp3"})
	require.False(t, ok)

	_, ok = r.ResolveAudioTranscript(testCtx(), model.FileRef{Filename: "empty.wav"})
	require.False(t, ok)

	unconfigured := NewResolver(Options{})
	_, ok = unconfigured.ResolveAudioTranscript(testCtx(), model.FileRef{Filename: "note.mp3"})
	require.False(t, ok)
}

func TestResolveAllPreservesOrder(t *testing.T) {
	t.Parallel()
	refs := []model.FileRef{{Filename: "a.png"}, {Filename: "b.png"}, {Filename: "c.png"}, {Filename: "d.png"}}
	delays := map[string]time.Duration{
		"a.png": 120 * time.Millisecond,
		"b.png": 10 * time.Millisecond,
		"c.png": 60 * time.Millisecond,
		"d.png": 0,
	}

	var inFlight, peak atomic.Int32
	results := ResolveAll(context.Background(), 2, refs, func(_ context.Context, ref model.FileRef) (string, bool) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(delays[ref.Filename])
		inFlight.Add(-1)
		return "resolved:" + ref.Filename, ref.Filename != "c.png"
	})

	require.Len(t, results, 4)
	for i, ref := range refs {
		require.Equal(t, ref, results[i].Ref)
		require.Equal(t, "resolved:"+ref.Filename, results[i].Value)
	}
	require.False(t, results[2].OK)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestResolveAllEmpty(t *testing.T) {
	t.Parallel()
	require.Empty(t, ResolveAll(context.Background(), 4, nil, nil))
}
