package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/logger"
	"github.com/VaDeloitte/test-project-sub002/common/network"
	rcontroller "github.com/VaDeloitte/test-project-sub002/relay/controller"
	"github.com/VaDeloitte/test-project-sub002/relay/media"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

type noopResolver struct{}

func (noopResolver) ResolveImage(context.Context, model.FileRef) (string, bool) { return "", false }
func (noopResolver) ResolveAudioTranscript(context.Context, model.FileRef) (string, bool) {
	return "", false
}

type fixedReadiness bool

func (r fixedReadiness) Ready() bool    { return bool(r) }
func (fixedReadiness) Encoding() string { return "cl100k_base" }

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		gmw.SetLogger(c, logger.Logger)
		c.Next()
	})
	return engine
}

func post(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRelayWritesPlainTextError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"The API deployment for this resource does not exist.","type":"invalid_request_error","code":"DeploymentNotFound"}}`))
	}))
	defer upstream.Close()

	origHost, origKey := config.OpenAIAPIHost, config.OpenAIAPIKey
	defer func() { config.OpenAIAPIHost, config.OpenAIAPIKey = origHost, origKey }()
	config.OpenAIAPIHost, config.OpenAIAPIKey = upstream.URL, "k"

	pipeline := rcontroller.NewChatPipeline(wordCounter{}, noopResolver{})
	pipeline.Client = upstream.Client()

	engine := newEngine()
	engine.POST("/api/chat", Relay(pipeline))

	w := post(engine, "/api/chat", `{"model":{"id":"missing-deployment"},"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "The API deployment for this resource does not exist.", w.Body.String())
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	w = post(engine, "/api/chat", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageToBase64(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer blob.Close()

	origBase, origHosts := config.BlobBaseURL, config.BlobAllowedHosts
	defer func() { config.BlobBaseURL, config.BlobAllowedHosts = origBase, origHosts }()
	config.BlobBaseURL, config.BlobAllowedHosts = blob.URL, nil

	engine := newEngine()
	engine.POST("/api/image-to-base64", ImageToBase64)

	w := post(engine, "/api/image-to-base64", `{"blobUrl":"`+blob.URL+`/a.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		DataURL string `json:"dataUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, strings.HasPrefix(resp.DataURL, "data:image/png;base64,"))

	w = post(engine, "/api/image-to-base64", `{"blobUrl":"`+blob.URL+`/missing.png"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	w = post(engine, "/api/image-to-base64", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(engine, "/api/image-to-base64", `{"blobUrl":"http://169.254.169.254/latest/meta-data/iam"}`)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestTranscribe(t *testing.T) {
	blob := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}))
	defer blob.Close()
	whisper := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"transcribed"}`))
	}))
	defer whisper.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	hosts := []string{network.HostOf(blob.URL)}
	engine := newEngine()
	engine.POST("/ok", Transcribe(&media.Transcriber{URL: whisper.URL, AllowedHosts: hosts, Client: http.DefaultClient}))
	engine.POST("/broken", Transcribe(&media.Transcriber{URL: broken.URL, AllowedHosts: hosts, Client: http.DefaultClient}))
	engine.POST("/unconfigured", Transcribe(&media.Transcriber{Client: http.DefaultClient}))

	body := `{"blobUrl":"` + blob.URL + `/note.mp3"}`

	w := post(engine, "/ok", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"transcription":"transcribed"}`, w.Body.String())

	require.Equal(t, http.StatusBadGateway, post(engine, "/broken", body).Code)
	require.Equal(t, http.StatusServiceUnavailable, post(engine, "/unconfigured", body).Code)
	require.Equal(t, http.StatusBadRequest, post(engine, "/ok", `{"blobUrl":""}`).Code)
	require.Equal(t, http.StatusForbidden, post(engine, "/ok", `{"blobUrl":"`+whisper.URL+`/internal"}`).Code)
}

func TestGetStatus(t *testing.T) {
	engine := newEngine()
	engine.GET("/ready", GetStatus(fixedReadiness(true)))
	engine.GET("/not-ready", GetStatus(fixedReadiness(false)))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TokenizerReady bool     `json:"tokenizer_ready"`
			Encoding       string   `json:"encoding"`
			Profiles       []string `json:"profiles"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.True(t, resp.Data.TokenizerReady)
	require.Equal(t, "cl100k_base", resp.Data.Encoding)
	require.Len(t, resp.Data.Profiles, 3)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/not-ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
