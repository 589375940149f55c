package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/client"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/network"
)

// maxAudioBytes is the upload limit of Whisper compatible endpoints.
const maxAudioBytes int64 = 25 << 20

// ErrTranscriptionNotConfigured is returned when TRANSCRIPTION_API_URL is unset.
var ErrTranscriptionNotConfigured = errors.New("transcription api is not configured")

// Transcriber downloads audio blobs and posts them to a Whisper compatible endpoint.
type Transcriber struct {
	URL    string
	APIKey string
	Model  string
	// AllowedHosts are the only hosts audio blobs are fetched from.
	AllowedHosts []string
	Client       *http.Client
}

func TranscriberFromConfig() *Transcriber {
	return &Transcriber{
		URL:          config.TranscriptionAPIURL,
		APIKey:       config.TranscriptionAPIKey,
		Model:        config.TranscriptionModel,
		AllowedHosts: network.BlobHosts(),
		Client:       client.UserContentRequestHTTPClient,
	}
}

// TranscribeBlob returns the transcription of the audio at blobURL.
func (t *Transcriber) TranscribeBlob(ctx context.Context, blobURL string) (string, error) {
	if t.URL == "" {
		return "", ErrTranscriptionNotConfigured
	}

	audio, err := t.fetchBlob(ctx, blobURL)
	if err != nil {
		return "", errors.Wrap(err, "fetch audio blob")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", blobFilename(blobURL))
	if err != nil {
		return "", errors.Wrap(err, "create form file")
	}
	if _, err = part.Write(audio); err != nil {
		return "", errors.Wrap(err, "write form file")
	}
	if t.Model != "" {
		if err = writer.WriteField("model", t.Model); err != nil {
			return "", errors.Wrap(err, "write model field")
		}
	}
	if err = writer.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, body)
	if err != nil {
		return "", errors.Wrap(err, "new transcription request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if t.APIKey != "" {
		req.Header.Set("api-key", t.APIKey)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do transcription request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read transcription response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("transcription status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out struct {
		Text *string `json:"text"`
	}
	if err = json.Unmarshal(respBody, &out); err != nil {
		return "", errors.Wrap(err, "decode transcription response")
	}
	if out.Text == nil {
		return "", errors.New("transcription response has no text")
	}
	return *out.Text, nil
}

func (t *Transcriber) fetchBlob(ctx context.Context, blobURL string) ([]byte, error) {
	if err := network.CheckBlobURL(blobURL, t.AllowedHosts); err != nil {
		return nil, errors.Wrap(err, "check blob url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new blob request")
	}
	resp, err := network.RestrictRedirects(t.Client, t.AllowedHosts).Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do blob request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("blob status code %d", resp.StatusCode)
	}
	if resp.ContentLength > maxAudioBytes {
		return nil, errors.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "read blob")
	}
	if int64(len(data)) > maxAudioBytes {
		return nil, errors.Errorf("audio exceeds %d bytes", maxAudioBytes)
	}
	return data, nil
}

// blobFilename is the last path segment of blobURL, which Whisper uses to detect the format.
func blobFilename(blobURL string) string {
	if u, err := url.Parse(blobURL); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}
	return "audio.mp3"
}
