package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"

	"github.com/VaDeloitte/test-project-sub002/common/client"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	imgutil "github.com/VaDeloitte/test-project-sub002/common/image"
	"github.com/VaDeloitte/test-project-sub002/common/network"
	"github.com/VaDeloitte/test-project-sub002/monitor"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
)

// Options configures a Resolver.
type Options struct {
	// BlobBaseURL resolves relative file references.
	BlobBaseURL string
	// SASToken is appended to URLs built from BlobBaseURL.
	SASToken string
	// ImageProxyURL takes {blobUrl} and returns {dataUrl}. Empty fetches blobs directly.
	ImageProxyURL string
	// TranscriptionProxyURL takes {blobUrl} and returns {transcription}.
	TranscriptionProxyURL string
	// Timeout bounds each single resolution.
	Timeout time.Duration
	// AllowedHosts are the hosts attachments may be fetched from, besides the
	// host of BlobBaseURL.
	AllowedHosts []string
	Client       *http.Client
}

// OptionsFromConfig builds Options from the process configuration.
// transcriptionFallback is used when TRANSCRIPTION_PROXY_URL is unset.
func OptionsFromConfig(transcriptionFallback string) Options {
	transcription := config.TranscriptionProxyURL
	if transcription == "" {
		transcription = transcriptionFallback
	}
	return Options{
		BlobBaseURL:           config.BlobBaseURL,
		SASToken:              config.BlobSASToken,
		ImageProxyURL:         config.ImageProxyURL,
		TranscriptionProxyURL: transcription,
		Timeout:               config.AttachmentTimeout,
		AllowedHosts:          config.BlobAllowedHosts,
		Client:                client.UserContentRequestHTTPClient,
	}
}

// Resolver turns file references into inline data URLs or transcripts.
// It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	opts Options
}

func NewResolver(opts Options) *Resolver {
	if opts.Client == nil {
		opts.Client = client.UserContentRequestHTTPClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	opts.BlobBaseURL = strings.TrimRight(opts.BlobBaseURL, "/")
	opts.SASToken = strings.TrimPrefix(opts.SASToken, "?")

	hosts := make([]string, 0, len(opts.AllowedHosts)+1)
	if host := network.HostOf(opts.BlobBaseURL); host != "" {
		hosts = append(hosts, host)
	}
	opts.AllowedHosts = append(hosts, opts.AllowedHosts...)
	return &Resolver{opts: opts}
}

// AbsoluteURL returns the fetchable URL of ref. Absolute URLs are returned unchanged;
// anything else is joined onto the blob base URL and gets the SAS token appended.
func (r *Resolver) AbsoluteURL(ref model.FileRef) string {
	target := ref.URL
	if target == "" {
		target = ref.Filename
	}
	if isAbsolute(target) {
		return target
	}

	segments := strings.Split(strings.TrimLeft(target, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	u := r.opts.BlobBaseURL + "/" + strings.Join(segments, "/")
	if r.opts.SASToken != "" {
		u += "?" + r.opts.SASToken
	}
	return u
}

func isAbsolute(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:")
}

// ResolveImage returns ref as a data URL. Any failure yields ("", false).
func (r *Resolver) ResolveImage(ctx context.Context, ref model.FileRef) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	logger := gmw.GetLogger(ctx).With(zap.String("file", ref.Filename))
	dataURL, err := r.fetchImage(ctx, ref)
	monitor.ObserveAttachment(model.FileKindImage, err == nil)
	if err != nil {
		logger.Warn("failed to resolve image attachment", zap.Error(err))
		return "", false
	}
	fields := []zap.Field{zap.Int("data_url_len", len(dataURL))}
	if width, height, err := imgutil.GetImageSizeFromDataURL(dataURL); err == nil {
		fields = append(fields, zap.Int("width", width), zap.Int("height", height))
	}
	logger.Debug("image attachment resolved", fields...)
	return dataURL, true
}

func (r *Resolver) fetchImage(ctx context.Context, ref model.FileRef) (string, error) {
	target := r.AbsoluteURL(ref)
	if imgutil.IsDataURL(target) {
		return target, nil
	}

	if err := network.CheckBlobURL(target, r.opts.AllowedHosts); err != nil {
		return "", errors.Wrap(err, "check image url")
	}
	if r.opts.ImageProxyURL == "" {
		dataURL, err := imgutil.FetchDataURL(ctx, r.opts.Client, target, r.opts.AllowedHosts)
		if err != nil {
			return "", errors.Wrap(err, "fetch blob")
		}
		return dataURL, nil
	}

	var resp struct {
		DataURL string `json:"dataUrl"`
	}
	if err := r.postJSON(ctx, r.opts.ImageProxyURL, BlobRequest{BlobURL: target}, &resp); err != nil {
		return "", errors.Wrap(err, "image proxy")
	}
	if !imgutil.IsDataURL(resp.DataURL) {
		return "", errors.New("image proxy returned no data url")
	}
	return resp.DataURL, nil
}

// ResolveAudioTranscript returns the transcription of ref. Any failure yields ("", false).
func (r *Resolver) ResolveAudioTranscript(ctx context.Context, ref model.FileRef) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	logger := gmw.GetLogger(ctx).With(zap.String("file", ref.Filename))
	if r.opts.TranscriptionProxyURL == "" {
		monitor.ObserveAttachment(model.FileKindAudio, false)
		logger.Warn("no transcription endpoint configured")
		return "", false
	}

	var resp struct {
		Transcription *string `json:"transcription"`
	}
	target := r.AbsoluteURL(ref)
	err := network.CheckBlobURL(target, r.opts.AllowedHosts)
	if err == nil {
		err = r.postJSON(ctx, r.opts.TranscriptionProxyURL, BlobRequest{BlobURL: target}, &resp)
	}
	if err == nil && resp.Transcription == nil {
		err = errors.New("transcription missing from response")
	}
	monitor.ObserveAttachment(model.FileKindAudio, err == nil)
	if err != nil {
		logger.Warn("failed to transcribe audio attachment", zap.Error(err))
		return "", false
	}
	return *resp.Transcription, true
}

// BlobRequest is the body both media proxy endpoints accept.
type BlobRequest struct {
	BlobURL string `json:"blobUrl" validate:"required"`
}

func (r *Resolver) postJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.opts.Client.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	if err = json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
