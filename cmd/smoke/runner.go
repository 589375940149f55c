package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"
)

// maxErrorBody bounds how much of an error response is kept for the report.
const maxErrorBody = 512

type result struct {
	Model      string
	StatusCode int
	FirstByte  time.Duration
	Duration   time.Duration
	Bytes      int
	Error      string
}

func (r result) ok() bool {
	return r.Error == "" && r.StatusCode == http.StatusOK && r.Bytes > 0
}

type chatPayload struct {
	Model    modelPayload     `json:"model"`
	Messages []messagePayload `json:"messages"`
	Key      string           `json:"key,omitempty"`
}

type modelPayload struct {
	ID string `json:"id"`
}

type messagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// run streams one chat request per model, at most cfg.Concurrency at a time,
// and renders the results. It fails when any model failed.
func run(ctx context.Context, logger glog.Logger, cfg config, out io.Writer) error {
	logger.Info("starting chat relay smoke run",
		zap.String("base_url", cfg.APIBase),
		zap.Strings("models", cfg.Models),
		zap.Int("concurrency", cfg.Concurrency))

	httpClient := &http.Client{Timeout: cfg.Timeout}
	results := make([]result, len(cfg.Models))

	var mu sync.Mutex
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(cfg.Concurrency)
	for i, model := range cfg.Models {
		grp.Go(func() error {
			res := streamChat(grpCtx, httpClient, cfg, model)
			if !res.ok() {
				logger.Warn("model failed", zap.String("model", model),
					zap.Int("status", res.StatusCode), zap.String("error", res.Error))
			}
			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "smoke run interrupted")
	}

	failed := renderReport(out, results)
	if failed > 0 {
		return errors.Errorf("%d of %d models failed", failed, len(results))
	}
	return nil
}

func streamChat(ctx context.Context, client *http.Client, cfg config, model string) (res result) {
	res.Model = model
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	body, err := json.Marshal(chatPayload{
		Model:    modelPayload{ID: model},
		Messages: []messagePayload{{Role: "user", Content: cfg.Prompt}},
		Key:      cfg.Key,
	})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.APIBase+"/api/chat", bytes.NewReader(body))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	res.StatusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		res.Error = string(msg)
		return res
	}

	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if res.Bytes == 0 {
				res.FirstByte = time.Since(start)
			}
			res.Bytes += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Error = "stream broken: " + err.Error()
			break
		}
	}
	if res.Error == "" && res.Bytes == 0 {
		res.Error = "empty stream"
	}
	return res
}
