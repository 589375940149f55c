package main

import (
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/VaDeloitte/test-project-sub002/common/env"
)

const (
	defaultAPIBase = "http://localhost:3000"
	defaultModels  = "gpt-4o,claude-3-7-sonnet,llama-3-3-70b-instruct"
	defaultPrompt  = "Reply with the single word: pong"
)

// config captures the smoke run settings read from the environment.
type config struct {
	APIBase     string
	Models      []string
	Prompt      string
	Key         string
	Concurrency int
	Timeout     time.Duration
}

func loadConfig() (config, error) {
	base := strings.TrimSuffix(strings.TrimSpace(env.String("SMOKE_API_BASE", defaultAPIBase)), "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return config{}, errors.Wrapf(err, "invalid SMOKE_API_BASE %q", base)
	}

	models := env.StringSlice("SMOKE_MODELS", strings.Split(defaultModels, ","))
	if len(models) == 0 {
		return config{}, errors.New("SMOKE_MODELS is empty")
	}

	concurrency := env.Int("SMOKE_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}

	return config{
		APIBase:     base,
		Models:      models,
		Prompt:      env.String("SMOKE_PROMPT", defaultPrompt),
		Key:         env.String("SMOKE_API_KEY", ""),
		Concurrency: concurrency,
		Timeout:     env.Duration("SMOKE_TIMEOUT", 60*time.Second),
	}, nil
}
