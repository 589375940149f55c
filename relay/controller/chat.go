package controller

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/client"
	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/ctxkey"
	"github.com/VaDeloitte/test-project-sub002/common/helper"
	"github.com/VaDeloitte/test-project-sub002/monitor"
	"github.com/VaDeloitte/test-project-sub002/relay"
	"github.com/VaDeloitte/test-project-sub002/relay/adaptor/openai"
	"github.com/VaDeloitte/test-project-sub002/relay/budget"
	"github.com/VaDeloitte/test-project-sub002/relay/controller/validator"
	"github.com/VaDeloitte/test-project-sub002/relay/model"
	"github.com/VaDeloitte/test-project-sub002/relay/normalizer"
	"github.com/VaDeloitte/test-project-sub002/relay/streaming"
	"github.com/VaDeloitte/test-project-sub002/relay/tokenizer"
)

// Relay outcomes used as metric labels.
const (
	OutcomeOK            = "ok"
	OutcomeUpstreamError = "upstream_error"
	OutcomeAborted       = "aborted"
	OutcomeCanceled      = "canceled"
)

// ChatPipeline holds the process-wide collaborators of POST /api/chat.
// It keeps no per-request state and is safe for concurrent use.
type ChatPipeline struct {
	Normalizer *normalizer.Normalizer
	Truncator  *budget.Truncator
	Client     *http.Client
}

// NewChatPipeline wires a pipeline from the process configuration.
func NewChatPipeline(counter tokenizer.Counter, resolver normalizer.Resolver) *ChatPipeline {
	return &ChatPipeline{
		Normalizer: normalizer.New(resolver, normalizer.Options{
			Concurrency:            config.AttachmentConcurrency,
			FailedImagePlaceholder: config.ImageFailurePlaceholder,
		}),
		Truncator: budget.New(counter, config.ImageTokenCost),
		Client:    client.HTTPClient,
	}
}

func getAndValidateChatRequest(c *gin.Context) (*model.ChatRequest, error) {
	requestBody, err := common.GetRequestBody(c)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request body")
	}

	if unknown := validator.UnknownParameters(requestBody); len(unknown) != 0 {
		gmw.GetLogger(c).Debug("ignoring unknown chat request fields", zap.Strings("fields", unknown))
	}

	chatRequest := &model.ChatRequest{}
	if err = common.UnmarshalBodyReusable(c, chatRequest); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal request body")
	}
	if err = validator.ValidateChatRequest(chatRequest); err != nil {
		return nil, errors.Wrap(err, "chat request validation failed")
	}
	return chatRequest, nil
}

// Prepare normalizes, truncates and routes req. It does no upstream I/O besides
// attachment resolution.
func (p *ChatPipeline) Prepare(ctx context.Context, req *model.ChatRequest) (*model.ProviderRequest, *model.TruncatedRequest, error) {
	lg := gmw.GetLogger(ctx)

	systemPrompt := req.Prompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	temperature := config.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	spec := req.Model
	if spec.TokenLimit <= 0 {
		spec.TokenLimit = config.DefaultModelTokenLimit
	}

	messages := p.Normalizer.Normalize(ctx, req.Messages)
	tr := p.Truncator.Truncate(systemPrompt, messages, spec, config.ReservedTokenMargin)
	if tr.Dropped > 0 {
		monitor.TruncatedMessages.Add(float64(tr.Dropped))
		lg.Info("history truncated to fit token budget",
			zap.String("model", spec.ID),
			zap.Int("dropped", tr.Dropped),
			zap.Int("kept", len(tr.Messages)),
			zap.Int("budget", tr.Budget))
	}
	if len(tr.Messages) == 0 && len(messages) != 0 {
		lg.Warn("no message fits the token budget, sending system prompt only",
			zap.String("model", spec.ID),
			zap.Int("budget", tr.Budget),
			zap.Int("token_limit", spec.TokenLimit))
	}

	preq, err := relay.BuildProviderRequest(ctx, spec, tr, relay.BuildOptions{
		APIKey:      req.Key,
		Temperature: temperature,
		TopP:        config.DefaultTopP,
	})
	if err != nil {
		return nil, tr, errors.Wrap(err, "build provider request")
	}
	return preq, tr, nil
}

// RelayChatHelper serves one chat request. Errors returned here happen before
// any byte of the response is written. Failures after streaming has begun abort
// the connection with http.ErrAbortHandler so the client never mistakes a
// broken stream for a complete one.
func (p *ChatPipeline) RelayChatHelper(c *gin.Context) *model.ErrorWithStatusCode {
	ctx := gmw.Ctx(c)
	lg := gmw.GetLogger(c)

	chatRequest, err := getAndValidateChatRequest(c)
	if err != nil {
		if errors.Is(err, common.ErrRequestBodyTooLarge) {
			return openai.ErrorWrapper(err, "request_body_too_large", http.StatusRequestEntityTooLarge)
		}
		return openai.ErrorWrapper(err, "invalid_chat_request", http.StatusBadRequest)
	}
	c.Set(ctxkey.ModelID, chatRequest.Model.ID)

	preq, tr, err := p.Prepare(ctx, chatRequest)
	if err != nil {
		return openai.ErrorWrapper(err, "build_provider_request_failed", http.StatusInternalServerError)
	}
	c.Set(ctxkey.Profile, preq.Profile)

	lg.Debug("dispatching chat request",
		zap.String("model", chatRequest.Model.ID),
		zap.String("profile", preq.Profile),
		zap.Int("messages", len(tr.Messages)),
		zap.Int("prompt_tokens", tr.PromptTokens+tr.MessageTokens))

	dispatched := time.Now()
	stream, bizErr := streaming.Open(ctx, p.Client, preq)
	if bizErr != nil {
		monitor.ObserveRelay(preq.Profile, OutcomeUpstreamError, 0)
		return bizErr
	}
	defer stream.Close() // nolint: errcheck

	setTextStreamHeaders(c)
	w := &firstByteWriter{w: c.Writer, onFirst: func() {
		monitor.TimeToFirstByte.WithLabelValues(preq.Profile).Observe(time.Since(dispatched).Seconds())
	}}

	written, err := stream.Pipe(w, c.Writer.Flush)
	switch {
	case err == nil:
		monitor.ObserveRelay(preq.Profile, OutcomeOK, written)
		lg.Info("chat stream completed",
			zap.String("model", chatRequest.Model.ID),
			zap.String("profile", preq.Profile),
			zap.Int64("bytes", written),
			zap.Int64("elapsed_ms", helper.CalcElapsedTime(dispatched)))
		return nil
	case ctx.Err() != nil:
		// client is gone and the upstream request has been cancelled with it
		monitor.ObserveRelay(preq.Profile, OutcomeCanceled, written)
		lg.Info("client disconnected, upstream stream aborted",
			zap.String("profile", preq.Profile),
			zap.Int64("bytes", written),
			zap.Error(err))
		return nil
	default:
		monitor.ObserveRelay(preq.Profile, OutcomeAborted, written)
		lg.Error("chat stream aborted",
			zap.String("model", chatRequest.Model.ID),
			zap.String("profile", preq.Profile),
			zap.Int64("bytes", written),
			zap.Error(err))
		panic(http.ErrAbortHandler)
	}
}

func setTextStreamHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()
}

// firstByteWriter calls onFirst before the first non-empty write.
type firstByteWriter struct {
	w       io.Writer
	once    sync.Once
	onFirst func()
}

func (f *firstByteWriter) Write(p []byte) (int, error) {
	if len(p) != 0 {
		f.once.Do(f.onFirst)
	}
	return f.w.Write(p)
}
