package common

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common/config"
	"github.com/VaDeloitte/test-project-sub002/common/ctxkey"
)

// ErrRequestBodyTooLarge is returned when the body exceeds MAX_REQUEST_BODY_MB.
var ErrRequestBodyTooLarge = errors.New("request body too large")

// GetRequestBody reads the request body once, up to MAX_REQUEST_BODY_MB, and caches
// it on c. The body is restored so later readers see the same bytes.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	if cached, ok := c.Get(ctxkey.KeyRequestBody); ok {
		if body, ok := cached.([]byte); ok {
			return body, nil
		}
	}
	if c.Request == nil || c.Request.Body == nil {
		return nil, nil
	}

	limit := int64(config.MaxRequestBodyMB) << 20
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, limit))
	if err != nil {
		if tooLarge, ok := err.(*http.MaxBytesError); ok {
			return nil, errors.Wrapf(ErrRequestBodyTooLarge, "limit %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(err, "read request body")
	}
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	c.Set(ctxkey.KeyRequestBody, body)
	return body, nil
}

// UnmarshalBodyReusable decodes the JSON body into v without consuming it.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	body, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "unmarshal request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return nil
}
