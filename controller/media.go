package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/VaDeloitte/test-project-sub002/common"
	"github.com/VaDeloitte/test-project-sub002/common/client"
	imgutil "github.com/VaDeloitte/test-project-sub002/common/image"
	"github.com/VaDeloitte/test-project-sub002/common/network"
	"github.com/VaDeloitte/test-project-sub002/relay/controller/validator"
	"github.com/VaDeloitte/test-project-sub002/relay/media"
)

func bindBlobRequest(c *gin.Context) (*media.BlobRequest, bool) {
	req := &media.BlobRequest{}
	if err := common.UnmarshalBodyReusable(c, req); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, common.ErrRequestBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return nil, false
	}
	if err := validator.ValidateBlobRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return req, true
}

// ImageToBase64 serves POST /api/image-to-base64: {blobUrl} -> {dataUrl}.
func ImageToBase64(c *gin.Context) {
	req, ok := bindBlobRequest(c)
	if !ok {
		return
	}

	dataURL, err := imgutil.FetchDataURL(gmw.Ctx(c), client.UserContentRequestHTTPClient, req.BlobURL, network.BlobHosts())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, network.ErrBlobHostNotAllowed) {
			status = http.StatusForbidden
		}
		gmw.GetLogger(c).Warn("image to base64 failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": "failed to fetch image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataUrl": dataURL})
}

// Transcribe serves POST /api/transcribe: {blobUrl} -> {transcription}.
func Transcribe(transcriber *media.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindBlobRequest(c)
		if !ok {
			return
		}

		text, err := transcriber.TranscribeBlob(gmw.Ctx(c), req.BlobURL)
		if err != nil {
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, media.ErrTranscriptionNotConfigured):
				status = http.StatusServiceUnavailable
			case errors.Is(err, network.ErrBlobHostNotAllowed):
				status = http.StatusForbidden
			}
			gmw.GetLogger(c).Warn("transcription failed", zap.Int("status", status), zap.Error(err))
			c.JSON(status, gin.H{"error": "transcription failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"transcription": text})
	}
}
