package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/zh-translator/internal/domain/translator"
	apperrors "github.com/yanqian/zh-translator/pkg/errors"
)

const livenessMessage = "AI翻译助手服务运行中"

// Handler wires the HTTP transport to the translator service.
type Handler struct {
	translatorSvc translator.Service
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(translatorSvc translator.Service, logger *slog.Logger) *Handler {
	return &Handler{
		translatorSvc: translatorSvc,
		logger:        logger.With("component", "http.handler"),
	}
}

// Health answers the liveness probe. It does not depend on configuration.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": livenessMessage})
}

// Translate handles the sync translation endpoint.
func (h *Handler) Translate(c *gin.Context) {
	var req translator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.translatorSvc.Translate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, NewHTTPError(statusFor(err), "translate_failed", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case apperrors.IsCode(err, translator.CodeInvalidInput):
		return http.StatusBadRequest
	case apperrors.IsCode(err, translator.CodeUpstream):
		if status, ok := apperrors.StatusOf(err); ok && status >= http.StatusBadRequest {
			return status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
