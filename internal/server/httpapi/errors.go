package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/dmitrijs2005/giveaway/internal/server/messaging"
	"github.com/dmitrijs2005/giveaway/internal/server/services"
	"github.com/gin-gonic/gin"
)

const msgInternal = "Internal server error"

type errorResponse struct {
	Error      string     `json:"error"`
	RetryAfter *time.Time `json:"retryAfter,omitempty"`
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorInternal):
		return http.StatusInternalServerError
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrInvalidQRCode), errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrQRCodeExpired):
		return http.StatusGone
	case errors.Is(err, common.ErrQRCodeAlreadyUsed), errors.Is(err, common.ErrEventOverlap),
		errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrNoActiveEvent), errors.Is(err, common.ErrInvalidEntry),
		errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrNoEntry), errors.Is(err, common.ErrVerificationExpired),
		errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrStorageNotConfigured), errors.Is(err, messaging.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {error, retryAfter?}. Rejections carry their own
// participant-facing message; anything that maps to 500 is logged and
// replaced by a generic one.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var rej *services.Rejection
	if errors.As(err, &rej) {
		resp.Error = rej.Message
		if rej.RetryAfter != nil {
			resp.RetryAfter = rej.RetryAfter
			c.Header("Retry-After", retryAfterSeconds(*rej.RetryAfter, s.now()))
		}
	} else if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		resp.Error = msgInternal
	}

	c.AbortWithStatusJSON(status, resp)
}

func retryAfterSeconds(at, now time.Time) string {
	secs := int64(math.Ceil(at.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
