package advisor

import (
	"errors"
	"net/http"

	"github.com/codespire/finance-backend/internal"
)

// ToAppError maps client failures onto the shared error envelope.
// Upstream HTTP-status failures keep the upstream status code; transport
// and decode failures surface as 502 since the fault is on the far side.
func ToAppError(err error) *internal.AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrAPIKeyMissing) {
		return &internal.AppError{
			Type:       internal.ErrorTypeInternal,
			Code:       internal.ErrCodeAPIKeyMissing,
			Message:    "API key not configured in the server",
			StatusCode: http.StatusInternalServerError,
		}
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.Kind {
		case KindTransport:
			return internal.NewExternalError(upstream.Message, internal.ErrCodeUpstreamUnavailable, http.StatusBadGateway).WithCause(upstream.Cause)
		case KindStatus:
			return internal.NewExternalError(upstream.Message, internal.ErrCodeUpstreamError, upstream.StatusCode)
		case KindMalformed:
			return internal.NewExternalError(upstream.Message, internal.ErrCodeUpstreamDecode, http.StatusBadGateway).WithCause(upstream.Cause)
		}
	}

	return internal.NewInternalError("generative API call failed", err)
}

// MalformedContent reports model output that claimed to be JSON but was not.
func MalformedContent(message string) *internal.AppError {
	return internal.NewExternalError(message, internal.ErrCodeUpstreamDecode, http.StatusBadGateway)
}
