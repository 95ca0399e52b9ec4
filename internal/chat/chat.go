package chat

import (
	"github.com/codespire/finance-backend/internal"
)

// ChatDTO is the request payload for the advisor chat passthrough.
type ChatDTO struct {
	Message string `json:"message"`
}

func (dto ChatDTO) Validate() error {
	if dto.Message == "" {
		return internal.NewValidationFieldError("message", "message is required", internal.ErrCodeMessageRequired)
	}
	return nil
}
