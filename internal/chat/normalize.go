package chat

import (
	"strings"

	gateway "github.com/danilofalcao/torchserve-gateway/internal/api/gateway/v1"
	torchserve "github.com/danilofalcao/torchserve-gateway/internal/api/torchserve/v1"
	"github.com/pkg/errors"
)

// ErrEmptyGeneration is returned when the backend produced no usable text.
var ErrEmptyGeneration = errors.New("empty generation")

// Normalize strips the echoed prompt from generated and wraps the remainder as
// the single assistant message of a ChatResponse. If the output does not start
// with prompt verbatim it is used whole.
func Normalize(generated *torchserve.GeneratedText, prompt, recipientID string) (*gateway.ChatResponse, error) {
	if generated == nil || generated.GeneratedText == "" {
		return nil, ErrEmptyGeneration
	}

	content := StripEcho(generated.GeneratedText, prompt)
	if content == "" {
		return nil, ErrEmptyGeneration
	}

	return &gateway.ChatResponse{
		RecipientID: recipientID,
		Messages: []gateway.Message{{
			Role:    gateway.RoleAssistant,
			Content: content,
		}},
	}, nil
}

// StripEcho removes a leading copy of prompt from text and trims the result.
func StripEcho(text, prompt string) string {
	if prompt != "" {
		text = strings.TrimPrefix(text, prompt)
	}
	return strings.TrimSpace(text)
}
