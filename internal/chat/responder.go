package chat

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"google.golang.org/genai"

	"empath/internal/emotion"
)

const (
	NotReadyMsg    = "My language model is not ready due to an API issue."
	EmptyReplyMsg  = "I'm not sure how to respond to that."
	BusyMsg        = "The language model is busy. Please try again soon."
	AuthMsg        = "Authentication failed. Please check your API token."
	UnsupportedMsg = "The model does not support this task. Please check the console for details."
	GenericMsg     = "An error occurred while generating a response. Please try again."
)

// Responder always yields something speakable: the model reply or a canned message.
type Responder struct {
	completer Completer
	prompt    *Prompt
	params    Params
}

func NewResponder(c Completer, p *Prompt, params Params) *Responder {
	return &Responder{completer: c, prompt: p, params: params}
}

func (r *Responder) Respond(ctx context.Context, userText string, label emotion.Label) string {
	if r == nil || r.completer == nil || r.prompt == nil {
		return NotReadyMsg
	}

	msgs, err := r.prompt.Format(ctx, label, userText)
	if err != nil {
		log.Error("Failed to build prompt", "err", err)
		return GenericMsg
	}

	reply, err := r.completer.Complete(ctx, msgs, r.params)
	if err != nil {
		log.Error("API error", "err", err)
		return Describe(err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return EmptyReplyMsg
	}
	return reply
}

// Describe maps a completion failure to the message read out to the user.
func Describe(err error) string {
	s := strings.ToLower(err.Error())

	// the rendered openai error embeds the request URL; only trust its fields
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusServiceUnavailable:
			return BusyMsg
		case http.StatusUnauthorized:
			return AuthMsg
		}
		s = strings.ToLower(apiErr.Message)
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusServiceUnavailable:
			return BusyMsg
		case http.StatusUnauthorized:
			return AuthMsg
		}
		s = strings.ToLower(gErr.Message)
	}

	switch {
	case strings.Contains(s, "503") || strings.Contains(s, "overloaded"):
		return BusyMsg
	case strings.Contains(s, "401") || strings.Contains(s, "unauthorized"):
		return AuthMsg
	case strings.Contains(s, "not supported"):
		return UnsupportedMsg
	default:
		return GenericMsg
	}
}
