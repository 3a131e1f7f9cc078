// Package chat turns a transcript and its emotion into a reply from a hosted
// chat-completion model.
package chat

import "context"

type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

func DefaultParams() Params {
	return Params{MaxTokens: 500, Temperature: 0.7, TopP: 0.9}
}

// Completer is one round trip to a chat-completion endpoint.
type Completer interface {
	Complete(ctx context.Context, msgs []Message, p Params) (string, error)
}
