package chat

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"empath/internal/emotion"
)

const systemPrompt = "You are an empathetic conversational AI assistant. Follow the guidelines provided in the user prompt."

const userTemplate = `You are a conversational AI assistant. Your goal is to respond empathetically and appropriately based on the user's emotion. Consider these guidelines:
- If the user is sad, be comforting.
- If the user is happy, share enthusiasm.
- If the user is angry, be understanding or calming.
- If the user is surprised, react with appropriate curiosity or acknowledgement.
- If the user is fearful, be reassuring.
- If the user is disgusted, acknowledge it without being repulsed yourself.
- For a neutral emotion, have a normal conversation and answer questions directly.

User's current emotion: {emotion}
User's statement: {user_input}`

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Prompt renders the emotion-conditioned system + user turn.
type Prompt struct {
	tmpl *prompt.DefaultChatTemplate
}

func NewPrompt() *Prompt {
	return &Prompt{
		tmpl: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userTemplate),
		),
	}
}

func (p *Prompt) Format(ctx context.Context, label emotion.Label, userInput string) ([]Message, error) {
	msgs, err := p.tmpl.Format(ctx, map[string]any{
		"emotion":    string(label),
		"user_input": userInput,
	})
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Message{Role: Role(m.Role), Content: m.Content})
	}
	return out, nil
}
