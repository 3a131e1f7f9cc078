package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empath/internal/emotion"
)

func TestPromptFormat(t *testing.T) {
	msgs, err := NewPrompt().Format(context.Background(), emotion.Joy, "i am so happy today")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, systemPrompt, msgs[0].Content)

	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "User's current emotion: joy")
	assert.Contains(t, msgs[1].Content, "User's statement: i am so happy today")
	assert.NotContains(t, msgs[1].Content, "{emotion}")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("503 Service Unavailable"), BusyMsg},
		{errors.New("model is Overloaded"), BusyMsg},
		{errors.New("401 Unauthorized"), AuthMsg},
		{errors.New("request unauthorized"), AuthMsg},
		{errors.New("task text-generation not supported for model"), UnsupportedMsg},
		{errors.New("boom"), GenericMsg},
		{fmt.Errorf("chat completion: %w", &statusErr{503}), BusyMsg},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }

type fakeCompleter struct {
	reply string
	err   error
	msgs  []Message
	p     Params
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []Message, p Params) (string, error) {
	f.msgs, f.p = msgs, p
	return f.reply, f.err
}

func TestResponder(t *testing.T) {
	ctx := context.Background()

	t.Run("not ready", func(t *testing.T) {
		var r *Responder
		assert.Equal(t, NotReadyMsg, r.Respond(ctx, "hi", emotion.Neutral))
		assert.Equal(t, NotReadyMsg, NewResponder(nil, NewPrompt(), DefaultParams()).Respond(ctx, "hi", emotion.Neutral))
	})

	t.Run("reply is trimmed", func(t *testing.T) {
		fc := &fakeCompleter{reply: "  That's wonderful!  "}
		r := NewResponder(fc, NewPrompt(), DefaultParams())

		assert.Equal(t, "That's wonderful!", r.Respond(ctx, "i am so happy today", emotion.Joy))
		assert.Equal(t, DefaultParams(), fc.p)
		require.Len(t, fc.msgs, 2)
		assert.Contains(t, fc.msgs[1].Content, "User's current emotion: joy")
	})

	t.Run("empty reply", func(t *testing.T) {
		r := NewResponder(&fakeCompleter{reply: "   "}, NewPrompt(), DefaultParams())
		assert.Equal(t, EmptyReplyMsg, r.Respond(ctx, "hello", emotion.Neutral))
	})

	t.Run("error is described", func(t *testing.T) {
		r := NewResponder(&fakeCompleter{err: errors.New("401 Unauthorized")}, NewPrompt(), DefaultParams())
		assert.Equal(t, AuthMsg, r.Respond(ctx, "hello", emotion.Neutral))
	})
}

func newOpenAITestServer(t *testing.T, status int, body string, seen *map[string]any) *OpenAICompleter {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewOpenAICompleter(OpenAIConfig{Token: "hf_test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestOpenAICompleterEndToEnd(t *testing.T) {
	var seen map[string]any
	c := newOpenAITestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1,
		"model": "mistralai/Mixtral-8x7B-Instruct-v0.1",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "That's wonderful to hear!"}}]
	}`, &seen)

	reply := NewResponder(c, NewPrompt(), DefaultParams()).Respond(context.Background(), "i am so happy today", emotion.Joy)
	assert.Equal(t, "That's wonderful to hear!", reply)

	assert.Equal(t, DefaultModel, seen["model"])
	assert.EqualValues(t, 500, seen["max_tokens"])
	assert.EqualValues(t, 0.7, seen["temperature"])
	assert.EqualValues(t, 0.9, seen["top_p"])

	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	user := msgs[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Contains(t, user["content"], "User's current emotion: joy")
}

func TestOpenAICompleterStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"overloaded", http.StatusServiceUnavailable, BusyMsg},
		{"unauthorized", http.StatusUnauthorized, AuthMsg},
		{"bad request", http.StatusBadRequest, GenericMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newOpenAITestServer(t, tt.status, `{"error":{"message":"nope","type":"error"}}`, nil)

			_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, DefaultParams())
			require.Error(t, err)
			assert.Equal(t, tt.want, Describe(err))
		})
	}
}

func newGeminiTestServer(t *testing.T, status int, body string, seen *map[string]any) *GeminiCompleter {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+DefaultGeminiModel+":generateContent", r.URL.Path)
		assert.Equal(t, "gm_test", r.Header.Get("x-goog-api-key"))
		if seen != nil {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewGeminiCompleter(context.Background(), GeminiConfig{APIKey: "gm_test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestGeminiCompleterEndToEnd(t *testing.T) {
	var seen map[string]any
	c := newGeminiTestServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "I'm so glad you're happy!"}]}, "finishReason": "STOP"}]
	}`, &seen)

	reply := NewResponder(c, NewPrompt(), DefaultParams()).Respond(context.Background(), "i am so happy today", emotion.Joy)
	assert.Equal(t, "I'm so glad you're happy!", reply)

	sys, ok := seen["systemInstruction"].(map[string]any)
	require.True(t, ok, "systemInstruction missing: %v", seen)
	sysParts := sys["parts"].([]any)
	require.Len(t, sysParts, 1)
	assert.Equal(t, systemPrompt, sysParts[0].(map[string]any)["text"])

	gen, ok := seen["generationConfig"].(map[string]any)
	require.True(t, ok, "generationConfig missing: %v", seen)
	assert.InDelta(t, 0.7, gen["temperature"], 1e-6)
	assert.InDelta(t, 0.9, gen["topP"], 1e-6)
	assert.EqualValues(t, 500, gen["maxOutputTokens"])

	contents := seen["contents"].([]any)
	require.Len(t, contents, 1)
	user := contents[0].(map[string]any)
	assert.Equal(t, "user", user["role"])
	text := user["parts"].([]any)[0].(map[string]any)["text"]
	assert.Contains(t, text, "User's current emotion: joy")
}

func TestGeminiCompleterStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"overloaded", http.StatusServiceUnavailable, `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`, BusyMsg},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid.","status":"UNAUTHENTICATED"}}`, AuthMsg},
		{"bad request", http.StatusBadRequest, `{"error":{"code":400,"message":"Invalid argument.","status":"INVALID_ARGUMENT"}}`, GenericMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newGeminiTestServer(t, tt.status, tt.body, nil)

			_, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, DefaultParams())
			require.Error(t, err)
			assert.Equal(t, tt.want, Describe(err))
		})
	}
}
