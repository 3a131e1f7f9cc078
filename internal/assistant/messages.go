package assistant

import (
	"errors"
	"fmt"
	"strings"

	"empath/pkg/stt"
)

const (
	greetingFmt = "Hello! I am your emotionally aware speech assistant, powered by %s. How can I help you today?"

	FarewellMsg      = "Goodbye! It was nice talking to you."
	NoInputMsg       = "I didn't hear anything. Please try speaking again."
	NotUnderstoodMsg = "Sorry, I could not understand what you said."
	NoConnectionMsg  = "I couldn't connect to the speech recognition service. Please check your internet."
	NoReplyMsg       = "I couldn't generate a response. Please try again."
	NoEmotionMsg     = "Emotion detection is unavailable. Using neutral emotion."
	NoModelMsg       = "I couldn't connect to the language model. Please check the console."
)

var exitPhrases = []string{"goodbye", "bye", "exit"}

func Greeting(provider string) string {
	return fmt.Sprintf(greetingFmt, provider)
}

// IsExit reports whether the transcript contains an exit phrase anywhere,
// so "byebye" and "exiting" end the conversation too.
func IsExit(transcript string) bool {
	t := strings.ToLower(transcript)
	for _, p := range exitPhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// listenFallback picks what to say when no transcript came out of a turn.
// Timeouts and capture errors fall through to NoInputMsg.
func listenFallback(err error) string {
	var reqErr *stt.RequestError
	switch {
	case errors.Is(err, stt.ErrUnknownValue):
		return NotUnderstoodMsg
	case errors.As(err, &reqErr) && reqErr.Connection:
		return NoConnectionMsg
	case errors.As(err, &reqErr) && reqErr.Err != nil:
		return fmt.Sprintf("Speech recognition service error: %v", reqErr.Err)
	case errors.As(err, &reqErr):
		return fmt.Sprintf("Speech recognition service error: %v", reqErr)
	default:
		return NoInputMsg
	}
}
