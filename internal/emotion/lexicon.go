package emotion

import (
	"context"
	"strings"
	"unicode"
)

var keywordBuckets = map[Label][]string{
	Joy: {
		"happy", "glad", "great", "awesome", "amazing", "wonderful", "love", "excited",
		"delighted", "fantastic", "thanks", "thank you", "yay", "cheerful", "proud", "fun",
	},
	Sadness: {
		"sad", "unhappy", "depressed", "lonely", "miss", "cry", "crying", "upset", "hurt",
		"heartbroken", "down", "tired of", "lost", "grief", "sorrow", "disappointed",
	},
	Anger: {
		"angry", "mad", "furious", "annoyed", "hate", "pissed", "rage", "irritated",
		"frustrated", "sick of", "fed up", "outraged",
	},
	Surprise: {
		"wow", "surprised", "unbelievable", "really", "no way", "shocked", "unexpected",
		"can't believe", "cannot believe", "astonished",
	},
	Fear: {
		"afraid", "scared", "fear", "terrified", "worried", "anxious", "nervous", "panic",
		"frightened", "dread",
	},
	Disgust: {
		"disgusting", "gross", "disgusted", "nasty", "revolting", "sickening", "yuck", "eww",
	},
}

// Lexicon is an offline keyword classifier.
type Lexicon struct{}

func NewLexicon() *Lexicon { return &Lexicon{} }

func (l *Lexicon) Classify(_ context.Context, text string) (Label, error) {
	padded := " " + normalizeWords(text) + " "

	best, bestScore := Neutral, 0
	// iterate Labels, not the map, so ties resolve the same way every time
	for _, label := range Labels {
		score := 0
		for _, word := range keywordBuckets[label] {
			score += strings.Count(padded, " "+word+" ")
		}
		if score > bestScore {
			best, bestScore = label, score
		}
	}
	return best, nil
}

// normalizeWords lower-cases text and collapses everything but letters and
// apostrophes into single spaces.
func normalizeWords(text string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || r == '\'' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}
