// Package tokens provides rough token-count estimation for prompt text.
//
// The word-based heuristic here is a fallback used before a generation call
// returns exact usage counts. Provider-reported usage always takes
// precedence; nothing downstream treats an estimate as authoritative.
package tokens

import (
	"math"
	"strings"
)

// tokensPerWord is the average tokens-per-word ratio for English prose.
// LLM tokenizers emit roughly 1.3 tokens for every whitespace-separated word.
const tokensPerWord = 1.3

// Estimate returns an approximate token count for text.
// Blank or whitespace-only text estimates to zero.
func Estimate(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * tokensPerWord))
}

// EstimateAll sums the estimates for several text segments, e.g. the system
// and user parts of a chat request.
func EstimateAll(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += Estimate(text)
	}
	return total
}
