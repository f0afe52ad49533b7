package prompt

import (
	"log"

	"github.com/pkoukk/tiktoken-go"
)

// EstimateTokens returns an approximate token count for a prompt using the
// cl100k_base encoding, which is compatible with Gemini-class models. The
// orchestrator uses it to log prompt sizes and enforce the configured budget.
func EstimateTokens(content string) int {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// Fallback for environments without the encoding data: 1 token ~ 4 chars
		log.Printf("Warning: token encoding unavailable (%v), using character-based estimate", err)
		return (len(content) / 4) + 5
	}
	return len(enc.Encode(content, nil, nil))
}
