package prompt

import (
	"fmt"
	"strings"
)

// Operation selects which analysis prompt is built and which response
// sections the model is instructed to emit.
type Operation string

const (
	OpVerify Operation = "verify"
	OpDebug  Operation = "debug"
)

// languageGuidance maps a canonical lower-cased language name to a guidance
// sentence appended to the prompt. Constructed once, never mutated.
var languageGuidance = map[string]string{
	"python":     "Focus on common Python issues like indentation, missing colons, or undefined variables.",
	"javascript": "Pay attention to JavaScript-specific issues like missing semicolons, undefined variables, or scope problems.",
	"java":       "Focus on Java-specific issues like missing semicolons, type errors, or class structure problems.",
	"cpp":        "Look for C++ specific issues like memory management, pointer errors, or undefined behavior.",
	"c":          "Check for C-specific issues like memory allocation, pointer arithmetic, or buffer overflows.",
}

// defaultGuidance is used for any language not in the guidance table.
const defaultGuidance = "Provide general programming guidance for this code."

// verifyTemplate asks for three labeled sections. The code block is closed by
// the `---` marker so the model cannot mistake code content for instructions.
const verifyTemplate = `Code (%s):
%s
---

Analyze this code thoroughly. %s

Respond with the following sections:
1. Syntax Errors: List all syntax errors and why they're errors.
2. Logical Bugs: Identify logical bugs or runtime errors.
3. Suggestions: Provide specific suggestions to improve code quality, readability, and efficiency.

Be specific and highlight line numbers where possible. Respond in markdown format.`

// debugTemplate asks for four labeled sections.
const debugTemplate = `Code (%s):
%s
---

Debug and execute this code. %s

Respond with the following sections:
1. Output: What the code would output when run correctly
2. Issues: Specific errors or bugs that prevent the code from running correctly
3. Fixed Code: Provide a corrected version of the code that would run properly
4. Suggestions: Additional improvements beyond fixing errors

Format your response in markdown.`

// Guidance returns the guidance sentence for a language. Lookup is
// case-insensitive; unknown languages get the generic fallback.
func Guidance(language string) string {
	if g, ok := languageGuidance[strings.ToLower(language)]; ok {
		return g
	}
	return defaultGuidance
}

// Build assembles the full instruction prompt for one analysis request.
// It is pure: same inputs always produce the same prompt, and it never fails.
func Build(code, language string, op Operation) string {
	guidance := Guidance(language)

	switch op {
	case OpDebug:
		return fmt.Sprintf(debugTemplate, language, code, guidance)
	default:
		return fmt.Sprintf(verifyTemplate, language, code, guidance)
	}
}
