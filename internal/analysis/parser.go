package analysis

import (
	"strings"

	"codeclinic/internal/prompt"
)

// Section labels the model is instructed to emit. Matching is case-sensitive
// on these literals; the prompt templates use the same spelling.
const (
	labelSyntaxErrors = "Syntax Errors:"
	labelLogicalBugs  = "Logical Bugs:"
	labelSuggestions  = "Suggestions:"
	labelOutput       = "Output:"
	labelIssues       = "Issues:"
	labelFixedCode    = "Fixed Code:"
)

// Section keys of a parsed response
const (
	SectionSyntaxErrors = "syntaxErrors"
	SectionLogicalBugs  = "logicalBugs"
	SectionSuggestions  = "suggestions"
	SectionOutput       = "output"
	SectionIssues       = "issues"
	SectionFixedCode    = "fixedCode"
)

// Default placeholder texts for sections the model failed to emit
const (
	DefaultChanges     = "No issues found in your code."
	DefaultSuggestions = "No suggestions available."
	DefaultOutput      = "No output generated."
	DefaultIssues      = "No issues found."
)

// sectionSpec binds a response key to its heading label and its placeholder
// when the label is absent.
type sectionSpec struct {
	key          string
	label        string
	missingValue string
}

var verifySections = []sectionSpec{
	{SectionSyntaxErrors, labelSyntaxErrors, ""},
	{SectionLogicalBugs, labelLogicalBugs, ""},
	{SectionSuggestions, labelSuggestions, ""},
}

var debugSections = []sectionSpec{
	{SectionOutput, labelOutput, DefaultOutput},
	{SectionIssues, labelIssues, DefaultIssues},
	{SectionFixedCode, labelFixedCode, ""},
	{SectionSuggestions, labelSuggestions, DefaultSuggestions},
}

// ParsedSections maps section keys to trimmed extracted text. Every key in
// the operation's section set is always present.
type ParsedSections map[string]string

// parseSections extracts labeled sections from the raw model text. Each
// label is searched independently against the full text; its section runs
// from after the label to the nearest later occurrence of any other label in
// the set, or end of input. This tolerates the model emitting sections out
// of the order requested. Extraction never fails: a missing label yields the
// section's placeholder value.
func parseSections(raw string, op prompt.Operation) ParsedSections {
	specs := verifySections
	if op == prompt.OpDebug {
		specs = debugSections
	}

	labels := make([]string, 0, len(specs))
	for _, s := range specs {
		labels = append(labels, s.label)
	}

	sections := make(ParsedSections, len(specs))
	for _, s := range specs {
		text, found := extractSection(raw, s.label, labels)
		if !found {
			sections[s.key] = s.missingValue
			continue
		}
		sections[s.key] = text
	}
	return sections
}

// extractSection captures the text between the first occurrence of label and
// the nearest following occurrence of any other label, trimmed.
func extractSection(raw, label string, labels []string) (string, bool) {
	start := strings.Index(raw, label)
	if start < 0 {
		return "", false
	}
	start += len(label)

	end := len(raw)
	for _, other := range labels {
		if other == label {
			continue
		}
		if idx := strings.Index(raw[start:], other); idx >= 0 && start+idx < end {
			end = start + idx
		}
	}

	return strings.TrimSpace(raw[start:end]), true
}
