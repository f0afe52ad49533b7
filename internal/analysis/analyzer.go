package analysis

import (
	"context"
	"log"
	"strings"

	"codeclinic/internal/errors"
	"codeclinic/internal/history"
	"codeclinic/internal/prompt"
)

// Completer is the completion backend boundary. One call per analysis,
// bounded by the client's timeout; failures arrive pre-classified.
type Completer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// Recorder is the history log boundary
type Recorder interface {
	Record(ctx context.Context, rec *history.Record) error
}

// EventSink receives analysis lifecycle events. Publishing is best-effort
// and never affects the analysis response.
type EventSink interface {
	Publish(ctx context.Context, eventType string, userID string, data map[string]interface{}) error
}

// VerifyResult is the caller-facing result of a verify analysis
type VerifyResult struct {
	Changes     string `json:"changes"`
	Suggestions string `json:"suggestions"`
}

// DebugResult is the caller-facing result of a debug-and-run analysis
type DebugResult struct {
	Output      string `json:"output"`
	Changes     string `json:"changes"`
	Suggestions string `json:"suggestions"`
}

// Analyzer composes the prompt builder, completion client, and response
// parser into the two supported operations.
type Analyzer struct {
	client          Completer
	recorder        Recorder
	sinks           []EventSink
	maxPromptTokens int
}

// NewAnalyzer creates an analyzer. recorder may be nil, in which case debug
// runs are never persisted.
func NewAnalyzer(client Completer, recorder Recorder, maxPromptTokens int) *Analyzer {
	return &Analyzer{
		client:          client,
		recorder:        recorder,
		maxPromptTokens: maxPromptTokens,
	}
}

// AddEventSink registers a lifecycle event sink
func (a *Analyzer) AddEventSink(sink EventSink) {
	a.sinks = append(a.sinks, sink)
}

// Verify runs a static analysis of the code and returns markdown-formatted
// findings. Nothing is persisted.
func (a *Analyzer) Verify(ctx context.Context, code, language string) (*VerifyResult, error) {
	if err := validateRequest(code, language); err != nil {
		return nil, err
	}

	raw, err := a.complete(ctx, prompt.Build(code, language, prompt.OpVerify))
	if err != nil {
		return nil, err
	}

	sections := parseSections(raw, prompt.OpVerify)

	changes := joinLabeled(
		labeled("## Syntax Errors", sections[SectionSyntaxErrors]),
		labeled("## Logical Bugs", sections[SectionLogicalBugs]),
	)
	if changes == "" {
		changes = DefaultChanges
	}

	suggestions := DefaultSuggestions
	if s := sections[SectionSuggestions]; s != "" {
		suggestions = "## Suggestions\n" + s
	}

	return &VerifyResult{Changes: changes, Suggestions: suggestions}, nil
}

// DebugAndRun produces simulated output, fixes, and suggestions for the
// code, then records the analysis in the user's history. The history write
// is best-effort: its failure is logged and the already-composed result is
// returned unchanged. An empty userID suppresses persistence, not the
// analysis.
func (a *Analyzer) DebugAndRun(ctx context.Context, code, language, userID string) (*DebugResult, error) {
	if err := validateRequest(code, language); err != nil {
		return nil, err
	}

	raw, err := a.complete(ctx, prompt.Build(code, language, prompt.OpDebug))
	if err != nil {
		a.publish(ctx, "analysis_failed", userID, map[string]interface{}{
			"language": language,
			"error":    err.Error(),
		})
		return nil, err
	}

	sections := parseSections(raw, prompt.OpDebug)

	output := "## Output\n" + sections[SectionOutput]

	changes := joinLabeled(
		labeled("## Issues", sections[SectionIssues]),
		labeled("## Fixed Code", sections[SectionFixedCode]),
	)
	if changes == "" {
		changes = DefaultChanges
	}

	suggestions := DefaultSuggestions
	if s := sections[SectionSuggestions]; s != "" {
		suggestions = "## Suggestions\n" + s
	}

	result := &DebugResult{Output: output, Changes: changes, Suggestions: suggestions}

	if userID != "" && a.recorder != nil {
		rec := &history.Record{
			UserID:      userID,
			Code:        code,
			Language:    language,
			Output:      result.Output,
			Changes:     result.Changes,
			Suggestions: result.Suggestions,
		}
		if err := a.recorder.Record(ctx, rec); err != nil {
			// The analysis already succeeded; persistence is decoupled from
			// the response by contract.
			log.Printf("⚠️  Failed to record analysis history for user %s: %v", userID, err)
		}
	}

	a.publish(ctx, "analysis_completed", userID, map[string]interface{}{
		"language": language,
	})

	return result, nil
}

// complete enforces the prompt token budget and translates classified
// backend failures into API errors.
func (a *Analyzer) complete(ctx context.Context, promptText string) (string, error) {
	if a.maxPromptTokens > 0 {
		if tokens := prompt.EstimateTokens(promptText); tokens > a.maxPromptTokens {
			return "", errors.NewValidationError("code is too large to analyze", map[string]interface{}{
				"prompt_tokens": tokens,
				"token_limit":   a.maxPromptTokens,
			})
		}
	}

	raw, err := a.client.Complete(ctx, promptText)
	if err != nil {
		if ue, ok := errors.AsUpstream(err); ok {
			return "", errors.FromUpstream(ue)
		}
		return "", errors.NewInternalError("analysis failed", err)
	}
	return raw, nil
}

// publish fans one lifecycle event out to all registered sinks
func (a *Analyzer) publish(ctx context.Context, eventType, userID string, data map[string]interface{}) {
	for _, sink := range a.sinks {
		if err := sink.Publish(ctx, eventType, userID, data); err != nil {
			log.Printf("⚠️  Failed to publish %s event: %v", eventType, err)
		}
	}
}

// validateRequest rejects empty code or language before any external call
func validateRequest(code, language string) error {
	details := make(map[string]interface{})
	if strings.TrimSpace(code) == "" {
		details["code"] = "required"
	}
	if strings.TrimSpace(language) == "" {
		details["language"] = "required"
	}
	if len(details) > 0 {
		return errors.NewValidationError("code and language are required", details)
	}
	return nil
}

// labeled prefixes text with a markdown heading, or yields "" for empty text
func labeled(heading, text string) string {
	if text == "" {
		return ""
	}
	return heading + "\n" + text
}

// joinLabeled joins the non-empty parts with a blank line
func joinLabeled(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
