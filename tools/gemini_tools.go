package tools

import (
	"fmt"
	"unicode/utf8"

	"github.com/m4xw311/gemini-collab/gemini"
)

const (
	// maxContentLength is the hard cap, in characters, applied to
	// gemini_analyze_large content before prompt construction. Anything
	// beyond it is cut and marked, so downstream code never sees the
	// untruncated content.
	maxContentLength = 30000

	truncationMarker = "\n\n[Content truncated due to size...]"

	// largeContentThreshold is the content size, in characters, above
	// which analysis is routed to the pro model.
	largeContentThreshold = 10000
)

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func optionalStringProp(description, def string) map[string]any {
	return map[string]any{"type": "string", "description": description, "default": def}
}

// ---- ask_gemini ----

type askTool struct{}

func (t *askTool) Name() string        { return "ask_gemini" }
func (t *askTool) Description() string { return "Ask Gemini a question" }
func (t *askTool) Guidance() string    { return "Please provide a question." }

func (t *askTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": stringProp("Question to ask"),
		},
		"required": []string{"question"},
	}
}

func (t *askTool) BuildPrompt(args Arguments) (Prompt, bool) {
	question := args.String("question", "")
	if question == "" {
		return Prompt{}, false
	}
	// The question is the prompt, no template around it.
	return Prompt{Text: question, Hint: gemini.ModelSmall}, true
}

// ---- gemini_code_review ----

type codeReviewTool struct{}

func (t *codeReviewTool) Name() string { return "gemini_code_review" }
func (t *codeReviewTool) Description() string {
	return "Get code review from Gemini (supports large codebases)"
}
func (t *codeReviewTool) Guidance() string { return "Please provide code to review." }

func (t *codeReviewTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code":        stringProp("Code to review (can be very large)"),
			"context":     optionalStringProp("Additional context", ""),
			"focus_areas": optionalStringProp("Specific areas to focus on", ""),
		},
		"required": []string{"code"},
	}
}

func (t *codeReviewTool) BuildPrompt(args Arguments) (Prompt, bool) {
	code := args.String("code", "")
	if code == "" {
		return Prompt{}, false
	}
	text := fmt.Sprintf(`Please review the following code and provide feedback on:
1. Code quality and best practices
2. Potential bugs or issues
3. Performance considerations
4. Security concerns
5. Suggestions for improvement

%s
%s

Code:
`+"```"+`
%s
`+"```"+`
`,
		prefixed("Context: ", args.String("context", "")),
		prefixed("Focus areas: ", args.String("focus_areas", "")),
		code)
	return Prompt{Text: text, Hint: gemini.ModelSmall}, true
}

// ---- gemini_brainstorm ----

type brainstormTool struct{}

func (t *brainstormTool) Name() string        { return "gemini_brainstorm" }
func (t *brainstormTool) Description() string { return "Brainstorm ideas with Gemini" }
func (t *brainstormTool) Guidance() string    { return "Please provide a topic to brainstorm." }

func (t *brainstormTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":       stringProp("Topic to brainstorm"),
			"constraints": optionalStringProp("Any constraints", ""),
		},
		"required": []string{"topic"},
	}
}

func (t *brainstormTool) BuildPrompt(args Arguments) (Prompt, bool) {
	topic := args.String("topic", "")
	if topic == "" {
		return Prompt{}, false
	}
	text := fmt.Sprintf(`Let's brainstorm ideas about: %s

%s

Please provide:
1. Creative ideas and approaches
2. Potential challenges to consider
3. Resources or tools that might help
4. Next steps to explore these ideas
`,
		topic,
		prefixed("Constraints/Requirements: ", args.String("constraints", "")))
	return Prompt{Text: text, Hint: gemini.ModelSmall}, true
}

// ---- gemini_analyze_large ----

type analyzeTool struct{}

func (t *analyzeTool) Name() string { return "gemini_analyze_large" }
func (t *analyzeTool) Description() string {
	return "Analyze large documents or codebases with Gemini (optimized for 1M+ token contexts)"
}
func (t *analyzeTool) Guidance() string { return "Please provide content to analyze." }

func (t *analyzeTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content":       stringProp("Large content to analyze (documents, logs, codebases)"),
			"analysis_type": optionalStringProp("Type of analysis needed", "general"),
			"questions":     optionalStringProp("Specific questions to answer", ""),
		},
		"required": []string{"content"},
	}
}

func (t *analyzeTool) BuildPrompt(args Arguments) (Prompt, bool) {
	content := args.String("content", "")
	if content == "" {
		return Prompt{}, false
	}
	// Counted in runes, not bytes, so a multi-byte character is never
	// split at the boundary.
	if utf8.RuneCountInString(content) > maxContentLength {
		content = string([]rune(content)[:maxContentLength]) + truncationMarker
	}
	text := fmt.Sprintf(`Please analyze the following content.

Analysis type: %s
%s

Content:
`+"```"+`
%s
`+"```"+`

Provide a comprehensive analysis covering:
1. Key insights and patterns
2. Important findings
3. Potential issues or concerns
4. Recommendations
`,
		args.String("analysis_type", "general"),
		prefixed("Specific questions to answer: ", args.String("questions", "")),
		content)
	hint := gemini.ModelSmall
	if utf8.RuneCountInString(content) > largeContentThreshold {
		hint = gemini.ModelLarge
	}
	return Prompt{Text: text, Hint: hint}, true
}

// prefixed renders an optional prompt line: empty value, empty line.
func prefixed(prefix, value string) string {
	if value == "" {
		return ""
	}
	return prefix + value
}
