// Package tools defines the tools the server advertises over MCP and the
// prompt each of them builds. Every tool is a pure transform from arguments
// to a prompt string plus a model hint; the upstream call itself lives in
// the gemini package.
package tools

import (
	"github.com/m4xw311/gemini-collab/gemini"
)

// Arguments is the decoded "arguments" object of a tools/call request.
type Arguments map[string]any

// String extracts a string argument. A key that is absent or holds a
// non-string value yields the fallback; a missing required argument is a
// guidance case handled by the tool, never a type error.
func (a Arguments) String(key, fallback string) string {
	v, ok := a[key]
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// Prompt is the fully built upstream request text and its model hint.
type Prompt struct {
	Text string
	Hint gemini.ModelHint
}

// Tool defines one capability advertised via tools/list and dispatched via
// tools/call.
type Tool interface {
	Name() string
	Description() string
	// InputSchema returns the JSON-schema object advertised for this tool.
	InputSchema() map[string]any
	// Guidance is the text returned as a successful result when the
	// required argument is missing or empty.
	Guidance() string
	// BuildPrompt builds the upstream prompt. ok is false when the required
	// argument is missing, in which case the caller answers with Guidance
	// instead of calling upstream.
	BuildPrompt(args Arguments) (p Prompt, ok bool)
}

// Descriptor is the wire form of a tool in the tools/list result.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Registry holds the fixed tool set. It is built once at startup and read
// concurrently without locking afterwards.
type Registry struct {
	order  []Tool
	byName map[string]Tool
}

// NewRegistry constructs the registry with the four Gemini tools, in the
// order they are advertised.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Tool)}
	r.register(&askTool{})
	r.register(&codeReviewTool{})
	r.register(&brainstormTool{})
	r.register(&analyzeTool{})
	return r
}

func (r *Registry) register(t Tool) {
	r.order = append(r.order, t)
	r.byName[t.Name()] = t
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Descriptors returns the tools/list advertisement, in registration order.
func (r *Registry) Descriptors() []Descriptor {
	ds := make([]Descriptor, 0, len(r.order))
	for _, t := range r.order {
		ds = append(ds, Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return ds
}
