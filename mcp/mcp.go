package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/m4xw311/gemini-collab/errors"
	"github.com/m4xw311/gemini-collab/gemini"
	"github.com/m4xw311/gemini-collab/tools"
)

// JSON-RPC error codes used by the dispatcher.
const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "gemini-collab"
	serverVersion   = "1.0.0"
)

// Request is one decoded JSON-RPC request. The ID is kept as raw JSON so it
// is echoed back byte-for-byte whether the host sends strings or numbers,
// and stays absent for notifications.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one JSON-RPC response. Exactly one of Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the JSON-RPC error payload.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Completer abstracts the upstream completion client so the dispatcher can
// be exercised without the network.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, prompt string, hint gemini.ModelHint) gemini.Outcome
}

// Server owns the read loop and the dispatch of decoded requests. It holds
// no cross-request state: the registry and client are fixed at startup.
type Server struct {
	client   Completer
	registry *tools.Registry

	in        *bufio.Reader
	out       *bufio.Writer
	writeLock sync.Mutex
	trace     func(string)
}

// New creates a server reading requests from in and writing responses to
// out. The trace callback may be nil.
func New(client Completer, registry *tools.Registry, in *bufio.Reader, out *bufio.Writer, trace func(string)) *Server {
	if trace == nil {
		trace = func(string) {}
	}
	return &Server{
		client:   client,
		registry: registry,
		in:       in,
		out:      out,
		trace:    trace,
	}
}

// Run reads newline-delimited requests until the input stream ends or ctx
// is cancelled. Requests are processed one line at a time, in arrival
// order; a line already being handled is finished before shutdown. A
// malformed line is dropped without a response and the loop continues.
func (s *Server) Run(ctx context.Context) error {
	s.trace("Run: starting MCP server")

	// Reads block in their own goroutine so the loop can observe ctx
	// between lines even when no input arrives.
	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		for {
			line, err := s.in.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if err != io.EOF {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.trace("Run: shutdown requested, exiting")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					s.trace(fmt.Sprintf("Run: read error: %v", err))
					return errors.Wrapf(err, "MCP: read error")
				default:
					s.trace("Run: EOF received, exiting")
					return nil
				}
			}
			s.process(ctx, line)
		}
	}
}

// process handles a single raw input line.
func (s *Server) process(ctx context.Context, raw []byte) {
	line := bytes.TrimSpace(raw)
	if len(line) == 0 {
		return
	}
	s.trace(fmt.Sprintf("process: received: %s", string(line)))

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		// No id could be extracted, so there is nobody to answer.
		s.trace(fmt.Sprintf("process: JSON decode error: %v, dropping line", err))
		return
	}

	resp := s.dispatch(ctx, &req)
	if resp == nil {
		return
	}
	if err := s.writeResponse(resp); err != nil {
		s.trace(fmt.Sprintf("process: write error: %v", err))
	}
}

// dispatch routes a decoded request to its handler. Panics anywhere below
// are converted to an internal-error response carrying the request's id, so
// a single bad request can never take the loop down.
func (s *Server) dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.trace(fmt.Sprintf("dispatch: recovered: %v", r))
			resp = errorResponse(req.ID, codeInternalError, fmt.Sprintf("%v", r))
		}
	}()

	s.trace(fmt.Sprintf("dispatch: method=%s id=%s", req.Method, string(req.ID)))
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		if req.ID == nil {
			// Unrecognized notification, e.g. notifications/initialized.
			// There is no id to correlate an error with, so stay quiet.
			s.trace("dispatch: unrecognized notification, dropping")
			return nil
		}
		return errorResponse(req.ID, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return resultResponse(req.ID, map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{"tools": map[string]any{}},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": serverVersion,
		},
	})
}

func (s *Server) handleToolsList(req *Request) *Response {
	return resultResponse(req.ID, map[string]any{
		"tools": s.registry.Descriptors(),
	})
}

type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type callResult struct {
	Content []textContent `json:"content"`
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params callParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, codeInvalidParams, "Invalid params: "+err.Error())
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params: missing tool name")
	}

	s.trace(fmt.Sprintf("handleToolsCall: calling tool: %s", params.Name))
	if !s.client.Configured() {
		return errorResponse(req.ID, codeInternalError,
			"Gemini API not configured. Please set GEMINI_API_KEY environment variable.")
	}

	tool, ok := s.registry.Get(params.Name)
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, "Unknown tool: "+params.Name)
	}

	prompt, ok := tool.BuildPrompt(tools.Arguments(params.Arguments))
	if !ok {
		// Missing required argument degrades to a guidance answer, not an
		// error: the host always gets displayable text.
		return textResponse(req.ID, tool.Guidance())
	}

	outcome := s.client.Complete(ctx, prompt.Text, prompt.Hint)
	return textResponse(req.ID, outcome.Render())
}

func (s *Server) writeResponse(resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize JSON-RPC response")
	}
	s.trace(fmt.Sprintf("writeResponse: %s", string(data)))

	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if _, err := s.out.Write(data); err != nil {
		return err
	}
	// Trailing newline tells the host the message is complete.
	if _, err := s.out.WriteString("\n"); err != nil {
		return err
	}
	return s.out.Flush()
}

func resultResponse(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func textResponse(id json.RawMessage, text string) *Response {
	return resultResponse(id, callResult{
		Content: []textContent{{Type: "text", Text: text}},
	})
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	}
}
