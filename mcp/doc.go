// Package mcp implements the Model Context Protocol server surface for
// gemini-collab. It speaks newline-delimited JSON-RPC 2.0 over stdio: one
// request per line in, one response per line out.
//
// The implementation supports the following MCP methods:
// - initialize: returns the protocol version and server identity
// - tools/list: advertises the four Gemini tools
// - tools/call: builds a prompt and forwards it to the Gemini API
//
// Nothing is ever written to stdout except JSON-RPC messages. Diagnostics go
// to the trace callback, which the entry point wires to a trace file.
package mcp
