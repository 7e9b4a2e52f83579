package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m4xw311/gemini-collab/config"
	"github.com/m4xw311/gemini-collab/gemini"
	"github.com/m4xw311/gemini-collab/mcp"
	"github.com/m4xw311/gemini-collab/tools"
)

// traceFileName is created in the working directory when -trace is set.
// Stdout belongs to the protocol, so all diagnostics go here or to stderr.
const traceFileName = "gemini-collab.trace"

func main() {
	traceFlag := flag.Bool("trace", false, "Enable execution tracing to troubleshoot issues")
	flag.Parse()

	trace := func(string) {}
	if *traceFlag {
		traceFile, err := os.OpenFile(traceFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to open trace file: %v\n", err)
		} else {
			defer traceFile.Close()
			trace = func(msg string) {
				fmt.Fprintf(traceFile, "[%s] %s\n", time.Now().Format("15:04:05.000"), msg)
			}
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		// Not fatal: initialize and tools/list still work, and every
		// tools/call explains what is missing.
		fmt.Fprintln(os.Stderr, "Warning: GEMINI_API_KEY not set, tool calls will fail until it is")
	}

	// A termination signal cancels the context; the loop finishes the
	// in-flight request before returning.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcp.New(
		gemini.NewClient(cfg),
		tools.NewRegistry(),
		bufio.NewReader(os.Stdin),
		bufio.NewWriter(os.Stdout),
		trace,
	)
	if err := server.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server stopped with an error: %+v\n", err)
		os.Exit(1)
	}
}
