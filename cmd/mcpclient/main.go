// Command mcpclient is a smoke-test client for the gemini-collab server.
// It spawns the server binary, runs the MCP handshake through the official
// SDK, lists the advertised tools and optionally calls ask_gemini. Useful to
// verify an installation without wiring up an editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	bin := flag.String("bin", "./gemini-collab", "path to the gemini-collab server binary")
	ask := flag.String("ask", "", "question to send through the ask_gemini tool")
	flag.Parse()

	if err := run(*bin, *ask); err != nil {
		ancli.PrintErr(fmt.Sprintf("%v\n", err))
		os.Exit(1)
	}
}

func run(bin, ask string) error {
	ctx := context.Background()

	cmd := exec.Command(bin)
	cmd.Stderr = os.Stderr
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "mcpclient", Version: "v1.0.0"}, nil)
	conn, err := client.Connect(ctx, mcpsdk.NewCommandTransport(cmd))
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()
	ancli.PrintOK("connected to server\n")

	toolListParams := &mcpsdk.ListToolsParams{}
	for {
		toolList, err := conn.ListTools(ctx, toolListParams)
		if err != nil {
			return fmt.Errorf("failed to list tools: %w", err)
		}
		for _, t := range toolList.Tools {
			ancli.Okf("tool: %s - %s\n", t.Name, t.Description)
		}
		if toolList.NextCursor == "" {
			break
		}
		toolListParams.Cursor = toolList.NextCursor
	}

	if ask == "" {
		return nil
	}

	result, err := conn.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "ask_gemini",
		Arguments: map[string]any{"question": ask},
	})
	if err != nil {
		return fmt.Errorf("ask_gemini failed: %w", err)
	}
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			fmt.Println(tc.Text)
		}
	}
	return nil
}
