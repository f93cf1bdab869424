// Copyright (c) Microsoft. All rights reserved.

// Command local is a multi-turn conversational agent running entirely on
// your machine against Foundry Local's OpenAI-compatible endpoint.
//
// Start Foundry Local first (https://github.com/microsoft/Foundry-Local):
//
//	foundry model run phi-4-mini
//
// then:
//
//	go run .                               # defaults to phi-4-mini
//	go run . --model qwen2.5-7b            # explicit model alias
//	go run . --endpoint http://localhost:5273/v1
//
// Small local models are unreliable tool callers, so this sample only wires
// the current-date tool and keeps the instructions short.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/microsoft/polyagent/foundry"
	pa "github.com/microsoft/polyagent/polyagent"
	"github.com/microsoft/polyagent/tools"
)

func main() {
	model := flag.String("model", "phi-4-mini", "model alias to use")
	endpoint := flag.String("endpoint", "http://localhost:5273/v1", "Foundry Local endpoint")
	flag.Parse()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	// Local models can take a long time to load; no client-side timeout.
	client, err := foundry.New(*endpoint,
		foundry.WithModel(*model),
		foundry.WithHTTPClient(&http.Client{Timeout: 0}),
	)
	if err != nil {
		log.Fatalf("foundry: %v", err)
	}

	agent, err := pa.New(client,
		pa.WithName("local-assistant"),
		pa.WithInstructions("You are a concise local assistant. Use the current_date tool when asked about dates."),
		pa.WithTools(tools.CurrentDate()),
		pa.WithMaxToolIterations(3),
	)
	if err != nil {
		log.Fatalf("agent: %v", err)
	}

	fmt.Printf("Chatting with %s at %s (type 'reset' to clear history, 'quit' to exit)\n\n", *model, *endpoint)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			break
		}
		if input == "reset" {
			agent.Reset()
			fmt.Println("Conversation cleared.")
			fmt.Println()
			continue
		}

		resp, err := agent.Send(context.Background(), input)
		if err != nil {
			log.Printf("Error: %v", err)
			continue
		}
		fmt.Printf("Assistant: %s\n\n", resp.Text)
	}
}
