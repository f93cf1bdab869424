// Copyright (c) Microsoft. All rights reserved.

// Command chat is a multi-turn conversational agent with a current-date tool
// and a Tavily web search tool, running against any supported backend.
//
// Select the backend with POLYAGENT_BACKEND (openai, anthropic, gemini,
// ollama, foundry; defaults to openai) and set the matching credentials:
//
//	export POLYAGENT_BACKEND=openai
//	export OPENAI_API_KEY=sk-...
//	export TAVILY_API_KEY=tvly-...
//	go run .
//
// Foundry reads AZURE_FOUNDRY_ENDPOINT plus AZURE_FOUNDRY_KEY, falling back
// to Azure AD authentication when no key is set. Ollama reads OLLAMA_HOST.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/joho/godotenv"

	"github.com/microsoft/polyagent/anthropic"
	"github.com/microsoft/polyagent/foundry"
	"github.com/microsoft/polyagent/gemini"
	"github.com/microsoft/polyagent/ollama"
	"github.com/microsoft/polyagent/openai"
	pa "github.com/microsoft/polyagent/polyagent"
	"github.com/microsoft/polyagent/tools"
)

const instructions = "You are a helpful research assistant. Use the " +
	"current_date tool when asked about dates and the web_search tool for " +
	"information you do not know. Keep responses concise."

func main() {
	// Load .env file if present (ignored if missing).
	_ = godotenv.Load()

	// Enable debug logging if requested
	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	client := newChatClient()

	searchTool, err := tools.WebSearch(os.Getenv("TAVILY_API_KEY"))
	if err != nil {
		log.Fatalf("Failed to create search tool: %v", err)
	}

	agent, err := pa.New(client,
		pa.WithName("assistant"),
		pa.WithInstructions(instructions),
		pa.WithTools(tools.CurrentDate(), searchTool),
		pa.WithAgentMiddleware(pa.LoggingMiddleware(slog.Default())),
	)
	if err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}

	fmt.Println("Chat with the assistant (type 'reset' to clear history, 'quit' to exit)")
	fmt.Println()

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
			switch {
			case errors.Is(err, pa.ErrToolLoopExceeded):
				log.Printf("The model kept calling tools without answering: %v", err)
			case errors.Is(err, pa.ErrUpstream):
				log.Printf("The backend is unavailable: %v", err)
			default:
				log.Printf("Error: %v", err)
			}
			continue
		}

		fmt.Printf("Assistant: %s\n", resp.Text)
		if resp.Usage.TotalTokens > 0 {
			fmt.Printf("  [tokens: %d in, %d out]\n",
				resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
		fmt.Println()
	}
}

// newChatClient builds the chat client named by POLYAGENT_BACKEND.
func newChatClient() pa.ChatClient {
	backend := strings.ToLower(os.Getenv("POLYAGENT_BACKEND"))
	if backend == "" {
		backend = "openai"
	}

	switch backend {
	case "openai":
		client, err := openai.New(os.Getenv("OPENAI_API_KEY"),
			openai.WithModel(envOr("OPENAI_MODEL", "gpt-4o-mini")),
		)
		if err != nil {
			log.Fatalf("openai: %v", err)
		}
		return client

	case "anthropic":
		client, err := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"),
			anthropic.WithModel(envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5")),
		)
		if err != nil {
			log.Fatalf("anthropic: %v", err)
		}
		return client

	case "gemini":
		client, err := gemini.New(os.Getenv("GEMINI_API_KEY"),
			gemini.WithModel(envOr("GEMINI_MODEL", "gemini-2.0-flash")),
		)
		if err != nil {
			log.Fatalf("gemini: %v", err)
		}
		return client

	case "ollama":
		client, err := ollama.New(
			ollama.WithBaseURL(os.Getenv("OLLAMA_HOST")),
			ollama.WithModel(envOr("OLLAMA_MODEL", "qwen3")),
		)
		if err != nil {
			log.Fatalf("ollama: %v", err)
		}
		return client

	case "foundry":
		return newFoundryClient()

	default:
		log.Fatalf("Unknown backend %q (use openai, anthropic, gemini, ollama, or foundry)", backend)
		return nil
	}
}

// newFoundryClient prefers API-key auth and falls back to Azure AD.
func newFoundryClient() pa.ChatClient {
	endpoint := os.Getenv("AZURE_FOUNDRY_ENDPOINT")
	if endpoint == "" {
		log.Fatal("Set AZURE_FOUNDRY_ENDPOINT for the foundry backend")
	}
	model := envOr("AZURE_FOUNDRY_MODEL", "gpt-4o")

	fmt.Printf("Using Azure AI Foundry: %s\n", endpoint)

	if key := os.Getenv("AZURE_FOUNDRY_KEY"); key != "" {
		client, err := foundry.New(endpoint,
			foundry.WithModel(model),
			foundry.WithAPIKey(key),
		)
		if err != nil {
			log.Fatalf("foundry: %v", err)
		}
		return client
	}

	fmt.Println("Using Azure AD authentication (DefaultAzureCredential)")
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		log.Fatalf("Failed to create Azure credential: %v", err)
	}
	client, err := foundry.New(endpoint,
		foundry.WithModel(model),
		foundry.WithCredential(cred),
	)
	if err != nil {
		log.Fatalf("foundry: %v", err)
	}
	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
