// Copyright (c) Microsoft. All rights reserved.

// Command web serves a WebSocket chat endpoint at /ws. Each connection gets
// its own agent with the date and web search tools, and transcripts persist
// under the data directory so sessions survive restarts.
//
// Usage:
//
//	export OPENAI_API_KEY=sk-...
//	export TAVILY_API_KEY=tvly-...
//	go run .
//
// Frames in:  {"text": "..."} or {"reset": true}
// Frames out: {"type": "reply", "text": "...", "turns": n}
//             {"type": "error", "message": "..."}
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"

	"github.com/microsoft/polyagent/openai"
	pa "github.com/microsoft/polyagent/polyagent"
	"github.com/microsoft/polyagent/tools"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

const instructions = "You are a helpful research assistant. Use the " +
	"current_date tool when asked about dates and the web_search tool for " +
	"information you do not know. Keep responses concise."

type incomingFrame struct {
	Text  string `json:"text"`
	Reset bool   `json:"reset"`
}

type outgoingFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Turns   int    `json:"turns,omitempty"`
	Tokens  int    `json:"tokens,omitempty"`
	Message string `json:"message,omitempty"`
}

// SafeConn serializes writes; tool loops can make turns slow and the reader
// side must not interleave frames.
type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteJSON(v any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sc.Conn.WriteMessage(websocket.TextMessage, data)
}

type server struct {
	client pa.ChatClient
	tools  []pa.Tool
	store  pa.TranscriptStore
}

func main() {
	_ = godotenv.Load()

	if os.Getenv("DEBUG") != "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	client, err := openai.New(os.Getenv("OPENAI_API_KEY"),
		openai.WithModel("gpt-4o-mini"),
	)
	if err != nil {
		log.Fatalf("openai: %v", err)
	}

	searchTool, err := tools.WebSearch(os.Getenv("TAVILY_API_KEY"))
	if err != nil {
		log.Fatalf("search tool: %v", err)
	}

	store, err := pa.NewFileStore("data/transcripts")
	if err != nil {
		log.Fatalf("transcript store: %v", err)
	}

	srv := &server{
		client: client,
		tools:  []pa.Tool{tools.CurrentDate(), searchTool},
		store:  store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.handleWebSocket)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9453"
	}
	slog.Info("Web chat listening", "port", port)
	log.Fatal(http.ListenAndServe(":"+port, mux))
}

func (s *server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}
	sc := &SafeConn{Conn: conn}
	defer sc.Close()

	// Reconnecting with the same session ID restores the transcript.
	session := r.URL.Query().Get("session")
	if session == "" {
		session = newConnID()
	}

	agent, err := pa.New(s.client,
		pa.WithID("web-"+session),
		pa.WithName("web-"+session),
		pa.WithInstructions(instructions),
		pa.WithTools(s.tools...),
		pa.WithTranscriptStore(s.store),
		pa.WithAgentMiddleware(pa.LoggingMiddleware(slog.Default())),
	)
	if err != nil {
		slog.Error("Agent creation failed", "error", err)
		return
	}

	slog.Info("Client connected", "agent", agent.Name(), "remote", r.RemoteAddr)

	for {
		_, data, err := sc.ReadMessage()
		if err != nil {
			slog.Info("Client disconnected", "agent", agent.Name())
			return
		}

		var frame incomingFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			_ = sc.WriteJSON(outgoingFrame{Type: "error", Message: "malformed frame"})
			continue
		}

		if frame.Reset {
			agent.Reset()
			_ = sc.WriteJSON(outgoingFrame{Type: "reply", Text: "Conversation cleared."})
			continue
		}

		resp, err := agent.Send(r.Context(), frame.Text)
		if err != nil {
			_ = sc.WriteJSON(outgoingFrame{Type: "error", Message: fmt.Sprintf("%v", err)})
			continue
		}

		_ = sc.WriteJSON(outgoingFrame{
			Type:   "reply",
			Text:   resp.Text,
			Turns:  resp.TurnCount,
			Tokens: resp.Usage.TotalTokens,
		})
	}
}

func newConnID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
