// Copyright (c) Microsoft. All rights reserved.

package polyagent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// TranscriptStore persists conversation transcripts keyed by agent ID.
type TranscriptStore interface {
	// Save writes the full transcript for id, replacing any previous one.
	Save(ctx context.Context, id string, messages []Message) error

	// Load returns the stored transcript for id, or nil if none exists.
	Load(ctx context.Context, id string) ([]Message, error)

	// Delete removes the stored transcript for id, if any.
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-memory [TranscriptStore], safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[string][]Message
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[string][]Message)}
}

func (s *MemoryStore) Save(_ context.Context, id string, messages []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[id] = append([]Message(nil), messages...)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.transcripts[id]
	if !ok {
		return nil, nil
	}
	return append([]Message(nil), msgs...), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transcripts, id)
	return nil
}

var filenameSafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// FileStore is a [TranscriptStore] writing one JSON file per transcript
// under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	safe := filenameSafeRegex.ReplaceAllString(id, "_")
	return filepath.Join(s.dir, fmt.Sprintf("transcript_%s.json", safe))
}

func (s *FileStore) Save(_ context.Context, id string, messages []Message) error {
	data, err := jsonit.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(s.path(id), data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, id string) ([]Message, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var messages []Message
	if err := jsonit.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	return messages, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}
