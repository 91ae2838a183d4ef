package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Entry is a single remembered fact.
type Entry struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// SearchResult pairs an entry with its relevance score for a query.
type SearchResult struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// Store is the minimal contract the memory agent depends on.
type Store interface {
	Remember(content string, metadata map[string]any) (Entry, error)
	Search(query string, limit int) ([]SearchResult, error)
	Forget(id string) error
	Len() int
}

// InMemoryStore is a naive process-local Store.
//
// Concurrency: protected by RWMutex.
// Search: case-insensitive word overlap; the score of an entry is the
// fraction of query words contained in its content. Suitable for tests and
// single-process assistants; swap for a semantic index for real retrieval.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
	nextID  int
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]Entry)}
}

// Remember appends a new entry and returns it, id assigned incrementally.
func (s *InMemoryStore) Remember(content string, metadata map[string]any) (Entry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Entry{}, fmt.Errorf("empty memory content")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e := Entry{
		ID:        fmt.Sprintf("mem_%d", s.nextID),
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)

	return e, nil
}

// Search scores every entry against the query and returns the best matches,
// highest score first, insertion order breaking ties. An empty query matches
// everything with score 1.
func (s *InMemoryStore) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	words := strings.Fields(strings.ToLower(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]SearchResult, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		score := overlapScore(strings.ToLower(e.Content), words)
		if score > 0 {
			results = append(results, SearchResult{Entry: e, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Forget removes a stored entry by id.
func (s *InMemoryStore) Forget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("memory %q not found", id)
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func overlapScore(content string, queryWords []string) float64 {
	if len(queryWords) == 0 {
		return 1
	}
	hits := 0
	for _, w := range queryWords {
		if strings.Contains(content, w) {
			hits++
		}
	}
	return float64(hits) / float64(len(queryWords))
}
