// Package memory implements the episodic-memory system named in spec.md §6
// (recall_memory, store_memory, recall_past_work), grounded on
// original_source/src/episodic_memory.py and original_source/src/tools/memory_tools.py,
// backed by an embedded chromem-go vector collection the way
// pkg/vector/chromem.go establishes for this teacher.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/philippgille/chromem-go"
)

// Category mirrors original_source's VALID_CATEGORIES.
type Category string

const (
	CategoryFact       Category = "fact"
	CategoryPreference Category = "preference"
	CategoryGoal       Category = "goal"
	CategoryOutcome    Category = "outcome"
)

// ValidCategory reports whether c is one of the four recognized categories.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryFact, CategoryPreference, CategoryGoal, CategoryOutcome:
		return true
	default:
		return false
	}
}

// Record is one stored memory entry.
type Record struct {
	ID        string
	Content   string
	Category  Category
	CreatedAt time.Time
	Score     float32 // similarity score, populated only by Search
}

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	Embed(text string) []float32
}

// Store is a per-process episodic memory backed by an embedded chromem-go
// database, one collection per user so queries never cross user boundaries.
type Store struct {
	db          *chromem.DB
	embedder    Embedder
	persistPath string

	mu          sync.Mutex
	collections map[int64]*chromem.Collection
}

// Config configures a Store.
type Config struct {
	// PersistPath, if set, makes the store durable across restarts
	// (gob-encoded on disk, mirroring ChromemProvider's persistence model).
	PersistPath string
}

// NewStore opens an episodic memory store. An empty PersistPath yields a
// purely in-memory store.
func NewStore(cfg Config, embedder Embedder) (*Store, error) {
	var db *chromem.DB

	if cfg.PersistPath != "" {
		if err := os.MkdirAll(cfg.PersistPath, 0o755); err != nil {
			return nil, fmt.Errorf("memory: create persist dir: %w", err)
		}
		dbPath := cfg.PersistPath + "/episodic.gob"
		if _, err := os.Stat(dbPath); err == nil {
			loaded, loadErr := chromem.NewPersistentDB(dbPath, false)
			if loadErr != nil {
				return nil, fmt.Errorf("memory: load existing db: %w", loadErr)
			}
			db = loaded
		} else {
			db = chromem.NewDB()
		}
	} else {
		db = chromem.NewDB()
	}

	if embedder == nil {
		embedder = LocalEmbedder{}
	}

	return &Store{
		db:          db,
		embedder:    embedder,
		persistPath: cfg.PersistPath,
		collections: make(map[int64]*chromem.Collection),
	}, nil
}

func (s *Store) collectionFor(userID int64) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[userID]; ok {
		return col, nil
	}

	// Pre-computed vectors only: chromem still requires an EmbeddingFunc to
	// satisfy its API, but Store always calls AddDocuments/QueryEmbedding
	// with vectors it already produced via Embedder, so this is never
	// invoked in practice.
	noop := func(_ context.Context, _ string) ([]float32, error) {
		return nil, fmt.Errorf("memory: unexpected implicit embedding call")
	}

	name := fmt.Sprintf("user-%d", userID)
	col, err := s.db.GetOrCreateCollection(name, nil, noop)
	if err != nil {
		return nil, fmt.Errorf("memory: get/create collection: %w", err)
	}
	s.collections[userID] = col
	return col, nil
}

// Remember stores content under category for userID, returning the new
// record's ID. An unrecognized category falls back to CategoryFact, per
// original_source/src/episodic_memory.py's remember().
func (s *Store) Remember(ctx context.Context, userID int64, content string, category Category) (string, error) {
	if !ValidCategory(category) {
		category = CategoryFact
	}

	col, err := s.collectionFor(userID)
	if err != nil {
		return "", err
	}

	id := fmt.Sprintf("%d-%d", userID, time.Now().UnixNano())
	vec := s.embedder.Embed(content)

	doc := chromem.Document{
		ID:      id,
		Content: content,
		Metadata: map[string]string{
			"category":   string(category),
			"created_at": time.Now().UTC().Format(time.RFC3339),
		},
		Embedding: vec,
	}

	if err := col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return "", fmt.Errorf("memory: add document: %w", err)
	}
	if err := s.persist(); err != nil {
		return id, err
	}
	return id, nil
}

// Recall lists up to limit memories for userID, optionally filtered by
// category, most-recent semantics approximated by chromem's similarity
// ranking over a neutral query vector since the underlying store has no
// native "list all" primitive.
func (s *Store) Recall(ctx context.Context, userID int64, category Category, limit int) ([]Record, error) {
	col, err := s.collectionFor(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	var filter map[string]string
	if category != "" {
		filter = map[string]string{"category": string(category)}
	}

	topK := limit
	if n := col.Count(); n < topK {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, make([]float32, dims), topK, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("memory: recall query: %w", err)
	}
	return toRecords(results), nil
}

// Search performs similarity search for query text across userID's
// memories, falling back to an empty result set (never an error) when the
// collection is empty, mirroring original_source's search() contract.
func (s *Store) Search(ctx context.Context, userID int64, query string, limit int) ([]Record, error) {
	col, err := s.collectionFor(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	topK := limit
	if n := col.Count(); n < topK {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	vec := s.embedder.Embed(query)
	results, err := col.QueryEmbedding(ctx, vec, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("memory: search query: %w", err)
	}
	return toRecords(results), nil
}

func toRecords(results []chromem.Result) []Record {
	out := make([]Record, 0, len(results))
	for _, r := range results {
		createdAt, _ := time.Parse(time.RFC3339, r.Metadata["created_at"])
		out = append(out, Record{
			ID:        r.ID,
			Content:   r.Content,
			Category:  Category(r.Metadata["category"]),
			CreatedAt: createdAt,
			Score:     r.Similarity,
		})
	}
	return out
}

func (s *Store) persist() error {
	if s.persistPath == "" {
		return nil
	}
	//nolint:staticcheck // matches ChromemProvider's use of the same deprecated call
	if err := s.db.Export(s.persistPath+"/episodic.gob", false, ""); err != nil {
		return fmt.Errorf("memory: persist: %w", err)
	}
	return nil
}

// AsContext builds a prompt-injectable text block of userID's memories,
// grounded on EpisodicMemory.recall_as_context.
func (s *Store) AsContext(ctx context.Context, userID int64, limit int) (string, error) {
	records, err := s.Recall(ctx, userID, "", limit)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	out := "PREVIOUS KNOWLEDGE ABOUT THIS USER:\n"
	for _, r := range records {
		out += fmt.Sprintf("- [%s] %s\n", r.Category, r.Content)
	}
	return out, nil
}
