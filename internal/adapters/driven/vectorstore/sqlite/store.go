// Package sqlite provides a persistent vector store backed by SQLite.
// Embeddings are stored as little-endian float32 blobs; similarity is
// computed in process, which is adequate for a corpus of a few thousand
// law articles and terms.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kanun-labs/kanunqa/internal/adapters/driven/vectorstore"
	"github.com/kanun-labs/kanunqa/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/kanun-labs/kanunqa/internal/core/domain"
	"github.com/kanun-labs/kanunqa/internal/core/ports/driven"
)

// Store is a SQLite-backed chunk storage shared by all collections.
// Collection views implementing driven.VectorStore are derived from it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.kanunqa/data/chunks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".kanunqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chunks.db")

	// WAL mode serialises writes against concurrent reads at the store
	// boundary, which is the guarantee the retrieval core relies on.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns a VectorStore view over one named collection.
func (s *Store) Collection(name string) driven.VectorStore {
	return &collection{store: s, name: name}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// collection implements driven.VectorStore for one collection name.
type collection struct {
	store *Store
	name  string
}

var _ driven.VectorStore = (*collection)(nil)

// Upsert stores chunks inside one transaction so a re-upserted ID is
// replaced atomically from the caller's perspective.
func (c *collection) Upsert(ctx context.Context, chunks []domain.DocumentChunk) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin upsert", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, content, embedding, type, number,
			book, part, chapter, hierarchy_level, term, legal_terms, topics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id, collection) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			type = excluded.type,
			number = excluded.number,
			book = excluded.book,
			part = excluded.part,
			chapter = excluded.chapter,
			hierarchy_level = excluded.hierarchy_level,
			term = excluded.term,
			legal_terms = excluded.legal_terms,
			topics = excluded.topics
	`)
	if err != nil {
		return storeErr("prepare upsert", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("sqlite: chunk without ID")
		}
		legalTerms, err := json.Marshal(chunk.Metadata.LegalTerms)
		if err != nil {
			return fmt.Errorf("marshalling legal terms: %w", err)
		}
		topics, err := json.Marshal(chunk.Metadata.Topics)
		if err != nil {
			return fmt.Errorf("marshalling topics: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			chunk.ID, c.name, chunk.Content, float32SliceToBytes(chunk.Embedding),
			string(chunk.Metadata.Type), chunk.Metadata.Number,
			chunk.Metadata.Book, chunk.Metadata.Part, chunk.Metadata.Chapter,
			string(chunk.Metadata.HierarchyLevel), chunk.Metadata.Term,
			string(legalTerms), string(topics),
		)
		if err != nil {
			return storeErr("upsert chunk", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit upsert", err)
	}
	return nil
}

// Search loads the collection's candidate rows, optionally pre-filtered
// in SQL, and ranks them by ascending cosine distance in process.
func (c *collection) Search(ctx context.Context, q domain.Query) ([]domain.RetrievalResult, error) {
	if err := vectorstore.ValidateFilter(q.MetadataFilter); err != nil {
		return nil, err
	}
	topK := q.TopK
	if topK <= 0 {
		topK = 5
	}

	query := `
		SELECT id, content, embedding, type, number, book, part, chapter,
			hierarchy_level, term, legal_terms, topics
		FROM chunks WHERE collection = ?
	`
	args := []any{c.name}
	for _, key := range sortedKeys(q.MetadataFilter) {
		query += fmt.Sprintf(" AND %s = ?", key)
		args = append(args, q.MetadataFilter[key])
	}

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("search", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var chunk domain.DocumentChunk
		var embedding []byte
		var chunkType, level, legalTerms, topics string
		err := rows.Scan(&chunk.ID, &chunk.Content, &embedding, &chunkType,
			&chunk.Metadata.Number, &chunk.Metadata.Book, &chunk.Metadata.Part,
			&chunk.Metadata.Chapter, &level, &chunk.Metadata.Term, &legalTerms, &topics)
		if err != nil {
			return nil, storeErr("scan chunk", err)
		}
		chunk.Metadata.Type = domain.ChunkType(chunkType)
		chunk.Metadata.HierarchyLevel = domain.HierarchyLevel(level)
		if err := json.Unmarshal([]byte(legalTerms), &chunk.Metadata.LegalTerms); err != nil {
			return nil, fmt.Errorf("unmarshalling legal terms: %w", err)
		}
		if err := json.Unmarshal([]byte(topics), &chunk.Metadata.Topics); err != nil {
			return nil, fmt.Errorf("unmarshalling topics: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(embedding)

		results = append(results, domain.RetrievalResult{
			Chunk:    chunk,
			Distance: cosineDistance(q.Embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate chunks", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of chunks in the collection.
func (c *collection) Count(ctx context.Context) (int, error) {
	var count int
	row := c.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE collection = ?", c.name)
	if err := row.Scan(&count); err != nil {
		return 0, storeErr("count", err)
	}
	return count, nil
}

// Close is a no-op for collection views; the owning Store closes the
// database.
func (c *collection) Close() error { return nil }

// storeErr wraps driver failures as transient store unavailability so
// the retriever applies its retry policy.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosineDistance is 1 - cosine similarity. Zero-norm vectors rank as
// maximally dissimilar.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
