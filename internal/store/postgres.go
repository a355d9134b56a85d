package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paperforge/paperforge/internal/novelty"
)

// Postgres is a Knowledge implementation backed by a pgx pool. Vectors are
// stored as float4 arrays and ranked by cosine similarity in Go; the
// corpus sizes here (one syllabus, a few hundred questions per course) do
// not need an index-backed nearest-neighbor search.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Schema is the DDL for the documents table.
const Schema = `
CREATE TABLE IF NOT EXISTS knowledge_docs (
	id         UUID PRIMARY KEY,
	text       TEXT NOT NULL,
	embedding  FLOAT4[] NOT NULL,
	metadata   JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS knowledge_docs_metadata_idx ON knowledge_docs USING GIN (metadata);
`

// Migrate creates the documents table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrating knowledge_docs: %w", err)
	}
	return nil
}

func (p *Postgres) Add(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is empty")
	}
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO knowledge_docs (id, text, embedding, metadata) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET text = $2, embedding = $3, metadata = $4`,
		doc.ID, doc.Text, doc.Embedding, meta)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, embedding []float32, filter map[string]string, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}
	docs, err := p.Get(ctx, filter)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, ScoredDocument{
			Document: doc,
			Score:    novelty.CosineSimilarity(embedding, doc.Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (p *Postgres) Get(ctx context.Context, filter map[string]string) ([]Document, error) {
	if filter == nil {
		filter = map[string]string{}
	}
	meta, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encoding filter: %w", err)
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, text, embedding, metadata FROM knowledge_docs WHERE metadata @> $1 ORDER BY id`,
		meta)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var rawMeta []byte
		if err := rows.Scan(&doc.ID, &doc.Text, &doc.Embedding, &rawMeta); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		if err := json.Unmarshal(rawMeta, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading documents: %w", err)
	}
	return docs, nil
}
