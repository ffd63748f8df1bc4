package retrieve

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/castrumai/examai/internal/model"
)

// PgSearcher implements Searcher against a pgvector-backed chunk table. The
// corpus is chunked and embedded by an external ingestion pipeline; this
// client only reads.
type PgSearcher struct {
	pool *pgxpool.Pool
}

// NewPgSearcher connects to the similarity-search database.
func NewPgSearcher(ctx context.Context, dsn string) (*PgSearcher, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect search database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping search database: %w", err)
	}
	return &PgSearcher{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PgSearcher) Close() {
	s.pool.Close()
}

// Search returns passages whose inner-product similarity to the query vector
// meets the threshold, best first. Embeddings are pre-normalized, so the
// negated inner product operator (<#>) yields cosine similarity.
func (s *PgSearcher) Search(ctx context.Context, q Query) ([]model.Passage, error) {
	vec := vectorLiteral(q.Vector)

	var sb strings.Builder
	sb.WriteString(`SELECT source_file, content, -(embedding <#> $1::vector) AS score
		FROM corpus_chunks
		WHERE -(embedding <#> $1::vector) >= $2`)
	args := []any{vec, q.Threshold}

	if len(q.GroupFilters) > 0 {
		args = append(args, q.GroupFilters)
		fmt.Fprintf(&sb, " AND topic_group = ANY($%d)", len(args))
	}
	if len(q.FileFilters) > 0 {
		args = append(args, q.FileFilters)
		fmt.Fprintf(&sb, " AND source_file = ANY($%d)", len(args))
	}

	sb.WriteString(" ORDER BY embedding <#> $1::vector")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query corpus chunks: %w", err)
	}
	defer rows.Close()

	var passages []model.Passage
	for rows.Next() {
		var p model.Passage
		if err := rows.Scan(&p.SourceFile, &p.Content, &p.Score); err != nil {
			return nil, fmt.Errorf("scan corpus chunk: %w", err)
		}
		passages = append(passages, p)
	}
	return passages, rows.Err()
}

// vectorLiteral renders a float32 slice in pgvector's input syntax.
func vectorLiteral(v []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}
