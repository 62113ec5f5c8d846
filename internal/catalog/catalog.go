// Package catalog holds the property listings and answers keyword and
// semantic queries over them.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"propertybot/internal/models"
	"propertybot/internal/worker"
)

const (
	embedBatchSize = 32

	// Minimum keyword hits before Search skips semantic ranking.
	keywordThreshold = 3
)

// Embedder turns texts into vectors of equal dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Catalog struct {
	props    []models.Property
	vectors  [][]float32
	embedder Embedder
}

// LoadFile reads a JSON array of listings.
func LoadFile(path string) ([]models.Property, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var props []models.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return props, nil
}

// Dedupe keeps the first listing for every title and reports how many were
// dropped.
func Dedupe(props []models.Property) ([]models.Property, int) {
	seen := make(map[string]struct{}, len(props))
	unique := make([]models.Property, 0, len(props))
	for _, p := range props {
		if _, ok := seen[p.Title]; ok {
			continue
		}
		seen[p.Title] = struct{}{}
		unique = append(unique, p)
	}
	return unique, len(props) - len(unique)
}

// New embeds every listing up front using pool.
func New(ctx context.Context, props []models.Property, embedder Embedder, pool *worker.Pool) (*Catalog, error) {
	texts := make([]string, len(props))
	for i, p := range props {
		texts[i] = p.Text()
	}

	vectors, err := worker.Map(ctx, pool, texts, embedBatchSize, embedder.Embed)
	if err != nil {
		return nil, fmt.Errorf("failed to embed catalog: %w", err)
	}

	return &Catalog{
		props:    props,
		vectors:  vectors,
		embedder: embedder,
	}, nil
}

func (c *Catalog) Len() int {
	return len(c.props)
}

func (c *Catalog) All() []models.Property {
	return c.First(len(c.props))
}

// First returns up to n listings in catalog order.
func (c *Catalog) First(n int) []models.Property {
	n = max(0, min(n, len(c.props)))
	out := make([]models.Property, n)
	copy(out, c.props[:n])
	return out
}

// KeywordMatches returns listings whose title, location or description
// contains query, ignoring case.
func (c *Catalog) KeywordMatches(query string) []models.Property {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []models.Property
	for _, p := range c.props {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Location), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// Nearest ranks every listing by cosine similarity to query and returns the
// best k. Equal scores keep catalog order.
func (c *Catalog) Nearest(ctx context.Context, query string, k int) ([]models.Property, error) {
	k = min(k, len(c.props))
	if k <= 0 {
		return nil, nil
	}

	qv, err := c.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qv))
	}

	scores := make([]float64, len(c.vectors))
	order := make([]int, len(c.vectors))
	for i, v := range c.vectors {
		scores[i] = Cosine(qv[0], v)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]models.Property, k)
	for i := 0; i < k; i++ {
		out[i] = c.props[order[i]]
	}
	return out, nil
}

// Search answers a listing-page query: an empty query lists the catalog,
// three or more keyword hits are returned as-is, otherwise listings are
// ranked semantically.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]models.Property, error) {
	if limit <= 0 {
		return nil, nil
	}
	if strings.TrimSpace(query) == "" {
		return c.First(limit), nil
	}

	if matches := c.KeywordMatches(query); len(matches) >= keywordThreshold {
		return matches[:min(limit, len(matches))], nil
	}
	return c.Nearest(ctx, query, limit)
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
