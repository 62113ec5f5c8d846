package services

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const defaultLexicalDims = 512

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "for": {}, "has": {}, "in": {},
	"is": {}, "me": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"with": {}, "i": {}, "want": {}, "looking": {},
}

// LexicalEmbedder hashes words into a fixed-size bag-of-words vector. It
// needs no network and is deterministic, so it backs the catalog when no
// Gemini key is configured.
type LexicalEmbedder struct {
	dims int
}

func NewLexicalEmbedder(dims int) *LexicalEmbedder {
	if dims <= 0 {
		dims = defaultLexicalDims
	}
	return &LexicalEmbedder{dims: dims}
}

func (e *LexicalEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *LexicalEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[h.Sum32()%uint32(e.dims)]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// tokenize lowercases text and splits it on anything that is not a letter or
// digit, dropping stop words. A trailing plural "s" is stripped so "bedrooms"
// and "bedroom" share a bucket.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := fields[:0]
	for _, f := range fields {
		if _, ok := stopWords[f]; ok {
			continue
		}
		if len(f) > 3 && strings.HasSuffix(f, "s") && !strings.HasSuffix(f, "ss") {
			f = f[:len(f)-1]
		}
		out = append(out, f)
	}
	return out
}
