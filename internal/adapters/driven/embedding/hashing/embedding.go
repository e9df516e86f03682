// Package hashing provides a local embedding service based on feature
// hashing. It needs no model download or network access, which makes it the
// default for offline use and tests. Similarity is lexical, not semantic.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 768
	ModelName         = "feature-hash-768"
)

// tokenPattern keeps model numbers and versions such as "aos-cx" or "10.13"
// as single tokens.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:[-.][\p{L}\p{N}]+)*`)

// EmbeddingService hashes unigrams and bigrams into a fixed-size vector.
type EmbeddingService struct {
	dimensions int
	model      string
	stopwords  map[string]struct{}
}

// NewEmbeddingService creates a hashing embedder. dimensions <= 0 selects
// the default.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	model := ModelName
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	} else if dimensions != DefaultDimensions {
		model = fmt.Sprintf("feature-hash-%d", dimensions)
	}
	return &EmbeddingService{
		dimensions: dimensions,
		model:      model,
		stopwords:  defaultStopwords(),
	}
}

// Embed returns the L2-normalised hashed term vector of text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counts := make(map[int]float64)
	tokens := s.tokenize(text)
	for i, tok := range tokens {
		s.add(counts, tok, 1)
		if i > 0 {
			s.add(counts, tokens[i-1]+" "+tok, 0.5)
		}
	}

	vec := make([]float32, s.dimensions)
	var norm float64
	for idx, c := range counts {
		if c == 0 {
			continue
		}
		// Sublinear term frequency keeps repeated boilerplate from dominating.
		w := math.Copysign(1+math.Log(math.Abs(c)), c)
		vec[idx] = float32(w)
		norm += w * w
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// add hashes a feature into a bucket. One hash bit picks the sign so
// collisions tend to cancel.
func (s *EmbeddingService) add(counts map[int]float64, feature string, weight float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	counts[idx] += weight
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// EmbedBatch embeds each text.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the model identifier stamped on stored chunks.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this",
		"that", "these", "those", "from", "up", "down", "over", "under", "than", "so", "such",
		"into", "about", "between", "through", "during", "before", "after", "out", "off", "can",
		"will", "just", "should", "now", "how", "what", "do", "does", "i", "my", "we", "our",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
