// Package chunker provides a boundary-aware text chunking processor.
//
// Text is split on paragraph boundaries first, then sentence boundaries,
// and only falls back to a fixed rune window (with overlap) for sentences
// longer than a chunk. Segments are then packed greedily into chunks of at
// most the configured size. Consecutive chunks share a short word-aligned
// tail of the previous chunk when it fits.
package chunker

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]["')\]]*\s+`)
	inlineSpace    = regexp.MustCompile(`[ \t\r\f\v]+`)
)

// Processor splits document content into bounded chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk length in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in characters.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Every chunk receives a copy of the document metadata.
func (p *Processor) Process(_ context.Context, doc *domain.SourceDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, nil
	}

	texts := p.Split(doc.Content)
	if len(texts) == 0 {
		// Empty content produces no chunks
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, domain.Chunk{
			Text:     text,
			Metadata: doc.Metadata.Clone(),
		})
	}
	return chunks, nil
}

// segment is a piece of text no longer than a chunk.
type segment struct {
	text      string
	paragraph bool // starts a new paragraph
}

// Split returns the chunk texts for content.
func (p *Processor) Split(content string) []string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil
	}
	if utf8.RuneCountInString(content) <= p.chunkSize {
		return []string{content}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
	}

	for _, seg := range p.segments(content) {
		segLen := utf8.RuneCountInString(seg.text)
		sep := " "
		if seg.paragraph {
			sep = "\n\n"
		}

		if curLen > 0 && curLen+len(sep)+segLen <= p.chunkSize {
			cur.WriteString(sep)
			cur.WriteString(seg.text)
			curLen += len(sep) + segLen
			continue
		}

		var tail string
		if curLen > 0 {
			tail = p.tail(cur.String(), segLen)
		}
		flush()
		if tail != "" {
			cur.WriteString(tail)
			cur.WriteString(" ")
			curLen = utf8.RuneCountInString(tail) + 1
		}
		cur.WriteString(seg.text)
		curLen += segLen
	}
	flush()

	return chunks
}

// segments breaks content into paragraph, sentence or window pieces that
// each fit in one chunk.
func (p *Processor) segments(content string) []segment {
	var out []segment
	for _, para := range paragraphBreak.Split(content, -1) {
		para = strings.TrimSpace(inlineSpace.ReplaceAllString(para, " "))
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= p.chunkSize {
			out = append(out, segment{text: para, paragraph: true})
			continue
		}
		first := true
		for _, sentence := range splitSentences(para) {
			if utf8.RuneCountInString(sentence) <= p.chunkSize {
				out = append(out, segment{text: sentence, paragraph: first})
				first = false
				continue
			}
			for _, w := range p.windows(sentence) {
				out = append(out, segment{text: w, paragraph: first})
				first = false
			}
		}
	}
	return out
}

// splitSentences cuts after sentence terminators followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// windows splits text into fixed rune windows with overlap.
func (p *Processor) windows(text string) []string {
	runes := []rune(text)
	step := p.chunkSize - p.overlap
	if step <= 0 {
		step = p.chunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + p.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if w := strings.TrimSpace(string(runes[start:end])); w != "" {
			out = append(out, w)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// tail returns up to overlap trailing characters of prev, starting at a
// word boundary, or "" if the tail plus the next segment would not fit.
func (p *Processor) tail(prev string, nextLen int) string {
	if p.overlap == 0 {
		return ""
	}
	budget := p.chunkSize - nextLen - 1
	if budget > p.overlap {
		budget = p.overlap
	}
	if budget <= 0 {
		return ""
	}
	runes := []rune(prev)
	if len(runes) <= budget {
		return ""
	}
	t := string(runes[len(runes)-budget:])
	if i := strings.IndexAny(t, " \n"); i >= 0 {
		t = t[i+1:]
	} else {
		return ""
	}
	return strings.TrimSpace(t)
}
