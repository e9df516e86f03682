package html

import (
	"context"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the title and readable text of an HTML page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)
	title := ExtractTitle(page, raw.URI)
	content := StripHTML(mainRegion(page))
	if content == "" {
		return nil, domain.ErrNoContent
	}

	return &driven.NormaliseResult{
		Title:   title,
		Content: content,
		Metadata: domain.Metadata{
			"mime_type": raw.MIMEType,
			"format":    "html",
		},
	}, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	titleTag          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag             = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	mainTag           = regexp.MustCompile(`(?is)<main[^>]*>(.*?)</main>`)
	articleTag        = regexp.MustCompile(`(?is)<article[^>]*>(.*?)</article>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	chromeTags        = regexp.MustCompile(`(?is)<(nav|header|footer|aside|form)[^>]*>.*?</(nav|header|footer|aside|form)>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|blockquote|pre|table|section|article|ul|ol|dl)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|blockquote|pre|table|section|article|ul|ol|dl)[^>]*>`)
	lineElements      = regexp.MustCompile(`(?i)<(br|hr)\s*/?>|<(li|tr|dt|dd)[^>]*>`)
	cellElements      = regexp.MustCompile(`(?i)</(td|th)>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t\x{00a0}]+`)
)

// mainRegion returns the inner HTML of <main> or <article> when present.
func mainRegion(page string) string {
	if m := mainTag.FindStringSubmatch(page); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return m[1]
	}
	if m := articleTag.FindStringSubmatch(page); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return m[1]
	}
	return page
}

// ExtractTitle returns the <title>, then the first <h1>, then a name
// derived from the last URI path segment.
func ExtractTitle(page, uri string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		if m := re.FindStringSubmatch(page); len(m) > 1 {
			t := strings.TrimSpace(html.UnescapeString(allTags.ReplaceAllString(m[1], "")))
			t = multiSpaces.ReplaceAllString(strings.ReplaceAll(t, "\n", " "), " ")
			if t != "" {
				return t
			}
		}
	}

	name := path.Base(strings.TrimRight(uri, "/"))
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// StripHTML removes markup and returns readable text. Paragraph-level
// blocks are separated by a blank line.
func StripHTML(content string) string {
	for _, re := range []*regexp.Regexp{scriptTag, styleTag, noscriptTag, headTag, svgTag, chromeTags, htmlComments} {
		content = re.ReplaceAllString(content, "")
	}

	content = openBlockElements.ReplaceAllString(content, "\n\n")
	content = blockElements.ReplaceAllString(content, "\n\n")
	content = lineElements.ReplaceAllString(content, "\n")
	content = cellElements.ReplaceAllString(content, " ")
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	// Trim lines and keep at most one blank line between blocks.
	var out []string
	blank := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
