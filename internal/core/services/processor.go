package services

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driven"
	"github.com/custodia-labs/netassist/internal/logger"
)

// vendorDomains maps documentation hosts to vendor tags.
var vendorDomains = []struct {
	vendor string
	host   *regexp.Regexp
}{
	{"cisco", regexp.MustCompile(`(?i)cisco\.com`)},
	{"juniper", regexp.MustCompile(`(?i)juniper\.net`)},
	{"aruba", regexp.MustCompile(`(?i)aruba`)},
	{"arista", regexp.MustCompile(`(?i)arista\.com`)},
	{"hpe", regexp.MustCompile(`(?i)hpe\.com`)},
	{"hackernews", regexp.MustCompile(`(?i)news\.ycombinator\.com`)},
}

// productLines are checked in order; the first hit names the product line.
var productLines = []struct {
	line    string
	pattern *regexp.Regexp
}{
	{"Nexus", regexp.MustCompile(`(?i)\bnexus[-\s]?\d+`)},
	{"Catalyst", regexp.MustCompile(`(?i)\bcatalyst[-\s]?\d+`)},
	{"MX Series", regexp.MustCompile(`(?i)\bmx[-\s]?\d+`)},
	{"EX Series", regexp.MustCompile(`(?i)\bex[-\s]?\d+`)},
	{"CX Series", regexp.MustCompile(`(?i)\bcx[-\s]?\d+`)},
}

var releasePattern = regexp.MustCompile(`(?i)\b(?:Release|Version)\s+(\d+(?:\.\d+)*)`)

// topic is a label assigned when any of its keywords appears in the text.
type topic struct {
	label    string
	keywords []string
}

var (
	featureTopics = []topic{
		{"Hardware", []string{"hardware", "physical", "port", "interface", "chassis"}},
		{"Software", []string{"software", "firmware", "os", "operating system", "configuration"}},
	}
	categoryTopics = []topic{
		{"Switching", []string{"switch", "vlan", "spanning tree", "stp", "lacp", "trunk"}},
		{"Routing", []string{"rout", "ospf", "bgp", "eigrp", "rip", "static route"}},
		{"VPN", []string{"vpn", "ipsec", "ssl", "tunnel"}},
	}
	deploymentTopics = []topic{
		{"Datacenter", []string{"data center", "rack", "server", "virtualization"}},
		{"Campus", []string{"campus", "office", "building", "enterprise"}},
		{"WAN", []string{"wan", "wide area network", "branch", "remote"}},
	}
)

// compileTopics builds one prefix-anchored matcher per topic. Keywords match
// at a word start so "os" does not fire inside "most".
func compileTopics(topics []topic) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(topics))
	for i, t := range topics {
		quoted := make([]string, len(t.keywords))
		for j, k := range t.keywords {
			quoted[j] = regexp.QuoteMeta(k)
		}
		out[i] = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
	}
	return out
}

var (
	featureMatchers    = compileTopics(featureTopics)
	categoryMatchers   = compileTopics(categoryTopics)
	deploymentMatchers = compileTopics(deploymentTopics)
)

// DocumentProcessor extracts metadata from document text and chunks it.
type DocumentProcessor struct {
	pipeline driven.PostProcessorPipeline
}

// NewDocumentProcessor creates a processor around a post-processor pipeline
// (normally chunker followed by metadata).
func NewDocumentProcessor(pipeline driven.PostProcessorPipeline) *DocumentProcessor {
	return &DocumentProcessor{pipeline: pipeline}
}

// VendorFromURL returns the vendor tag for a documentation URL, or "".
func VendorFromURL(raw string) string {
	host := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, v := range vendorDomains {
		if v.host.MatchString(host) {
			return v.vendor
		}
	}
	return ""
}

// ExtractProductInfo scans text for vendor names, product lines and release
// numbers. Fields that are not found are omitted.
func (p *DocumentProcessor) ExtractProductInfo(text string) domain.Metadata {
	md := domain.Metadata{}
	if strings.TrimSpace(text) == "" {
		return md
	}

	if loc := firstVendorMention(text); loc.name != "" {
		md[domain.MetaVendor] = strings.ToLower(loc.name)
	}

	for _, pl := range productLines {
		if m := pl.pattern.FindString(text); m != "" {
			md[domain.MetaProductLine] = pl.line + ": " + m
			break
		}
	}

	if m := releasePattern.FindStringSubmatch(text); m != nil {
		md[domain.MetaRelease] = strings.TrimRight(m[1], ".")
	}
	return md
}

// ClassifyTopics labels text with feature, category and deployment tags.
// Each field is a comma-joined list; fields with no match are omitted.
func (p *DocumentProcessor) ClassifyTopics(text string) domain.Metadata {
	md := domain.Metadata{}
	if tags := matchTopics(text, featureTopics, featureMatchers); tags != "" {
		md[domain.MetaFeatures] = tags
	}
	if tags := matchTopics(text, categoryTopics, categoryMatchers); tags != "" {
		md[domain.MetaCategories] = tags
	}
	if tags := matchTopics(text, deploymentTopics, deploymentMatchers); tags != "" {
		md[domain.MetaDeployment] = tags
	}
	return md
}

func matchTopics(text string, topics []topic, matchers []*regexp.Regexp) string {
	var labels []string
	for i, re := range matchers {
		if re.MatchString(text) {
			labels = append(labels, topics[i].label)
		}
	}
	return domain.JoinTags(labels)
}

// ChunkDocument splits text into chunks that each carry a copy of md.
// Empty input or a pipeline failure yields an empty slice.
func (p *DocumentProcessor) ChunkDocument(ctx context.Context, text string, md domain.Metadata) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return []domain.Chunk{}
	}
	if md == nil {
		md = domain.Metadata{}
	}

	chunks, err := p.pipeline.Process(ctx, &domain.SourceDocument{Content: text, Metadata: md})
	if err != nil {
		logger.Warn("processor: chunking %q failed: %v", md.String(domain.MetaURL), err)
		return []domain.Chunk{}
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) != "" {
			out = append(out, c)
		}
	}
	logger.Debug("processor: %d chunks from %d runes", len(out), len([]rune(text)))
	return out
}

// DocumentMetadata builds the full metadata for a document: listing metadata
// first, then product info and topics for anything still missing.
func (p *DocumentProcessor) DocumentMetadata(base domain.Metadata, text string) domain.Metadata {
	md := base.Clone()
	if md.String(domain.MetaVendor) == "" {
		if v := VendorFromURL(md.String(domain.MetaURL)); v != "" {
			md[domain.MetaVendor] = v
		}
	}
	md.Merge(p.ExtractProductInfo(text))
	md.Merge(p.ClassifyTopics(text))
	return md
}
