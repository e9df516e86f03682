package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/domain"
	"github.com/custodia-labs/netassist/internal/core/ports/driving"
)

// Ensure RegexAnalyzer implements the interface.
var _ driving.QueryAnalyzer = (*RegexAnalyzer)(nil)

// KnownVendors lists the vendor names the analyzer recognises.
var KnownVendors = []string{
	"Cisco", "Juniper", "Arista", "Aruba", "HPE",
	"Huawei", "Fortinet", "Palo Alto", "F5", "Checkpoint",
}

type vendorPattern struct {
	name string
	re   *regexp.Regexp
}

var vendorPatterns = func() []vendorPattern {
	out := make([]vendorPattern, len(KnownVendors))
	for i, v := range KnownVendors {
		name := strings.ReplaceAll(regexp.QuoteMeta(v), " ", `\s+`)
		out[i] = vendorPattern{name: v, re: regexp.MustCompile(`(?i)\b` + name + `\b`)}
	}
	return out
}()

// productPatterns are evaluated in priority order.
var productPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bNexus\s+\d+\b`),
	regexp.MustCompile(`(?i)\bCatalyst\s+\d+\b`),
	regexp.MustCompile(`(?i)\bMX\s+\d+\b`),
	regexp.MustCompile(`(?i)\bEX\s+\d+\b`),
	regexp.MustCompile(`(?i)\bSRX\s+\d+\b`),
	regexp.MustCompile(`(?i)\bQFX\s+\d+\b`),
	regexp.MustCompile(`(?i)\bDCS-\d+\b`),
	regexp.MustCompile(`(?i)\b7\d{3}X\b`),
	regexp.MustCompile(`(?i)\bFortiGate\s+\d+\b`),
	regexp.MustCompile(`(?i)\bPA-\d+\b`),
	regexp.MustCompile(`(?i)\bCX\s+\d+\b`),
	regexp.MustCompile(`(?i)\bAOS-CX\s+\d+\.\d+\b`),
}

// intentRules are evaluated top to bottom; the first match wins.
var intentRules = []struct {
	intent domain.Intent
	re     *regexp.Regexp
}{
	{domain.IntentIntegration, regexp.MustCompile(`(?i)how\s+to\s+integrate|integrat(e|ion)`)},
	{domain.IntentConfiguration, regexp.MustCompile(`(?i)configur(e|ation)|setup|set\s+up`)},
	{domain.IntentTroubleshooting, regexp.MustCompile(`(?i)troubleshoot|problem|issue|error|not\s+working`)},
	{domain.IntentMigration, regexp.MustCompile(`(?i)migrat(e|ion)|move\s+from`)},
	{domain.IntentProductInfo, regexp.MustCompile(`(?i)features|capabilities|specifications`)},
}

var (
	fromPrefix = regexp.MustCompile(`(?i)\bfrom\s+$`)
	toPrefix   = regexp.MustCompile(`(?i)\b(to|with)\s+$`)
)

// RegexAnalyzer classifies queries with fixed pattern lists.
// It is a heuristic: intent is a retrieval hint and misclassification of
// ambiguous phrasing is expected.
type RegexAnalyzer struct{}

// NewRegexAnalyzer creates a regex analyzer.
func NewRegexAnalyzer() *RegexAnalyzer {
	return &RegexAnalyzer{}
}

// Analyze extracts vendors, products and intent from a query.
func (a *RegexAnalyzer) Analyze(query string) domain.QueryAnalysis {
	analysis := domain.QueryAnalysis{
		Intent:        domain.IntentGeneral,
		OriginalQuery: query,
	}
	analysis.SourceVendor, analysis.TargetVendor = extractVendors(query)
	analysis.SourceProduct, analysis.TargetProduct = extractProducts(query)
	analysis.Intent = classifyIntent(query)
	return analysis
}

type vendorMention struct {
	name  string
	start int
}

// vendorMentions returns the first mention of each known vendor ordered by
// position in the text.
func vendorMentions(text string) []vendorMention {
	var out []vendorMention
	for _, vp := range vendorPatterns {
		if loc := vp.re.FindStringIndex(text); loc != nil {
			out = append(out, vendorMention{name: vp.name, start: loc[0]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func firstVendorMention(text string) vendorMention {
	if m := vendorMentions(text); len(m) > 0 {
		return m[0]
	}
	return vendorMention{}
}

// extractVendors assigns source and target. A vendor preceded by "from" is
// the source and one preceded by "to" or "with" is the target; remaining
// mentions fill the empty slots left to right. Assigned slots are never
// overwritten.
func extractVendors(query string) (source, target string) {
	mentions := vendorMentions(query)
	var rest []string
	for _, m := range mentions {
		prefix := query[:m.start]
		switch {
		case source == "" && fromPrefix.MatchString(prefix):
			source = m.name
		case target == "" && toPrefix.MatchString(prefix):
			target = m.name
		default:
			rest = append(rest, m.name)
		}
	}
	for _, name := range rest {
		switch {
		case source == "":
			source = name
		case target == "":
			target = name
		}
	}
	return source, target
}

// extractProducts returns the first two distinct product matches. Each
// pattern contributes at most its first hit.
func extractProducts(query string) (source, target string) {
	for _, re := range productPatterns {
		m := re.FindString(query)
		if m == "" {
			continue
		}
		switch {
		case source == "":
			source = m
		case target == "" && !strings.EqualFold(m, source):
			target = m
		}
		if target != "" {
			break
		}
	}
	return source, target
}

func classifyIntent(query string) domain.Intent {
	for _, rule := range intentRules {
		if rule.re.MatchString(query) {
			return rule.intent
		}
	}
	return domain.IntentGeneral
}
