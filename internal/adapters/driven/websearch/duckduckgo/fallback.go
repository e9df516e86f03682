package duckduckgo

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

type portal struct {
	vendor string
	title  string
	link   string
}

// portals is the offline result set, in output order.
var portals = []portal{
	{"cisco", "Cisco Technical Documentation", "https://www.cisco.com/c/en/us/support/all-products.html"},
	{"juniper", "Juniper Networks TechLibrary", "https://www.juniper.net/documentation/"},
	{"aruba", "HPE Aruba Networking Technical Documentation", "https://arubanetworking.hpe.com/techdocs/"},
	{"arista", "Arista Product Documentation", "https://www.arista.com/en/support/product-documentation"},
	{"", "RFC Editor", "https://www.rfc-editor.org/search/rfc_search.php"},
}

// Fallback returns the offline result set for query. Portals of vendors
// named in the query come first; output depends only on its arguments.
func Fallback(query string, maxResults int) []domain.WebResult {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	lower := strings.ToLower(query)

	var named, rest []portal
	for _, p := range portals {
		if p.vendor != "" && strings.Contains(lower, p.vendor) {
			named = append(named, p)
		} else {
			rest = append(rest, p)
		}
	}

	out := make([]domain.WebResult, 0, maxResults)
	for _, p := range append(named, rest...) {
		if len(out) == maxResults {
			break
		}
		out = append(out, domain.WebResult{
			Title:   p.title,
			Snippet: fmt.Sprintf("Offline result: search %s for %q.", p.title, strings.TrimSpace(query)),
			Link:    p.link,
		})
	}
	return out
}
