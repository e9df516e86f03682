package vendordocs

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

// untitled names links with neither text nor a title attribute.
const untitled = "Untitled Document"

var arubaVersion = regexp.MustCompile(`AOS-CX\s+(\d+\.\d+)`)

// parseCiscoListing collects links whose href contains marker. Dates come
// from the dateColumn cell of the enclosing table row.
func parseCiscoListing(root *html.Node, base *url.URL, marker string) []domain.ScrapedDoc {
	var docs []domain.ScrapedDoc
	walk(root, func(n *html.Node) {
		if !isElement(n, "a") {
			return
		}
		href := attr(n, "href")
		if href == "" || !strings.Contains(href, marker) {
			return
		}
		title := textOf(n)
		link := resolve(base, href)
		if title == "" || link == "" {
			return
		}

		date := domain.UnknownValue
		if row := ancestor(n, "tr"); row != nil {
			cell := find(row, func(c *html.Node) bool {
				return isElement(c, "td") && hasClass(c, "dateColumn")
			})
			if cell != nil {
				if d := textOf(cell); d != "" {
					date = d
				}
			}
		}
		docs = append(docs, domain.ScrapedDoc{Title: title, URL: link, Date: date})
	})
	return dedupe(docs)
}

// parseArubaIndex collects PDF and HTML document links. PDF entries carry
// the AOS-CX release found in the link or its parent, which doubles as the
// document date since the index publishes none.
func parseArubaIndex(root *html.Node, base *url.URL) []domain.ScrapedDoc {
	var pdfs, pages []domain.ScrapedDoc
	walk(root, func(n *html.Node) {
		if !isElement(n, "a") {
			return
		}
		href := attr(n, "href")
		lower := strings.ToLower(strings.SplitN(href, "#", 2)[0])
		isPDF := strings.HasSuffix(lower, ".pdf")
		if !isPDF && !strings.HasSuffix(lower, ".htm") && !strings.HasSuffix(lower, ".html") {
			return
		}
		link := resolve(base, href)
		if link == "" {
			return
		}

		title := textOf(n)
		if title == "" {
			title = strings.TrimSpace(attr(n, "title"))
		}
		if title == "" {
			title = untitled
		}

		if !isPDF {
			pages = append(pages, domain.ScrapedDoc{
				Title:    title,
				URL:      link,
				Date:     domain.UnknownValue,
				Metadata: domain.Metadata{domain.MetaType: "html"},
			})
			return
		}

		version := domain.UnknownValue
		if m := arubaVersion.FindStringSubmatch(title); m != nil {
			version = m[1]
		} else if n.Parent != nil {
			if m := arubaVersion.FindStringSubmatch(textOf(n.Parent)); m != nil {
				version = m[1]
			}
		}
		pdfs = append(pdfs, domain.ScrapedDoc{
			Title:    title,
			URL:      link,
			Date:     version,
			Metadata: domain.Metadata{domain.MetaRelease: version, domain.MetaType: "pdf"},
		})
	})
	return dedupe(append(pdfs, pages...))
}

// parseHackerNews collects front-page stories. The story age from the
// subtext row is used as its date.
func parseHackerNews(root *html.Node, base *url.URL) []domain.ScrapedDoc {
	var docs []domain.ScrapedDoc
	walk(root, func(n *html.Node) {
		if !isElement(n, "tr") || !hasClass(n, "athing") {
			return
		}
		link := find(n, func(c *html.Node) bool {
			return isElement(c, "a") && c.Parent != nil &&
				isElement(c.Parent, "span") && hasClass(c.Parent, "titleline")
		})
		if link == nil {
			return
		}
		title := textOf(link)
		href := resolve(base, attr(link, "href"))
		if title == "" || href == "" {
			return
		}

		date := domain.UnknownValue
		if sub := nextElement(n); sub != nil {
			age := find(sub, func(c *html.Node) bool { return isElement(c, "span") && hasClass(c, "age") })
			if age != nil {
				if t := strings.Fields(attr(age, "title")); len(t) > 0 {
					date = t[0]
				}
			}
		}
		md := domain.Metadata{}
		if id := attr(n, "id"); id != "" {
			md["item_id"] = id
		}
		docs = append(docs, domain.ScrapedDoc{Title: title, URL: href, Date: date, Metadata: md})
	})
	return dedupe(docs)
}

// --- HTML helpers ---

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// find returns the first descendant of n matching match, depth first.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, tag) {
			return p
		}
	}
	return nil
}

func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textOf returns the whitespace-collapsed text content of n.
func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

// resolve joins href against the listing URL, dropping non-HTTP links.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := ref
	if base != nil {
		abs = base.ResolveReference(ref)
	}
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}

// dedupe keeps the first document per URL.
func dedupe(docs []domain.ScrapedDoc) []domain.ScrapedDoc {
	seen := make(map[string]bool, len(docs))
	out := docs[:0]
	for _, d := range docs {
		if seen[d.URL] {
			continue
		}
		seen[d.URL] = true
		out = append(out, d)
	}
	return out
}
