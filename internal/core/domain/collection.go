package domain

import (
	"strings"
	"time"
)

// Logical collection names.
const (
	CollectionAllVendorDocs = "all_vendor_docs"
	CollectionErrorCodes    = "error_codes"
	CollectionHackerNews    = "hacker_news_posts"
	CollectionNetworkDocs   = "network_docs"
	CollectionDefault       = "default"

	// CollectionWebSearch names the synthetic result set built from web hits.
	CollectionWebSearch = "web_search"
)

// Collection type labels stored in collection metadata.
const (
	CollectionTypeConsolidated = "consolidated"
	CollectionTypeErrorCodes   = "error_codes"
	CollectionTypeNews         = "news"
	CollectionTypeVendor       = "vendor"
	CollectionTypeGeneral      = "general"
)

// CollectionInfo describes a physical collection in the vector store.
type CollectionInfo struct {
	// Name is the physical collection name.
	Name string

	// Type is a label such as "consolidated" or "vendor".
	Type string

	// Vendor is set for per-vendor collections.
	Vendor string

	// Dimension is the embedding size fixed at creation time.
	Dimension int

	// Model is the embedding model active when the collection was created.
	Model string

	// CreatedAt is when the collection was first created.
	CreatedAt time.Time
}

// CollectionSpec declares a collection the adapter manages.
type CollectionSpec struct {
	Name   string
	Type   string
	Vendor string
}

// CollectionStats summarises a collection for operators.
type CollectionStats struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Documents int    `json:"documents"`
	Dimension int    `json:"dimension"`
	Model     string `json:"model"`
}

// CollectionLayout selects how vendor keys map to physical collections.
type CollectionLayout string

// Available layouts.
const (
	// LayoutShared stores every vendor in all_vendor_docs, tagged by vendor.
	LayoutShared CollectionLayout = "shared"

	// LayoutPerVendor stores each vendor in its own <vendor>_docs collection.
	LayoutPerVendor CollectionLayout = "per_vendor"
)

// IsValid returns true if the layout is recognised.
func (l CollectionLayout) IsValid() bool {
	return l == LayoutShared || l == LayoutPerVendor
}

// FallbackCollections is the order tried when a query names an unknown collection.
var FallbackCollections = []string{
	CollectionAllVendorDocs,
	CollectionNetworkDocs,
	CollectionDefault,
}

// legacyVendors have a dedicated collection created at start-up.
var legacyVendors = []string{"cisco", "juniper", "aruba"}

// RoutingPolicy resolves logical keys to physical collection names.
// The routing table is the only difference between layouts.
type RoutingPolicy struct {
	Layout CollectionLayout
}

// NewRoutingPolicy returns a policy for the layout, defaulting to shared.
func NewRoutingPolicy(layout CollectionLayout) RoutingPolicy {
	if !layout.IsValid() {
		layout = LayoutShared
	}
	return RoutingPolicy{Layout: layout}
}

// reserved keys always route to their own collection.
var reservedCollections = map[string]struct{}{
	CollectionErrorCodes:  {},
	CollectionHackerNews:  {},
	CollectionNetworkDocs: {},
	CollectionDefault:     {},
}

// Resolve maps a logical key (vendor name, category or collection name) to
// the physical collection that stores it.
func (p RoutingPolicy) Resolve(key string) string {
	k := NormaliseKey(key)
	if k == "" {
		return CollectionAllVendorDocs
	}
	if _, ok := reservedCollections[k]; ok {
		return k
	}
	if k == CollectionAllVendorDocs || isLegacyCollection(k) {
		return k
	}
	if p.Layout == LayoutPerVendor {
		if strings.HasSuffix(k, "_docs") {
			return k
		}
		return k + "_docs"
	}
	return CollectionAllVendorDocs
}

// isLegacyCollection reports whether name is a per-vendor collection
// created at start-up in every layout.
func isLegacyCollection(name string) bool {
	for _, v := range legacyVendors {
		if name == v+"_docs" {
			return true
		}
	}
	return false
}

// Specs returns the collections created at start-up.
func (p RoutingPolicy) Specs() []CollectionSpec {
	specs := []CollectionSpec{
		{Name: CollectionAllVendorDocs, Type: CollectionTypeConsolidated},
		{Name: CollectionErrorCodes, Type: CollectionTypeErrorCodes},
		{Name: CollectionHackerNews, Type: CollectionTypeNews},
	}
	for _, v := range legacyVendors {
		specs = append(specs, CollectionSpec{Name: v + "_docs", Type: CollectionTypeVendor, Vendor: v})
	}
	specs = append(specs,
		CollectionSpec{Name: CollectionNetworkDocs, Type: CollectionTypeGeneral},
		CollectionSpec{Name: CollectionDefault, Type: CollectionTypeGeneral},
	)
	return specs
}

// NormaliseKey lower-cases a key and replaces spaces with underscores.
func NormaliseKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(k), "_")
}
