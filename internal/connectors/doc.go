// Package connectors holds the adapters that pull documents from external
// sources. Each subpackage implements driven.DocScraper for one family of
// sites: vendordocs lists and fetches vendor release notes, configuration
// guides and community posts.
package connectors
