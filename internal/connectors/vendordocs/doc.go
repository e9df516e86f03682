// Package vendordocs scrapes network vendor documentation portals.
//
// Listing pages are parsed per document type: Cisco release-note and
// configuration-guide tables, the Aruba AOS-CX PDF index, the Hacker News
// front page, and single pages. Documents are downloaded through a paced,
// retrying and caching fetcher and reduced to text by the HTML and PDF
// normalisers.
package vendordocs
