// Package normalisers provides implementations of the Normaliser interface
// for the document formats vendor documentation is published in. Each
// normaliser knows how to extract text content from a specific MIME type.
//
// Normalisers are selected by MIME type with Select.
package normalisers

import (
	"sort"
	"strings"

	"github.com/custodia-labs/netassist/internal/core/ports/driven"
)

// Select returns the highest-priority normaliser for the MIME type, or nil.
// Parameters after ';' (charset etc.) are ignored.
func Select(mimeType string, candidates []driven.Normaliser) driven.Normaliser {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))

	var matches []driven.Normaliser
	for _, n := range candidates {
		for _, supported := range n.SupportedMIMETypes() {
			if supported == mt {
				matches = append(matches, n)
				break
			}
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches[0]
}
