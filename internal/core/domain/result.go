package domain

// ResultSource discriminates where a result set came from.
type ResultSource string

// Result sources.
const (
	ResultSourceVector ResultSource = "vector"
	ResultSourceWeb    ResultSource = "web"
)

// WebDistance is the fixed distance assigned to web hits.
const WebDistance = 1.0

// Hit is a single ranked document.
type Hit struct {
	ID       string   `json:"id"`
	Document string   `json:"document"`
	Metadata Metadata `json:"metadata"`
	Distance float64  `json:"distance"`
}

// ResultSet is an ordered list of hits from one collection or from web search.
// Hits are ordered by ascending distance.
type ResultSet struct {
	Collection string       `json:"collection"`
	Source     ResultSource `json:"source"`
	Hits       []Hit        `json:"hits"`
}

// EmptyResultSet returns a result set with no hits and non-nil slices.
func EmptyResultSet(collection string) ResultSet {
	return ResultSet{Collection: collection, Source: ResultSourceVector, Hits: []Hit{}}
}

// Len returns the number of hits.
func (r ResultSet) Len() int {
	return len(r.Hits)
}

// Documents returns hit texts in rank order. Never nil.
func (r ResultSet) Documents() []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Document
	}
	return out
}

// Metadatas returns hit metadata in rank order. Never nil.
func (r ResultSet) Metadatas() []Metadata {
	out := make([]Metadata, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Metadata
	}
	return out
}

// Distances returns hit distances in rank order. Never nil.
func (r ResultSet) Distances() []float64 {
	out := make([]float64, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.Distance
	}
	return out
}

// IDs returns hit identifiers in rank order. Never nil.
func (r ResultSet) IDs() []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.ID
	}
	return out
}

// DistinctDocuments counts unique hit IDs across result sets.
func DistinctDocuments(sets []ResultSet) int {
	seen := make(map[string]struct{})
	for _, s := range sets {
		for _, h := range s.Hits {
			seen[string(s.Source)+":"+h.ID] = struct{}{}
		}
	}
	return len(seen)
}

// WebResult is one hit from the web search collaborator.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// ApologyMessage is returned to users when answering fails.
const ApologyMessage = "I encountered an error while processing your request. " +
	"Please try again or rephrase your question."

// AskRequest is a user question.
type AskRequest struct {
	Query           string
	IncludeTopology bool
}

// Answer is the assistant's reply.
type Answer struct {
	Response      string         `json:"response"`
	Analysis      *QueryAnalysis `json:"analysis,omitempty"`
	Topology      string         `json:"topology,omitempty"`
	UsedWebSearch bool           `json:"used_web_search"`
	Degraded      bool           `json:"degraded"`
}
