package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

const resultsHTML = `<html><body><div id="links">
<div class="result results_links result--ad">
  <h2 class="result__title"><a class="result__a" href="https://ads.example.com/">Buy switches</a></h2>
</div>
<div class="result results_links web-result">
  <h2 class="result__title"><a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.cisco.com%2Fvxlan&amp;rut=abc">Cisco <b>VXLAN</b> Guide</a></h2>
  <a class="result__snippet" href="//duckduckgo.com/l/?uddg=x">Configure <b>VXLAN</b> EVPN on Nexus.</a>
</div>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="https://www.arubanetworks.com/evpn">Aruba EVPN</a></h2>
  <div class="result__snippet">AOS-CX EVPN overview.</div>
</div>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="https://example.com/three">Third</a></h2>
</div>
<div class="result"><span>no link</span></div>
</div></body></html>`

func TestParseResults(t *testing.T) {
	results, err := ParseResults([]byte(resultsHTML))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.WebResult{
		Title:   "Cisco VXLAN Guide",
		Snippet: "Configure VXLAN EVPN on Nexus.",
		Link:    "https://www.cisco.com/vxlan",
	}, results[0])
	assert.Equal(t, "https://www.arubanetworks.com/evpn", results[1].Link)
	assert.Equal(t, "AOS-CX EVPN overview.", results[1].Snippet)
	assert.Empty(t, results[2].Snippet)
}

func TestUnwrapLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%3Fb%3D1", "https://example.com/a?b=1"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"javascript:void(0)", ""},
		{"/relative", ""},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.want, unwrapLink(tt.href))
		})
	}
}

func TestSearcher_Search(t *testing.T) {
	var query, userAgent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query().Get("q"))
		userAgent.Store(r.UserAgent())
		_, _ = w.Write([]byte(resultsHTML))
	}))
	defer srv.Close()

	s := New(domain.WebSearchSettings{Endpoint: srv.URL, MaxResults: 2}, WithUserAgent("netassist-test"))
	results := s.Search(context.Background(), "cisco vxlan")

	require.Len(t, results, 2)
	assert.Equal(t, "Cisco VXLAN Guide", results[0].Title)
	assert.Equal(t, "cisco vxlan", query.Load())
	assert.Equal(t, "netassist-test", userAgent.Load())
}

func TestSearcher_NoResultsIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="no-results">No results.</div></body></html>`))
	}))
	defer srv.Close()

	s := New(domain.WebSearchSettings{Endpoint: srv.URL})
	assert.Empty(t, s.Search(context.Background(), "zzzz"))
}

func TestSearcher_FallsBackOnError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"server error", http.StatusInternalServerError},
		{"blocked", http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			s := New(domain.WebSearchSettings{Endpoint: srv.URL, MaxResults: 3})
			results := s.Search(context.Background(), "aruba cx 6300 vsx")
			assert.Equal(t, Fallback("aruba cx 6300 vsx", 3), results)
		})
	}
}

func TestSearcher_FallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	s := New(domain.WebSearchSettings{Endpoint: endpoint, Timeout: domain.Duration(time.Second)})
	results := s.Search(context.Background(), "juniper mx")
	require.NotEmpty(t, results)
	assert.Equal(t, "Juniper Networks TechLibrary", results[0].Title)
}

func TestSearcher_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	st := BreakerSettings()
	st.Timeout = time.Hour
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 2 }
	s := New(domain.WebSearchSettings{Endpoint: srv.URL}, WithBreakerSettings(st))

	for range 4 {
		assert.NotEmpty(t, s.Search(context.Background(), "bgp"))
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())
	assert.Equal(t, int32(2), hits.Load())
}

func TestFallback(t *testing.T) {
	t.Run("named vendors first", func(t *testing.T) {
		results := Fallback("Migrate from Cisco to Aruba", 5)
		require.Len(t, results, 5)
		assert.Equal(t, "Cisco Technical Documentation", results[0].Title)
		assert.Equal(t, "HPE Aruba Networking Technical Documentation", results[1].Title)
		assert.Equal(t, "Juniper Networks TechLibrary", results[2].Title)
		assert.Contains(t, results[0].Snippet, `"Migrate from Cisco to Aruba"`)
	})

	t.Run("capped", func(t *testing.T) {
		assert.Len(t, Fallback("ospf", 2), 2)
	})

	t.Run("default cap", func(t *testing.T) {
		assert.Len(t, Fallback("ospf", 0), DefaultMaxResults)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Fallback("juniper evpn", 3), Fallback("juniper evpn", 3))
	})
}
