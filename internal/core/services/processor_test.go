package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/netassist/internal/core/domain"
)

type failingPipeline struct{}

func (failingPipeline) Process(context.Context, *domain.SourceDocument) ([]domain.Chunk, error) {
	return nil, errBoom
}

func TestVendorFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.cisco.com/c/en/us/td/docs/switches/nexus.html", "cisco"},
		{"https://www.juniper.net/documentation/us/en/software/junos/", "juniper"},
		{"https://arubanetworking.hpe.com/techdocs/AOS-CX/10.13/PDF/rn.pdf", "aruba"},
		{"https://www.arista.com/en/um-eos", "arista"},
		{"https://news.ycombinator.com/item?id=1", "hackernews"},
		{"https://example.org/page", ""},
		{"not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, VendorFromURL(tt.url))
		})
	}
}

func TestDocumentProcessor_ExtractProductInfo(t *testing.T) {
	p := NewDocumentProcessor(nil)

	md := p.ExtractProductInfo("Cisco Nexus 9000 Series NX-OS Release 10.2.3 Notes")

	assert.Equal(t, "cisco", md[domain.MetaVendor])
	assert.Equal(t, "Nexus: Nexus 9000", md[domain.MetaProductLine])
	assert.Equal(t, "10.2.3", md[domain.MetaRelease])
}

func TestDocumentProcessor_ExtractProductInfo_FirstVendorWins(t *testing.T) {
	p := NewDocumentProcessor(nil)

	md := p.ExtractProductInfo("Juniper EX 4300 replacing a Cisco Catalyst 9300")

	assert.Equal(t, "juniper", md[domain.MetaVendor])
	assert.Equal(t, "Catalyst: Catalyst 9300", md[domain.MetaProductLine])
	assert.NotContains(t, md, domain.MetaRelease)
}

func TestDocumentProcessor_ExtractProductInfo_Empty(t *testing.T) {
	p := NewDocumentProcessor(nil)

	assert.Empty(t, p.ExtractProductInfo(""))
	assert.Empty(t, p.ExtractProductInfo("nothing about networks here"))
}

func TestDocumentProcessor_ClassifyTopics(t *testing.T) {
	p := NewDocumentProcessor(nil)

	md := p.ClassifyTopics("Configure BGP routing on the chassis of a campus VPN tunnel")

	assert.Equal(t, "Hardware", md[domain.MetaFeatures])
	assert.Equal(t, "Routing, VPN", md[domain.MetaCategories])
	assert.Equal(t, "Campus", md[domain.MetaDeployment])
}

func TestDocumentProcessor_ClassifyTopics_WordStart(t *testing.T) {
	p := NewDocumentProcessor(nil)

	md := p.ClassifyTopics("most switches support this")

	assert.NotContains(t, md, domain.MetaFeatures)
	assert.Equal(t, "Switching", md[domain.MetaCategories])
	assert.NotContains(t, md, domain.MetaDeployment)
}

func TestDocumentProcessor_ChunkDocument(t *testing.T) {
	p := NewDocumentProcessor(testPipeline(t, 120, 20))
	text := strings.Repeat("OSPF areas reduce the size of the link state database. ", 10)

	chunks := p.ChunkDocument(context.Background(), text, domain.Metadata{domain.MetaVendor: "Cisco"})

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(c.Text))
		assert.LessOrEqual(t, len([]rune(c.Text)), 120)
		assert.Equal(t, "cisco", c.Metadata[domain.MetaVendor])
		assert.Equal(t, i, c.Metadata[domain.MetaChunkIndex])
	}
}

func TestDocumentProcessor_ChunkDocument_EmptyText(t *testing.T) {
	p := NewDocumentProcessor(testPipeline(t, 120, 20))

	chunks := p.ChunkDocument(context.Background(), "   \n ", nil)

	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestDocumentProcessor_ChunkDocument_PipelineFailure(t *testing.T) {
	p := NewDocumentProcessor(failingPipeline{})

	chunks := p.ChunkDocument(context.Background(), "some text", nil)

	assert.NotNil(t, chunks)
	assert.Empty(t, chunks)
}

func TestDocumentProcessor_DocumentMetadata(t *testing.T) {
	p := NewDocumentProcessor(nil)
	base := domain.Metadata{
		domain.MetaURL:     "https://www.cisco.com/c/en/us/td/docs/rn.html",
		domain.MetaRelease: "9.3(1)",
	}

	md := p.DocumentMetadata(base, "Nexus 9000 Release 10.1 switch VLAN guide")

	assert.Equal(t, "cisco", md[domain.MetaVendor])
	assert.Equal(t, "9.3(1)", md[domain.MetaRelease], "listing metadata wins over extracted values")
	assert.Equal(t, "Nexus: Nexus 9000", md[domain.MetaProductLine])
	assert.Equal(t, "Switching", md[domain.MetaCategories])
	assert.NotContains(t, base, domain.MetaVendor, "base must not be modified")
}
