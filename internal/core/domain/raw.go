package domain

// RawDocument represents fetched bytes before normalisation.
type RawDocument struct {
	// URI is the original location (URL or file path).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains listing-level key-value pairs.
	Metadata map[string]any
}
