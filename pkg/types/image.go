package types

import (
	"encoding/base64"
	"fmt"
)

// ImageRecord is one encoded image awaiting prompt generation.
// Records are produced by the collector and never modified afterwards.
type ImageRecord struct {
	// Src is the origin URL or the data URI the image was read from.
	Src string `json:"src"`

	// Data is the decoded image payload.
	Data []byte `json:"-"`

	// MimeType is the payload's media type, e.g. "image/png".
	MimeType string `json:"mime_type"`
}

// Base64 returns the payload encoded with standard base64.
func (r ImageRecord) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}

// DataURI returns the payload as a base64 data URI suitable for vision APIs.
func (r ImageRecord) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", r.MimeType, r.Base64())
}

// Candidate is an <img> element found in a document before it has been encoded.
type Candidate struct {
	// Src is the absolute image source (URL or data URI).
	Src string

	// Width and Height are the rendered dimensions in CSS pixels.
	// Zero means the dimension is unknown and must be probed from the payload.
	Width  int
	Height int
}

// HasDimensions reports whether both dimensions are known.
func (c Candidate) HasDimensions() bool {
	return c.Width > 0 && c.Height > 0
}
