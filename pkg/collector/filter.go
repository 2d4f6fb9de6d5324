package collector

import (
	"net/url"
	"path"
	"strings"

	"github.com/entrhq/promptlens/pkg/types"
)

// MinDimension is the size an image must exceed on both axes to be collected.
const MinDimension = 50

const svgMimeType = "image/svg+xml"

// IsSVG reports whether src names an SVG image: a path ending in .svg (any
// case, query and fragment ignored) or an SVG data URI.
func IsSVG(src string) bool {
	lower := strings.ToLower(strings.TrimSpace(src))
	if strings.HasPrefix(lower, "data:") {
		return strings.HasPrefix(lower, "data:"+svgMimeType)
	}

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	return path.Ext(p) == ".svg"
}

// Qualifies reports whether a candidate may be collected before its payload is
// known: it has a source, is not SVG, and any known dimension exceeds
// MinDimension.
func Qualifies(c types.Candidate) bool {
	if strings.TrimSpace(c.Src) == "" || IsSVG(c.Src) {
		return false
	}
	if c.Width > 0 && c.Width <= MinDimension {
		return false
	}
	if c.Height > 0 && c.Height <= MinDimension {
		return false
	}
	return true
}

// largeEnough applies the size rule to dimensions read from a payload.
func largeEnough(width, height int) bool {
	return width > MinDimension && height > MinDimension
}
