package collector

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

var errNotDataURI = errors.New("not a data URI")

// ParseDataURI decodes an RFC 2397 data URI of the form
// data:<mediatype>[;params][;base64],<payload>. The media type is required.
func ParseDataURI(src string) (mimeType string, data []byte, err error) {
	if len(src) < 5 || !strings.EqualFold(src[:5], "data:") {
		return "", nil, errNotDataURI
	}

	header, payload, found := strings.Cut(src[5:], ",")
	if !found {
		return "", nil, fmt.Errorf("data URI has no payload separator")
	}

	isBase64 := false
	params := strings.Split(header, ";")
	if last := params[len(params)-1]; strings.EqualFold(strings.TrimSpace(last), "base64") {
		isBase64 = true
		params = params[:len(params)-1]
	}

	mediaType := strings.TrimSpace(strings.Join(params, ";"))
	if mediaType == "" {
		return "", nil, fmt.Errorf("data URI has no media type")
	}
	mimeType, _, err = mime.ParseMediaType(mediaType)
	if err != nil {
		return "", nil, fmt.Errorf("data URI media type %q: %w", mediaType, err)
	}

	if isBase64 {
		data, err = decodeBase64(payload)
		if err != nil {
			return "", nil, fmt.Errorf("data URI payload: %w", err)
		}
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("data URI payload: %w", err)
		}
		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return "", nil, fmt.Errorf("data URI payload is empty")
	}
	return mimeType, data, nil
}

// decodeBase64 accepts padded and unpadded payloads, ignoring whitespace.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if unescaped, err := url.PathUnescape(payload); err == nil {
		payload = unescaped
	}
	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}
