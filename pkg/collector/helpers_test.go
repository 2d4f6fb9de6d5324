package collector

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entrhq/promptlens/pkg/types"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func pngDataURI(t *testing.T, width, height int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, width, height))
}

// imageServer serves fixed payloads by path; unknown paths get 404.
type imageServer struct {
	*httptest.Server
	payloads map[string][]byte
	types    map[string]string
}

func newImageServer(t *testing.T) *imageServer {
	t.Helper()

	s := &imageServer{payloads: map[string][]byte{}, types: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if ct, ok := s.types[r.URL.Path]; ok {
			w.Header()["Content-Type"] = []string{ct}
		} else {
			// Stop net/http from sniffing a type on our behalf
			w.Header()["Content-Type"] = nil
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *imageServer) add(path, contentType string, data []byte) string {
	s.payloads[path] = data
	if contentType != "" {
		s.types[path] = contentType
	}
	return s.URL + path
}

type staticSource struct {
	candidates []types.Candidate
	err        error
}

func (s staticSource) Candidates(context.Context) ([]types.Candidate, error) {
	return s.candidates, s.err
}
