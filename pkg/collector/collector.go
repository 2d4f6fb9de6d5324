// Package collector finds qualifying images on a page and encodes them into
// ImageRecords for prompt generation.
//
// A Source lists the page's <img> candidates. The Collector filters them,
// then fetches (remote URLs) or decodes (data URIs) every survivor
// concurrently. Images that fail any step are logged and left out; a single
// image never fails the whole collection.
package collector

import (
	"context"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/entrhq/promptlens/pkg/logging"
	"github.com/entrhq/promptlens/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of images encoded at once.
const DefaultConcurrency = 8

// Source lists the image candidates of one page.
type Source interface {
	Candidates(ctx context.Context) ([]types.Candidate, error)
}

// Option configures a Collector.
type Option func(*Collector)

// WithFetcher sets the fetcher used for remote images.
func WithFetcher(f *Fetcher) Option {
	return func(c *Collector) {
		c.fetcher = f
	}
}

// WithConcurrency sets how many images are encoded at once.
func WithConcurrency(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger for dropped images.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Collector turns page candidates into encoded images.
type Collector struct {
	fetcher     *Fetcher
	concurrency int
	logger      *logging.Logger
}

// New creates a collector.
func New(opts ...Option) *Collector {
	c := &Collector{
		concurrency: DefaultConcurrency,
		logger:      logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewFetcher(nil)
	}
	return c
}

// Collect lists the source's candidates and encodes every qualifying one.
// Only a failure of the source itself is returned, as a channel error; the
// result may be empty. Records keep the candidates' document order.
func (c *Collector) Collect(ctx context.Context, source Source) ([]types.ImageRecord, error) {
	candidates, err := source.Candidates(ctx)
	if err != nil {
		return nil, types.NewChannelError("collector.Collect", err)
	}

	qualifying := make([]types.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if Qualifies(candidate) {
			qualifying = append(qualifying, candidate)
		} else {
			c.logger.Debugf("skipping %s (%dx%d)", truncateSrc(candidate.Src), candidate.Width, candidate.Height)
		}
	}

	return c.Encode(ctx, qualifying), nil
}

// Encode fetches or decodes each candidate concurrently. Failed candidates are
// omitted; siblings are never cancelled by a failure.
func (c *Collector) Encode(ctx context.Context, candidates []types.Candidate) []types.ImageRecord {
	slots := make([]*types.ImageRecord, len(candidates))
	var dropped atomic.Int32

	// Tasks always return nil so one failure cannot cancel the group
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, candidate := range candidates {
		g.Go(func() error {
			record, err := c.encodeOne(ctx, candidate)
			if err != nil {
				dropped.Add(1)
				c.logger.Warnf("%v", err)
				return nil
			}
			slots[i] = &record
			return nil
		})
	}
	_ = g.Wait()

	records := make([]types.ImageRecord, 0, len(candidates))
	for _, record := range slots {
		if record != nil {
			records = append(records, *record)
		}
	}

	c.logger.Infof("collected %d of %d candidate images (%d dropped)", len(records), len(candidates), dropped.Load())
	return records
}

func (c *Collector) encodeOne(ctx context.Context, candidate types.Candidate) (types.ImageRecord, error) {
	const op = "collector.encode"

	var (
		data     []byte
		mimeType string
		err      error
	)

	if strings.HasPrefix(strings.ToLower(candidate.Src), "data:") {
		mimeType, data, err = ParseDataURI(candidate.Src)
	} else {
		data, mimeType, err = c.fetcher.Fetch(ctx, candidate.Src)
	}
	if err != nil {
		return types.ImageRecord{}, types.NewFetchError(op, truncateSrc(candidate.Src), err)
	}

	if !strings.HasPrefix(mimeType, "image/") {
		return types.ImageRecord{}, types.NewFetchError(op, truncateSrc(candidate.Src), errUnsupported(mimeType))
	}
	if mimeType == svgMimeType {
		return types.ImageRecord{}, types.NewFetchError(op, truncateSrc(candidate.Src), errUnsupported(mimeType))
	}

	if !candidate.HasDimensions() {
		width, height, _, err := probeDimensions(data)
		if err != nil {
			return types.ImageRecord{}, types.NewFetchError(op, truncateSrc(candidate.Src), err)
		}
		if !largeEnough(width, height) {
			return types.ImageRecord{}, types.NewFetchError(op, truncateSrc(candidate.Src), errTooSmall(width, height))
		}
	}

	return types.ImageRecord{
		Src:      candidate.Src,
		Data:     data,
		MimeType: mimeType,
	}, nil
}

// truncateSrc keeps data URIs readable in logs.
func truncateSrc(src string) string {
	const maxLen = 80
	if len(src) <= maxLen {
		return src
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(src[cut]) {
		cut--
	}
	return src[:cut] + "..."
}
