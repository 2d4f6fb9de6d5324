package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/promptlens/pkg/types"
)

// ActionScrapeImages is the only action a page channel understands.
const ActionScrapeImages = "scrapeImages"

// DefaultScrapeDelay lets late images finish loading before the page is scanned.
const DefaultScrapeDelay = 500 * time.Millisecond

// Request is a message sent to a page.
type Request struct {
	Action string `json:"action"`
}

// Response carries the images collected from a page.
type Response struct {
	Images []types.ImageRecord `json:"images"`
}

// Channel answers requests for one page by running the collector on its source.
type Channel struct {
	collector *Collector
	source    Source
	delay     time.Duration
}

// NewChannel connects a collector to a page source.
func NewChannel(collector *Collector, source Source) *Channel {
	return &Channel{
		collector: collector,
		source:    source,
		delay:     DefaultScrapeDelay,
	}
}

// SetDelay changes the wait before scanning. Zero disables it.
func (ch *Channel) SetDelay(d time.Duration) {
	ch.delay = d
}

// Send handles a request. An unreachable page, a cancelled context or an
// unknown action is reported as a channel error.
func (ch *Channel) Send(ctx context.Context, req Request) (Response, error) {
	if req.Action != ActionScrapeImages {
		return Response{}, types.NewChannelError("collector.Channel.Send", fmt.Errorf("unknown action %q", req.Action))
	}

	if ch.delay > 0 {
		timer := time.NewTimer(ch.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return Response{}, types.NewChannelError("collector.Channel.Send", ctx.Err())
		}
	}

	images, err := ch.collector.Collect(ctx, ch.source)
	if err != nil {
		return Response{}, err
	}
	return Response{Images: images}, nil
}

// ScrapeImages is Send with ActionScrapeImages.
func (ch *Channel) ScrapeImages(ctx context.Context) ([]types.ImageRecord, error) {
	resp, err := ch.Send(ctx, Request{Action: ActionScrapeImages})
	if err != nil {
		return nil, err
	}
	return resp.Images, nil
}
