package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/miru/internal/logging"
)

// capturePageJS serializes the rendered element tree: per element the tag,
// attributes, computed-style subset, bounding box, collapsed text content,
// truncated outer HTML and click-handler presence. Nodes are emitted flat in
// document order with parent indexes so the Go side can rebuild the tree.
// The two %d verbs are the text and markup caps.
const capturePageJS = `(() => {
	const maxText = %d;
	const maxMarkup = %d;
	const nodes = [];
	const walk = (el, parent) => {
		const cs = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		const attrs = {};
		for (const a of el.attributes) attrs[a.name.toLowerCase()] = a.value;
		nodes.push({
			tag: el.tagName.toLowerCase(),
			parent: parent,
			attrs: attrs,
			style: {
				display: cs.display,
				visibility: cs.visibility,
				opacity: cs.opacity,
				color: cs.color,
				backgroundColor: cs.backgroundColor,
				fontSize: parseFloat(cs.fontSize) || 0,
				fontWeight: parseFloat(cs.fontWeight) || 400,
				pointerEvents: cs.pointerEvents
			},
			box: [rect.x, rect.y, rect.width, rect.height],
			text: (el.textContent || '').trim().replace(/\s+/g, ' ').slice(0, maxText),
			markup: el.outerHTML.slice(0, maxMarkup),
			clickable: el.onclick !== null || el.hasAttribute('onclick')
		});
		const idx = nodes.length - 1;
		for (const child of el.children) walk(child, idx);
	};
	walk(document.documentElement, -1);
	return {
		url: window.location.href,
		viewport: {width: window.innerWidth, height: window.innerHeight},
		nodes: nodes
	};
})()`

// ChromedpSource captures pages through a headless browser, so the snapshot
// carries real computed styles and layout.
type ChromedpSource struct {
	cfg    *Config
	logger logging.Logger
}

// NewChromedpSource creates a browser-backed source. The browser is started
// per capture and torn down with it.
func NewChromedpSource(cfg *Config, logger logging.Logger) (*ChromedpSource, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ChromedpSource{
		cfg:    cfg.withDefaults(),
		logger: logger.With(logging.Field{Key: "component", Value: "snapshot.chromedp"}),
	}, nil
}

// Capture navigates to the page, waits for the network to go idle and
// evaluates the capture script.
func (s *ChromedpSource) Capture(ctx context.Context, pageURL string) (*Document, error) {
	if s.cfg.CaptureTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CaptureTimeout)
		defer cancel()
	}

	allocCtx := ctx
	if !s.cfg.Headless {
		var cancel context.CancelFunc
		allocCtx, cancel = chromedp.NewExecAllocator(ctx,
			append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", false))...)
		defer cancel()
	}

	bctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	idle := waitNetworkIdle(bctx, s.cfg.IdleAfter)

	if err := chromedp.Run(bctx,
		network.Enable(),
		chromedp.EmulateViewport(int64(s.cfg.ViewportWidth), int64(s.cfg.ViewportHeight)),
		chromedp.Navigate(pageURL),
	); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	select {
	case <-idle:
	case <-bctx.Done():
		return nil, fmt.Errorf("capture %s: %w", pageURL, bctx.Err())
	}

	var raw json.RawMessage
	script := fmt.Sprintf(capturePageJS, s.cfg.MaxTextLength, s.cfg.MaxMarkupLength)
	if err := chromedp.Run(bctx, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, fmt.Errorf("capture %s: %w", pageURL, err)
	}

	doc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", pageURL, err)
	}
	if doc.URL == "" {
		doc.URL = pageURL
	}

	s.logger.Info("captured browser snapshot",
		logging.Field{Key: "url", Value: doc.URL},
		logging.Field{Key: "elements", Value: doc.Len()})
	return doc, nil
}

func (s *ChromedpSource) Close() error {
	return nil
}

// waitNetworkIdle returns a channel that closes once no network request has
// been in flight for idleAfter. The returned channel never closes if the
// page keeps polling, so callers must also watch their context.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					close(idleChan)
				})
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) == 0 {
				startTimer()
			}
		}
	})

	startTimer()
	return idleChan
}
