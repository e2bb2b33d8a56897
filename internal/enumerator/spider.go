// Package enumerator discovers the same-origin pages of a site so a site
// audit knows what to visit.
package enumerator

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/utils"
	"github.com/raysh454/miru/internal/webclient"
)

// Spider walks a site breadth-first from a seed URL, collecting every
// same-origin page within the configured depth and page caps.
type Spider struct {
	config *Config
	client webclient.WebClient
	logger logging.Logger
}

// Ensure Spider implements Enumerator at compile-time.
var _ Enumerator = (*Spider)(nil)

// spiderHelper holds the state of one crawl.
type spiderHelper struct {
	spider  *Spider
	root    *utils.URLTools
	depth   map[string]int
	results []string
}

// NewSpider creates a Spider fetching pages through the given client.
func NewSpider(cfg *Config, client webclient.WebClient, logger logging.Logger) *Spider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Spider{
		config: cfg.withDefaults(),
		client: client,
		logger: logger.With(logging.Field{Key: "component", Value: "enumerator"}),
	}
}

func newSpiderHelper(spider *Spider, seed string) (*spiderHelper, error) {
	root, err := utils.NewURLTools(seed)
	if err != nil {
		return nil, err
	}

	start := root.URL.String()
	return &spiderHelper{
		spider:  spider,
		root:    root,
		depth:   map[string]int{start: 0},
		results: []string{start},
	}, nil
}

// crawlPage fetches one page and returns the absolute URLs it links to.
// Non-HTML responses contribute no links.
func (sh *spiderHelper) crawlPage(ctx context.Context, target string) ([]string, error) {
	resp, err := sh.spider.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}
	if resp.ContentType() != "text/html" {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}

	base, err := utils.NewURLTools(target)
	if err != nil {
		return nil, fmt.Errorf("parse page url %s: %w", target, err)
	}

	var raw []string
	doc.Find("a[href], area[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			raw = append(raw, href)
		}
	})
	doc.Find("frame[src], iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok {
			raw = append(raw, src)
		}
	})

	links := make([]string, 0, len(raw))
	for _, href := range raw {
		if strings.TrimSpace(href) == "" {
			continue
		}
		resolved, err := base.Resolve(href)
		if err != nil {
			sh.spider.logger.Warn("couldn't resolve link",
				logging.Field{Key: "href", Value: href},
				logging.Field{Key: "page", Value: target})
			continue
		}
		links = append(links, resolved)
	}

	return links, nil
}

// appendPages records newly discovered pages, skipping duplicates,
// other origins and non-web schemes. It stops at the page cap.
func (sh *spiderHelper) appendPages(pages []string, lastDepth int) {
	for _, page := range pages {
		if sh.spider.config.MaxPages > 0 && len(sh.results) >= sh.spider.config.MaxPages {
			return
		}

		tools, err := utils.NewURLTools(page)
		if err != nil {
			sh.spider.logger.Warn("error parsing discovered url",
				logging.Field{Key: "url", Value: page},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		if scheme := tools.URL.Scheme; scheme != "http" && scheme != "https" {
			continue
		}
		if !sh.root.DomainIsSame(tools) {
			continue
		}

		key := tools.URL.String()
		if _, seen := sh.depth[key]; seen {
			continue
		}
		sh.depth[key] = lastDepth + 1
		sh.results = append(sh.results, key)
	}
}

func (sh *spiderHelper) run(ctx context.Context) error {
	for curr := 0; curr < len(sh.results); curr++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := sh.results[curr]
		if sh.depth[page] >= sh.spider.config.MaxDepth {
			continue
		}

		links, err := sh.crawlPage(ctx, page)
		if err != nil {
			sh.spider.logger.Error("error while crawling page",
				logging.Field{Key: "url", Value: page},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}

		sh.appendPages(links, sh.depth[page])
	}
	return nil
}

// Enumerate crawls from seed and returns the discovered pages in
// breadth-first order, the seed first.
func (s *Spider) Enumerate(ctx context.Context, seed string) ([]string, error) {
	helper, err := newSpiderHelper(s, seed)
	if err != nil {
		return nil, fmt.Errorf("parse seed url %q: %w", seed, err)
	}

	if err := helper.run(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Enumeration finished",
		logging.Field{Key: "seed", Value: seed},
		logging.Field{Key: "pages", Value: len(helper.results)})

	return helper.results, nil
}
