package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRSSURL     = "https://example.com/rss"
	defaultNVDURL     = "https://services.nvd.nist.gov/rest/json/cves/2.0"
	defaultTwitterURL = "https://api.twitter.com/2/tweets/search/recent"

	// Each source contributes at most this many entries to the bundle.
	maxItems = 100

	twitterMaxResults = 10
)

// Bundle is the joined output of the three source fetches. Its JSON form is
// what the enricher sends to the model, so the key names are part of the
// pipeline contract.
type Bundle struct {
	RSS     []*gofeed.Item    `json:"rss"`
	NVD     []json.RawMessage `json:"nvd"`
	Twitter []json.RawMessage `json:"twitter"`
}

// Config selects the source endpoints and the social-search credential.
type Config struct {
	RSSURL     string
	NVDURL     string
	TwitterURL string
	Bearer     string
}

func (c *Config) applyDefaults() {
	if c.RSSURL == "" {
		c.RSSURL = defaultRSSURL
	}
	if c.NVDURL == "" {
		c.NVDURL = defaultNVDURL
	}
	if c.TwitterURL == "" {
		c.TwitterURL = defaultTwitterURL
	}
}

type Collector struct {
	client *http.Client
	cfg    Config
	log    *slog.Logger
}

func New(client *http.Client, cfg Config, log *slog.Logger) *Collector {
	cfg.applyDefaults()
	return &Collector{client: client, cfg: cfg, log: log}
}

// Collect fans out the three source fetches and joins them. All three must
// succeed; the first failure cancels the others and fails the collection
// with no partial result.
func (c *Collector) Collect(ctx context.Context, term string) (Bundle, error) {
	var bundle Bundle

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := c.fetchRSS(ctx, term)
		if err != nil {
			return fmt.Errorf("rss fetch: %w", err)
		}
		bundle.RSS = items
		return nil
	})
	g.Go(func() error {
		items, err := c.fetchNVD(ctx, term)
		if err != nil {
			return fmt.Errorf("nvd fetch: %w", err)
		}
		bundle.NVD = items
		return nil
	})
	g.Go(func() error {
		items, err := c.fetchTwitter(ctx, term)
		if err != nil {
			return fmt.Errorf("twitter fetch: %w", err)
		}
		bundle.Twitter = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	c.log.Info("collected",
		"rss", len(bundle.RSS),
		"nvd", len(bundle.NVD),
		"twitter", len(bundle.Twitter),
	)
	return bundle, nil
}

func (c *Collector) fetchRSS(ctx context.Context, term string) ([]*gofeed.Item, error) {
	params := url.Values{"q": {term}}
	resp, err := c.get(ctx, c.cfg.RSSURL, params, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return limit(feed.Items), nil
}

func (c *Collector) fetchNVD(ctx context.Context, term string) ([]json.RawMessage, error) {
	params := url.Values{
		"keywordSearch":  {term},
		"resultsPerPage": {strconv.Itoa(maxItems)},
	}
	resp, err := c.get(ctx, c.cfg.NVDURL, params, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed struct {
		Vulnerabilities []json.RawMessage `json:"vulnerabilities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return limit(parsed.Vulnerabilities), nil
}

func (c *Collector) fetchTwitter(ctx context.Context, term string) ([]json.RawMessage, error) {
	params := url.Values{
		"query":       {term},
		"max_results": {strconv.Itoa(twitterMaxResults)},
	}
	resp, err := c.get(ctx, c.cfg.TwitterURL, params, "Bearer "+c.cfg.Bearer)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return limit(parsed.Data), nil
}

func (c *Collector) get(ctx context.Context, rawURL string, params url.Values, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = params.Encode()
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}

func limit[T any](items []T) []T {
	if len(items) > maxItems {
		return items[:maxItems]
	}
	return items
}
