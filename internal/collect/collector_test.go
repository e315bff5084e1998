package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rssBody(items int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>feed</title>`)
	for i := 0; i < items; i++ {
		fmt.Fprintf(&sb, "<item><title>item %d</title><link>https://example.com/%d</link></item>", i, i)
	}
	sb.WriteString("</channel></rss>")
	return sb.String()
}

func nvdBody(items int) string {
	vulns := make([]map[string]string, items)
	for i := range vulns {
		vulns[i] = map[string]string{"cve": fmt.Sprintf("CVE-2024-%04d", i)}
	}
	body, _ := json.Marshal(map[string]any{"vulnerabilities": vulns})
	return string(body)
}

func twitterBody(items int) string {
	tweets := make([]map[string]string, items)
	for i := range tweets {
		tweets[i] = map[string]string{"text": fmt.Sprintf("tweet %d", i)}
	}
	body, _ := json.Marshal(map[string]any{"data": tweets})
	return string(body)
}

func newCollector(t *testing.T, rss, nvd, twitter http.HandlerFunc) *Collector {
	t.Helper()
	rssSrv := httptest.NewServer(rss)
	nvdSrv := httptest.NewServer(nvd)
	twSrv := httptest.NewServer(twitter)
	t.Cleanup(rssSrv.Close)
	t.Cleanup(nvdSrv.Close)
	t.Cleanup(twSrv.Close)

	return New(rssSrv.Client(), Config{
		RSSURL:     rssSrv.URL,
		NVDURL:     nvdSrv.URL,
		TwitterURL: twSrv.URL,
		Bearer:     "test-bearer",
	}, discardLogger())
}

func TestCollectBundleShape(t *testing.T) {
	c := newCollector(t,
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "apt29" {
				t.Errorf("rss query = %q, want apt29", got)
			}
			io.WriteString(w, rssBody(3))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("keywordSearch"); got != "apt29" {
				t.Errorf("nvd keywordSearch = %q, want apt29", got)
			}
			io.WriteString(w, nvdBody(2))
		},
		func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-bearer" {
				t.Errorf("twitter auth = %q", got)
			}
			io.WriteString(w, twitterBody(1))
		},
	)

	bundle, err := c.Collect(context.Background(), "apt29")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(bundle.RSS) != 3 || len(bundle.NVD) != 2 || len(bundle.Twitter) != 1 {
		t.Fatalf("unexpected bundle sizes: rss=%d nvd=%d twitter=%d",
			len(bundle.RSS), len(bundle.NVD), len(bundle.Twitter))
	}

	// The serialized bundle must carry exactly the three source keys.
	raw, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal bundle: %v", err)
	}
	for _, key := range []string{"rss", "nvd", "twitter"} {
		if _, ok := keys[key]; !ok {
			t.Fatalf("bundle missing key %q: %s", key, raw)
		}
	}
	if len(keys) != 3 {
		t.Fatalf("bundle has extra keys: %s", raw)
	}
}

func TestCollectTruncatesTo100(t *testing.T) {
	c := newCollector(t,
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, rssBody(150)) },
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, nvdBody(150)) },
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, twitterBody(150)) },
	)

	bundle, err := c.Collect(context.Background(), "term")
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(bundle.RSS) != 100 {
		t.Fatalf("rss not truncated: %d", len(bundle.RSS))
	}
	if len(bundle.NVD) != 100 {
		t.Fatalf("nvd not truncated: %d", len(bundle.NVD))
	}
	if len(bundle.Twitter) != 100 {
		t.Fatalf("twitter not truncated: %d", len(bundle.Twitter))
	}
}

func TestCollectFailsWhenOneSourceFails(t *testing.T) {
	c := newCollector(t,
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, rssBody(1)) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, twitterBody(1)) },
	)

	_, err := c.Collect(context.Background(), "term")
	if err == nil {
		t.Fatalf("expected collection to fail when one source returns 503")
	}
	if !strings.Contains(err.Error(), "nvd fetch") {
		t.Fatalf("error does not name the failing source: %v", err)
	}
}

func TestCollectFailsOnBadFeed(t *testing.T) {
	c := newCollector(t,
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "not a feed") },
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, nvdBody(1)) },
		func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, twitterBody(1)) },
	)

	if _, err := c.Collect(context.Background(), "term"); err == nil {
		t.Fatalf("expected unparsable feed to fail collection")
	}
}
