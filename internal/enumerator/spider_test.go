package enumerator_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/raysh454/miru/internal/enumerator"
	"github.com/raysh454/miru/internal/webclient"
)

// newFixtureSite serves a small site with three link rings around the seed:
//
//	/            -> /example, /blog, plus noise links
//	/example     -> /example/a, /example/b, itself
//	/example/a   -> /example/a/1, /blog
//	/example/b   -> /example (via a relative parent path)
//	/example/a/1 -> nothing
//	/blog        -> nothing
func newFixtureSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	page := func(pattern, body string) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			io.WriteString(w, body)
		})
	}

	page("/", `
		<a href="/example">example</a>
		<a href="/blog">blog</a>
		<a href="http://offsite.test/elsewhere">offsite</a>
		<a href="mailto:team@example.com">mail</a>
		<a href="#section">fragment</a>
		<a href="/data.json">data</a>
	`)
	page("/example", `
		<a href="/example/a">example a</a>
		<a href="/example/b">example b</a>
		<a href="/example">self</a>
	`)
	page("/example/a", `
		<a href="/example/a/1">deep</a>
		<a href="../blog">blog again</a>
	`)
	page("/example/b", `<a href="../example">back</a>`)
	page("/example/a/1", `leaf`)
	page("/blog", `blog`)

	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"see": "http://offsite.test/from-json"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSpider(t *testing.T, cfg *enumerator.Config) *enumerator.Spider {
	t.Helper()

	client, err := webclient.NewNetHTTPClient(nil, nil, nil)
	if err != nil {
		t.Fatalf("NewNetHTTPClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return enumerator.NewSpider(cfg, client, nil)
}

func TestSpider_EnumerateByDepth(t *testing.T) {
	t.Parallel()

	srv := newFixtureSite(t)
	seed := srv.URL + "/"

	tests := []struct {
		name     string
		maxDepth int
		want     []string
	}{
		{
			name:     "depth 1 stops at the first ring",
			maxDepth: 1,
			want: []string{
				seed,
				srv.URL + "/example",
				srv.URL + "/blog",
				srv.URL + "/data.json",
			},
		},
		{
			name:     "depth 2 adds the second ring",
			maxDepth: 2,
			want: []string{
				seed,
				srv.URL + "/example",
				srv.URL + "/blog",
				srv.URL + "/data.json",
				srv.URL + "/example/a",
				srv.URL + "/example/b",
			},
		},
		{
			name:     "depth 3 reaches the leaf",
			maxDepth: 3,
			want: []string{
				seed,
				srv.URL + "/example",
				srv.URL + "/blog",
				srv.URL + "/data.json",
				srv.URL + "/example/a",
				srv.URL + "/example/b",
				srv.URL + "/example/a/1",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			spider := newTestSpider(t, &enumerator.Config{MaxDepth: tt.maxDepth})
			got, err := spider.Enumerate(context.Background(), seed)
			if err != nil {
				t.Fatalf("Enumerate() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Enumerate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpider_EnumerateStaysOnOrigin(t *testing.T) {
	t.Parallel()

	srv := newFixtureSite(t)
	spider := newTestSpider(t, &enumerator.Config{MaxDepth: 3})

	got, err := spider.Enumerate(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}

	for _, page := range got {
		if !strings.HasPrefix(page, srv.URL) {
			t.Errorf("Enumerate() discovered off-origin page %q", page)
		}
	}
}

func TestSpider_EnumerateHonorsPageCap(t *testing.T) {
	t.Parallel()

	srv := newFixtureSite(t)
	spider := newTestSpider(t, &enumerator.Config{MaxDepth: 3, MaxPages: 3})

	got, err := spider.Enumerate(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Enumerate() discovered %d pages, want the cap of 3", len(got))
	}
	if got[0] != srv.URL+"/" {
		t.Errorf("Enumerate() first page = %q, want the seed", got[0])
	}
}

func TestSpider_EnumerateSeedOnlyHasNoLinks(t *testing.T) {
	t.Parallel()

	srv := newFixtureSite(t)
	spider := newTestSpider(t, &enumerator.Config{MaxDepth: 1})

	got, err := spider.Enumerate(context.Background(), srv.URL+"/blog")
	if err != nil {
		t.Fatalf("Enumerate() error = %v", err)
	}
	if want := []string{srv.URL + "/blog"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Enumerate() = %v, want just the seed %v", got, want)
	}
}

func TestSpider_EnumerateCancelledContext(t *testing.T) {
	t.Parallel()

	srv := newFixtureSite(t)
	spider := newTestSpider(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := spider.Enumerate(ctx, srv.URL+"/"); err == nil {
		t.Error("Enumerate() with a cancelled context did not return an error")
	}
}

func TestSpider_EnumerateRejectsBadSeed(t *testing.T) {
	t.Parallel()

	spider := newTestSpider(t, nil)
	if _, err := spider.Enumerate(context.Background(), "://not-a-url"); err == nil {
		t.Error("Enumerate() with an unparseable seed did not return an error")
	}
}
