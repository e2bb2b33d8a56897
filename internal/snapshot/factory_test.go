package snapshot_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/raysh454/miru/internal/logging"
	"github.com/raysh454/miru/internal/snapshot"
)

// fakeSource returns a canned single-element document.
type fakeSource struct {
	closed bool
}

func (f *fakeSource) Capture(ctx context.Context, url string) (*snapshot.Document, error) {
	root := &snapshot.Element{Tag: "html"}
	return snapshot.NewDocument(url, snapshot.Viewport{Width: 1, Height: 1}, root), nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestNewSource_UsesRegisteredConstructor(t *testing.T) {
	t.Parallel()

	fake := &fakeSource{}
	snapshot.RegisterSource("fake-roundtrip", func(cfg *snapshot.Config, logger logging.Logger) (snapshot.Source, error) {
		return fake, nil
	})

	src, err := snapshot.NewSource(&snapshot.Config{Source: "fake-roundtrip"}, nil)
	if err != nil {
		t.Fatalf("NewSource failed: %v", err)
	}
	doc, err := src.Capture(context.Background(), "https://example.org/")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if doc.URL != "https://example.org/" || doc.Len() != 1 {
		t.Errorf("unexpected document %+v", doc)
	}

	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !fake.closed {
		t.Error("Close did not reach the underlying source")
	}
}

func TestNewSource_NameMatchingIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	snapshot.RegisterSource("Fake-Cased", func(cfg *snapshot.Config, logger logging.Logger) (snapshot.Source, error) {
		return &fakeSource{}, nil
	})

	if _, err := snapshot.NewSource(&snapshot.Config{Source: "FAKE-CASED"}, nil); err != nil {
		t.Fatalf("NewSource failed for differently cased name: %v", err)
	}
}

func TestNewSource_UnknownName(t *testing.T) {
	t.Parallel()

	_, err := snapshot.NewSource(&snapshot.Config{Source: "no-such-source"}, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered source")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("error %q does not explain the missing registration", err)
	}
}

func TestRegisterDefaultSources(t *testing.T) {
	t.Parallel()

	snapshot.RegisterDefaultSources()

	names := snapshot.ListSources()
	if !sort.StringsAreSorted(names) {
		t.Errorf("ListSources not sorted: %v", names)
	}
	for _, want := range []string{string(snapshot.SourceChromedp), string(snapshot.SourceStatic)} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("default source %q not registered (have %v)", want, names)
		}
	}

	// The zero config selects the browser source.
	src, err := snapshot.NewSource(nil, nil)
	if err != nil {
		t.Fatalf("NewSource with defaults failed: %v", err)
	}
	if _, ok := src.(*snapshot.ChromedpSource); !ok {
		t.Errorf("default source is %T, want *snapshot.ChromedpSource", src)
	}
	_ = src.Close()
}
