package utils_test

import (
	"testing"

	"github.com/raysh454/miru/internal/utils"
)

// ─── NewURLTools ───────────────────────────────────────────────────────

func TestNewURLTools_Normalizes(t *testing.T) {
	t.Parallel()

	u, err := utils.NewURLTools("HTTPS://Example.COM:443/App#frag")
	if err != nil {
		t.Fatalf("NewURLTools failed: %v", err)
	}
	if u.URL.Scheme != "https" {
		t.Errorf("scheme = %q, want https", u.URL.Scheme)
	}
	if u.URL.Host != "example.com" {
		t.Errorf("host = %q, want default port stripped", u.URL.Host)
	}
	if u.URL.Fragment != "" {
		t.Errorf("fragment survived: %q", u.URL.Fragment)
	}
}

func TestNewURLTools_KeepsNonDefaultPort(t *testing.T) {
	t.Parallel()

	u, err := utils.NewURLTools("http://example.com:8080/x")
	if err != nil {
		t.Fatalf("NewURLTools failed: %v", err)
	}
	if u.URL.Host != "example.com:8080" {
		t.Errorf("host = %q, want port preserved", u.URL.Host)
	}
}

// ─── DomainIsSame ──────────────────────────────────────────────────────

func TestDomainIsSameString(t *testing.T) {
	t.Parallel()

	base, err := utils.NewURLTools("https://example.com/app")
	if err != nil {
		t.Fatalf("NewURLTools failed: %v", err)
	}

	tests := []struct {
		target string
		want   bool
	}{
		{target: "https://example.com/other", want: true},
		{target: "http://EXAMPLE.com:8080/x", want: true},
		{target: "https://other.org/", want: false},
		{target: "https://sub.example.com/", want: false},
	}

	for _, tc := range tests {
		got, err := base.DomainIsSameString(tc.target)
		if err != nil {
			t.Fatalf("DomainIsSameString(%q) failed: %v", tc.target, err)
		}
		if got != tc.want {
			t.Errorf("DomainIsSameString(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

// ─── Resolve ───────────────────────────────────────────────────────────

func TestResolve(t *testing.T) {
	t.Parallel()

	base, err := utils.NewURLTools("https://example.com/app/")
	if err != nil {
		t.Fatalf("NewURLTools failed: %v", err)
	}

	tests := []struct {
		target string
		want   string
	}{
		{target: "users", want: "https://example.com/app/users"},
		{target: "../login", want: "https://example.com/login"},
		{target: "/static", want: "https://example.com/static"},
		{target: "https://foo.com/x", want: "https://foo.com/x"},
		{target: "page.html?q=1", want: "https://example.com/app/page.html?q=1"},
		{target: "#section", want: "https://example.com/app/"},
	}

	for _, tc := range tests {
		got, err := base.Resolve(tc.target)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tc.target, err)
		}
		if got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.target, got, tc.want)
		}
	}
}
