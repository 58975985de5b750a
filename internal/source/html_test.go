package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"internwatch/internal/config"
	"internwatch/internal/model"
)

// serveHTML returns a test server and an adapter whose posting URL shape is
// pinned to the server's own host.
func serveHTML(t *testing.T, status int, body string) (*httptest.Server, *HTMLAdapter) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	adapter, err := NewHTMLAdapter(config.SourceConfig{
		Name:        "intern-list",
		Type:        "html",
		URL:         srv.URL + "/swe-intern-list",
		Origin:      srv.URL,
		LinkPattern: `^https?://[^/]+/[^/]+/[^/]+_\d+$`,
	}, srv.Client())
	if err != nil {
		t.Fatalf("building adapter: %v", err)
	}
	return srv, adapter
}

func TestHTMLAdapterExtractsPostings(t *testing.T) {
	srv, adapter := serveHTML(t, http.StatusOK, `
<html><body>
  <a href="/swe/acme-intern_101">Acme SWE Intern Sep 19, 2025</a>
  <a href="/swe/globex-intern_102">Globex Backend Intern</a>
  <a href="/about">About us</a>
  <a href="/swe/acme-intern_101">Acme SWE Intern Sep 19, 2025</a>
  <a href="/swe/imgonly-intern_103"><img src="/logo.png"/></a>
  <a href="mailto:hi@example.com">Contact</a>
</body></html>`)

	postings, err := adapter.FetchAndParse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 2 {
		t.Fatalf("expected 2 postings, got %d: %+v", len(postings), postings)
	}

	p := postings[0]
	if p.Title != "[Sep 19, 2025] Acme SWE Intern" {
		t.Errorf("expected date-prefixed title, got %q", p.Title)
	}
	if p.Posted != "Sep 19, 2025" {
		t.Errorf("expected posted token, got %q", p.Posted)
	}
	wantLink := srv.URL + "/swe/acme-intern_101"
	if p.Link != wantLink {
		t.Errorf("expected link %q, got %q", wantLink, p.Link)
	}
	if p.ID != "intern-list:"+wantLink {
		t.Errorf("unexpected id %q", p.ID)
	}

	// No date token: the title passes through cleaned, not prefixed.
	if postings[1].Title != "Globex Backend Intern" {
		t.Errorf("unexpected second title %q", postings[1].Title)
	}
	if postings[1].Posted != "" {
		t.Errorf("expected empty posted token, got %q", postings[1].Posted)
	}
}

func TestHTMLAdapterDeterministicIDs(t *testing.T) {
	_, adapter := serveHTML(t, http.StatusOK,
		`<a href="/swe/acme-intern_101">Acme SWE Intern</a>`)

	first, err := adapter.FetchAndParse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := adapter.FetchAndParse(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first[0].ID != second[0].ID || first[0].Title != second[0].Title {
		t.Errorf("normalization not deterministic: %+v vs %+v", first[0], second[0])
	}
}

func TestHTMLAdapterHTTPError(t *testing.T) {
	_, adapter := serveHTML(t, http.StatusServiceUnavailable, "down")

	_, err := adapter.FetchAndParse(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", httpErr.StatusCode)
	}
}

func TestHTMLAdapterDerivedPattern(t *testing.T) {
	adapter, err := NewHTMLAdapter(config.SourceConfig{
		Name:   "intern-list",
		Type:   "html",
		URL:    "https://www.intern-list.com/swe-intern-list",
		Origin: "https://www.intern-list.com",
	}, http.DefaultClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		link string
		want bool
	}{
		{"https://www.intern-list.com/swe/acme-intern_101", true},
		{"https://www.intern-list.com/swe/acme-intern", false},
		{"https://other.example/swe/acme-intern_101", false},
		{"https://www.intern-list.com/acme-intern_101", false},
	}
	for _, tt := range tests {
		if got := adapter.linkRe.MatchString(tt.link); got != tt.want {
			t.Errorf("linkRe.MatchString(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}
