package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"internwatch/internal/config"
	"internwatch/internal/model"
	"internwatch/internal/normalize"
)

// Ensure HTMLAdapter implements model.SourceAdapter.
var _ model.SourceAdapter = (*HTMLAdapter)(nil)

// HTMLAdapter scans an HTML listing page for posting anchors. An anchor is a
// posting when its resolved absolute URL matches the source's posting URL
// shape: https://<host>/<section>/<slug>_<digits>.
type HTMLAdapter struct {
	name   string
	url    string
	origin string
	linkRe *regexp.Regexp
	client *http.Client
}

// NewHTMLAdapter builds an adapter for an HTML listing source. The posting
// URL shape is taken from cfg.LinkPattern when set, otherwise derived from
// the origin's host.
func NewHTMLAdapter(cfg config.SourceConfig, client *http.Client) (*HTMLAdapter, error) {
	pattern := cfg.LinkPattern
	if pattern == "" {
		u, err := url.Parse(cfg.Origin)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("source %s: origin %q is not a valid URL", cfg.Name, cfg.Origin)
		}
		pattern = `^https?://` + regexp.QuoteMeta(u.Host) + `/[^/]+/[^/]+_\d+$`
	}
	linkRe, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("source %s: link pattern %q: %w", cfg.Name, pattern, err)
	}
	return &HTMLAdapter{
		name:   cfg.Name,
		url:    cfg.URL,
		origin: cfg.Origin,
		linkRe: linkRe,
		client: client,
	}, nil
}

func (a *HTMLAdapter) Name() string { return a.name }

// FetchAndParse fetches the listing page and extracts posting candidates.
// Anchors with no visible text (image-only) are skipped; the same link
// appearing twice in one page yields one candidate, first occurrence wins.
func (a *HTMLAdapter) FetchAndParse(ctx context.Context) ([]model.Posting, error) {
	resp, err := get(ctx, a.client, a.url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s html: %w", a.url, err)
	}

	seen := make(map[string]bool)
	var postings []model.Posting
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		link := normalize.ResolveURL(a.origin, href)
		if link == "" || !a.linkRe.MatchString(link) {
			return
		}
		title := normalize.CleanText(sel.Text())
		if title == "" {
			return
		}
		if seen[link] {
			return
		}
		seen[link] = true

		body, token := normalize.ExtractDate(title)
		if token != "" {
			title = "[" + token + "] " + body
		} else {
			title = body
		}

		postings = append(postings, model.Posting{
			ID:     normalize.PostingID(a.name, link),
			Title:  title,
			Link:   link,
			Source: a.name,
			Posted: token,
		})
	})

	return postings, nil
}
