package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"internwatch/internal/config"
	"internwatch/internal/model"
	"internwatch/internal/normalize"
)

// Ensure TableAdapter implements model.SourceAdapter.
var _ model.SourceAdapter = (*TableAdapter)(nil)

// tableLabels are the column headers that identify the postings table,
// matched case-insensitively and order-independently.
var tableLabels = []string{"company", "role", "location", "application", "age"}

// TableAdapter reads a markdown/HTML table embedded in a raw repository
// document. The table is located by its header row; rows are read until the
// first non-table line.
type TableAdapter struct {
	name        string
	url         string
	fallbackURL string
	client      *http.Client
}

// NewTableAdapter builds an adapter for a table source. The fallback URL, if
// set, is tried when the primary returns non-success or contains no
// recognizable header row.
func NewTableAdapter(cfg config.SourceConfig, client *http.Client) *TableAdapter {
	return &TableAdapter{
		name:        cfg.Name,
		url:         cfg.URL,
		fallbackURL: cfg.FallbackURL,
		client:      client,
	}
}

func (a *TableAdapter) Name() string { return a.name }

// FetchAndParse fetches the document and extracts posting candidates from the
// postings table. Rows with no resolvable application URL are silently
// dropped; the same link appearing twice yields one candidate.
func (a *TableAdapter) FetchAndParse(ctx context.Context) ([]model.Posting, error) {
	postings, err := a.fetchOne(ctx, a.url)
	if err == nil {
		return postings, nil
	}
	if a.fallbackURL == "" {
		return nil, err
	}
	postings, fbErr := a.fetchOne(ctx, a.fallbackURL)
	if fbErr != nil {
		return nil, fmt.Errorf("primary: %v; fallback: %w", err, fbErr)
	}
	return postings, nil
}

func (a *TableAdapter) fetchOne(ctx context.Context, url string) ([]model.Posting, error) {
	resp, err := get(ctx, a.client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	cols, rows, err := readTable(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	seen := make(map[string]bool)
	var postings []model.Posting
	for _, cells := range rows {
		link := normalize.CellURL(cell(cells, cols["application"]))
		if link == "" {
			continue
		}
		company := normalize.StripLink(cell(cells, cols["company"]))
		role := normalize.StripLink(cell(cells, cols["role"]))
		location := normalize.StripLink(cell(cells, cols["location"]))
		age := normalize.CleanText(cell(cells, cols["age"]))
		if company == "" && role == "" {
			continue
		}
		if seen[link] {
			continue
		}
		seen[link] = true

		title := role
		if company != "" {
			title = company + ": " + role
		}
		if location != "" {
			title += " (" + location + ")"
		}

		postings = append(postings, model.Posting{
			ID:       normalize.PostingID(a.name, company, role, location, link),
			Title:    title,
			Link:     link,
			Source:   a.name,
			Company:  company,
			Role:     role,
			Location: location,
			Age:      age,
		})
	}

	return postings, nil
}

// readTable scans the document line by line. It returns the label→column
// index map from the header row and the raw cells of every following table
// row, stopping at the first non-table line.
func readTable(r io.Reader) (map[string]int, [][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cols map[string]int
	var rows [][]string
	inTable := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "|") {
			if inTable {
				break
			}
			continue
		}
		cells := splitRow(line)

		if !inTable {
			if c, ok := matchHeader(cells); ok {
				cols = c
				inTable = true
			}
			continue
		}
		if isSeparatorRow(cells) {
			continue
		}
		rows = append(rows, cells)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan document: %w", err)
	}
	if cols == nil {
		return nil, nil, fmt.Errorf("no table header row matching %v", tableLabels)
	}
	return cols, rows, nil
}

// matchHeader reports whether the cells contain all expected labels and, if
// so, which column each label lives in.
func matchHeader(cells []string) (map[string]int, bool) {
	cols := make(map[string]int, len(tableLabels))
	for i, c := range cells {
		lc := strings.ToLower(normalize.StripLink(c))
		for _, label := range tableLabels {
			if _, dup := cols[label]; !dup && strings.Contains(lc, label) {
				cols[label] = i
				break
			}
		}
	}
	return cols, len(cols) == len(tableLabels)
}

// isSeparatorRow detects the markdown header separator (|---|:---:|...).
func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}
	return true
}

// splitRow breaks a pipe-delimited table line into trimmed cells.
func splitRow(line string) []string {
	line = strings.Trim(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// cell returns the idx-th cell or "" when the row is too short.
func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
