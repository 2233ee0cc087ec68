package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/armina/internal/capsule"
	"github.com/hpungsan/armina/internal/library"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Subject string // optional, matched after normalization
	Level   string // optional, matched after normalization
	Query   string // optional, case-insensitive substring of title/subject/description
	Limit   int    // default: 20, max: 100
	Offset  int    // default: 0
}

// ListItem is an index entry with the capsule's best quiz score.
type ListItem struct {
	capsule.IndexEntry
	BestScore int `json:"bestScore"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []ListItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// List returns the library in index order with pagination.
func List(ctx context.Context, lib *library.Library, input ListInput) (*ListOutput, error) {
	// Apply limit defaults and bounds
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	// Ensure offset is non-negative
	offset := max(input.Offset, 0)

	entries, err := lib.Index.List(ctx)
	if err != nil {
		return nil, err
	}

	matched := filterEntries(entries, input)
	total := len(matched)

	start := min(offset, total)
	end := min(start+limit, total)
	page := matched[start:end]

	items := make([]ListItem, 0, len(page))
	for _, e := range page {
		progress, err := lib.Records.GetProgress(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, ListItem{IndexEntry: e, BestScore: progress.BestScore})
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
	}, nil
}

func filterEntries(entries []capsule.IndexEntry, input ListInput) []capsule.IndexEntry {
	subject := capsule.Normalize(input.Subject)
	level := capsule.Normalize(input.Level)
	query := strings.ToLower(strings.TrimSpace(input.Query))

	if subject == "" && level == "" && query == "" {
		return entries
	}

	out := make([]capsule.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if subject != "" && capsule.Normalize(e.Subject) != subject {
			continue
		}
		if level != "" && capsule.Normalize(e.Level) != level {
			continue
		}
		if query != "" && !matchesQuery(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesQuery(e capsule.IndexEntry, query string) bool {
	for _, field := range []string{e.Title, e.Subject, e.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
