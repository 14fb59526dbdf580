package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/marshaller"
)

// Searcher implements seal.Searcher over a Storage.
type Searcher struct {
	storage     *Storage
	projections *projector
	logger      *slog.Logger
}

// Search implements the seal.Searcher interface.
//
// Documents of each index are read in insertion order, index by index, and filtered
// conjunctively. Matches are then sorted, counted and paginated. A limit of 0 means
// no upper bound. Documents are converted back to external shape as the result is
// consumed.
func (s *Searcher) Search(ctx context.Context, search *seal.Search) (*seal.Result, error) {
	startTime := time.Now()

	if err := search.Validate(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, seal.ErrCanceled
	default:
	}

	names := make([]string, len(search.Indexes))
	for i, idx := range search.Indexes {
		if err := validateFilters(idx, search.Filters); err != nil {
			return nil, err
		}
		if err := validateSort(idx, search.SortBys); err != nil {
			return nil, err
		}
		names[i] = idx.Name()
	}

	var matches []match
	err := s.storage.scan(names, func(pos int, e entry) error {
		select {
		case <-ctx.Done():
			return seal.ErrCanceled
		default:
		}

		m := &matcher{index: search.Indexes[pos], entry: e, projections: s.projections}
		ok, err := m.matches(search.Filters)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, match{index: search.Indexes[pos], entry: e})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := sortMatches(matches, search.SortBys); err != nil {
		return nil, err
	}

	total := len(matches)
	page := paginate(matches, search.Offset, search.Limit)

	s.logger.DebugContext(ctx, "memory search completed",
		"indexes", names,
		"filters", len(search.Filters),
		"total", total,
		"returned", len(page),
		"took", time.Since(startTime),
	)

	i := 0
	return seal.NewResult(total, func() (seal.Document, bool) {
		if i >= len(page) {
			return nil, false
		}
		m := page[i]
		i++
		return marshaller.Unmarshal(m.index.Fields(), m.entry.doc), true
	}), nil
}

// paginate slices [offset, offset+limit). Slicing past the end yields an empty page.
func paginate(matches []match, offset, limit int) []match {
	start := min(offset, len(matches))
	end := len(matches)
	if limit > 0 && limit < end-start {
		end = start + limit
	}
	return matches[start:end]
}

var _ seal.Searcher = (*Searcher)(nil)

