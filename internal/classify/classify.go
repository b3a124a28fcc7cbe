package classify

import (
	"sort"
	"strings"
	"time"

	"noticeboard-engine/internal/deadline"
	"noticeboard-engine/internal/domain"
)

// TargetAll is the sentinel filter value meaning "no target filter".
const TargetAll = "all"

// Group is one display bucket: every listing in Listings shares Target
// as its grouping key.
type Group struct {
	Target   string           `json:"target"`
	Listings []domain.Listing `json:"listings"`
}

// Filter keeps a listing iff it matches the target filter (TargetAll
// passes everything; an absent target matches the fallback bucket) and
// the query is a case-insensitive substring of its summary or target.
func Filter(listings []domain.Listing, target, query string) []domain.Listing {
	q := strings.ToLower(strings.TrimSpace(query))

	var out []domain.Listing
	for _, l := range listings {
		if target != TargetAll && l.TargetOrFallback() != target {
			continue
		}
		if q != "" {
			summary := strings.ToLower(l.Summary)
			tgt := strings.ToLower(l.TargetOrFallback())
			if !strings.Contains(summary, q) && !strings.Contains(tgt, q) {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

// Compare orders two listings for display:
//  1. not-yet-past (undated counts as never expiring) before past,
//  2. both past: more recently expired first,
//  3. both dated and active: soonest deadline first,
//  4. exactly one dated: the dated one first,
//  5. neither dated: newest created first.
//
// Returns negative when a sorts before b.
func Compare(a, b domain.Listing, now time.Time) int {
	da, aok := deadline.Parse(a.ApplicationPeriod)
	db, bok := deadline.Parse(b.ApplicationPeriod)

	aPast := aok && da.Before(now)
	bPast := bok && db.Before(now)

	switch {
	case aPast != bPast:
		if aPast {
			return 1
		}
		return -1
	case aPast && bPast:
		return db.Compare(da)
	case aok && bok:
		return da.Compare(db)
	case aok != bok:
		if aok {
			return -1
		}
		return 1
	default:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
}

// Sort orders listings by Compare. The sort is stable so that repeated
// classification of the same snapshot is deterministic.
func Sort(listings []domain.Listing, now time.Time) []domain.Listing {
	out := make([]domain.Listing, len(listings))
	copy(out, listings)
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], now) < 0
	})
	return out
}

// GroupByTarget partitions an already sorted slice into groups keyed by
// target, keeping sorted order inside each group and first-seen order
// across group keys.
func GroupByTarget(listings []domain.Listing) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, l := range listings {
		key := l.TargetOrFallback()
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, Group{Target: key})
		}
		groups[i].Listings = append(groups[i].Listings, l)
	}
	return groups
}

// Classify runs the full filter -> sort -> group pipeline.
func Classify(listings []domain.Listing, now time.Time, target, query string) []Group {
	return GroupByTarget(Sort(Filter(listings, target, query), now))
}

// UniqueTargets returns the filter-control options: TargetAll first,
// then the distinct grouping keys in first-seen order.
func UniqueTargets(listings []domain.Listing) []string {
	out := []string{TargetAll}
	seen := map[string]bool{}
	for _, l := range listings {
		key := l.TargetOrFallback()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
