// Package ranking scores issues with weight rules and orders them.
package ranking

import (
	"math"
	"slices"
	"strings"

	"github.com/spiffcs/glance/internal/model"
)

// Record is one issue and its accumulated weight.
type Record struct {
	Issue  *model.Issue `json:"issue"`
	Weight float64      `json:"weight"`
}

// WeightedSet is the working state of one entry. Every weight belongs to
// exactly one issue. A set is mutable until it has been sealed; sealed
// sets are shared between entries and must not be changed.
type WeightedSet struct {
	records map[string]*Record
	fetched []string
	repos   []model.Repo

	ordered []*Record
	sealed  bool
}

// NewWeightedSet returns an empty set fetched from repos.
func NewWeightedSet(repos []model.Repo) *WeightedSet {
	return &WeightedSet{
		records: make(map[string]*Record),
		repos:   repos,
	}
}

// Add seeds issue at weight 1.0. It returns false if an issue with the
// same ID is already present.
func (s *WeightedSet) Add(issue *model.Issue) bool {
	if s.sealed {
		panic("ranking: Add on sealed set")
	}
	if _, ok := s.records[issue.ID]; ok {
		return false
	}
	s.records[issue.ID] = &Record{Issue: issue, Weight: 1.0}
	s.fetched = append(s.fetched, issue.ID)
	return true
}

// Get returns the record for id.
func (s *WeightedSet) Get(id string) (*Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Len returns the number of issues.
func (s *WeightedSet) Len() int {
	return len(s.records)
}

// Repos returns the repositories the set was fetched from.
func (s *WeightedSet) Repos() []model.Repo {
	return s.repos
}

// Issues returns the issues in fetch order.
func (s *WeightedSet) Issues() []*model.Issue {
	out := make([]*model.Issue, 0, len(s.fetched))
	for _, id := range s.fetched {
		out = append(out, s.records[id].Issue)
	}
	return out
}

// Ordered returns every record in ranking order. Only valid once sealed.
func (s *WeightedSet) Ordered() []*Record {
	return s.ordered
}

// Sealed reports whether the set is final.
func (s *WeightedSet) Sealed() bool {
	return s.sealed
}

// seal rounds every weight to one decimal and fixes the ranking order.
func (s *WeightedSet) seal() {
	if s.sealed {
		return
	}
	s.ordered = make([]*Record, 0, len(s.fetched))
	for _, id := range s.fetched {
		r := s.records[id]
		r.Weight = roundWeight(r.Weight)
		s.ordered = append(s.ordered, r)
	}
	slices.SortFunc(s.ordered, compareRecords)
	s.sealed = true
}

func roundWeight(w float64) float64 {
	return math.Round(w*10) / 10
}

// compareRecords orders by weight descending, then case-insensitive title,
// then ID so the order is total.
func compareRecords(a, b *Record) int {
	switch {
	case a.Weight > b.Weight:
		return -1
	case a.Weight < b.Weight:
		return 1
	}
	if c := strings.Compare(strings.ToLower(a.Issue.Title), strings.ToLower(b.Issue.Title)); c != 0 {
		return c
	}
	return strings.Compare(a.Issue.ID, b.Issue.ID)
}
