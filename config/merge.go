package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/model"
)

// rawEntry mirrors Entry with pointers so unset fields can be told apart
// from empty ones when merging defaults.
type rawEntry struct {
	Repos         []string    `yaml:"repos"`
	Filter        *string     `yaml:"filter"`
	Weights       []rawWeight `yaml:"weights"`
	InheritFrom   *string     `yaml:"inherit_from"`
	InheritFilter *string     `yaml:"inherit_filter"`
	Header        *string     `yaml:"header"`
	Footer        *string     `yaml:"footer"`
	Output        *rawOutput  `yaml:"output"`
	Token         string      `yaml:"token"`
}

type rawWeight struct {
	Filter   string   `yaml:"filter"`
	Weight   *float64 `yaml:"weight"`
	Assignee string   `yaml:"assignee"`
	Suffix   string   `yaml:"suffix"`
}

type rawOutput struct {
	Repo   *string `yaml:"repo"`
	Path   *string `yaml:"path"`
	Branch *string `yaml:"branch"`
}

// mergeEntry applies defaults under local. Local values win when set;
// lists are replaced, never merged.
func mergeEntry(defaults, local *rawEntry) *rawEntry {
	result := &rawEntry{
		Repos:         pick(local.Repos, defaults.Repos),
		Weights:       pick(local.Weights, defaults.Weights),
		Filter:        firstSet(local.Filter, defaults.Filter),
		InheritFrom:   firstSet(local.InheritFrom, defaults.InheritFrom),
		InheritFilter: firstSet(local.InheritFilter, defaults.InheritFilter),
		Header:        firstSet(local.Header, defaults.Header),
		Footer:        firstSet(local.Footer, defaults.Footer),
	}

	if local.Output != nil || defaults.Output != nil {
		lo, do := local.Output, defaults.Output
		if lo == nil {
			lo = &rawOutput{}
		}
		if do == nil {
			do = &rawOutput{}
		}
		result.Output = &rawOutput{
			Repo:   firstSet(lo.Repo, do.Repo),
			Path:   firstSet(lo.Path, do.Path),
			Branch: firstSet(lo.Branch, do.Branch),
		}
	}

	return result
}

func pick[T any](local, defaults []T) []T {
	if local != nil {
		return local
	}
	return defaults
}

func firstSet(local, defaults *string) *string {
	if local != nil {
		return local
	}
	return defaults
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// build converts a merged rawEntry into an Entry. Weights without a value
// keep NaN so validate can report them.
func (r *rawEntry) build(key string) *Entry {
	e := &Entry{
		Key:           key,
		Repos:         r.Repos,
		Filter:        strings.TrimSpace(deref(r.Filter)),
		InheritFrom:   strings.TrimSpace(deref(r.InheritFrom)),
		InheritFilter: strings.TrimSpace(deref(r.InheritFilter)),
		Header:        deref(r.Header),
		Footer:        deref(r.Footer),
	}
	if e.Filter == "" {
		e.Filter = constants.DefaultFilter
	}
	if r.Output != nil {
		e.Output = Output{
			Repo:   strings.TrimSpace(deref(r.Output.Repo)),
			Path:   strings.TrimSpace(deref(r.Output.Path)),
			Branch: strings.TrimSpace(deref(r.Output.Branch)),
		}
	}

	for _, w := range r.Weights {
		weight := math.NaN()
		if w.Weight != nil {
			weight = *w.Weight
		}
		e.Weights = append(e.Weights, WeightRule{
			Filter:   strings.TrimSpace(w.Filter),
			Weight:   weight,
			Assignee: strings.TrimSpace(w.Assignee),
			Suffix:   w.Suffix,
		})
	}
	return e
}

// validate checks the entry. declared holds the keys seen before it.
func (e *Entry) validate(declared map[string]bool) error {
	var errs []error

	if e.IsInheriting() {
		switch {
		case e.InheritFrom == e.Key:
			errs = append(errs, errors.New("inherit_from refers to itself"))
		case !declared[e.InheritFrom]:
			errs = append(errs, fmt.Errorf("inherit_from %q must name an entry declared earlier", e.InheritFrom))
		}
	} else if len(e.Repos) == 0 {
		errs = append(errs, errors.New("repos is required"))
	}
	if !e.IsInheriting() && e.InheritFilter != "" {
		errs = append(errs, errors.New("inherit_filter requires inherit_from"))
	}

	for _, r := range e.Repos {
		if _, err := model.ParseRepo(r); err != nil {
			errs = append(errs, err)
		}
	}

	for i, w := range e.Weights {
		if w.Filter == "" {
			errs = append(errs, fmt.Errorf("weights[%d]: filter is required", i))
		}
		switch {
		case math.IsNaN(w.Weight):
			errs = append(errs, fmt.Errorf("weights[%d]: weight is required", i))
		case w.Weight < 0 || math.IsInf(w.Weight, 0):
			errs = append(errs, fmt.Errorf("weights[%d]: weight must be a non-negative number", i))
		}
		if w.Assignee != "" && w.Assignee != AssigneeOwner {
			errs = append(errs, fmt.Errorf("weights[%d]: unsupported assignee %q (only %q)", i, w.Assignee, AssigneeOwner))
		}
	}

	if e.Output.Repo == "" {
		errs = append(errs, errors.New("output.repo is required"))
	} else if _, err := model.ParseRepo(e.Output.Repo); err != nil {
		errs = append(errs, fmt.Errorf("output.repo: %w", err))
	}
	if e.Output.Path == "" {
		errs = append(errs, errors.New("output.path is required"))
	}

	return errors.Join(errs...)
}
