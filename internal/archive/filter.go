package archive

import (
	"github.com/kalambet/gharvest/internal/event"
)

// Filter is the streaming predicate applied to each decoded line before it
// is materialized into the hour batch. An empty repo or kind set means "no
// restriction" for that dimension.
type Filter struct {
	repos map[string]struct{}
	kinds map[string]struct{}
}

// NewFilter builds a Filter from repository full names (matched
// case-insensitively) and event kinds (matched exactly).
func NewFilter(repos, kinds []string) Filter {
	f := Filter{}
	if len(repos) > 0 {
		f.repos = make(map[string]struct{}, len(repos))
		for _, r := range repos {
			f.repos[event.RepoKey(r)] = struct{}{}
		}
	}
	if len(kinds) > 0 {
		f.kinds = make(map[string]struct{}, len(kinds))
		for _, k := range kinds {
			f.kinds[k] = struct{}{}
		}
	}
	return f
}

// Match reports whether the record passes both the repository and kind
// predicates.
func (f Filter) Match(r event.Record) bool {
	if f.repos != nil {
		if _, ok := f.repos[event.RepoKey(r.Repo.Name)]; !ok {
			return false
		}
	}
	if f.kinds != nil {
		if _, ok := f.kinds[r.Type]; !ok {
			return false
		}
	}
	return true
}
