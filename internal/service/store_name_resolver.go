package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/couponhub/couponhub-backend/internal/domain"
)

const maxStoreSuggestions = 5

// StoreNotFoundError is returned by StoreNameIndex.Resolve when no matching
// strategy finds a store. It is a per-row outcome, not a batch failure.
type StoreNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *StoreNotFoundError) Error() string {
	msg := fmt.Sprintf("Store %q not found in database", e.Name)
	if len(e.Suggestions) > 0 {
		msg += ". Did you mean: " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

// StoreNameIndex is built once per import run from the full store list and is
// read-only afterwards, except for the slugs claimed by stores created during
// the run.
type StoreNameIndex struct {
	exact      map[string]domain.Store
	normalized map[string]domain.Store
	byID       map[uuid.UUID]domain.Store
	slugs      map[string]struct{}
	entries    []storeIndexEntry
}

type storeIndexEntry struct {
	key    string
	tokens []string
	store  domain.Store
}

// NewStoreNameIndex indexes stores in the order given. When two stores share a
// name the first one wins.
func NewStoreNameIndex(stores []domain.Store) *StoreNameIndex {
	idx := &StoreNameIndex{
		exact:      make(map[string]domain.Store, len(stores)),
		normalized: make(map[string]domain.Store, len(stores)),
		byID:       make(map[uuid.UUID]domain.Store, len(stores)),
		slugs:      make(map[string]struct{}, len(stores)),
		entries:    make([]storeIndexEntry, 0, len(stores)),
	}
	for _, store := range stores {
		idx.byID[store.ID] = store
		if store.Slug != nil && *store.Slug != "" {
			idx.slugs[*store.Slug] = struct{}{}
		}

		key := lowerTrim(store.Name)
		if key == "" {
			continue
		}
		if _, ok := idx.exact[key]; !ok {
			idx.exact[key] = store
		}
		norm := collapseSpaces(key)
		if _, ok := idx.normalized[norm]; !ok {
			idx.normalized[norm] = store
		}
		idx.entries = append(idx.entries, storeIndexEntry{
			key:    norm,
			tokens: strings.Fields(norm),
			store:  store,
		})
	}
	return idx
}

// claimSlug returns base, or base with the first free numeric suffix when a
// known store already uses it, and records the result as taken.
func (idx *StoreNameIndex) claimSlug(base string) string {
	if base == "" {
		return ""
	}
	slug := base
	for n := 2; ; n++ {
		if _, taken := idx.slugs[slug]; !taken {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	idx.slugs[slug] = struct{}{}
	return slug
}

func (idx *StoreNameIndex) ByID(id uuid.UUID) (domain.Store, bool) {
	store, ok := idx.byID[id]
	return store, ok
}

// Resolve maps a free-text store name to a store. Strategies are tried from
// most to least exact: exact, whitespace-normalized, substring containment,
// then word subset. The first hit wins.
func (idx *StoreNameIndex) Resolve(rawName string) (*domain.Store, error) {
	key := lowerTrim(rawName)
	if key == "" {
		return nil, &StoreNotFoundError{Name: strings.TrimSpace(rawName)}
	}

	if store, ok := idx.exact[key]; ok {
		return &store, nil
	}

	norm := collapseSpaces(key)
	if store, ok := idx.normalized[norm]; ok {
		return &store, nil
	}

	for _, entry := range idx.entries {
		if strings.Contains(entry.key, norm) || strings.Contains(norm, entry.key) {
			store := entry.store
			return &store, nil
		}
	}

	tokens := strings.Fields(norm)
	for _, entry := range idx.entries {
		if tokensCovered(tokens, entry.tokens) {
			store := entry.store
			return &store, nil
		}
	}

	return nil, &StoreNotFoundError{
		Name:        strings.TrimSpace(rawName),
		Suggestions: idx.suggest(norm, tokens),
	}
}

// suggest returns up to maxStoreSuggestions store names sharing at least one
// token with the input, closest spelling first.
func (idx *StoreNameIndex) suggest(norm string, tokens []string) []string {
	type candidate struct {
		name     string
		distance int
	}
	seen := make(map[string]struct{})
	candidates := make([]candidate, 0)
	for _, entry := range idx.entries {
		if !tokensOverlap(tokens, entry.tokens) {
			continue
		}
		if _, dup := seen[entry.store.Name]; dup {
			continue
		}
		seen[entry.store.Name] = struct{}{}
		candidates = append(candidates, candidate{
			name:     entry.store.Name,
			distance: levenshtein.DistanceForStrings([]rune(norm), []rune(entry.key), levenshtein.DefaultOptions),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > maxStoreSuggestions {
		candidates = candidates[:maxStoreSuggestions]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.name)
	}
	return out
}

// tokensCovered reports whether every input token is a substring of some store
// token or contains one.
func tokensCovered(input, store []string) bool {
	if len(input) == 0 {
		return false
	}
	for _, in := range input {
		if !tokenMatchesAny(in, store) {
			return false
		}
	}
	return true
}

func tokensOverlap(input, store []string) bool {
	for _, in := range input {
		if tokenMatchesAny(in, store) {
			return true
		}
	}
	return false
}

func tokenMatchesAny(token string, candidates []string) bool {
	for _, c := range candidates {
		if strings.Contains(c, token) || strings.Contains(token, c) {
			return true
		}
	}
	return false
}

func lowerTrim(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
