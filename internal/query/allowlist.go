package query

import (
	"fmt"
	"slices"
	"sort"
)

// AllowList is the static per-resource configuration of which fields each
// kind of query parameter may touch. Field names are exact and case sensitive.
type AllowList struct {
	Resource   string
	Sortable   []string
	Rangeable  []string
	Searchable []string
	Filterable []string
	// Booleans are filterable fields that only accept "1" or "0".
	Booleans []string
	// Relations maps a searchable/filterable field to the related entity it
	// belongs to, e.g. "username" -> "user" on posts.
	Relations map[string]string
}

func (a AllowList) CanSort(field string) bool   { return slices.Contains(a.Sortable, field) }
func (a AllowList) CanRange(field string) bool  { return slices.Contains(a.Rangeable, field) }
func (a AllowList) CanSearch(field string) bool { return slices.Contains(a.Searchable, field) }
func (a AllowList) CanFilter(field string) bool { return slices.Contains(a.Filterable, field) }
func (a AllowList) IsBoolean(field string) bool { return slices.Contains(a.Booleans, field) }

// RelationOf returns the related entity a field nests under, or "" for a
// field of the resource itself.
func (a AllowList) RelationOf(field string) string {
	return a.Relations[field]
}

// Validate checks the list is internally consistent.
func (a AllowList) Validate() error {
	if a.Resource == "" {
		return fmt.Errorf("allow-list has no resource name")
	}
	for _, f := range a.Booleans {
		if !a.CanFilter(f) {
			return fmt.Errorf("%s: boolean field %q is not filterable", a.Resource, f)
		}
	}
	// sorted for a stable error
	fields := make([]string, 0, len(a.Relations))
	for f := range a.Relations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if a.Relations[f] == "" {
			return fmt.Errorf("%s: relation field %q has no relation name", a.Resource, f)
		}
		if !a.CanSearch(f) && !a.CanFilter(f) {
			return fmt.Errorf("%s: relation field %q is neither searchable nor filterable", a.Resource, f)
		}
	}
	return nil
}

// Registry maps resource names to allow-lists. It is filled once by
// NewRegistry and only read afterwards, so it needs no locking.
type Registry struct {
	lists map[string]AllowList
}

// NewRegistry validates and indexes the given allow-lists.
func NewRegistry(lists ...AllowList) (*Registry, error) {
	r := &Registry{lists: make(map[string]AllowList, len(lists))}
	for _, l := range lists {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.lists[l.Resource]; dup {
			return nil, fmt.Errorf("duplicate allow-list for resource %q", l.Resource)
		}
		r.lists[l.Resource] = l
	}
	return r, nil
}

// Lookup returns the allow-list for a resource.
func (r *Registry) Lookup(resource string) (AllowList, error) {
	l, ok := r.lists[resource]
	if !ok {
		return AllowList{}, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	return l, nil
}

// MustLookup is Lookup for startup wiring, where a missing resource is a
// configuration bug.
func (r *Registry) MustLookup(resource string) AllowList {
	l, err := r.Lookup(resource)
	if err != nil {
		panic(err)
	}
	return l
}

// Resources returns the registered resource names in sorted order.
func (r *Registry) Resources() []string {
	names := make([]string, 0, len(r.lists))
	for name := range r.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
