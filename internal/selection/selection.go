// Package selection models a project's activity selection as explicit
// state with pure transition methods. Ancestor deselection cascades to
// descendants in the same update, so the tuple set never references a
// system, category or subcategory that is toggled off.
package selection

import (
	"sort"

	"fieldops/internal/catalog"
	"fieldops/internal/model"
)

type categoryKey struct {
	System   string
	Category string
}

type subcategoryKey struct {
	System      string
	Category    string
	Subcategory string
}

type State struct {
	systems       map[string]bool
	categories    map[categoryKey]bool
	subcategories map[subcategoryKey]bool
	activities    map[model.Activity]bool
}

func NewState() *State {
	return &State{
		systems:       map[string]bool{},
		categories:    map[categoryKey]bool{},
		subcategories: map[subcategoryKey]bool{},
		activities:    map[model.Activity]bool{},
	}
}

// FromActivities rebuilds selection state from a submitted activity
// list, toggling on every ancestor and collapsing duplicates.
func FromActivities(activities []model.Activity) *State {
	s := NewState()
	for _, a := range activities {
		s.systems[a.System] = true
		s.categories[categoryKey{a.System, a.Category}] = true
		s.subcategories[subcategoryKey{a.System, a.Category, a.Subcategory}] = true
		s.activities[a] = true
	}
	return s
}

func (s *State) SystemSelected(system string) bool { return s.systems[system] }

func (s *State) CategorySelected(system, category string) bool {
	return s.categories[categoryKey{system, category}]
}

func (s *State) SubcategorySelected(system, category, subcategory string) bool {
	return s.subcategories[subcategoryKey{system, category, subcategory}]
}

func (s *State) ActivitySelected(a model.Activity) bool { return s.activities[a] }

// ToggleSystem flips a system. Deselecting removes every descendant
// category, subcategory and activity tuple under it.
func (s *State) ToggleSystem(system string) {
	if s.systems[system] {
		delete(s.systems, system)
		for k := range s.categories {
			if k.System == system {
				delete(s.categories, k)
			}
		}
		for k := range s.subcategories {
			if k.System == system {
				delete(s.subcategories, k)
			}
		}
		for a := range s.activities {
			if a.System == system {
				delete(s.activities, a)
			}
		}
		return
	}
	s.systems[system] = true
}

func (s *State) ToggleCategory(system, category string) {
	k := categoryKey{system, category}
	if s.categories[k] {
		delete(s.categories, k)
		for sk := range s.subcategories {
			if sk.System == system && sk.Category == category {
				delete(s.subcategories, sk)
			}
		}
		for a := range s.activities {
			if a.System == system && a.Category == category {
				delete(s.activities, a)
			}
		}
		return
	}
	s.categories[k] = true
}

func (s *State) ToggleSubcategory(system, category, subcategory string) {
	k := subcategoryKey{system, category, subcategory}
	if s.subcategories[k] {
		delete(s.subcategories, k)
		for a := range s.activities {
			if a.System == system && a.Category == category && a.Subcategory == subcategory {
				delete(s.activities, a)
			}
		}
		return
	}
	s.subcategories[k] = true
}

// SetActivity adds or removes exactly one tuple. Adding also marks the
// ancestors selected; removing an absent tuple is a no-op.
func (s *State) SetActivity(a model.Activity, checked bool) {
	if !checked {
		delete(s.activities, a)
		return
	}
	s.systems[a.System] = true
	s.categories[categoryKey{a.System, a.Category}] = true
	s.subcategories[subcategoryKey{a.System, a.Category, a.Subcategory}] = true
	s.activities[a] = true
}

// SelectAll adds every catalog activity in the scope. Empty
// category/subcategory widen the scope, mirroring catalog.Activities.
func (s *State) SelectAll(c *catalog.Catalog, system, category, subcategory string) {
	for _, a := range c.Activities(system, category, subcategory) {
		s.SetActivity(a, true)
	}
}

// UnselectAll removes every selected tuple in the scope, leaving the
// ancestor toggles as they are.
func (s *State) UnselectAll(system, category, subcategory string) {
	for a := range s.activities {
		if system != "" && a.System != system {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		if subcategory != "" && a.Subcategory != subcategory {
			continue
		}
		delete(s.activities, a)
	}
}

// Activities returns the flat tuple list, sorted for stable output.
func (s *State) Activities() []model.Activity {
	out := make([]model.Activity, 0, len(s.activities))
	for a := range s.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i], out[j]
		if ai.System != aj.System {
			return ai.System < aj.System
		}
		if ai.Category != aj.Category {
			return ai.Category < aj.Category
		}
		if ai.Subcategory != aj.Subcategory {
			return ai.Subcategory < aj.Subcategory
		}
		return ai.Activity < aj.Activity
	})
	return out
}
