package sync

import "fieldops/internal/model"

// TaskGroup is the derived unit of task generation: one group per
// distinct (system, category, subcategory) key, carrying the
// deduplicated activity names under it.
type TaskGroup struct {
	Key        model.ActivityKey
	Activities []string
}

// GroupActivities groups a project's activity tuples by their key in a
// single pass. Activity names are deduplicated within a group; the
// same name appearing under different keys stays in both groups.
// Tuples are grouped by whatever key they carry, empty fields
// included; validation is a form concern, not ours. Output order is
// not significant.
func GroupActivities(activities []model.Activity) []TaskGroup {
	byKey := map[model.ActivityKey]int{}
	groups := make([]TaskGroup, 0)

	for _, a := range activities {
		key := a.Key()
		idx, ok := byKey[key]
		if !ok {
			idx = len(groups)
			byKey[key] = idx
			groups = append(groups, TaskGroup{Key: key})
		}
		if !containsName(groups[idx].Activities, a.Activity) {
			groups[idx].Activities = append(groups[idx].Activities, a.Activity)
		}
	}
	return groups
}

// Expand flattens groups back into activity tuples. Re-grouping the
// result yields the same group set.
func Expand(groups []TaskGroup) []model.Activity {
	var out []model.Activity
	for _, g := range groups {
		for _, name := range g.Activities {
			out = append(out, model.Activity{
				System:      g.Key.System,
				Category:    g.Key.Category,
				Subcategory: g.Key.Subcategory,
				Activity:    name,
			})
		}
	}
	return out
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
