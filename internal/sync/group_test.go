package sync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"fieldops/internal/model"
)

func act(system, category, subcategory, activity string) model.Activity {
	return model.Activity{System: system, Category: category, Subcategory: subcategory, Activity: activity}
}

// sortGroups lets go-cmp treat group lists and activity-name lists as
// sets, since output order is not part of the contract.
var sortGroups = []cmp.Option{
	cmpopts.SortSlices(func(a, b TaskGroup) bool {
		if a.Key.System != b.Key.System {
			return a.Key.System < b.Key.System
		}
		if a.Key.Category != b.Key.Category {
			return a.Key.Category < b.Key.Category
		}
		return a.Key.Subcategory < b.Key.Subcategory
	}),
	cmpopts.SortSlices(func(a, b string) bool { return a < b }),
}

func TestGroupActivities_SpecScenario(t *testing.T) {
	groups := GroupActivities([]model.Activity{
		act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
		act("MV SWGR", "Overcurrent", "Overcurrent", "Timing"),
		act("MV SWGR", "Relay", "Distance", "Impedance"),
	})

	want := []TaskGroup{
		{Key: model.ActivityKey{System: "MV SWGR", Category: "Overcurrent", Subcategory: "Overcurrent"}, Activities: []string{"Pickup", "Timing"}},
		{Key: model.ActivityKey{System: "MV SWGR", Category: "Relay", Subcategory: "Distance"}, Activities: []string{"Impedance"}},
	}
	if diff := cmp.Diff(want, groups, sortGroups...); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupActivities_EmptyInput(t *testing.T) {
	assert.Empty(t, GroupActivities(nil))
	assert.Empty(t, GroupActivities([]model.Activity{}))
}

func TestGroupActivities_DeduplicatesWithinGroup(t *testing.T) {
	groups := GroupActivities([]model.Activity{
		act("A", "B", "C", "x"),
		act("A", "B", "C", "x"),
		act("A", "B", "C", "y"),
	})

	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []string{"x", "y"}, groups[0].Activities)
}

func TestGroupActivities_SameNameAcrossGroups(t *testing.T) {
	groups := GroupActivities([]model.Activity{
		act("A", "B", "C", "Pickup"),
		act("A", "B", "D", "Pickup"),
	})

	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.Equal(t, []string{"Pickup"}, g.Activities)
	}
}

func TestGroupActivities_EmptyKeyFieldsGroupAsIs(t *testing.T) {
	groups := GroupActivities([]model.Activity{
		act("", "", "", "orphan"),
		act("", "", "", "stray"),
		act("A", "", "", "other"),
	})

	require.Len(t, groups, 2)
}

func TestGroupActivities_OrderInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.Custom(func(t *rapid.T) model.Activity {
			pick := func(label string, opts ...string) string {
				return rapid.SampledFrom(opts).Draw(t, label)
			}
			return model.Activity{
				System:      pick("system", "MV SWGR", "LV SWGR", ""),
				Category:    pick("category", "Overcurrent", "Relay", "ACB"),
				Subcategory: pick("subcategory", "Overcurrent", "Distance", "Primary Injection"),
				Activity:    pick("activity", "Pickup", "Timing", "Impedance", "Long Time"),
			}
		})
		activities := rapid.SliceOfN(gen, 0, 40).Draw(t, "activities")
		perm := rapid.Permutation(activities).Draw(t, "perm")

		a := GroupActivities(activities)
		b := GroupActivities(perm)

		if diff := cmp.Diff(a, b, sortGroups...); diff != "" {
			t.Fatalf("permutation changed groups (-orig +perm):\n%s", diff)
		}
	})
}

func TestGroupActivities_RegroupIdempotence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gen := rapid.Custom(func(t *rapid.T) model.Activity {
			pick := func(label string, opts ...string) string {
				return rapid.SampledFrom(opts).Draw(t, label)
			}
			return model.Activity{
				System:      pick("system", "A", "B"),
				Category:    pick("category", "c1", "c2"),
				Subcategory: pick("subcategory", "s1", "s2", "s3"),
				Activity:    pick("activity", "x", "y", "z"),
			}
		})
		activities := rapid.SliceOfN(gen, 0, 30).Draw(t, "activities")

		once := GroupActivities(activities)
		twice := GroupActivities(Expand(once))

		if diff := cmp.Diff(once, twice, sortGroups...); diff != "" {
			t.Fatalf("regrouping changed groups (-once +twice):\n%s", diff)
		}
	})
}
