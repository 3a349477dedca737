package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/catalog"
	"fieldops/internal/model"
)

func act(system, category, subcategory, activity string) model.Activity {
	return model.Activity{System: system, Category: category, Subcategory: subcategory, Activity: activity}
}

func TestSetActivity_AddAndRemove(t *testing.T) {
	s := NewState()

	a := act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup")
	s.SetActivity(a, true)

	assert.True(t, s.ActivitySelected(a))
	assert.True(t, s.SystemSelected("MV SWGR"))
	assert.True(t, s.CategorySelected("MV SWGR", "Overcurrent"))
	assert.True(t, s.SubcategorySelected("MV SWGR", "Overcurrent", "Overcurrent"))

	s.SetActivity(a, false)
	assert.False(t, s.ActivitySelected(a))

	// removing an absent tuple is a no-op
	s.SetActivity(a, false)
	assert.Empty(t, s.Activities())
}

func TestToggleSystem_CascadesToDescendants(t *testing.T) {
	s := NewState()
	s.SetActivity(act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"), true)
	s.SetActivity(act("MV SWGR", "Relay", "Distance", "Impedance"), true)
	s.SetActivity(act("LV SWGR", "ACB", "Primary Injection", "Long Time"), true)

	s.ToggleSystem("MV SWGR")

	assert.False(t, s.SystemSelected("MV SWGR"))
	assert.False(t, s.CategorySelected("MV SWGR", "Overcurrent"))
	assert.False(t, s.CategorySelected("MV SWGR", "Relay"))
	assert.False(t, s.SubcategorySelected("MV SWGR", "Relay", "Distance"))

	require.Len(t, s.Activities(), 1)
	assert.Equal(t, "LV SWGR", s.Activities()[0].System)
}

func TestToggleSystem_OnDoesNotImplyActivities(t *testing.T) {
	s := NewState()
	s.ToggleSystem("MV SWGR")

	assert.True(t, s.SystemSelected("MV SWGR"))
	assert.Empty(t, s.Activities())
}

func TestToggleCategory_CascadesWithinCategoryOnly(t *testing.T) {
	s := NewState()
	s.SetActivity(act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"), true)
	s.SetActivity(act("MV SWGR", "Overcurrent", "Earth Fault", "Timing"), true)
	s.SetActivity(act("MV SWGR", "Relay", "Distance", "Impedance"), true)

	s.ToggleCategory("MV SWGR", "Overcurrent")

	assert.False(t, s.CategorySelected("MV SWGR", "Overcurrent"))
	assert.False(t, s.SubcategorySelected("MV SWGR", "Overcurrent", "Earth Fault"))
	assert.True(t, s.SystemSelected("MV SWGR"))

	require.Len(t, s.Activities(), 1)
	assert.Equal(t, "Relay", s.Activities()[0].Category)
}

func TestToggleSubcategory_CascadesToExactTriple(t *testing.T) {
	s := NewState()
	s.SetActivity(act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"), true)
	s.SetActivity(act("MV SWGR", "Overcurrent", "Overcurrent", "Timing"), true)
	s.SetActivity(act("MV SWGR", "Overcurrent", "Earth Fault", "Pickup"), true)

	s.ToggleSubcategory("MV SWGR", "Overcurrent", "Overcurrent")

	require.Len(t, s.Activities(), 1)
	assert.Equal(t, "Earth Fault", s.Activities()[0].Subcategory)
	assert.True(t, s.CategorySelected("MV SWGR", "Overcurrent"))
}

func TestSelectAllAndUnselectAll(t *testing.T) {
	c := catalog.DefaultCatalog()
	s := NewState()

	s.SelectAll(c, "MV SWGR", "Overcurrent", "")
	assert.Equal(t, len(c.Activities("MV SWGR", "Overcurrent", "")), len(s.Activities()))

	s.UnselectAll("MV SWGR", "Overcurrent", "Earth Fault")
	assert.Equal(t, len(c.Activities("MV SWGR", "Overcurrent", "Overcurrent")), len(s.Activities()))

	s.UnselectAll("MV SWGR", "", "")
	assert.Empty(t, s.Activities())
	// scope toggles survive an unselect-all
	assert.True(t, s.SystemSelected("MV SWGR"))
}

func TestFromActivities_CollapsesDuplicates(t *testing.T) {
	in := []model.Activity{
		act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
		act("MV SWGR", "Overcurrent", "Overcurrent", "Pickup"),
		act("MV SWGR", "Overcurrent", "Overcurrent", "Timing"),
	}

	s := FromActivities(in)

	assert.Len(t, s.Activities(), 2)
	assert.True(t, s.SystemSelected("MV SWGR"))
}

func TestActivities_SortedStable(t *testing.T) {
	s := NewState()
	s.SetActivity(act("B", "c", "d", "z"), true)
	s.SetActivity(act("A", "c", "d", "y"), true)
	s.SetActivity(act("A", "b", "d", "x"), true)

	got := s.Activities()
	assert.Equal(t, []model.Activity{
		act("A", "b", "d", "x"),
		act("A", "c", "d", "y"),
		act("B", "c", "d", "z"),
	}, got)
}
