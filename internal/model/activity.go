package model

// Activity is one leaf checkbox in the systems catalog. It has no
// identity beyond its value; two activities are the same iff all four
// fields are equal.
type Activity struct {
	System      string `json:"system"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Activity    string `json:"activity"`
}

// ActivityKey identifies a task group: every activity sharing a key
// lands in the same generated task.
type ActivityKey struct {
	System      string `json:"system"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

func (a Activity) Key() ActivityKey {
	return ActivityKey{System: a.System, Category: a.Category, Subcategory: a.Subcategory}
}

// LinkedActivity records which project and group produced a task.
type LinkedActivity struct {
	ProjectID   ProjectID `json:"projectId"`
	System      string    `json:"system"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory"`
}

func (l LinkedActivity) Key() ActivityKey {
	return ActivityKey{System: l.System, Category: l.Category, Subcategory: l.Subcategory}
}
