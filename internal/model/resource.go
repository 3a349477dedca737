package model

import "time"

// Field resources: test kits, fleet cars and team members. Plain CRUD
// records with no derived state.

type Kit struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Serial         string    `json:"serial,omitempty"`
	CalibrationDue string    `json:"calibrationDue,omitempty"` // YYYY-MM-DD
	Status         string    `json:"status,omitempty"`
	AssignedTo     string    `json:"assignedTo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Car struct {
	ID         string    `json:"id"`
	Plate      string    `json:"plate"`
	Model      string    `json:"model,omitempty"`
	Status     string    `json:"status,omitempty"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	Odometer   int       `json:"odometer,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type TeamMember struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
