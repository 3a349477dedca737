package model

import "time"

type ProjectID string

type Project struct {
	ID          ProjectID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Customer    string     `json:"customer,omitempty"`
	Location    string     `json:"location,omitempty"`
	Status      string     `json:"status,omitempty"`
	Systems     []string   `json:"systems,omitempty"`
	Activities  []Activity `json:"activities,omitempty"`
	Team        []string   `json:"team,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
