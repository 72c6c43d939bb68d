package model

import "time"

const (
	// DefaultProjectType is stored when a submission leaves projectType empty.
	DefaultProjectType = "General"
	// StatusNew is the status every message starts with.
	StatusNew = "new"
)

// Message represents a message submitted via the contact form.
type Message struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ProjectType string    `json:"projectType"`
	Message     string    `json:"message"`
	Datetime    time.Time `json:"datetime"`
	Status      string    `json:"status"` // open vocabulary, e.g. "new" | "read" | "replied"
}
