package client

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the server's user resource as it appears on the wire.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Step is one ordered unit of work inside a workflow. Status is one of
// "pending", "in_progress" or "completed".
type Step struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
	Status      string `json:"status"`
}

// Workflow mirrors the server's workflow resource. Status is one of "draft",
// "active" or "inactive"; Progress is derived server-side.
type Workflow struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Status      string                 `json:"status"`
	CreatedBy   uuid.UUID              `json:"created_by"`
	Steps       []Step                 `json:"steps"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Progress    int                    `json:"progress"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}
