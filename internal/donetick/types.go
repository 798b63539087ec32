package donetick

import "encoding/json"

// Assignee is a user a chore can be assigned to.
type Assignee struct {
	// UserID is the Donetick user ID of the assignee
	UserID int `json:"userId"`
}

// Label is a tag attached to a chore.
type Label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NotificationMetadata configures a chore's notification behaviour.
type NotificationMetadata struct {
	// Nagging enables repeated overdue reminders
	Nagging bool `json:"nagging"`

	// Predue enables reminders before the due date
	Predue bool `json:"predue"`
}

// Chore is a task record as returned by the Donetick eAPI.
type Chore struct {
	ID                   int                  `json:"id"`
	Name                 string               `json:"name"`
	Description          string               `json:"description,omitempty"`
	FrequencyType        string               `json:"frequencyType"`
	Frequency            int                  `json:"frequency"`
	FrequencyMetadata    map[string]any       `json:"frequencyMetadata,omitempty"`
	NextDueDate          string               `json:"nextDueDate,omitempty"`
	IsRolling            bool                 `json:"isRolling"`
	AssignedTo           int                  `json:"assignedTo"`
	Assignees            []Assignee           `json:"assignees,omitempty"`
	AssignStrategy       string               `json:"assignStrategy,omitempty"`
	IsActive             bool                 `json:"isActive"`
	Notification         bool                 `json:"notification"`
	NotificationMetadata NotificationMetadata `json:"notificationMetadata"`
	Labels               []string             `json:"labels,omitempty"`
	LabelsV2             []Label              `json:"labelsV2,omitempty"`
	CircleID             int                  `json:"circleId"`
	CreatedAt            string               `json:"createdAt"`
	UpdatedAt            string               `json:"updatedAt"`
	CreatedBy            int                  `json:"createdBy"`
	UpdatedBy            int                  `json:"updatedBy,omitempty"`
	Status               string               `json:"status,omitempty"`
	Priority             int                  `json:"priority,omitempty"`
	IsPrivate            bool                 `json:"isPrivate"`
	Points               int                  `json:"points,omitempty"`
	SubTasks             []json.RawMessage    `json:"subTasks,omitempty"`
	ThingChore           map[string]any       `json:"thingChore,omitempty"`
}

// ChoreCreate is the request body for creating a chore.
// The eAPI expects capitalized field names on this endpoint.
type ChoreCreate struct {
	// Name is the chore name (required, 1-200 characters)
	Name string `json:"Name"`

	// Description is an optional free-form description
	Description string `json:"Description,omitempty"`

	// DueDate is the due date in RFC3339 or YYYY-MM-DD format
	DueDate string `json:"DueDate,omitempty"`

	// CreatedBy is the user ID of the creator
	CreatedBy int `json:"CreatedBy,omitempty"`
}

// ChoreUpdate is the request body for updating a chore.
// Only non-zero fields are sent.
type ChoreUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	NextDueDate string `json:"nextDueDate,omitempty"`
}

// CircleMember is a member of the user's circle (household).
type CircleMember struct {
	UserID    int    `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Role      string `json:"role"`
}

// APIError is the error body the eAPI returns on failures.
type APIError struct {
	Error   string         `json:"error"`
	Code    int            `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// ListChoresOptions filters the result of ListChores. Filtering
// happens client-side since the eAPI list endpoint takes no
// parameters.
type ListChoresOptions struct {
	// FilterActive restricts the result to chores matching this active
	// state when non-nil
	FilterActive *bool

	// AssignedTo restricts the result to chores assigned to this user
	// ID when non-nil
	AssignedTo *int
}
