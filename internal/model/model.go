package model

type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusCompleted}
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Document is a file attached to a task. Attachments are immutable once
// created: the server assigns StoredName and the client never renames or
// replaces a committed document.
type Document struct {
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type,omitempty"`
	SizeBytes    int64  `json:"size_bytes,omitempty"`
}

type Task struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`

	// DueDate is a calendar date (YYYY-MM-DD); the server treats it as an
	// opaque sortable string, so we do too.
	DueDate string `json:"due_date,omitempty"`

	AssignedTo string `json:"assigned_to,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`

	AttachedDocuments []Document `json:"attached_documents,omitempty"`
}

// TaskPatch carries a partial task update. Nil fields are left untouched,
// both on the wire (omitempty) and when patching the local store.
// Attachments are deliberately absent: documents are immutable after create.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	AssignedTo  *string   `json:"assigned_to,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && p.AssignedTo == nil
}

// User is the admin-visible read model. Passwords are write-only and never
// appear here.
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserPatch carries a partial user update. Role changes and password
// changes must be submitted as separate calls; mutate enforces that.
type UserPatch struct {
	Role     *Role   `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Pagination is server-derived metadata from the most recent task fetch.
// The client never computes these values itself.
type Pagination struct {
	TotalTasks  int `json:"total_tasks"`
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	PageSize    int `json:"page_size"`
}
