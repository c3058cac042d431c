package store

import (
	"path/filepath"
	"strings"
	"time"
)

// TimeLayout is the fixed-width timestamp format stored for every date column.
// Lexicographic order on these strings is chronological order.
const TimeLayout = "2006-01-02 15:04:05"

// Status is the lifecycle state of a case.
type Status string

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "InProgress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// DefaultStatusColor is used for any status without a configured colour.
const DefaultStatusColor = "#95a5a6"

// DefaultStatusOptions are inserted on first open.
var DefaultStatusOptions = []StatusOption{
	{Name: string(StatusNew), ColorCode: "#3498db"},
	{Name: string(StatusInProgress), ColorCode: "#f39c12"},
	{Name: string(StatusResolved), ColorCode: "#27ae60"},
	{Name: string(StatusClosed), ColorCode: "#95a5a6"},
}

// ParseStatus accepts the canonical names case-insensitively, plus a few
// spellings operators type by hand ("in progress", "in_progress").
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)
	switch norm {
	case "new":
		return StatusNew, true
	case "inprogress":
		return StatusInProgress, true
	case "resolved":
		return StatusResolved, true
	case "closed":
		return StatusClosed, true
	}
	return "", false
}

// StatusColor returns the colour code for a status name.
func StatusColor(name string) string {
	for _, o := range DefaultStatusOptions {
		if o.Name == name {
			return o.ColorCode
		}
	}
	return DefaultStatusColor
}

// Case is a customer-reported issue record. Name fields are resolved from
// their id references when read from the store.
type Case struct {
	ID                 int64  `json:"id"`
	CustomerName       string `json:"customer_name"`
	SubscriberNumber   string `json:"subscriber_number"`
	Phone              string `json:"phone,omitempty"`
	Address            string `json:"address,omitempty"`
	CategoryID         int64  `json:"category_id,omitempty"`
	CategoryName       string `json:"category_name,omitempty"`
	Status             Status `json:"status"`
	ProblemDescription string `json:"problem_description,omitempty"`
	ActionsTaken       string `json:"actions_taken,omitempty"`
	LastMeterReading   string `json:"last_meter_reading,omitempty"`
	LastReadingDate    string `json:"last_reading_date,omitempty"`
	DebtAmount         string `json:"debt_amount,omitempty"`
	CreatedDate        string `json:"created_date"`
	ModifiedDate       string `json:"modified_date"`
	CreatedBy          int64  `json:"created_by,omitempty"`
	CreatedByName      string `json:"created_by_name,omitempty"`
	ModifiedBy         int64  `json:"modified_by,omitempty"`
	ModifiedByName     string `json:"modified_by_name,omitempty"`
	SolvedBy           int64  `json:"solved_by,omitempty"`
	SolvedByName       string `json:"solved_by_name,omitempty"`
}

// Year returns the year prefix of the created date, or "" when unset.
func (c Case) Year() string {
	if len(c.CreatedDate) < 4 {
		return ""
	}
	return c.CreatedDate[:4]
}

// Category is a named issue classification.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Employee is a named actor referenced as author of cases, attachments,
// correspondences and audit entries.
type Employee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StatusOption pairs a status name with its display colour.
type StatusOption struct {
	Name      string `json:"name"`
	ColorCode string `json:"color_code"`
}

// Attachment is file metadata owned by exactly one case.
type Attachment struct {
	ID             int64  `json:"id"`
	CaseID         int64  `json:"case_id"`
	FileName       string `json:"file_name"`
	FilePath       string `json:"file_path"`
	FileType       string `json:"file_type"`
	Description    string `json:"description,omitempty"`
	UploadDate     string `json:"upload_date"`
	UploadedBy     int64  `json:"uploaded_by,omitempty"`
	UploadedByName string `json:"uploaded_by_name,omitempty"`
}

// Correspondence is a message recorded against a case. Both sequence numbers
// are assigned by the store and never reused.
type Correspondence struct {
	ID                   int64  `json:"id"`
	CaseID               int64  `json:"case_id"`
	SequenceNumber       int    `json:"sequence_number"`
	YearlySequenceNumber int    `json:"yearly_sequence_number"`
	Sender               string `json:"sender"`
	MessageContent       string `json:"message_content"`
	CreatedDate          string `json:"created_date"`
	SentDate             string `json:"sent_date,omitempty"`
	CreatedBy            int64  `json:"created_by,omitempty"`
	CreatedByName        string `json:"created_by_name,omitempty"`
}

// AuditEntry is one immutable line of a case's history.
type AuditEntry struct {
	ID              int64  `json:"id"`
	CaseID          int64  `json:"case_id"`
	ActionType      string `json:"action_type"`
	Description     string `json:"action_description"`
	PerformedBy     int64  `json:"performed_by,omitempty"`
	PerformedByName string `json:"performed_by_name,omitempty"`
	Timestamp       string `json:"timestamp"`
}

// Audit action types written by the application.
const (
	ActionCreate               = "Create"
	ActionUpdate               = "Update"
	ActionIntake               = "Intake"
	ActionAttachmentAdded      = "AttachmentAdded"
	ActionAttachmentDeleted    = "AttachmentDeleted"
	ActionCorrespondenceAdded  = "CorrespondenceAdded"
	ActionCorrespondenceDelete = "CorrespondenceDeleted"
)

// FileTypeFor classifies a file by its extension.
func FileTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return "image"
	case ".pdf":
		return "pdf"
	case ".doc", ".docx", ".odt", ".rtf":
		return "document"
	case ".xls", ".xlsx", ".ods", ".csv":
		return "spreadsheet"
	case ".txt", ".log", ".md":
		return "text"
	case ".zip", ".rar", ".7z", ".tar", ".gz":
		return "archive"
	default:
		return "other"
	}
}

func formatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
