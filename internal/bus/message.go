package bus

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Change actions.
const (
	ActionCreated               = "created"
	ActionUpdated               = "updated"
	ActionDeleted               = "deleted"
	ActionAttachmentAdded       = "attachment_added"
	ActionAttachmentDeleted     = "attachment_deleted"
	ActionCorrespondenceAdded   = "correspondence_added"
	ActionCorrespondenceDeleted = "correspondence_deleted"
	ActionIntake                = "intake"
)

// CaseChange announces that a case was mutated.
type CaseChange struct {
	MessageID string `json:"message_id"`
	CaseID    int64  `json:"case_id"`
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Timestamp int64  `json:"timestamp"`
}

// complete fills in a message id and timestamp when missing.
func (c CaseChange) complete(now time.Time) CaseChange {
	if c.MessageID == "" {
		c.MessageID = uuid.NewString()
	}
	if c.Timestamp == 0 {
		c.Timestamp = now.Unix()
	}
	return c
}

func (c CaseChange) fields() map[string]interface{} {
	return map[string]interface{}{
		"message_id": c.MessageID,
		"case_id":    c.CaseID,
		"action":     c.Action,
		"actor":      c.Actor,
		"timestamp":  c.Timestamp,
	}
}

func caseChangeFromFields(f map[string]string) (CaseChange, error) {
	c := CaseChange{
		MessageID: f["message_id"],
		Action:    f["action"],
		Actor:     f["actor"],
	}
	id, err := strconv.ParseInt(f["case_id"], 10, 64)
	if err != nil {
		return CaseChange{}, fmt.Errorf("invalid case_id %q: %w", f["case_id"], err)
	}
	c.CaseID = id
	if ts, err := parseTimestamp(f["timestamp"]); err == nil {
		c.Timestamp = ts
	}
	return c, nil
}

// parseTimestamp parses a timestamp string to unix seconds.
func parseTimestamp(timestamp string) (int64, error) {
	if timestamp == "" {
		return time.Now().Unix(), nil
	}

	// Try numeric epoch (seconds or milliseconds)
	if n, err := strconv.ParseInt(timestamp, 10, 64); err == nil {
		if n > 1_000_000_000_000 {
			return n / 1000, nil
		}
		return n, nil
	}

	if ts, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
		return ts.Unix(), nil
	}

	return time.Now().Unix(), fmt.Errorf("unable to parse timestamp: %s", timestamp)
}
