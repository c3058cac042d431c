package intake

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// Record is one case as it arrives in an intake file.
type Record struct {
	CustomerName       string     `json:"customer_name"`
	SubscriberNumber   flexString `json:"subscriber_number"`
	Phone              flexString `json:"phone"`
	Address            string     `json:"address"`
	Category           string     `json:"category"`
	Status             string     `json:"status"`
	ProblemDescription string     `json:"problem_description"`
	ActionsTaken       string     `json:"actions_taken"`
	LastMeterReading   flexString `json:"last_meter_reading"`
	LastReadingDate    string     `json:"last_reading_date"`
	DebtAmount         flexString `json:"debt_amount"`
}

// flexString accepts a JSON string or a bare number. Numbers keep their
// literal text so "0042" style identifiers and amounts survive unchanged.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = flexString(n)
	}
	return nil
}

// ParseRecord decodes a single JSON object.
func ParseRecord(raw []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// Case converts the record to a store case. The category id is resolved by
// the caller.
func (r Record) Case(categoryID int64) store.Case {
	return store.Case{
		CustomerName:       r.CustomerName,
		SubscriberNumber:   string(r.SubscriberNumber),
		Phone:              string(r.Phone),
		Address:            r.Address,
		CategoryID:         categoryID,
		Status:             store.Status(r.Status),
		ProblemDescription: r.ProblemDescription,
		ActionsTaken:       r.ActionsTaken,
		LastMeterReading:   string(r.LastMeterReading),
		LastReadingDate:    r.LastReadingDate,
		DebtAmount:         string(r.DebtAmount),
	}
}
