package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

func caseScope(caseID int64) string { return fmt.Sprintf("case:%d", caseID) }
func yearScope(year string) string  { return "year:" + year }

// nextCounter bumps a counter and returns its new value.
func nextCounter(ctx context.Context, tx *sql.Tx, scope string) (int, error) {
	if _, err := tx.ExecContext(ctx, `INSERT INTO correspondence_counters (scope, last_value) VALUES (?, 1)
		ON CONFLICT(scope) DO UPDATE SET last_value = last_value + 1`, scope); err != nil {
		return 0, unavailable("failed to bump counter "+scope, err)
	}
	var v int
	if err := tx.QueryRowContext(ctx, `SELECT last_value FROM correspondence_counters WHERE scope = ?`, scope).Scan(&v); err != nil {
		return 0, unavailable("failed to read counter "+scope, err)
	}
	return v, nil
}

func (s *Store) peekCounter(ctx context.Context, scope string) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT last_value FROM correspondence_counters WHERE scope = ?), 0)`, scope).Scan(&v)
	if err != nil {
		return 0, unavailable("failed to read counter "+scope, err)
	}
	return v + 1, nil
}

// AddCorrespondence stores a message for a case and assigns its per-case and
// per-year sequence numbers. Numbers are allocated from counters, so a
// deleted correspondence never frees its number.
func (s *Store) AddCorrespondence(ctx context.Context, c Correspondence) (out Correspondence, err error) {
	defer func(start time.Time) { s.observe("add_correspondence", start, err) }(time.Now())

	c.MessageContent = strings.TrimSpace(c.MessageContent)
	if err := ValidateCorrespondence(c); err != nil {
		return Correspondence{}, err
	}
	if c.CreatedDate == "" {
		c.CreatedDate = s.timestamp()
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM cases WHERE id = ?`, c.CaseID).Scan(&n); err != nil {
			return unavailable("failed to check case", err)
		}
		if n == 0 {
			return notFound("case", c.CaseID)
		}

		seq, err := nextCounter(ctx, tx, caseScope(c.CaseID))
		if err != nil {
			return err
		}
		yearly, err := nextCounter(ctx, tx, yearScope(c.CreatedDate[:4]))
		if err != nil {
			return err
		}
		c.SequenceNumber, c.YearlySequenceNumber = seq, yearly

		res, err := tx.ExecContext(ctx, `INSERT INTO correspondences (
			case_id, sequence_number, yearly_sequence_number, sender, message_content,
			created_date, sent_date, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.CaseID, c.SequenceNumber, c.YearlySequenceNumber, c.Sender, c.MessageContent,
			c.CreatedDate, c.SentDate, nullID(c.CreatedBy))
		if err != nil {
			return unavailable("failed to insert correspondence", err)
		}
		c.ID, err = res.LastInsertId()
		if err != nil {
			return unavailable("failed to read correspondence id", err)
		}
		return nil
	})
	if err != nil {
		return Correspondence{}, err
	}
	return c, nil
}

// ValidateCorrespondence checks the fields AddCorrespondence requires. An
// empty CreatedDate is allowed and defaults to now on save.
func ValidateCorrespondence(c Correspondence) error {
	if strings.TrimSpace(c.MessageContent) == "" {
		return &ValidationError{Field: "message_content", Message: "is required"}
	}
	if c.CreatedDate != "" && len(c.CreatedDate) < 4 {
		return &ValidationError{Field: "created_date", Message: fmt.Sprintf("malformed date %q", c.CreatedDate)}
	}
	return nil
}

// GetNextCorrespondenceNumbers reports the numbers the next correspondence
// on caseID would receive if it were added now. Nothing is reserved.
func (s *Store) GetNextCorrespondenceNumbers(ctx context.Context, caseID int64) (seq, yearly int, err error) {
	seq, err = s.peekCounter(ctx, caseScope(caseID))
	if err != nil {
		return 0, 0, err
	}
	yearly, err = s.peekCounter(ctx, yearScope(s.timestamp()[:4]))
	if err != nil {
		return 0, 0, err
	}
	return seq, yearly, nil
}

// GetCorrespondences lists a case's correspondences in sequence order.
func (s *Store) GetCorrespondences(ctx context.Context, caseID int64) (out []Correspondence, err error) {
	defer func(start time.Time) { s.observe("get_correspondences", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.case_id, c.sequence_number, c.yearly_sequence_number,
		c.sender, c.message_content, c.created_date, c.sent_date, c.created_by, COALESCE(e.name, '')
		FROM correspondences c LEFT JOIN employees e ON e.id = c.created_by
		WHERE c.case_id = ? ORDER BY c.sequence_number`, caseID)
	if err != nil {
		return nil, unavailable("failed to query correspondences", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Correspondence
		var by sql.NullInt64
		if err := rows.Scan(&c.ID, &c.CaseID, &c.SequenceNumber, &c.YearlySequenceNumber,
			&c.Sender, &c.MessageContent, &c.CreatedDate, &c.SentDate, &by, &c.CreatedByName); err != nil {
			return nil, unavailable("failed to scan correspondence", err)
		}
		c.CreatedBy = idFrom(by)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCorrespondence removes one correspondence and returns the case it
// belonged to.
func (s *Store) DeleteCorrespondence(ctx context.Context, id int64) (caseID int64, err error) {
	defer func(start time.Time) { s.observe("delete_correspondence", start, err) }(time.Now())

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT case_id FROM correspondences WHERE id = ?`, id).Scan(&caseID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("correspondence", id)
		}
		if err != nil {
			return unavailable("failed to load correspondence", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM correspondences WHERE id = ?`, id); err != nil {
			return unavailable(fmt.Sprintf("failed to delete correspondence %d", id), err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return caseID, nil
}
