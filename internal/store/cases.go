package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Field names accepted by SearchCases.
const (
	SearchAll              = "all"
	SearchCustomerName     = "customer_name"
	SearchSubscriberNumber = "subscriber_number"
	SearchAddress          = "address"
	SearchCategory         = "category"
	SearchStatus           = "status"
	SearchEmployee         = "employee"
)

const caseColumns = `c.id, c.customer_name, c.subscriber_number, c.phone, c.address,
	c.category_id, COALESCE(cat.name, ''), c.status, c.problem_description, c.actions_taken,
	c.last_meter_reading, c.last_reading_date, c.debt_amount, c.created_date, c.modified_date,
	c.created_by, COALESCE(ce.name, ''), c.modified_by, COALESCE(me.name, ''),
	c.solved_by, COALESCE(se.name, '')`

const caseFrom = ` FROM cases c
	LEFT JOIN categories cat ON cat.id = c.category_id
	LEFT JOIN employees ce ON ce.id = c.created_by
	LEFT JOIN employees me ON me.id = c.modified_by
	LEFT JOIN employees se ON se.id = c.solved_by`

const caseOrder = ` ORDER BY c.created_date DESC, c.id DESC`

// ValidateCase normalises c in place and enforces the required fields.
// AddCase and UpdateCase apply it too.
func ValidateCase(c *Case) error {
	c.CustomerName = strings.TrimSpace(c.CustomerName)
	c.SubscriberNumber = strings.TrimSpace(c.SubscriberNumber)
	if c.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Message: "is required"}
	}
	if c.SubscriberNumber == "" {
		return &ValidationError{Field: "subscriber_number", Message: "is required"}
	}
	if strings.TrimSpace(string(c.Status)) == "" {
		c.Status = StatusNew
		return nil
	}
	st, ok := ParseStatus(string(c.Status))
	if !ok {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", c.Status)}
	}
	c.Status = st
	return nil
}

// AddCase validates and inserts a new case, stamping created and modified
// date and author. It returns the new id.
func (s *Store) AddCase(ctx context.Context, c Case) (id int64, err error) {
	defer func(start time.Time) { s.observe("add_case", start, err) }(time.Now())

	if err := ValidateCase(&c); err != nil {
		return 0, err
	}
	now := s.timestamp()
	if c.ModifiedBy == 0 {
		c.ModifiedBy = c.CreatedBy
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO cases (
		customer_name, subscriber_number, phone, address, category_id, status,
		problem_description, actions_taken, last_meter_reading, last_reading_date,
		debt_amount, created_date, modified_date, created_by, modified_by, solved_by
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.CustomerName, c.SubscriberNumber, c.Phone, c.Address, nullID(c.CategoryID), string(c.Status),
		c.ProblemDescription, c.ActionsTaken, c.LastMeterReading, c.LastReadingDate,
		c.DebtAmount, now, now, nullID(c.CreatedBy), nullID(c.ModifiedBy), nullID(c.SolvedBy),
	)
	if err != nil {
		return 0, unavailable("failed to insert case", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, unavailable("failed to read case id", err)
	}
	s.metrics.CaseSaved("create")
	return id, nil
}

// UpdateCase overwrites the editable fields of an existing case and stamps the
// modified date and author. Created date and author are never touched.
func (s *Store) UpdateCase(ctx context.Context, id int64, c Case) (err error) {
	defer func(start time.Time) { s.observe("update_case", start, err) }(time.Now())

	if err := ValidateCase(&c); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE cases SET
		customer_name = ?, subscriber_number = ?, phone = ?, address = ?, category_id = ?,
		status = ?, problem_description = ?, actions_taken = ?, last_meter_reading = ?,
		last_reading_date = ?, debt_amount = ?, modified_date = ?, modified_by = ?, solved_by = ?
		WHERE id = ?`,
		c.CustomerName, c.SubscriberNumber, c.Phone, c.Address, nullID(c.CategoryID),
		string(c.Status), c.ProblemDescription, c.ActionsTaken, c.LastMeterReading,
		c.LastReadingDate, c.DebtAmount, s.timestamp(), nullID(c.ModifiedBy), nullID(c.SolvedBy),
		id,
	)
	if err != nil {
		return unavailable(fmt.Sprintf("failed to update case %d", id), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("failed to read rows affected", err)
	}
	if n == 0 {
		return notFound("case", id)
	}
	s.metrics.CaseSaved("update")
	return nil
}

// GetCase returns one case with resolved names.
func (s *Store) GetCase(ctx context.Context, id int64) (c Case, err error) {
	defer func(start time.Time) { s.observe("get_case", start, err) }(time.Now())

	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+caseFrom+` WHERE c.id = ?`, id)
	c, err = scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Case{}, notFound("case", id)
	}
	if err != nil {
		return Case{}, unavailable(fmt.Sprintf("failed to load case %d", id), err)
	}
	return c, nil
}

// DeleteCase removes a case together with its attachments, correspondences
// and audit entries in one transaction.
func (s *Store) DeleteCase(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_case", start, err) }(time.Now())

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM cases WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return unavailable("failed to check case", err)
		}
		if exists == 0 {
			return notFound("case", id)
		}
		for _, q := range []string{
			`DELETE FROM audit_log WHERE case_id = ?`,
			`DELETE FROM correspondences WHERE case_id = ?`,
			`DELETE FROM attachments WHERE case_id = ?`,
			`DELETE FROM cases WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return unavailable(fmt.Sprintf("delete case %d", id), err)
			}
		}
		return nil
	})
}

// GetAllCases returns every case, newest first.
func (s *Store) GetAllCases(ctx context.Context) (cases []Case, err error) {
	defer func(start time.Time) { s.observe("get_all_cases", start, err) }(time.Now())
	return s.queryCases(ctx, `SELECT `+caseColumns+caseFrom+caseOrder)
}

// GetCasesByYear returns cases whose created date starts with year.
func (s *Store) GetCasesByYear(ctx context.Context, year string) (cases []Case, err error) {
	defer func(start time.Time) { s.observe("get_cases_by_year", start, err) }(time.Now())
	return s.queryCases(ctx,
		`SELECT `+caseColumns+caseFrom+` WHERE c.created_date LIKE ? ESCAPE '\'`+caseOrder,
		escapeLike(year)+"%")
}

// SearchCases matches text against one field (see the Search* constants).
// Category and status are exact matches; every other field is a
// case-insensitive substring match. Empty text returns all cases.
func (s *Store) SearchCases(ctx context.Context, field, text string) (cases []Case, err error) {
	defer func(start time.Time) { s.observe("search_cases", start, err) }(time.Now())

	if strings.TrimSpace(text) == "" {
		return s.queryCases(ctx, `SELECT `+caseColumns+caseFrom+caseOrder)
	}
	pattern := "%" + escapeLike(text) + "%"
	const like = ` LIKE ? ESCAPE '\'`

	var where string
	var args []interface{}
	switch field {
	case SearchCustomerName:
		where, args = `c.customer_name`+like, []interface{}{pattern}
	case SearchSubscriberNumber:
		where, args = `c.subscriber_number`+like, []interface{}{pattern}
	case SearchAddress:
		where, args = `c.address`+like, []interface{}{pattern}
	case SearchCategory:
		where, args = `cat.name = ?`, []interface{}{text}
	case SearchStatus:
		where, args = `c.status = ?`, []interface{}{text}
	case SearchEmployee:
		where = `(ce.name` + like + ` OR me.name` + like + ` OR se.name` + like + `)`
		args = []interface{}{pattern, pattern, pattern}
	case SearchAll:
		cols := []string{"c.customer_name", "c.subscriber_number", "c.address", "cat.name", "c.status", "ce.name", "me.name", "se.name"}
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			parts = append(parts, col+like)
			args = append(args, pattern)
		}
		where = "(" + strings.Join(parts, " OR ") + ")"
	default:
		return nil, &ValidationError{Field: "search field", Message: fmt.Sprintf("unknown field %q", field)}
	}

	return s.queryCases(ctx, `SELECT `+caseColumns+caseFrom+` WHERE `+where+caseOrder, args...)
}

// Years returns the distinct created-date years, newest first.
func (s *Store) Years(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT substr(created_date, 1, 4) AS y FROM cases WHERE created_date <> '' ORDER BY y DESC`)
	if err != nil {
		return nil, unavailable("failed to query years", err)
	}
	defer rows.Close()

	var years []string
	for rows.Next() {
		var y string
		if err := rows.Scan(&y); err != nil {
			return nil, unavailable("failed to scan year", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (s *Store) queryCases(ctx context.Context, query string, args ...interface{}) ([]Case, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("failed to query cases", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, unavailable("failed to scan case", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("error iterating case rows", err)
	}
	return cases, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCase(r rowScanner) (Case, error) {
	var c Case
	var status string
	var categoryID, createdBy, modifiedBy, solvedBy sql.NullInt64

	err := r.Scan(&c.ID, &c.CustomerName, &c.SubscriberNumber, &c.Phone, &c.Address,
		&categoryID, &c.CategoryName, &status, &c.ProblemDescription, &c.ActionsTaken,
		&c.LastMeterReading, &c.LastReadingDate, &c.DebtAmount, &c.CreatedDate, &c.ModifiedDate,
		&createdBy, &c.CreatedByName, &modifiedBy, &c.ModifiedByName,
		&solvedBy, &c.SolvedByName)
	if err != nil {
		return Case{}, err
	}
	c.Status = Status(status)
	c.CategoryID = idFrom(categoryID)
	c.CreatedBy = idFrom(createdBy)
	c.ModifiedBy = idFrom(modifiedBy)
	c.SolvedBy = idFrom(solvedBy)
	return c, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
