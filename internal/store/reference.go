package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// GetCategories returns all categories ordered by name.
func (s *Store) GetCategories(ctx context.Context) (cats []Category, err error) {
	defer func(start time.Time) { s.observe("get_categories", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, unavailable("failed to query categories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, unavailable("failed to scan category", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// AddCategory inserts a category, or returns the id of an existing one with
// the same name.
func (s *Store) AddCategory(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Field: "category", Message: "name is required"}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return 0, unavailable("failed to insert category", err)
	}
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, unavailable("failed to read category id", err)
	}
	return id, nil
}

// GetEmployees returns all employees ordered by id.
func (s *Store) GetEmployees(ctx context.Context) (emps []Employee, err error) {
	defer func(start time.Time) { s.observe("get_employees", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM employees ORDER BY id`)
	if err != nil {
		return nil, unavailable("failed to query employees", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, unavailable("failed to scan employee", err)
		}
		emps = append(emps, e)
	}
	return emps, rows.Err()
}

// AddEmployee inserts an employee, or returns the id of an existing one with
// the same name.
func (s *Store) AddEmployee(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, &ValidationError{Field: "employee", Message: "name is required"}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO employees (name) VALUES (?)`, name); err != nil {
		return 0, unavailable("failed to insert employee", err)
	}
	return s.EmployeeID(ctx, name)
}

// EmployeeID resolves an employee name to its id.
func (s *Store) EmployeeID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM employees WHERE name = ?`, strings.TrimSpace(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("employee %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, unavailable("failed to read employee id", err)
	}
	return id, nil
}

// DeleteEmployee removes an employee. References held by cases, attachments,
// correspondences and audit entries are cleared, not deleted.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range []string{
			`UPDATE cases SET created_by = NULL WHERE created_by = ?`,
			`UPDATE cases SET modified_by = NULL WHERE modified_by = ?`,
			`UPDATE cases SET solved_by = NULL WHERE solved_by = ?`,
			`UPDATE attachments SET uploaded_by = NULL WHERE uploaded_by = ?`,
			`UPDATE correspondences SET created_by = NULL WHERE created_by = ?`,
			`UPDATE audit_log SET performed_by = NULL WHERE performed_by = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return unavailable(fmt.Sprintf("clear references to employee %d", id), err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
		if err != nil {
			return unavailable(fmt.Sprintf("delete employee %d", id), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("employee", id)
		}
		return nil
	})
}

// GetStatusOptions returns the configured statuses in display order.
func (s *Store) GetStatusOptions(ctx context.Context) (opts []StatusOption, err error) {
	defer func(start time.Time) { s.observe("get_status_options", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT name, color_code FROM status_options ORDER BY sort_order, name`)
	if err != nil {
		return nil, unavailable("failed to query status options", err)
	}
	defer rows.Close()

	for rows.Next() {
		var o StatusOption
		if err := rows.Scan(&o.Name, &o.ColorCode); err != nil {
			return nil, unavailable("failed to scan status option", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
