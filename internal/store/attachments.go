package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// AddAttachment records attachment metadata for an existing case. FileType is
// derived from the file name when empty and UploadDate defaults to now.
func (s *Store) AddAttachment(ctx context.Context, a Attachment) (id int64, err error) {
	defer func(start time.Time) { s.observe("add_attachment", start, err) }(time.Now())

	if err := ValidateAttachment(a); err != nil {
		return 0, err
	}
	if a.FileName == "" {
		a.FileName = filepath.Base(a.FilePath)
	}
	if a.FileType == "" {
		a.FileType = FileTypeFor(a.FileName)
	}
	if a.UploadDate == "" {
		a.UploadDate = s.timestamp()
	}
	if err := s.requireCase(ctx, a.CaseID); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO attachments (
		case_id, file_name, file_path, file_type, description, upload_date, uploaded_by
	) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.CaseID, a.FileName, a.FilePath, a.FileType, a.Description, a.UploadDate, nullID(a.UploadedBy))
	if err != nil {
		return 0, unavailable("failed to insert attachment", err)
	}
	return res.LastInsertId()
}

// GetAttachments lists a case's attachments, oldest first.
func (s *Store) GetAttachments(ctx context.Context, caseID int64) (atts []Attachment, err error) {
	defer func(start time.Time) { s.observe("get_attachments", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.case_id, a.file_name, a.file_path, a.file_type,
		a.description, a.upload_date, a.uploaded_by, COALESCE(e.name, '')
		FROM attachments a LEFT JOIN employees e ON e.id = a.uploaded_by
		WHERE a.case_id = ? ORDER BY a.upload_date, a.id`, caseID)
	if err != nil {
		return nil, unavailable("failed to query attachments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a Attachment
		var by sql.NullInt64
		if err := rows.Scan(&a.ID, &a.CaseID, &a.FileName, &a.FilePath, &a.FileType,
			&a.Description, &a.UploadDate, &by, &a.UploadedByName); err != nil {
			return nil, unavailable("failed to scan attachment", err)
		}
		a.UploadedBy = idFrom(by)
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

// GetAttachment returns one attachment.
func (s *Store) GetAttachment(ctx context.Context, id int64) (Attachment, error) {
	var a Attachment
	var by sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT id, case_id, file_name, file_path, file_type,
		description, upload_date, uploaded_by FROM attachments WHERE id = ?`, id).Scan(
		&a.ID, &a.CaseID, &a.FileName, &a.FilePath, &a.FileType, &a.Description, &a.UploadDate, &by)
	if errors.Is(err, sql.ErrNoRows) {
		return Attachment{}, notFound("attachment", id)
	}
	if err != nil {
		return Attachment{}, unavailable(fmt.Sprintf("failed to load attachment %d", id), err)
	}
	a.UploadedBy = idFrom(by)
	return a, nil
}

// DeleteAttachment removes attachment metadata. The stored file is left to
// whoever owns it.
func (s *Store) DeleteAttachment(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { s.observe("delete_attachment", start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return unavailable(fmt.Sprintf("failed to delete attachment %d", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("attachment", id)
	}
	return nil
}

// ValidateAttachment checks the fields AddAttachment requires.
func ValidateAttachment(a Attachment) error {
	if strings.TrimSpace(a.FilePath) == "" {
		return &ValidationError{Field: "file_path", Message: "is required"}
	}
	return nil
}

func (s *Store) requireCase(ctx context.Context, caseID int64) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM cases WHERE id = ?`, caseID).Scan(&n); err != nil {
		return unavailable("failed to check case", err)
	}
	if n == 0 {
		return notFound("case", caseID)
	}
	return nil
}
