package store

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// LogAction appends an audit entry for an existing case. actorID may be zero
// when the actor is unknown.
func (s *Store) LogAction(ctx context.Context, caseID int64, actionType, description string, actorID int64) (err error) {
	defer func(start time.Time) { s.observe("log_action", start, err) }(time.Now())

	if err := s.requireCase(ctx, caseID); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO audit_log (
		case_id, action_type, action_description, performed_by, timestamp
	) VALUES (?, ?, ?, ?, ?)`, caseID, actionType, description, nullID(actorID), s.timestamp())
	if err != nil {
		return unavailable("failed to insert audit entry", err)
	}
	s.logger.Debug("audit", zap.Int64("case_id", caseID), zap.String("action", actionType))
	return nil
}

// GetCaseAuditLog returns a case's audit entries, newest first.
func (s *Store) GetCaseAuditLog(ctx context.Context, caseID int64) (entries []AuditEntry, err error) {
	defer func(start time.Time) { s.observe("get_audit_log", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.case_id, a.action_type, a.action_description,
		a.performed_by, COALESCE(e.name, ''), a.timestamp
		FROM audit_log a LEFT JOIN employees e ON e.id = a.performed_by
		WHERE a.case_id = ? ORDER BY a.timestamp DESC, a.id DESC`, caseID)
	if err != nil {
		return nil, unavailable("failed to query audit log", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e AuditEntry
		var by sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CaseID, &e.ActionType, &e.Description, &by, &e.PerformedByName, &e.Timestamp); err != nil {
			return nil, unavailable("failed to scan audit entry", err)
		}
		e.PerformedBy = idFrom(by)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
