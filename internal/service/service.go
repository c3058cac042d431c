// Package service applies case mutations: each one writes to the store,
// appends an audit entry and announces the change on the bus.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Ashfaaq98/customer-issues/internal/bus"
	"github.com/Ashfaaq98/customer-issues/internal/store"
)

// DefaultActor is recorded when no employee name is configured.
const DefaultActor = "system"

// Service wraps a Store with audit logging and change notifications.
type Service struct {
	store  *store.Store
	bus    bus.Bus
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("service")
		}
	}
}

// New creates a Service. A nil bus is replaced by a NullBus.
func New(st *store.Store, b bus.Bus, opts ...Option) *Service {
	s := &Service{store: st, bus: b, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = bus.NewNullBus()
	}
	return s
}

// Store returns the underlying store for read paths.
func (s *Service) Store() *store.Store { return s.store }

// ResolveActor returns the employee id for name, registering the employee
// on first use. An empty name resolves to DefaultActor.
func (s *Service) ResolveActor(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultActor
	}
	id, err := s.store.EmployeeID(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	return s.store.AddEmployee(ctx, name)
}

// CategoryID returns the id for a category name, creating it when unknown.
// An empty name maps to zero (no category).
func (s *Service) CategoryID(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, nil
	}
	return s.store.AddCategory(ctx, name)
}

// CreateCase saves a new case authored by actor.
func (s *Service) CreateCase(ctx context.Context, c store.Case, actor string) (int64, error) {
	return s.create(ctx, c, actor, store.ActionCreate, bus.ActionCreated, "Case created")
}

// IntakeCase saves a case received from an intake source.
func (s *Service) IntakeCase(ctx context.Context, c store.Case, actor, source string) (int64, error) {
	return s.create(ctx, c, actor, store.ActionIntake, bus.ActionIntake, "Case received from "+source)
}

func (s *Service) create(ctx context.Context, c store.Case, actor, auditAction, busAction, description string) (int64, error) {
	// A rejected case must not leave a newly registered author behind.
	if err := store.ValidateCase(&c); err != nil {
		return 0, err
	}
	actorID, err := s.ResolveActor(ctx, actor)
	if err != nil {
		return 0, err
	}
	c.CreatedBy = actorID
	c.ModifiedBy = actorID

	id, err := s.store.AddCase(ctx, c)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, id, auditAction, description, actorID)
	s.publish(ctx, id, busAction, actor)
	return id, nil
}

// UpdateCase saves edits to an existing case. The audit entry lists the
// fields that changed.
func (s *Service) UpdateCase(ctx context.Context, id int64, c store.Case, actor string) error {
	before, err := s.store.GetCase(ctx, id)
	if err != nil {
		return err
	}
	if err := store.ValidateCase(&c); err != nil {
		return err
	}
	actorID, err := s.ResolveActor(ctx, actor)
	if err != nil {
		return err
	}
	c.ModifiedBy = actorID

	if err := s.store.UpdateCase(ctx, id, c); err != nil {
		return err
	}
	after, err := s.store.GetCase(ctx, id)
	if err != nil {
		return err
	}
	s.audit(ctx, id, store.ActionUpdate, describeChanges(before, after), actorID)
	s.publish(ctx, id, bus.ActionUpdated, actor)
	return nil
}

// DeleteCase removes a case and everything it owns.
func (s *Service) DeleteCase(ctx context.Context, id int64, actor string) error {
	if err := s.store.DeleteCase(ctx, id); err != nil {
		return err
	}
	s.logger.Info("case deleted", zap.Int64("case_id", id), zap.String("actor", actor))
	s.publish(ctx, id, bus.ActionDeleted, actor)
	return nil
}

// AddAttachment records a file against a case.
func (s *Service) AddAttachment(ctx context.Context, caseID int64, path, description, actor string) (int64, error) {
	att := store.Attachment{
		CaseID:      caseID,
		FileName:    filepath.Base(path),
		FilePath:    path,
		Description: description,
	}
	if err := s.precheck(ctx, caseID, store.ValidateAttachment(att)); err != nil {
		return 0, err
	}
	actorID, err := s.ResolveActor(ctx, actor)
	if err != nil {
		return 0, err
	}
	att.UploadedBy = actorID
	id, err := s.store.AddAttachment(ctx, att)
	if err != nil {
		return 0, err
	}
	s.audit(ctx, caseID, store.ActionAttachmentAdded, "Attachment added: "+filepath.Base(path), actorID)
	s.publish(ctx, caseID, bus.ActionAttachmentAdded, actor)
	return id, nil
}

// DeleteAttachment removes an attachment record.
func (s *Service) DeleteAttachment(ctx context.Context, id int64, actor string) error {
	att, err := s.store.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, att.CaseID, store.ActionAttachmentDeleted, "Attachment deleted: "+att.FileName, s.auditActor(ctx, actor))
	s.publish(ctx, att.CaseID, bus.ActionAttachmentDeleted, actor)
	return nil
}

// AddCorrespondence records a message against a case and returns it with its
// assigned sequence numbers.
func (s *Service) AddCorrespondence(ctx context.Context, caseID int64, sender, content, sentDate, actor string) (store.Correspondence, error) {
	in := store.Correspondence{
		CaseID:         caseID,
		Sender:         sender,
		MessageContent: content,
		SentDate:       sentDate,
	}
	if err := s.precheck(ctx, caseID, store.ValidateCorrespondence(in)); err != nil {
		return store.Correspondence{}, err
	}
	actorID, err := s.ResolveActor(ctx, actor)
	if err != nil {
		return store.Correspondence{}, err
	}
	in.CreatedBy = actorID
	c, err := s.store.AddCorrespondence(ctx, in)
	if err != nil {
		return store.Correspondence{}, err
	}
	s.audit(ctx, caseID, store.ActionCorrespondenceAdded,
		fmt.Sprintf("Correspondence %d/%d added", c.SequenceNumber, c.YearlySequenceNumber), actorID)
	s.publish(ctx, caseID, bus.ActionCorrespondenceAdded, actor)
	return c, nil
}

// DeleteCorrespondence removes a correspondence. Its numbers stay used.
func (s *Service) DeleteCorrespondence(ctx context.Context, id int64, actor string) error {
	caseID, err := s.store.DeleteCorrespondence(ctx, id)
	if err != nil {
		return err
	}
	s.audit(ctx, caseID, store.ActionCorrespondenceDelete, fmt.Sprintf("Correspondence %d deleted", id), s.auditActor(ctx, actor))
	s.publish(ctx, caseID, bus.ActionCorrespondenceDeleted, actor)
	return nil
}

// precheck rejects a record before its author is resolved: the validation
// error first, then a missing case.
func (s *Service) precheck(ctx context.Context, caseID int64, verr error) error {
	if verr != nil {
		return verr
	}
	_, err := s.store.GetCase(ctx, caseID)
	return err
}

// auditActor resolves the author of an already committed delete. A failure
// leaves the audit entry without an author.
func (s *Service) auditActor(ctx context.Context, actor string) int64 {
	id, err := s.ResolveActor(ctx, actor)
	if err != nil {
		s.logger.Warn("failed to resolve actor for audit entry", zap.String("actor", actor), zap.Error(err))
		return 0
	}
	return id
}

// audit failures are logged; the mutation itself has already committed.
func (s *Service) audit(ctx context.Context, caseID int64, action, description string, actorID int64) {
	if err := s.store.LogAction(ctx, caseID, action, description, actorID); err != nil {
		s.logger.Error("failed to write audit entry",
			zap.Int64("case_id", caseID), zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) publish(ctx context.Context, caseID int64, action, actor string) {
	err := s.bus.PublishCaseChange(ctx, bus.CaseChange{CaseID: caseID, Action: action, Actor: actor})
	if err != nil {
		s.logger.Warn("failed to publish case change",
			zap.Int64("case_id", caseID), zap.String("action", action), zap.Error(err))
	}
}

// describeChanges summarises which editable fields differ.
func describeChanges(before, after store.Case) string {
	type field struct {
		name     string
		old, new string
	}
	fields := []field{
		{"customer name", before.CustomerName, after.CustomerName},
		{"subscriber number", before.SubscriberNumber, after.SubscriberNumber},
		{"phone", before.Phone, after.Phone},
		{"address", before.Address, after.Address},
		{"category", before.CategoryName, after.CategoryName},
		{"problem description", before.ProblemDescription, after.ProblemDescription},
		{"actions taken", before.ActionsTaken, after.ActionsTaken},
		{"last meter reading", before.LastMeterReading, after.LastMeterReading},
		{"last reading date", before.LastReadingDate, after.LastReadingDate},
		{"debt amount", before.DebtAmount, after.DebtAmount},
		{"solved by", before.SolvedByName, after.SolvedByName},
	}

	var parts []string
	if before.Status != after.Status {
		parts = append(parts, fmt.Sprintf("status %s -> %s", before.Status, after.Status))
	}
	for _, f := range fields {
		if f.old != f.new {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "Case saved without changes"
	}
	return "Case updated: " + strings.Join(parts, ", ")
}
