package worklist

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/validation"
)

// ValidationError is returned for invalid form input.
type ValidationError = validation.Error

// Service manages the rows of one work-list kind.
type Service struct {
	kind    Kind
	repo    Repository
	stamper *audit.Stamper
	now     func() time.Time
}

func NewService(kind Kind, repo Repository, stamper *audit.Stamper) *Service {
	return &Service{kind: kind, repo: repo, stamper: stamper, now: time.Now}
}

func (s *Service) Kind() Kind { return s.kind }

func (s *Service) applyDefaults(w *WorkList) {
	if w.ReportDatetime.IsZero() {
		w.ReportDatetime = s.now()
	}
	w.ReportDatetime = w.ReportDatetime.UTC()
	if w.IsCalled == "" {
		w.IsCalled = No
	}
	if w.Visited == "" {
		w.Visited = No
	}
}

func (s *Service) validate(ctx context.Context, w *WorkList) error {
	fe := validation.Errors{}
	if w.SubjectIdentifier == "" {
		fe.Add("subject_identifier", validation.MsgRequired)
	}
	if !validYesNo[w.IsCalled] {
		fe.Addf("is_called", "Invalid choice: %s", w.IsCalled)
	}
	if !validYesNo[w.Visited] {
		fe.Addf("visited", "Invalid choice: %s", w.Visited)
	}
	switch {
	case w.IsCalled == Yes && w.CalledDatetime == nil:
		fe.Add("called_datetime", validation.MsgRequired)
	case w.IsCalled != Yes && w.CalledDatetime != nil:
		fe.Add("called_datetime", validation.MsgNotApplicable)
	case w.CalledDatetime != nil && w.CalledDatetime.After(s.now()):
		fe.Add("called_datetime", "Cannot be a future date/time.")
	}
	if err := fe.Err(); err != nil {
		return err
	}

	var day time.Time
	switch {
	case s.kind.OncePerDay:
		day = w.ReportDatetime
	case s.kind.OnePerSubject:
	default:
		return nil
	}
	exists, err := s.repo.Exists(ctx, w.SubjectIdentifier, day, w.ID)
	if err != nil {
		return err
	}
	if exists {
		if s.kind.OncePerDay {
			return validation.Field("report_datetime", "A work list already exists for this subject on this day.")
		}
		return validation.Field("subject_identifier", "A work list already exists for this subject.")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, w *WorkList) error {
	s.applyDefaults(w)
	if err := s.validate(ctx, w); err != nil {
		return err
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	s.stamper.Create(ctx, &w.Fields)
	return s.repo.Create(ctx, w)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*WorkList, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, w *WorkList) error {
	prev, err := s.repo.GetByID(ctx, w.ID)
	if err != nil {
		return err
	}
	if w.SubjectIdentifier == "" {
		w.SubjectIdentifier = prev.SubjectIdentifier
	}
	if w.ReportDatetime.IsZero() {
		w.ReportDatetime = prev.ReportDatetime
	}
	if w.VillageTown == nil {
		w.VillageTown = prev.VillageTown
	}
	s.applyDefaults(w)
	if err := s.validate(ctx, w); err != nil {
		return err
	}
	s.stamper.Modify(ctx, &w.Fields, prev.Fields)
	return s.repo.Update(ctx, w)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params SearchParams, limit, offset int) ([]*WorkList, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
