package calllog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/urls"
	"github.com/potlako/follow/internal/platform/validation"
)

// TxRunner runs fn in a single store transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PhoneBook resolves a subject's locator numbers. *subject.Service
// implements it.
type PhoneBook interface {
	PhoneChoices(ctx context.Context, subjectIdentifier string) ([]subject.Choice, error)
	ContactNumber(ctx context.Context, subjectIdentifier, field string) (string, error)
}

// Changelist paths used when a save carries no "next" redirect.
const (
	CallChangelistPath     = "/api/v1/calls"
	LogChangelistPath      = "/api/v1/logs"
	LogEntryChangelistPath = "/api/v1/log-entries"
)

type Service struct {
	calls   CallRepository
	logs    LogRepository
	entries LogEntryRepository
	tx      TxRunner
	phones  PhoneBook
	stamper *audit.Stamper
	urls    *urls.Reverser
	logger  zerolog.Logger
	now     func() time.Time
}

func NewService(calls CallRepository, logs LogRepository, entries LogEntryRepository, tx TxRunner, phones PhoneBook, stamper *audit.Stamper, reverser *urls.Reverser) *Service {
	return &Service{
		calls:   calls,
		logs:    logs,
		entries: entries,
		tx:      tx,
		phones:  phones,
		stamper: stamper,
		urls:    reverser,
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
}

// SetLogger attaches a logger for call-attempt bookkeeping.
func (s *Service) SetLogger(logger zerolog.Logger) {
	s.logger = logger.With().Str("component", "calllog").Logger()
}

// -- Call --

func (s *Service) CreateCall(ctx context.Context, c *Call) error {
	if c.CallStatus == "" {
		c.CallStatus = CallStatusNew
	}
	if err := validateCall(c); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.stamper.Create(ctx, &c.Fields)
	return s.calls.Create(ctx, c)
}

func (s *Service) GetCall(ctx context.Context, id uuid.UUID) (*Call, error) {
	return s.calls.GetByID(ctx, id)
}

func (s *Service) UpdateCall(ctx context.Context, c *Call) error {
	if c.CallStatus == "" {
		c.CallStatus = CallStatusNew
	}
	if err := validateCall(c); err != nil {
		return err
	}
	prev, err := s.calls.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	s.stamper.Modify(ctx, &c.Fields, prev.Fields)
	return s.calls.Update(ctx, c)
}

func (s *Service) DeleteCall(ctx context.Context, id uuid.UUID) error {
	return s.calls.Delete(ctx, id)
}

func (s *Service) SearchCalls(ctx context.Context, params SearchParams, limit, offset int) ([]*Call, int, error) {
	if params.CallStatus != "" && !validCallStatuses[params.CallStatus] {
		return nil, 0, fmt.Errorf("invalid call_status: %s", params.CallStatus)
	}
	return s.calls.Search(ctx, params, limit, offset)
}

// -- Log --

func (s *Service) CreateLog(ctx context.Context, l *Log) error {
	if l.CallID == uuid.Nil {
		return validation.Field("call", validation.MsgRequired)
	}
	if _, err := s.calls.GetByID(ctx, l.CallID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return validation.Field("call", validation.MsgInvalidChoice)
		}
		return err
	}
	if l.LogDatetime.IsZero() {
		l.LogDatetime = s.now().UTC()
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.stamper.Create(ctx, &l.Fields)
	return s.logs.Create(ctx, l)
}

func (s *Service) GetLog(ctx context.Context, id uuid.UUID) (*Log, error) {
	return s.logs.GetByID(ctx, id)
}

func (s *Service) UpdateLog(ctx context.Context, l *Log) error {
	prev, err := s.logs.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	if l.CallID == uuid.Nil {
		l.CallID = prev.CallID
	}
	if l.LogDatetime.IsZero() {
		l.LogDatetime = prev.LogDatetime
	}
	s.stamper.Modify(ctx, &l.Fields, prev.Fields)
	return s.logs.Update(ctx, l)
}

func (s *Service) DeleteLog(ctx context.Context, id uuid.UUID) error {
	return s.logs.Delete(ctx, id)
}

func (s *Service) SearchLogs(ctx context.Context, params SearchParams, limit, offset int) ([]*Log, int, error) {
	return s.logs.Search(ctx, params, limit, offset)
}

// LogChoices restricts the log dropdown of the entry form to logID.
func (s *Service) LogChoices(ctx context.Context, logID uuid.UUID) ([]*Log, error) {
	if logID == uuid.Nil {
		return []*Log{}, nil
	}
	l, err := s.logs.GetByID(ctx, logID)
	if errors.Is(err, ErrNotFound) {
		return []*Log{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*Log{l}, nil
}

// -- LogEntry --

func (s *Service) ValidateLogEntry(ctx context.Context, e *LogEntry) error {
	e.applyDefaults()
	available, err := s.phones.PhoneChoices(ctx, e.SubjectIdentifier)
	if err != nil {
		return fmt.Errorf("phone choices for %s: %w", e.SubjectIdentifier, err)
	}
	return validateLogEntry(e, available, s.now())
}

// CreateLogEntry saves e and records the attempt on the parent call in the
// same transaction.
func (s *Service) CreateLogEntry(ctx context.Context, e *LogEntry) error {
	if e.LogID == uuid.Nil {
		return validation.Field("log", validation.MsgRequired)
	}
	if err := s.ValidateLogEntry(ctx, e); err != nil {
		return err
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CallDatetime = e.CallDatetime.UTC()
	s.stamper.Create(ctx, &e.Fields)

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		l, err := s.logs.GetByID(ctx, e.LogID)
		if errors.Is(err, ErrNotFound) {
			return validation.Field("log", validation.MsgInvalidChoice)
		}
		if err != nil {
			return err
		}
		if err := s.entries.Create(ctx, e); err != nil {
			return err
		}
		return s.recordAttempt(ctx, l.CallID, e.CallDatetime)
	})
}

func (s *Service) recordAttempt(ctx context.Context, callID uuid.UUID, at time.Time) error {
	c, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return fmt.Errorf("call %s: %w", callID, err)
	}
	prev := c.Fields
	c.CallAttempts++
	if c.FirstCalled == nil || at.Before(*c.FirstCalled) {
		c.FirstCalled = &at
	}
	if c.LastCalled == nil || at.After(*c.LastCalled) {
		c.LastCalled = &at
	}
	if c.CallStatus != CallStatusClosed {
		c.CallStatus = CallStatusOpen
	}
	s.stamper.Modify(ctx, &c.Fields, prev)
	if err := s.calls.Update(ctx, c); err != nil {
		return err
	}
	s.logger.Debug().
		Str("subject_identifier", c.SubjectIdentifier).
		Int("call_attempts", c.CallAttempts).
		Msg("call attempt recorded")
	return nil
}

func (s *Service) GetLogEntry(ctx context.Context, id uuid.UUID) (*LogEntry, error) {
	return s.entries.GetByID(ctx, id)
}

func (s *Service) UpdateLogEntry(ctx context.Context, e *LogEntry) error {
	prev, err := s.entries.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if e.LogID == uuid.Nil {
		e.LogID = prev.LogID
	}
	if err := s.ValidateLogEntry(ctx, e); err != nil {
		return err
	}
	e.CallDatetime = e.CallDatetime.UTC()
	s.stamper.Modify(ctx, &e.Fields, prev.Fields)
	return s.entries.Update(ctx, e)
}

func (s *Service) DeleteLogEntry(ctx context.Context, id uuid.UUID) error {
	return s.entries.Delete(ctx, id)
}

func (s *Service) SearchLogEntries(ctx context.Context, params SearchParams, limit, offset int) ([]*LogEntry, int, error) {
	return s.entries.Search(ctx, params, limit, offset)
}

// CustomFieldLabel returns the locator number a contact-fail field asks
// about, or "" when the field is not a contact-fail field, the subject has no
// locator, or the number is blank.
func (s *Service) CustomFieldLabel(ctx context.Context, subjectIdentifier, field string) (string, error) {
	locatorField, ok := LocatorFieldFor(field)
	if !ok {
		return "", nil
	}
	return s.phones.ContactNumber(ctx, subjectIdentifier, locatorField)
}

// PhoneChoices lists the subject's locator numbers for the entry form.
func (s *Service) PhoneChoices(ctx context.Context, subjectIdentifier string) ([]subject.Choice, error) {
	return s.phones.PhoneChoices(ctx, subjectIdentifier)
}

// RedirectURL is where the browser goes after a log entry is saved. It
// starts from the default "next" redirect; when someone was reached and no
// home visit is needed, a request that carried "next" goes to the subject
// listboard instead. That redirect needs subject_identifier in query; without
// it RedirectURL returns a *urls.NextURLRedirectError.
func (s *Service) RedirectURL(query url.Values, e *LogEntry) (string, error) {
	redirect, err := s.urls.NextURL(query, LogEntryChangelistPath)
	if err != nil {
		return "", err
	}
	if contains(e.PhoneNumSuccess, NoneOfTheAbove) || e.HomeVisit != NotApplicable || query.Get("next") == "" {
		return redirect, nil
	}
	const name = "subject_listboard_url"
	kwargs := map[string]string{"subject_identifier": query.Get("subject_identifier")}
	path, err := s.urls.Reverse(name, kwargs)
	if err != nil {
		return "", &urls.NextURLRedirectError{URLName: name, Kwargs: kwargs, Err: err}
	}
	return path, nil
}
