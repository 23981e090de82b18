package worklist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/platform/audit"
)

// TxRunner runs fn in a single store transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker is implemented by transaction runners that can serialise
// concurrent passes. The lock is held until the transaction ends.
type Locker interface {
	Lock(ctx context.Context, key string) error
}

const syncLockKey = "navigation_work_list_sync"

// Subjects is the subject state the reconciler reads. *subject.Service
// implements it.
type Subjects interface {
	BaselineSubjects(ctx context.Context) ([]string, error)
	Eligibility(ctx context.Context, subjectIdentifier string) (subject.Eligibility, error)
	VillageTown(ctx context.Context, subjectIdentifier string) (*string, error)
}

// SyncResult counts what one reconciliation pass changed.
type SyncResult struct {
	Created int `json:"created"`
	Deleted int `json:"deleted"`
	Kept    int `json:"kept"`
}

// Reconciler keeps the navigation work list in step with the clinical
// records: a subject has exactly one row while they have a baseline visit,
// no team discussion, the intervention arm and no navigation plan, and no
// row otherwise.
type Reconciler struct {
	repo     Repository
	subjects Subjects
	tx       TxRunner
	stamper  *audit.Stamper
	logger   zerolog.Logger
	now      func() time.Time
	observe  func(SyncResult)
}

func NewReconciler(repo Repository, subjects Subjects, tx TxRunner, stamper *audit.Stamper, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		repo:     repo,
		subjects: subjects,
		tx:       tx,
		stamper:  stamper,
		logger:   logger.With().Str("component", "worklist-reconciler").Logger(),
		now:      time.Now,
	}
}

// OnSync registers fn to be called after every successful pass.
func (r *Reconciler) OnSync(fn func(SyncResult)) {
	r.observe = fn
}

// Sync runs one pass in a single transaction. Running it twice in a row
// changes nothing the second time. Concurrent passes are serialised when the
// transaction runner is a Locker, so two listboard loads cannot both create
// the same subject's row.
func (r *Reconciler) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		res = SyncResult{}
		if l, ok := r.tx.(Locker); ok {
			if err := l.Lock(ctx, syncLockKey); err != nil {
				return fmt.Errorf("lock work list: %w", err)
			}
		}
		baseline, err := r.subjects.BaselineSubjects(ctx)
		if err != nil {
			return fmt.Errorf("baseline subjects: %w", err)
		}
		listed, err := r.repo.ListSubjects(ctx)
		if err != nil {
			return err
		}
		existing := make(map[string]bool, len(listed))
		for _, sid := range listed {
			existing[sid] = true
		}

		for _, sid := range baseline {
			el, err := r.subjects.Eligibility(ctx, sid)
			if err != nil {
				return err
			}
			has := existing[sid]
			delete(existing, sid)
			switch {
			case el.Qualifies() && has:
				res.Kept++
			case el.Qualifies():
				if err := r.create(ctx, sid); err != nil {
					return err
				}
				res.Created++
			case has:
				n, err := r.repo.DeleteBySubject(ctx, sid)
				if err != nil {
					return err
				}
				res.Deleted += int(n)
			}
		}

		// Rows left over belong to subjects without a baseline visit.
		for sid := range existing {
			n, err := r.repo.DeleteBySubject(ctx, sid)
			if err != nil {
				return err
			}
			res.Deleted += int(n)
		}
		return nil
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("navigation work list sync failed")
		return SyncResult{}, err
	}
	if res.Created > 0 || res.Deleted > 0 {
		r.logger.Info().
			Int("created", res.Created).
			Int("deleted", res.Deleted).
			Int("kept", res.Kept).
			Msg("navigation work list reconciled")
	}
	if r.observe != nil {
		r.observe(res)
	}
	return res, nil
}

func (r *Reconciler) create(ctx context.Context, subjectIdentifier string) error {
	village, err := r.subjects.VillageTown(ctx, subjectIdentifier)
	if err != nil {
		return fmt.Errorf("village for %s: %w", subjectIdentifier, err)
	}
	w := &WorkList{
		ID:                uuid.New(),
		SubjectIdentifier: subjectIdentifier,
		ReportDatetime:    r.now().UTC(),
		IsCalled:          No,
		Visited:           No,
		VillageTown:       village,
	}
	r.stamper.Create(ctx, &w.Fields)
	return r.repo.Create(ctx, w)
}
