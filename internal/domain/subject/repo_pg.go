package subject

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/potlako/follow/internal/platform/db"
)

type subjectRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &subjectRepoPG{pool: pool}
}

func (r *subjectRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

func (r *subjectRepoPG) GetLocator(ctx context.Context, subjectIdentifier string) (*Locator, error) {
	var l Locator
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT subject_identifier, subject_cell, subject_cell_alt, subject_phone,
			subject_phone_alt, subject_work_phone, indirect_contact_cell,
			indirect_contact_phone, village_town
		FROM subject_locator WHERE subject_identifier = $1`, subjectIdentifier).
		Scan(&l.SubjectIdentifier, &l.SubjectCell, &l.SubjectCellAlt, &l.SubjectPhone,
			&l.SubjectPhoneAlt, &l.SubjectWorkPhone, &l.IndirectContactCell,
			&l.IndirectContactPhone, &l.VillageTown)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get locator: %w", err)
	}
	return &l, nil
}

func (r *subjectRepoPG) BaselineVisitSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT subject_identifier FROM subject_visit
		WHERE visit_code = $1 ORDER BY subject_identifier`, BaselineVisitCode)
	if err != nil {
		return nil, fmt.Errorf("baseline visit subjects: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *subjectRepoPG) HasTeamDiscussion(ctx context.Context, subjectIdentifier string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM baseline_clinical_summary
			WHERE subject_identifier = $1 AND team_discussion = $2)`,
		subjectIdentifier, Yes).Scan(&exists)
	return exists, err
}

func (r *subjectRepoPG) CommunityArm(ctx context.Context, subjectIdentifier string) (string, error) {
	var arm *string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT community_arm FROM onschedule WHERE subject_identifier = $1`, subjectIdentifier).Scan(&arm)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("community arm: %w", err)
	}
	if arm == nil {
		return "", nil
	}
	return *arm, nil
}

func (r *subjectRepoPG) HasNavigationPlan(ctx context.Context, subjectIdentifier string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM navigation_summary_and_plan WHERE subject_identifier = $1)`,
		subjectIdentifier).Scan(&exists)
	return exists, err
}

func (r *subjectRepoPG) RecordID(ctx context.Context, table, subjectIdentifier string) (string, error) {
	if !knownTable(table) {
		return "", fmt.Errorf("unknown road map table %q", table)
	}
	var id string
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id::text FROM `+table+` WHERE subject_identifier = $1 LIMIT 1`, subjectIdentifier).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func knownTable(table string) bool {
	for _, t := range RoadMapTables {
		if t == table {
			return true
		}
	}
	return false
}
