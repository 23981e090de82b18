package subject

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/potlako/follow/internal/platform/sqlitedb"
)

type subjectRepoSQLite struct{ db *sql.DB }

func NewRepoSQLite(db *sql.DB) Repository {
	return &subjectRepoSQLite{db: db}
}

func (r *subjectRepoSQLite) conn(ctx context.Context) sqlitedb.Queryable {
	return sqlitedb.Conn(ctx, r.db)
}

func (r *subjectRepoSQLite) GetLocator(ctx context.Context, subjectIdentifier string) (*Locator, error) {
	var l Locator
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT subject_identifier, subject_cell, subject_cell_alt, subject_phone,
			subject_phone_alt, subject_work_phone, indirect_contact_cell,
			indirect_contact_phone, village_town
		FROM subject_locator WHERE subject_identifier = ?`, subjectIdentifier).
		Scan(&l.SubjectIdentifier, &l.SubjectCell, &l.SubjectCellAlt, &l.SubjectPhone,
			&l.SubjectPhoneAlt, &l.SubjectWorkPhone, &l.IndirectContactCell,
			&l.IndirectContactPhone, &l.VillageTown)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get locator: %w", err)
	}
	return &l, nil
}

func (r *subjectRepoSQLite) BaselineVisitSubjects(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).QueryContext(ctx, `
		SELECT DISTINCT subject_identifier FROM subject_visit
		WHERE visit_code = ? ORDER BY subject_identifier`, BaselineVisitCode)
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

func (r *subjectRepoSQLite) HasTeamDiscussion(ctx context.Context, subjectIdentifier string) (bool, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM baseline_clinical_summary
		WHERE subject_identifier = ? AND team_discussion = ?`, subjectIdentifier, Yes).Scan(&n)
	return n > 0, err
}

func (r *subjectRepoSQLite) CommunityArm(ctx context.Context, subjectIdentifier string) (string, error) {
	var arm sql.NullString
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT community_arm FROM onschedule WHERE subject_identifier = ?`, subjectIdentifier).Scan(&arm)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("community arm: %w", err)
	}
	return arm.String, nil
}

func (r *subjectRepoSQLite) HasNavigationPlan(ctx context.Context, subjectIdentifier string) (bool, error) {
	var n int
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM navigation_summary_and_plan WHERE subject_identifier = ?`, subjectIdentifier).Scan(&n)
	return n > 0, err
}

func (r *subjectRepoSQLite) RecordID(ctx context.Context, table, subjectIdentifier string) (string, error) {
	if !knownTable(table) {
		return "", fmt.Errorf("unknown road map table %q", table)
	}
	var id string
	err := r.conn(ctx).QueryRowContext(ctx,
		`SELECT id FROM `+table+` WHERE subject_identifier = ? LIMIT 1`, subjectIdentifier).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}
