package policies

import (
	"context"
	"strings"

	"hrmgo/internal/platform/db"
)

type Store struct {
	DB db.DBTX
}

func NewStore(conn db.DBTX) *Store {
	return &Store{DB: conn}
}

func (s *Store) ListPolicies(ctx context.Context, tenantID string) ([]Policy, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(branch, ''), title, COALESCE(description, ''), COALESCE(attachment, ''), created_at
    FROM company_policies
    WHERE tenant_id = $1
    ORDER BY created_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Policy{}
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.Branch, &p.Title, &p.Description, &p.Attachment, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CreatePolicy(ctx context.Context, tenantID string, p Policy) (string, error) {
	if strings.TrimSpace(p.Title) == "" {
		return "", ErrTitleRequired
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO company_policies (tenant_id, branch, title, description, attachment)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, tenantID, db.NullIfEmpty(p.Branch), p.Title, db.NullIfEmpty(p.Description), db.NullIfEmpty(p.Attachment)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListRegulations(ctx context.Context, tenantID string) ([]Regulation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, COALESCE(category, ''), COALESCE(description, ''), effective_date, created_at
    FROM regulations
    WHERE tenant_id = $1
    ORDER BY created_at DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Regulation{}
	for rows.Next() {
		var r Regulation
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.Description, &r.EffectiveDate, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateRegulation(ctx context.Context, tenantID string, r Regulation) (string, error) {
	if strings.TrimSpace(r.Title) == "" {
		return "", ErrTitleRequired
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO regulations (tenant_id, title, category, description, effective_date)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, tenantID, r.Title, db.NullIfEmpty(r.Category), db.NullIfEmpty(r.Description), r.EffectiveDate).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
