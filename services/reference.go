package services

import (
	"context"
	"database/sql"

	"github.com/LovationAdmin/anggaran-api/models"

	"github.com/google/uuid"
)

// ReferenceService manages GL accounts and regionals.
type ReferenceService struct {
	db *sql.DB
}

func NewReferenceService(db *sql.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

func (s *ReferenceService) ListGLAccounts(ctx context.Context) ([]models.GLAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, description, keterangan
		FROM gl_accounts
		ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.GLAccount{}
	for rows.Next() {
		var gl models.GLAccount
		if err := rows.Scan(&gl.ID, &gl.Code, &gl.Description, &gl.Keterangan); err != nil {
			return nil, err
		}
		accounts = append(accounts, gl)
	}
	return accounts, rows.Err()
}

func (s *ReferenceService) CreateGLAccount(ctx context.Context, gl models.GLAccount) (*models.GLAccount, error) {
	gl.ID = uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gl_accounts (id, code, description, keterangan)
		VALUES ($1, $2, $3, $4)
	`, gl.ID, gl.Code, gl.Description, gl.Keterangan)
	if err != nil {
		return nil, translatePQError(err)
	}
	return &gl, nil
}

// ListRegionals returns regionals in bucket order.
func (s *ReferenceService) ListRegionals(ctx context.Context) ([]models.Regional, error) {
	return listRegionals(ctx, s.db)
}

func (s *ReferenceService) CreateRegional(ctx context.Context, r models.Regional) (*models.Regional, error) {
	r.ID = uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regionals (id, code, name, sort_order)
		VALUES ($1, $2, $3, $4)
	`, r.ID, r.Code, r.Name, r.SortOrder)
	if err != nil {
		return nil, translatePQError(err)
	}
	return &r, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listRegionals(ctx context.Context, q queryer) ([]models.Regional, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, code, name, sort_order
		FROM regionals
		ORDER BY sort_order, code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regionals := []models.Regional{}
	for rows.Next() {
		var r models.Regional
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.SortOrder); err != nil {
			return nil, err
		}
		regionals = append(regionals, r)
	}
	return regionals, rows.Err()
}
