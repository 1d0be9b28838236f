package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/anggaran-api/allocation"
	"github.com/LovationAdmin/anggaran-api/models"
	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/google/uuid"
)

type BudgetService struct {
	db *sql.DB
}

func NewBudgetService(db *sql.DB) *BudgetService {
	return &BudgetService{db: db}
}

const budgetColumns = `
	b.id, b.gl_account_id, b.year, b.rkap, b.release_percent, b.total_amount,
	b.q1_amount, b.q2_amount, b.q3_amount, b.q4_amount, b.created_at, b.updated_at,
	g.id, g.code, g.description, g.keterangan`

type scanner interface {
	Scan(dest ...any) error
}

func scanBudget(row scanner) (models.Budget, error) {
	var b models.Budget
	var gl models.GLAccount
	err := row.Scan(
		&b.ID, &b.GLAccountID, &b.Year, &b.RKAP, &b.ReleasePercent, &b.TotalAmount,
		&b.Q1Amount, &b.Q2Amount, &b.Q3Amount, &b.Q4Amount, &b.CreatedAt, &b.UpdatedAt,
		&gl.ID, &gl.Code, &gl.Description, &gl.Keterangan,
	)
	if err != nil {
		return b, err
	}
	b.GLAccount = &gl
	b.Allocations = []models.Allocation{}
	return b, nil
}

// List returns the budgets of a year with their allocations. Year 0 lists every year.
func (s *BudgetService) List(ctx context.Context, year int) ([]models.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets b
		JOIN gl_accounts g ON g.id = b.gl_account_id
		WHERE ($1::int = 0 OR b.year = $1)
		ORDER BY b.year DESC, g.code
	`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []models.Budget{}
	index := make(map[string]int)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		index[b.ID] = len(budgets)
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	allocRows, err := s.db.QueryContext(ctx, `
		SELECT ba.budget_id, ba.quarter, ba.regional_code, ba.amount, ba.percentage
		FROM budget_allocations ba
		JOIN budgets b ON b.id = ba.budget_id
		LEFT JOIN regionals r ON r.code = ba.regional_code
		WHERE ($1::int = 0 OR b.year = $1)
		ORDER BY ba.quarter, r.sort_order, ba.regional_code
	`, year)
	if err != nil {
		return nil, err
	}
	defer allocRows.Close()

	for allocRows.Next() {
		var budgetID string
		var a models.Allocation
		if err := allocRows.Scan(&budgetID, &a.Quarter, &a.RegionalCode, &a.Amount, &a.Percentage); err != nil {
			return nil, err
		}
		if i, ok := index[budgetID]; ok {
			budgets[i].Allocations = append(budgets[i].Allocations, a)
		}
	}

	return budgets, allocRows.Err()
}

func (s *BudgetService) Get(ctx context.Context, id string) (*models.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets b
		JOIN gl_accounts g ON g.id = b.gl_account_id
		WHERE b.id = $1
	`, id)

	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translatePQError(err)
	}

	allocs, err := s.LoadAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Allocations = allocs

	return &b, nil
}

func (s *BudgetService) Create(ctx context.Context, req models.BudgetRequest) (*models.Budget, error) {
	b, err := budgetValues(req)
	if err != nil {
		return nil, err
	}
	b.ID = uuid.New().String()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO budgets (id, gl_account_id, year, rkap, release_percent, total_amount,
		                     q1_amount, q2_amount, q3_amount, q4_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, b.ID, b.GLAccountID, b.Year, b.RKAP, b.ReleasePercent, b.TotalAmount,
		b.Q1Amount, b.Q2Amount, b.Q3Amount, b.Q4Amount, time.Now())
	if err != nil {
		return nil, translatePQError(err)
	}

	utils.LogBudgetAction("budget created", b.ID)
	return s.Get(ctx, b.ID)
}

func (s *BudgetService) Update(ctx context.Context, id string, req models.BudgetRequest) (*models.Budget, error) {
	b, err := budgetValues(req)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE budgets
		SET gl_account_id = $1, year = $2, rkap = $3, release_percent = $4, total_amount = $5,
		    q1_amount = $6, q2_amount = $7, q3_amount = $8, q4_amount = $9, updated_at = NOW()
		WHERE id = $10
	`, b.GLAccountID, b.Year, b.RKAP, b.ReleasePercent, b.TotalAmount,
		b.Q1Amount, b.Q2Amount, b.Q3Amount, b.Q4Amount, id)
	if err != nil {
		return nil, translatePQError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	utils.LogBudgetAction("budget updated", id)
	return s.Get(ctx, id)
}

// Delete removes a budget; its allocations cascade.
func (s *BudgetService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	utils.LogBudgetAction("budget deleted", id)
	return nil
}

// LoadAllocations returns the saved partition of a budget, empty when nothing was saved.
func (s *BudgetService) LoadAllocations(ctx context.Context, budgetID string) ([]models.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ba.quarter, ba.regional_code, ba.amount, ba.percentage
		FROM budget_allocations ba
		LEFT JOIN regionals r ON r.code = ba.regional_code
		WHERE ba.budget_id = $1
		ORDER BY ba.quarter, r.sort_order, ba.regional_code
	`, budgetID)
	if err != nil {
		return nil, translatePQError(err)
	}
	defer rows.Close()

	allocs := []models.Allocation{}
	for rows.Next() {
		var a models.Allocation
		if err := rows.Scan(&a.Quarter, &a.RegionalCode, &a.Amount, &a.Percentage); err != nil {
			return nil, err
		}
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// SaveAllocations replaces every allocation of a budget with allocs.
func (s *BudgetService) SaveAllocations(ctx context.Context, budgetID string, allocs []models.Allocation) ([]models.Allocation, error) {
	if err := validateAllocations(allocs); err != nil {
		return nil, err
	}

	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1)`, budgetID).Scan(&exists); err != nil {
			return translatePQError(err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM budget_allocations WHERE budget_id = $1`, budgetID); err != nil {
			return err
		}

		for _, a := range allocs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO budget_allocations (id, budget_id, quarter, regional_code, amount, percentage)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, uuid.New().String(), budgetID, a.Quarter, a.RegionalCode, a.Amount, a.Percentage)
			if err != nil {
				return translatePQError(err)
			}
		}

		_, err := tx.ExecContext(ctx, `UPDATE budgets SET updated_at = NOW() WHERE id = $1`, budgetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.LogBudgetAction("allocations saved", budgetID)
	return s.LoadAllocations(ctx, budgetID)
}

// SplitQuarter computes the regional partition of one quarter. Nothing is saved.
func (s *BudgetService) SplitQuarter(ctx context.Context, budgetID string, quarter int, req models.SplitQuarterRequest) (*models.QuarterSplit, error) {
	b, err := s.Get(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	regionals, err := listRegionals(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return buildQuarterSplit(b, quarter, regionals, req)
}

// budgetValues derives the stored figures of a budget from a request.
func budgetValues(req models.BudgetRequest) (models.Budget, error) {
	releasePercent := 100.0
	if req.ReleasePercent != nil {
		releasePercent = *req.ReleasePercent
	}
	if releasePercent < 0 || releasePercent > 100 {
		return models.Budget{}, fmt.Errorf("%w: release percent must be between 0 and 100", ErrInvalidInput)
	}

	total, err := allocation.ReleaseAmount(req.RKAP, releasePercent)
	if err != nil {
		return models.Budget{}, errors.Join(ErrInvalidInput, err)
	}

	b := models.Budget{
		GLAccountID:    req.GLAccountID,
		Year:           req.Year,
		RKAP:           req.RKAP,
		ReleasePercent: releasePercent,
		TotalAmount:    total,
		Q1Amount:       req.Q1Amount,
		Q2Amount:       req.Q2Amount,
		Q3Amount:       req.Q3Amount,
		Q4Amount:       req.Q4Amount,
	}

	if req.AutoSplit {
		quarters, err := allocation.SplitQuarters(total)
		if err != nil {
			return models.Budget{}, errors.Join(ErrInvalidInput, err)
		}
		b.Q1Amount = quarters["q1"]
		b.Q2Amount = quarters["q2"]
		b.Q3Amount = quarters["q3"]
		b.Q4Amount = quarters["q4"]
	}

	return b, nil
}

func validateAllocations(allocs []models.Allocation) error {
	type key struct {
		quarter int
		code    string
	}
	seen := make(map[key]struct{}, len(allocs))
	for _, a := range allocs {
		if a.Quarter < 1 || a.Quarter > 4 {
			return fmt.Errorf("%w: quarter %d out of range", ErrInvalidInput, a.Quarter)
		}
		if a.RegionalCode == "" {
			return fmt.Errorf("%w: regional code is required", ErrInvalidInput)
		}
		if a.Amount < 0 {
			return fmt.Errorf("%w: amount for q%d %s must not be negative", ErrInvalidInput, a.Quarter, a.RegionalCode)
		}
		k := key{a.Quarter, a.RegionalCode}
		if _, ok := seen[k]; ok {
			return fmt.Errorf("%w: duplicate allocation for q%d %s", ErrInvalidInput, a.Quarter, a.RegionalCode)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func buildQuarterSplit(b *models.Budget, quarter int, regionals []models.Regional, req models.SplitQuarterRequest) (*models.QuarterSplit, error) {
	if quarter < 1 || quarter > 4 {
		return nil, fmt.Errorf("%w: quarter %d out of range", ErrInvalidInput, quarter)
	}
	if len(regionals) == 0 {
		return nil, fmt.Errorf("%w: no regionals configured", ErrInvalidInput)
	}

	names := make([]string, len(regionals))
	for i, r := range regionals {
		names[i] = r.Code
	}
	target := b.QuarterAmount(quarter)

	var (
		p   allocation.Partition
		err error
	)
	switch req.Mode {
	case "equal":
		p, err = allocation.EqualPartition(target, names)
	case "percentage":
		p, err = allocation.PercentagePartition(target, req.Percentages, names)
	case "reset":
		p = allocation.Reset(names)
	default:
		return nil, fmt.Errorf("%w: unknown split mode %q", ErrInvalidInput, req.Mode)
	}
	if err != nil {
		return nil, errors.Join(ErrInvalidInput, err)
	}

	return &models.QuarterSplit{
		BudgetID: b.ID,
		Quarter:  quarter,
		Target:   target,
		Buckets:  p,
		Totals:   allocation.Summarize(target, p),
	}, nil
}
