package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/anggaran-api/events"
	"github.com/LovationAdmin/anggaran-api/models"
	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// EventPublisher delivers workflow events to downstream consumers.
type EventPublisher interface {
	PublishImprestSubmitted(ctx context.Context, msg events.ImprestSubmitted) error
}

type ImprestService struct {
	db        *sql.DB
	publisher EventPublisher
}

func NewImprestService(db *sql.DB, publisher EventPublisher) *ImprestService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ImprestService{db: db, publisher: publisher}
}

// List returns imprest funds newest first, optionally filtered by status.
func (s *ImprestService) List(ctx context.Context, status string) ([]models.ImprestFund, error) {
	if status != "" && !models.ValidImprestStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kelompok_kegiatan, status, total_amount, created_at, updated_at
		FROM imprest_funds
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	funds := []models.ImprestFund{}
	var ids []string
	for rows.Next() {
		var f models.ImprestFund
		if err := rows.Scan(&f.ID, &f.KelompokKegiatan, &f.Status, &f.TotalAmount, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.Items = []models.ImprestItem{}
		funds = append(funds, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return funds, nil
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range funds {
		if fundItems, ok := items[funds[i].ID]; ok {
			funds[i].Items = fundItems
		}
	}
	return funds, nil
}

func (s *ImprestService) Get(ctx context.Context, id string) (*models.ImprestFund, error) {
	var f models.ImprestFund
	err := s.db.QueryRowContext(ctx, `
		SELECT id, kelompok_kegiatan, status, total_amount, created_at, updated_at
		FROM imprest_funds
		WHERE id = $1
	`, id).Scan(&f.ID, &f.KelompokKegiatan, &f.Status, &f.TotalAmount, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translatePQError(err)
	}

	items, err := s.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	f.Items = items[id]
	if f.Items == nil {
		f.Items = []models.ImprestItem{}
	}
	return &f, nil
}

func (s *ImprestService) Create(ctx context.Context, req models.ImprestRequest) (*models.ImprestFund, error) {
	if err := normalizeImprestRequest(&req, true); err != nil {
		return nil, err
	}
	if err := checkTransition("", req.Status); err != nil {
		return nil, err
	}

	id := uuid.New().String()
	total := req.TotalAmount()
	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		now := time.Now()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO imprest_funds (id, kelompok_kegiatan, status, total_amount, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, id, req.KelompokKegiatan, req.Status, total, now)
		if err != nil {
			return translatePQError(err)
		}
		return insertItems(ctx, tx, id, req.Items)
	})
	if err != nil {
		return nil, err
	}

	utils.LogImprestAction("imprest fund created", id, req.Status, total)
	if req.Status == models.ImprestStatusProses {
		s.publishSubmitted(ctx, id, req)
	}
	return s.Get(ctx, id)
}

// Update replaces the fund's header and all of its items.
func (s *ImprestService) Update(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error) {
	return s.update(ctx, id, req, false)
}

// UpdateDraft replaces a draft's header and items and keeps it a draft. A fund
// that has left draft is not touched and ErrConflict is returned.
func (s *ImprestService) UpdateDraft(ctx context.Context, id string, req models.ImprestRequest) (*models.ImprestFund, error) {
	req.Status = models.ImprestStatusDraft
	return s.update(ctx, id, req, true)
}

func (s *ImprestService) update(ctx context.Context, id string, req models.ImprestRequest, draftOnly bool) (*models.ImprestFund, error) {
	if err := normalizeImprestRequest(&req, false); err != nil {
		return nil, err
	}

	total := req.TotalAmount()
	var previous string
	err := utils.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT status FROM imprest_funds WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return translatePQError(err)
		}
		if draftOnly && previous != models.ImprestStatusDraft {
			return fmt.Errorf("%w: imprest fund is no longer a draft", ErrConflict)
		}
		if err := checkTransition(previous, req.Status); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM imprest_items WHERE imprest_fund_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE imprest_funds
			SET kelompok_kegiatan = $1, status = $2, total_amount = $3, updated_at = NOW()
			WHERE id = $4
		`, req.KelompokKegiatan, req.Status, total, id)
		if err != nil {
			return translatePQError(err)
		}
		return insertItems(ctx, tx, id, req.Items)
	})
	if err != nil {
		return nil, err
	}

	utils.LogImprestAction("imprest fund updated", id, req.Status, total)
	if req.Status == models.ImprestStatusProses && previous != models.ImprestStatusProses {
		s.publishSubmitted(ctx, id, req)
	}
	return s.Get(ctx, id)
}

func (s *ImprestService) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM imprest_funds WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	utils.LogImprestAction("imprest fund deleted", id, "", 0)
	return nil
}

// StatusCounts counts funds per status.
func (s *ImprestService) StatusCounts(ctx context.Context) (*models.ImprestStatusCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM imprest_funds GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts models.ImprestStatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case models.ImprestStatusDraft:
			counts.Draft = n
		case models.ImprestStatusProses:
			counts.Proses = n
		case models.ImprestStatusClose:
			counts.Close = n
		}
		counts.All += n
	}
	return &counts, rows.Err()
}

// PurgeStaleDrafts deletes drafts untouched for longer than olderThan.
func (s *ImprestService) PurgeStaleDrafts(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM imprest_funds
		WHERE status = $1 AND updated_at < $2
	`, models.ImprestStatusDraft, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *ImprestService) loadItems(ctx context.Context, fundIDs []string) (map[string][]models.ImprestItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.imprest_fund_id, i.id, i.tanggal, i.uraian, COALESCE(i.gl_account_id::text, ''), i.jumlah,
		       g.code, g.description, g.keterangan
		FROM imprest_items i
		LEFT JOIN gl_accounts g ON g.id = i.gl_account_id
		WHERE i.imprest_fund_id = ANY($1::uuid[])
		ORDER BY i.position
	`, pq.Array(fundIDs))
	if err != nil {
		return nil, translatePQError(err)
	}
	defer rows.Close()

	items := make(map[string][]models.ImprestItem)
	for rows.Next() {
		var fundID string
		var item models.ImprestItem
		var tanggal sql.NullTime
		var code, description, keterangan sql.NullString
		err := rows.Scan(&fundID, &item.ID, &tanggal, &item.Uraian, &item.GLAccountID, &item.Jumlah,
			&code, &description, &keterangan)
		if err != nil {
			return nil, err
		}
		if tanggal.Valid {
			item.Tanggal = tanggal.Time
		}
		if code.Valid {
			item.GLAccount = &models.GLAccount{
				ID:          item.GLAccountID,
				Code:        code.String,
				Description: description.String,
				Keterangan:  keterangan.String,
			}
		}
		items[fundID] = append(items[fundID], item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, fundID string, items []models.ImprestItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO imprest_items (id, imprest_fund_id, tanggal, uraian, gl_account_id, jumlah, position)
			VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7)
		`, uuid.New().String(), fundID, sql.NullTime{Time: item.Tanggal, Valid: !item.Tanggal.IsZero()},
			item.Uraian, item.GLAccountID, item.Jumlah, i)
		if err != nil {
			return translatePQError(err)
		}
	}
	return nil
}

func (s *ImprestService) publishSubmitted(ctx context.Context, id string, req models.ImprestRequest) {
	msg := events.ImprestSubmitted{
		ImprestFundID:    id,
		KelompokKegiatan: req.KelompokKegiatan,
		TotalAmount:      req.TotalAmount(),
		ItemCount:        len(req.Items),
		SubmittedAt:      time.Now(),
	}
	if err := s.publisher.PublishImprestSubmitted(ctx, msg); err != nil {
		// the fund is already saved; a lost notification must not fail the request
		utils.Log.Error("failed to publish imprest submission",
			zap.String("imprest_fund_id", utils.MaskID(id)),
			zap.Error(err))
	}
}

// normalizeImprestRequest trims and defaults req and rejects what cannot be stored.
func normalizeImprestRequest(req *models.ImprestRequest, creating bool) error {
	req.KelompokKegiatan = strings.TrimSpace(req.KelompokKegiatan)
	if req.KelompokKegiatan == "" || req.Items == nil || (creating && len(req.Items) == 0) {
		return fmt.Errorf("%w: kelompok kegiatan and items are required", ErrInvalidInput)
	}

	if req.Status == "" {
		req.Status = models.ImprestStatusDraft
	}
	if !models.ValidImprestStatus(req.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, req.Status)
	}

	for i := range req.Items {
		req.Items[i].Uraian = strings.TrimSpace(req.Items[i].Uraian)
		if req.Items[i].Jumlah < 0 {
			return fmt.Errorf("%w: item %d has a negative amount", ErrInvalidInput, i+1)
		}
	}

	if req.Status != models.ImprestStatusDraft {
		if len(req.Items) == 0 || !req.ItemsComplete() {
			return fmt.Errorf("%w: every item needs a date, a description, a GL account and a positive amount", ErrInvalidInput)
		}
	}
	return nil
}

// checkTransition enforces draft -> proses -> close. A closed fund is frozen.
func checkTransition(from, to string) error {
	switch from {
	case "":
		if to == models.ImprestStatusClose {
			return fmt.Errorf("%w: a new imprest fund cannot be closed", ErrInvalidInput)
		}
	case models.ImprestStatusDraft:
		if to == models.ImprestStatusClose {
			return fmt.Errorf("%w: a draft must be submitted before it is closed", ErrConflict)
		}
	case models.ImprestStatusClose:
		return fmt.Errorf("%w: imprest fund is closed", ErrConflict)
	}
	return nil
}
