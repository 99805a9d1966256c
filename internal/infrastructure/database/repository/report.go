package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"honeypot-lab/internal/domain/models"
)

// ErrReportNotFound is returned when no archived report matches
var ErrReportNotFound = errors.New("report not found")

// ReportRepository archives emitted intelligence reports
type ReportRepository struct {
	pool *pgxpool.Pool
}

// ArchivedReport is a stored report row
type ArchivedReport struct {
	ID          uuid.UUID      `json:"id"`
	SessionID   string         `json:"session_id"`
	Report      *models.Report `json:"report"`
	Delivered   bool           `json:"delivered"`
	DeliveryErr string         `json:"delivery_error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Save archives an emitted report with its delivery outcome
func (r *ReportRepository) Save(ctx context.Context, report *models.Report, delivered bool, deliveryErr string) (*ArchivedReport, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	archived := &ArchivedReport{
		ID:          uuid.New(),
		SessionID:   report.SessionID,
		Report:      report,
		Delivered:   delivered,
		DeliveryErr: deliveryErr,
		CreatedAt:   time.Now(),
	}

	query := `
		INSERT INTO reports (id, session_id, payload, delivered, delivery_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err = r.pool.QueryRow(ctx, query,
		archived.ID, archived.SessionID, payload, archived.Delivered,
		archived.DeliveryErr, archived.CreatedAt,
	).Scan(&archived.ID, &archived.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to archive report: %w", err)
	}

	return archived, nil
}

// GetBySessionID retrieves the most recent archived report for a session
func (r *ReportRepository) GetBySessionID(ctx context.Context, sessionID string) (*ArchivedReport, error) {
	query := `
		SELECT id, session_id, payload, delivered, delivery_error, created_at
		FROM reports
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanReport(r.pool.QueryRow(ctx, query, sessionID))
}

// List retrieves archived reports, newest first
func (r *ReportRepository) List(ctx context.Context, limit, offset int) ([]*ArchivedReport, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reports").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, session_id, payload, delivered, delivery_error, created_at
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*ArchivedReport
	for rows.Next() {
		report, err := r.scanReportFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, report)
	}

	return reports, total, rows.Err()
}

// MarkDelivered updates the delivery outcome for an archived report
func (r *ReportRepository) MarkDelivered(ctx context.Context, id uuid.UUID, delivered bool, deliveryErr string) error {
	query := `UPDATE reports SET delivered = $2, delivery_error = $3 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, delivered, deliveryErr)
	if err != nil {
		return fmt.Errorf("failed to update report delivery: %w", err)
	}
	return nil
}

func (r *ReportRepository) scanReport(row pgx.Row) (*ArchivedReport, error) {
	var archived ArchivedReport
	var payload []byte

	err := row.Scan(&archived.ID, &archived.SessionID, &payload,
		&archived.Delivered, &archived.DeliveryErr, &archived.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := json.Unmarshal(payload, &archived.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}

	return &archived, nil
}

func (r *ReportRepository) scanReportFromRows(rows pgx.Rows) (*ArchivedReport, error) {
	var archived ArchivedReport
	var payload []byte

	err := rows.Scan(&archived.ID, &archived.SessionID, &payload,
		&archived.Delivered, &archived.DeliveryErr, &archived.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}

	if err := json.Unmarshal(payload, &archived.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}

	return &archived, nil
}
