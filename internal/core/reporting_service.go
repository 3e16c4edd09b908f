package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// ValuationLine values one ingredient's on-hand stock at its current
// weighted average unit cost.
type ValuationLine struct {
	IngredientID int             `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"on_hand"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Value        decimal.Decimal `json:"value"` // OnHand × UnitCost
}

// ValuationReport is the inventory valuation at the time of the query.
type ValuationReport struct {
	AsOf       time.Time       `json:"as_of"`
	Lines      []ValuationLine `json:"lines"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// LowStockLine is one ingredient sitting at or below its minimum level.
// Shortfall is how much is missing to reach the minimum, never negative.
type LowStockLine struct {
	IngredientID int             `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"on_hand"`
	Minimum      decimal.Decimal `json:"minimum"`
	Shortfall    decimal.Decimal `json:"shortfall"`
	SupplierCode *string         `json:"supplier_code,omitempty"`
	LeadTimeDays *int            `json:"lead_time_days,omitempty"`
}

// PulloutSummaryLine aggregates pullout activity for one ingredient within
// a date range. QtyRemoved is the net applied effect (restocks offset
// removals); ValueRemoved prices it at the current unit cost.
type PulloutSummaryLine struct {
	IngredientID  int             `json:"ingredient_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	PendingCount  int             `json:"pending_count"`
	ApprovedCount int             `json:"approved_count"`
	RejectedCount int             `json:"rejected_count"`
	QtyRemoved    decimal.Decimal `json:"qty_removed"`
	ValueRemoved  decimal.Decimal `json:"value_removed"`
}

// PulloutSummary is the pullout activity report for a date range.
type PulloutSummary struct {
	FromDate   string               `json:"from_date"`
	ToDate     string               `json:"to_date"`
	Lines      []PulloutSummaryLine `json:"lines"`
	TotalValue decimal.Decimal      `json:"total_value"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only reporting queries over inventory and
// the movement ledger.
type ReportingService interface {
	// GetStockValuation values all active ingredients at their current
	// weighted average cost, ordered by value descending.
	GetStockValuation(ctx context.Context) (*ValuationReport, error)

	// GetLowStockReport returns active ingredients at or below their minimum
	// level, worst shortfall first, with supplier reorder hints.
	GetLowStockReport(ctx context.Context) ([]LowStockLine, error)

	// GetPulloutSummary aggregates pullout activity per ingredient within the
	// date range. fromDate and toDate are optional; pass empty for no bound.
	GetPulloutSummary(ctx context.Context, fromDate, toDate string) (*PulloutSummary, error)

	// GetMovementHistory returns the movement trail for one ingredient with a
	// running on-hand balance after each row. Dates are optional bounds.
	GetMovementHistory(ctx context.Context, ingredientID int, fromDate, toDate string) ([]MovementLine, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool   *pgxpool.Pool
	ledger *StockLedger
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool, ledger *StockLedger) ReportingService {
	return &reportingService{pool: pool, ledger: ledger}
}

// ── GetStockValuation ─────────────────────────────────────────────────────────

func (s *reportingService) GetStockValuation(ctx context.Context) (*ValuationReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, unit, quantity, unit_cost, quantity * unit_cost AS value
		FROM ingredients
		WHERE is_active = true
		ORDER BY quantity * unit_cost DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock valuation: %w", err)
	}
	defer rows.Close()

	report := &ValuationReport{AsOf: time.Now()}
	for rows.Next() {
		var vl ValuationLine
		if err := rows.Scan(&vl.IngredientID, &vl.Name, &vl.Unit, &vl.OnHand, &vl.UnitCost, &vl.Value); err != nil {
			return nil, fmt.Errorf("failed to scan valuation line: %w", err)
		}
		report.Lines = append(report.Lines, vl)
		report.TotalValue = report.TotalValue.Add(vl.Value)
	}
	return report, rows.Err()
}

// ── GetLowStockReport ─────────────────────────────────────────────────────────

func (s *reportingService) GetLowStockReport(ctx context.Context) ([]LowStockLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.name, i.unit, i.quantity, i.minimum_quantity,
		       i.minimum_quantity - i.quantity AS shortfall,
		       s.code, s.lead_time_days
		FROM ingredients i
		LEFT JOIN suppliers s ON s.id = i.supplier_id
		WHERE i.is_active = true AND i.quantity <= i.minimum_quantity
		ORDER BY shortfall DESC, i.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock report: %w", err)
	}
	defer rows.Close()

	var lines []LowStockLine
	for rows.Next() {
		var ll LowStockLine
		if err := rows.Scan(
			&ll.IngredientID, &ll.Name, &ll.Unit, &ll.OnHand, &ll.Minimum,
			&ll.Shortfall, &ll.SupplierCode, &ll.LeadTimeDays,
		); err != nil {
			return nil, fmt.Errorf("failed to scan low stock line: %w", err)
		}
		if ll.Shortfall.IsNegative() {
			ll.Shortfall = decimal.Zero
		}
		lines = append(lines, ll)
	}
	return lines, rows.Err()
}

// ── GetPulloutSummary ─────────────────────────────────────────────────────────

// GetPulloutSummary queries pullouts directly so the result is always current.
// Only rows whose date_of_pullout falls in the range are counted; applied
// deltas of deleted pullouts are naturally absent since deletion reverses
// and removes them.
func (s *reportingService) GetPulloutSummary(ctx context.Context, fromDate, toDate string) (*PulloutSummary, error) {
	q := `
		SELECT i.id, i.name, i.unit,
		       COUNT(*) FILTER (WHERE p.status = 'pending')  AS pending_count,
		       COUNT(*) FILTER (WHERE p.status = 'approved') AS approved_count,
		       COUNT(*) FILTER (WHERE p.status = 'rejected') AS rejected_count,
		       COALESCE(SUM(p.applied_delta), 0)             AS qty_removed,
		       COALESCE(SUM(p.applied_delta), 0) * i.unit_cost AS value_removed
		FROM pullouts p
		JOIN ingredients i ON i.id = p.ingredient_id
		WHERE 1=1`

	var args []any
	if fromDate != "" {
		args = append(args, fromDate)
		q += fmt.Sprintf(" AND p.date_of_pullout >= $%d::date", len(args))
	}
	if toDate != "" {
		args = append(args, toDate)
		q += fmt.Sprintf(" AND p.date_of_pullout <= $%d::date", len(args))
	}
	q += `
		GROUP BY i.id, i.name, i.unit, i.unit_cost
		ORDER BY value_removed DESC, i.name`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pullout summary: %w", err)
	}
	defer rows.Close()

	summary := &PulloutSummary{FromDate: fromDate, ToDate: toDate}
	for rows.Next() {
		var sl PulloutSummaryLine
		if err := rows.Scan(
			&sl.IngredientID, &sl.Name, &sl.Unit,
			&sl.PendingCount, &sl.ApprovedCount, &sl.RejectedCount,
			&sl.QtyRemoved, &sl.ValueRemoved,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pullout summary line: %w", err)
		}
		summary.Lines = append(summary.Lines, sl)
		summary.TotalValue = summary.TotalValue.Add(sl.ValueRemoved)
	}
	return summary, rows.Err()
}

// ── GetMovementHistory ────────────────────────────────────────────────────────

func (s *reportingService) GetMovementHistory(ctx context.Context, ingredientID int, fromDate, toDate string) ([]MovementLine, error) {
	return s.ledger.GetMovements(ctx, ingredientID, fromDate, toDate)
}
