package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafe-ledger/internal/core"

	"github.com/shopspring/decimal"
)

type appService struct {
	inventory    core.InventoryService
	pullouts     core.PulloutService
	staff        core.StaffService
	suppliers    core.SupplierService
	orders       core.PurchaseOrderService
	consignments core.ConsignmentService
	reporting    core.ReportingService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	inventory core.InventoryService,
	pullouts core.PulloutService,
	staff core.StaffService,
	suppliers core.SupplierService,
	orders core.PurchaseOrderService,
	consignments core.ConsignmentService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		inventory:    inventory,
		pullouts:     pullouts,
		staff:        staff,
		suppliers:    suppliers,
		orders:       orders,
		consignments: consignments,
		reporting:    reporting,
	}
}

// ── Ingredients ───────────────────────────────────────────────────────────────

func (s *appService) GetStockLevels(ctx context.Context) (*StockResult, error) {
	levels, err := s.inventory.GetStockLevels(ctx)
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels}, nil
}

func (s *appService) GetIngredient(ctx context.Context, ref string) (*IngredientResult, error) {
	ing, err := s.resolveIngredient(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: ing}, nil
}

func (s *appService) CreateIngredient(ctx context.Context, req CreateIngredientRequest) (*IngredientResult, error) {
	supplierID, err := s.resolveSupplierID(ctx, req.SupplierRef)
	if err != nil {
		return nil, err
	}

	ing, err := s.inventory.CreateIngredient(ctx, core.IngredientInput{
		Name:            strings.TrimSpace(req.Name),
		Unit:            strings.TrimSpace(req.Unit),
		MinimumQuantity: req.MinimumQuantity,
		UnitCost:        req.UnitCost,
		SupplierID:      supplierID,
	}, req.OpeningQty)
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: ing, Warnings: lowStockWarning(ing)}, nil
}

func (s *appService) UpdateIngredient(ctx context.Context, ref string, req UpdateIngredientRequest) (*IngredientResult, error) {
	ing, err := s.resolveIngredient(ctx, ref)
	if err != nil {
		return nil, err
	}
	supplierID, err := s.resolveSupplierID(ctx, req.SupplierRef)
	if err != nil {
		return nil, err
	}

	updated, err := s.inventory.UpdateIngredientDetails(ctx, ing.ID, core.IngredientInput{
		Name:            strings.TrimSpace(req.Name),
		Unit:            strings.TrimSpace(req.Unit),
		MinimumQuantity: req.MinimumQuantity,
		UnitCost:        req.UnitCost,
		SupplierID:      supplierID,
	})
	if err != nil {
		return nil, err
	}
	return &IngredientResult{Ingredient: updated, Warnings: lowStockWarning(updated)}, nil
}

func (s *appService) DeactivateIngredient(ctx context.Context, ref string) error {
	ing, err := s.resolveIngredient(ctx, ref)
	if err != nil {
		return err
	}
	return s.inventory.DeactivateIngredient(ctx, ing.ID)
}

func (s *appService) RestockIngredient(ctx context.Context, req RestockRequest) (*PulloutResult, error) {
	input, err := s.buildPulloutInput(ctx, req.IngredientRef, req.Quantity, req.Reason, req.Date, req.RequestedBy, req.ApprovedBy, "")
	if err != nil {
		return nil, err
	}
	p, err := s.pullouts.CreateRestock(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.pulloutResult(ctx, p), nil
}

// ── Pullouts ──────────────────────────────────────────────────────────────────

func (s *appService) ListPullouts(ctx context.Context, req PulloutListRequest) (*PulloutListResult, error) {
	filter := core.PulloutFilter{DateFrom: req.DateFrom, DateTo: req.DateTo}

	switch req.Status {
	case "":
	case string(core.PulloutPending), string(core.PulloutApproved), string(core.PulloutRejected):
		filter.Status = core.PulloutStatus(req.Status)
	default:
		return nil, &core.ValidationError{Field: "status", Reason: "must be pending, approved or rejected"}
	}

	if req.IngredientRef != "" {
		ing, err := s.resolveIngredient(ctx, req.IngredientRef)
		if err != nil {
			return nil, err
		}
		filter.IngredientID = ing.ID
	}

	pullouts, err := s.pullouts.ListPullouts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PulloutListResult{Pullouts: pullouts}, nil
}

func (s *appService) GetPullout(ctx context.Context, id int) (*PulloutResult, error) {
	p, err := s.pullouts.GetPullout(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PulloutResult{Pullout: p}, nil
}

func (s *appService) CreatePullout(ctx context.Context, req CreatePulloutRequest) (*PulloutResult, error) {
	input, err := s.buildPulloutInput(ctx, req.IngredientRef, req.Quantity, req.Reason,
		req.DateOfPullout, req.RequestedBy, req.ApprovedBy, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	p, err := s.pullouts.CreatePullout(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.pulloutResult(ctx, p), nil
}

func (s *appService) ApprovePullout(ctx context.Context, id int, approverRef string) (*PulloutResult, error) {
	approver, err := s.resolveStaff(ctx, approverRef)
	if err != nil {
		return nil, err
	}
	p, err := s.pullouts.ApprovePullout(ctx, id, approver.ID)
	if err != nil {
		return nil, err
	}
	return s.pulloutResult(ctx, p), nil
}

func (s *appService) RejectPullout(ctx context.Context, id int, staffRef, reason string) (*PulloutResult, error) {
	st, err := s.resolveStaff(ctx, staffRef)
	if err != nil {
		return nil, err
	}
	p, err := s.pullouts.RejectPullout(ctx, id, st.ID, reason)
	if err != nil {
		return nil, err
	}
	return s.pulloutResult(ctx, p), nil
}

func (s *appService) EditPullout(ctx context.Context, id int, req EditPulloutRequest) (*PulloutResult, error) {
	p, err := s.pullouts.EditPullout(ctx, id, core.PulloutEdit{
		Quantity:      req.Quantity,
		Reason:        req.Reason,
		DateOfPullout: req.DateOfPullout,
	})
	if err != nil {
		return nil, err
	}
	return s.pulloutResult(ctx, p), nil
}

func (s *appService) DeletePullout(ctx context.Context, id int) error {
	return s.pullouts.DeletePullout(ctx, id)
}

// ── Staff ─────────────────────────────────────────────────────────────────────

func (s *appService) ListStaff(ctx context.Context, includeInactive bool) (*StaffListResult, error) {
	members, err := s.staff.ListStaff(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	return &StaffListResult{Members: members}, nil
}

func (s *appService) CreateStaff(ctx context.Context, req StaffRequest) (*StaffResult, error) {
	st, err := s.staff.CreateStaff(ctx, core.StaffInput{
		FullName: req.FullName, Role: req.Role, Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &StaffResult{Staff: st}, nil
}

func (s *appService) UpdateStaff(ctx context.Context, id int, req StaffRequest) (*StaffResult, error) {
	st, err := s.staff.UpdateStaff(ctx, id, core.StaffInput{
		FullName: req.FullName, Role: req.Role, Phone: req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &StaffResult{Staff: st}, nil
}

func (s *appService) DeactivateStaff(ctx context.Context, id int) error {
	return s.staff.DeactivateStaff(ctx, id)
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *appService) ListSuppliers(ctx context.Context, includeInactive bool) (*SupplierListResult, error) {
	suppliers, err := s.suppliers.GetSuppliers(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	return &SupplierListResult{Suppliers: suppliers}, nil
}

func (s *appService) CreateSupplier(ctx context.Context, req SupplierRequest) (*SupplierResult, error) {
	sp, err := s.suppliers.CreateSupplier(ctx, core.SupplierInput{
		Code: req.Code, Name: req.Name, ContactPerson: req.ContactPerson,
		Email: req.Email, Phone: req.Phone, Address: req.Address,
		LeadTimeDays: req.LeadTimeDays,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: sp}, nil
}

func (s *appService) UpdateSupplier(ctx context.Context, ref string, req SupplierRequest) (*SupplierResult, error) {
	sp, err := s.resolveSupplier(ctx, ref)
	if err != nil {
		return nil, err
	}
	updated, err := s.suppliers.UpdateSupplier(ctx, sp.ID, core.SupplierInput{
		Code: req.Code, Name: req.Name, ContactPerson: req.ContactPerson,
		Email: req.Email, Phone: req.Phone, Address: req.Address,
		LeadTimeDays: req.LeadTimeDays,
	})
	if err != nil {
		return nil, err
	}
	return &SupplierResult{Supplier: updated}, nil
}

func (s *appService) DeactivateSupplier(ctx context.Context, ref string) error {
	sp, err := s.resolveSupplier(ctx, ref)
	if err != nil {
		return err
	}
	return s.suppliers.DeactivateSupplier(ctx, sp.ID)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (s *appService) ListPurchaseOrders(ctx context.Context, status string) (*PurchaseOrderListResult, error) {
	orders, err := s.orders.ListPOs(ctx, core.POStatus(strings.ToUpper(status)))
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderListResult{Orders: orders}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error) {
	po, err := s.orders.GetPO(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePORequest) (*PurchaseOrderResult, error) {
	sp, err := s.resolveSupplier(ctx, req.SupplierRef)
	if err != nil {
		return nil, err
	}
	creator, err := s.resolveStaff(ctx, req.CreatedBy)
	if err != nil {
		return nil, err
	}

	orderDate := req.OrderDate
	if orderDate == "" {
		orderDate = time.Now().Format("2006-01-02")
	}

	lines := make([]core.POLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		ing, err := s.resolveIngredient(ctx, l.IngredientRef)
		if err != nil {
			return nil, err
		}
		lines = append(lines, core.POLineInput{
			IngredientID: ing.ID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
		})
	}

	po, err := s.orders.CreatePO(ctx, core.POInput{
		SupplierID:   sp.ID,
		OrderDate:    orderDate,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
		CreatedBy:    creator.ID,
		Lines:        lines,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) ApprovePurchaseOrder(ctx context.Context, id int, approverRef string) (*PurchaseOrderResult, error) {
	approver, err := s.resolveStaff(ctx, approverRef)
	if err != nil {
		return nil, err
	}
	po, err := s.orders.ApprovePO(ctx, id, approver.ID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) CancelPurchaseOrder(ctx context.Context, id int) (*PurchaseOrderResult, error) {
	po, err := s.orders.CancelPO(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{Order: po}, nil
}

func (s *appService) ReceivePurchaseOrder(ctx context.Context, req ReceivePORequest) (*PurchaseOrderResult, error) {
	receiver, err := s.resolveStaff(ctx, req.ReceivedBy)
	if err != nil {
		return nil, err
	}

	lines := make([]core.ReceiptLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, core.ReceiptLine{POLineID: l.POLineID, QtyReceived: l.QtyReceived})
	}

	po, err := s.orders.ReceivePO(ctx, req.POID, receiver.ID, lines)
	if err != nil {
		return nil, err
	}

	// A receipt that still leaves an ingredient under its minimum is worth
	// flagging to the operator.
	var warnings []string
	for _, line := range po.Lines {
		if ing, err := s.inventory.GetIngredient(ctx, line.IngredientID); err == nil {
			warnings = append(warnings, lowStockWarning(ing)...)
		}
	}
	return &PurchaseOrderResult{Order: po, Warnings: warnings}, nil
}

// ── Consignments ──────────────────────────────────────────────────────────────

func (s *appService) ListConsignments(ctx context.Context, status string) (*ConsignmentListResult, error) {
	consignments, err := s.consignments.ListConsignments(ctx, core.ConsignmentStatus(strings.ToUpper(status)))
	if err != nil {
		return nil, err
	}
	return &ConsignmentListResult{Consignments: consignments}, nil
}

func (s *appService) GetConsignment(ctx context.Context, id int) (*ConsignmentResult, error) {
	c, err := s.consignments.GetConsignment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ConsignmentResult{Consignment: c}, nil
}

func (s *appService) RecordConsignment(ctx context.Context, req RecordConsignmentRequest) (*ConsignmentResult, error) {
	sp, err := s.resolveSupplier(ctx, req.SupplierRef)
	if err != nil {
		return nil, err
	}
	receiver, err := s.resolveStaff(ctx, req.ReceivedBy)
	if err != nil {
		return nil, err
	}

	deliveryDate := req.DeliveryDate
	if deliveryDate == "" {
		deliveryDate = time.Now().Format("2006-01-02")
	}

	lines := make([]core.ConsignmentLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		ing, err := s.resolveIngredient(ctx, l.IngredientRef)
		if err != nil {
			return nil, err
		}
		lines = append(lines, core.ConsignmentLineInput{
			IngredientID: ing.ID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
		})
	}

	c, err := s.consignments.RecordConsignment(ctx, core.ConsignmentInput{
		SupplierID:   sp.ID,
		DeliveryDate: deliveryDate,
		Notes:        req.Notes,
		ReceivedBy:   receiver.ID,
		Lines:        lines,
	})
	if err != nil {
		return nil, err
	}
	return &ConsignmentResult{Consignment: c}, nil
}

func (s *appService) StockConsignment(ctx context.Context, id int) (*ConsignmentResult, error) {
	c, err := s.consignments.StockConsignment(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ConsignmentResult{Consignment: c}, nil
}

func (s *appService) VoidConsignment(ctx context.Context, id int, reason string) (*ConsignmentResult, error) {
	c, err := s.consignments.VoidConsignment(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	return &ConsignmentResult{Consignment: c}, nil
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *appService) GetStockValuation(ctx context.Context) (*core.ValuationReport, error) {
	return s.reporting.GetStockValuation(ctx)
}

func (s *appService) GetLowStockReport(ctx context.Context) (*LowStockResult, error) {
	lines, err := s.reporting.GetLowStockReport(ctx)
	if err != nil {
		return nil, err
	}
	return &LowStockResult{Lines: lines}, nil
}

func (s *appService) GetPulloutSummary(ctx context.Context, fromDate, toDate string) (*core.PulloutSummary, error) {
	return s.reporting.GetPulloutSummary(ctx, fromDate, toDate)
}

func (s *appService) GetMovementHistory(ctx context.Context, ref, fromDate, toDate string) (*MovementHistoryResult, error) {
	ing, err := s.resolveIngredient(ctx, ref)
	if err != nil {
		return nil, err
	}
	lines, err := s.reporting.GetMovementHistory(ctx, ing.ID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return &MovementHistoryResult{
		IngredientID:   ing.ID,
		IngredientName: ing.Name,
		Unit:           ing.Unit,
		Lines:          lines,
	}, nil
}

// ── private helpers ───────────────────────────────────────────────────────────

// resolveIngredient looks up an ingredient by numeric ID or name.
func (s *appService) resolveIngredient(ctx context.Context, ref string) (*core.Ingredient, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &core.ValidationError{Field: "ingredient", Reason: "is required"}
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return s.inventory.GetIngredient(ctx, id)
	}
	return s.inventory.GetIngredientByName(ctx, ref)
}

// resolveStaff looks up a staff member by numeric ID or full name.
func (s *appService) resolveStaff(ctx context.Context, ref string) (*core.Staff, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &core.ValidationError{Field: "staff", Reason: "is required"}
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return s.staff.GetStaff(ctx, id)
	}
	return s.staff.GetStaffByName(ctx, ref)
}

// resolveSupplier looks up a supplier by numeric ID or code.
func (s *appService) resolveSupplier(ctx context.Context, ref string) (*core.Supplier, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &core.ValidationError{Field: "supplier", Reason: "is required"}
	}
	if id, err := strconv.Atoi(ref); err == nil {
		return s.suppliers.GetSupplier(ctx, id)
	}
	return s.suppliers.GetSupplierByCode(ctx, ref)
}

// resolveSupplierID resolves an optional supplier reference to a nullable ID.
func (s *appService) resolveSupplierID(ctx context.Context, ref string) (*int, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	sp, err := s.resolveSupplier(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &sp.ID, nil
}

// buildPulloutInput assembles a core.PulloutInput from adapter-level
// references, defaulting the date to today.
func (s *appService) buildPulloutInput(ctx context.Context, ingredientRef string,
	quantity decimal.Decimal, reason, date, requestedBy, approvedBy, idempotencyKey string) (core.PulloutInput, error) {

	var input core.PulloutInput

	ing, err := s.resolveIngredient(ctx, ingredientRef)
	if err != nil {
		return input, err
	}
	requester, err := s.resolveStaff(ctx, requestedBy)
	if err != nil {
		return input, err
	}

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	input = core.PulloutInput{
		IngredientID:   ing.ID,
		Quantity:       quantity,
		Reason:         reason,
		DateOfPullout:  date,
		RequestedBy:    requester.ID,
		IdempotencyKey: idempotencyKey,
	}
	if approvedBy != "" {
		approver, err := s.resolveStaff(ctx, approvedBy)
		if err != nil {
			return input, err
		}
		input.ApprovedBy = &approver.ID
	}
	return input, nil
}

// pulloutResult wraps a pullout with the low-stock warning for its ingredient.
func (s *appService) pulloutResult(ctx context.Context, p *core.Pullout) *PulloutResult {
	result := &PulloutResult{Pullout: p}
	if ing, err := s.inventory.GetIngredient(ctx, p.IngredientID); err == nil {
		result.Warnings = lowStockWarning(ing)
	}
	return result
}

// lowStockWarning returns a single warning line when the ingredient sits at
// or below its minimum, nil otherwise.
func lowStockWarning(ing *core.Ingredient) []string {
	if ing == nil || !ing.IsLowStock() {
		return nil
	}
	return []string{fmt.Sprintf("%s is at or below minimum stock: %s %s on hand, minimum %s",
		ing.Name, ing.Quantity.String(), ing.Unit, ing.MinimumQuantity.String())}
}
