package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Emananii/MyDuka-sub000/internal/cache"
	"github.com/Emananii/MyDuka-sub000/internal/domain"
	"github.com/Emananii/MyDuka-sub000/internal/store"
	"github.com/Emananii/MyDuka-sub000/internal/store/memory"
)

func newTestService() *Service {
	repo := memory.NewSeeded()
	return New(repo, cache.NoopSummaryCache{}, 5*time.Second, "main-store")
}

func adminCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "admin", Role: "admin"})
}

func clerkCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "clerk", Role: "clerk"})
}

func cashierCtx() context.Context {
	return WithActor(context.Background(), domain.Actor{Username: "cashier", Role: "cashier"})
}

func stockOf(t *testing.T, svc *Service, storeID string, sku string) domain.StockRecord {
	t.Helper()
	records, err := svc.StockOverview(context.Background(), storeID)
	if err != nil {
		t.Fatalf("stock overview failed: %v", err)
	}
	for _, record := range records {
		if record.SKU == sku {
			return record
		}
	}
	t.Fatalf("no stock record for %s at %s", sku, storeID)
	return domain.StockRecord{}
}

func TestCreateSaleDecrementsStockAndSnapshotsPrice(t *testing.T) {
	svc := newTestService()

	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines: []domain.SaleLineInput{
			{SKU: "SKU-MAIZE-01", Qty: 2},
			{SKU: "SKU-MILK-01", Qty: 3},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	if resp.Sale.CashierID != "cashier" {
		t.Fatalf("expected cashier id from actor, got %s", resp.Sale.CashierID)
	}
	if resp.Sale.PaymentStatus != domain.SalePaid {
		t.Fatalf("expected default payment status paid, got %s", resp.Sale.PaymentStatus)
	}
	if len(resp.Sale.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resp.Sale.Lines))
	}
	if resp.Sale.Lines[0].PriceAtSaleCents != 16500 {
		t.Fatalf("expected snapshotted price 16500, got %d", resp.Sale.Lines[0].PriceAtSaleCents)
	}
	wantTotal := int64(2*16500 + 3*6000)
	if resp.TotalCents != wantTotal {
		t.Fatalf("expected total %d, got %d", wantTotal, resp.TotalCents)
	}

	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 98 {
		t.Fatalf("expected maize stock 98 after sale, got %d", got)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MILK-01").QtyOnHand; got != 97 {
		t.Fatalf("expected milk stock 97 after sale, got %d", got)
	}
}

func TestCreateSaleInsufficientStockLeavesNothingApplied(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines: []domain.SaleLineInput{
			{SKU: "SKU-MAIZE-01", Qty: 5},
			{SKU: "SKU-MILK-01", Qty: 500},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	var detail *store.InsufficientStockError
	if !errors.As(err, &detail) {
		t.Fatalf("expected typed insufficient stock error, got %v", err)
	}
	if detail.SKU != "SKU-MILK-01" || detail.Available != 100 || detail.Requested != 500 {
		t.Fatalf("unexpected shortage detail: %+v", detail)
	}

	// The passing first line must not have been applied.
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected maize stock untouched at 100, got %d", got)
	}

	sales, err := svc.ListSales(context.Background(), "main-store", "", 100)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale recorded, got %d", len(sales))
	}
}

func TestCreateSaleAggregatesDuplicateLineSKUs(t *testing.T) {
	svc := newTestService()

	// Two lines of the same product must fit the stock combined.
	_, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines: []domain.SaleLineInput{
			{SKU: "SKU-MAIZE-01", Qty: 60},
			{SKU: "SKU-MAIZE-01", Qty: 60},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	var detail *store.InsufficientStockError
	if !errors.As(err, &detail) {
		t.Fatalf("expected typed insufficient stock error, got %v", err)
	}
	if detail.SKU != "SKU-MAIZE-01" || detail.Available != 100 || detail.Requested != 120 {
		t.Fatalf("unexpected shortage detail: %+v", detail)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected maize stock untouched at 100, got %d", got)
	}

	// Split lines that do fit go through, and every line snapshots the
	// live price.
	resp, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines: []domain.SaleLineInput{
			{SKU: "SKU-MAIZE-01", Qty: 30},
			{SKU: "SKU-MAIZE-01", Qty: 30},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	for i, line := range resp.Sale.Lines {
		if line.PriceAtSaleCents != 16500 {
			t.Fatalf("line %d: expected snapshotted price 16500, got %d", i, line.PriceAtSaleCents)
		}
	}
	if wantTotal := int64(60 * 16500); resp.TotalCents != wantTotal {
		t.Fatalf("expected total %d, got %d", wantTotal, resp.TotalCents)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 40 {
		t.Fatalf("expected maize stock 40 after sale, got %d", got)
	}
}

func TestCreateSaleRequiresCashierOrAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateSale(clerkCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines:   []domain.SaleLineInput{{SKU: "SKU-MAIZE-01", Qty: 1}},
	})
	if err == nil {
		t.Fatalf("expected clerk sale to be rejected")
	}
}

func TestDeleteSaleLineRestoresStockAndIsIdempotent(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines: []domain.SaleLineInput{
			{SKU: "SKU-MAIZE-01", Qty: 4},
			{SKU: "SKU-TEA-01", Qty: 1},
		},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}
	lineID := created.Sale.Lines[0].ID

	deleted, err := svc.DeleteSaleLine(adminCtx(), created.Sale.ID, lineID)
	if err != nil {
		t.Fatalf("delete sale line failed: %v", err)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected maize stock restored to 100, got %d", got)
	}
	if deleted.TotalCents != 12500 {
		t.Fatalf("expected total recomputed to 12500, got %d", deleted.TotalCents)
	}
	if !deleted.Sale.Lines[0].Deleted {
		t.Fatalf("expected first line marked deleted")
	}

	// Deleting the same line again is a no-op, not a second restore.
	again, err := svc.DeleteSaleLine(adminCtx(), created.Sale.ID, lineID)
	if err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected maize stock still 100 after repeat delete, got %d", got)
	}
	if again.TotalCents != 12500 {
		t.Fatalf("expected total unchanged at 12500, got %d", again.TotalCents)
	}
}

func TestDeleteSaleLineRequiresAdmin(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines:   []domain.SaleLineInput{{SKU: "SKU-MAIZE-01", Qty: 1}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	_, err = svc.DeleteSaleLine(cashierCtx(), created.Sale.ID, created.Sale.Lines[0].ID)
	if err == nil {
		t.Fatalf("expected non-admin line delete to fail")
	}
}

func TestDeleteSaleHidesWithoutTouchingStock(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines:   []domain.SaleLineInput{{SKU: "SKU-SUGAR-01", Qty: 10}},
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	deleted, err := svc.DeleteSale(adminCtx(), created.Sale.ID)
	if err != nil {
		t.Fatalf("delete sale failed: %v", err)
	}
	if !deleted.Sale.Deleted {
		t.Fatalf("expected sale marked deleted")
	}
	if got := stockOf(t, svc, "main-store", "SKU-SUGAR-01").QtyOnHand; got != 90 {
		t.Fatalf("expected sugar stock still 90 after whole-sale delete, got %d", got)
	}

	sales, err := svc.ListSales(context.Background(), "main-store", "", 100)
	if err != nil {
		t.Fatalf("list sales failed: %v", err)
	}
	for _, sale := range sales {
		if sale.Sale.ID == created.Sale.ID {
			t.Fatalf("expected deleted sale to be hidden from listing")
		}
	}
}

func TestCreatePurchaseIncrementsStockAndStoresTotal(t *testing.T) {
	svc := newTestService()

	supplier, err := svc.CreateSupplier(adminCtx(), domain.SupplierCreateRequest{
		Name:  "Mama Mboga Distributors",
		Phone: "+254700111222",
	})
	if err != nil {
		t.Fatalf("create supplier failed: %v", err)
	}

	purchase, err := svc.CreatePurchase(clerkCtx(), domain.PurchaseCreateRequest{
		StoreID:         "main-store",
		SupplierID:      supplier.ID,
		ReferenceNumber: "INV-2024-001",
		IsPaid:          true,
		Lines: []domain.PurchaseLine{
			{SKU: "SKU-MAIZE-01", Qty: 50, UnitCostCents: 14000},
			{SKU: "SKU-RICE-01", Qty: 20, UnitCostCents: 18000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	wantTotal := int64(50*14000 + 20*18000)
	if purchase.TotalAmountCents != wantTotal {
		t.Fatalf("expected stored total %d, got %d", wantTotal, purchase.TotalAmountCents)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 150 {
		t.Fatalf("expected maize stock 150 after purchase, got %d", got)
	}
	if got := stockOf(t, svc, "main-store", "SKU-RICE-01").QtyOnHand; got != 120 {
		t.Fatalf("expected rice stock 120 after purchase, got %d", got)
	}
}

func TestCreatePurchaseSeedsMissingStockRecord(t *testing.T) {
	svc := newTestService()

	supplier, err := svc.CreateSupplier(adminCtx(), domain.SupplierCreateRequest{Name: "Westlands Wholesale"})
	if err != nil {
		t.Fatalf("create supplier failed: %v", err)
	}

	// branch-westlands starts with no stock records at all.
	_, err = svc.CreatePurchase(clerkCtx(), domain.PurchaseCreateRequest{
		StoreID:         "branch-westlands",
		SupplierID:      supplier.ID,
		ReferenceNumber: "INV-2024-002",
		Lines: []domain.PurchaseLine{
			{SKU: "SKU-BREAD-01", Qty: 30, UnitCostCents: 5000},
		},
	})
	if err != nil {
		t.Fatalf("create purchase failed: %v", err)
	}

	record := stockOf(t, svc, "branch-westlands", "SKU-BREAD-01")
	if record.QtyOnHand != 30 {
		t.Fatalf("expected bread stock 30 at branch, got %d", record.QtyOnHand)
	}
	if record.UnitPriceCents != 5000 {
		t.Fatalf("expected seeded unit price 5000, got %d", record.UnitPriceCents)
	}
}

func TestSupplyRequestApproveIncrementsStockOnce(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateSupplyRequest(clerkCtx(), domain.SupplyRequestCreateRequest{
		StoreID: "main-store",
		SKU:     "SKU-SOAP-01",
		Qty:     25,
	})
	if err != nil {
		t.Fatalf("create supply request failed: %v", err)
	}
	if created.Status != domain.SupplyStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.ClerkID != "clerk" {
		t.Fatalf("expected clerk id from actor, got %s", created.ClerkID)
	}

	approved, err := svc.RespondSupplyRequest(adminCtx(), created.ID, domain.SupplyRequestRespondRequest{
		Action:  domain.SupplyActionApprove,
		Comment: "restock approved",
	})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domain.SupplyStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.RespondedAt == nil {
		t.Fatalf("expected responded_at to be set")
	}
	if got := stockOf(t, svc, "main-store", "SKU-SOAP-01").QtyOnHand; got != 125 {
		t.Fatalf("expected soap stock 125 after approval, got %d", got)
	}

	// A second response to a terminal request conflicts and moves no stock.
	_, err = svc.RespondSupplyRequest(adminCtx(), created.ID, domain.SupplyRequestRespondRequest{
		Action: domain.SupplyActionApprove,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on second response, got %v", err)
	}
	if got := stockOf(t, svc, "main-store", "SKU-SOAP-01").QtyOnHand; got != 125 {
		t.Fatalf("expected soap stock still 125, got %d", got)
	}
}

func TestSupplyRequestDeclineMovesNoStock(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateSupplyRequest(clerkCtx(), domain.SupplyRequestCreateRequest{
		StoreID: "main-store",
		SKU:     "SKU-SALT-01",
		Qty:     40,
	})
	if err != nil {
		t.Fatalf("create supply request failed: %v", err)
	}

	declined, err := svc.RespondSupplyRequest(adminCtx(), created.ID, domain.SupplyRequestRespondRequest{
		Action:  domain.SupplyActionDecline,
		Comment: "budget hold",
	})
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != domain.SupplyStatusDeclined {
		t.Fatalf("expected declined status, got %s", declined.Status)
	}
	if got := stockOf(t, svc, "main-store", "SKU-SALT-01").QtyOnHand; got != 100 {
		t.Fatalf("expected salt stock unchanged at 100, got %d", got)
	}
}

func TestSupplyRequestRequiresClerk(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateSupplyRequest(adminCtx(), domain.SupplyRequestCreateRequest{
		StoreID: "main-store",
		SKU:     "SKU-SALT-01",
		Qty:     5,
	})
	if err == nil {
		t.Fatalf("expected non-clerk supply request to fail")
	}
}

func TestTransferApproveMovesStockBetweenStores(t *testing.T) {
	svc := newTestService()

	created, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "branch-westlands",
		Lines: []domain.TransferLine{
			{SKU: "SKU-MAIZE-01", Qty: 10},
			{SKU: "SKU-EGGS-01", Qty: 5},
		},
	})
	if err != nil {
		t.Fatalf("initiate transfer failed: %v", err)
	}
	if created.Status != domain.TransferStatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}

	approved, err := svc.ApproveTransfer(adminCtx(), created.ID)
	if err != nil {
		t.Fatalf("approve transfer failed: %v", err)
	}
	if approved.Status != domain.TransferStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}
	if approved.ApprovedBy != "admin" {
		t.Fatalf("expected approver admin, got %s", approved.ApprovedBy)
	}

	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 90 {
		t.Fatalf("expected source maize stock 90, got %d", got)
	}
	dest := stockOf(t, svc, "branch-westlands", "SKU-MAIZE-01")
	if dest.QtyOnHand != 10 {
		t.Fatalf("expected destination maize stock 10, got %d", dest.QtyOnHand)
	}
	if dest.UnitPriceCents != 16500 {
		t.Fatalf("expected destination price seeded from source 16500, got %d", dest.UnitPriceCents)
	}
}

func TestTransferApproveIsAllOrNothing(t *testing.T) {
	svc := newTestService()

	created, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "branch-westlands",
		Lines: []domain.TransferLine{
			{SKU: "SKU-MAIZE-01", Qty: 10},
			{SKU: "SKU-EGGS-01", Qty: 1000},
		},
	})
	if err != nil {
		t.Fatalf("initiate transfer failed: %v", err)
	}

	_, err = svc.ApproveTransfer(adminCtx(), created.ID)
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	// The first line must not have moved and the transfer stays pending.
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected source maize stock untouched at 100, got %d", got)
	}
	records, err := svc.StockOverview(context.Background(), "branch-westlands")
	if err != nil {
		t.Fatalf("stock overview failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected destination untouched, got %d records", len(records))
	}

	transfer, err := svc.GetTransfer(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get transfer failed: %v", err)
	}
	if transfer.Status != domain.TransferStatusPending {
		t.Fatalf("expected transfer still pending, got %s", transfer.Status)
	}
}

func TestTransferApproveAggregatesDuplicateLineSKUs(t *testing.T) {
	svc := newTestService()

	created, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "branch-westlands",
		Lines: []domain.TransferLine{
			{SKU: "SKU-MAIZE-01", Qty: 60},
			{SKU: "SKU-MAIZE-01", Qty: 60},
		},
	})
	if err != nil {
		t.Fatalf("initiate transfer failed: %v", err)
	}

	// Combined the two lines overdraw the source, so nothing may move.
	_, err = svc.ApproveTransfer(adminCtx(), created.ID)
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 100 {
		t.Fatalf("expected source maize stock untouched at 100, got %d", got)
	}
	records, err := svc.StockOverview(context.Background(), "branch-westlands")
	if err != nil {
		t.Fatalf("stock overview failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected destination untouched, got %d records", len(records))
	}
	transfer, err := svc.GetTransfer(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get transfer failed: %v", err)
	}
	if transfer.Status != domain.TransferStatusPending {
		t.Fatalf("expected transfer still pending, got %s", transfer.Status)
	}

	// Duplicate lines that fit combined move in full.
	fits, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "branch-westlands",
		Lines: []domain.TransferLine{
			{SKU: "SKU-MAIZE-01", Qty: 30},
			{SKU: "SKU-MAIZE-01", Qty: 30},
		},
	})
	if err != nil {
		t.Fatalf("initiate transfer failed: %v", err)
	}
	if _, err := svc.ApproveTransfer(adminCtx(), fits.ID); err != nil {
		t.Fatalf("approve transfer failed: %v", err)
	}
	if got := stockOf(t, svc, "main-store", "SKU-MAIZE-01").QtyOnHand; got != 40 {
		t.Fatalf("expected source maize stock 40 after transfer, got %d", got)
	}
	if got := stockOf(t, svc, "branch-westlands", "SKU-MAIZE-01").QtyOnHand; got != 60 {
		t.Fatalf("expected destination maize stock 60 after transfer, got %d", got)
	}
}

func TestTransferRejectIsTerminal(t *testing.T) {
	svc := newTestService()

	created, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "branch-westlands",
		Lines:       []domain.TransferLine{{SKU: "SKU-TEA-01", Qty: 3}},
	})
	if err != nil {
		t.Fatalf("initiate transfer failed: %v", err)
	}

	rejected, err := svc.RejectTransfer(adminCtx(), created.ID, domain.TransferRejectRequest{Comment: "not needed"})
	if err != nil {
		t.Fatalf("reject transfer failed: %v", err)
	}
	if rejected.Status != domain.TransferStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
	if got := stockOf(t, svc, "main-store", "SKU-TEA-01").QtyOnHand; got != 100 {
		t.Fatalf("expected tea stock unchanged at 100, got %d", got)
	}

	_, err = svc.ApproveTransfer(adminCtx(), created.ID)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict approving rejected transfer, got %v", err)
	}
}

func TestTransferRejectsSameStore(t *testing.T) {
	svc := newTestService()

	_, err := svc.InitiateTransfer(clerkCtx(), domain.TransferCreateRequest{
		FromStoreID: "main-store",
		ToStoreID:   "main-store",
		Lines:       []domain.TransferLine{{SKU: "SKU-TEA-01", Qty: 1}},
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for same-store transfer, got %v", err)
	}
}

func TestRecordSpoilageMovesStockToSpoiled(t *testing.T) {
	svc := newTestService()

	record, err := svc.RecordSpoilage(clerkCtx(), domain.SpoilageRequest{
		StoreID: "main-store",
		SKU:     "SKU-MILK-01",
		Qty:     6,
	})
	if err != nil {
		t.Fatalf("record spoilage failed: %v", err)
	}
	if record.QtyOnHand != 94 {
		t.Fatalf("expected on-hand 94 after spoilage, got %d", record.QtyOnHand)
	}
	if record.QtySpoiled != 6 {
		t.Fatalf("expected spoiled 6, got %d", record.QtySpoiled)
	}
}

func TestSetStockPricingRequiresAdmin(t *testing.T) {
	svc := newTestService()

	_, err := svc.SetStockPricing(clerkCtx(), domain.StockPricingRequest{
		StoreID:           "main-store",
		SKU:               "SKU-MAIZE-01",
		UnitPriceCents:    17500,
		LowStockThreshold: 15,
	})
	if err == nil {
		t.Fatalf("expected non-admin pricing change to fail")
	}

	record, err := svc.SetStockPricing(adminCtx(), domain.StockPricingRequest{
		StoreID:           "main-store",
		SKU:               "SKU-MAIZE-01",
		UnitPriceCents:    17500,
		LowStockThreshold: 15,
	})
	if err != nil {
		t.Fatalf("admin pricing change failed: %v", err)
	}
	if record.UnitPriceCents != 17500 || record.LowStockThreshold != 15 {
		t.Fatalf("unexpected pricing record: %+v", record)
	}
}

func TestLowStockReflectsThreshold(t *testing.T) {
	svc := newTestService()

	if _, err := svc.SetStockPricing(adminCtx(), domain.StockPricingRequest{
		StoreID:           "main-store",
		SKU:               "SKU-BREAD-01",
		UnitPriceCents:    6500,
		LowStockThreshold: 100,
	}); err != nil {
		t.Fatalf("set pricing failed: %v", err)
	}

	low, err := svc.LowStock(context.Background(), "main-store")
	if err != nil {
		t.Fatalf("low stock failed: %v", err)
	}
	found := false
	for _, record := range low {
		if record.SKU == "SKU-BREAD-01" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bread to appear in low stock view")
	}
}

func TestStoreSummaryAggregatesDay(t *testing.T) {
	svc := newTestService()

	if _, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "main-store",
		Lines:   []domain.SaleLineInput{{SKU: "SKU-MAIZE-01", Qty: 2}},
	}); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	summary, err := svc.StoreSummary(adminCtx(), "main-store", time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("store summary failed: %v", err)
	}
	if summary.SaleCount != 1 {
		t.Fatalf("expected 1 sale in summary, got %d", summary.SaleCount)
	}
	if summary.SalesTotalCents != 33000 {
		t.Fatalf("expected sales total 33000, got %d", summary.SalesTotalCents)
	}
	if summary.ProductCount == 0 || summary.UnitsOnHand == 0 {
		t.Fatalf("expected stock aggregates to be populated: %+v", summary)
	}
}

func TestListSalesRejectsUnknownPaymentStatus(t *testing.T) {
	svc := newTestService()

	_, err := svc.ListSales(context.Background(), "main-store", "partial", 10)
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown payment status, got %v", err)
	}
}

func TestCreateSaleRejectsUnknownStore(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateSale(cashierCtx(), domain.SaleCreateRequest{
		StoreID: "no-such-store",
		Lines:   []domain.SaleLineInput{{SKU: "SKU-MAIZE-01", Qty: 1}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown store, got %v", err)
	}
}
