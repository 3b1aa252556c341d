package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Emananii/MyDuka-sub000/internal/domain"
	"github.com/Emananii/MyDuka-sub000/internal/store"
)

func TestApproveStockTransferMovesStockAtomically(t *testing.T) {
	databaseURL := os.Getenv("MYDUKA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MYDUKA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	sku := fmt.Sprintf("SKU-TR-IT-%d", stamp)
	fromStore := fmt.Sprintf("it-src-%d", stamp)
	toStore := fmt.Sprintf("it-dst-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_transfer_lines WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_transfers WHERE from_store_id = $1`, fromStore)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_records WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stores WHERE id IN ($1, $2)`, fromStore, toStore)
	})

	for _, id := range []string{fromStore, toStore} {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO stores (id, name, address, active)
			VALUES ($1, 'Integration Store', 'Test Lane', true)
		`, id); err != nil {
			t.Fatalf("insert store %s: %v", id, err)
		}
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO products (sku, name, unit, category, active, created_at, updated_at)
		VALUES ($1, 'Transfer IT Product', 'piece', 'grocery', true, now(), now())
	`, sku); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_records (store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated)
		VALUES ($1, $2, 10, 0, 0, 9500, now())
	`, fromStore, sku); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	created, err := s.CreateStockTransfer(ctx, domain.StockTransfer{
		ID:          fmt.Sprintf("tr-it-%d", stamp),
		FromStoreID: fromStore,
		ToStoreID:   toStore,
		InitiatedBy: "clerk",
		CreatedAt:   time.Now().UTC(),
		Lines:       []domain.TransferLine{{SKU: sku, Qty: 6}},
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}

	approved, err := s.ApproveStockTransfer(ctx, created.ID, "admin", time.Now().UTC())
	if err != nil {
		t.Fatalf("approve transfer: %v", err)
	}
	if approved.Status != domain.TransferStatusApproved {
		t.Fatalf("expected approved status, got %s", approved.Status)
	}

	var srcQty, dstQty int
	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, fromStore, sku).Scan(&srcQty); err != nil {
		t.Fatalf("query source stock: %v", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, toStore, sku).Scan(&dstQty); err != nil {
		t.Fatalf("query destination stock: %v", err)
	}
	if srcQty != 4 || dstQty != 6 {
		t.Fatalf("expected 4/6 after transfer, got %d/%d", srcQty, dstQty)
	}

	// A transfer that overdraws the source must leave both stores untouched
	// and stay pending.
	overdraw, err := s.CreateStockTransfer(ctx, domain.StockTransfer{
		ID:          fmt.Sprintf("tr-it-over-%d", stamp),
		FromStoreID: fromStore,
		ToStoreID:   toStore,
		InitiatedBy: "clerk",
		CreatedAt:   time.Now().UTC(),
		Lines:       []domain.TransferLine{{SKU: sku, Qty: 100}},
	})
	if err != nil {
		t.Fatalf("create overdraw transfer: %v", err)
	}

	_, err = s.ApproveStockTransfer(ctx, overdraw.ID, "admin", time.Now().UTC())
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, fromStore, sku).Scan(&srcQty); err != nil {
		t.Fatalf("query source stock after failed approve: %v", err)
	}
	if srcQty != 4 {
		t.Fatalf("expected source stock unchanged at 4, got %d", srcQty)
	}

	pending, err := s.GetStockTransferByID(ctx, overdraw.ID)
	if err != nil {
		t.Fatalf("get overdraw transfer: %v", err)
	}
	if pending.Status != domain.TransferStatusPending {
		t.Fatalf("expected overdraw transfer still pending, got %s", pending.Status)
	}
}

func TestCreateSupplyRequestValidatesReferences(t *testing.T) {
	databaseURL := os.Getenv("MYDUKA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MYDUKA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	_, err = s.CreateSupplyRequest(ctx, domain.SupplyRequest{
		StoreID:      fmt.Sprintf("no-such-store-%d", stamp),
		SKU:          fmt.Sprintf("SKU-NONE-%d", stamp),
		ClerkID:      "clerk",
		RequestedQty: 5,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found for unknown store, got %v", err)
	}
}

func TestSoftDeleteSaleLineRestoresStock(t *testing.T) {
	databaseURL := os.Getenv("MYDUKA_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set MYDUKA_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	sku := fmt.Sprintf("SKU-SALE-IT-%d", stamp)
	storeID := fmt.Sprintf("it-sale-%d", stamp)
	saleID := fmt.Sprintf("sale-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_lines WHERE sale_id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stock_records WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE sku = $1`, sku)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM stores WHERE id = $1`, storeID)
	})

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, address, active)
		VALUES ($1, 'Integration Store', 'Test Lane', true)
	`, storeID); err != nil {
		t.Fatalf("insert store: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO products (sku, name, unit, category, active, created_at, updated_at)
		VALUES ($1, 'Sale IT Product', 'piece', 'grocery', true, now(), now())
	`, sku); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_records (store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated)
		VALUES ($1, $2, 10, 0, 0, 4500, now())
	`, storeID, sku); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	created, err := s.CreateSale(ctx, domain.Sale{
		ID:            saleID,
		StoreID:       storeID,
		CashierID:     "cashier",
		PaymentStatus: domain.SalePaid,
		CreatedAt:     time.Now().UTC(),
		Lines:         []domain.SaleLine{{SKU: sku, Qty: 3}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	var qty int
	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, storeID, sku).Scan(&qty); err != nil {
		t.Fatalf("query stock: %v", err)
	}
	if qty != 7 {
		t.Fatalf("expected stock 7 after sale, got %d", qty)
	}

	restored, err := s.SoftDeleteSaleLine(ctx, saleID, created.Lines[0].ID)
	if err != nil {
		t.Fatalf("soft delete sale line: %v", err)
	}
	if !restored.Lines[0].Deleted {
		t.Fatalf("expected line marked deleted")
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, storeID, sku).Scan(&qty); err != nil {
		t.Fatalf("query stock after restore: %v", err)
	}
	if qty != 10 {
		t.Fatalf("expected stock restored to 10, got %d", qty)
	}

	// Repeating the delete is a no-op.
	if _, err := s.SoftDeleteSaleLine(ctx, saleID, created.Lines[0].ID); err != nil {
		t.Fatalf("repeat soft delete: %v", err)
	}
	if err := s.db.QueryRowContext(ctx, `
		SELECT qty_on_hand FROM stock_records WHERE store_id = $1 AND sku = $2
	`, storeID, sku).Scan(&qty); err != nil {
		t.Fatalf("query stock after repeat delete: %v", err)
	}
	if qty != 10 {
		t.Fatalf("expected stock unchanged at 10, got %d", qty)
	}
}
