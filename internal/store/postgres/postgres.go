package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Emananii/MyDuka-sub000/internal/domain"
	"github.com/Emananii/MyDuka-sub000/internal/store"
	"github.com/Emananii/MyDuka-sub000/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sku, name, unit, category, active
		FROM products
		WHERE active = true
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.SKU, &p.Name, &p.Unit, &p.Category, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.SKU == "" || product.Name == "" || product.Unit == "" || product.Category == "" {
		return nil, store.ErrInvalidInput
	}

	product.Active = true
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (sku, name, unit, category, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,now(),now())
	`, product.SKU, product.Name, product.Unit, product.Category, product.Active)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT sku, name, unit, category, active
		FROM products
		WHERE sku = $1
	`, sku).Scan(&product.SKU, &product.Name, &product.Unit, &product.Category, &product.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.SKU == "" || product.Name == "" || product.Unit == "" || product.Category == "" {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, unit = $3, category = $4, active = $5, updated_at = now()
		WHERE sku = $1
	`, product.SKU, product.Name, product.Unit, product.Category, product.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) ListStores(ctx context.Context) ([]domain.Store, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, active
		FROM stores
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]domain.Store, 0, 8)
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Address, &st.Active); err != nil {
			return nil, err
		}
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stores, nil
}

func (s *Store) GetStoreByID(ctx context.Context, storeID string) (*domain.Store, error) {
	var st domain.Store
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, active
		FROM stores
		WHERE id = $1
	`, storeID).Scan(&st.ID, &st.Name, &st.Address, &st.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, phone, created_at)
		VALUES ($1,$2,$3,$4)
	`, supplier.ID, supplier.Name, nullIfEmpty(supplier.Phone), supplier.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := supplier
	return &created, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(phone, ''), created_at
		FROM suppliers
		ORDER BY created_at, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 32)
	for rows.Next() {
		var supplier domain.Supplier
		if err := rows.Scan(&supplier.ID, &supplier.Name, &supplier.Phone, &supplier.CreatedAt); err != nil {
			return nil, err
		}
		supplier.CreatedAt = supplier.CreatedAt.UTC()
		suppliers = append(suppliers, supplier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Store) GetSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(phone, ''), created_at
		FROM suppliers
		WHERE id = $1
	`, supplierID).Scan(&supplier.ID, &supplier.Name, &supplier.Phone, &supplier.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	supplier.CreatedAt = supplier.CreatedAt.UTC()
	return &supplier, nil
}

func (s *Store) GetStockRecord(ctx context.Context, storeID string, sku string) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated
		FROM stock_records
		WHERE store_id = $1 AND sku = $2
	`, storeID, sku).Scan(&record.StoreID, &record.SKU, &record.QtyOnHand, &record.QtySpoiled,
		&record.LowStockThreshold, &record.UnitPriceCents, &record.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	record.LastUpdated = record.LastUpdated.UTC()
	return &record, nil
}

func (s *Store) ListStockRecords(ctx context.Context, storeID string) ([]domain.StockRecord, error) {
	return s.queryStockRecords(ctx, `
		SELECT store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated
		FROM stock_records
		WHERE store_id = $1
		ORDER BY sku
	`, storeID)
}

func (s *Store) ListLowStock(ctx context.Context, storeID string) ([]domain.StockRecord, error) {
	return s.queryStockRecords(ctx, `
		SELECT store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated
		FROM stock_records
		WHERE store_id = $1 AND qty_on_hand <= low_stock_threshold
		ORDER BY sku
	`, storeID)
}

func (s *Store) queryStockRecords(ctx context.Context, query string, args ...any) ([]domain.StockRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.StockRecord, 0, 64)
	for rows.Next() {
		var record domain.StockRecord
		if err := rows.Scan(&record.StoreID, &record.SKU, &record.QtyOnHand, &record.QtySpoiled,
			&record.LowStockThreshold, &record.UnitPriceCents, &record.LastUpdated); err != nil {
			return nil, err
		}
		record.LastUpdated = record.LastUpdated.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// decrementStockTx locks the stock row, verifies availability and subtracts
// qty. Every decrement in the module funnels through here so the
// non-negative invariant has a single enforcement point.
func decrementStockTx(ctx context.Context, tx *sql.Tx, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := tx.QueryRowContext(ctx, `
		SELECT store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents
		FROM stock_records
		WHERE store_id = $1 AND sku = $2
		FOR UPDATE
	`, storeID, sku).Scan(&record.StoreID, &record.SKU, &record.QtyOnHand, &record.QtySpoiled,
		&record.LowStockThreshold, &record.UnitPriceCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if record.QtyOnHand < qty {
		name := sku
		_ = tx.QueryRowContext(ctx, `SELECT name FROM products WHERE sku = $1`, sku).Scan(&name)
		return nil, &store.InsufficientStockError{
			StoreID:   storeID,
			SKU:       sku,
			Name:      name,
			Available: record.QtyOnHand,
			Requested: qty,
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_records
		SET qty_on_hand = qty_on_hand - $3, last_updated = now()
		WHERE store_id = $1 AND sku = $2
	`, storeID, sku, qty); err != nil {
		return nil, err
	}
	record.QtyOnHand -= qty
	record.LastUpdated = time.Now().UTC()
	return &record, nil
}

// incrementStockTx adds qty at (storeID, sku), creating the record lazily.
// unitPriceCents seeds the price of a lazily created record and is ignored
// when the row already exists.
func incrementStockTx(ctx context.Context, tx *sql.Tx, storeID string, sku string, qty int, unitPriceCents int64) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := tx.QueryRowContext(ctx, `
		INSERT INTO stock_records (store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated)
		VALUES ($1,$2,$3,0,0,$4,now())
		ON CONFLICT (store_id, sku)
		DO UPDATE SET qty_on_hand = stock_records.qty_on_hand + EXCLUDED.qty_on_hand, last_updated = now()
		RETURNING store_id, sku, qty_on_hand, qty_spoiled, low_stock_threshold, unit_price_cents, last_updated
	`, storeID, sku, qty, unitPriceCents).Scan(&record.StoreID, &record.SKU, &record.QtyOnHand,
		&record.QtySpoiled, &record.LowStockThreshold, &record.UnitPriceCents, &record.LastUpdated)
	if err != nil {
		return nil, err
	}
	record.LastUpdated = record.LastUpdated.UTC()
	return &record, nil
}

func (s *Store) requireStoreTx(ctx context.Context, tx *sql.Tx, storeID string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM stores WHERE id = $1`, storeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) requireProductTx(ctx context.Context, tx *sql.Tx, sku string) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE sku = $1`, sku).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) requireStore(ctx context.Context, storeID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM stores WHERE id = $1`, storeID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) requireProduct(ctx context.Context, sku string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM products WHERE sku = $1`, sku).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) IncrementStock(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireStoreTx(ctx, tx, storeID); err != nil {
		return nil, err
	}
	if err := s.requireProductTx(ctx, tx, sku); err != nil {
		return nil, err
	}
	record, err := incrementStockTx(ctx, tx, storeID, sku, qty, 0)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) DecrementStock(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	record, err := decrementStockTx(ctx, tx, storeID, sku, qty)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Store) TransferStock(ctx context.Context, fromStoreID string, toStoreID string, sku string, qty int) error {
	if qty < 1 || fromStoreID == toStoreID {
		return store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireStoreTx(ctx, tx, toStoreID); err != nil {
		return err
	}
	source, err := decrementStockTx(ctx, tx, fromStoreID, sku, qty)
	if err != nil {
		return err
	}
	if _, err := incrementStockTx(ctx, tx, toStoreID, sku, qty, source.UnitPriceCents); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) RecordSpoilage(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	record, err := decrementStockTx(ctx, tx, storeID, sku, qty)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_records
		SET qty_spoiled = qty_spoiled + $3, last_updated = now()
		WHERE store_id = $1 AND sku = $2
	`, storeID, sku, qty); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	record.QtySpoiled += qty
	return record, nil
}

func (s *Store) SetStockPricing(ctx context.Context, storeID string, sku string, unitPriceCents int64, lowStockThreshold int) (*domain.StockRecord, error) {
	if unitPriceCents < 0 || lowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE stock_records
		SET unit_price_cents = $3, low_stock_threshold = $4, last_updated = now()
		WHERE store_id = $1 AND sku = $2
	`, storeID, sku, unitPriceCents, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetStockRecord(ctx, storeID, sku)
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	for _, line := range sale.Lines {
		if line.SKU == "" || line.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
	}

	now := time.Now().UTC()
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	if sale.PaymentStatus == "" {
		sale.PaymentStatus = domain.SalePaid
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireStoreTx(ctx, tx, sale.StoreID); err != nil {
		return nil, err
	}

	// Lines decrement in input order; the first failure rolls back every
	// prior decrement with the transaction.
	for i := range sale.Lines {
		record, err := decrementStockTx(ctx, tx, sale.StoreID, sale.Lines[i].SKU, sale.Lines[i].Qty)
		if err != nil {
			return nil, err
		}
		if sale.Lines[i].ID == "" {
			sale.Lines[i].ID = xid.New("line")
		}
		sale.Lines[i].PriceAtSaleCents = record.UnitPriceCents
		sale.Lines[i].Deleted = false
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (id, store_id, cashier_id, payment_status, deleted, created_at)
		VALUES ($1,$2,$3,$4,false,$5)
	`, sale.ID, sale.StoreID, sale.CashierID, sale.PaymentStatus, sale.CreatedAt); err != nil {
		return nil, err
	}
	for i, line := range sale.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_lines (id, sale_id, position, sku, qty, price_at_sale_cents, deleted)
			VALUES ($1,$2,$3,$4,$5,$6,false)
		`, line.ID, sale.ID, i+1, line.SKU, line.Qty, line.PriceAtSaleCents); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := sale
	return &created, nil
}

func (s *Store) GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	var sale domain.Sale
	err := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, cashier_id, payment_status, deleted, created_at
		FROM sales
		WHERE id = $1
	`, saleID).Scan(&sale.ID, &sale.StoreID, &sale.CashierID, &sale.PaymentStatus, &sale.Deleted, &sale.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	sale.CreatedAt = sale.CreatedAt.UTC()

	lines, err := s.querySaleLines(ctx, []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Lines = lines[sale.ID]
	return &sale, nil
}

func (s *Store) ListSales(ctx context.Context, storeID string, paymentStatus string, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, cashier_id, payment_status, deleted, created_at
		FROM sales
		WHERE deleted = false
		  AND ($1 = '' OR store_id = $1)
		  AND ($2 = '' OR payment_status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, storeID, paymentStatus, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		var sale domain.Sale
		if err := rows.Scan(&sale.ID, &sale.StoreID, &sale.CashierID, &sale.PaymentStatus, &sale.Deleted, &sale.CreatedAt); err != nil {
			return nil, err
		}
		sale.CreatedAt = sale.CreatedAt.UTC()
		sales = append(sales, sale)
		ids = append(ids, sale.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := s.querySaleLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Lines = lines[sales[i].ID]
	}
	return sales, nil
}

func (s *Store) querySaleLines(ctx context.Context, saleIDs []string) (map[string][]domain.SaleLine, error) {
	result := make(map[string][]domain.SaleLine, len(saleIDs))
	if len(saleIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, id, sku, qty, price_at_sale_cents, deleted
		FROM sale_lines
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, position
	`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var saleID string
		var line domain.SaleLine
		if err := rows.Scan(&saleID, &line.ID, &line.SKU, &line.Qty, &line.PriceAtSaleCents, &line.Deleted); err != nil {
			return nil, err
		}
		result[saleID] = append(result[saleID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) SoftDeleteSaleLine(ctx context.Context, saleID string, lineID string) (*domain.Sale, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var storeID string
	err = tx.QueryRowContext(ctx, `
		SELECT store_id FROM sales WHERE id = $1 FOR UPDATE
	`, saleID).Scan(&storeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var sku string
	var qty int
	var deleted bool
	err = tx.QueryRowContext(ctx, `
		SELECT sku, qty, deleted
		FROM sale_lines
		WHERE id = $1 AND sale_id = $2
		FOR UPDATE
	`, lineID, saleID).Scan(&sku, &qty, &deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	// Already deleted: the stock was returned on the first delete, so
	// this is a no-op success.
	if !deleted {
		if _, err := tx.ExecContext(ctx, `
			UPDATE sale_lines SET deleted = true WHERE id = $1
		`, lineID); err != nil {
			return nil, err
		}
		if _, err := incrementStockTx(ctx, tx, storeID, sku, qty, 0); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetSaleByID(ctx, saleID)
}

func (s *Store) SoftDeleteSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sales SET deleted = true WHERE id = $1
	`, saleID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetSaleByID(ctx, saleID)
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if len(purchase.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}
	total := int64(0)
	for _, line := range purchase.Lines {
		if line.SKU == "" || line.Qty < 1 || line.UnitCostCents < 0 {
			return nil, store.ErrInvalidInput
		}
		total += int64(line.Qty) * line.UnitCostCents
	}

	now := time.Now().UTC()
	if purchase.ID == "" {
		purchase.ID = xid.New("po")
	}
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = now
	}
	if purchase.Date.IsZero() {
		purchase.Date = now
	}
	purchase.TotalAmountCents = total

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireStoreTx(ctx, tx, purchase.StoreID); err != nil {
		return nil, err
	}
	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM suppliers WHERE id = $1`, purchase.SupplierID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	for _, line := range purchase.Lines {
		if err := s.requireProductTx(ctx, tx, line.SKU); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO purchases (id, store_id, supplier_id, reference_number, date, is_paid, notes, total_amount_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, purchase.ID, purchase.StoreID, purchase.SupplierID, purchase.ReferenceNumber, purchase.Date,
		purchase.IsPaid, nullIfEmpty(purchase.Notes), purchase.TotalAmountCents, purchase.CreatedAt); err != nil {
		return nil, err
	}
	for i, line := range purchase.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_lines (purchase_id, position, sku, qty, unit_cost_cents)
			VALUES ($1,$2,$3,$4,$5)
		`, purchase.ID, i+1, line.SKU, line.Qty, line.UnitCostCents); err != nil {
			return nil, err
		}
		if _, err := incrementStockTx(ctx, tx, purchase.StoreID, line.SKU, line.Qty, line.UnitCostCents); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := purchase
	return &created, nil
}

func (s *Store) GetPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, supplier_id, reference_number, date, is_paid, COALESCE(notes, ''), total_amount_cents, created_at
		FROM purchases
		WHERE id = $1
	`, purchaseID).Scan(&purchase.ID, &purchase.StoreID, &purchase.SupplierID, &purchase.ReferenceNumber,
		&purchase.Date, &purchase.IsPaid, &purchase.Notes, &purchase.TotalAmountCents, &purchase.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	purchase.Date = purchase.Date.UTC()
	purchase.CreatedAt = purchase.CreatedAt.UTC()

	lines, err := s.queryPurchaseLines(ctx, []string{purchase.ID})
	if err != nil {
		return nil, err
	}
	purchase.Lines = lines[purchase.ID]
	return &purchase, nil
}

func (s *Store) ListPurchases(ctx context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, supplier_id, reference_number, date, is_paid, COALESCE(notes, ''), total_amount_cents, created_at
		FROM purchases
		WHERE ($1 = '' OR store_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	purchases := make([]domain.Purchase, 0, limit)
	ids := make([]string, 0, limit)
	for rows.Next() {
		var purchase domain.Purchase
		if err := rows.Scan(&purchase.ID, &purchase.StoreID, &purchase.SupplierID, &purchase.ReferenceNumber,
			&purchase.Date, &purchase.IsPaid, &purchase.Notes, &purchase.TotalAmountCents, &purchase.CreatedAt); err != nil {
			return nil, err
		}
		purchase.Date = purchase.Date.UTC()
		purchase.CreatedAt = purchase.CreatedAt.UTC()
		purchases = append(purchases, purchase)
		ids = append(ids, purchase.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lines, err := s.queryPurchaseLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].Lines = lines[purchases[i].ID]
	}
	return purchases, nil
}

func (s *Store) queryPurchaseLines(ctx context.Context, purchaseIDs []string) (map[string][]domain.PurchaseLine, error) {
	result := make(map[string][]domain.PurchaseLine, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT purchase_id, sku, qty, unit_cost_cents
		FROM purchase_lines
		WHERE purchase_id = ANY($1)
		ORDER BY purchase_id, position
	`, purchaseIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var purchaseID string
		var line domain.PurchaseLine
		if err := rows.Scan(&purchaseID, &line.SKU, &line.Qty, &line.UnitCostCents); err != nil {
			return nil, err
		}
		result[purchaseID] = append(result[purchaseID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateSupplyRequest(ctx context.Context, request domain.SupplyRequest) (*domain.SupplyRequest, error) {
	if request.RequestedQty < 1 {
		return nil, store.ErrInvalidInput
	}
	if err := s.requireStore(ctx, request.StoreID); err != nil {
		return nil, err
	}
	if err := s.requireProduct(ctx, request.SKU); err != nil {
		return nil, err
	}
	if request.ID == "" {
		request.ID = xid.New("sr")
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	request.Status = domain.SupplyStatusPending

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO supply_requests (id, store_id, sku, clerk_id, requested_qty, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, request.ID, request.StoreID, request.SKU, request.ClerkID, request.RequestedQty, request.Status, request.CreatedAt)
	if err != nil {
		return nil, err
	}
	created := request
	return &created, nil
}

func (s *Store) GetSupplyRequestByID(ctx context.Context, requestID string) (*domain.SupplyRequest, error) {
	var request domain.SupplyRequest
	var respondedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, store_id, sku, clerk_id, requested_qty, status, COALESCE(admin_id, ''), COALESCE(admin_response, ''), created_at, responded_at
		FROM supply_requests
		WHERE id = $1
	`, requestID).Scan(&request.ID, &request.StoreID, &request.SKU, &request.ClerkID, &request.RequestedQty,
		&request.Status, &request.AdminID, &request.AdminResponse, &request.CreatedAt, &respondedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	request.CreatedAt = request.CreatedAt.UTC()
	if respondedAt.Valid {
		at := respondedAt.Time.UTC()
		request.RespondedAt = &at
	}
	return &request, nil
}

func (s *Store) ListSupplyRequests(ctx context.Context, storeID string, status string, limit int) ([]domain.SupplyRequest, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, store_id, sku, clerk_id, requested_qty, status, COALESCE(admin_id, ''), COALESCE(admin_response, ''), created_at, responded_at
		FROM supply_requests
		WHERE ($1 = '' OR store_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, storeID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.SupplyRequest, 0, limit)
	for rows.Next() {
		var request domain.SupplyRequest
		var respondedAt sql.NullTime
		if err := rows.Scan(&request.ID, &request.StoreID, &request.SKU, &request.ClerkID, &request.RequestedQty,
			&request.Status, &request.AdminID, &request.AdminResponse, &request.CreatedAt, &respondedAt); err != nil {
			return nil, err
		}
		request.CreatedAt = request.CreatedAt.UTC()
		if respondedAt.Valid {
			at := respondedAt.Time.UTC()
			request.RespondedAt = &at
		}
		result = append(result, request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) RespondSupplyRequest(ctx context.Context, requestID string, adminID string, action string, comment string, at time.Time) (*domain.SupplyRequest, error) {
	if action != domain.SupplyActionApprove && action != domain.SupplyActionDecline {
		return nil, store.ErrInvalidInput
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var request domain.SupplyRequest
	err = tx.QueryRowContext(ctx, `
		SELECT id, store_id, sku, clerk_id, requested_qty, status, created_at
		FROM supply_requests
		WHERE id = $1
		FOR UPDATE
	`, requestID).Scan(&request.ID, &request.StoreID, &request.SKU, &request.ClerkID,
		&request.RequestedQty, &request.Status, &request.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if request.Status != domain.SupplyStatusPending {
		return nil, store.ErrConflict
	}

	// Approval moves the stock inside the same transaction as the state
	// write: both land or neither does.
	status := domain.SupplyStatusDeclined
	if action == domain.SupplyActionApprove {
		status = domain.SupplyStatusApproved
		if _, err := incrementStockTx(ctx, tx, request.StoreID, request.SKU, request.RequestedQty, 0); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE supply_requests
		SET status = $2, admin_id = $3, admin_response = $4, responded_at = $5
		WHERE id = $1
	`, requestID, status, adminID, nullIfEmpty(comment), at); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	request.Status = status
	request.AdminID = adminID
	request.AdminResponse = comment
	request.RespondedAt = &at
	request.CreatedAt = request.CreatedAt.UTC()
	return &request, nil
}

func (s *Store) CreateStockTransfer(ctx context.Context, transfer domain.StockTransfer) (*domain.StockTransfer, error) {
	if len(transfer.Lines) == 0 || transfer.FromStoreID == transfer.ToStoreID {
		return nil, store.ErrInvalidInput
	}
	for _, line := range transfer.Lines {
		if line.SKU == "" || line.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
	}
	if transfer.ID == "" {
		transfer.ID = xid.New("tr")
	}
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}
	transfer.Status = domain.TransferStatusPending

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.requireStoreTx(ctx, tx, transfer.FromStoreID); err != nil {
		return nil, err
	}
	if err := s.requireStoreTx(ctx, tx, transfer.ToStoreID); err != nil {
		return nil, err
	}
	for _, line := range transfer.Lines {
		if err := s.requireProductTx(ctx, tx, line.SKU); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_transfers (id, from_store_id, to_store_id, initiated_by, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, transfer.ID, transfer.FromStoreID, transfer.ToStoreID, transfer.InitiatedBy, transfer.Status, transfer.CreatedAt); err != nil {
		return nil, err
	}
	for i, line := range transfer.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_transfer_lines (transfer_id, position, sku, qty)
			VALUES ($1,$2,$3,$4)
		`, transfer.ID, i+1, line.SKU, line.Qty); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := transfer
	return &created, nil
}

func (s *Store) GetStockTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error) {
	var transfer domain.StockTransfer
	var transferDate sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_store_id, to_store_id, initiated_by, COALESCE(approved_by, ''), COALESCE(comment, ''), status, created_at, transfer_date
		FROM stock_transfers
		WHERE id = $1
	`, transferID).Scan(&transfer.ID, &transfer.FromStoreID, &transfer.ToStoreID, &transfer.InitiatedBy,
		&transfer.ApprovedBy, &transfer.Comment, &transfer.Status, &transfer.CreatedAt, &transferDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	transfer.CreatedAt = transfer.CreatedAt.UTC()
	if transferDate.Valid {
		at := transferDate.Time.UTC()
		transfer.TransferDate = &at
	}

	lines, err := s.queryTransferLines(ctx, transfer.ID)
	if err != nil {
		return nil, err
	}
	transfer.Lines = lines
	return &transfer, nil
}

func (s *Store) ListStockTransfers(ctx context.Context, storeID string, status string, limit int) ([]domain.StockTransfer, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_store_id, to_store_id, initiated_by, COALESCE(approved_by, ''), COALESCE(comment, ''), status, created_at, transfer_date
		FROM stock_transfers
		WHERE ($1 = '' OR from_store_id = $1 OR to_store_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, storeID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.StockTransfer, 0, limit)
	for rows.Next() {
		var transfer domain.StockTransfer
		var transferDate sql.NullTime
		if err := rows.Scan(&transfer.ID, &transfer.FromStoreID, &transfer.ToStoreID, &transfer.InitiatedBy,
			&transfer.ApprovedBy, &transfer.Comment, &transfer.Status, &transfer.CreatedAt, &transferDate); err != nil {
			return nil, err
		}
		transfer.CreatedAt = transfer.CreatedAt.UTC()
		if transferDate.Valid {
			at := transferDate.Time.UTC()
			transfer.TransferDate = &at
		}
		result = append(result, transfer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		lines, err := s.queryTransferLines(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (s *Store) queryTransferLines(ctx context.Context, transferID string) ([]domain.TransferLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sku, qty
		FROM stock_transfer_lines
		WHERE transfer_id = $1
		ORDER BY position
	`, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.TransferLine, 0, 8)
	for rows.Next() {
		var line domain.TransferLine
		if err := rows.Scan(&line.SKU, &line.Qty); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Store) ApproveStockTransfer(ctx context.Context, transferID string, approvedBy string, at time.Time) (*domain.StockTransfer, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var fromStoreID, toStoreID, status string
	err = tx.QueryRowContext(ctx, `
		SELECT from_store_id, to_store_id, status
		FROM stock_transfers
		WHERE id = $1
		FOR UPDATE
	`, transferID).Scan(&fromStoreID, &toStoreID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.TransferStatusPending {
		return nil, store.ErrConflict
	}

	lineRows, err := tx.QueryContext(ctx, `
		SELECT sku, qty
		FROM stock_transfer_lines
		WHERE transfer_id = $1
		ORDER BY position
	`, transferID)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.TransferLine, 0, 8)
	for lineRows.Next() {
		var line domain.TransferLine
		if err := lineRows.Scan(&line.SKU, &line.Qty); err != nil {
			lineRows.Close()
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := lineRows.Err(); err != nil {
		lineRows.Close()
		return nil, err
	}
	lineRows.Close()

	// Paired moves in insertion order. The first line that cannot cover
	// its decrement rolls back the whole approval and the transfer stays
	// pending.
	for _, line := range lines {
		source, err := decrementStockTx(ctx, tx, fromStoreID, line.SKU, line.Qty)
		if err != nil {
			return nil, err
		}
		if _, err := incrementStockTx(ctx, tx, toStoreID, line.SKU, line.Qty, source.UnitPriceCents); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_transfers
		SET status = $2, approved_by = $3, transfer_date = $4
		WHERE id = $1
	`, transferID, domain.TransferStatusApproved, approvedBy, at); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetStockTransferByID(ctx, transferID)
}

func (s *Store) RejectStockTransfer(ctx context.Context, transferID string, approvedBy string, comment string, at time.Time) (*domain.StockTransfer, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM stock_transfers WHERE id = $1 FOR UPDATE
	`, transferID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.TransferStatusPending {
		return nil, store.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE stock_transfers
		SET status = $2, approved_by = $3, comment = $4, transfer_date = $5
		WHERE id = $1
	`, transferID, domain.TransferStatusRejected, approvedBy, nullIfEmpty(comment), at); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetStockTransferByID(ctx, transferID)
}

func (s *Store) GetStoreSummary(ctx context.Context, storeID string, from time.Time, to time.Time) (domain.StoreSummary, error) {
	summary := domain.StoreSummary{
		StoreID: storeID,
		From:    from.UTC().Format(time.RFC3339),
		To:      to.UTC().Format(time.RFC3339),
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(qty_on_hand), 0),
		       COALESCE(SUM(qty_spoiled), 0),
		       COALESCE(SUM(CASE WHEN qty_on_hand <= low_stock_threshold THEN 1 ELSE 0 END), 0)
		FROM stock_records
		WHERE store_id = $1
	`, storeID).Scan(&summary.ProductCount, &summary.UnitsOnHand, &summary.UnitsSpoiled, &summary.LowStockCount)
	if err != nil {
		return domain.StoreSummary{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT s.id),
		       COALESCE(SUM(l.price_at_sale_cents * l.qty), 0)
		FROM sales s
		LEFT JOIN sale_lines l ON l.sale_id = s.id AND l.deleted = false
		WHERE s.store_id = $1 AND s.deleted = false
		  AND s.created_at >= $2 AND s.created_at < $3
	`, storeID, from, to).Scan(&summary.SaleCount, &summary.SalesTotalCents)
	if err != nil {
		return domain.StoreSummary{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount_cents), 0)
		FROM purchases
		WHERE store_id = $1 AND created_at >= $2 AND created_at < $3
	`, storeID, from, to).Scan(&summary.PurchaseCount, &summary.PurchasesTotalCents)
	if err != nil {
		return domain.StoreSummary{}, err
	}

	return summary, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, store_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, nullIfEmpty(entry.StoreID), entry.ActorUsername, entry.ActorRole, entry.Action,
		entry.EntityType, nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(store_id, ''), actor_username, actor_role, action, entity_type, COALESCE(entity_id, ''), COALESCE(detail, ''), created_at
		FROM audit_logs
		WHERE ($1 = '' OR store_id = $1)
		  AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`, storeID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.StoreID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" || user.Password == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
