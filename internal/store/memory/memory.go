package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Emananii/MyDuka-sub000/internal/domain"
	"github.com/Emananii/MyDuka-sub000/internal/store"
	"github.com/Emananii/MyDuka-sub000/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	products         map[string]domain.Product
	storesByID       map[string]domain.Store
	suppliersByID    map[string]domain.Supplier
	stock            map[string]map[string]domain.StockRecord
	salesByID        map[string]*domain.Sale
	purchasesByID    map[string]*domain.Purchase
	supplyReqsByID   map[string]domain.SupplyRequest
	transfersByID    map[string]*domain.StockTransfer
	auditLogs        []domain.AuditLog
	usersByUsername  map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD, SEED_CLERK_PASSWORD and
// SEED_CASHIER_PASSWORD environment variables, with hardcoded dev defaults
// and a warning when unset. These accounts are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	clerkPwd := envOr("SEED_CLERK_PASSWORD", "clerk123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CLERK_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD, SEED_CLERK_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"clerk", clerkPwd, "clerk"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	stores := []domain.Store{
		{ID: "main-store", Name: "MyDuka CBD", Address: "Moi Avenue, Nairobi", Active: true},
		{ID: "branch-westlands", Name: "MyDuka Westlands", Address: "Mpaka Road, Westlands", Active: true},
	}

	products := []domain.Product{
		{SKU: "SKU-MAIZE-01", Name: "Maize Flour 2kg", Unit: "bale", Category: "grocery", Active: true},
		{SKU: "SKU-RICE-01", Name: "Pishori Rice 1kg", Unit: "kg", Category: "grocery", Active: true},
		{SKU: "SKU-SUGAR-01", Name: "Sugar 1kg", Unit: "kg", Category: "grocery", Active: true},
		{SKU: "SKU-MILK-01", Name: "Long Life Milk 500ml", Unit: "piece", Category: "dairy", Active: true},
		{SKU: "SKU-BREAD-01", Name: "White Bread 400g", Unit: "loaf", Category: "bakery", Active: true},
		{SKU: "SKU-TEA-01", Name: "Tea Leaves 250g", Unit: "packet", Category: "beverage", Active: true},
		{SKU: "SKU-COOKOIL-01", Name: "Cooking Oil 1L", Unit: "bottle", Category: "grocery", Active: true},
		{SKU: "SKU-SOAP-01", Name: "Bar Soap 800g", Unit: "bar", Category: "household", Active: true},
		{SKU: "SKU-SALT-01", Name: "Salt 500g", Unit: "packet", Category: "grocery", Active: true},
		{SKU: "SKU-EGGS-01", Name: "Eggs Tray of 30", Unit: "tray", Category: "dairy", Active: true},
	}

	prices := map[string]int64{
		"SKU-MAIZE-01":   16500,
		"SKU-RICE-01":    21000,
		"SKU-SUGAR-01":   17000,
		"SKU-MILK-01":    6000,
		"SKU-BREAD-01":   6500,
		"SKU-TEA-01":     12500,
		"SKU-COOKOIL-01": 32000,
		"SKU-SOAP-01":    14500,
		"SKU-SALT-01":    3000,
		"SKU-EGGS-01":    45000,
	}

	now := time.Now().UTC()
	productMap := make(map[string]domain.Product, len(products))
	storeMap := make(map[string]domain.Store, len(stores))
	stock := map[string]map[string]domain.StockRecord{
		"main-store":       {},
		"branch-westlands": {},
	}
	for _, st := range stores {
		storeMap[st.ID] = st
	}
	for _, p := range products {
		productMap[p.SKU] = p
		stock["main-store"][p.SKU] = domain.StockRecord{
			StoreID:           "main-store",
			SKU:               p.SKU,
			QtyOnHand:         100,
			LowStockThreshold: 10,
			UnitPriceCents:    prices[p.SKU],
			LastUpdated:       now,
		}
	}

	return &Store{
		products:        productMap,
		storesByID:      storeMap,
		suppliersByID:   make(map[string]domain.Supplier),
		stock:           stock,
		salesByID:       make(map[string]*domain.Sale),
		purchasesByID:   make(map[string]*domain.Purchase),
		supplyReqsByID:  make(map[string]domain.SupplyRequest),
		transfersByID:   make(map[string]*domain.StockTransfer),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.SKU == "" || product.Name == "" || product.Unit == "" || product.Category == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.products[product.SKU]; exists {
		return nil, store.ErrConflict
	}

	product.Active = true
	s.products[product.SKU] = product
	created := product
	return &created, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[sku]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyProduct := product
	return &copyProduct, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.SKU == "" || product.Name == "" || product.Unit == "" || product.Category == "" {
		return nil, store.ErrInvalidInput
	}
	if _, exists := s.products[product.SKU]; !exists {
		return nil, store.ErrNotFound
	}

	s.products[product.SKU] = product
	updated := product
	return &updated, nil
}

func (s *Store) ListStores(_ context.Context) ([]domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stores := make([]domain.Store, 0, len(s.storesByID))
	for _, st := range s.storesByID {
		stores = append(stores, st)
	}
	slices.SortFunc(stores, func(a, b domain.Store) int {
		return cmpString(a.ID, b.ID)
	})
	return stores, nil
}

func (s *Store) GetStoreByID(_ context.Context, storeID string) (*domain.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, exists := s.storesByID[storeID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyStore := st
	return &copyStore, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	s.suppliersByID[supplier.ID] = supplier
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	suppliers := make([]domain.Supplier, 0, len(s.suppliersByID))
	for _, supplier := range s.suppliersByID {
		suppliers = append(suppliers, supplier)
	}
	slices.SortFunc(suppliers, func(a, b domain.Supplier) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.Name, b.Name)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return suppliers, nil
}

func (s *Store) GetSupplierByID(_ context.Context, supplierID string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, exists := s.suppliersByID[supplierID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copySupplier := supplier
	return &copySupplier, nil
}

func (s *Store) GetStockRecord(_ context.Context, storeID string, sku string) (*domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.stock[storeID][sku]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRecord := record
	return &copyRecord, nil
}

func (s *Store) ListStockRecords(_ context.Context, storeID string) ([]domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.StockRecord, 0, len(s.stock[storeID]))
	for _, record := range s.stock[storeID] {
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b domain.StockRecord) int {
		return cmpString(a.SKU, b.SKU)
	})
	return records, nil
}

func (s *Store) ListLowStock(_ context.Context, storeID string) ([]domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.StockRecord, 0, 16)
	for _, record := range s.stock[storeID] {
		if record.QtyOnHand > record.LowStockThreshold {
			continue
		}
		records = append(records, record)
	}
	slices.SortFunc(records, func(a, b domain.StockRecord) int {
		return cmpString(a.SKU, b.SKU)
	})
	return records, nil
}

// applyIncrement adds qty at (storeID, sku), creating the record lazily.
// Caller must hold the write lock.
func (s *Store) applyIncrement(storeID string, sku string, qty int, unitPriceCents int64, now time.Time) domain.StockRecord {
	byStore, ok := s.stock[storeID]
	if !ok {
		byStore = make(map[string]domain.StockRecord)
		s.stock[storeID] = byStore
	}
	record, exists := byStore[sku]
	if !exists {
		record = domain.StockRecord{
			StoreID:        storeID,
			SKU:            sku,
			UnitPriceCents: unitPriceCents,
		}
	}
	record.QtyOnHand += qty
	record.LastUpdated = now
	byStore[sku] = record
	return record
}

// applyDecrement removes qty at (storeID, sku). Caller must hold the write
// lock. The qty_on_hand counter never goes below zero.
func (s *Store) applyDecrement(storeID string, sku string, qty int, now time.Time) (domain.StockRecord, error) {
	record, exists := s.stock[storeID][sku]
	if !exists {
		return domain.StockRecord{}, store.ErrNotFound
	}
	if record.QtyOnHand < qty {
		name := sku
		if p, ok := s.products[sku]; ok {
			name = p.Name
		}
		return domain.StockRecord{}, &store.InsufficientStockError{
			StoreID:   storeID,
			SKU:       sku,
			Name:      name,
			Available: record.QtyOnHand,
			Requested: qty,
		}
	}
	record.QtyOnHand -= qty
	record.LastUpdated = now
	s.stock[storeID][sku] = record
	return record, nil
}

func (s *Store) IncrementStock(_ context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[storeID]; !exists {
		return nil, store.ErrNotFound
	}
	if _, exists := s.products[sku]; !exists {
		return nil, store.ErrNotFound
	}
	record := s.applyIncrement(storeID, sku, qty, 0, time.Now().UTC())
	return &record, nil
}

func (s *Store) DecrementStock(_ context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.applyDecrement(storeID, sku, qty, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) TransferStock(_ context.Context, fromStoreID string, toStoreID string, sku string, qty int) error {
	if qty < 1 || fromStoreID == toStoreID {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[toStoreID]; !exists {
		return store.ErrNotFound
	}
	now := time.Now().UTC()
	source, err := s.applyDecrement(fromStoreID, sku, qty, now)
	if err != nil {
		return err
	}
	s.applyIncrement(toStoreID, sku, qty, source.UnitPriceCents, now)
	return nil
}

func (s *Store) RecordSpoilage(_ context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error) {
	if qty < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.applyDecrement(storeID, sku, qty, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	record.QtySpoiled += qty
	s.stock[storeID][sku] = record
	return &record, nil
}

func (s *Store) SetStockPricing(_ context.Context, storeID string, sku string, unitPriceCents int64, lowStockThreshold int) (*domain.StockRecord, error) {
	if unitPriceCents < 0 || lowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.stock[storeID][sku]
	if !exists {
		return nil, store.ErrNotFound
	}
	record.UnitPriceCents = unitPriceCents
	record.LowStockThreshold = lowStockThreshold
	record.LastUpdated = time.Now().UTC()
	s.stock[storeID][sku] = record
	copyRecord := record
	return &copyRecord, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[sale.StoreID]; !exists {
		return nil, store.ErrNotFound
	}

	// Check every line before touching any counter so a late failure
	// leaves nothing half-applied. Quantities accumulate per SKU: two
	// lines of the same product must fit the stock combined.
	requested := make(map[string]int, len(sale.Lines))
	for _, line := range sale.Lines {
		if line.SKU == "" || line.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
		record, exists := s.stock[sale.StoreID][line.SKU]
		if !exists {
			return nil, store.ErrNotFound
		}
		requested[line.SKU] += line.Qty
		if record.QtyOnHand < requested[line.SKU] {
			name := line.SKU
			if p, ok := s.products[line.SKU]; ok {
				name = p.Name
			}
			return nil, &store.InsufficientStockError{
				StoreID:   sale.StoreID,
				SKU:       line.SKU,
				Name:      name,
				Available: record.QtyOnHand,
				Requested: requested[line.SKU],
			}
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

	for i := range sale.Lines {
		record, err := s.applyDecrement(sale.StoreID, sale.Lines[i].SKU, sale.Lines[i].Qty, now)
		if err != nil {
			// Unreachable after the aggregate pre-check above; the lock
			// is held for the whole call.
			return nil, err
		}
		if sale.Lines[i].ID == "" {
			sale.Lines[i].ID = xid.New("line")
		}
		sale.Lines[i].PriceAtSaleCents = record.UnitPriceCents
		sale.Lines[i].Deleted = false
	}

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	return cloneSale(saved), nil
}

func (s *Store) GetSaleByID(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) ListSales(_ context.Context, storeID string, paymentStatus string, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Sale, 0, 64)
	for _, sale := range s.salesByID {
		if sale.Deleted {
			continue
		}
		if storeID != "" && sale.StoreID != storeID {
			continue
		}
		if paymentStatus != "" && sale.PaymentStatus != paymentStatus {
			continue
		}
		result = append(result, *cloneSale(sale))
	}
	slices.SortFunc(result, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) SoftDeleteSaleLine(_ context.Context, saleID string, lineID string) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	idx := -1
	for i := range sale.Lines {
		if sale.Lines[i].ID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	// Re-deleting a deleted line is a no-op: the stock was already
	// returned once.
	if sale.Lines[idx].Deleted {
		return cloneSale(sale), nil
	}

	sale.Lines[idx].Deleted = true
	s.applyIncrement(sale.StoreID, sale.Lines[idx].SKU, sale.Lines[idx].Qty, 0, time.Now().UTC())
	return cloneSale(sale), nil
}

func (s *Store) SoftDeleteSale(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	// Hides the sale from listings only. Stock moved per line stays moved
	// unless the lines themselves are deleted.
	sale.Deleted = true
	return cloneSale(sale), nil
}

func (s *Store) CreatePurchase(_ context.Context, purchase domain.Purchase) (*domain.Purchase, error) {
	if len(purchase.Lines) == 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[purchase.StoreID]; !exists {
		return nil, store.ErrNotFound
	}
	if _, exists := s.suppliersByID[purchase.SupplierID]; !exists {
		return nil, store.ErrNotFound
	}

	total := int64(0)
	for _, line := range purchase.Lines {
		if line.SKU == "" || line.Qty < 1 || line.UnitCostCents < 0 {
			return nil, store.ErrInvalidInput
		}
		if _, exists := s.products[line.SKU]; !exists {
			return nil, store.ErrNotFound
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

	for _, line := range purchase.Lines {
		s.applyIncrement(purchase.StoreID, line.SKU, line.Qty, line.UnitCostCents, now)
	}

	saved := clonePurchase(&purchase)
	s.purchasesByID[purchase.ID] = saved
	return clonePurchase(saved), nil
}

func (s *Store) GetPurchaseByID(_ context.Context, purchaseID string) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	purchase, exists := s.purchasesByID[purchaseID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return clonePurchase(purchase), nil
}

func (s *Store) ListPurchases(_ context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Purchase, 0, 64)
	for _, purchase := range s.purchasesByID {
		if storeID != "" && purchase.StoreID != storeID {
			continue
		}
		result = append(result, *clonePurchase(purchase))
	}
	slices.SortFunc(result, func(a, b domain.Purchase) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateSupplyRequest(_ context.Context, request domain.SupplyRequest) (*domain.SupplyRequest, error) {
	if request.RequestedQty < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[request.StoreID]; !exists {
		return nil, store.ErrNotFound
	}
	if _, exists := s.products[request.SKU]; !exists {
		return nil, store.ErrNotFound
	}
	if request.ID == "" {
		request.ID = xid.New("sr")
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	request.Status = domain.SupplyStatusPending

	s.supplyReqsByID[request.ID] = request
	copyRequest := request
	return &copyRequest, nil
}

func (s *Store) GetSupplyRequestByID(_ context.Context, requestID string) (*domain.SupplyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, exists := s.supplyReqsByID[requestID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyRequest := request
	return &copyRequest, nil
}

func (s *Store) ListSupplyRequests(_ context.Context, storeID string, status string, limit int) ([]domain.SupplyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status = strings.ToLower(strings.TrimSpace(status))
	result := make([]domain.SupplyRequest, 0, 64)
	for _, request := range s.supplyReqsByID {
		if storeID != "" && request.StoreID != storeID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		result = append(result, request)
	}
	slices.SortFunc(result, func(a, b domain.SupplyRequest) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) RespondSupplyRequest(_ context.Context, requestID string, adminID string, action string, comment string, at time.Time) (*domain.SupplyRequest, error) {
	if action != domain.SupplyActionApprove && action != domain.SupplyActionDecline {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.supplyReqsByID[requestID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if request.Status != domain.SupplyStatusPending {
		return nil, store.ErrConflict
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	if action == domain.SupplyActionApprove {
		s.applyIncrement(request.StoreID, request.SKU, request.RequestedQty, 0, at)
		request.Status = domain.SupplyStatusApproved
	} else {
		request.Status = domain.SupplyStatusDeclined
	}
	request.AdminID = adminID
	request.AdminResponse = comment
	request.RespondedAt = &at

	s.supplyReqsByID[requestID] = request
	copyRequest := request
	return &copyRequest, nil
}

func (s *Store) CreateStockTransfer(_ context.Context, transfer domain.StockTransfer) (*domain.StockTransfer, error) {
	if len(transfer.Lines) == 0 || transfer.FromStoreID == transfer.ToStoreID {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.storesByID[transfer.FromStoreID]; !exists {
		return nil, store.ErrNotFound
	}
	if _, exists := s.storesByID[transfer.ToStoreID]; !exists {
		return nil, store.ErrNotFound
	}
	for _, line := range transfer.Lines {
		if line.SKU == "" || line.Qty < 1 {
			return nil, store.ErrInvalidInput
		}
		if _, exists := s.products[line.SKU]; !exists {
			return nil, store.ErrNotFound
		}
	}
	if transfer.ID == "" {
		transfer.ID = xid.New("tr")
	}
	if transfer.CreatedAt.IsZero() {
		transfer.CreatedAt = time.Now().UTC()
	}
	transfer.Status = domain.TransferStatusPending
	transfer.TransferDate = nil

	saved := cloneTransfer(&transfer)
	s.transfersByID[transfer.ID] = saved
	return cloneTransfer(saved), nil
}

func (s *Store) GetStockTransferByID(_ context.Context, transferID string) (*domain.StockTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transfer, exists := s.transfersByID[transferID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneTransfer(transfer), nil
}

func (s *Store) ListStockTransfers(_ context.Context, storeID string, status string, limit int) ([]domain.StockTransfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status = strings.ToLower(strings.TrimSpace(status))
	result := make([]domain.StockTransfer, 0, 64)
	for _, transfer := range s.transfersByID {
		if storeID != "" && transfer.FromStoreID != storeID && transfer.ToStoreID != storeID {
			continue
		}
		if status != "" && transfer.Status != status {
			continue
		}
		result = append(result, *cloneTransfer(transfer))
	}
	slices.SortFunc(result, func(a, b domain.StockTransfer) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) ApproveStockTransfer(_ context.Context, transferID string, approvedBy string, at time.Time) (*domain.StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transfer, exists := s.transfersByID[transferID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if transfer.Status != domain.TransferStatusPending {
		return nil, store.ErrConflict
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	// Availability is checked across all lines before any counter moves,
	// so an over-capacity line leaves the transfer pending and the stock
	// untouched. Quantities accumulate per SKU so duplicate-SKU lines
	// must fit the source stock combined.
	requested := make(map[string]int, len(transfer.Lines))
	for _, line := range transfer.Lines {
		record, ok := s.stock[transfer.FromStoreID][line.SKU]
		if !ok {
			return nil, store.ErrNotFound
		}
		requested[line.SKU] += line.Qty
		if record.QtyOnHand < requested[line.SKU] {
			name := line.SKU
			if p, exists := s.products[line.SKU]; exists {
				name = p.Name
			}
			return nil, &store.InsufficientStockError{
				StoreID:   transfer.FromStoreID,
				SKU:       line.SKU,
				Name:      name,
				Available: record.QtyOnHand,
				Requested: requested[line.SKU],
			}
		}
	}

	for _, line := range transfer.Lines {
		source, err := s.applyDecrement(transfer.FromStoreID, line.SKU, line.Qty, at)
		if err != nil {
			// Unreachable after the aggregate pre-check above; the lock
			// is held for the whole call.
			return nil, err
		}
		s.applyIncrement(transfer.ToStoreID, line.SKU, line.Qty, source.UnitPriceCents, at)
	}

	transfer.Status = domain.TransferStatusApproved
	transfer.ApprovedBy = approvedBy
	transfer.TransferDate = &at
	return cloneTransfer(transfer), nil
}

func (s *Store) RejectStockTransfer(_ context.Context, transferID string, approvedBy string, comment string, at time.Time) (*domain.StockTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transfer, exists := s.transfersByID[transferID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if transfer.Status != domain.TransferStatusPending {
		return nil, store.ErrConflict
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	transfer.Status = domain.TransferStatusRejected
	transfer.ApprovedBy = approvedBy
	transfer.Comment = comment
	transfer.TransferDate = &at
	return cloneTransfer(transfer), nil
}

func (s *Store) GetStoreSummary(_ context.Context, storeID string, from time.Time, to time.Time) (domain.StoreSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := domain.StoreSummary{
		StoreID: storeID,
		From:    from.UTC().Format(time.RFC3339),
		To:      to.UTC().Format(time.RFC3339),
	}

	for _, record := range s.stock[storeID] {
		summary.ProductCount++
		summary.UnitsOnHand += record.QtyOnHand
		summary.UnitsSpoiled += record.QtySpoiled
		if record.QtyOnHand <= record.LowStockThreshold {
			summary.LowStockCount++
		}
	}

	for _, sale := range s.salesByID {
		if sale.Deleted || sale.StoreID != storeID {
			continue
		}
		if sale.CreatedAt.Before(from) || !sale.CreatedAt.Before(to) {
			continue
		}
		summary.SaleCount++
		summary.SalesTotalCents += sale.TotalCents()
	}

	for _, purchase := range s.purchasesByID {
		if purchase.StoreID != storeID {
			continue
		}
		if purchase.CreatedAt.Before(from) || !purchase.CreatedAt.Before(to) {
			continue
		}
		summary.PurchaseCount++
		summary.PurchasesTotalCents += purchase.TotalAmountCents
	}

	return summary, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if storeID != "" && entry.StoreID != storeID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	if user.Role == "" {
		user.Role = "cashier"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneSale(src *domain.Sale) *domain.Sale {
	if src == nil {
		return nil
	}
	dup := *src
	lines := make([]domain.SaleLine, len(src.Lines))
	copy(lines, src.Lines)
	dup.Lines = lines
	return &dup
}

func clonePurchase(src *domain.Purchase) *domain.Purchase {
	if src == nil {
		return nil
	}
	dup := *src
	lines := make([]domain.PurchaseLine, len(src.Lines))
	copy(lines, src.Lines)
	dup.Lines = lines
	return &dup
}

func cloneTransfer(src *domain.StockTransfer) *domain.StockTransfer {
	if src == nil {
		return nil
	}
	dup := *src
	lines := make([]domain.TransferLine, len(src.Lines))
	copy(lines, src.Lines)
	dup.Lines = lines
	if src.TransferDate != nil {
		at := src.TransferDate.UTC()
		dup.TransferDate = &at
	}
	return &dup
}
