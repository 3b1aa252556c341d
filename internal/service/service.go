package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Emananii/MyDuka-sub000/internal/cache"
	"github.com/Emananii/MyDuka-sub000/internal/domain"
	"github.com/Emananii/MyDuka-sub000/internal/store"
	"github.com/Emananii/MyDuka-sub000/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Service struct {
	repo           store.Repository
	summaries      cache.SummaryCache
	summaryTTL     time.Duration
	defaultStoreID string
}

func New(repo store.Repository, summaries cache.SummaryCache, summaryTTL time.Duration, defaultStoreID string) *Service {
	if defaultStoreID == "" {
		defaultStoreID = "main-store"
	}
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if summaryTTL < time.Second {
		summaryTTL = 30 * time.Second
	}

	return &Service{
		repo:           repo,
		summaries:      summaries,
		summaryTTL:     summaryTTL,
		defaultStoreID: defaultStoreID,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	req.Category = strings.TrimSpace(req.Category)
	if req.SKU == "" || req.Name == "" || req.Unit == "" || req.Category == "" {
		return domain.Product{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		SKU:      req.SKU,
		Name:     req.Name,
		Unit:     req.Unit,
		Category: req.Category,
		Active:   true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "", "product_create", "product", created.SKU, fmt.Sprintf("name=%s,unit=%s", created.Name, created.Unit))
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, sku string, req domain.ProductUpdateRequest) (domain.Product, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Product{}, fmt.Errorf("admin role required")
	}

	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return domain.Product{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetProductBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Unit = unit
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Category = category
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "", "product_update", "product", saved.SKU, fmt.Sprintf("active=%t", saved.Active))
	return *saved, nil
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.ListStores(ctx)
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierCreateRequest) (domain.Supplier, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Supplier{}, fmt.Errorf("admin role required")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return domain.Supplier{}, store.ErrInvalidInput
	}

	saved, err := s.repo.CreateSupplier(ctx, domain.Supplier{
		ID:        xid.New("sup"),
		Name:      req.Name,
		Phone:     req.Phone,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	s.logAudit(ctx, "", "supplier_create", "supplier", saved.ID, fmt.Sprintf("name=%s", saved.Name))
	return *saved, nil
}

func (s *Service) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

func (s *Service) StockOverview(ctx context.Context, storeID string) ([]domain.StockRecord, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if _, err := s.repo.GetStoreByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListStockRecords(ctx, storeID)
}

func (s *Service) LowStock(ctx context.Context, storeID string) ([]domain.StockRecord, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if _, err := s.repo.GetStoreByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.ListLowStock(ctx, storeID)
}

func (s *Service) SetStockPricing(ctx context.Context, req domain.StockPricingRequest) (domain.StockRecord, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockRecord{}, fmt.Errorf("admin role required")
	}

	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	if req.SKU == "" || req.UnitPriceCents < 0 || req.LowStockThreshold < 0 {
		return domain.StockRecord{}, store.ErrInvalidInput
	}

	record, err := s.repo.SetStockPricing(ctx, req.StoreID, req.SKU, req.UnitPriceCents, req.LowStockThreshold)
	if err != nil {
		return domain.StockRecord{}, err
	}

	s.logAudit(ctx, req.StoreID, "stock_pricing", "stock_record", req.SKU, fmt.Sprintf("price=%d,threshold=%d", req.UnitPriceCents, req.LowStockThreshold))
	return *record, nil
}

func (s *Service) RecordSpoilage(ctx context.Context, req domain.SpoilageRequest) (domain.StockRecord, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || (actor.Role != "admin" && actor.Role != "clerk") {
		return domain.StockRecord{}, fmt.Errorf("admin or clerk role required")
	}

	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	if req.SKU == "" || req.Qty < 1 {
		return domain.StockRecord{}, store.ErrInvalidInput
	}

	record, err := s.repo.RecordSpoilage(ctx, req.StoreID, req.SKU, req.Qty)
	if err != nil {
		return domain.StockRecord{}, err
	}

	s.logAudit(ctx, req.StoreID, "spoilage_record", "stock_record", req.SKU, fmt.Sprintf("qty=%d", req.Qty))
	return *record, nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || (actor.Role != "admin" && actor.Role != "cashier") {
		return domain.SaleResponse{}, fmt.Errorf("admin or cashier role required")
	}

	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.PaymentStatus = strings.ToLower(strings.TrimSpace(req.PaymentStatus))
	if req.PaymentStatus == "" {
		req.PaymentStatus = domain.SalePaid
	}
	if req.PaymentStatus != domain.SalePaid && req.PaymentStatus != domain.SaleUnpaid {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}
	if len(req.Lines) == 0 {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}

	st, err := s.repo.GetStoreByID(ctx, req.StoreID)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	if !st.Active {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}

	lines := make([]domain.SaleLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		sku := strings.ToUpper(strings.TrimSpace(input.SKU))
		if sku == "" || input.Qty < 1 {
			return domain.SaleResponse{}, store.ErrInvalidInput
		}
		lines = append(lines, domain.SaleLine{SKU: sku, Qty: input.Qty})
	}

	created, err := s.repo.CreateSale(ctx, domain.Sale{
		ID:            xid.New("sale"),
		StoreID:       req.StoreID,
		CashierID:     actor.Username,
		PaymentStatus: req.PaymentStatus,
		CreatedAt:     time.Now().UTC(),
		Lines:         lines,
	})
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, created.StoreID, "sale_create", "sale", created.ID, fmt.Sprintf("lines=%d,total=%d", len(created.Lines), created.TotalCents()))
	return domain.SaleResponse{Sale: *created, TotalCents: created.TotalCents()}, nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (domain.SaleResponse, error) {
	if saleID == "" {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	return domain.SaleResponse{Sale: *sale, TotalCents: sale.TotalCents()}, nil
}

func (s *Service) ListSales(ctx context.Context, storeID string, paymentStatus string, limit int) ([]domain.SaleResponse, error) {
	paymentStatus = strings.ToLower(strings.TrimSpace(paymentStatus))
	if paymentStatus != "" && paymentStatus != domain.SalePaid && paymentStatus != domain.SaleUnpaid {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	sales, err := s.repo.ListSales(ctx, storeID, paymentStatus, limit)
	if err != nil {
		return nil, err
	}
	result := make([]domain.SaleResponse, 0, len(sales))
	for _, sale := range sales {
		result = append(result, domain.SaleResponse{Sale: sale, TotalCents: sale.TotalCents()})
	}
	return result, nil
}

func (s *Service) DeleteSaleLine(ctx context.Context, saleID string, lineID string) (domain.SaleResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.SaleResponse{}, fmt.Errorf("admin role required")
	}
	if saleID == "" || lineID == "" {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}

	sale, err := s.repo.SoftDeleteSaleLine(ctx, saleID, lineID)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, sale.StoreID, "sale_line_delete", "sale", saleID, fmt.Sprintf("line=%s,total=%d", lineID, sale.TotalCents()))
	return domain.SaleResponse{Sale: *sale, TotalCents: sale.TotalCents()}, nil
}

func (s *Service) DeleteSale(ctx context.Context, saleID string) (domain.SaleResponse, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.SaleResponse{}, fmt.Errorf("admin role required")
	}
	if saleID == "" {
		return domain.SaleResponse{}, store.ErrInvalidInput
	}

	sale, err := s.repo.SoftDeleteSale(ctx, saleID)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.logAudit(ctx, sale.StoreID, "sale_delete", "sale", saleID, "")
	return domain.SaleResponse{Sale: *sale, TotalCents: sale.TotalCents()}, nil
}

func (s *Service) CreatePurchase(ctx context.Context, req domain.PurchaseCreateRequest) (domain.Purchase, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || (actor.Role != "admin" && actor.Role != "clerk") {
		return domain.Purchase{}, fmt.Errorf("admin or clerk role required")
	}

	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.SupplierID = strings.TrimSpace(req.SupplierID)
	req.ReferenceNumber = strings.TrimSpace(req.ReferenceNumber)
	if req.SupplierID == "" || req.ReferenceNumber == "" || len(req.Lines) == 0 {
		return domain.Purchase{}, store.ErrInvalidInput
	}

	date := time.Now().UTC()
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		date = parsed.UTC()
	}

	if _, err := s.repo.GetStoreByID(ctx, req.StoreID); err != nil {
		return domain.Purchase{}, err
	}
	if _, err := s.repo.GetSupplierByID(ctx, req.SupplierID); err != nil {
		return domain.Purchase{}, err
	}

	lines := make([]domain.PurchaseLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		line.SKU = strings.ToUpper(strings.TrimSpace(line.SKU))
		if line.SKU == "" || line.Qty < 1 || line.UnitCostCents < 0 {
			return domain.Purchase{}, store.ErrInvalidInput
		}
		if _, err := s.repo.GetProductBySKU(ctx, line.SKU); err != nil {
			return domain.Purchase{}, err
		}
		lines = append(lines, line)
	}

	created, err := s.repo.CreatePurchase(ctx, domain.Purchase{
		ID:              xid.New("po"),
		StoreID:         req.StoreID,
		SupplierID:      req.SupplierID,
		ReferenceNumber: req.ReferenceNumber,
		Date:            date,
		IsPaid:          req.IsPaid,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       time.Now().UTC(),
		Lines:           lines,
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.logAudit(ctx, created.StoreID, "purchase_create", "purchase", created.ID, fmt.Sprintf("ref=%s,total=%d", created.ReferenceNumber, created.TotalAmountCents))
	return *created, nil
}

func (s *Service) GetPurchase(ctx context.Context, purchaseID string) (domain.Purchase, error) {
	if purchaseID == "" {
		return domain.Purchase{}, store.ErrInvalidInput
	}
	purchase, err := s.repo.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return domain.Purchase{}, err
	}
	return *purchase, nil
}

func (s *Service) ListPurchases(ctx context.Context, storeID string, limit int) ([]domain.Purchase, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListPurchases(ctx, storeID, limit)
}

func (s *Service) CreateSupplyRequest(ctx context.Context, req domain.SupplyRequestCreateRequest) (domain.SupplyRequest, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "clerk" {
		return domain.SupplyRequest{}, fmt.Errorf("clerk role required")
	}

	if req.StoreID == "" {
		req.StoreID = s.defaultStoreID
	}
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	if req.SKU == "" || req.Qty < 1 {
		return domain.SupplyRequest{}, store.ErrInvalidInput
	}

	if _, err := s.repo.GetStoreByID(ctx, req.StoreID); err != nil {
		return domain.SupplyRequest{}, err
	}
	if _, err := s.repo.GetProductBySKU(ctx, req.SKU); err != nil {
		return domain.SupplyRequest{}, err
	}

	created, err := s.repo.CreateSupplyRequest(ctx, domain.SupplyRequest{
		ID:           xid.New("sr"),
		StoreID:      req.StoreID,
		SKU:          req.SKU,
		ClerkID:      actor.Username,
		RequestedQty: req.Qty,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return domain.SupplyRequest{}, err
	}

	s.logAudit(ctx, created.StoreID, "supply_request_create", "supply_request", created.ID, fmt.Sprintf("sku=%s,qty=%d", created.SKU, created.RequestedQty))
	return *created, nil
}

func (s *Service) ListSupplyRequests(ctx context.Context, storeID string, status string, limit int) ([]domain.SupplyRequest, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != domain.SupplyStatusPending && status != domain.SupplyStatusApproved && status != domain.SupplyStatusDeclined {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListSupplyRequests(ctx, storeID, status, limit)
}

func (s *Service) RespondSupplyRequest(ctx context.Context, requestID string, req domain.SupplyRequestRespondRequest) (domain.SupplyRequest, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.SupplyRequest{}, fmt.Errorf("admin role required")
	}

	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if requestID == "" || (req.Action != domain.SupplyActionApprove && req.Action != domain.SupplyActionDecline) {
		return domain.SupplyRequest{}, store.ErrInvalidInput
	}

	responded, err := s.repo.RespondSupplyRequest(ctx, requestID, actor.Username, req.Action, strings.TrimSpace(req.Comment), time.Now().UTC())
	if err != nil {
		return domain.SupplyRequest{}, err
	}

	s.logAudit(ctx, responded.StoreID, "supply_request_"+req.Action, "supply_request", responded.ID, fmt.Sprintf("sku=%s,qty=%d", responded.SKU, responded.RequestedQty))
	return *responded, nil
}

func (s *Service) InitiateTransfer(ctx context.Context, req domain.TransferCreateRequest) (domain.StockTransfer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || (actor.Role != "admin" && actor.Role != "clerk") {
		return domain.StockTransfer{}, fmt.Errorf("admin or clerk role required")
	}

	req.FromStoreID = strings.TrimSpace(req.FromStoreID)
	req.ToStoreID = strings.TrimSpace(req.ToStoreID)
	if req.FromStoreID == "" || req.ToStoreID == "" || req.FromStoreID == req.ToStoreID || len(req.Lines) == 0 {
		return domain.StockTransfer{}, store.ErrInvalidInput
	}

	if _, err := s.repo.GetStoreByID(ctx, req.FromStoreID); err != nil {
		return domain.StockTransfer{}, err
	}
	if _, err := s.repo.GetStoreByID(ctx, req.ToStoreID); err != nil {
		return domain.StockTransfer{}, err
	}

	// Availability is deliberately not checked here. The transfer records
	// intent; stock levels are validated when an admin approves it.
	lines := make([]domain.TransferLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		line.SKU = strings.ToUpper(strings.TrimSpace(line.SKU))
		if line.SKU == "" || line.Qty < 1 {
			return domain.StockTransfer{}, store.ErrInvalidInput
		}
		if _, err := s.repo.GetProductBySKU(ctx, line.SKU); err != nil {
			return domain.StockTransfer{}, err
		}
		lines = append(lines, line)
	}

	created, err := s.repo.CreateStockTransfer(ctx, domain.StockTransfer{
		ID:          xid.New("tr"),
		FromStoreID: req.FromStoreID,
		ToStoreID:   req.ToStoreID,
		InitiatedBy: actor.Username,
		CreatedAt:   time.Now().UTC(),
		Lines:       lines,
	})
	if err != nil {
		return domain.StockTransfer{}, err
	}

	s.logAudit(ctx, created.FromStoreID, "transfer_initiate", "stock_transfer", created.ID, fmt.Sprintf("to=%s,lines=%d", created.ToStoreID, len(created.Lines)))
	return *created, nil
}

func (s *Service) GetTransfer(ctx context.Context, transferID string) (domain.StockTransfer, error) {
	if transferID == "" {
		return domain.StockTransfer{}, store.ErrInvalidInput
	}
	transfer, err := s.repo.GetStockTransferByID(ctx, transferID)
	if err != nil {
		return domain.StockTransfer{}, err
	}
	return *transfer, nil
}

func (s *Service) ListTransfers(ctx context.Context, storeID string, status string, limit int) ([]domain.StockTransfer, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && status != domain.TransferStatusPending && status != domain.TransferStatusApproved && status != domain.TransferStatusRejected {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListStockTransfers(ctx, storeID, status, limit)
}

func (s *Service) ApproveTransfer(ctx context.Context, transferID string) (domain.StockTransfer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockTransfer{}, fmt.Errorf("admin role required")
	}
	if transferID == "" {
		return domain.StockTransfer{}, store.ErrInvalidInput
	}

	approved, err := s.repo.ApproveStockTransfer(ctx, transferID, actor.Username, time.Now().UTC())
	if err != nil {
		return domain.StockTransfer{}, err
	}

	s.logAudit(ctx, approved.FromStoreID, "transfer_approve", "stock_transfer", approved.ID, fmt.Sprintf("to=%s", approved.ToStoreID))
	return *approved, nil
}

func (s *Service) RejectTransfer(ctx context.Context, transferID string, req domain.TransferRejectRequest) (domain.StockTransfer, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.StockTransfer{}, fmt.Errorf("admin role required")
	}
	if transferID == "" {
		return domain.StockTransfer{}, store.ErrInvalidInput
	}

	rejected, err := s.repo.RejectStockTransfer(ctx, transferID, actor.Username, strings.TrimSpace(req.Comment), time.Now().UTC())
	if err != nil {
		return domain.StockTransfer{}, err
	}

	s.logAudit(ctx, rejected.FromStoreID, "transfer_reject", "stock_transfer", rejected.ID, fmt.Sprintf("to=%s", rejected.ToStoreID))
	return *rejected, nil
}

// StoreSummary serves the per-store aggregate for one UTC day, via the
// summary cache when warm. A stale read within the TTL is acceptable.
func (s *Service) StoreSummary(ctx context.Context, storeID string, date string) (domain.StoreSummary, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	day := time.Now().UTC()
	if strings.TrimSpace(date) != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.StoreSummary{}, store.ErrInvalidInput
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	key := fmt.Sprintf("summary:%s:%s", storeID, from.Format("2006-01-02"))
	if cached, found, err := s.summaries.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: summary cache read failed key=%s: %v", key, err)
	} else if found {
		return *cached, nil
	}

	if _, err := s.repo.GetStoreByID(ctx, storeID); err != nil {
		return domain.StoreSummary{}, err
	}
	summary, err := s.repo.GetStoreSummary(ctx, storeID, from, to)
	if err != nil {
		return domain.StoreSummary{}, err
	}

	if err := s.summaries.Set(ctx, key, &summary, s.summaryTTL); err != nil {
		log.Printf("[service] WARN: summary cache write failed key=%s: %v", key, err)
	}
	return summary, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, storeID string, date string, limit int) ([]domain.AuditLog, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return nil, fmt.Errorf("admin role required")
	}

	day := time.Now().UTC()
	if strings.TrimSpace(date) != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, store.ErrInvalidInput
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	if limit < 1 || limit > 500 {
		limit = 100
	}

	return s.repo.ListAuditLogs(ctx, storeID, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, storeID string, action string, entityType string, entityID string, detail string) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system", Role: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		StoreID:       storeID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}
