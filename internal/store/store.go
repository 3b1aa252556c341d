package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Emananii/MyDuka-sub000/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which product could not cover a decrement.
// It unwraps to ErrInsufficientStock so callers can match with errors.Is.
type InsufficientStockError struct {
	StoreID   string
	SKU       string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s) at %s: available %d, requested %d",
		e.Name, e.SKU, e.StoreID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Repository is the persistence boundary. The ledger operations
// (IncrementStock, DecrementStock, TransferStock) and the workflow writes
// (CreateSale, CreatePurchase, RespondSupplyRequest, ApproveStockTransfer,
// SoftDeleteSaleLine, RecordSpoilage) are each atomic: they either apply
// fully or leave no trace.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)

	ListStores(ctx context.Context) ([]domain.Store, error)
	GetStoreByID(ctx context.Context, storeID string) (*domain.Store, error)

	CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error)
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	GetSupplierByID(ctx context.Context, supplierID string) (*domain.Supplier, error)

	GetStockRecord(ctx context.Context, storeID string, sku string) (*domain.StockRecord, error)
	ListStockRecords(ctx context.Context, storeID string) ([]domain.StockRecord, error)
	ListLowStock(ctx context.Context, storeID string) ([]domain.StockRecord, error)
	IncrementStock(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error)
	DecrementStock(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error)
	TransferStock(ctx context.Context, fromStoreID string, toStoreID string, sku string, qty int) error
	RecordSpoilage(ctx context.Context, storeID string, sku string, qty int) (*domain.StockRecord, error)
	SetStockPricing(ctx context.Context, storeID string, sku string, unitPriceCents int64, lowStockThreshold int) (*domain.StockRecord, error)

	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)
	ListSales(ctx context.Context, storeID string, paymentStatus string, limit int) ([]domain.Sale, error)
	SoftDeleteSaleLine(ctx context.Context, saleID string, lineID string) (*domain.Sale, error)
	SoftDeleteSale(ctx context.Context, saleID string) (*domain.Sale, error)

	CreatePurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
	GetPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, storeID string, limit int) ([]domain.Purchase, error)

	CreateSupplyRequest(ctx context.Context, request domain.SupplyRequest) (*domain.SupplyRequest, error)
	GetSupplyRequestByID(ctx context.Context, requestID string) (*domain.SupplyRequest, error)
	ListSupplyRequests(ctx context.Context, storeID string, status string, limit int) ([]domain.SupplyRequest, error)
	RespondSupplyRequest(ctx context.Context, requestID string, adminID string, action string, comment string, at time.Time) (*domain.SupplyRequest, error)

	CreateStockTransfer(ctx context.Context, transfer domain.StockTransfer) (*domain.StockTransfer, error)
	GetStockTransferByID(ctx context.Context, transferID string) (*domain.StockTransfer, error)
	ListStockTransfers(ctx context.Context, storeID string, status string, limit int) ([]domain.StockTransfer, error)
	ApproveStockTransfer(ctx context.Context, transferID string, approvedBy string, at time.Time) (*domain.StockTransfer, error)
	RejectStockTransfer(ctx context.Context, transferID string, approvedBy string, comment string, at time.Time) (*domain.StockTransfer, error)

	GetStoreSummary(ctx context.Context, storeID string, from time.Time, to time.Time) (domain.StoreSummary, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, storeID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
