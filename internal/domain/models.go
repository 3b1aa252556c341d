package domain

import "time"

// Sale payment states.
const (
	SalePaid   = "paid"
	SaleUnpaid = "unpaid"
)

// Supply request lifecycle. Pending is the only non-terminal state.
const (
	SupplyStatusPending  = "pending"
	SupplyStatusApproved = "approved"
	SupplyStatusDeclined = "declined"
)

// Supply request response actions.
const (
	SupplyActionApprove = "approve"
	SupplyActionDecline = "decline"
)

// Stock transfer lifecycle. Pending is the only non-terminal state. An
// approved transfer has already moved stock: approval and movement commit
// in the same transaction.
const (
	TransferStatusPending  = "pending"
	TransferStatusApproved = "approved"
	TransferStatusRejected = "rejected"
)

type Product struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
	Active   bool   `json:"active"`
}

type ProductCreateRequest struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
}

type ProductUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Category *string `json:"category,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type Store struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type SupplierCreateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// StockRecord is the per-(store, sku) quantity counter. Quantities only
// change through the ledger operations on the repository; nothing else
// writes QtyOnHand or QtySpoiled.
type StockRecord struct {
	StoreID           string    `json:"store_id"`
	SKU               string    `json:"sku"`
	QtyOnHand         int       `json:"qty_on_hand"`
	QtySpoiled        int       `json:"qty_spoiled"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	UnitPriceCents    int64     `json:"unit_price_cents"`
	LastUpdated       time.Time `json:"last_updated"`
}

type StockPricingRequest struct {
	StoreID           string `json:"store_id"`
	SKU               string `json:"sku"`
	UnitPriceCents    int64  `json:"unit_price_cents"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

type SpoilageRequest struct {
	StoreID string `json:"store_id"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

type SaleLine struct {
	ID               string `json:"id"`
	SKU              string `json:"sku"`
	Qty              int    `json:"qty"`
	PriceAtSaleCents int64  `json:"price_at_sale_cents"`
	Deleted          bool   `json:"deleted"`
}

type Sale struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"store_id"`
	CashierID     string     `json:"cashier_id"`
	PaymentStatus string     `json:"payment_status"`
	Deleted       bool       `json:"deleted"`
	CreatedAt     time.Time  `json:"created_at"`
	Lines         []SaleLine `json:"lines"`
}

// TotalCents sums price_at_sale x qty over non-deleted lines. The total is
// never stored, so soft-deleting a line changes it by construction.
func (s Sale) TotalCents() int64 {
	var total int64
	for _, line := range s.Lines {
		if line.Deleted {
			continue
		}
		total += line.PriceAtSaleCents * int64(line.Qty)
	}
	return total
}

type SaleLineInput struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

type SaleCreateRequest struct {
	StoreID       string          `json:"store_id"`
	PaymentStatus string          `json:"payment_status"`
	Lines         []SaleLineInput `json:"lines"`
}

type SaleResponse struct {
	Sale       Sale  `json:"sale"`
	TotalCents int64 `json:"total_cents"`
}

type SaleListResponse struct {
	Sales []SaleResponse `json:"sales"`
}

type PurchaseLine struct {
	SKU           string `json:"sku"`
	Qty           int    `json:"qty"`
	UnitCostCents int64  `json:"unit_cost_cents"`
}

type Purchase struct {
	ID               string         `json:"id"`
	StoreID          string         `json:"store_id"`
	SupplierID       string         `json:"supplier_id"`
	ReferenceNumber  string         `json:"reference_number"`
	Date             time.Time      `json:"date"`
	IsPaid           bool           `json:"is_paid"`
	Notes            string         `json:"notes,omitempty"`
	TotalAmountCents int64          `json:"total_amount_cents"`
	CreatedAt        time.Time      `json:"created_at"`
	Lines            []PurchaseLine `json:"lines"`
}

type PurchaseCreateRequest struct {
	StoreID         string         `json:"store_id"`
	SupplierID      string         `json:"supplier_id"`
	ReferenceNumber string         `json:"reference_number"`
	Date            string         `json:"date,omitempty"`
	IsPaid          bool           `json:"is_paid"`
	Notes           string         `json:"notes,omitempty"`
	Lines           []PurchaseLine `json:"lines"`
}

type SupplyRequest struct {
	ID            string     `json:"id"`
	StoreID       string     `json:"store_id"`
	SKU           string     `json:"sku"`
	ClerkID       string     `json:"clerk_id"`
	RequestedQty  int        `json:"requested_qty"`
	Status        string     `json:"status"`
	AdminID       string     `json:"admin_id,omitempty"`
	AdminResponse string     `json:"admin_response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
}

type SupplyRequestCreateRequest struct {
	StoreID string `json:"store_id"`
	SKU     string `json:"sku"`
	Qty     int    `json:"qty"`
}

type SupplyRequestRespondRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment,omitempty"`
}

type TransferLine struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

type StockTransfer struct {
	ID           string         `json:"id"`
	FromStoreID  string         `json:"from_store_id"`
	ToStoreID    string         `json:"to_store_id"`
	InitiatedBy  string         `json:"initiated_by"`
	ApprovedBy   string         `json:"approved_by,omitempty"`
	Comment      string         `json:"comment,omitempty"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	TransferDate *time.Time     `json:"transfer_date,omitempty"`
	Lines        []TransferLine `json:"lines"`
}

type TransferCreateRequest struct {
	FromStoreID string         `json:"from_store_id"`
	ToStoreID   string         `json:"to_store_id"`
	Lines       []TransferLine `json:"lines"`
}

type TransferRejectRequest struct {
	Comment string `json:"comment,omitempty"`
}

// StoreSummary aggregates a store's current stock position with its sales
// and purchases inside a time window. Sale totals count non-deleted lines
// of non-deleted sales only.
type StoreSummary struct {
	StoreID             string `json:"store_id"`
	From                string `json:"from"`
	To                  string `json:"to"`
	ProductCount        int    `json:"product_count"`
	UnitsOnHand         int    `json:"units_on_hand"`
	UnitsSpoiled        int    `json:"units_spoiled"`
	LowStockCount       int    `json:"low_stock_count"`
	SaleCount           int64  `json:"sale_count"`
	SalesTotalCents     int64  `json:"sales_total_cents"`
	PurchaseCount       int64  `json:"purchase_count"`
	PurchasesTotalCents int64  `json:"purchases_total_cents"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type Actor struct {
	Username string
	Role     string
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
