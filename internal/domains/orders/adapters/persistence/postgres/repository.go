package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrDuplicateID is returned by Create when the identifier is taken.
var ErrDuplicateID = errors.New("order identifier already exists")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Schema is owned by platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to the orders table.
type orderRecord struct {
	ID                    string          `gorm:"primaryKey;column:id;size:64"`
	OwnerID               string          `gorm:"column:owner_id;size:128;index:idx_orders_owner_created"`
	Items                 []itemRecord    `gorm:"column:items;serializer:json"`
	DessertIDs            pq.StringArray  `gorm:"column:dessert_ids;type:text[]"`
	TotalAmount           decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	Discount              decimal.Decimal `gorm:"column:discount;type:numeric(14,2)"`
	DeliveryFee           decimal.Decimal `gorm:"column:delivery_fee;type:numeric(14,2)"`
	FinalAmount           decimal.Decimal `gorm:"column:final_amount;type:numeric(14,2)"`
	Status                string          `gorm:"column:status;type:varchar(32);index"`
	PaymentMethod         string          `gorm:"column:payment_method;type:varchar(32)"`
	PaymentStatus         string          `gorm:"column:payment_status;type:varchar(32);index"`
	FullAddress           string          `gorm:"column:full_address"`
	Phone                 string          `gorm:"column:phone;size:32"`
	Note                  string          `gorm:"column:note"`
	EstimatedDeliveryTime string          `gorm:"column:estimated_delivery_time"`
	TransactionID         *string         `gorm:"column:payment_transaction_id;size:128"`
	Gateway               string          `gorm:"column:payment_gateway;size:64"`
	TransactionDate       string          `gorm:"column:payment_transaction_date;size:64"`
	PaidAmount            decimal.Decimal `gorm:"column:payment_amount;type:numeric(14,2)"`
	ReferenceNumber       string          `gorm:"column:payment_reference_number;size:128"`
	TransferContent       string          `gorm:"column:payment_content"`
	TransferDescription   string          `gorm:"column:payment_description"`
	SubAccount            string          `gorm:"column:payment_sub_account;size:64"`
	CreatedAt             time.Time       `gorm:"column:created_at;index:idx_orders_owner_created"`
	UpdatedAt             time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type itemRecord struct {
	DessertID    string          `json:"dessertId"`
	DessertName  string          `json:"dessertName,omitempty"`
	DessertImage string          `json:"dessertImage,omitempty"`
	Quantity     int32           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateID
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update writes the mutable order columns only while the stored status equals expected.
func (r *Repository) Update(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	result := r.db.WithContext(ctx).
		Model(&record).
		Where("status = ?", string(expected)).
		Select(mutableColumns).
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, order.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrStaleStatus
	}
	return r.GetByID(ctx, order.ID)
}

var mutableColumns = []string{
	"items", "dessert_ids", "total_amount", "discount", "delivery_fee", "final_amount",
	"status", "payment_method", "full_address", "phone", "note", "estimated_delivery_time", "updated_at",
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindByIDPrefix returns the newest order whose identifier starts with prefix, ignoring case.
func (r *Repository) FindByIDPrefix(ctx context.Context, prefix string) (*domain.Order, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, ports.ErrNotFound
	}
	return r.findFirst(ctx, `LOWER(id) LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
}

// FindByLooseIDPrefix returns the newest order whose identifier starts with prefix,
// ignoring case and hyphens on both sides.
func (r *Repository) FindByLooseIDPrefix(ctx context.Context, prefix string) (*domain.Order, error) {
	prefix = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(prefix)), "-", "")
	if prefix == "" {
		return nil, ports.ErrNotFound
	}
	return r.findFirst(ctx, `REPLACE(LOWER(id), '-', '') LIKE ? ESCAPE '\'`, likeEscaper.Replace(prefix)+"%")
}

func (r *Repository) findFirst(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("created_at DESC").Order("id DESC").
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// ListRecent returns up to limit orders, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(records), nil
}

// List returns the filtered page and the total number of matching orders.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := query.Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		page = page.Offset(offset).Limit(filter.Limit)
	}
	var records []orderRecord
	if err := page.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return toDomainSlice(records), total, nil
}

// Count returns the number of stored orders.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// MarkPaid settles the order with a single conditional UPDATE guarded by
// payment_status = 'unpaid', so concurrent callers cannot both win.
func (r *Repository) MarkPaid(ctx context.Context, id string, txn domain.PaymentTransaction, at time.Time) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(txn.TransactionID) == "" {
		return nil, domain.ErrMissingTransaction
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND payment_status = ?", id, string(domain.PaymentUnpaid)).
		Updates(map[string]any{
			"payment_status":           string(domain.PaymentPaid),
			"status":                   gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", string(domain.StatusPending), string(domain.StatusConfirmed)),
			"payment_transaction_id":   txn.TransactionID,
			"payment_gateway":          txn.Gateway,
			"payment_transaction_date": txn.TransactionDate,
			"payment_amount":           txn.Amount,
			"payment_reference_number": txn.ReferenceNumber,
			"payment_content":          txn.Content,
			"payment_description":      txn.Description,
			"payment_sub_account":      txn.SubAccount,
			"updated_at":               at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ports.ErrAlreadyPaid
	}
	return r.GetByID(ctx, id)
}

// Delete removes an order by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&orderRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:                    order.ID,
		OwnerID:               order.OwnerID,
		Items:                 make([]itemRecord, 0, len(order.Items)),
		DessertIDs:            make(pq.StringArray, 0, len(order.Items)),
		TotalAmount:           order.TotalAmount,
		Discount:              order.Discount,
		DeliveryFee:           order.DeliveryFee,
		FinalAmount:           order.FinalAmount,
		Status:                string(order.Status),
		PaymentMethod:         order.PaymentMethod,
		PaymentStatus:         string(order.PaymentStatus),
		FullAddress:           order.DeliveryAddress.FullAddress,
		Phone:                 order.DeliveryAddress.Phone,
		Note:                  order.DeliveryAddress.Note,
		EstimatedDeliveryTime: order.EstimatedDeliveryTime,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	for _, item := range order.Items {
		rec.Items = append(rec.Items, itemRecord{
			DessertID:    item.DessertID,
			DessertName:  item.DessertName,
			DessertImage: item.DessertImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Discount:     item.Discount,
		})
		rec.DessertIDs = append(rec.DessertIDs, item.DessertID)
	}
	if txn := order.PaymentTransaction; txn != nil {
		id := txn.TransactionID
		rec.TransactionID = &id
		rec.Gateway = txn.Gateway
		rec.TransactionDate = txn.TransactionDate
		rec.PaidAmount = txn.Amount
		rec.ReferenceNumber = txn.ReferenceNumber
		rec.TransferContent = txn.Content
		rec.TransferDescription = txn.Description
		rec.SubAccount = txn.SubAccount
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Items:         make([]domain.Item, 0, len(r.Items)),
		TotalAmount:   r.TotalAmount,
		Discount:      r.Discount,
		DeliveryFee:   r.DeliveryFee,
		FinalAmount:   r.FinalAmount,
		Status:        domain.Status(r.Status),
		PaymentMethod: r.PaymentMethod,
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		DeliveryAddress: domain.DeliveryAddress{
			FullAddress: r.FullAddress,
			Phone:       r.Phone,
			Note:        r.Note,
		},
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			DessertID:    item.DessertID,
			DessertName:  item.DessertName,
			DessertImage: item.DessertImage,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Discount:     item.Discount,
		})
	}
	if r.TransactionID != nil {
		order.PaymentTransaction = &domain.PaymentTransaction{
			TransactionID:   *r.TransactionID,
			Gateway:         r.Gateway,
			TransactionDate: r.TransactionDate,
			Amount:          r.PaidAmount,
			ReferenceNumber: r.ReferenceNumber,
			Content:         r.TransferContent,
			Description:     r.TransferDescription,
			SubAccount:      r.SubAccount,
		}
	}
	return order
}

func toDomainSlice(records []orderRecord) []*domain.Order {
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders
}
