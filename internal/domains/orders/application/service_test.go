package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	ordermemory "github.com/Apurer/dessert-delivery-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

func fixedClock() func() time.Time {
	at := time.UnixMilli(1699401234567).UTC()
	return func() time.Time { return at }
}

func validInput() ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		OwnerID: "owner-1",
		Items: []domain.Item{{
			DessertID: "d-1", DessertName: "Flan", Quantity: 2, Price: decimal.NewFromInt(75000),
		}},
		TotalAmount:     decimal.NewFromInt(150000),
		FinalAmount:     decimal.NewFromInt(150000),
		DeliveryAddress: domain.DeliveryAddress{FullAddress: "1 Le Loi", Phone: "0901"},
	}
}

func TestPlaceOrder_GeneratesIdentifier(t *testing.T) {
	svc := NewService(ordermemory.NewRepository(), WithClock(fixedClock()))

	result, err := svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, result.Existing)
	require.Regexp(t, `^DH-1699401234567-[0-9a-z]{9}$`, result.Order.ID)
	require.Equal(t, domain.StatusPending, result.Order.Status)
	require.Equal(t, domain.PaymentUnpaid, result.Order.PaymentStatus)
	require.Equal(t, "bank_transfer", result.Order.PaymentMethod)
	require.False(t, result.Order.CreatedAt.IsZero())
}

func TestPlaceOrder_CustomPrefix(t *testing.T) {
	svc := NewService(ordermemory.NewRepository(), WithIdentifierPrefix("SWEET"), WithClock(fixedClock()))
	result, err := svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Regexp(t, `^SWEET-1699401234567-`, result.Order.ID)
}

func TestPlaceOrder_ExistingIdentifierIsReturned(t *testing.T) {
	svc := NewService(ordermemory.NewRepository(), WithClock(fixedClock()))
	input := validInput()
	input.ID = "DH-1699401234567-x7k2p9qa1"

	first, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	require.False(t, first.Existing)

	input.FinalAmount = decimal.NewFromInt(1)
	second, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	require.True(t, second.Existing)
	require.True(t, second.Order.FinalAmount.Equal(decimal.NewFromInt(150000)))
}

func TestPlaceOrder_InvalidInput(t *testing.T) {
	svc := NewService(ordermemory.NewRepository())

	input := validInput()
	input.Items = nil
	_, err := svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrNoItems)

	input = validInput()
	input.DeliveryAddress.Phone = ""
	_, err = svc.PlaceOrder(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelOrder_OnlyPending(t *testing.T) {
	svc := NewService(ordermemory.NewRepository())
	placed, err := svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = svc.CancelOrder(context.Background(), placed.Order.ID)
	require.ErrorIs(t, err, ErrConflict)

	_, err = svc.CancelOrder(context.Background(), "DH-missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdateStatus_ValidatesEnum(t *testing.T) {
	svc := NewService(ordermemory.NewRepository())
	placed, err := svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), placed.Order.ID, "teleported")
	require.ErrorIs(t, err, ErrInvalidInput)

	updated, err := svc.UpdateStatus(context.Background(), placed.Order.ID, domain.StatusPreparing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPreparing, updated.Status)
}

func TestListOrders_DefaultsAndFilters(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo)
	for i := 0; i < 3; i++ {
		_, err := svc.PlaceOrder(context.Background(), validInput())
		require.NoError(t, err)
	}
	result, err := svc.ListOrders(context.Background(), ports.ListFilter{OwnerID: "owner-1"})
	require.NoError(t, err)
	require.Equal(t, int64(3), result.Total)
	require.Equal(t, 1, result.Page)
	require.Equal(t, defaultPageSize, result.Limit)

	_, err = svc.ListOrders(context.Background(), ports.ListFilter{PaymentStatus: "sometimes"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummary_SumsPaidOrdersOnly(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo)
	first, err := svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)
	_, err = repo.MarkPaid(context.Background(), first.Order.ID, domain.PaymentTransaction{TransactionID: "1"}, time.Now())
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Equal(t, 2, summary.TotalOrders)
	require.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(150000)))
	require.Len(t, summary.ByStatus, 2)
	require.Equal(t, domain.StatusConfirmed, summary.ByStatus[0].Status)
	require.Equal(t, domain.StatusPending, summary.ByStatus[1].Status)
}

// settlingRepository settles the order right after it is read, as a webhook
// landing between read and write would.
type settlingRepository struct {
	*ordermemory.Repository
}

func (r settlingRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.Repository.MarkPaid(ctx, id, domain.PaymentTransaction{TransactionID: "92704"}, time.Now()); err != nil {
		return nil, err
	}
	return order, nil
}

func TestCancelOrder_PaymentBetweenReadAndWriteIsAConflict(t *testing.T) {
	repo := ordermemory.NewRepository()
	placed, err := NewService(repo).PlaceOrder(context.Background(), validInput())
	require.NoError(t, err)

	_, err = NewService(settlingRepository{repo}).CancelOrder(context.Background(), placed.Order.ID)
	require.ErrorIs(t, err, ErrConflict)

	stored, err := repo.GetByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, stored.Status)
	require.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
}
