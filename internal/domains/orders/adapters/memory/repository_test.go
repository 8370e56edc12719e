package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/domain"
	"github.com/Apurer/dessert-delivery-api/internal/domains/orders/ports"
)

func newOrder(id string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:              id,
		OwnerID:         "owner-1",
		Items:           []domain.Item{{DessertID: "d-1", Quantity: 1, Price: decimal.NewFromInt(150000)}},
		FinalAmount:     decimal.NewFromInt(150000),
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentUnpaid,
		DeliveryAddress: domain.DeliveryAddress{FullAddress: "1 Le Loi", Phone: "0901"},
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func seed(t *testing.T, repo *Repository, orders ...*domain.Order) {
	t.Helper()
	for _, o := range orders {
		_, err := repo.Create(context.Background(), o)
		require.NoError(t, err)
	}
}

func TestCreate_RejectsDuplicate(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1-a", time.Now()))
	_, err := repo.Create(context.Background(), newOrder("DH-1-a", time.Now()))
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestFindByIDPrefix_IgnoresCase(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1699401234567-x7k2p9qa1", time.Now()))

	found, err := repo.FindByIDPrefix(context.Background(), "dh-1699401234567")
	require.NoError(t, err)
	require.Equal(t, "DH-1699401234567-x7k2p9qa1", found.ID)

	_, err = repo.FindByIDPrefix(context.Background(), "DH-17")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindByLooseIDPrefix_IgnoresHyphens(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1699401234567-x7k2p9qa1", time.Now()))

	found, err := repo.FindByLooseIDPrefix(context.Background(), "DH1699401234567X7K2")
	require.NoError(t, err)
	require.Equal(t, "DH-1699401234567-x7k2p9qa1", found.ID)

	_, err = repo.FindByLooseIDPrefix(context.Background(), "")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindByLooseIDPrefix_IsAnchoredAtStart(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1699401234567-x7k2p9qa1", time.Now()))

	for _, prefix := range []string{"DH40123", "1699401234567", "DHx7k2p9qa1"} {
		_, err := repo.FindByLooseIDPrefix(context.Background(), prefix)
		require.ErrorIs(t, err, ports.ErrNotFound, prefix)
	}
}

func TestListRecent_NewestFirst(t *testing.T) {
	repo := NewRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		seed(t, repo, newOrder("DH-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute)))
	}
	recent, err := repo.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	require.Equal(t, "DH-g", recent[0].ID)
	require.Equal(t, "DH-c", recent[4].ID)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	repo := NewRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seed(t, repo, newOrder("DH-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute)))
	}
	other := newOrder("DH-z", base)
	other.OwnerID = "owner-2"
	seed(t, repo, other)

	page, total, err := repo.List(context.Background(), ports.ListFilter{OwnerID: "owner-1", Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, "DH-c", page[0].ID)

	all, total, err := repo.List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(6), total)
	require.Len(t, all, 6)
}

func TestMarkPaid_ConditionalWrite(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1", time.Now()))

	paid, err := repo.MarkPaid(context.Background(), "DH-1", domain.PaymentTransaction{TransactionID: "t1"}, time.Now())
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	require.Equal(t, domain.StatusConfirmed, paid.Status)

	_, err = repo.MarkPaid(context.Background(), "DH-1", domain.PaymentTransaction{TransactionID: "t2"}, time.Now())
	require.ErrorIs(t, err, ports.ErrAlreadyPaid)

	stored, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)
	require.Equal(t, "t1", stored.PaymentTransaction.TransactionID)

	_, err = repo.MarkPaid(context.Background(), "DH-missing", domain.PaymentTransaction{TransactionID: "t3"}, time.Now())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestMarkPaid_ConcurrentCallersHaveOneWinner(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1", time.Now()))

	var wins, losses int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.MarkPaid(context.Background(), "DH-1", domain.PaymentTransaction{TransactionID: "t"}, time.Now())
			if err == nil {
				atomic.AddInt32(&wins, 1)
				return
			}
			require.ErrorIs(t, err, ports.ErrAlreadyPaid)
			atomic.AddInt32(&losses, 1)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins)
	require.Equal(t, int32(31), losses)
}

func TestGetByID_ReturnsClone(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1", time.Now()))
	got, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)
	got.Status = domain.StatusDelivered
	again, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, again.Status)
}

func TestUpdate_RejectsStaleStatus(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1", time.Now()))
	stale, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)

	_, err = repo.MarkPaid(context.Background(), "DH-1", domain.PaymentTransaction{TransactionID: "t1"}, time.Now())
	require.NoError(t, err)

	require.NoError(t, stale.Cancel(time.Now()))
	_, err = repo.Update(context.Background(), stale, domain.StatusPending)
	require.ErrorIs(t, err, ports.ErrStaleStatus)

	stored, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusConfirmed, stored.Status)

	_, err = repo.Update(context.Background(), newOrder("DH-missing", time.Now()), domain.StatusPending)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdate_DoesNotOverwritePayment(t *testing.T) {
	repo := NewRepository()
	seed(t, repo, newOrder("DH-1", time.Now()))
	_, err := repo.MarkPaid(context.Background(), "DH-1", domain.PaymentTransaction{TransactionID: "t1"}, time.Now())
	require.NoError(t, err)

	fresh, err := repo.GetByID(context.Background(), "DH-1")
	require.NoError(t, err)
	fresh.PaymentStatus = domain.PaymentUnpaid
	fresh.PaymentTransaction = nil
	require.NoError(t, fresh.UpdateStatus(domain.StatusPreparing, time.Now()))
	saved, err := repo.Update(context.Background(), fresh, domain.StatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPreparing, saved.Status)
	require.Equal(t, domain.PaymentPaid, saved.PaymentStatus)
	require.NotNil(t, saved.PaymentTransaction)
}
