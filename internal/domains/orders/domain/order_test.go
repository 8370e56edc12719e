package domain

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validOrder() *Order {
	return &Order{
		ID:      "DH-1699401234567-x7k2p9qa1",
		OwnerID: "user-1",
		Items: []Item{{
			DessertID: "d-1",
			Quantity:  2,
			Price:     decimal.NewFromInt(75000),
		}},
		FinalAmount:     decimal.NewFromInt(150000),
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		DeliveryAddress: DeliveryAddress{FullAddress: "12 Nguyen Hue, District 1", Phone: "0900000000"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validOrder().Validate())

	cases := map[string]struct {
		mutate func(o *Order)
		want   error
	}{
		"missing id":       {func(o *Order) { o.ID = " " }, ErrEmptyIdentifier},
		"missing owner":    {func(o *Order) { o.OwnerID = "" }, ErrEmptyOwner},
		"no items":         {func(o *Order) { o.Items = nil }, ErrNoItems},
		"zero quantity":    {func(o *Order) { o.Items[0].Quantity = 0 }, ErrInvalidItem},
		"zero amount":      {func(o *Order) { o.FinalAmount = decimal.Zero }, ErrInvalidAmount},
		"missing phone":    {func(o *Order) { o.DeliveryAddress.Phone = "" }, ErrMissingAddress},
		"unknown status":   {func(o *Order) { o.Status = "lost" }, ErrInvalidStatus},
		"unknown payment":  {func(o *Order) { o.PaymentStatus = "partial" }, ErrInvalidPayment},
		"negative price":   {func(o *Order) { o.Items[0].Price = decimal.NewFromInt(-1) }, ErrInvalidItem},
		"blank dessert id": {func(o *Order) { o.Items[0].DessertID = "" }, ErrInvalidItem},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			o := validOrder()
			tc.mutate(o)
			require.ErrorIs(t, o.Validate(), tc.want)
		})
	}
}

func TestMarkPaid_AdvancesPendingOnce(t *testing.T) {
	o := validOrder()
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, o.MarkPaid(PaymentTransaction{TransactionID: "92704"}, at))
	require.Equal(t, PaymentPaid, o.PaymentStatus)
	require.Equal(t, StatusConfirmed, o.Status)
	require.Equal(t, at, o.UpdatedAt)
	require.Equal(t, "92704", o.PaymentTransaction.TransactionID)

	err := o.MarkPaid(PaymentTransaction{TransactionID: "92705"}, at.Add(time.Minute))
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.Equal(t, "92704", o.PaymentTransaction.TransactionID)
	require.Equal(t, at, o.UpdatedAt)
}

func TestMarkPaid_KeepsLaterStatus(t *testing.T) {
	o := validOrder()
	o.Status = StatusCancelled
	require.NoError(t, o.MarkPaid(PaymentTransaction{TransactionID: "1"}, time.Now()))
	require.Equal(t, StatusCancelled, o.Status)
	require.Equal(t, PaymentPaid, o.PaymentStatus)
}

func TestMarkPaid_RequiresTransactionID(t *testing.T) {
	o := validOrder()
	require.ErrorIs(t, o.MarkPaid(PaymentTransaction{}, time.Now()), ErrMissingTransaction)
	require.Equal(t, PaymentUnpaid, o.PaymentStatus)
}

func TestCancel_OnlyPending(t *testing.T) {
	o := validOrder()
	require.NoError(t, o.Cancel(time.Now()))
	require.Equal(t, StatusCancelled, o.Status)
	require.ErrorIs(t, o.Cancel(time.Now()), ErrNotPending)
}

func TestUpdateDelivery(t *testing.T) {
	o := validOrder()
	err := o.UpdateDelivery(&DeliveryAddress{FullAddress: "", Phone: "1"}, "", time.Now())
	require.ErrorIs(t, err, ErrMissingAddress)

	require.NoError(t, o.UpdateDelivery(&DeliveryAddress{FullAddress: "new", Phone: "1"}, "30 min", time.Now()))
	require.Equal(t, "new", o.DeliveryAddress.FullAddress)
	require.Equal(t, "30 min", o.EstimatedDeliveryTime)

	o.Status = StatusDelivering
	require.ErrorIs(t, o.UpdateDelivery(nil, "1h", time.Now()), ErrNotPending)
}

func TestClone_IsDeep(t *testing.T) {
	o := validOrder()
	require.NoError(t, o.MarkPaid(PaymentTransaction{TransactionID: "1"}, time.Now()))
	clone := o.Clone()
	clone.Items[0].Quantity = 99
	clone.PaymentTransaction.TransactionID = "changed"
	require.Equal(t, int32(2), o.Items[0].Quantity)
	require.Equal(t, "1", o.PaymentTransaction.TransactionID)
}

func TestNewIdentifier_Format(t *testing.T) {
	now := time.UnixMilli(1699401234567)
	id, err := NewIdentifier("", now)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^DH-1699401234567-[0-9a-z]{9}$`), id)

	custom, err := NewIdentifier("ORD", now)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^ORD-1699401234567-[0-9a-z]{9}$`), custom)

	other, err := NewIdentifier("", now)
	require.NoError(t, err)
	require.NotEqual(t, id, other)
}
