package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusCompleted, StatusCancelled, true},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatusOnConfirm(t *testing.T) {
	assert.Equal(t, PaymentAwaiting, PaymentCOD.PaymentStatusOnConfirm())
	assert.Equal(t, PaymentPaid, PaymentBankTransfer.PaymentStatusOnConfirm())
}

func TestDeliveryNextIsStrictlyForward(t *testing.T) {
	next, ok := DeliveryUnset.Next()
	require.True(t, ok)
	assert.Equal(t, DeliveryPickedUp, next)

	next, ok = DeliveryPickedUp.Next()
	require.True(t, ok)
	assert.Equal(t, DeliveryInTransit, next)

	next, ok = DeliveryInTransit.Next()
	require.True(t, ok)
	assert.Equal(t, DeliveryDelivered, next)

	_, ok = DeliveryDelivered.Next()
	assert.False(t, ok)
}

func TestParseAcceptsCodesAndLabels(t *testing.T) {
	s, err := ParseOrderStatus("Đang xử lý")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	s, err = ParseOrderStatus("COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	m, err := ParsePaymentMethod("Chuyển khoản")
	require.NoError(t, err)
	assert.Equal(t, PaymentBankTransfer, m)

	m, err = ParsePaymentMethod("COD")
	require.NoError(t, err)
	assert.Equal(t, PaymentCOD, m)

	p, err := ParsePaymentStatus("Đã hoàn tiền")
	require.NoError(t, err)
	assert.Equal(t, PaymentRefunded, p)

	d, err := ParseDeliveryStatus("")
	require.NoError(t, err)
	assert.Equal(t, DeliveryUnset, d)

	_, err = ParseOrderStatus("Đã giao")
	assert.Error(t, err)
}

func TestOrderJSONDecodesLabels(t *testing.T) {
	body := `{"orderNumber":"ORD-1001","customer":"Nguyen Van A","totalAmount":500000,
		"status":"Đang xử lý","paymentMethod":"Chuyển khoản","paymentStatus":"Chờ thanh toán"}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentBankTransfer, o.PaymentMethod)
	assert.Equal(t, PaymentAwaiting, o.PaymentStatus)
	assert.Equal(t, "Đang xử lý", o.Status.Label())

	var unknown Order
	require.NoError(t, json.Unmarshal([]byte(`{"status":"shipped","deliveryStatus":"lost"}`), &unknown))
	assert.Equal(t, OrderStatus("shipped"), unknown.Status)
	assert.False(t, unknown.Status.Valid())
	assert.False(t, unknown.DeliveryStatus.Valid())

	assert.Error(t, json.Unmarshal([]byte(`{"status":3}`), &unknown))
}

func TestOrderJSONCarriesLabels(t *testing.T) {
	o := Order{
		OrderNumber:    "ORD-1001",
		Status:         StatusCompleted,
		PaymentStatus:  PaymentPaid,
		PaymentMethod:  PaymentBankTransfer,
		DeliveryStatus: DeliveryInTransit,
	}
	o.ID = uuid.New()

	raw, err := json.Marshal([]*Order{&o})
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, o.ID.String(), out[0]["id"])
	assert.Equal(t, "completed", out[0]["status"])
	assert.Equal(t, "Đã hoàn thành", out[0]["statusLabel"])
	assert.Equal(t, "Đã thanh toán", out[0]["paymentStatusLabel"])
	assert.Equal(t, "Chuyển khoản", out[0]["paymentMethodLabel"])
	assert.Equal(t, "Đang giao", out[0]["deliveryStatusLabel"])

	var back Order
	require.NoError(t, json.Unmarshal(raw[1:len(raw)-1], &back))
	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, DeliveryInTransit, back.DeliveryStatus)
}

func TestOrderAvailability(t *testing.T) {
	courier := uuid.New()
	o := Order{Status: StatusCompleted}
	assert.True(t, o.Available())

	o.ShipperID = &courier
	assert.False(t, o.Available())
	assert.True(t, o.AssignedTo(courier))
	assert.False(t, o.AssignedTo(uuid.New()))

	o = Order{Status: StatusPending}
	assert.False(t, o.Available())
}

func TestUserPassword(t *testing.T) {
	u := User{Email: "shipper@example.vn"}
	require.NoError(t, u.SetPassword("matkhau123"))
	assert.True(t, u.CheckPassword("matkhau123"))
	assert.False(t, u.CheckPassword("sai"))
	assert.True(t, RoleShipper.Valid())
	assert.False(t, Role("root").Valid())
}
