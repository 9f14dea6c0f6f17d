package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/shopops/internal/models"
)

func TestQueueFilterAvailable(t *testing.T) {
	filter, sort, err := queueFilter(QueueAvailable, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "completed", filter["status"])
	assert.Nil(t, filter["shipperId"])
	assert.Equal(t, bson.M{"$in": bson.A{"", nil}}, filter["deliveryStatus"])
	assert.Equal(t, bson.D{{Key: "date", Value: 1}}, sort)
}

func TestQueueFilterScopesToCourier(t *testing.T) {
	courier := uuid.New()

	assigned, _, err := queueFilter(QueueAssigned, courier)
	require.NoError(t, err)
	assert.Equal(t, courier.String(), assigned["shipperId"])
	assert.Equal(t, bson.M{"$ne": "delivered"}, assigned["deliveryStatus"])
	assert.Equal(t, bson.M{"$ne": "cancelled"}, assigned["status"])

	delivered, sort, err := queueFilter(QueueDelivered, courier)
	require.NoError(t, err)
	assert.Equal(t, courier.String(), delivered["shipperId"])
	assert.Equal(t, "delivered", delivered["deliveryStatus"])
	assert.Equal(t, bson.D{{Key: "deliveredAt", Value: -1}}, sort)

	_, _, err = queueFilter(Queue(42), courier)
	assert.Error(t, err)
}

func TestOrderDocumentRoundTrip(t *testing.T) {
	courier := uuid.New()
	product := uuid.New()
	accepted := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	o := &models.Order{
		OrderNumber:     "ORD-1001",
		CustomerName:    "Nguyen Van A",
		ShippingAddress: "Ha Noi",
		OrderDate:       accepted.Add(-time.Hour),
		TotalAmount:     500000,
		Status:          models.StatusCompleted,
		PaymentStatus:   models.PaymentAwaiting,
		PaymentMethod:   models.PaymentCOD,
		DeliveryStatus:  models.DeliveryPickedUp,
		ShipperID:       &courier,
		AcceptedAt:      &accepted,
		Version:         3,
		Items: []models.OrderItem{
			{ProductID: &product, ProductName: "Non la", Quantity: 2, UnitPrice: 250000, LineTotal: 500000},
		},
	}
	o.ID = uuid.New()
	o.Items[0].ID = uuid.New()

	doc := toOrderDocument(o)
	assert.Equal(t, o.ID.String(), doc.ID)
	require.NotNil(t, doc.ShipperID)
	assert.Equal(t, courier.String(), *doc.ShipperID)
	assert.Empty(t, doc.CustomerID)

	back := fromOrderDocument(doc)
	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, o.Status, back.Status)
	assert.Equal(t, o.DeliveryStatus, back.DeliveryStatus)
	assert.True(t, back.AssignedTo(courier))
	assert.Nil(t, back.CustomerID)
	assert.Equal(t, int64(3), back.Version)
	require.Len(t, back.Items, 1)
	assert.Equal(t, product, *back.Items[0].ProductID)
	assert.Equal(t, o.ID, back.Items[0].OrderID)
}

func TestOrderDocumentUnassigned(t *testing.T) {
	o := &models.Order{OrderNumber: "ORD-2", Status: models.StatusCompleted}
	o.ID = uuid.New()

	doc := toOrderDocument(o)
	assert.Nil(t, doc.ShipperID)
	assert.True(t, fromOrderDocument(doc).Available())
}

func TestTranslateMongoError(t *testing.T) {
	assert.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateMongoError(dup), ErrDuplicateKey)

	other := errors.New("boom")
	assert.Equal(t, other, translateMongoError(other))
}
