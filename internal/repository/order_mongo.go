package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/shopops/internal/models"
)

// OrdersCollection is the collection name used by MongoOrderRepository.
const OrdersCollection = "orders"

// MongoOrderRepository stores orders as documents with embedded line items.
type MongoOrderRepository struct {
	col *mongo.Collection
}

// NewMongoOrderRepository constructs MongoOrderRepository on db.orders.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(OrdersCollection)}
}

type orderItemDocument struct {
	ID          string  `bson:"id"`
	ProductID   string  `bson:"productId,omitempty"`
	ProductName string  `bson:"productName"`
	SKU         string  `bson:"sku,omitempty"`
	Quantity    int     `bson:"quantity"`
	UnitPrice   float64 `bson:"unitPrice"`
	LineTotal   float64 `bson:"lineTotal"`
}

type orderDocument struct {
	ID              string              `bson:"_id"`
	OrderNumber     string              `bson:"orderNumber"`
	CustomerID      string              `bson:"customerId,omitempty"`
	CustomerName    string              `bson:"customer"`
	CustomerPhone   string              `bson:"customerPhone,omitempty"`
	CustomerEmail   string              `bson:"customerEmail,omitempty"`
	ShippingAddress string              `bson:"shippingAddress"`
	OrderDate       time.Time           `bson:"date"`
	TotalAmount     float64             `bson:"totalAmount"`
	Status          string              `bson:"status"`
	PaymentStatus   string              `bson:"paymentStatus"`
	PaymentMethod   string              `bson:"paymentMethod"`
	DeliveryStatus  string              `bson:"deliveryStatus"`
	ShipperID       *string             `bson:"shipperId"`
	AcceptedAt      *time.Time          `bson:"acceptedAt"`
	PickedUpAt      *time.Time          `bson:"pickedUpAt"`
	InTransitAt     *time.Time          `bson:"inTransitAt"`
	DeliveredAt     *time.Time          `bson:"deliveredAt"`
	CancelledAt     *time.Time          `bson:"cancelledAt"`
	Notes           string              `bson:"notes,omitempty"`
	Version         int64               `bson:"version"`
	Items           []orderItemDocument `bson:"items"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.AssignIDs()
	if order.Version == 0 {
		order.Version = 1
	}
	now := time.Now()
	order.CreatedAt, order.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, toOrderDocument(order)); err != nil {
		return translateMongoError(err)
	}
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return fromOrderDocument(&doc), nil
}

func (r *MongoOrderRepository) OrderNumberTaken(ctx context.Context, orderNumber string, exclude uuid.UUID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"orderNumber": orderNumber,
		"_id":         bson.M{"$ne": exclude.String()},
	})
	return count > 0, err
}

func (r *MongoOrderRepository) List(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	orders, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) ListQueue(ctx context.Context, queue Queue, courierID uuid.UUID) ([]models.Order, error) {
	filter, sort, err := queueFilter(queue, courierID)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter, options.Find().SetSort(sort))
}

func (r *MongoOrderRepository) Update(ctx context.Context, order *models.Order, expectedVersion int64) error {
	next := expectedVersion + 1
	doc := toOrderDocument(order)

	set := bson.M{
		"orderNumber":     doc.OrderNumber,
		"customerId":      doc.CustomerID,
		"customer":        doc.CustomerName,
		"customerPhone":   doc.CustomerPhone,
		"customerEmail":   doc.CustomerEmail,
		"shippingAddress": doc.ShippingAddress,
		"date":            doc.OrderDate,
		"totalAmount":     doc.TotalAmount,
		"status":          doc.Status,
		"paymentStatus":   doc.PaymentStatus,
		"deliveryStatus":  doc.DeliveryStatus,
		"shipperId":       doc.ShipperID,
		"acceptedAt":      doc.AcceptedAt,
		"pickedUpAt":      doc.PickedUpAt,
		"inTransitAt":     doc.InTransitAt,
		"deliveredAt":     doc.DeliveredAt,
		"cancelledAt":     doc.CancelledAt,
		"notes":           doc.Notes,
		"version":         next,
		"updatedAt":       time.Now(),
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": doc.ID, "version": expectedVersion},
		bson.M{"$set": set},
	)
	if err != nil {
		return translateMongoError(err)
	}

	if res.MatchedCount == 0 {
		count, err := r.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}

	order.Version = next
	return nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoOrderRepository) Summarize(ctx context.Context, since time.Time) (*OrderSummary, error) {
	summary := newOrderSummary()
	match := bson.D{{Key: "$match", Value: bson.M{"date": bson.M{"$gte": since}}}}

	type groupRow struct {
		Key    string  `bson:"_id"`
		Count  int64   `bson:"count"`
		Amount float64 `bson:"amount"`
	}

	aggregate := func(field string) ([]groupRow, error) {
		pipeline := mongo.Pipeline{
			match,
			{{Key: "$group", Value: bson.M{
				"_id":    "$" + field,
				"count":  bson.M{"$sum": 1},
				"amount": bson.M{"$sum": "$totalAmount"},
			}}},
		}
		cursor, err := r.col.Aggregate(ctx, pipeline)
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var rows []groupRow
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	byStatus, err := aggregate("status")
	if err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		status := models.OrderStatus(row.Key)
		summary.ByStatus[status] = row.Count
		summary.TotalOrders += row.Count
		if status != models.StatusCancelled {
			summary.Revenue += row.Amount
		}
	}

	byPayment, err := aggregate("paymentStatus")
	if err != nil {
		return nil, err
	}
	for _, row := range byPayment {
		summary.ByPaymentStatus[models.PaymentStatus(row.Key)] = row.Count
	}

	summary.Delivered, err = r.col.CountDocuments(ctx, bson.M{
		"date":           bson.M{"$gte": since},
		"deliveryStatus": string(models.DeliveryDelivered),
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// EnsureIndexes creates the unique orderNumber index and the queue indexes.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetName("order_number_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "shipperId", Value: 1}, {Key: "deliveryStatus", Value: 1}},
			Options: options.Index().SetName("order_shipper_delivery"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("order_status_date"),
		},
	})
	return err
}

func (r *MongoOrderRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.Order, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		orders = append(orders, *fromOrderDocument(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// queueFilter builds the filter and sort for a courier queue. The three
// filters are mutually exclusive on (shipperId, deliveryStatus).
func queueFilter(queue Queue, courierID uuid.UUID) (bson.M, bson.D, error) {
	switch queue {
	case QueueAvailable:
		return bson.M{
			"status":         string(models.StatusCompleted),
			"shipperId":      nil,
			"deliveryStatus": bson.M{"$in": bson.A{string(models.DeliveryUnset), nil}},
		}, bson.D{{Key: "date", Value: 1}}, nil
	case QueueAssigned:
		return bson.M{
			"shipperId":      courierID.String(),
			"status":         bson.M{"$ne": string(models.StatusCancelled)},
			"deliveryStatus": bson.M{"$ne": string(models.DeliveryDelivered)},
		}, bson.D{{Key: "acceptedAt", Value: 1}}, nil
	case QueueDelivered:
		return bson.M{
			"shipperId":      courierID.String(),
			"deliveryStatus": string(models.DeliveryDelivered),
		}, bson.D{{Key: "deliveredAt", Value: -1}}, nil
	}
	return nil, nil, fmt.Errorf("unknown queue %d", queue)
}

func toOrderDocument(o *models.Order) *orderDocument {
	doc := &orderDocument{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerEmail:   o.CustomerEmail,
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		DeliveryStatus:  string(o.DeliveryStatus),
		AcceptedAt:      o.AcceptedAt,
		PickedUpAt:      o.PickedUpAt,
		InTransitAt:     o.InTransitAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		Notes:           o.Notes,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           make([]orderItemDocument, 0, len(o.Items)),
	}
	if o.CustomerID != nil {
		doc.CustomerID = o.CustomerID.String()
	}
	if o.ShipperID != nil {
		s := o.ShipperID.String()
		doc.ShipperID = &s
	}
	for _, it := range o.Items {
		item := orderItemDocument{
			ID:          it.ID.String(),
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		}
		if it.ProductID != nil {
			item.ProductID = it.ProductID.String()
		}
		doc.Items = append(doc.Items, item)
	}
	return doc
}

func fromOrderDocument(doc *orderDocument) *models.Order {
	o := &models.Order{
		OrderNumber:     doc.OrderNumber,
		CustomerName:    doc.CustomerName,
		CustomerPhone:   doc.CustomerPhone,
		CustomerEmail:   doc.CustomerEmail,
		ShippingAddress: doc.ShippingAddress,
		OrderDate:       doc.OrderDate,
		TotalAmount:     doc.TotalAmount,
		Status:          models.OrderStatus(doc.Status),
		PaymentStatus:   models.PaymentStatus(doc.PaymentStatus),
		PaymentMethod:   models.PaymentMethod(doc.PaymentMethod),
		DeliveryStatus:  models.DeliveryStatus(doc.DeliveryStatus),
		AcceptedAt:      doc.AcceptedAt,
		PickedUpAt:      doc.PickedUpAt,
		InTransitAt:     doc.InTransitAt,
		DeliveredAt:     doc.DeliveredAt,
		CancelledAt:     doc.CancelledAt,
		Notes:           doc.Notes,
		Version:         doc.Version,
	}
	o.ID = parseUUID(doc.ID)
	o.CreatedAt = doc.CreatedAt
	o.UpdatedAt = doc.UpdatedAt
	if doc.CustomerID != "" {
		id := parseUUID(doc.CustomerID)
		o.CustomerID = &id
	}
	if doc.ShipperID != nil {
		id := parseUUID(*doc.ShipperID)
		o.ShipperID = &id
	}
	for _, it := range doc.Items {
		item := models.OrderItem{
			OrderID:     o.ID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal,
		}
		item.ID = parseUUID(it.ID)
		if it.ProductID != "" {
			id := parseUUID(it.ProductID)
			item.ProductID = &id
		}
		o.Items = append(o.Items, item)
	}
	return o
}

func parseUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func translateMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
