package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/shopops/internal/database"
	"github.com/example/shopops/internal/models"
	"github.com/example/shopops/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Connect(database.DriverSQLite, dsn, logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newOrder(number string, status models.OrderStatus) *models.Order {
	return &models.Order{
		OrderNumber:     number,
		CustomerName:    "Nguyen Van A",
		ShippingAddress: "12 Tran Hung Dao, Ha Noi",
		OrderDate:       time.Now(),
		TotalAmount:     500000,
		Status:          status,
		PaymentStatus:   models.PaymentAwaiting,
		PaymentMethod:   models.PaymentCOD,
		Items: []models.OrderItem{
			{ProductName: "Ao dai", Quantity: 1, UnitPrice: 500000, LineTotal: 500000},
		},
	}
}

func TestGormCreateRejectsDuplicateOrderNumber(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	first := newOrder("ORD-1001", models.StatusPending)
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	err := repo.Create(ctx, newOrder("ORD-1001", models.StatusPending))
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van A", stored.CustomerName)
	assert.Len(t, stored.Items, 1)
}

func TestGormOrderNumberTakenExcludesSelf(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	o := newOrder("ORD-2001", models.StatusPending)
	require.NoError(t, repo.Create(ctx, o))

	taken, err := repo.OrderNumberTaken(ctx, "ORD-2001", o.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.OrderNumberTaken(ctx, "ORD-2001", uuid.New())
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestGormUpdateIsCompareAndSwap(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	o := newOrder("ORD-3001", models.StatusPending)
	require.NoError(t, repo.Create(ctx, o))

	a, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	b, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	a.Status = models.StatusCompleted
	require.NoError(t, repo.Update(ctx, a, a.Version))
	assert.Equal(t, int64(2), a.Version)

	b.Status = models.StatusCancelled
	err = repo.Update(ctx, b, b.Version)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	missing := newOrder("ORD-3002", models.StatusPending)
	missing.ID = uuid.New()
	assert.ErrorIs(t, repo.Update(ctx, missing, 1), repository.ErrNotFound)
}

func TestGormQueuesAreDisjoint(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()
	courier := uuid.New()
	other := uuid.New()

	pending := newOrder("ORD-4001", models.StatusPending)
	open := newOrder("ORD-4002", models.StatusCompleted)
	mine := newOrder("ORD-4003", models.StatusCompleted)
	theirs := newOrder("ORD-4004", models.StatusCompleted)
	done := newOrder("ORD-4005", models.StatusCompleted)
	for _, o := range []*models.Order{pending, open, mine, theirs, done} {
		require.NoError(t, repo.Create(ctx, o))
	}

	now := time.Now()
	mine.ShipperID, mine.AcceptedAt = &courier, &now
	require.NoError(t, repo.Update(ctx, mine, mine.Version))
	theirs.ShipperID, theirs.AcceptedAt = &other, &now
	require.NoError(t, repo.Update(ctx, theirs, theirs.Version))
	done.ShipperID, done.DeliveryStatus, done.DeliveredAt = &courier, models.DeliveryDelivered, &now
	require.NoError(t, repo.Update(ctx, done, done.Version))

	ids := func(q repository.Queue) []string {
		orders, err := repo.ListQueue(ctx, q, courier)
		require.NoError(t, err)
		out := make([]string, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.OrderNumber)
		}
		return out
	}

	assert.Equal(t, []string{"ORD-4002"}, ids(repository.QueueAvailable))
	assert.Equal(t, []string{"ORD-4003"}, ids(repository.QueueAssigned))
	assert.Equal(t, []string{"ORD-4005"}, ids(repository.QueueDelivered))
}

func TestGormListPaginates(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		o := newOrder(fmt.Sprintf("ORD-5%03d", i), models.StatusPending)
		o.OrderDate = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, o))
	}

	page, total, err := repo.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, page, 2)
	assert.Equal(t, "ORD-5001", page[0].OrderNumber)
	assert.Equal(t, "ORD-5000", page[1].OrderNumber)
}

func TestGormDeleteAndDeleteAll(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	a := newOrder("ORD-6001", models.StatusPending)
	b := newOrder("ORD-6002", models.StatusPending)
	c := newOrder("ORD-6003", models.StatusPending)
	for _, o := range []*models.Order{a, b, c} {
		require.NoError(t, repo.Create(ctx, o))
	}

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), repository.ErrNotFound)

	_, err := repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestGormSummarize(t *testing.T) {
	repo := repository.NewGormOrderRepository(newTestDB(t))
	ctx := context.Background()

	paid := newOrder("ORD-7001", models.StatusCompleted)
	paid.PaymentStatus = models.PaymentPaid
	paid.DeliveryStatus = models.DeliveryDelivered
	cancelled := newOrder("ORD-7002", models.StatusCancelled)
	cancelled.TotalAmount = 200000
	old := newOrder("ORD-7003", models.StatusPending)
	old.OrderDate = time.Now().AddDate(-2, 0, 0)
	for _, o := range []*models.Order{paid, cancelled, old} {
		require.NoError(t, repo.Create(ctx, o))
	}

	summary, err := repo.Summarize(ctx, time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalOrders)
	assert.Equal(t, int64(1), summary.ByStatus[models.StatusCompleted])
	assert.Equal(t, int64(1), summary.ByStatus[models.StatusCancelled])
	assert.Equal(t, int64(1), summary.ByPaymentStatus[models.PaymentPaid])
	assert.InDelta(t, 500000, summary.Revenue, 0.001)
	assert.Equal(t, int64(1), summary.Delivered)
}

func TestGormAverageRating(t *testing.T) {
	db := newTestDB(t)
	reviews := repository.NewGormReviewRepository(db)
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	require.NoError(t, db.Create(&models.Review{OrderID: a, Rating: 5}).Error)
	require.NoError(t, db.Create(&models.Review{OrderID: b, Rating: 4}).Error)
	require.NoError(t, db.Create(&models.Review{OrderID: uuid.New(), Rating: 1}).Error)

	avg, count, err := reviews.AverageRating(ctx, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.InDelta(t, 4.5, avg, 0.001)

	avg, count, err = reviews.AverageRating(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)
}
