package delivery_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"flora-commerce/internal/delivery"
	deliverydb "flora-commerce/internal/delivery/db"
	"flora-commerce/internal/errs"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	"flora-commerce/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(topic string, key string, value []byte) error {
	f.published = append(f.published, topic)
	return nil
}

func setupService(t *testing.T) (*delivery.DeliveryService, *bun.DB, *fakePublisher) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = bunDB.Close() })

	err = bunDB.ResetModel(context.Background(),
		(*models.User)(nil), (*models.Order)(nil), (*models.Event)(nil), (*models.Delivery)(nil))
	require.NoError(t, err)

	log := logger.NewLogger()
	t.Cleanup(log.Close)

	publisher := &fakePublisher{}
	service := delivery.NewDeliveryService(&deliverydb.DB{Bun: bunDB}, publisher, log)
	return service, bunDB, publisher
}

func seedOrder(t *testing.T, bunDB *bun.DB, userID int64) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:   "ORD-1756600000000-TESTABCD",
		UserID:        userID,
		TotalAmount:   decimal.NewFromFloat(25.00),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}
	_, err := bunDB.NewInsert().Model(order).Exec(context.Background())
	require.NoError(t, err)
	return order
}

func TestCreateDelivery(t *testing.T) {
	service, bunDB, publisher := setupService(t)
	order := seedOrder(t, bunDB, 42)

	created, err := service.Create(models.DeliveryRequest{
		OrderID:         &order.ID,
		ScheduledDate:   utils.Tomorrow(),
		ScheduledTime:   "9:00 AM - 5:00 PM",
		DeliveryAddress: "12 Petal Lane",
		RecipientName:   "Daisy Fields",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.TrackingNumber)
	assert.Equal(t, models.DeliveryPending, created.Status)
	assert.Equal(t, models.DeliveryStandard, created.DeliveryType)
	assert.Contains(t, publisher.published, delivery.TopicDeliveryRequested)
}

func TestCreateDeliveryUnknownOrder(t *testing.T) {
	service, _, publisher := setupService(t)

	missing := int64(9999)
	_, err := service.Create(models.DeliveryRequest{OrderID: &missing, ScheduledDate: utils.Tomorrow()})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Empty(t, publisher.published)
}

func TestUpdateStatusStampsDeliveredTime(t *testing.T) {
	service, bunDB, _ := setupService(t)
	order := seedOrder(t, bunDB, 42)

	created, err := service.Create(models.DeliveryRequest{OrderID: &order.ID, ScheduledDate: utils.Tomorrow()})
	require.NoError(t, err)
	require.Nil(t, created.ActualDelivery)

	updated, err := service.UpdateStatus(created.TrackingNumber, models.DeliveryOutForDelivery)
	require.NoError(t, err)
	assert.Nil(t, updated.ActualDelivery)

	delivered, err := service.UpdateStatus(created.TrackingNumber, models.DeliveryDelivered)
	require.NoError(t, err)
	require.NotNil(t, delivered.ActualDelivery)
	assert.WithinDuration(t, time.Now(), *delivered.ActualDelivery, 5*time.Second)
}

func TestUpdateStatusUnknownTracking(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.UpdateStatus("TRK-00000000-000000", models.DeliveryDelivered)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAssignDriverForcesScheduled(t *testing.T) {
	service, bunDB, _ := setupService(t)
	order := seedOrder(t, bunDB, 42)

	created, err := service.Create(models.DeliveryRequest{OrderID: &order.ID, ScheduledDate: utils.Tomorrow()})
	require.NoError(t, err)

	assigned, err := service.AssignDriver(created.TrackingNumber, "Pat Rivera", "555-0101", "VAN-12")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusSchedule, assigned.Status)
	assert.Equal(t, "Pat Rivera", assigned.DriverName)

	reloaded, err := service.GetByTracking(created.TrackingNumber)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryStatusSchedule, reloaded.Status)
}

func TestAttachProof(t *testing.T) {
	service, bunDB, _ := setupService(t)
	order := seedOrder(t, bunDB, 42)

	created, err := service.Create(models.DeliveryRequest{OrderID: &order.ID, ScheduledDate: utils.Tomorrow()})
	require.NoError(t, err)

	lat := decimal.NewFromFloat(40.7128000)
	lng := decimal.NewFromFloat(-74.0060000)
	updated, err := service.AttachProof(created.TrackingNumber, models.ProofOfDeliveryRequest{
		SignatureURL:  "https://proof.example/sig.png",
		PhotoProofURL: "https://proof.example/photo.jpg",
		GPSLatitude:   &lat,
		GPSLongitude:  &lng,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://proof.example/sig.png", updated.SignatureURL)
	require.NotNil(t, updated.GPSLatitude)
	assert.True(t, updated.GPSLatitude.Equal(lat))
}

func TestListByUserJoinsThroughOrders(t *testing.T) {
	service, bunDB, _ := setupService(t)
	mine := seedOrder(t, bunDB, 42)

	other := &models.Order{
		OrderNumber:   "ORD-1756600000001-OTHERXYZ",
		UserID:        77,
		TotalAmount:   decimal.NewFromFloat(10.00),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPaid,
	}
	_, err := bunDB.NewInsert().Model(other).Exec(context.Background())
	require.NoError(t, err)

	_, err = service.Create(models.DeliveryRequest{OrderID: &mine.ID, ScheduledDate: utils.Tomorrow()})
	require.NoError(t, err)
	_, err = service.Create(models.DeliveryRequest{OrderID: &other.ID, ScheduledDate: utils.Tomorrow()})
	require.NoError(t, err)

	deliveries, err := service.GetByUser(42)
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, mine.ID, *deliveries[0].OrderID)
}

func TestListByScheduledDateRange(t *testing.T) {
	service, bunDB, _ := setupService(t)
	order := seedOrder(t, bunDB, 42)

	near := utils.Tomorrow()
	far := near.AddDate(0, 0, 10)

	_, err := service.Create(models.DeliveryRequest{OrderID: &order.ID, ScheduledDate: near})
	require.NoError(t, err)
	_, err = service.Create(models.DeliveryRequest{OrderID: &order.ID, ScheduledDate: far})
	require.NoError(t, err)

	inRange, err := service.GetByScheduledDateRange(near.AddDate(0, 0, -1), near.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, inRange, 1)

	all, err := service.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
