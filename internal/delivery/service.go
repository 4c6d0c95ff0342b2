package delivery

import (
	"encoding/json"
	"fmt"
	"time"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/idgen"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
)

type DBLayer interface {
	CreateDelivery(delivery *models.Delivery) error
	UpdateDelivery(delivery *models.Delivery) error
	GetByTracking(trackingNumber string) (*models.Delivery, error)
	ListByOrder(orderID int64) ([]models.Delivery, error)
	ListByEvent(eventID int64) ([]models.Delivery, error)
	ListByStatus(status models.DeliveryStatus) ([]models.Delivery, error)
	ListByScheduledDate(date time.Time) ([]models.Delivery, error)
	ListByScheduledDateRange(start, end time.Time) ([]models.Delivery, error)
	ListByCreatedDate(date time.Time) ([]models.Delivery, error)
	ListByUser(userID int64) ([]models.Delivery, error)
	ListAll() ([]models.Delivery, error)
	OrderExists(orderID int64) (bool, error)
	EventExists(eventID int64) (bool, error)
}

type KafkaPublisher interface {
	Publish(topic string, key string, value []byte) error
}

const TopicDeliveryRequested = "flora.delivery.requested"

type DeliveryService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Logger *logger.Logger
}

func NewDeliveryService(db DBLayer, kafka KafkaPublisher, log *logger.Logger) *DeliveryService {
	return &DeliveryService{DB: db, Kafka: kafka, Logger: log}
}

// Create builds a delivery from explicit fields. Order and event references
// are optional but validated when supplied.
func (s *DeliveryService) Create(req models.DeliveryRequest) (*models.Delivery, error) {
	if req.OrderID != nil {
		exists, err := s.DB.OrderExists(*req.OrderID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("order %d: %w", *req.OrderID, errs.ErrNotFound)
		}
	}

	if req.EventID != nil {
		exists, err := s.DB.EventExists(*req.EventID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("event %d: %w", *req.EventID, errs.ErrNotFound)
		}
	}

	deliveryType := req.DeliveryType
	if deliveryType == "" {
		deliveryType = models.DeliveryStandard
	}

	delivery := &models.Delivery{
		TrackingNumber:  idgen.TrackingNumber(),
		OrderID:         req.OrderID,
		EventID:         req.EventID,
		DeliveryType:    deliveryType,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		Status:          models.DeliveryPending,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryCity:    req.DeliveryCity,
		DeliveryState:   req.DeliveryState,
		DeliveryZipCode: req.DeliveryZipCode,
		RecipientName:   req.RecipientName,
		RecipientPhone:  req.RecipientPhone,
		DeliveryNotes:   req.DeliveryNotes,
		CreatedAt:       time.Now(),
	}

	if err := s.DB.CreateDelivery(delivery); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	s.Logger.LogDelivery("CREATED", delivery.TrackingNumber, fmt.Sprintf("type=%s scheduled=%s",
		delivery.DeliveryType, delivery.ScheduledDate.Format("2006-01-02")))
	s.publishRequested(delivery)

	return delivery, nil
}

func (s *DeliveryService) publishRequested(delivery *models.Delivery) {
	if s.Kafka == nil {
		return
	}

	payload, err := json.Marshal(delivery)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to marshal delivery %s: %v", delivery.TrackingNumber, err))
		return
	}

	if err := s.Kafka.Publish(TopicDeliveryRequested, delivery.TrackingNumber, payload); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s for delivery %s: %v", TopicDeliveryRequested, delivery.TrackingNumber, err))
		return
	}

	s.Logger.LogKafka("PUBLISH", TopicDeliveryRequested, delivery.TrackingNumber)
}

// UpdateStatus moves a delivery through its lifecycle. Entering DELIVERED
// stamps the actual delivery time; no other transition has side effects.
func (s *DeliveryService) UpdateStatus(trackingNumber string, status models.DeliveryStatus) (*models.Delivery, error) {
	delivery, err := s.DB.GetByTracking(trackingNumber)
	if err != nil {
		return nil, err
	}

	if !delivery.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("delivery %s: transition %s -> %s: %w",
			trackingNumber, delivery.Status, status, errs.ErrConflict)
	}

	delivery.Status = status
	if status == models.DeliveryDelivered {
		now := time.Now()
		delivery.ActualDelivery = &now
	}
	delivery.UpdatedAt = time.Now()

	if err := s.DB.UpdateDelivery(delivery); err != nil {
		return nil, err
	}

	s.Logger.LogDelivery("STATUS", trackingNumber, string(status))
	return delivery, nil
}

// AssignDriver sets the driver fields and forces the delivery to SCHEDULED
// regardless of its prior status.
func (s *DeliveryService) AssignDriver(trackingNumber, driverName, driverPhone, vehicleNumber string) (*models.Delivery, error) {
	delivery, err := s.DB.GetByTracking(trackingNumber)
	if err != nil {
		return nil, err
	}

	delivery.DriverName = driverName
	delivery.DriverPhone = driverPhone
	delivery.VehicleNumber = vehicleNumber
	delivery.Status = models.DeliveryStatusSchedule
	delivery.UpdatedAt = time.Now()

	if err := s.DB.UpdateDelivery(delivery); err != nil {
		return nil, err
	}

	s.Logger.LogDelivery("DRIVER_ASSIGNED", trackingNumber, driverName)
	return delivery, nil
}

// AttachProof records proof-of-delivery metadata: signature and photo URLs
// plus GPS coordinates.
func (s *DeliveryService) AttachProof(trackingNumber string, req models.ProofOfDeliveryRequest) (*models.Delivery, error) {
	delivery, err := s.DB.GetByTracking(trackingNumber)
	if err != nil {
		return nil, err
	}

	delivery.SignatureURL = req.SignatureURL
	delivery.PhotoProofURL = req.PhotoProofURL
	delivery.GPSLatitude = req.GPSLatitude
	delivery.GPSLongitude = req.GPSLongitude
	delivery.UpdatedAt = time.Now()

	if err := s.DB.UpdateDelivery(delivery); err != nil {
		return nil, err
	}

	s.Logger.LogDelivery("PROOF_ATTACHED", trackingNumber, "proof of delivery recorded")
	return delivery, nil
}

func (s *DeliveryService) GetByTracking(trackingNumber string) (*models.Delivery, error) {
	return s.DB.GetByTracking(trackingNumber)
}

func (s *DeliveryService) GetByOrder(orderID int64) ([]models.Delivery, error) {
	return s.DB.ListByOrder(orderID)
}

func (s *DeliveryService) GetByEvent(eventID int64) ([]models.Delivery, error) {
	return s.DB.ListByEvent(eventID)
}

func (s *DeliveryService) GetByStatus(status models.DeliveryStatus) ([]models.Delivery, error) {
	return s.DB.ListByStatus(status)
}

func (s *DeliveryService) GetByScheduledDate(date time.Time) ([]models.Delivery, error) {
	return s.DB.ListByScheduledDate(date)
}

func (s *DeliveryService) GetByScheduledDateRange(start, end time.Time) ([]models.Delivery, error) {
	return s.DB.ListByScheduledDateRange(start, end)
}

func (s *DeliveryService) GetByCreatedDate(date time.Time) ([]models.Delivery, error) {
	return s.DB.ListByCreatedDate(date)
}

func (s *DeliveryService) GetByUser(userID int64) ([]models.Delivery, error) {
	return s.DB.ListByUser(userID)
}

func (s *DeliveryService) GetAll() ([]models.Delivery, error) {
	return s.DB.ListAll()
}
