package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flora-commerce/internal/errs"
	eventdb "flora-commerce/internal/event/db"
	"flora-commerce/internal/idgen"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const TopicEventDecided = "flora.event.decided"

type DBLayer interface {
	GetEventByID(id int64) (*models.Event, error)
	GetEventByNumber(eventNumber string) (*models.Event, error)
	ListEventsByUser(userID int64) ([]models.Event, error)
	ListEventsByStatus(status models.EventStatus) ([]models.Event, error)
	ListAllEvents() ([]models.Event, error)
	UpdateEvent(event *models.Event) error
	DeleteEvent(id int64) error
}

type ProductStore interface {
	GetProduct(id int64) (*models.Product, error)
}

type UserStore interface {
	GetUser(id int64) (*models.User, error)
}

type KafkaPublisher interface {
	Publish(topic string, key string, value []byte) error
}

type EventService struct {
	Bun      *bun.DB
	DB       DBLayer
	Products ProductStore
	Users    UserStore
	Seq      idgen.Sequencer
	Kafka    KafkaPublisher
	Logger   *logger.Logger
}

func NewEventService(bunDB *bun.DB, db DBLayer, products ProductStore, users UserStore,
	seq idgen.Sequencer, kafka KafkaPublisher, log *logger.Logger) *EventService {
	return &EventService{
		Bun:      bunDB,
		DB:       db,
		Products: products,
		Users:    users,
		Seq:      seq,
		Kafka:    kafka,
		Logger:   log,
	}
}

// Create books an event in PENDING. Item prices are snapshotted from the
// catalog at booking time, same rule as order items. The insert is retried
// once with a fresh event number if the first number collides.
func (s *EventService) Create(userID int64, req models.EventRequest) (*models.Event, error) {
	if _, err := s.Users.GetUser(userID); err != nil {
		return nil, err
	}

	event := &models.Event{
		UserID:              userID,
		EventType:           req.EventType,
		EventDate:           req.EventDate,
		EventTime:           req.EventTime,
		VenueName:           req.VenueName,
		VenueAddress:        req.VenueAddress,
		VenueCity:           req.VenueCity,
		VenueState:          req.VenueState,
		VenueZipCode:        req.VenueZipCode,
		GuestCount:          req.GuestCount,
		Budget:              req.Budget,
		SpecialInstructions: req.SpecialInstructions,
		Status:              models.EventPending,
		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		ContactEmail:        req.ContactEmail,
		CreatedAt:           time.Now(),
	}

	total := decimal.Zero
	for _, line := range req.Items {
		product, err := s.Products.GetProduct(line.ProductID)
		if err != nil {
			return nil, err
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("product %d: quantity must be positive", line.ProductID)
		}

		event.Items = append(event.Items, &models.EventItem{
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			Price:              product.Price,
			CustomizationNotes: line.CustomizationNotes,
			PlacementLocation:  line.PlacementLocation,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	event.TotalAmount = total

	if err := s.insertWithRetry(event); err != nil {
		return nil, err
	}

	s.Logger.LogEvent("CREATED", event.EventNumber, fmt.Sprintf("user=%d type=%s date=%s",
		userID, event.EventType, event.EventDate.Format("2006-01-02")))

	return event, nil
}

// insertWithRetry assigns an event number and inserts. The number is unique
// within a day by construction, so a collision means the sequence was reset
// under us; one retry with a fresh number is enough.
func (s *EventService) insertWithRetry(event *models.Event) error {
	for attempt := 0; attempt < 2; attempt++ {
		number, err := idgen.EventNumber(s.Seq)
		if err != nil {
			return err
		}
		event.EventNumber = number

		err = s.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
			return eventdb.InsertEvent(tx, event)
		})
		if err == nil {
			return nil
		}
		if !eventdb.IsDuplicate(err) || attempt == 1 {
			return fmt.Errorf("failed to persist event: %w", err)
		}
		event.ID = 0
	}
	return nil
}

// Approve marks a pending booking APPROVED and stamps who decided and when.
func (s *EventService) Approve(id int64, adminID int64, req models.ApprovalRequest) (*models.Event, error) {
	admin, err := s.Users.GetUser(adminID)
	if err != nil {
		return nil, err
	}

	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if !event.Status.CanTransitionTo(models.EventApproved) {
		return nil, fmt.Errorf("event %s: transition %s -> %s: %w",
			event.EventNumber, event.Status, models.EventApproved, errs.ErrConflict)
	}

	now := time.Now()
	event.Status = models.EventApproved
	event.AdminNotes = req.AdminNotes
	event.RejectionReason = ""
	event.ApprovedByID = &admin.ID
	event.ApprovedAt = &now
	event.UpdatedAt = now

	if err := s.DB.UpdateEvent(event); err != nil {
		return nil, err
	}

	s.Logger.LogEvent("APPROVED", event.EventNumber, fmt.Sprintf("by=%s", admin.DisplayName()))
	s.publishDecision(event)

	return event, nil
}

// Reject marks a booking REJECTED with a reason. The rejection reason is
// required; admin notes are optional.
func (s *EventService) Reject(id int64, adminID int64, req models.RejectionRequest) (*models.Event, error) {
	if req.RejectionReason == "" {
		return nil, fmt.Errorf("rejection reason is required")
	}

	admin, err := s.Users.GetUser(adminID)
	if err != nil {
		return nil, err
	}

	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if !event.Status.CanTransitionTo(models.EventRejected) {
		return nil, fmt.Errorf("event %s: transition %s -> %s: %w",
			event.EventNumber, event.Status, models.EventRejected, errs.ErrConflict)
	}

	event.Status = models.EventRejected
	event.RejectionReason = req.RejectionReason
	event.AdminNotes = req.AdminNotes
	event.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(event); err != nil {
		return nil, err
	}

	s.Logger.LogEvent("REJECTED", event.EventNumber, fmt.Sprintf("by=%s reason=%s",
		admin.DisplayName(), req.RejectionReason))
	s.publishDecision(event)

	return event, nil
}

// UpdateStatus routes the remaining lifecycle moves (CONFIRMED, IN_PROGRESS,
// COMPLETED, CANCELLED) through the transition policy.
func (s *EventService) UpdateStatus(id int64, status models.EventStatus) (*models.Event, error) {
	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return nil, err
	}

	if !event.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("event %s: transition %s -> %s: %w",
			event.EventNumber, event.Status, status, errs.ErrConflict)
	}

	event.Status = status
	event.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(event); err != nil {
		return nil, err
	}

	s.Logger.LogEvent("STATUS", event.EventNumber, string(status))
	return event, nil
}

// Delete removes a booking. Customers can only delete their own bookings;
// admins can delete any.
func (s *EventService) Delete(id int64, userID int64, admin bool) error {
	event, err := s.DB.GetEventByID(id)
	if err != nil {
		return err
	}

	if !admin && event.UserID != userID {
		return fmt.Errorf("event %d: %w", id, errs.ErrUnauthorized)
	}

	if err := s.DB.DeleteEvent(id); err != nil {
		return err
	}

	s.Logger.LogEvent("DELETED", event.EventNumber, fmt.Sprintf("user=%d", userID))
	return nil
}

func (s *EventService) GetEvent(id int64) (*models.Event, error) {
	return s.DB.GetEventByID(id)
}

func (s *EventService) GetEventByNumber(eventNumber string) (*models.Event, error) {
	return s.DB.GetEventByNumber(eventNumber)
}

func (s *EventService) GetUserEvents(userID int64) ([]models.Event, error) {
	return s.DB.ListEventsByUser(userID)
}

func (s *EventService) GetEventsByStatus(status models.EventStatus) ([]models.Event, error) {
	return s.DB.ListEventsByStatus(status)
}

// GetPendingEvents is the admin approval queue.
func (s *EventService) GetPendingEvents() ([]models.Event, error) {
	return s.DB.ListEventsByStatus(models.EventPending)
}

func (s *EventService) GetAllEvents() ([]models.Event, error) {
	return s.DB.ListAllEvents()
}

func (s *EventService) publishDecision(event *models.Event) {
	if s.Kafka == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to marshal event %s: %v", event.EventNumber, err))
		return
	}

	if err := s.Kafka.Publish(TopicEventDecided, event.EventNumber, payload); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s for event %s: %v", TopicEventDecided, event.EventNumber, err))
		return
	}

	s.Logger.LogKafka("PUBLISH", TopicEventDecided, event.EventNumber)
}
