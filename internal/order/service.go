package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flora-commerce/internal/errs"
	"flora-commerce/internal/idgen"
	"flora-commerce/internal/inventory"
	"flora-commerce/internal/logger"
	"flora-commerce/internal/models"
	orderdb "flora-commerce/internal/order/db"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const (
	TopicOrderCreated   = "flora.order.created"
	TopicOrderCancelled = "flora.order.cancelled"
)

type DBLayer interface {
	GetOrderByID(id int64) (*models.Order, error)
	GetOrderByNumber(orderNumber string) (*models.Order, error)
	ListOrdersByUser(userID int64) ([]models.Order, error)
	ListAllOrders() ([]models.Order, error)
	UpdateOrderStatus(id int64, status models.OrderStatus) error
}

type UserStore interface {
	GetUser(id int64) (*models.User, error)
}

type KafkaPublisher interface {
	Publish(topic string, key string, value []byte) error
}

// DeliveryScheduler is the best-effort side effect of checkout. Failures are
// recorded on the dead-letter log, never returned to the checkout caller.
type DeliveryScheduler interface {
	ScheduleForOrder(order *models.Order, user *models.User) (string, error)
}

type OrderService struct {
	Bun         *bun.DB
	DB          DBLayer
	Users       UserStore
	Kafka       KafkaPublisher
	Scheduler   DeliveryScheduler
	DeadLetters DeadLetterRecorder
	Logger      *logger.Logger
}

func NewOrderService(bunDB *bun.DB, db DBLayer, users UserStore, kafka KafkaPublisher,
	scheduler DeliveryScheduler, deadLetters DeadLetterRecorder, log *logger.Logger) *OrderService {
	return &OrderService{
		Bun:         bunDB,
		DB:          db,
		Users:       users,
		Kafka:       kafka,
		Scheduler:   scheduler,
		DeadLetters: deadLetters,
		Logger:      log,
	}
}

// Checkout converts the user's cart into an immutable order. Everything up to
// and including the cart clear runs in one transaction: a failed reservation
// on any line rolls back reservations already applied to earlier lines, so a
// failed checkout leaves inventory untouched. Delivery scheduling happens
// after commit and must never fail the checkout.
func (s *OrderService) Checkout(userID int64, req models.OrderRequest) (*models.Order, error) {
	user, err := s.Users.GetUser(userID)
	if err != nil {
		return nil, err
	}

	var order *models.Order

	err = s.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		cart, err := orderdb.LoadCartWithItems(tx, userID)
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return errs.ErrEmptyCart
		}

		order = &models.Order{
			OrderNumber:     idgen.OrderNumber(),
			UserID:          userID,
			Status:          models.OrderPending,
			PaymentStatus:   models.PaymentStatusForMethod(req.PaymentMethod),
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: req.ShippingAddress,
			ShippingCity:    req.ShippingCity,
			ShippingState:   req.ShippingState,
			ShippingZipCode: req.ShippingZipCode,
			ShippingCountry: req.ShippingCountry,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			Notes:           req.Notes,
			CreatedAt:       time.Now(),
		}

		total := decimal.Zero
		for _, line := range cart.Items {
			if _, err := inventory.Reserve(tx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, errs.ErrInsufficientStock) && line.Product != nil {
					return fmt.Errorf("insufficient stock for product: %s: %w",
						line.Product.Name, errs.ErrInsufficientStock)
				}
				return err
			}

			price := decimal.Zero
			if line.Product != nil {
				price = line.Product.Price
			}
			subtotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))

			order.Items = append(order.Items, &models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}
		order.TotalAmount = total

		if err := orderdb.InsertOrder(tx, order); err != nil {
			return fmt.Errorf("failed to persist order: %w", err)
		}

		return orderdb.ClearCartItems(tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogOrder("CREATED", order.OrderNumber, fmt.Sprintf("user=%d total=%s payment=%s",
		userID, order.TotalAmount, order.PaymentStatus))

	s.publish(TopicOrderCreated, order)
	s.scheduleDelivery(order, user)

	return order, nil
}

// scheduleDelivery is the designated "recovered locally" failure path:
// errors land on the dead-letter log and are otherwise swallowed.
func (s *OrderService) scheduleDelivery(order *models.Order, user *models.User) {
	if s.Scheduler == nil {
		return
	}

	tracking, err := s.Scheduler.ScheduleForOrder(order, user)
	if err != nil {
		if s.DeadLetters != nil {
			s.DeadLetters.Record(DeadLetterEntry{
				OrderNumber: order.OrderNumber,
				Reason:      err.Error(),
				OccurredAt:  time.Now(),
			})
		}
		return
	}

	s.Logger.LogOrder("DELIVERY_SCHEDULED", order.OrderNumber, fmt.Sprintf("tracking=%s", tracking))
}

func (s *OrderService) GetOrder(id int64) (*models.Order, error) {
	return s.DB.GetOrderByID(id)
}

func (s *OrderService) GetOrderByNumber(orderNumber string) (*models.Order, error) {
	return s.DB.GetOrderByNumber(orderNumber)
}

func (s *OrderService) GetUserOrders(userID int64) ([]models.Order, error) {
	return s.DB.ListOrdersByUser(userID)
}

func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.DB.ListAllOrders()
}

// UpdateStatus routes every order status change through the transition policy.
func (s *OrderService) UpdateStatus(id int64, status models.OrderStatus) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("order %s: transition %s -> %s: %w",
			order.OrderNumber, order.Status, status, errs.ErrConflict)
	}

	if err := s.DB.UpdateOrderStatus(id, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// CancelOrder cancels a non-terminal order and returns its reserved stock to
// the ledger. Cancellation and release happen in one transaction.
func (s *OrderService) CancelOrder(id int64, userID int64, admin bool) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, err
	}

	if !admin && order.UserID != userID {
		return nil, fmt.Errorf("order %d: %w", id, errs.ErrUnauthorized)
	}

	if order.Status.Terminal() {
		return nil, fmt.Errorf("order %s is already %s: %w", order.OrderNumber, order.Status, errs.ErrConflict)
	}

	err = s.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range order.Items {
			if _, err := inventory.Release(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		_, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderCancelled).
			Set("updated_at = current_timestamp").
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderCancelled
	s.Logger.LogOrder("CANCELLED", order.OrderNumber, fmt.Sprintf("user=%d stock released", userID))
	s.publish(TopicOrderCancelled, order)

	return order, nil
}

func (s *OrderService) publish(topic string, order *models.Order) {
	if s.Kafka == nil {
		return
	}

	payload, err := json.Marshal(order)
	if err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("failed to marshal order %s: %v", order.OrderNumber, err))
		return
	}

	if err := s.Kafka.Publish(topic, order.OrderNumber, payload); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s for order %s: %v", topic, order.OrderNumber, err))
		return
	}

	s.Logger.LogKafka("PUBLISH", topic, order.OrderNumber)
}
