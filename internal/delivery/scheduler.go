package delivery

import (
	"flora-commerce/internal/models"
	"flora-commerce/internal/utils"
)

// SchedulerAdapter plugs the delivery service into checkout as its
// best-effort side effect: standard next-day delivery built from the order's
// shipping details.
type SchedulerAdapter struct {
	Service  *DeliveryService
	TimeSlot string
}

func NewSchedulerAdapter(service *DeliveryService, timeSlot string) *SchedulerAdapter {
	if timeSlot == "" {
		timeSlot = "9:00 AM - 5:00 PM"
	}
	return &SchedulerAdapter{Service: service, TimeSlot: timeSlot}
}

func (a *SchedulerAdapter) ScheduleForOrder(order *models.Order, user *models.User) (string, error) {
	recipient := ""
	if user != nil {
		recipient = user.DisplayName()
	}

	req := models.DeliveryRequest{
		OrderID:         &order.ID,
		DeliveryType:    models.DeliveryStandard,
		ScheduledDate:   utils.Tomorrow(),
		ScheduledTime:   a.TimeSlot,
		DeliveryAddress: order.ShippingAddress,
		DeliveryCity:    order.ShippingCity,
		DeliveryState:   order.ShippingState,
		DeliveryZipCode: order.ShippingZipCode,
		RecipientName:   recipient,
		RecipientPhone:  order.CustomerPhone,
		DeliveryNotes:   order.Notes,
	}

	created, err := a.Service.Create(req)
	if err != nil {
		return "", err
	}
	return created.TrackingNumber, nil
}
