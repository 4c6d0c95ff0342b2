package delivery

import (
	"encoding/json"
	"time"

	"github.com/skip2/go-qrcode"

	"flora-commerce/internal/models"
)

type trackingPayload struct {
	TrackingNumber string                `json:"tracking_number"`
	Status         models.DeliveryStatus `json:"status"`
	ScheduledDate  time.Time             `json:"scheduled_date"`
	ScheduledTime  string                `json:"scheduled_time_slot"`
}

// TrackingQR renders a scannable PNG carrying the delivery's public tracking
// details. Tracking info is not secret, so the payload is plain JSON.
func TrackingQR(d *models.Delivery) ([]byte, error) {
	payload := trackingPayload{
		TrackingNumber: d.TrackingNumber,
		Status:         d.Status,
		ScheduledDate:  d.ScheduledDate,
		ScheduledTime:  d.ScheduledTime,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
