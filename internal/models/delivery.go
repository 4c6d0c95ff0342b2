package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type DeliveryType string

const (
	DeliveryStandard  DeliveryType = "STANDARD"
	DeliveryExpress   DeliveryType = "EXPRESS"
	DeliverySameDay   DeliveryType = "SAME_DAY"
	DeliveryForEvent  DeliveryType = "EVENT"
	DeliveryScheduled DeliveryType = "SCHEDULED"
)

type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "PENDING"
	DeliveryStatusSchedule DeliveryStatus = "SCHEDULED"
	DeliveryOutForDelivery DeliveryStatus = "OUT_FOR_DELIVERY"
	DeliveryDelivered      DeliveryStatus = "DELIVERED"
	DeliveryFailed         DeliveryStatus = "FAILED"
	DeliveryReturned       DeliveryStatus = "RETURNED"
	DeliveryCancelled      DeliveryStatus = "CANCELLED"
)

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryStatusSchedule, DeliveryOutForDelivery,
		DeliveryDelivered, DeliveryFailed, DeliveryReturned, DeliveryCancelled:
		return true
	}
	return false
}

// CanTransitionTo currently allows any transition between valid statuses.
// Kept as the single place where delivery status policy lives.
func (s DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	return next.Valid()
}

type Delivery struct {
	bun.BaseModel `bun:"table:deliveries"`

	ID              int64            `bun:"id,pk,autoincrement" json:"id"`
	TrackingNumber  string           `bun:"tracking_number,unique,notnull" json:"tracking_number"`
	OrderID         *int64           `bun:"order_id,nullzero" json:"order_id,omitempty"`
	EventID         *int64           `bun:"event_id,nullzero" json:"event_id,omitempty"`
	DeliveryType    DeliveryType     `bun:"delivery_type,notnull" json:"delivery_type"`
	ScheduledDate   time.Time        `bun:"scheduled_date,notnull" json:"scheduled_date"`
	ScheduledTime   string           `bun:"scheduled_time_slot" json:"scheduled_time_slot"`
	ActualDelivery  *time.Time       `bun:"actual_delivery_time,nullzero" json:"actual_delivery_time,omitempty"`
	Status          DeliveryStatus   `bun:"status,notnull" json:"status"`
	DriverName      string           `bun:"driver_name" json:"driver_name"`
	DriverPhone     string           `bun:"driver_phone" json:"driver_phone"`
	VehicleNumber   string           `bun:"vehicle_number" json:"vehicle_number"`
	DeliveryAddress string           `bun:"delivery_address" json:"delivery_address"`
	DeliveryCity    string           `bun:"delivery_city" json:"delivery_city"`
	DeliveryState   string           `bun:"delivery_state" json:"delivery_state"`
	DeliveryZipCode string           `bun:"delivery_zip_code" json:"delivery_zip_code"`
	RecipientName   string           `bun:"recipient_name" json:"recipient_name"`
	RecipientPhone  string           `bun:"recipient_phone" json:"recipient_phone"`
	DeliveryNotes   string           `bun:"delivery_notes" json:"delivery_notes"`
	SignatureURL    string           `bun:"signature_url" json:"signature_url"`
	PhotoProofURL   string           `bun:"photo_proof_url" json:"photo_proof_url"`
	GPSLatitude     *decimal.Decimal `bun:"gps_latitude,nullzero" json:"gps_latitude,omitempty"`
	GPSLongitude    *decimal.Decimal `bun:"gps_longitude,nullzero" json:"gps_longitude,omitempty"`
	CreatedAt       time.Time        `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time        `bun:"updated_at,nullzero" json:"updated_at"`
}

type DeliveryRequest struct {
	OrderID         *int64       `json:"orderId,omitempty"`
	EventID         *int64       `json:"eventId,omitempty"`
	DeliveryType    DeliveryType `json:"deliveryType"`
	ScheduledDate   time.Time    `json:"scheduledDate"`
	ScheduledTime   string       `json:"scheduledTimeSlot"`
	DeliveryAddress string       `json:"deliveryAddress"`
	DeliveryCity    string       `json:"deliveryCity"`
	DeliveryState   string       `json:"deliveryState"`
	DeliveryZipCode string       `json:"deliveryZipCode"`
	RecipientName   string       `json:"recipientName"`
	RecipientPhone  string       `json:"recipientPhone"`
	DeliveryNotes   string       `json:"deliveryNotes"`
}

type ProofOfDeliveryRequest struct {
	SignatureURL  string           `json:"signatureUrl"`
	PhotoProofURL string           `json:"photoProofUrl"`
	GPSLatitude   *decimal.Decimal `json:"gpsLatitude,omitempty"`
	GPSLongitude  *decimal.Decimal `json:"gpsLongitude,omitempty"`
}
