package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type EventType string

const (
	EventWedding     EventType = "WEDDING"
	EventBirthday    EventType = "BIRTHDAY"
	EventAnniversary EventType = "ANNIVERSARY"
	EventCorporate   EventType = "CORPORATE"
	EventFuneral     EventType = "FUNERAL"
	EventBabyShower  EventType = "BABY_SHOWER"
	EventGraduation  EventType = "GRADUATION"
	EventEngagement  EventType = "ENGAGEMENT"
	EventOther       EventType = "OTHER"
)

func (t EventType) Valid() bool {
	switch t {
	case EventWedding, EventBirthday, EventAnniversary, EventCorporate,
		EventFuneral, EventBabyShower, EventGraduation, EventEngagement, EventOther:
		return true
	}
	return false
}

type EventStatus string

const (
	EventPending    EventStatus = "PENDING"
	EventApproved   EventStatus = "APPROVED"
	EventRejected   EventStatus = "REJECTED"
	EventConfirmed  EventStatus = "CONFIRMED"
	EventInProgress EventStatus = "IN_PROGRESS"
	EventCompleted  EventStatus = "COMPLETED"
	EventCancelled  EventStatus = "CANCELLED"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventPending, EventApproved, EventRejected, EventConfirmed,
		EventInProgress, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// CanTransitionTo allows any transition between valid statuses; approve and
// reject are deliberately re-runnable from any state.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return next.Valid()
}

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID                  int64           `bun:"id,pk,autoincrement" json:"id"`
	EventNumber         string          `bun:"event_number,unique,notnull" json:"event_number"`
	UserID              int64           `bun:"user_id,notnull" json:"user_id"`
	EventType           EventType       `bun:"event_type,notnull" json:"event_type"`
	EventDate           time.Time       `bun:"event_date,notnull" json:"event_date"`
	EventTime           string          `bun:"event_time" json:"event_time"`
	VenueName           string          `bun:"venue_name" json:"venue_name"`
	VenueAddress        string          `bun:"venue_address" json:"venue_address"`
	VenueCity           string          `bun:"venue_city" json:"venue_city"`
	VenueState          string          `bun:"venue_state" json:"venue_state"`
	VenueZipCode        string          `bun:"venue_zip_code" json:"venue_zip_code"`
	GuestCount          int             `bun:"guest_count" json:"guest_count"`
	Budget              decimal.Decimal `bun:"budget,notnull,default:0" json:"budget"`
	SpecialInstructions string          `bun:"special_instructions" json:"special_instructions"`
	Status              EventStatus     `bun:"status,notnull" json:"status"`
	TotalAmount         decimal.Decimal `bun:"total_amount,notnull,default:0" json:"total_amount"`
	ContactPerson       string          `bun:"contact_person" json:"contact_person"`
	ContactPhone        string          `bun:"contact_phone" json:"contact_phone"`
	ContactEmail        string          `bun:"contact_email" json:"contact_email"`
	RejectionReason     string          `bun:"rejection_reason" json:"rejection_reason"`
	AdminNotes          string          `bun:"admin_notes" json:"admin_notes"`
	ApprovedByID        *int64          `bun:"approved_by_id,nullzero" json:"approved_by_id,omitempty"`
	ApprovedAt          *time.Time      `bun:"approved_at,nullzero" json:"approved_at,omitempty"`
	CreatedAt           time.Time       `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time       `bun:"updated_at,nullzero" json:"updated_at"`

	Items []*EventItem `bun:"rel:has-many,join:id=event_id" json:"items"`
}

// EventItem carries a price snapshot exactly like OrderItem does.
type EventItem struct {
	bun.BaseModel `bun:"table:event_items"`

	ID                 int64           `bun:"id,pk,autoincrement" json:"id"`
	EventID            int64           `bun:"event_id,notnull" json:"event_id"`
	ProductID          int64           `bun:"product_id,notnull" json:"product_id"`
	Quantity           int             `bun:"quantity,notnull" json:"quantity"`
	Price              decimal.Decimal `bun:"price,notnull" json:"price"`
	CustomizationNotes string          `bun:"customization_notes" json:"customization_notes"`
	PlacementLocation  string          `bun:"placement_location" json:"placement_location"`
}

type EventItemRequest struct {
	ProductID          int64  `json:"productId"`
	Quantity           int    `json:"quantity"`
	CustomizationNotes string `json:"customizationNotes"`
	PlacementLocation  string `json:"placementLocation"`
}

type EventRequest struct {
	EventType           EventType          `json:"eventType"`
	EventDate           time.Time          `json:"eventDate"`
	EventTime           string             `json:"eventTime"`
	VenueName           string             `json:"venueName"`
	VenueAddress        string             `json:"venueAddress"`
	VenueCity           string             `json:"venueCity"`
	VenueState          string             `json:"venueState"`
	VenueZipCode        string             `json:"venueZipCode"`
	GuestCount          int                `json:"guestCount"`
	Budget              decimal.Decimal    `json:"budget"`
	SpecialInstructions string             `json:"specialInstructions"`
	ContactPerson       string             `json:"contactPerson"`
	ContactPhone        string             `json:"contactPhone"`
	ContactEmail        string             `json:"contactEmail"`
	Items               []EventItemRequest `json:"items"`
}

type RejectionRequest struct {
	RejectionReason string `json:"rejectionReason"`
	AdminNotes      string `json:"adminNotes"`
}

type ApprovalRequest struct {
	AdminNotes string `json:"adminNotes"`
}
