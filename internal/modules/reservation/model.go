// README: Reservation aggregate, status definitions and the per-action state machine.
package reservation

import (
	"slices"
	"time"

	"transfers/internal/types"
)

type Status string

const (
	StatusNone           Status = "none"
	StatusQuoteRequested Status = "quote_requested"
	StatusPending        Status = "pending"
	StatusQuoteSent      Status = "quote_sent"
	StatusQuoteAccepted  Status = "quote_accepted"
	StatusConfirmed      Status = "confirmed"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusQuoteRequested, StatusPending, StatusQuoteSent, StatusQuoteAccepted,
		StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID            types.ID
	ClientID      types.ID
	ServiceID     types.ID
	VehicleTypeID types.ID
	Date          string
	Time          string
	Pickup        string
	Destination   *string
	Passengers    int
	BabySeats     int
	BoosterSeats  int
	MeetAndGreet  bool
	SubData       map[string]any
	TotalPrice    types.Money
	Status        Status
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (r *Reservation) DestinationOrEmpty() string {
	if r == nil || r.Destination == nil {
		return ""
	}
	return *r.Destination
}

type Event struct {
	ID            int64
	ReservationID types.ID
	FromStatus    Status
	ToStatus      Status
	Action        Action
	ActorType     string
	ActorID       *string
	CreatedAt     time.Time
}

type Action string

const (
	ActionCreate       Action = "create"
	ActionSendQuote    Action = "send_quote"
	ActionAcceptQuote  Action = "accept_quote"
	ActionDeclineQuote Action = "decline_quote"
	ActionConfirm      Action = "confirm"
	ActionComplete     Action = "complete"
	ActionCancel       Action = "cancel"
)

const (
	ActorAdmin  = "admin"
	ActorClient = "client"
)

// Transition is one edge of the reservation flow. The same status pair can be
// legal for one action and not another (a client decline moves quote_sent to
// cancelled, an admin cancel cannot), so edges are keyed by action.
type Transition struct {
	Actor string
	From  []Status
	To    Status
}

var Transitions = map[Action]Transition{
	ActionSendQuote:    {Actor: ActorAdmin, From: []Status{StatusQuoteRequested}, To: StatusQuoteSent},
	ActionAcceptQuote:  {Actor: ActorClient, From: []Status{StatusQuoteSent}, To: StatusQuoteAccepted},
	ActionDeclineQuote: {Actor: ActorClient, From: []Status{StatusQuoteSent}, To: StatusCancelled},
	ActionConfirm:      {Actor: ActorAdmin, From: []Status{StatusQuoteAccepted, StatusPending}, To: StatusConfirmed},
	ActionComplete:     {Actor: ActorAdmin, From: []Status{StatusConfirmed}, To: StatusCompleted},
	ActionCancel:       {Actor: ActorAdmin, From: []Status{StatusQuoteAccepted, StatusPending, StatusConfirmed}, To: StatusCancelled},
}

// CanApply returns the target status of action when it is legal from status from.
func CanApply(action Action, from Status) (Status, bool) {
	tr, ok := Transitions[action]
	if !ok || !slices.Contains(tr.From, from) {
		return "", false
	}
	return tr.To, true
}

// InitialStatus: a reservation without a price waits for a manual quote.
func InitialStatus(price types.Money) Status {
	if price.Amount <= 0 {
		return StatusQuoteRequested
	}
	return StatusPending
}

// DuplicateKey identifies one logical booking attempt.
type DuplicateKey struct {
	ClientID  types.ID
	ServiceID types.ID
	Date      string
	Time      string
	Pickup    string
}

func (r *Reservation) DuplicateKey() DuplicateKey {
	return DuplicateKey{
		ClientID:  r.ClientID,
		ServiceID: r.ServiceID,
		Date:      r.Date,
		Time:      r.Time,
		Pickup:    r.Pickup,
	}
}

type ListFilter struct {
	Status   Status
	ClientID types.ID
	Limit    int
	Offset   int
}

// Patch is a partial field update. Nil members are left unchanged.
type Patch struct {
	Date         *string
	Time         *string
	Pickup       *string
	Destination  *string
	Passengers   *int
	BabySeats    *int
	BoosterSeats *int
	MeetAndGreet *bool
	TotalPrice   *types.Money
	Notes        *string
}

func (p Patch) Empty() bool {
	return p == Patch{}
}
