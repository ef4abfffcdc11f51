// README: Reservation service implements creation with duplicate suppression and the status flow.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"transfers/internal/logger"
	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/modules/pricing"
	"transfers/internal/outbox"
	"transfers/internal/types"
)

var (
	ErrNotFound            = errors.New("reservation not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrPriceLocked         = errors.New("price can only be edited while a quote is requested")
	ErrForbidden           = errors.New("reservation belongs to another client")
	ErrBadRequest          = errors.New("bad request")
)

type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	Get(ctx context.Context, id types.ID) (*Reservation, error)
	FindDuplicate(ctx context.Context, k DuplicateKey) (*Reservation, error)
	UpdateStatus(ctx context.Context, id types.ID, to Status) (*Reservation, error)
	UpdateFields(ctx context.Context, id types.ID, p Patch) (*Reservation, error)
	List(ctx context.Context, f ListFilter) ([]Reservation, error)
	AppendEvent(ctx context.Context, e *Event) error
	Events(ctx context.Context, id types.ID) ([]Event, error)
}

type Catalog interface {
	GetService(ctx context.Context, id types.ID) (*catalog.TransferService, error)
	GetVehicleType(ctx context.Context, id types.ID) (*catalog.VehicleType, error)
	GetLocation(ctx context.Context, id types.ID) (*catalog.Location, error)
	Fields(ctx context.Context, serviceID types.ID) (catalog.Schema, error)
}

type Clients interface {
	Upsert(ctx context.Context, cmd client.UpsertCommand) (*client.Client, error)
	Get(ctx context.Context, id types.ID) (*client.Client, error)
	GetByEmail(ctx context.Context, email string) (*client.Client, error)
}

type Pricer interface {
	Resolve(ctx context.Context, q pricing.Query) (types.Money, bool, error)
}

// Enqueuer receives notification tasks once a write has committed.
type Enqueuer interface {
	Enqueue(ctx context.Context, t outbox.Task) error
}

type Options struct {
	NotifyClientOnSubmit bool
	Currency             string
}

type Service struct {
	store   Repository
	catalog Catalog
	clients Clients
	pricing Pricer
	queue   Enqueuer
	log     logger.Logger
	opts    Options
	now     func() time.Time
}

func NewService(store Repository, cat Catalog, clients Clients, pricer Pricer, queue Enqueuer, log logger.Logger, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = types.DefaultCurrency
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:   store,
		catalog: cat,
		clients: clients,
		pricing: pricer,
		queue:   queue,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// Caller identifies who triggers a client-side action. An empty Email skips
// the ownership check (e.g. an admin acting on the client's behalf).
type Caller struct {
	UID   string
	Email string
}

type CreateCommand struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         string
	ServiceID     types.ID
	VehicleTypeID types.ID
	Date          string
	Time          string
	Pickup        string
	Destination   string
	Passengers    int
	BabySeats     int
	BoosterSeats  int
	MeetAndGreet  bool
	SubData       map[string]any
	Notes         string
}

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// canonical reparses v with layout and formats it back, so "8:30" and
// "08:30" end up as the same stored value.
func canonical(layout, v string) (string, bool) {
	t, err := time.Parse(layout, strings.TrimSpace(v))
	if err != nil {
		return "", false
	}
	return t.Format(layout), true
}

// validate checks the command and rewrites Date and Time in canonical form.
func (c *CreateCommand) validate() error {
	if _, err := client.NormalizeEmail(c.Email); err != nil {
		return badRequest("invalid email")
	}
	if types.NormalizeID(string(c.ServiceID)) == "" || types.NormalizeID(string(c.VehicleTypeID)) == "" {
		return badRequest("service and vehicle type are required")
	}
	date, ok := canonical(dateLayout, c.Date)
	if !ok {
		return badRequest("date must be YYYY-MM-DD")
	}
	clock, ok := canonical(timeLayout, c.Time)
	if !ok {
		return badRequest("time must be HH:MM")
	}
	c.Date, c.Time = date, clock
	if c.Passengers <= 0 {
		return badRequest("passengers must be positive")
	}
	if c.BabySeats < 0 || c.BoosterSeats < 0 {
		return badRequest("seat counts must not be negative")
	}
	return nil
}

// Create stores a new reservation unless the same booking attempt already
// exists, in which case the existing row is returned with created=false and
// nothing is sent.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Reservation, bool, error) {
	if err := cmd.validate(); err != nil {
		return nil, false, err
	}

	svc, vt, err := s.lookupCatalog(ctx, cmd.ServiceID, cmd.VehicleTypeID)
	if err != nil {
		return nil, false, err
	}
	if vt.Capacity > 0 && cmd.Passengers > vt.Capacity {
		return nil, false, badRequest(fmt.Sprintf("%s seats at most %d passengers", vt.Name, vt.Capacity))
	}

	schema, err := s.catalog.Fields(ctx, svc.ID)
	if err != nil {
		return nil, false, err
	}
	values, err := schema.Parse(cmd.SubData)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	pickup, destination := routeOf(schema, values, cmd.Pickup, cmd.Destination)
	if pickup == "" {
		return nil, false, badRequest("pickup location is required")
	}
	if destination == "" && schema.HasDestination() {
		return nil, false, badRequest("destination is required for this service")
	}

	cl, err := s.clients.Upsert(ctx, client.UpsertCommand{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
	})
	if err != nil {
		return nil, false, err
	}

	r := &Reservation{
		ID:            types.ID(uuid.NewString()),
		ClientID:      cl.ID,
		ServiceID:     svc.ID,
		VehicleTypeID: vt.ID,
		Date:          strings.TrimSpace(cmd.Date),
		Time:          strings.TrimSpace(cmd.Time),
		Pickup:        pickup,
		Passengers:    cmd.Passengers,
		BabySeats:     cmd.BabySeats,
		BoosterSeats:  cmd.BoosterSeats,
		MeetAndGreet:  cmd.MeetAndGreet,
		SubData:       values.Data,
		Notes:         strings.TrimSpace(cmd.Notes),
	}
	if destination != "" {
		r.Destination = &destination
	}

	dup, err := s.store.FindDuplicate(ctx, r.DuplicateKey())
	if err == nil {
		return dup, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	r.TotalPrice = types.Money{Currency: s.opts.Currency}
	if svc.HasDeterministicPricing() && destination != "" {
		price, found, err := s.pricing.Resolve(ctx, pricing.Query{
			ServiceID:     svc.ID,
			VehicleTypeID: vt.ID,
			Pickup:        pickup,
			Destination:   destination,
		})
		if err != nil {
			return nil, false, err
		}
		if found {
			r.TotalPrice = price
		}
	}
	r.Status = InitialStatus(r.TotalPrice)

	if err := s.store.Create(ctx, r); err != nil {
		return nil, false, err
	}
	s.recordEvent(ctx, r.ID, StatusNone, r.Status, ActionCreate, ActorClient, string(cl.ID))

	effect := Effects[ActionCreate]
	if !s.opts.NotifyClientOnSubmit {
		effect.ClientTemplate = ""
	}
	s.notify(ctx, r.ID, effect)
	return r, true, nil
}

// routeOf prefers the typed pickup/destination and falls back to the values
// of the flagged schema fields.
func routeOf(schema catalog.Schema, values catalog.Values, pickup, destination string) (string, string) {
	pickup = strings.TrimSpace(pickup)
	destination = strings.TrimSpace(destination)
	if f, ok := schema.Pickup(); ok && f.Type == catalog.FieldLocationSelect {
		pickup = string(types.NormalizeID(pickup))
	}
	if f, ok := schema.Destination(); ok && f.Type == catalog.FieldLocationSelect {
		destination = string(types.NormalizeID(destination))
	}
	if pickup == "" {
		pickup = values.Pickup
	}
	if destination == "" {
		destination = values.Destination
	}
	return pickup, destination
}

func (s *Service) lookupCatalog(ctx context.Context, serviceID, vehicleTypeID types.ID) (*catalog.TransferService, *catalog.VehicleType, error) {
	svc, err := s.catalog.GetService(ctx, types.NormalizeID(string(serviceID)))
	if errors.Is(err, catalog.ErrServiceNotFound) || (err == nil && !svc.Active) {
		return nil, nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	vt, err := s.catalog.GetVehicleType(ctx, types.NormalizeID(string(vehicleTypeID)))
	if errors.Is(err, catalog.ErrVehicleTypeNotFound) {
		return nil, nil, ErrVehicleTypeNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return svc, vt, nil
}

type EstimateQuery struct {
	ServiceID     types.ID
	VehicleTypeID types.ID
	Pickup        string
	Destination   string
}

type Estimate struct {
	Price types.Money
	Found bool
	// RequiresQuote is set for services that are always priced by hand.
	RequiresQuote bool
}

// EstimatePrice is the read-only price shown while the trip form is filled.
func (s *Service) EstimatePrice(ctx context.Context, q EstimateQuery) (Estimate, error) {
	svc, vt, err := s.lookupCatalog(ctx, q.ServiceID, q.VehicleTypeID)
	if err != nil {
		return Estimate{}, err
	}
	if !svc.HasDeterministicPricing() {
		return Estimate{RequiresQuote: true}, nil
	}
	price, found, err := s.pricing.Resolve(ctx, pricing.Query{
		ServiceID:     svc.ID,
		VehicleTypeID: vt.ID,
		Pickup:        q.Pickup,
		Destination:   q.Destination,
	})
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{Price: price, Found: found, RequiresQuote: !found}, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Reservation, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Reservation, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, badRequest("unknown status " + string(f.Status))
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return s.store.List(ctx, f)
}

func (s *Service) ListByClient(ctx context.Context, clientID types.ID) ([]Reservation, error) {
	if clientID == "" {
		return nil, ErrClientNotFound
	}
	return s.store.List(ctx, ListFilter{ClientID: clientID})
}

// ListForEmail lists the reservations of the client owning email. Unknown
// addresses simply have no reservations.
func (s *Service) ListForEmail(ctx context.Context, email string) ([]Reservation, error) {
	cl, err := s.clients.GetByEmail(ctx, email)
	if errors.Is(err, client.ErrNotFound) {
		return []Reservation{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.ListByClient(ctx, cl.ID)
}

func (s *Service) Events(ctx context.Context, id types.ID) ([]Event, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Events(ctx, id)
}

// SendQuote sets the manual price and moves the reservation to quote_sent.
// The status is only written once the price write succeeded.
func (s *Service) SendQuote(ctx context.Context, id types.ID, price types.Money, adminUID string) (*Reservation, error) {
	if price.Amount <= 0 {
		return nil, ErrInvalidPrice
	}
	if price.Currency == "" {
		price.Currency = s.opts.Currency
	}

	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to, ok := CanApply(ActionSendQuote, r.Status)
	if !ok {
		return nil, ErrInvalidState
	}
	if _, err := s.store.UpdateFields(ctx, r.ID, Patch{TotalPrice: &price}); err != nil {
		return nil, err
	}
	return s.commit(ctx, r, ActionSendQuote, to, ActorAdmin, adminUID)
}

func (s *Service) AcceptQuote(ctx context.Context, id types.ID, caller Caller) (*Reservation, error) {
	return s.applyAsClient(ctx, id, ActionAcceptQuote, caller)
}

func (s *Service) DeclineQuote(ctx context.Context, id types.ID, caller Caller) (*Reservation, error) {
	return s.applyAsClient(ctx, id, ActionDeclineQuote, caller)
}

// Confirm is the only action whose client email carries the PDF voucher.
func (s *Service) Confirm(ctx context.Context, id types.ID, adminUID string) (*Reservation, error) {
	return s.applyAsAdmin(ctx, id, ActionConfirm, adminUID)
}

func (s *Service) Complete(ctx context.Context, id types.ID, adminUID string) (*Reservation, error) {
	return s.applyAsAdmin(ctx, id, ActionComplete, adminUID)
}

func (s *Service) Cancel(ctx context.Context, id types.ID, adminUID string) (*Reservation, error) {
	return s.applyAsAdmin(ctx, id, ActionCancel, adminUID)
}

func (s *Service) applyAsAdmin(ctx context.Context, id types.ID, action Action, adminUID string) (*Reservation, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	to, ok := CanApply(action, r.Status)
	if !ok {
		return nil, ErrInvalidState
	}
	return s.commit(ctx, r, action, to, ActorAdmin, adminUID)
}

func (s *Service) applyAsClient(ctx context.Context, id types.ID, action Action, caller Caller) (*Reservation, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cl, err := s.clients.Get(ctx, r.ClientID)
	if errors.Is(err, client.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	if caller.Email != "" && !strings.EqualFold(strings.TrimSpace(caller.Email), cl.Email) {
		return nil, ErrForbidden
	}
	to, ok := CanApply(action, r.Status)
	if !ok {
		return nil, ErrInvalidState
	}
	actorID := caller.UID
	if actorID == "" {
		actorID = string(cl.ID)
	}
	return s.commit(ctx, r, action, to, ActorClient, actorID)
}

// commit writes the new status, then records the event and enqueues the
// notifications of action. Nothing after the status write can fail the call.
func (s *Service) commit(ctx context.Context, r *Reservation, action Action, to Status, actorType, actorID string) (*Reservation, error) {
	updated, err := s.store.UpdateStatus(ctx, r.ID, to)
	if err != nil {
		return nil, err
	}
	s.recordEvent(ctx, r.ID, r.Status, to, action, actorType, actorID)
	s.notify(ctx, r.ID, Effects[action])
	return updated, nil
}

// UpdateFields patches reservation details. The price can only change while
// a quote is requested; status is never patched here.
func (s *Service) UpdateFields(ctx context.Context, id types.ID, p Patch) (*Reservation, error) {
	if p.Empty() {
		return nil, badRequest("nothing to update")
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.TotalPrice != nil {
		if p.TotalPrice.Amount < 0 {
			return nil, ErrInvalidPrice
		}
		if p.TotalPrice.Amount != r.TotalPrice.Amount && r.Status != StatusQuoteRequested {
			return nil, ErrPriceLocked
		}
		if p.TotalPrice.Currency == "" {
			p.TotalPrice.Currency = s.opts.Currency
		}
	}
	if p.Date != nil {
		date, ok := canonical(dateLayout, *p.Date)
		if !ok {
			return nil, badRequest("date must be YYYY-MM-DD")
		}
		p.Date = &date
	}
	if p.Time != nil {
		clock, ok := canonical(timeLayout, *p.Time)
		if !ok {
			return nil, badRequest("time must be HH:MM")
		}
		p.Time = &clock
	}
	if p.Pickup != nil && strings.TrimSpace(*p.Pickup) == "" {
		return nil, badRequest("pickup location is required")
	}
	if p.Passengers != nil && *p.Passengers <= 0 {
		return nil, badRequest("passengers must be positive")
	}
	if (p.BabySeats != nil && *p.BabySeats < 0) || (p.BoosterSeats != nil && *p.BoosterSeats < 0) {
		return nil, badRequest("seat counts must not be negative")
	}
	return s.store.UpdateFields(ctx, r.ID, p)
}

func (s *Service) recordEvent(ctx context.Context, id types.ID, from, to Status, action Action, actorType, actorID string) {
	e := &Event{
		ReservationID: id,
		FromStatus:    from,
		ToStatus:      to,
		Action:        action,
		ActorType:     actorType,
		CreatedAt:     s.now(),
	}
	if actorID != "" {
		e.ActorID = &actorID
	}
	if err := s.store.AppendEvent(ctx, e); err != nil {
		s.log.Warning("reservation event not recorded",
			logger.String("reservation_id", id.String()),
			logger.String("action", string(action)),
			logger.Error(err),
		)
	}
}

// notify enqueues the messages of effect. Enqueue failures are logged only.
func (s *Service) notify(ctx context.Context, id types.ID, effect Effect) {
	var tasks []outbox.Task
	if effect.ClientTemplate != "" {
		tasks = append(tasks, s.task(id, outbox.AudienceClient, effect.ClientTemplate, effect.AttachPDF))
	}
	if effect.AdminTemplate != "" {
		tasks = append(tasks, s.task(id, outbox.AudienceAdmin, effect.AdminTemplate, false))
	}
	if s.queue == nil {
		return
	}
	for _, t := range tasks {
		if err := s.queue.Enqueue(ctx, t); err != nil {
			s.log.Error("notification not enqueued",
				logger.String("reservation_id", id.String()),
				logger.String("template", t.Template),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) task(id types.ID, audience outbox.Audience, template string, attachPDF bool) outbox.Task {
	return outbox.Task{
		ID:            uuid.NewString(),
		ReservationID: id,
		Audience:      audience,
		Template:      template,
		AttachPDF:     attachPDF,
		CreatedAt:     s.now(),
	}
}
