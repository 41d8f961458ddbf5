package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoicer/internal/billing"
	"invoicer/internal/core"
	"invoicer/internal/log"
)

var (
	// ErrBillNotFound is returned when an update or delete names an unknown bill.
	ErrBillNotFound = errors.New("bill not found")
	// ErrInvalidBill wraps every form validation failure.
	ErrInvalidBill = errors.New("invalid bill")
)

// EventPublisher receives an event after every committed mutation.
type EventPublisher interface {
	PublishBillEvent(ctx context.Context, ev core.BillEvent) error
}

type (
	CorporateItem struct {
		ServiceDate string      `json:"serviceDate"`
		PackageType string      `json:"packageType"`
		Quantity    int64       `json:"quantity"`
		UnitPrice   core.Amount `json:"unitPrice"`
	}

	// CorporateForm is the input for a corporate bill.
	CorporateForm struct {
		ClientName    string          `json:"clientName"`
		ContactPerson string          `json:"contactPerson"`
		ContactNumber string          `json:"contactNumber"`
		Date          string          `json:"date"`
		Items         []CorporateItem `json:"items"`
	}

	EventItem struct {
		PackageName string      `json:"packageName"`
		PackageType string      `json:"packageType"`
		Description string      `json:"description"`
		Quantity    int64       `json:"quantity"`
		UnitPrice   core.Amount `json:"unitPrice"`
	}

	// EventForm is the input for an event bill.
	EventForm struct {
		EventName     string      `json:"eventName"`
		ContactPerson string      `json:"contactPerson"`
		ContactNumber string      `json:"contactNumber"`
		EventDate     string      `json:"eventDate"`
		Items         []EventItem `json:"items"`
	}
)

// BillService turns submitted forms into bills, stores them and announces
// the changes.
type BillService struct {
	store      *billing.Store
	publishers []EventPublisher
	logger     *log.Logger
	now        func() time.Time
	newID      func() string
}

type Option func(*BillService)

// WithPublisher adds a publisher. Several may be registered.
func WithPublisher(p EventPublisher) Option {
	return func(s *BillService) {
		if p != nil {
			s.publishers = append(s.publishers, p)
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(s *BillService) { s.logger = logger.WithComponent(log.ComponentBilling) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *BillService) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *BillService) { s.newID = newID }
}

func NewBillService(store *billing.Store, opts ...Option) *BillService {
	s := &BillService{
		store:  store,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentBilling),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all bills, or only those of type t when t is non-empty.
func (s *BillService) List(t core.BillType) []core.Bill {
	if t == "" {
		return s.store.List()
	}
	return s.store.FilterByType(t)
}

func (s *BillService) Find(id string) (core.Bill, error) {
	b, ok := s.store.FindByID(id)
	if !ok {
		return core.Bill{}, ErrBillNotFound
	}
	return b, nil
}

// Dashboard summarizes every stored bill.
func (s *BillService) Dashboard() core.Overview {
	return core.Summarize(s.store.List())
}

func (s *BillService) CreateCorporate(ctx context.Context, form CorporateForm) (core.Bill, error) {
	items, err := s.corporateItems(form.Items)
	if err != nil {
		return core.Bill{}, err
	}
	bill := core.Bill{
		ID:            s.newID(),
		Type:          core.Corporate,
		ClientName:    strings.TrimSpace(form.ClientName),
		ContactPerson: strings.TrimSpace(form.ContactPerson),
		ContactNumber: strings.TrimSpace(form.ContactNumber),
		Date:          strings.TrimSpace(form.Date),
		Items:         items,
	}
	return s.create(ctx, bill)
}

func (s *BillService) CreateEvent(ctx context.Context, form EventForm) (core.Bill, error) {
	items, err := s.eventItems(form.Items)
	if err != nil {
		return core.Bill{}, err
	}
	bill := core.Bill{
		ID:            s.newID(),
		Type:          core.Event,
		ClientName:    strings.TrimSpace(form.EventName),
		ContactPerson: strings.TrimSpace(form.ContactPerson),
		ContactNumber: strings.TrimSpace(form.ContactNumber),
		Date:          strings.TrimSpace(form.EventDate),
		Items:         items,
	}
	return s.create(ctx, bill)
}

// UpdateCorporate replaces the fields and items of an existing corporate
// bill. Item ids are regenerated.
func (s *BillService) UpdateCorporate(ctx context.Context, id string, form CorporateForm) (core.Bill, error) {
	existing, err := s.existing(id, core.Corporate)
	if err != nil {
		return core.Bill{}, err
	}
	items, err := s.corporateItems(form.Items)
	if err != nil {
		return core.Bill{}, err
	}
	existing.ClientName = strings.TrimSpace(form.ClientName)
	existing.ContactPerson = strings.TrimSpace(form.ContactPerson)
	existing.ContactNumber = strings.TrimSpace(form.ContactNumber)
	existing.Date = strings.TrimSpace(form.Date)
	existing.Items = items
	return s.update(ctx, existing)
}

func (s *BillService) UpdateEvent(ctx context.Context, id string, form EventForm) (core.Bill, error) {
	existing, err := s.existing(id, core.Event)
	if err != nil {
		return core.Bill{}, err
	}
	items, err := s.eventItems(form.Items)
	if err != nil {
		return core.Bill{}, err
	}
	existing.ClientName = strings.TrimSpace(form.EventName)
	existing.ContactPerson = strings.TrimSpace(form.ContactPerson)
	existing.ContactNumber = strings.TrimSpace(form.ContactNumber)
	existing.Date = strings.TrimSpace(form.EventDate)
	existing.Items = items
	return s.update(ctx, existing)
}

func (s *BillService) Delete(ctx context.Context, id string) error {
	bill, ok, err := s.store.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if !ok {
		return ErrBillNotFound
	}
	s.logger.InfoContext(ctx, "Bill deleted", log.FieldOperation, log.OpDelete, log.FieldBillID, id)
	s.publish(ctx, core.NewBillEvent(core.BillDeleted, bill, s.now()))
	return nil
}

func (s *BillService) create(ctx context.Context, bill core.Bill) (core.Bill, error) {
	bill.CreatedAt = s.now().UTC()
	bill.Recalculate()
	if err := bill.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("%w: %w", ErrInvalidBill, err)
	}
	if err := s.store.Add(ctx, bill); err != nil {
		return core.Bill{}, fmt.Errorf("save bill: %w", err)
	}
	s.logBill(ctx, "Bill created", log.OpCreate, bill)
	s.publish(ctx, core.NewBillEvent(core.BillCreated, bill, s.now()))
	return bill, nil
}

func (s *BillService) update(ctx context.Context, bill core.Bill) (core.Bill, error) {
	bill.Recalculate()
	if err := bill.Validate(); err != nil {
		return core.Bill{}, fmt.Errorf("%w: %w", ErrInvalidBill, err)
	}
	if err := s.store.Update(ctx, bill); err != nil {
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	stored, ok := s.store.FindByID(bill.ID)
	if !ok {
		return core.Bill{}, ErrBillNotFound
	}
	s.logBill(ctx, "Bill updated", log.OpUpdate, stored)
	s.publish(ctx, core.NewBillEvent(core.BillUpdated, stored, s.now()))
	return stored, nil
}

// existing looks up id and checks it is a bill of type t; a bill of the
// other type is reported as not found.
func (s *BillService) existing(id string, t core.BillType) (core.Bill, error) {
	bill, ok := s.store.FindByID(id)
	if !ok || bill.Type != t {
		return core.Bill{}, ErrBillNotFound
	}
	return bill, nil
}

func (s *BillService) corporateItems(in []CorporateItem) ([]core.LineItem, error) {
	items := make([]core.LineItem, 0, len(in))
	for i, it := range in {
		date := strings.TrimSpace(it.ServiceDate)
		if _, err := time.Parse(core.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: item %d: service %w", ErrInvalidBill, i+1, core.ErrInvalidDate)
		}
		pkg, err := packageType(i, it.PackageType)
		if err != nil {
			return nil, err
		}
		items = append(items, core.LineItem{
			ID:          s.newID(),
			Description: "Service on " + date,
			ServiceDate: date,
			PackageType: pkg,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items, nil
}

func (s *BillService) eventItems(in []EventItem) ([]core.LineItem, error) {
	items := make([]core.LineItem, 0, len(in))
	for i, it := range in {
		pkg, err := packageType(i, it.PackageType)
		if err != nil {
			return nil, err
		}
		items = append(items, core.LineItem{
			ID:          s.newID(),
			Description: strings.TrimSpace(it.Description),
			PackageName: strings.TrimSpace(it.PackageName),
			PackageType: pkg,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items, nil
}

// packageType resolves a row's tier to its catalogue name; blank means the
// default tier.
func packageType(i int, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return core.DefaultPackage, nil
	}
	p, ok := core.LookupPackage(name)
	if !ok {
		return "", fmt.Errorf("%w: item %d: %w %q", ErrInvalidBill, i+1, core.ErrUnknownPackage, name)
	}
	return p.Name, nil
}

func (s *BillService) publish(ctx context.Context, ev core.BillEvent) {
	for _, p := range s.publishers {
		if err := p.PublishBillEvent(ctx, ev); err != nil {
			// the change is already committed
			s.logger.ErrorContext(ctx, "Failed to publish bill event",
				log.FieldOperation, log.OpPublish,
				log.FieldBillID, ev.BillID,
				log.FieldError, err)
		}
	}
}

func (s *BillService) logBill(ctx context.Context, msg, op string, b core.Bill) {
	fields := log.NewFields().
		WithOperation(op).
		WithBill(b.ID, b.Type.String(), b.ClientName, len(b.Items), int64(b.GrandTotal))
	s.logger.InfoContext(ctx, msg, fields.ToSlice()...)
}
