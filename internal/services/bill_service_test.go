package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicer/internal/billing"
	"invoicer/internal/core"
	"invoicer/internal/log"
	"invoicer/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []core.BillEvent
	err    error
}

func (p *recordingPublisher) PublishBillEvent(_ context.Context, ev core.BillEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, opts ...Option) (*BillService, *memory.Store, *recordingPublisher) {
	t.Helper()
	blob := memory.New()
	pub := &recordingPublisher{}
	store := billing.New(context.Background(), blob)
	n := 0
	base := []Option{
		WithPublisher(pub),
		WithLogger(log.New(log.Config{Output: &bytes.Buffer{}})),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%02d", n) }),
	}
	return NewBillService(store, append(base, opts...)...), blob, pub
}

func corporateForm() CorporateForm {
	return CorporateForm{
		ClientName:    "Acme Ltd",
		ContactPerson: "Rahim",
		ContactNumber: "01711111111",
		Date:          "2024-01-15",
		Items: []CorporateItem{
			{ServiceDate: "2024-01-10", PackageType: "Standard", Quantity: 2, UnitPrice: 100},
			{ServiceDate: "2024-01-11", Quantity: 1, UnitPrice: 50},
		},
	}
}

func eventForm() EventForm {
	return EventForm{
		EventName:     "Wedding",
		ContactPerson: "Karim",
		ContactNumber: "01822222222",
		EventDate:     "2024-02-20",
		Items: []EventItem{
			{PackageName: "Package-1", PackageType: "Premium", Description: "Mixed Platter", Quantity: 30, UnitPrice: 200},
		},
	}
}

func TestCreateCorporate(t *testing.T) {
	svc, blob, pub := newService(t)

	bill, err := svc.CreateCorporate(context.Background(), corporateForm())
	require.NoError(t, err)

	assert.Equal(t, "id-01", bill.ID)
	assert.Equal(t, core.Corporate, bill.Type)
	assert.Equal(t, fixedNow, bill.CreatedAt)
	assert.Equal(t, core.Amount(250), bill.GrandTotal)
	require.Len(t, bill.Items, 2)
	assert.Equal(t, "Service on 2024-01-10", bill.Items[0].Description)
	assert.Equal(t, core.Amount(200), bill.Items[0].Total)
	assert.Equal(t, core.DefaultPackage, bill.Items[1].PackageType)
	assert.NotEqual(t, bill.Items[0].ID, bill.Items[1].ID)

	assert.Equal(t, 1, blob.Writes())
	require.Len(t, pub.events, 1)
	assert.Equal(t, core.BillCreated, pub.events[0].Type)
	assert.Equal(t, core.Amount(250), pub.events[0].GrandTotal)

	stored, err := svc.Find(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill, stored)
}

func TestCreateEvent(t *testing.T) {
	svc, _, _ := newService(t)

	bill, err := svc.CreateEvent(context.Background(), eventForm())
	require.NoError(t, err)
	assert.Equal(t, core.Event, bill.Type)
	assert.Equal(t, "Wedding", bill.ClientName)
	assert.Equal(t, "2024-02-20", bill.Date)
	assert.Equal(t, core.Amount(6000), bill.GrandTotal)
	assert.Equal(t, "Mixed Platter", bill.Items[0].Description)
	assert.Equal(t, "Package-1", bill.Items[0].PackageName)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CorporateForm)
		wantErr error
	}{
		{"empty client", func(f *CorporateForm) { f.ClientName = "  " }, core.ErrEmptyClientName},
		{"empty contact person", func(f *CorporateForm) { f.ContactPerson = "" }, core.ErrEmptyContactPerson},
		{"empty contact number", func(f *CorporateForm) { f.ContactNumber = "" }, core.ErrEmptyContactNumber},
		{"bad date", func(f *CorporateForm) { f.Date = "15/01/2024" }, core.ErrInvalidDate},
		{"bad service date", func(f *CorporateForm) { f.Items[0].ServiceDate = "" }, core.ErrInvalidDate},
		{"no items", func(f *CorporateForm) { f.Items = nil }, core.ErrNoItems},
		{"zero quantity", func(f *CorporateForm) { f.Items[1].Quantity = 0 }, core.ErrInvalidQuantity},
		{"negative price", func(f *CorporateForm) { f.Items[0].UnitPrice = -1 }, core.ErrNegativeUnitPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, blob, pub := newService(t)
			form := corporateForm()
			tt.mutate(&form)

			_, err := svc.CreateCorporate(context.Background(), form)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBill)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, blob.Writes())
			assert.Empty(t, pub.events)
		})
	}
}

func TestCreateEventRequiresPackageName(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	form := eventForm()
	form.Items[0].Description = ""
	bill, err := svc.CreateEvent(ctx, form)
	require.NoError(t, err)
	assert.Empty(t, bill.Items[0].Description)

	form.Items[0].PackageName = ""
	_, err = svc.CreateEvent(ctx, form)
	assert.ErrorIs(t, err, ErrInvalidBill)
	assert.ErrorIs(t, err, core.ErrEmptyPackageName)
}

func TestCreateRejectsOverflowingTotals(t *testing.T) {
	svc, blob, pub := newService(t)
	form := eventForm()
	form.Items[0].Quantity = 2
	form.Items[0].UnitPrice = math.MaxInt64

	_, err := svc.CreateEvent(context.Background(), form)
	assert.ErrorIs(t, err, ErrInvalidBill)
	assert.ErrorIs(t, err, core.ErrAmountTooLarge)
	assert.Equal(t, 0, blob.Writes())
	assert.Empty(t, pub.events)
	assert.Empty(t, svc.List(""))
}

func TestCreateNormalizesPackageType(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	form := corporateForm()
	form.Items[0].PackageType = " economy "
	bill, err := svc.CreateCorporate(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, "Economy", bill.Items[0].PackageType)

	form.Items[0].PackageType = "Gold"
	_, err = svc.CreateCorporate(ctx, form)
	assert.ErrorIs(t, err, ErrInvalidBill)
	assert.ErrorIs(t, err, core.ErrUnknownPackage)
}

func TestUpdateCorporateKeepsIdentity(t *testing.T) {
	svc, _, pub := newService(t)
	ctx := context.Background()

	created, err := svc.CreateCorporate(ctx, corporateForm())
	require.NoError(t, err)

	later := fixedNow.Add(48 * time.Hour)
	svc.now = func() time.Time { return later }

	form := corporateForm()
	form.ClientName = "Acme Holdings"
	form.Items = form.Items[:1]
	form.Items[0].Quantity = 5

	updated, err := svc.UpdateCorporate(ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Acme Holdings", updated.ClientName)
	assert.Equal(t, core.Amount(500), updated.GrandTotal)

	require.Len(t, pub.events, 2)
	assert.Equal(t, core.BillUpdated, pub.events[1].Type)
	assert.Equal(t, later, pub.events[1].OccurredAt)
}

func TestUpdateUnknownOrWrongType(t *testing.T) {
	svc, blob, _ := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateCorporate(ctx, "missing", corporateForm())
	assert.ErrorIs(t, err, ErrBillNotFound)

	event, err := svc.CreateEvent(ctx, eventForm())
	require.NoError(t, err)
	_, err = svc.UpdateCorporate(ctx, event.ID, corporateForm())
	assert.ErrorIs(t, err, ErrBillNotFound)
	assert.Equal(t, 1, blob.Writes())

	form := eventForm()
	form.EventName = "Reception"
	updated, err := svc.UpdateEvent(ctx, event.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "Reception", updated.ClientName)
}

func TestDelete(t *testing.T) {
	svc, blob, pub := newService(t)
	ctx := context.Background()

	bill, err := svc.CreateEvent(ctx, eventForm())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, bill.ID))
	assert.Empty(t, svc.List(""))
	assert.Equal(t, 2, blob.Writes())
	require.Len(t, pub.events, 2)
	assert.Equal(t, core.BillDeleted, pub.events[1].Type)
	assert.Equal(t, core.Event, pub.events[1].BillType)

	assert.ErrorIs(t, svc.Delete(ctx, bill.ID), ErrBillNotFound)
	assert.Equal(t, 2, blob.Writes())
}

func TestConcurrentDeletePublishesOnce(t *testing.T) {
	svc, blob, pub := newService(t)
	ctx := context.Background()

	bill, err := svc.CreateEvent(ctx, eventForm())
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Delete(ctx, bill.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrBillNotFound)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, blob.Writes())
	deleted := 0
	for _, ev := range pub.events {
		if ev.Type == core.BillDeleted {
			deleted++
		}
	}
	assert.Equal(t, 1, deleted)
}

func TestPersistFailureIsReturned(t *testing.T) {
	svc, blob, pub := newService(t)
	blob.FailWrites(true)

	_, err := svc.CreateCorporate(context.Background(), corporateForm())
	require.Error(t, err)
	assert.ErrorIs(t, err, memory.ErrWriteFailed)
	assert.False(t, errors.Is(err, ErrInvalidBill))
	assert.Empty(t, svc.List(""))
	assert.Empty(t, pub.events)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	failing := &recordingPublisher{err: errors.New("broker down")}
	svc, _, _ := newService(t, WithPublisher(failing))

	_, err := svc.CreateCorporate(context.Background(), corporateForm())
	require.NoError(t, err)
	assert.Len(t, failing.events, 1)
	assert.Len(t, svc.List(""), 1)
}

func TestListAndDashboard(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateCorporate(ctx, corporateForm())
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, eventForm())
	require.NoError(t, err)

	assert.Len(t, svc.List(""), 2)
	assert.Len(t, svc.List(core.Corporate), 1)
	assert.Len(t, svc.List(core.Event), 1)

	ov := svc.Dashboard()
	assert.Equal(t, core.Amount(6250), ov.TotalRevenue)
	assert.Equal(t, 2, ov.BillCount)
	require.Len(t, ov.Recent, 2)
	assert.Equal(t, "Wedding", ov.Recent[0].ClientName)
}
