// README: Package lifecycle tests against the in-memory store.
package order

import (
	"context"
	"errors"
	"testing"

	"roadie/internal/config"
	"roadie/internal/events"
	"roadie/internal/modules/matching"
	"roadie/internal/modules/pricing"
	"roadie/internal/types"
)

var (
	timesSquare = types.Point{Lat: 40.7580, Lng: -73.9855}
	wallStreet  = types.Point{Lat: 40.7061, Lng: -74.0087}
)

type fixture struct {
	svc    *Service
	index  *matching.Service
	events *events.Memory
}

func newFixture() fixture {
	idx := matching.NewService(matching.NewMemoryIndex(), config.MatchingConfig{RadiusKm: 5})
	pub := &events.Memory{}
	svc := NewService(NewStore(), pricing.NewService(pricing.NewStore(pricing.MarketplaceRate)), idx, pub)
	return fixture{svc: svc, index: idx, events: pub}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNone, StatusPending, true},
		{StatusPending, StatusAccepted, true},
		{StatusAccepted, StatusAccepted, false},
		{StatusAccepted, StatusPending, false},
		{StatusNone, StatusAccepted, false},
		{StatusPending, StatusNone, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCreate_PricesAndIndexes(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.svc.Create(ctx, CreateCommand{ClientID: "alice@example.com", Pickup: timesSquare, Dropoff: wallStreet})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.ID) != 8 {
		t.Errorf("id %q should be 8 characters", p.ID)
	}
	if p.Status != StatusPending || p.DriverID != nil {
		t.Errorf("unexpected new package: %+v", p)
	}
	want := pricing.Fare(p.DistanceKm, 40, 5, 2, 0.5)
	if p.Price != want {
		t.Errorf("price = %v, want %v", p.Price, want)
	}
	if p.DistanceKm < 6 || p.DistanceKm > 6.3 {
		t.Errorf("distance = %v, expected ~6.1km", p.DistanceKm)
	}

	near, err := f.index.NearbyPending(ctx, timesSquare, 1)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(near) != 1 || near[0].ID != p.ID {
		t.Errorf("expected package in pending index, got %v", near)
	}
	if got := f.events.Types(); len(got) != 1 || got[0] != events.PackageCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreate_RequiresClient(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Create(context.Background(), CreateCommand{Pickup: timesSquare, Dropoff: wallStreet}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v, want ErrBadRequest", err)
	}
}

func TestAccept_AssignsDriverOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, err := f.svc.Create(ctx, CreateCommand{ClientID: "alice@example.com", Pickup: timesSquare, Dropoff: wallStreet})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Accept(ctx, AcceptCommand{PackageID: p.ID, DriverID: "bob@example.com"}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	err = f.svc.Accept(ctx, AcceptCommand{PackageID: p.ID, DriverID: "carol@example.com"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second accept err = %v, want ErrInvalidState", err)
	}

	got, err := f.svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusAccepted || got.DriverID == nil || *got.DriverID != "bob@example.com" {
		t.Errorf("driver overwritten or status wrong: %+v", got)
	}
	if got.AcceptedAt == nil {
		t.Error("accepted_at not set")
	}

	near, _ := f.index.NearbyPending(ctx, timesSquare, 1)
	if len(near) != 0 {
		t.Errorf("accepted package still indexed: %v", near)
	}

	evs := f.svc.Events(ctx, p.ID)
	if len(evs) != 2 || evs[1].ToStatus != StatusAccepted {
		t.Errorf("unexpected history: %+v", evs)
	}
}

func TestAccept_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	if err := f.svc.Accept(ctx, AcceptCommand{PackageID: "missing0", DriverID: "bob@example.com"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing package err = %v, want ErrNotFound", err)
	}
	if err := f.svc.Accept(ctx, AcceptCommand{PackageID: "missing0"}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("missing driver err = %v, want ErrBadRequest", err)
	}
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	a, _ := f.svc.Create(ctx, CreateCommand{ClientID: "alice@example.com", Pickup: timesSquare, Dropoff: wallStreet})
	b, _ := f.svc.Create(ctx, CreateCommand{ClientID: "alice@example.com", Pickup: wallStreet, Dropoff: timesSquare})
	c, _ := f.svc.Create(ctx, CreateCommand{ClientID: "dave@example.com", Pickup: timesSquare, Dropoff: timesSquare})
	if err := f.svc.Accept(ctx, AcceptCommand{PackageID: b.ID, DriverID: "bob@example.com"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	pending := f.svc.ListPending(ctx)
	if len(pending) != 2 || pending[0].ID != a.ID || pending[1].ID != c.ID {
		t.Errorf("pending = %v", pending)
	}
	mine := f.svc.ListByClient(ctx, "alice@example.com")
	if len(mine) != 2 || mine[0].ID != a.ID || mine[1].ID != b.ID {
		t.Errorf("by client = %v", mine)
	}
	driven := f.svc.ListByDriver(ctx, "bob@example.com")
	if len(driven) != 1 || driven[0].ID != b.ID {
		t.Errorf("by driver = %v", driven)
	}
	if got := f.svc.ListByDriver(ctx, "nobody@example.com"); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p, _ := f.svc.Create(ctx, CreateCommand{ClientID: "alice@example.com", Pickup: timesSquare, Dropoff: wallStreet})

	got, _ := f.svc.Get(ctx, p.ID)
	got.Status = StatusAccepted
	again, _ := f.svc.Get(ctx, p.ID)
	if again.Status != StatusPending {
		t.Error("mutating a returned package leaked into the store")
	}
}
