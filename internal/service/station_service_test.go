package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"evolt/internal/models"
	"evolt/internal/repository"
)

type fakeStationRepo struct {
	nextID   int64
	stations map[int64]models.Station
	owners   map[int64]models.OwnerSummary
}

func newFakeStationRepo() *fakeStationRepo {
	return &fakeStationRepo{
		nextID:   1,
		stations: make(map[int64]models.Station),
		owners:   make(map[int64]models.OwnerSummary),
	}
}

func (f *fakeStationRepo) Create(_ context.Context, station *models.Station) error {
	station.ID = f.nextID
	f.nextID++
	now := time.Now().UTC()
	station.CreatedAt = now
	station.UpdatedAt = now
	f.stations[station.ID] = *station
	return nil
}

func (f *fakeStationRepo) List(_ context.Context, filters models.StationFilters) ([]models.StationListItem, error) {
	var items []models.StationListItem
	for _, st := range f.stations {
		if filters.Status != "" && string(st.Status) != filters.Status {
			continue
		}
		if filters.ConnectorType != "" && string(st.ConnectorType) != filters.ConnectorType {
			continue
		}
		if filters.MinPower != nil && st.PowerOutput < *filters.MinPower {
			continue
		}
		owner := f.owners[st.CreatedBy]
		items = append(items, models.StationListItem{Station: st, Owner: &owner})
	}
	return items, nil
}

func (f *fakeStationRepo) GetByID(_ context.Context, id int64) (*models.Station, error) {
	st, ok := f.stations[id]
	if !ok {
		return nil, repository.ErrStationNotFound
	}
	copy := st
	return &copy, nil
}

func (f *fakeStationRepo) Update(_ context.Context, station *models.Station) error {
	if _, ok := f.stations[station.ID]; !ok {
		return repository.ErrStationNotFound
	}
	station.UpdatedAt = time.Now().UTC()
	f.stations[station.ID] = *station
	return nil
}

func (f *fakeStationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.stations[id]; !ok {
		return repository.ErrStationNotFound
	}
	delete(f.stations, id)
	return nil
}

func newStationService(repo *fakeStationRepo) *StationService {
	return NewStationService(repo, zap.NewNop())
}

func validStationInput() models.StationInput {
	name := "Harbor Supercharger"
	loc := models.Location{Latitude: 59.437, Longitude: 24.7536}
	power := 250.0
	conn := models.ConnectorTesla
	return models.StationInput{
		Name:          &name,
		Location:      &loc,
		PowerOutput:   &power,
		ConnectorType: &conn,
	}
}

func TestCreateDefaultsStatusActive(t *testing.T) {
	svc := newStationService(newFakeStationRepo())

	station, err := svc.Create(context.Background(), validStationInput(), 10)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if station.Status != models.StatusActive {
		t.Errorf("status = %s, want active", station.Status)
	}
	if station.CreatedBy != 10 {
		t.Errorf("createdBy = %d, want 10", station.CreatedBy)
	}
	if station.ID == 0 {
		t.Error("expected assigned id")
	}
}

func TestCreateNegativePowerFailsZeroSucceeds(t *testing.T) {
	svc := newStationService(newFakeStationRepo())

	in := validStationInput()
	negative := -1.0
	in.PowerOutput = &negative
	if _, err := svc.Create(context.Background(), in, 1); err == nil {
		t.Fatal("powerOutput=-1 must fail validation")
	} else {
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	}

	zero := 0.0
	in.PowerOutput = &zero
	if _, err := svc.Create(context.Background(), in, 1); err != nil {
		t.Fatalf("powerOutput=0 must succeed, got %v", err)
	}
}

func TestCreateReportsAllViolations(t *testing.T) {
	svc := newStationService(newFakeStationRepo())

	_, err := svc.Create(context.Background(), models.StationInput{}, 1)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Errorf("expected all 5 violations reported together, got %d", len(verr.Fields))
	}
}

func TestRoundTripCreateThenGet(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)

	in := validStationInput()
	created, err := svc.Create(context.Background(), in, 3)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != *in.Name || got.Location != *in.Location ||
		got.PowerOutput != *in.PowerOutput || got.ConnectorType != *in.ConnectorType {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newStationService(newFakeStationRepo())
	if _, err := svc.GetByID(context.Background(), 999); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("expected ErrStationNotFound, got %v", err)
	}
}

func TestListFiltersComposeConjunctively(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()

	seed := func(name string, status models.StationStatus, conn models.ConnectorType, power float64) {
		in := validStationInput()
		in.Name = &name
		in.Status = &status
		in.ConnectorType = &conn
		in.PowerOutput = &power
		if _, err := svc.Create(ctx, in, 1); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
	seed("A", models.StatusActive, models.ConnectorCCS, 150)
	seed("B", models.StatusActive, models.ConnectorType2, 22)
	seed("C", models.StatusInactive, models.ConnectorCCS, 350)

	minPower := 50.0
	items, err := svc.List(ctx, models.StationFilters{
		Status:        "active",
		ConnectorType: "CCS",
		MinPower:      &minPower,
	}, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Name != "A" {
		t.Fatalf("expected only station A, got %+v", items)
	}

	byStatus, err := svc.List(ctx, models.StationFilters{Status: "active"}, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, item := range byStatus {
		if item.Status != models.StatusActive {
			t.Errorf("status filter leaked %s", item.Status)
		}
	}
	if len(byStatus) != 2 {
		t.Errorf("expected 2 active stations, got %d", len(byStatus))
	}
}

func TestListEnrichmentOnlyForViewer(t *testing.T) {
	repo := newFakeStationRepo()
	repo.owners[1] = models.OwnerSummary{Name: "Owner", Email: "owner@example.com"}
	svc := newStationService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validStationInput(), 1); err != nil {
		t.Fatalf("Create: %v", err)
	}

	anon, err := svc.List(ctx, models.StationFilters{}, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if anon[0].Owner != nil || anon[0].CanModify {
		t.Errorf("anonymous listing must not be enriched: %+v", anon[0])
	}

	owner, err := svc.List(ctx, models.StationFilters{}, &Actor{ID: 1, Role: models.RoleUser})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if owner[0].Owner == nil || !owner[0].CanModify {
		t.Errorf("owner listing must be enriched with canModify=true: %+v", owner[0])
	}

	other, err := svc.List(ctx, models.StationFilters{}, &Actor{ID: 2, Role: models.RoleUser})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if other[0].CanModify {
		t.Error("non-owner viewer must get canModify=false")
	}

	admin, err := svc.List(ctx, models.StationFilters{}, &Actor{ID: 2, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !admin[0].CanModify {
		t.Error("admin viewer must get canModify=true")
	}
}

func TestUpdateByNonOwnerForbiddenAndUnchanged(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validStationInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newName := "Hijacked"
	_, err = svc.Update(ctx, created.ID, models.StationInput{Name: &newName},
		Actor{ID: 2, Role: models.RoleUser})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("denied update must leave record unchanged, name = %s", got.Name)
	}
}

func TestUpdateByOwnerAndAdmin(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validStationInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	status := models.StatusInactive
	updated, err := svc.Update(ctx, created.ID, models.StationInput{Status: &status},
		Actor{ID: 1, Role: models.RoleUser})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != models.StatusInactive {
		t.Errorf("status = %s, want inactive", updated.Status)
	}
	if updated.Name != created.Name {
		t.Errorf("partial update must keep name, got %s", updated.Name)
	}
	if updated.CreatedBy != 1 {
		t.Errorf("createdBy changed to %d", updated.CreatedBy)
	}

	power := 75.0
	if _, err := svc.Update(ctx, created.ID, models.StationInput{PowerOutput: &power},
		Actor{ID: 99, Role: models.RoleAdmin}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestUpdateRevalidatesInput(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validStationInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bad := -3.0
	_, err = svc.Update(ctx, created.ID, models.StationInput{PowerOutput: &bad},
		Actor{ID: 1, Role: models.RoleUser})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeleteIdempotentInEffect(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()
	actor := Actor{ID: 1, Role: models.RoleUser}

	created, err := svc.Create(ctx, validStationInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID, actor); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, actor); !errors.Is(err, ErrStationNotFound) {
		t.Fatalf("second delete must be not-found, got %v", err)
	}
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	repo := newFakeStationRepo()
	svc := newStationService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, validStationInput(), 1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID, Actor{ID: 2, Role: models.RoleUser}); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("station must survive denied delete: %v", err)
	}
}
