package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	gormLogger "gorm.io/gorm/logger"

	domainUser "warehouse-manager/internal/domain/user"
	domainWarehouse "warehouse-manager/internal/domain/warehouse"
	"warehouse-manager/internal/infrastructure/database/postgres"
	"warehouse-manager/internal/infrastructure/database/postgres/models"
	appErrors "warehouse-manager/pkg/errors"
)

func ptr[T any](v T) *T { return &v }

type recordingPublisher struct {
	events []domainWarehouse.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domainWarehouse.Event) error {
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	svc   *Service
	pub   *recordingPublisher
	alice int64
	bob   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := postgres.Open(sqlite.Open(filepath.Join(t.TempDir(), "wh.db")), gormLogger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserModel{}, &models.WarehouseModel{}))
	t.Cleanup(func() { _ = db.Close() })

	users := postgres.NewUserRepository(db)
	seed := func(name string) int64 {
		u := &domainUser.User{Username: name, Email: name + "@x.com", PasswordHash: "h"}
		require.NoError(t, users.Create(context.Background(), u))
		return u.ID
	}

	pub := &recordingPublisher{}
	return &fixture{
		svc:   NewService(postgres.NewWarehouseRepository(db), pub),
		pub:   pub,
		alice: seed("alice"),
		bob:   seed("bob"),
	}
}

func openYard(name string) *CreateWarehouseRequest {
	return &CreateWarehouseRequest{Name: name, Location: "Harbour", Type: "open", Capacity: 100}
}

func TestService_CreateWarehouse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateWarehouse(ctx, f.alice, &CreateWarehouseRequest{
		Name:     "  Main <b>Depot</b> ",
		Location: "Izmir",
		Type:     "closed",
		Capacity: 400,
		HeightM:  ptr(7.5),
		Area:     &AreaRequest{Method: "manual", WidthM: ptr(10.0), LengthM: ptr(12.5)},
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, f.alice, created.OwnerID)
	assert.Equal(t, "Main <b>Depot</b>", created.Name, "trimmed, stored as typed")
	assert.True(t, created.IsActive, "active by default")
	require.NotNil(t, created.Area)
	assert.Equal(t, 125.0, *created.Area.CalculatedAreaM2)
	assert.Equal(t, 125.0, *created.FloorAreaM2, "floor area falls back to the footprint")

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, domainWarehouse.EventCreated, f.pub.events[0].Type)
	assert.Equal(t, created.ID, f.pub.events[0].WarehouseID)
}

func TestService_CreateWarehouse_Rejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		req   *CreateWarehouseRequest
		cause error
	}{
		{
			name:  "closed without height",
			req:   &CreateWarehouseRequest{Name: "Shed", Location: "Yard", Type: "closed"},
			cause: domainWarehouse.ErrHeightRequired,
		},
		{
			name: "unknown type",
			req:  &CreateWarehouseRequest{Name: "Shed", Location: "Yard", Type: "hangar"},
		},
		{
			name: "missing name",
			req:  &CreateWarehouseRequest{Location: "Yard", Type: "open"},
		},
		{
			name: "negative capacity",
			req:  &CreateWarehouseRequest{Name: "Shed", Location: "Yard", Type: "open", Capacity: -1},
		},
		{
			name:  "manual area without sides",
			req:   &CreateWarehouseRequest{Name: "Shed", Location: "Yard", Type: "open", Area: &AreaRequest{Method: "manual", WidthM: ptr(3.0)}},
			cause: domainWarehouse.ErrInvalidArea,
		},
		{
			name:  "map area without geojson",
			req:   &CreateWarehouseRequest{Name: "Shed", Location: "Yard", Type: "open", Area: &AreaRequest{Method: "map"}},
			cause: domainWarehouse.ErrInvalidArea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateWarehouse(ctx, f.alice, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
			assert.Empty(t, f.pub.events)
		})
	}
}

func TestService_MapAreaKeepsGeoJSON(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	feature := json.RawMessage(`{"type":"Feature","geometry":{"type":"Polygon","coordinates":[]}}`)

	created, err := f.svc.CreateWarehouse(ctx, f.alice, &CreateWarehouseRequest{
		Name: "Drawn", Location: "Map", Type: "open",
		Area: &AreaRequest{Method: "map", GeoJSON: feature, CalculatedAreaM2: ptr(310.2)},
	})
	require.NoError(t, err)

	got, err := f.svc.GetWarehouse(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(feature), string(got.Area.GeoJSON))
	assert.Equal(t, 310.2, *got.FloorAreaM2)
}

func TestService_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateWarehouse(ctx, f.alice, openYard("Alice Yard"))
	require.NoError(t, err)

	_, err = f.svc.GetWarehouse(ctx, f.bob, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrWarehouseNotFound)

	_, err = f.svc.UpdateWarehouse(ctx, f.bob, created.ID, &UpdateWarehouseRequest{Name: ptr("Mine now")})
	assert.ErrorIs(t, err, appErrors.ErrWarehouseNotFound)

	assert.ErrorIs(t, f.svc.DeleteWarehouse(ctx, f.bob, created.ID), appErrors.ErrWarehouseNotFound)

	list, err := f.svc.ListWarehouses(ctx, f.bob, nil)
	require.NoError(t, err)
	assert.Zero(t, list.Total)

	got, err := f.svc.GetWarehouse(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Yard", got.Name)
	assert.Len(t, f.pub.events, 1, "failed mutations publish nothing")
}

func TestService_UpdateWarehouse_RevalidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateWarehouse(ctx, f.alice, openYard("Yard"))
	require.NoError(t, err)

	_, err = f.svc.UpdateWarehouse(ctx, f.alice, created.ID, &UpdateWarehouseRequest{Type: ptr("closed")})
	assert.ErrorIs(t, err, domainWarehouse.ErrHeightRequired)

	updated, err := f.svc.UpdateWarehouse(ctx, f.alice, created.ID, &UpdateWarehouseRequest{Type: ptr("closed"), HeightM: ptr(5.0)})
	require.NoError(t, err)
	assert.Equal(t, "closed", updated.Type)
	assert.Equal(t, "Yard", updated.Name, "unspecified fields are kept")
	assert.Equal(t, 100, updated.Capacity)

	// height already stored, so a later patch without it still passes
	updated, err = f.svc.UpdateWarehouse(ctx, f.alice, created.ID, &UpdateWarehouseRequest{Capacity: ptr(250), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 250, updated.Capacity)
	assert.False(t, updated.IsActive)

	got, err := f.svc.GetWarehouse(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, got.Capacity)
	assert.Equal(t, 5.0, *got.HeightM)

	require.Len(t, f.pub.events, 3)
	assert.Equal(t, domainWarehouse.EventUpdated, f.pub.events[2].Type)
}

func TestService_UpdateWarehouse_EchoedTextIsStable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := openYard("Tom & Jerry")
	req.Location = `Dock "A" <north>`
	req.Description = ptr("fish & chips\nno <glass>")
	created, err := f.svc.CreateWarehouse(ctx, f.alice, req)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := f.svc.GetWarehouse(ctx, f.alice, created.ID)
		require.NoError(t, err)

		_, err = f.svc.UpdateWarehouse(ctx, f.alice, created.ID, &UpdateWarehouseRequest{
			Name:        ptr(got.Name),
			Location:    ptr(got.Location),
			Description: got.Description,
		})
		require.NoError(t, err)
	}

	got, err := f.svc.GetWarehouse(ctx, f.alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry", got.Name)
	assert.Equal(t, `Dock "A" <north>`, got.Location)
	require.NotNil(t, got.Description)
	assert.Equal(t, "fish & chips\nno <glass>", *got.Description)
}

func TestService_UpdateWarehouse_NewAreaRecomputesFloorArea(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	req := openYard("Yard")
	req.Area = &AreaRequest{Method: "manual", WidthM: ptr(2.0), LengthM: ptr(3.0)}
	created, err := f.svc.CreateWarehouse(ctx, f.alice, req)
	require.NoError(t, err)
	assert.Equal(t, 6.0, *created.FloorAreaM2)

	updated, err := f.svc.UpdateWarehouse(ctx, f.alice, created.ID, &UpdateWarehouseRequest{
		Area: &AreaRequest{Method: "manual", WidthM: ptr(4.0), LengthM: ptr(5.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, *updated.FloorAreaM2)
}

func TestService_DeleteWarehouse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.svc.CreateWarehouse(ctx, f.alice, openYard("Yard"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteWarehouse(ctx, f.alice, created.ID))
	_, err = f.svc.GetWarehouse(ctx, f.alice, created.ID)
	assert.ErrorIs(t, err, appErrors.ErrWarehouseNotFound)

	require.Len(t, f.pub.events, 2)
	deleted := f.pub.events[1]
	assert.Equal(t, domainWarehouse.EventDeleted, deleted.Type)
	assert.Equal(t, created.ID, deleted.WarehouseID)
	assert.Equal(t, f.alice, deleted.OwnerID)
	assert.Nil(t, deleted.Warehouse)
}

func TestService_PublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	created, err := f.svc.CreateWarehouse(context.Background(), f.alice, openYard("Yard"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestService_ListWarehouses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, name := range []string{"Alpha", "Bravo", "Charlie"} {
		_, err := f.svc.CreateWarehouse(ctx, f.alice, openYard(name))
		require.NoError(t, err)
	}
	_, err := f.svc.CreateWarehouse(ctx, f.bob, openYard("Other"))
	require.NoError(t, err)

	page, err := f.svc.ListWarehouses(ctx, f.alice, &WarehouseFilterRequest{PageSize: 2, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Warehouses, 2)
	assert.Equal(t, "Alpha", page.Warehouses[0].Name)

	search, err := f.svc.ListWarehouses(ctx, f.alice, &WarehouseFilterRequest{Search: "brav"})
	require.NoError(t, err)
	require.Len(t, search.Warehouses, 1)
	assert.Equal(t, "Bravo", search.Warehouses[0].Name)

	_, err = f.svc.ListWarehouses(ctx, f.alice, &WarehouseFilterRequest{SortBy: "owner_id"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidInput)
}

func TestService_GetStatistics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateWarehouse(ctx, f.alice, &CreateWarehouseRequest{
		Name: "Closed", Location: "A", Type: "closed", Capacity: 300, HeightM: ptr(4.0), FloorAreaM2: ptr(50.0),
	})
	require.NoError(t, err)
	yard := openYard("Open")
	yard.IsActive = ptr(false)
	yard.FloorAreaM2 = ptr(25.5)
	_, err = f.svc.CreateWarehouse(ctx, f.alice, yard)
	require.NoError(t, err)

	stats, err := f.svc.GetStatistics(ctx, f.alice)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalWarehouses)
	assert.EqualValues(t, 1, stats.OpenWarehouses)
	assert.EqualValues(t, 1, stats.ClosedWarehouses)
	assert.EqualValues(t, 1, stats.ActiveWarehouses)
	assert.EqualValues(t, 400, stats.TotalCapacity)
	assert.InDelta(t, 75.5, stats.TotalFloorAreaM2, 1e-9)

	empty, err := f.svc.GetStatistics(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalWarehouses)
}
