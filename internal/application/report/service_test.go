package report

import (
	"context"
	"testing"
	"time"

	controlapp "github.com/nedlog/warehouse-control/internal/application/control"
	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLocations struct {
	locations []control.Location
}

func (s stubLocations) FindByCode(_ context.Context, code string) (*control.Location, error) {
	for i := range s.locations {
		if s.locations[i].Code == code {
			return &s.locations[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s stubLocations) FindAll(_ context.Context) ([]control.Location, error) {
	return s.locations, nil
}

func (s stubLocations) Save(_ context.Context, _ *control.Location) error             { return nil }
func (s stubLocations) SaveControlState(_ context.Context, _ *control.Location) error { return nil }
func (s stubLocations) UpdateControlFields(_ context.Context, _ string, _ control.ControlFieldUpdate) error {
	return nil
}

type stubLogs struct {
	activities []control.EventActivity
}

func (s stubLogs) Append(_ context.Context, _ *control.ControlLogEntry) error { return nil }
func (s stubLogs) ListByLocation(_ context.Context, _ string, _, _ int) ([]control.ControlLogEntry, error) {
	return nil, nil
}
func (s stubLogs) CountByLocation(_ context.Context, _ string) (int64, error) { return 0, nil }
func (s stubLogs) ActivitySince(_ context.Context, _ string, _ time.Time) ([]control.EventActivity, error) {
	return s.activities, nil
}

type stubStock struct {
	quantities   map[string]decimal.Decimal
	lastMovement *time.Time
	activity     control.MovementActivity
}

func (s stubStock) LevelTotal(_ context.Context, location string) (decimal.Decimal, bool, error) {
	qty, ok := s.quantities[location]
	return qty, ok, nil
}

func (s stubStock) LedgerTotal(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s stubStock) LastMovementAt(_ context.Context, _ string) (*time.Time, error) {
	return s.lastMovement, nil
}

func (s stubStock) MovementActivity(_ context.Context, _ string, _ time.Time) (control.MovementActivity, error) {
	return s.activity, nil
}

func makeLocation(t *testing.T, code, customer string) control.Location {
	t.Helper()
	loc, err := control.NewLocation(code, code)
	require.NoError(t, err)
	if customer != "" {
		_, err = loc.Assign(customer, time.Now())
		require.NoError(t, err)
	}
	return *loc
}

func newService(locations stubLocations, logs stubLogs, stock stubStock) *Service {
	oracle := controlapp.NewQuantityOracle(stock, nil)
	return NewService(locations, logs, stock, oracle, nil)
}

func TestLocationStatus_AllRows(t *testing.T) {
	lastMove := time.Now().Add(-2 * time.Hour)
	locations := stubLocations{locations: []control.Location{
		makeLocation(t, "WH-A", "C1"),
		makeLocation(t, "WH-B", ""),
	}}
	stock := stubStock{
		quantities:   map[string]decimal.Decimal{"WH-A": decimal.NewFromInt(5)},
		lastMovement: &lastMove,
	}

	rows, err := newService(locations, stubLogs{}, stock).LocationStatus(context.Background(), StatusFilter{})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "WH-A", rows[0].Location)
	assert.Equal(t, "C1", rows[0].AssignedCustomer)
	assert.True(t, rows[0].TotalQuantity.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, rows[0].LastMovementAt)
	assert.Equal(t, control.LocationStatusAvailable, rows[1].Status)
}

func TestLocationStatus_Filters(t *testing.T) {
	locations := stubLocations{locations: []control.Location{
		makeLocation(t, "WH-A", "C1"),
		makeLocation(t, "WH-B", "C2"),
		makeLocation(t, "WH-C", ""),
	}}
	svc := newService(locations, stubLogs{}, stubStock{})
	ctx := context.Background()

	rows, err := svc.LocationStatus(ctx, StatusFilter{Customer: "C2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WH-B", rows[0].Location)

	rows, err = svc.LocationStatus(ctx, StatusFilter{Status: control.LocationStatusAvailable})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "WH-C", rows[0].Location)

	rows, err = svc.LocationStatus(ctx, StatusFilter{Location: "WH-A"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestActivity(t *testing.T) {
	lastWarn := time.Now().Add(-24 * time.Hour)
	logs := stubLogs{activities: []control.EventActivity{
		{EventType: control.EventAssignment, Count: 3, LastEvent: time.Now()},
		{EventType: control.EventWarning, Count: 1, LastEvent: lastWarn},
	}}
	stock := stubStock{activity: control.MovementActivity{Count: 12, TotalMoved: decimal.NewFromInt(250)}}

	summary, err := newService(stubLocations{}, logs, stock).Activity(context.Background(), "WH-A", 0)
	require.NoError(t, err)

	assert.Equal(t, "WH-A", summary.Location)
	assert.Equal(t, DefaultActivityWindowDays, summary.PeriodDays)
	assert.Equal(t, int64(3), summary.Events[control.EventAssignment].Count)
	assert.Equal(t, int64(1), summary.Events[control.EventWarning].Count)
	assert.Equal(t, int64(12), summary.MovementCount)
	assert.True(t, summary.TotalQtyMoved.Equal(decimal.NewFromInt(250)))
}
