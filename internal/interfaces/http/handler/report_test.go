package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	reportapp "github.com/nedlog/warehouse-control/internal/application/report"
	"github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_LocationStatus(t *testing.T) {
	env := setupTestEnv(t)

	occupied, err := control.NewLocation("BIN-A-01", "A1")
	require.NoError(t, err)
	_, err = occupied.Assign("CUST-001", time.Now())
	require.NoError(t, err)
	env.locations.add(occupied)
	seedLocation(t, env, "BIN-B-02")
	env.stock.levels["BIN-A-01"] = decimal.NewFromInt(10)

	t.Run("lists all locations", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/reports/location-status", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []reportapp.StatusRow `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
	})

	t.Run("filters by customer", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/reports/location-status?customer=CUST-001", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []reportapp.StatusRow `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "BIN-A-01", resp.Data[0].Location)
		assert.True(t, resp.Data[0].TotalQuantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/reports/location-status?status=Broken", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_Activity(t *testing.T) {
	env := setupTestEnv(t)
	seedLocation(t, env, "BIN-A-01")

	entry := control.NewWarningEntry("BIN-A-01", "CUST-001", "CUST-002",
		control.DocTypePurchaseReceipt, "PR-001", decimal.NewFromInt(5), "bob")
	env.logs.entries = append(env.logs.entries, *entry)

	t.Run("returns the activity summary", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/locations/BIN-A-01/activity?days=7", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data reportapp.ActivitySummary `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BIN-A-01", resp.Data.Location)
		assert.Equal(t, 7, resp.Data.PeriodDays)
		assert.Equal(t, int64(1), resp.Data.Events[control.EventWarning].Count)
	})

	t.Run("rejects non-positive days", func(t *testing.T) {
		w := env.request(t, http.MethodGet, "/api/v1/locations/BIN-A-01/activity?days=0", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
