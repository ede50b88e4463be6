package metrc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientReport(t *testing.T) {
	var gotAuth string
	var gotBody reportRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ReportResult{AdjustmentID: "ADJ-4471", Accepted: 2})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:       server.URL,
		APIKey:        "test-key",
		LicenseNumber: "C10-0000042-LIC",
		Timeout:       2 * time.Second,
	})

	records := []DestructionRecord{
		{TrackingID: "1A4000300000123", Quantity: 2, UnitOfMeasure: "each", WeightGrams: 9, DestructionDate: time.Now(), Reason: "defective_product", Method: "rendered unusable"},
		{TrackingID: "1A4000300000456", Quantity: 1, UnitOfMeasure: "each", WeightGrams: 4.5, DestructionDate: time.Now(), Reason: "defective_product", Method: "rendered unusable"},
	}

	result, err := client.Report(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, "ADJ-4471", result.AdjustmentID)
	assert.Equal(t, 2, result.Accepted)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "C10-0000042-LIC", gotBody.LicenseNumber)
	require.Len(t, gotBody.Records, 2)
	assert.Equal(t, "1A4000300000123", gotBody.Records[0].TrackingID)
}

func TestClientReport_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "license suspended", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key", LicenseNumber: "C10-0000042-LIC"})

	_, err := client.Report(context.Background(), []DestructionRecord{{TrackingID: "1A4000300000123", Quantity: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "license suspended")
}

func TestClientReport_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, APIKey: "test-key"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Report(ctx, []DestructionRecord{{TrackingID: "1A4000300000123", Quantity: 1}})
	require.Error(t, err)
}
