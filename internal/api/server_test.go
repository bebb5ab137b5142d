package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/internal/masking"
	"github.com/fourthplaces/rootsignal/test/storagetest"
)

func TestServer_Health(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
}

func seedGathering(t *testing.T, ctx context.Context, s *Server, id, sourceID string) {
	t.Helper()
	_, err := s.client.Source.Create().
		SetID(sourceID).
		SetCanonicalValue("https://example.org/" + sourceID).
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)

	_, err = s.client.Gathering.Create().
		SetID(id).
		SetTitle("Block Party").
		SetSourceURL("https://example.org/" + id).
		SetExtractedAt(time.Now().UTC()).
		SetCreatedBy("scout.extractor").
		SetScoutRunID("run-api-1").
		SetStartsAt(time.Now().Add(24 * time.Hour).UTC()).
		SetReviewStatus("live").
		SetProducedByID(sourceID).
		Save(ctx)
	require.NoError(t, err)
}

func TestServer_ListSignals_GatheringOnlyReturnsLiveAndUnretracted(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)
	ctx := context.Background()

	seedGathering(t, ctx, s, "gathering-live", "source-live")

	// A staged gathering must not appear in the public projection.
	_, err := s.client.Source.Create().
		SetID("source-staged").
		SetCanonicalValue("https://example.org/staged-source").
		SetScrapingStrategy("web_page").
		Save(ctx)
	require.NoError(t, err)
	_, err = s.client.Gathering.Create().
		SetID("gathering-staged").
		SetTitle("Unreviewed Meetup").
		SetSourceURL("https://example.org/gathering-staged").
		SetExtractedAt(time.Now().UTC()).
		SetCreatedBy("scout.extractor").
		SetScoutRunID("run-api-1").
		SetStartsAt(time.Now().Add(24 * time.Hour).UTC()).
		SetProducedByID("source-staged").
		Save(ctx)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/signals/gathering", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Signals []SignalResponse `json:"signals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Signals, 1)
	assert.Equal(t, "gathering-live", body.Signals[0].ID)
	assert.Equal(t, "gathering", body.Signals[0].Type)
}

func TestServer_ListSignals_UnknownTypeReturns404(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/signals/spaceship", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seedSituation(t *testing.T, ctx context.Context, s *Server, id string, lat, lng float64) {
	t.Helper()
	_, err := s.client.Situation.Create().
		SetID(id).
		SetHeadline("Downtown curfew dispute").
		SetCentroidLat(lat).
		SetCentroidLng(lng).
		SetStructuredState(map[string]interface{}{
			"mentioned_actors": []string{"actor-1"},
			"summary_note":     "ongoing",
		}).
		Save(ctx)
	require.NoError(t, err)
}

func TestServer_GetSituation_NonAdminFuzzesCentroidAndStripsActors(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)
	ctx := context.Background()
	seedSituation(t, ctx, s, "situation-1", 40.712812, -74.006015)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/situations/situation-1", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SituationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	wantLat, wantLng := masking.FuzzCentroid(40.712812, -74.006015, masking.DefaultGridDegrees)
	assert.Equal(t, wantLat, resp.Centroid.Lat)
	assert.Equal(t, wantLng, resp.Centroid.Lng)
	assert.NotContains(t, resp.StructuredState, "mentioned_actors")
	assert.Contains(t, resp.StructuredState, "summary_note")
}

func TestServer_GetSituation_AdminSeesExactCentroidAndActors(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)
	ctx := context.Background()
	seedSituation(t, ctx, s, "situation-2", 40.712812, -74.006015)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/situations/situation-2", nil)
	req.Header.Set("X-Forwarded-Groups", "staff, admin")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SituationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 40.712812, resp.Centroid.Lat)
	assert.Equal(t, -74.006015, resp.Centroid.Lng)
	assert.Contains(t, resp.StructuredState, "mentioned_actors")
}

func TestServer_GetSituation_NotFound(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/situations/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ListDispatches_OrderedOldestFirst(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	s := NewServer(client.Client, client.DB(), nil)
	ctx := context.Background()
	seedSituation(t, ctx, s, "situation-3", 40.0, -74.0)

	_, err := s.client.Dispatch.Create().
		SetID("dispatch-1").
		SetBody("First report.").
		SetDispatchType("emergence").
		SetSituationID("situation-3").
		Save(ctx)
	require.NoError(t, err)
	_, err = s.client.Dispatch.Create().
		SetID("dispatch-2").
		SetBody("Follow-up report.").
		SetDispatchType("update").
		SetSituationID("situation-3").
		Save(ctx)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/situations/situation-3/dispatches", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Dispatches []DispatchResponse `json:"dispatches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Dispatches, 2)
	assert.Equal(t, "dispatch-1", body.Dispatches[0].ID)
	assert.Equal(t, "dispatch-2", body.Dispatches[1].ID)
}
