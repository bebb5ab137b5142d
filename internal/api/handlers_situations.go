package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/ent"
	"github.com/fourthplaces/rootsignal/internal/masking"
)

func situationToResponse(s *ent.Situation, isAdmin bool) SituationResponse {
	resp := SituationResponse{
		ID: s.ID, Headline: s.Headline, Arc: string(s.Arc),
		Temperature: s.Temperature, Clarity: string(s.Clarity),
		SignalCount: s.SignalCount, TensionCount: s.TensionCount,
		Sensitivity: string(s.Sensitivity),
	}
	if s.Lede != nil {
		resp.Lede = *s.Lede
	}
	if s.CentroidLat != nil && s.CentroidLng != nil {
		lat, lng := *s.CentroidLat, *s.CentroidLng
		if !isAdmin {
			lat, lng = masking.FuzzCentroid(lat, lng, masking.DefaultGridDegrees)
		}
		resp.Centroid = &LocationResponse{Lat: lat, Lng: lng}
	}
	resp.StructuredState = masking.RedactStructuredState(s.StructuredState, isAdmin)
	return resp
}

// listSituationsHandler serves GET /api/v1/situations. Centroids are
// fuzzed to a grid and structured_state.mentioned_actors is stripped for
// non-admin callers (spec §4.5.4's public-exposure rules).
func (s *Server) listSituationsHandler(c *gin.Context) {
	rows, err := s.client.Situation.Query().All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	admin := isAdminRequest(c)
	out := make([]SituationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, situationToResponse(r, admin))
	}
	c.JSON(http.StatusOK, gin.H{"situations": out})
}

// getSituationHandler serves GET /api/v1/situations/:id.
func (s *Server) getSituationHandler(c *gin.Context) {
	row, err := s.client.Situation.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if ent.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "situation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, situationToResponse(row, isAdminRequest(c)))
}
