package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fourthplaces/rootsignal/ent/dispatch"
	"github.com/fourthplaces/rootsignal/ent/situation"
)

// listDispatchesHandler serves GET /api/v1/situations/:id/dispatches —
// every dispatch ever written for a situation, oldest first, since
// dispatches are append-only and a correction never replaces the row it
// supersedes (spec §3.3).
func (s *Server) listDispatchesHandler(c *gin.Context) {
	situationID := c.Param("id")

	rows, err := s.client.Dispatch.Query().
		Where(dispatch.HasSituationWith(situation.ID(situationID))).
		Order(dispatch.ByCreatedAt()).
		All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]DispatchResponse, 0, len(rows))
	for _, r := range rows {
		d := DispatchResponse{
			ID: r.ID, SituationID: situationID, Body: r.Body,
			DispatchType: string(r.DispatchType), FlaggedReview: r.FlaggedForReview,
			CreatedAt: r.CreatedAt,
		}
		if r.Supersedes != nil {
			d.Supersedes = *r.Supersedes
		}
		out = append(out, d)
	}
	c.JSON(http.StatusOK, gin.H{"dispatches": out})
}
