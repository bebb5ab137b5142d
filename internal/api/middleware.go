package api

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// isAdminRequest reports whether the caller should see admin-only
// projection fields (spec §71/§412's structured_state.mentioned_actors
// gate). Mirrors an oauth2-proxy-fronted deployment's group header
// convention rather than implementing authentication itself — real
// authn/authz is left to the reverse proxy in front of this service,
// the same deferred-auth stance the teacher's pkg/api.extractAuthor
// takes for caller identity (currently open to any client that already
// passed the proxy).
func isAdminRequest(c *gin.Context) bool {
	groups := c.GetHeader("X-Forwarded-Groups")
	for _, g := range strings.Split(groups, ",") {
		switch strings.TrimSpace(g) {
		case "admin", "rootsignal-admin":
			return true
		}
	}
	return false
}
