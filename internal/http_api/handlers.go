package http_api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/core-coin/fortunity-sync/internal/models"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardEntry is one row of the leaderboard response.
type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	Address     string          `json:"address"`
	Username    string          `json:"username"`
	CurrentSlot int             `json:"current_slot"`
	TeamDirect  int64           `json:"team_direct"`
	Earnings    models.Earnings `json:"earnings"`
}

// health answers as long as the process serves requests. A stopped engine is
// reported as unavailable.
func (s *HTTPServer) health(c *gin.Context) {
	state := s.status.Status().State
	if state == models.StateStopped {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "state": state})
}

func (s *HTTPServer) syncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status.Status())
}

// topEarners is a handler for the /leaderboard endpoint.
// It lists users by total earnings, ?limit= bounds the list.
func (s *HTTPServer) topEarners(c *gin.Context) {
	if s.leaderboard == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}

	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	users, err := s.leaderboard.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		s.logger.Errorw("Failed to load leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			Address:     u.Address,
			Username:    u.Username,
			CurrentSlot: u.CurrentSlot,
			TeamDirect:  u.TeamDirect,
			Earnings:    u.Earnings,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": entries})
}
