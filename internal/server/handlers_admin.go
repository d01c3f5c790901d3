package server

import (
	"net/http"

	"mutual-aid-go/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// giverId/receiverId name the help activity ids being paired.
type createMatchRequest struct {
	GiverActivityId    string          `json:"giverId" binding:"required"`
	ReceiverActivityId string          `json:"receiverId" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required"`
	PackageId          string          `json:"packageId" binding:"required"`
}

func (s *Server) handleCreateMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := s.coordinator.CreateMatch(c.Request.Context(),
		req.GiverActivityId, req.ReceiverActivityId, req.Amount, req.PackageId)
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.MatchesCreated.Inc()
	c.JSON(http.StatusCreated, gin.H{"match": matchResponse(match)})
}

func (s *Server) handleConfirmMatch(c *gin.Context) {
	match, err := s.coordinator.ConfirmMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.MatchesConfirmed.Inc()
	c.JSON(http.StatusOK, gin.H{"match": matchResponse(match)})
}

// handleCompleteCycle closes a confirmed match without the receiver's
// acknowledgment, for cases verified out of band.
func (s *Server) handleCompleteCycle(c *gin.Context) {
	result, err := s.coordinator.CompleteCycle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	monitoring.CyclesCompleted.Inc()
	c.JSON(http.StatusOK, gin.H{
		"match":            matchResponse(result.Match),
		"nextGiverActivity": activityResponse(result.NextGiverActivity),
	})
}

func (s *Server) handleListActivities(c *gin.Context) {
	activities, err := s.store.GetAllActivities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(activities))
	for i := range activities {
		out = append(out, activityResponse(&activities[i]))
	}
	c.JSON(http.StatusOK, gin.H{"activities": out})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.store.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) handleVerifyUser(c *gin.Context) {
	if err := s.store.SetUserVerified(c.Request.Context(), c.Param("id"), true); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}
