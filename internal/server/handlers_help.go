package server

import (
	"net/http"

	"mutual-aid-go/internal/monitoring"

	"github.com/gin-gonic/gin"
)

type registerActivityRequest struct {
	PackageId string `json:"packageId" binding:"required"`
}

func (s *Server) handleGetPackages(c *gin.Context) {
	packages, err := s.store.GetPackages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(packages))
	for i := range packages {
		out = append(out, packageResponse(&packages[i]))
	}
	c.JSON(http.StatusOK, gin.H{"packages": out})
}

func (s *Server) handleRegisterOffer(c *gin.Context) {
	var req registerActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := s.coordinator.RegisterOffer(c.Request.Context(), c.GetString(contextUserId), req.PackageId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": activityResponse(activity)})
}

func (s *Server) handleRegisterReceive(c *gin.Context) {
	var req registerActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := s.coordinator.RegisterReceive(c.Request.Context(), c.GetString(contextUserId), req.PackageId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": activityResponse(activity)})
}

func (s *Server) handleCycleStatus(c *gin.Context) {
	actions, err := s.coordinator.UserActions(c.Request.Context(), c.GetString(contextUserId))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"canOfferHelp":       actions.CanOfferHelp,
		"canReceiveHelp":     actions.CanReceiveHelp,
		"secondsUntilMature": actions.SecondsUntilMature,
	})
}

func (s *Server) handleAcknowledge(c *gin.Context) {
	result, err := s.coordinator.AcknowledgeReceipt(c.Request.Context(), c.Param("id"), c.GetString(contextUserId))
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
