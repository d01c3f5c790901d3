package server

import (
	"net/http"

	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/gin-gonic/gin"
)

type paymentAccountRequest struct {
	AccountName   string `json:"accountName" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	Provider      string `json:"provider" binding:"required"`
}

// handleCurrentMatch returns the open match for the user in the path. Members
// may only look up their own match; admins may look up anyone's.
func (s *Server) handleCurrentMatch(c *gin.Context) {
	targetId := c.Param("id")
	if targetId != c.GetString(contextUserId) && c.GetString(contextRole) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another user's match"})
		return
	}

	match, role, err := s.coordinator.CurrentMatch(c.Request.Context(), targetId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": matchResponse(match), "role": role})
}

func (s *Server) handleGetPaymentAccount(c *gin.Context) {
	account, err := s.store.GetPaymentAccount(c.Request.Context(), c.GetString(contextUserId))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": accountResponse(account)})
}

func (s *Server) handleUpsertPaymentAccount(c *gin.Context) {
	var req paymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := s.store.UpsertPaymentAccount(c.Request.Context(), store.UpsertPaymentAccountParams{
		UserId:        c.GetString(contextUserId),
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		Provider:      req.Provider,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": accountResponse(account)})
}
