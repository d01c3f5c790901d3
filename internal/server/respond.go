package server

import (
	"errors"
	"net/http"

	"mutual-aid-go/internal/matching"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps domain errors onto HTTP status codes. Unknown errors are
// logged and reported as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, matching.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrWrongReceiver):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateUser),
		errors.Is(err, store.ErrDuplicateActivity),
		errors.Is(err, store.ErrInvalidTransition),
		errors.Is(err, store.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, matching.ErrNotMature),
		errors.Is(err, matching.ErrCycleBlocked):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	default:
		zap.L().Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":            u.Id,
		"displayNumber": u.DisplayNumber,
		"fullName":      u.FullName,
		"username":      u.Username,
		"email":         u.Email,
		"role":          u.Role,
		"verified":      u.Verified,
		"totalEarnings": u.TotalEarnings.String(),
		"createdAt":     u.CreatedAt,
	}
}

func packageResponse(p *models.Package) gin.H {
	return gin.H{
		"id":            p.Id,
		"name":          p.Name,
		"amount":        p.Amount.String(),
		"returnPercent": p.ReturnPercent.String(),
		"durationDays":  p.DurationDays,
		"active":        p.Active,
	}
}

func activityResponse(a *models.HelpActivity) gin.H {
	return gin.H{
		"id":            a.Id,
		"userId":        a.UserId(),
		"role":          a.Role(),
		"packageId":     a.PackageId,
		"amount":        a.Amount.String(),
		"status":        a.Status,
		"adminApproved": a.AdminApproved,
		"maturityDate":  a.MaturityDate,
		"createdAt":     a.CreatedAt,
	}
}

func matchResponse(m *models.PaymentMatch) gin.H {
	return gin.H{
		"id":                 m.Id,
		"giverActivityId":    m.GiverActivityId,
		"receiverActivityId": m.ReceiverActivityId,
		"packageId":          m.PackageId,
		"amount":             m.Amount.String(),
		"status":             m.Status,
		"createdAt":          m.CreatedAt,
	}
}

func accountResponse(a *models.PaymentAccount) gin.H {
	return gin.H{
		"id":            a.Id,
		"userId":        a.UserId,
		"accountName":   a.AccountName,
		"accountNumber": a.AccountNumber,
		"provider":      a.Provider,
		"updatedAt":     a.UpdatedAt,
	}
}
