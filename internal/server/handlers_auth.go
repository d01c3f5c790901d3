package server

import (
	"fmt"
	"net/http"

	"mutual-aid-go/internal/auth"
	"mutual-aid-go/internal/matching"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type registerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", matching.ErrValidation, err))
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), store.CreateUserParams{
		Id:           uuid.New().String(),
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleMember,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(s.cfg.Auth, user)
	if err != nil {
		respondError(c, err)
		return
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.Int64("display_number", user.DisplayNumber))
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": userResponse(user)})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.store.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		// Same answer for unknown user and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(s.cfg.Auth, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": userResponse(user)})
}
