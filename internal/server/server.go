// Package server exposes the HTTP API over the store and the matching
// coordinator.
package server

import (
	"mutual-aid-go/internal/matching"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg         *models.Config
	store       store.AidStore
	coordinator *matching.Coordinator
}

func New(cfg *models.Config, aidStore store.AidStore, coordinator *matching.Coordinator) *Server {
	return &Server{
		cfg:         cfg,
		store:       aidStore,
		coordinator: coordinator,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Server.Env == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(Metrics())

	corsConfig := cors.DefaultConfig()
	if len(s.cfg.Server.AllowedOrigins) == 1 && s.cfg.Server.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.cfg.Server.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/api/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/register", s.handleRegister)
	r.POST("/api/auth/login", s.handleLogin)
	r.GET("/api/packages", s.handleGetPackages)

	authed := r.Group("/api", Auth(s.cfg.Auth))
	{
		authed.POST("/help/register-offer", s.handleRegisterOffer)
		authed.POST("/help/register-receive", s.handleRegisterReceive)

		authed.GET("/user/cycle-status", s.handleCycleStatus)
		authed.GET("/user/:id/payment-match", s.handleCurrentMatch)
		authed.POST("/user/payment-match/:id/acknowledge", s.handleAcknowledge)
		authed.GET("/user/payment-account", s.handleGetPaymentAccount)
		authed.PUT("/user/payment-account", s.handleUpsertPaymentAccount)
	}

	admin := r.Group("/api/admin", Auth(s.cfg.Auth), AdminOnly())
	{
		admin.POST("/create-match", s.handleCreateMatch)
		admin.POST("/payment-matches/:id/confirm", s.handleConfirmMatch)
		admin.POST("/payment-matches/:id/complete", s.handleCompleteCycle)
		admin.GET("/help-activities", s.handleListActivities)
		admin.GET("/users", s.handleListUsers)
		admin.POST("/users/:id/verify", s.handleVerifyUser)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	if _, err := s.store.GetPackages(c.Request.Context()); err != nil {
		c.JSON(503, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
