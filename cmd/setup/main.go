package main

import (
	"context"
	"errors"
	"fmt"

	"mutual-aid-go/internal/auth"
	"mutual-aid-go/internal/common"
	"mutual-aid-go/internal/config"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type demoUser struct {
	fullName string
	username string
	email    string
	admin    bool
}

var demoUsers = []demoUser{
	{fullName: "Demo Admin", username: "demo_admin", email: "admin@demo.local", admin: true},
	{fullName: "Demo Giver", username: "demo_giver", email: "giver@demo.local"},
	{fullName: "Demo Receiver", username: "demo_receiver", email: "receiver@demo.local"},
}

func syncCatalog(ctx context.Context, services *common.Services, packages []models.Package) (int, error) {
	synced := 0
	for _, pkg := range packages {
		if err := services.Store.UpsertPackage(ctx, pkg); err != nil {
			return synced, fmt.Errorf("unable to upsert package %s: %w", pkg.Id, err)
		}
		zap.L().Info("Package synced",
			zap.String("id", pkg.Id),
			zap.String("name", pkg.Name),
			zap.String("amount", pkg.Amount.String()),
			zap.Bool("active", pkg.Active))
		synced++
	}
	return synced, nil
}

func createDemoUsers(ctx context.Context, services *common.Services, cfg *models.Config) (int, error) {
	created := 0
	for _, demo := range demoUsers {
		hash, err := auth.HashPassword("demo-password", cfg.Auth.BcryptCost)
		if err != nil {
			return created, err
		}

		role := models.RoleMember
		if demo.admin {
			role = models.RoleAdmin
		}

		user, err := services.Store.CreateUser(ctx, store.CreateUserParams{
			Id:           uuid.New().String(),
			FullName:     demo.fullName,
			Username:     demo.username,
			Email:        demo.email,
			PasswordHash: hash,
			Role:         role,
		})
		if err != nil {
			if errors.Is(err, store.ErrDuplicateUser) {
				zap.L().Info("Demo user already exists, skipping", zap.String("username", demo.username))
				continue
			}
			return created, fmt.Errorf("unable to create demo user %s: %w", demo.username, err)
		}

		zap.L().Info("Demo user created",
			zap.String("id", user.Id),
			zap.String("username", user.Username),
			zap.String("role", user.Role))
		created++
	}
	return created, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	zap.L().Info("Loading package catalog", zap.String("file", cfg.Catalog.PackagesFile))
	packages, err := common.LoadPackageCatalog(cfg.Catalog.PackagesFile)
	if err != nil {
		zap.L().Fatal("Failed to load package catalog", zap.Error(err))
	}
	if len(packages) == 0 {
		zap.L().Fatal("Package catalog is empty; configure packages before running setup",
			zap.String("file", cfg.Catalog.PackagesFile))
	}

	// Opening the service creates the schema on first run.
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	synced, err := syncCatalog(ctx, services, packages)
	if err != nil {
		zap.L().Fatal("Catalog sync failed", zap.Error(err))
	}

	demoCreated := 0
	if cfg.Database.CreateDemoData {
		demoCreated, err = createDemoUsers(ctx, services, cfg)
		if err != nil {
			zap.L().Fatal("Demo data creation failed", zap.Error(err))
		}
	}

	fmt.Println()
	common.PrintHeader("SETUP COMPLETE", common.DefaultWidth)
	fmt.Printf("Database:          %s\n", cfg.Database.Path)
	fmt.Printf("Packages Synced:   %d\n", synced)
	if cfg.Database.CreateDemoData {
		fmt.Printf("Demo Users Added:  %d (password: demo-password)\n", demoCreated)
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Setup finished", zap.Int("packages", synced), zap.Int("demo_users", demoCreated))
}
