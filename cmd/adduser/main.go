package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"regexp"

	"mutual-aid-go/internal/auth"
	"mutual-aid-go/internal/common"
	"mutual-aid-go/internal/config"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,32}$`)

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-32 lowercase letters, digits or underscores: %s", username)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	nameFlag := flag.String("name", "", "User's full name (required)")
	usernameFlag := flag.String("username", "", "Login username (required)")
	emailFlag := flag.String("email", "", "User's email address (required)")
	passwordFlag := flag.String("password", "", "Initial password, min 8 characters (required)")
	adminFlag := flag.Bool("admin", false, "Create the user with the admin role")
	flag.Parse()

	if *nameFlag == "" || *usernameFlag == "" || *emailFlag == "" || *passwordFlag == "" {
		zap.L().Fatal("Required flags: --name, --username, --email and --password")
	}
	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateUsername(*usernameFlag); err != nil {
		zap.L().Fatal("Invalid username", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	hash, err := auth.HashPassword(*passwordFlag, cfg.Auth.BcryptCost)
	if err != nil {
		zap.L().Fatal("Invalid password", zap.Error(err))
	}

	zap.L().Info("Initializing services")
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	role := models.RoleMember
	if *adminFlag {
		role = models.RoleAdmin
	}

	user, err := services.Store.CreateUser(ctx, store.CreateUserParams{
		Id:           uuid.New().String(),
		FullName:     *nameFlag,
		Username:     *usernameFlag,
		Email:        *emailFlag,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			zap.L().Fatal("A user with this username or email already exists",
				zap.String("username", *usernameFlag),
				zap.String("email", *emailFlag))
		}
		zap.L().Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Println()
	common.PrintHeader("USER CREATED", common.DefaultWidth)
	fmt.Printf("ID:        %s\n", user.Id)
	fmt.Printf("Member #:  %d\n", user.DisplayNumber)
	fmt.Printf("Name:      %s\n", user.FullName)
	fmt.Printf("Username:  %s\n", user.Username)
	fmt.Printf("Email:     %s\n", user.Email)
	fmt.Printf("Role:      %s\n", user.Role)
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("User created successfully",
		zap.String("id", user.Id),
		zap.Int64("display_number", user.DisplayNumber))
}
