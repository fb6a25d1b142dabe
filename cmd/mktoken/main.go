package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/fulfilhub/backend/internal/infrastructure/auth"
	"github.com/fulfilhub/backend/internal/infrastructure/config"
	"github.com/fulfilhub/backend/internal/infrastructure/logger"
	"github.com/fulfilhub/backend/internal/infrastructure/persistence"
)

// mktoken mints an access token for an existing back-office user. Meant
// for operators and local development; the dashboard obtains its tokens
// from the central identity service.
func main() {
	var email string
	flag.StringVar(&email, "email", "", "Email of the user to mint a token for")
	flag.Parse()

	if email == "" {
		fmt.Fprintln(os.Stderr, "Usage: mktoken -email <user email>")
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	user, err := persistence.NewGormUserRepository(db.DB).FindByEmail(context.Background(), email)
	if err != nil {
		log.Fatal("Failed to load user", zap.String("email", email), zap.Error(err))
	}
	if !user.Active {
		log.Fatal("User is not active", zap.String("email", email))
	}

	token, err := auth.NewJWTService(cfg.JWT).GenerateAccessToken(auth.GenerateTokenInput{
		UserID:        user.ID,
		Email:         user.Email,
		Admin:         user.Admin,
		Installations: user.InstallationIDs,
	})
	if err != nil {
		log.Fatal("Failed to generate token", zap.Error(err))
	}

	fmt.Println(token)
}
