// One-shot seeder that provisions the doctor account. The API offers no way
// to create a doctor: registration always yields a patient, so the role is
// set here directly.
package main

import (
	"context"
	stdlog "log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/config"
	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/repo"
	"github.com/nirmitee/clinic-api/internal/security"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(false)
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer log.Sync()

	// stored lowercased, same as registration, so the login lookup matches
	userName := strings.ToLower(strings.TrimSpace(os.Getenv("DOCTOR_USERNAME")))
	password := os.Getenv("DOCTOR_PASSWORD")
	if userName == "" || password == "" {
		logger.Fatal("DOCTOR_USERNAME and DOCTOR_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.DeleteUserByUserName(ctx, userName); err != nil {
		logger.Fatal("remove previous doctor", zap.Error(err))
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}

	now := time.Now().UTC()
	doctor := &domain.User{
		UserName:    userName,
		Password:    hash,
		Role:        domain.RoleDoctor,
		Status:      domain.StatusActive,
		EmailVerify: &now,
	}
	if err := store.CreateUser(ctx, doctor); err != nil {
		logger.Fatal("create doctor", zap.Error(err))
	}

	logger.Info("doctor seeded", zap.String("userName", userName), zap.String("id", doctor.ID.Hex()))
}
