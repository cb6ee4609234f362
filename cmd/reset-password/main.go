package main

import (
	"flag"
	"log"

	"go-winery-scm/internal/config"
	"go-winery-scm/internal/repository"
	"go-winery-scm/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", repository.DefaultAdminUsername, "account to reset")
	newPassword := flag.String("password", "", "new password (defaults to SEED_ADMIN_PASSWORD)")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *newPassword == "" {
		*newPassword = cfg.SeedAdminPassword
	}
	if len(*newPassword) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), Debug: cfg.DBDebug})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// 3. Find user
	userRepo := repository.NewUserRepo(db)
	user, err := userRepo.FindByUsername(*username)
	if err != nil {
		log.Fatalf("user %s not found: %v", *username, err)
	}

	// 4. Hash and store, then end existing sessions
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*newPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	if err := userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		log.Fatalf("update password: %v", err)
	}
	if err := userRepo.UpdateTokenVersion(user.ID, uuid.New().String()); err != nil {
		log.Fatalf("end sessions: %v", err)
	}

	log.Printf("password for %s has been reset", user.Username)
}
