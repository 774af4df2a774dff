package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/edu-assign-api/pkg/config"
	"github.com/noah-isme/edu-assign-api/pkg/database"
)

type profileSeed struct {
	Name       string
	Equality   float64
	Continuity float64
	Loyalty    float64
}

var defaultProfiles = []profileSeed{
	{Name: "balanced", Equality: 40, Continuity: 30, Loyalty: 30},
	{Name: "fairness-first", Equality: 70, Continuity: 20, Loyalty: 10},
	{Name: "continuity-first", Equality: 20, Continuity: 60, Loyalty: 20},
	{Name: "loyalty-first", Equality: 20, Continuity: 20, Loyalty: 60},
}

func main() {
	var (
		adminEmail    string
		adminPassword string
		adminName     string
	)

	flag.StringVar(&adminEmail, "admin-email", "admin@example.com", "Email for the seeded admin account")
	flag.StringVar(&adminPassword, "admin-password", "", "Password for the seeded admin account (required)")
	flag.StringVar(&adminName, "admin-name", "Administrator", "Full name for the seeded admin account")
	flag.Parse()

	if adminPassword == "" {
		log.Fatal("missing -admin-password")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, profile := range defaultProfiles {
		res, err := db.ExecContext(ctx, `
			INSERT INTO weight_profiles (id, name, equality, continuity, loyalty, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), profile.Name, profile.Equality, profile.Continuity, profile.Loyalty,
		)
		if err != nil {
			log.Fatalf("failed to seed weight profile %q: %v", profile.Name, err)
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			log.Printf("seeded weight profile %q", profile.Name)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash admin password: %v", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'ADMIN', TRUE, NOW(), NOW())
		ON CONFLICT (email) DO NOTHING`,
		uuid.NewString(), adminEmail, string(hash), adminName,
	)
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Printf("seeded admin user %q", adminEmail)
	} else {
		log.Printf("admin user %q already exists, skipped", adminEmail)
	}
}
