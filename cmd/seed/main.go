package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"venuecap/internal/capacity"
	"venuecap/internal/resources"
	"venuecap/internal/shared/config"
	"venuecap/internal/shared/database"
	"venuecap/internal/users"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Seeder struct {
	db        *database.DB
	resources resources.Service
}

func main() {
	fmt.Println("🌱 Starting venuecap database seeder...")

	cfg := config.Load()
	appLogger := logger.GetDefault()

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	capacityService := capacity.NewService(capacity.NewRepository(db.PostgreSQL), cfg, appLogger)
	seeder := &Seeder{
		db:        db,
		resources: resources.NewService(resources.NewRepository(db.PostgreSQL), capacityService, clock.NewSystem(), appLogger),
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")
}

// CleanDatabase truncates all tables, dependents first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"waitlist_entries",
		"capacity_holds",
		"resources",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedResources(ctx, userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed resources: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates one admin and two regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	// Same password for every seeded user
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@venuecap.local", users.RoleAdmin},
		{"user1", "Dana", "Lee", "dana@venuecap.local", users.RoleUser},
		{"user2", "Sam", "Ortiz", "sam@venuecap.local", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedResources schedules a handful of resources with varied settings
func (s *Seeder) SeedResources(ctx context.Context, adminID uuid.UUID) error {
	fmt.Println("  🏟️  Seeding resources...")

	closed := false
	base := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour)

	requests := []resources.CreateResourceRequest{
		{Name: "Friday Jazz Night", Venue: "Blue Room", StartsAt: base, TotalCapacity: 120, MaxGroupSize: 8},
		{Name: "Chef's Table", Venue: "Main Kitchen", StartsAt: base.Add(24 * time.Hour), TotalCapacity: 12, MaxGroupSize: 4},
		{Name: "Rooftop Cinema", Venue: "Terrace", StartsAt: base.Add(48 * time.Hour), TotalCapacity: 80, InitialBlocked: 10},
		{Name: "Private Tasting", Venue: "Cellar", StartsAt: base.Add(72 * time.Hour), TotalCapacity: 20, AllowsReservations: &closed},
	}

	for _, req := range requests {
		res, err := s.resources.CreateResource(ctx, adminID, req)
		if err != nil {
			return fmt.Errorf("failed to create resource %s: %w", req.Name, err)
		}
		fmt.Printf("    ✅ Created resource: %s (%d seats)\n", res.Name, req.TotalCapacity)
	}
	return nil
}
