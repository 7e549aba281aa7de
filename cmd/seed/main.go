// Seed bootstraps a fresh database with the staff accounts and ticket
// tiers needed before the first sale. Safe to re-run: existing rows are
// left alone.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"carfest-ticketing/internal/auth"
	"carfest-ticketing/internal/config"
	"carfest-ticketing/internal/database/migrations"
	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("SEED", fmt.Sprintf("Migrations failed: %v", err))
	}

	ctx := context.Background()
	seedAdmins(ctx, bunDB, log)
	seedTiers(ctx, bunDB, log)

	log.Info("SEED", "Seeding complete")
}

func seedAdmins(ctx context.Context, bunDB *bun.DB, log *logger.Logger) {
	authDB := &auth.DB{Bun: bunDB}

	accounts := []struct {
		email    string
		password string
		role     string
	}{
		{envOr("SEED_ADMIN_EMAIL", "admin@carfest.local"), envOr("SEED_ADMIN_PASSWORD", "change-me"), models.RoleAdmin},
		{envOr("SEED_SCANNER_EMAIL", "gate@carfest.local"), envOr("SEED_SCANNER_PASSWORD", "change-me"), models.RoleScanner},
	}

	for _, account := range accounts {
		if existing, err := authDB.GetAdminByEmail(ctx, account.email); err == nil && existing != nil {
			log.Info("SEED", fmt.Sprintf("Account %s already exists, skipping", account.email))
			continue
		}

		hash, err := auth.HashPassword(account.password)
		if err != nil {
			log.Fatal("SEED", fmt.Sprintf("Failed to hash password for %s: %v", account.email, err))
		}
		admin := models.Admin{
			AdminID:      uuid.New().String(),
			Email:        account.email,
			PasswordHash: hash,
			Role:         account.role,
			CreatedAt:    time.Now(),
		}
		if err := authDB.CreateAdmin(ctx, admin); err != nil {
			log.Fatal("SEED", fmt.Sprintf("Failed to create account %s: %v", account.email, err))
		}
		log.Info("SEED", fmt.Sprintf("Created %s account %s", account.role, account.email))
	}
}

func seedTiers(ctx context.Context, bunDB *bun.DB, log *logger.Logger) {
	invDB := &inventory.DB{Bun: bunDB}

	tiers := []struct {
		tier   models.TicketTier
		prices []models.TierPrice
	}{
		{
			tier: models.TicketTier{TierID: "tier-ga", Name: "General Admission", TotalUnits: 5000},
			prices: []models.TierPrice{
				{TierID: "tier-ga", Phase: models.PhasePresale, GroupSize: models.GroupSingle, Price: 39},
				{TierID: "tier-ga", Phase: models.PhasePresale, GroupSize: models.GroupOf2, Price: 72},
				{TierID: "tier-ga", Phase: models.PhasePresale, GroupSize: models.GroupOf4, Price: 132},
				{TierID: "tier-ga", Phase: models.PhaseOnsale, GroupSize: models.GroupSingle, Price: 49},
				{TierID: "tier-ga", Phase: models.PhaseOnsale, GroupSize: models.GroupOf2, Price: 92},
				{TierID: "tier-ga", Phase: models.PhaseOnsale, GroupSize: models.GroupOf4, Price: 172},
			},
		},
		{
			tier: models.TicketTier{TierID: "tier-vip", Name: "VIP Paddock", TotalUnits: 400},
			prices: []models.TierPrice{
				{TierID: "tier-vip", Phase: models.PhasePresale, GroupSize: models.GroupSingle, Price: 129},
				{TierID: "tier-vip", Phase: models.PhasePresale, GroupSize: models.GroupOf2, Price: 240},
				{TierID: "tier-vip", Phase: models.PhaseOnsale, GroupSize: models.GroupSingle, Price: 159},
				{TierID: "tier-vip", Phase: models.PhaseOnsale, GroupSize: models.GroupOf2, Price: 300},
			},
		},
	}

	for _, seed := range tiers {
		if existing, err := invDB.GetTierByID(ctx, seed.tier.TierID); err == nil && existing != nil {
			log.Info("SEED", fmt.Sprintf("Tier %s already exists, skipping", seed.tier.TierID))
			continue
		}
		seed.tier.CreatedAt = time.Now()
		seed.tier.UpdatedAt = time.Now()
		if err := invDB.CreateTier(ctx, seed.tier, seed.prices); err != nil {
			log.Fatal("SEED", fmt.Sprintf("Failed to create tier %s: %v", seed.tier.TierID, err))
		}
		log.Info("SEED", fmt.Sprintf("Created tier %s with %d price rows", seed.tier.Name, len(seed.prices)))
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
