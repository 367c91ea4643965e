//go:build ignore

// Usage: go run scripts/gen_test_token.go [user_id] [email]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"codeberg.org/miriamlab/server/internal/auth"
	"codeberg.org/miriamlab/server/miriamlab/wallets"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	userID := uuid.NewString()
	if len(os.Args) > 1 {
		userID = os.Args[1]
	}

	email := "test@miriamlab.dev"
	if len(os.Args) > 2 {
		email = os.Args[2]
	}

	// provision the wallet so the first request sees the free-plan balance
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		ctx := context.Background()

		db, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		wallet, err := wallets.NewService(wallets.NewPostgresStore(db)).GetBalance(ctx, userID)
		if err != nil {
			log.Fatalf("Failed to load wallet: %v", err)
		}
		fmt.Printf("Wallet for %s: plan=%s free=%d subscription=%d topup=%d\n",
			userID, wallet.Plan, wallet.FreeDailyRemaining, wallet.SubscriptionRemaining, wallet.TopupRemaining)
	}

	token, err := auth.GenerateJWT(userID, email)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\nTest JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
