package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sorrisolabs/clinic-assistant/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedPatients(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		// Brazilian mobile numbers, the sender_key shape the channel produces.
		senderKey := fmt.Sprintf("55%d9%d", gofakeit.Number(11, 99), gofakeit.Number(10000000, 99999999))

		_, err := tx.Exec(ctx, `
			INSERT INTO patients (id, sender_key, display_name, conversation_state, created_at, updated_at)
			VALUES ($1, $2, $3, 'none', now(), now())
			ON CONFLICT (sender_key) DO NOTHING
		`, id, senderKey, name)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
