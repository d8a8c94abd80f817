// seed inserts a confirmed test user, a few stores with items and a weekly
// course timetable into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/course-signup/internal/auth"
	"github.com/ErlanBelekov/course-signup/internal/infrastructure/postgres"
	"github.com/google/uuid"
)

const (
	seedUserID   = 100000001
	seedEmail    = "seed@test.local"
	seedPassword = "seed-password"
)

type courseSpec struct {
	name     string
	start    string
	location string
	day      int
	slots    int
}

var courses = []courseSpec{
	{"Yoga", "18:30", "Hall A", 0, 12},
	{"Yoga", "18:30", "Hall A", 2, 12},
	{"Pilates", "09:00", "Hall B", 1, 8},
	{"Pilates", "09:00", "Hall B", 3, 8},
	{"Boxing", "20:00", "Ring", 4, 0},
	{"Swimming", "10:00", "Pool", 5, 20},
}

var catalog = map[string][]struct {
	name  string
	price float64
}{
	"ikea":    {{"chair", 15.99}, {"lamp", 9.50}},
	"leroy":   {{"hammer", 12.00}},
	"decathl": {{"yoga mat", 19.99}, {"dumbbell", 24.90}},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert a user who can log in straight away
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, 'Seed User', $3)
		ON CONFLICT (id) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		seedUserID, seedEmail, hash,
	)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO confirmations (id, user_id, code, expires_at, confirmed)
		SELECT $1, $2, '000000', NOW(), TRUE
		WHERE NOT EXISTS (SELECT 1 FROM confirmations WHERE user_id = $2 AND confirmed)`,
		uuid.NewString(), seedUserID,
	)
	if err != nil {
		log.Fatalf("confirm user: %v", err)
	}

	var stores, items int
	for store, storeItems := range catalog {
		var storeID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO stores (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			store,
		).Scan(&storeID)
		if err != nil {
			log.Fatalf("upsert store %s: %v", store, err)
		}
		stores++

		for _, it := range storeItems {
			_, err := pool.Exec(ctx, `
				INSERT INTO items (name, price, store_id) VALUES ($1, $2, $3)
				ON CONFLICT (name) DO UPDATE SET price = EXCLUDED.price, store_id = EXCLUDED.store_id`,
				it.name, it.price, storeID,
			)
			if err != nil {
				log.Fatalf("upsert item %s: %v", it.name, err)
			}
			items++
		}
	}

	// Courses have no natural key, so only insert into an empty timetable
	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&existing); err != nil {
		log.Fatalf("count courses: %v", err)
	}
	var inserted int
	if existing == 0 {
		for _, c := range courses {
			_, err := pool.Exec(ctx, `
				INSERT INTO courses (name, start_time, location, day_week, slots)
				VALUES ($1, $2::time, $3, $4, $5)`,
				c.name, c.start, c.location, c.day, c.slots,
			)
			if err != nil {
				log.Fatalf("insert course %s: %v", c.name, err)
			}
			inserted++
		}
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User ID:   %d  (%s / %s)\n", seedUserID, seedEmail, seedPassword)
	fmt.Printf("  Stores:    %d  Items: %d\n", stores, items)
	fmt.Printf("  Courses:   %d inserted (%d already present)\n", inserted, existing)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in as the seed user:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"id\":%d,\"password\":\"%s\"}'\n", seedUserID, seedPassword)
	fmt.Println("    # {\"access_token\":\"eyJ...\",\"refresh_token\":\"eyJ...\"}")
	fmt.Println()
	fmt.Println("  Step 2: enroll in a course:")
	fmt.Println()
	fmt.Println("    curl -s http://localhost:8080/courses")
	fmt.Printf("    curl -s -X POST http://localhost:8080/enroll/ -d '{\"course_id\":1,\"user_id\":%d}'\n", seedUserID)
	fmt.Println()
	fmt.Println("  Step 3: clear today's rosters without waiting for the cron:")
	fmt.Println()
	fmt.Println("    go run ./cmd/scheduler -once")
}
