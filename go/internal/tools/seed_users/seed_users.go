package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/dbconfig"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/storage/sqlite"
	"github.com/mcdev12/icetime/go/internal/users"
)

// User mirrors go/internal/assets/users.json
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Nickname  *string   `json:"nickname"`
	IsAdmin   bool      `json:"is_admin"`
}

// tokenTTL of the development tokens printed after seeding
const tokenTTL = 30 * 24 * time.Hour

func main() {
	ctx := context.Background()

	// 1) Load users.json
	data, err := os.ReadFile("go/internal/assets/users.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read users.json: %v\n", err)
		os.Exit(1)
	}
	var members []User
	if err := json.Unmarshal(data, &members); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal users: %v\n", err)
		os.Exit(1)
	}

	// 2) Seed into the configured store
	storeCfg, err := dbconfig.NewStoreConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var total, inserted, skipped, errs int
	if storeCfg.Driver == dbconfig.DriverSQLite {
		total, inserted, skipped, errs = seedSQLite(ctx, storeCfg.SQLitePath, members)
	} else {
		total, inserted, skipped, errs = seedPostgres(ctx, storeCfg.Postgres, members)
	}
	fmt.Printf(
		"Users seed: total=%d inserted=%d skipped=%d errors=%d\n",
		total, inserted, skipped, errs,
	)

	// 3) Print development tokens
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return
	}
	verifier, err := auth.NewVerifier(secret, clockwork.NewRealClock())
	if err != nil {
		fmt.Fprintf(os.Stderr, "verifier: %v\n", err)
		os.Exit(1)
	}
	for _, u := range members {
		token, err := verifier.Sign(models.Actor{UserID: u.ID, IsAdmin: u.IsAdmin}, tokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sign token for %s: %v\n", u.Username, err)
			continue
		}
		fmt.Printf("%s\t%s\n", u.Username, token)
	}
}

func seedPostgres(ctx context.Context, cfg dbconfig.Config, members []User) (total, inserted, skipped, errs int) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	total = len(members)
	for _, u := range members {
		tag, err := pool.Exec(ctx, `
            INSERT INTO users (
              id, username, email, first_name, last_name, nickname, is_admin
            ) VALUES ($1,$2,$3,$4,$5,$6,$7)
            ON CONFLICT (id) DO NOTHING
        `, u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Nickname, u.IsAdmin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting user %s: %v\n", u.Username, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}
	return total, inserted, skipped, errs
}

func seedSQLite(ctx context.Context, path string, members []User) (total, inserted, skipped, errs int) {
	store, err := sqlite.Open(path, clockwork.NewRealClock())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	total = len(members)
	for _, u := range members {
		err := store.CreateUser(ctx, models.User{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Nickname:  u.Nickname,
			IsAdmin:   u.IsAdmin,
		})
		switch {
		case errors.Is(err, users.ErrUserExists):
			skipped++
		case err != nil:
			fmt.Fprintf(os.Stderr, "error inserting user %s: %v\n", u.Username, err)
			errs++
		default:
			inserted++
		}
	}
	return total, inserted, skipped, errs
}
