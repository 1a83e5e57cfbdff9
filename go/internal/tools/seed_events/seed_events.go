package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/icetime/go/internal/dbconfig"
)

// Event mirrors go/internal/assets/events.json
type Event struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	League         string    `json:"league"`
	Type           string    `json:"type"`
	StartTime      time.Time `json:"start_time"`
	Location       string    `json:"location"`
	Rink           *string   `json:"rink"`
	VenueKey       *string   `json:"venue_key"`
	Description    *string   `json:"description"`
	MaxPlayers     *int      `json:"max_players"`
	HasFee         bool      `json:"has_fee"`
	CostAmount     *float64  `json:"cost_amount"`
	ApprovalNeeded bool      `json:"approval_needed"`
}

func main() {
	ctx := context.Background()

	path := "go/internal/assets/events.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the JSON snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(events)
		inserted int
		skipped  int
		errs     int
	)

	for _, e := range events {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if !e.HasFee {
			e.CostAmount = nil
		}
		tag, err := pool.Exec(ctx, `
            INSERT INTO events (
              id, name, league, type, start_time, location, rink,
              venue_key, description, max_players, has_fee, cost_amount,
              approval_needed
            ) VALUES (
              $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
            )
            ON CONFLICT (id) DO NOTHING
        `,
			e.ID, e.Name, e.League, e.Type, e.StartTime.Round(5*time.Minute), e.Location, e.Rink,
			e.VenueKey, e.Description, e.MaxPlayers, e.HasFee, e.CostAmount,
			e.ApprovalNeeded,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting event %s: %v\n", e.ID, err)
			errs++
			continue
		}
		if tag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Events seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
