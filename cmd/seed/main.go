package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

// CLI flags
var (
	yamlPath  = flag.String("yaml", "", "Path to the source YAML (required)")
	dsn       = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun    = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm   = flag.Bool("confirm", false, "Required to perform writes")
	perSecond = flag.Int("rate", 50, "Max inserts per second")
)

// YAML contract
// listings:
//   - company: Google
//     position: Backend Engineer
//     description: ...
//     url: https://...
//     school: RPI
//     id: 0        # optional; 0 = generate

type ListingYAML struct {
	ID          int64  `yaml:"id"`
	Company     string `yaml:"company"`
	Position    string `yaml:"position"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	School      string `yaml:"school"`
}

type SeedFile struct {
	Listings []ListingYAML `yaml:"listings"`
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *yamlPath == "" {
		fatalf("--yaml is required")
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	rows, err := loadYAML(*yamlPath)
	if err != nil {
		fatalf("YAML error: %v", err)
	}

	if err := validateRows(rows); err != nil {
		fatalf("YAML validation failed: %v", err)
	}

	fmt.Printf("Loaded %d listings from %s\n", len(rows), *yamlPath)

	if *dryRun {
		for _, row := range rows {
			fmt.Printf("  %s — %s (%s)\n", row.Company, row.Position, row.School)
		}
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	limiter := rate.NewLimiter(rate.Limit(*perSecond), 1)

	var inserted int64
	for _, row := range rows {
		if err := limiter.Wait(ctx); err != nil {
			fatalf("rate limiter: %v", err)
		}

		id := row.ID
		if id == 0 {
			id, err = randomID()
			if err != nil {
				fatalf("generate id: %v", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO board.listings (id, company, position, description, url, school)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			id, row.Company, row.Position, row.Description, row.URL, row.School)
		if err != nil {
			fatalf("insert %q: %v", row.Company, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}

	fmt.Printf("Inserted %d listings (%d skipped as duplicates)\n",
		inserted, int64(len(rows))-inserted)
}

func loadYAML(path string) ([]ListingYAML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Listings, nil
}

func validateRows(rows []ListingYAML) error {
	if len(rows) == 0 {
		return fmt.Errorf("no listings found")
	}
	for i, row := range rows {
		if row.Company == "" {
			return fmt.Errorf("row %d: company is empty", i+1)
		}
		if row.Position == "" {
			return fmt.Errorf("row %d: position is empty", i+1)
		}
	}
	return nil
}

func randomID() (int64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	id := int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	if id == 0 {
		id = 1
	}
	return id, nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
