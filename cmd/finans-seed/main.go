package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/joho/godotenv"

	"finans/internal/analytics"
	"finans/internal/config"
	"finans/internal/core"
	"finans/internal/storage"
)

// Demo dataset: per-category monthly limits drive both the budget rows
// and the size of the generated amounts.
var demoBudgets = []struct {
	category string
	limit    float64
}{
	{"Mad", 500.0},
	{"Transport", 300.0},
	{"Underholdning", 250.0},
	{"Regninger", 800.0},
	{"Shopping", 400.0},
	{"Sundhed", 200.0},
	{"Uddannelse", 300.0},
}

var demoGoals = []struct {
	name   string
	target float64
	due    string
}{
	{"Ny Laptop", 1500.0, "2025-12-31"},
	{"Ferie", 5000.0, "2026-06-30"},
	{"Bil Reparation", 2000.0, "2025-09-30"},
}

func main() {
	transactions := flag.Int("transactions", 200, "number of random transactions to generate")
	months := flag.Int("months", 6, "how many months back the transactions spread over")
	seed := flag.Uint64("seed", 0, "random seed (0 picks one from system entropy)")
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer repo.Close()

	src := analytics.NewSource()
	if *seed != 0 {
		src = rand.NewPCG(*seed, *seed+1)
	}
	rng := rand.New(src)

	ctx := context.Background()
	if err := repo.ResetAll(ctx); err != nil {
		log.Fatalf("clear tables: %v", err)
	}

	const userID int64 = 1

	batch := generateTransactions(rng, userID, *transactions, *months)
	if err := repo.InsertTransactions(ctx, batch); err != nil {
		log.Fatalf("insert transactions: %v", err)
	}

	for _, b := range demoBudgets {
		if _, err := repo.CreateBudget(ctx, core.Budget{
			UserID:       userID,
			Category:     b.category,
			MonthlyLimit: b.limit,
		}); err != nil {
			log.Fatalf("create budget %s: %v", b.category, err)
		}
	}

	for _, g := range demoGoals {
		due, err := core.ParseDate(g.due)
		if err != nil {
			log.Fatalf("parse due date %s: %v", g.due, err)
		}
		if _, err := repo.CreateGoal(ctx, core.Goal{
			UserID:       userID,
			Name:         g.name,
			TargetAmount: g.target,
			DueDate:      due,
		}); err != nil {
			log.Fatalf("create goal %s: %v", g.name, err)
		}
	}

	fmt.Printf("Seedet database '%s' med bruger %d, %d transaktioner, %d budgetter og %d mål.\n",
		cfg.SQLiteDBPath, userID, len(batch), len(demoBudgets), len(demoGoals))
}

// generateTransactions spreads n transactions uniformly over the last
// monthsBack*30 days. Amounts are gaussian around a quarter of the
// category's monthly limit, mirrored positive and rounded to cents.
func generateTransactions(rng *rand.Rand, userID int64, n, monthsBack int) []core.Transaction {
	today := core.Today()
	start := today.AddDays(-30 * monthsBack)
	span := start.DaysUntil(today)

	txns := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		b := demoBudgets[rng.IntN(len(demoBudgets))]
		avg := b.limit / 4
		amount := math.Abs(rng.NormFloat64()*avg*0.5 + avg)

		txns = append(txns, core.Transaction{
			UserID:   userID,
			Category: b.category,
			Amount:   math.Round(amount*100) / 100,
			Date:     start.AddDays(rng.IntN(span + 1)),
		})
	}
	return txns
}
