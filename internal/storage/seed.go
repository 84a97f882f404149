package storage

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Demo dataset sizes, matching the original analytics corpus.
const (
	seedUsers        = 200
	seedProducts     = 100
	seedTransactions = 1000
)

var seedLocations = []string{
	"Bengaluru", "Mumbai", "Delhi", "Chennai", "Kolkata", "Hyderabad", "Pune", "Ahmedabad",
}

var seedCatalogue = []struct {
	name, category, brand string
}{
	{"iPhone 14", "Electronics", "Apple"},
	{"Samsung Galaxy S22", "Electronics", "Samsung"},
	{"MacBook Air", "Electronics", "Apple"},
	{"Kindle Paperwhite", "Books", "Amazon"},
	{"Adidas Running Shoes", "Apparel", "Adidas"},
	{"Sony WH-1000XM5", "Electronics", "Sony"},
	{"Levi's Jeans", "Apparel", "Levi's"},
	{"iPad Pro", "Electronics", "Apple"},
	{"Dell XPS 13", "Electronics", "Dell"},
	{"Canon DSLR", "Electronics", "Canon"},
	{"Samsung Refrigerator", "Home Goods", "Samsung"},
	{"LG Washing Machine", "Home Goods", "LG"},
	{"Apple Watch Series 8", "Electronics", "Apple"},
	{"Nike Shoes", "Apparel", "Nike"},
	{"HP Pavilion", "Electronics", "HP"},
	{"Asus ROG Phone", "Electronics", "Asus"},
}

var seedCategories = []string{"Electronics", "Books", "Apparel", "Home Goods", "Groceries", "Sports"}
var seedBrands = []string{"BrandX", "BrandY", "BrandZ", "BrandA", "BrandB"}
var seedStatuses = []string{"completed", "pending", "cancelled"}

type seedUser struct {
	id string
}

type seedProduct struct {
	id    string
	price float64
}

// Seed replaces the demo dataset: products, users and a year of
// transactions with useful aggregation patterns. Existing rows are
// cleared first so re-running produces no duplicates.
func Seed(ctx context.Context, db *DB) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"transactions", "users", "products"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		users, err := seedUserRows(ctx, tx, rng)
		if err != nil {
			return err
		}
		products, err := seedProductRows(ctx, tx, rng)
		if err != nil {
			return err
		}
		if err := seedTransactionRows(ctx, tx, rng, users, products); err != nil {
			return err
		}

		slog.Info("database seeded",
			"users", len(users), "products", len(products), "transactions", seedTransactions)
		return nil
	})
}

func seedUserRows(ctx context.Context, tx pgx.Tx, rng *rand.Rand) ([]seedUser, error) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	span := int(time.Since(start).Hours() / 24)

	users := make([]seedUser, 0, seedUsers)
	for i := 0; i < seedUsers; i++ {
		id := shortID()
		regDate := start.AddDate(0, 0, rng.Intn(span))
		_, err := tx.Exec(ctx,
			`INSERT INTO users (user_id, name, email, location, registration_date)
			 VALUES ($1, $2, $3, $4, $5)`,
			id,
			fmt.Sprintf("User%d", i+1),
			fmt.Sprintf("user%d@example.com", i+1),
			weightedLocation(rng),
			regDate,
		)
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		users = append(users, seedUser{id: id})
	}
	return users, nil
}

func seedProductRows(ctx context.Context, tx pgx.Tx, rng *rand.Rand) ([]seedProduct, error) {
	products := make([]seedProduct, 0, seedProducts)
	for i := 0; i < seedProducts; i++ {
		id := shortID()
		var name, category, brand string
		if i < len(seedCatalogue) {
			name, category, brand = seedCatalogue[i].name, seedCatalogue[i].category, seedCatalogue[i].brand
		} else {
			name = fmt.Sprintf("Product%d", i+1)
			category = seedCategories[rng.Intn(len(seedCategories))]
			brand = seedBrands[rng.Intn(len(seedBrands))]
		}
		price := round2(100.0 + rng.Float64()*1400.0)

		_, err := tx.Exec(ctx,
			`INSERT INTO products (product_id, name, category, brand, price)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, name, category, brand, price,
		)
		if err != nil {
			return nil, fmt.Errorf("insert product: %w", err)
		}
		products = append(products, seedProduct{id: id, price: price})
	}
	return products, nil
}

func seedTransactionRows(ctx context.Context, tx pgx.Tx, rng *rand.Rand, users []seedUser, products []seedProduct) error {
	now := time.Now()
	yearAgo := now.AddDate(-1, 0, 0)
	spanSeconds := int64(now.Sub(yearAgo).Seconds())

	for i := 0; i < seedTransactions; i++ {
		user := users[rng.Intn(len(users))]
		product := products[rng.Intn(len(products))]
		ts := yearAgo.Add(time.Duration(rng.Int63n(spanSeconds)) * time.Second)

		quantity := float64(1 + rng.Intn(3))
		factor := 0.8 + rng.Float64()*0.4
		amount := round2(product.price * factor * quantity)
		status := weightedStatus(rng)

		_, err := tx.Exec(ctx,
			`INSERT INTO transactions (order_id, user_id, product_id, amount, "timestamp", status)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			shortID(), user.id, product.id, amount, ts, status,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return nil
}

// shortID returns the first 8 characters of a UUID, matching the id
// shape the indexes and demo queries expect.
func shortID() string {
	return uuid.NewString()[:8]
}

func weightedLocation(rng *rand.Rand) string {
	// 20/20/20/10/10/10/5/5 weighting over seedLocations.
	weights := []int{20, 20, 20, 10, 10, 10, 5, 5}
	total := 0
	for _, w := range weights {
		total += w
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return seedLocations[i]
		}
		n -= w
	}
	return seedLocations[0]
}

func weightedStatus(rng *rand.Rand) string {
	n := rng.Float64()
	switch {
	case n < 0.85:
		return seedStatuses[0]
	case n < 0.95:
		return seedStatuses[1]
	default:
		return seedStatuses[2]
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
