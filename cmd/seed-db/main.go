// Command seed-db loads a product catalog, demo accounts, and an admin API
// key into the database. Intended for local development and test
// environments.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodegamx/storefront/internal/repository"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Style       string          `json:"style"`
	Origin      string          `json:"origin"`
	Country     string          `json:"country"`
}

type demoAccount struct {
	firstName string
	lastName  string
	email     string
	password  string
	role      string
	affiliate bool
}

var demoAccounts = []demoAccount{
	{firstName: "Ana", lastName: "Reyes", email: "ana@example.com", password: "changeme", role: "customer"},
	{firstName: "Luis", lastName: "Mora", email: "luis@example.com", password: "changeme", role: "customer", affiliate: true},
	{firstName: "Admin", lastName: "", email: "admin@example.com", password: "changeme", role: "admin"},
}

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedAccounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed accounts")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	const upsertSQL = `
		INSERT INTO products (name, description, price, image, style, origin, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING`

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertSQL,
			p.Name, p.Description, p.Price, p.Image, p.Style, p.Origin, p.Country,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.Name)
		}

		slog.Info("upserted product", slog.String("name", p.Name))
	}

	return nil
}

func seedAccounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo accounts", slog.Int("count", len(demoAccounts)))

	const insertSQL = `
		INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
		RETURNING id`

	for _, a := range demoAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", a.email)
		}

		var id int64
		err = pool.QueryRow(ctx, insertSQL,
			a.firstName, a.lastName, a.email, string(hash), a.role,
		).Scan(&id)
		if err != nil {
			// ON CONFLICT DO NOTHING returns no row for an existing account.
			slog.Info("account already exists", slog.String("email", a.email))
			continue
		}

		if a.affiliate {
			code := fmt.Sprintf("AFI-%d-0", id)
			if _, err := pool.Exec(ctx,
				`UPDATE users SET is_affiliate = TRUE, referral_code = $2 WHERE id = $1`,
				id, code,
			); err != nil {
				return errors.Wrapf(err, "enroll affiliate %s", a.email)
			}
			slog.Info("seeded affiliate", slog.String("email", a.email), slog.String("referral_code", code))
			continue
		}

		slog.Info("seeded account", slog.String("email", a.email), slog.String("role", a.role))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	const upsertSQL = `
		INSERT INTO api_keys (key_hash, name, scopes, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (key_hash) DO UPDATE SET active = TRUE`

	if _, err := pool.Exec(ctx, upsertSQL,
		keyHash, "Default admin key", []string{"admin"},
	); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("name", "Default admin key"))

	return nil
}
