package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Pesokrava/product_catalog/internal/config"
	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/auth"
	"github.com/Pesokrava/product_catalog/internal/pkg/database"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/repository/postgres"
)

var subcategories = map[string][]string{
	"Electronics":   {"Smartphones", "Laptops", "Tablets", "Accessories", "Cameras", "Audio"},
	"Clothing":      {"Men", "Women", "Kids", "Sportswear", "Shoes", "Accessories"},
	"Books":         {"Fiction", "Non-fiction", "Educational", "Comics", "Children", "Biography"},
	"Home & Garden": {"Furniture", "Decor", "Kitchen", "Garden", "Bathroom", "Lighting"},
	"Sports":        {"Fitness", "Outdoor", "Team Sports", "Water Sports", "Winter Sports", "Cycling"},
	"Toys":          {"Action Figures", "Board Games", "Dolls", "Educational", "Outdoor", "Puzzles"},
}

const defaultCategories = "Electronics,Clothing,Books,Home & Garden,Sports,Toys"

type options struct {
	count         int
	clearExisting bool
	categories    []string
	priceMin      float64
	priceMax      float64
	adminEmail    string
	adminPassword string
}

func main() {
	var (
		opts       options
		categories string
	)

	flag.IntVar(&opts.count, "count", 50, "number of products to create")
	flag.BoolVar(&opts.clearExisting, "clear", true, "remove existing products and likes first")
	flag.StringVar(&categories, "categories", defaultCategories, "comma separated categories")
	flag.Float64Var(&opts.priceMin, "price-min", 10, "minimum price")
	flag.Float64Var(&opts.priceMax, "price-max", 1000, "maximum price")
	flag.StringVar(&opts.adminEmail, "admin-email", "admin@example.com", "admin account to create, empty to skip")
	flag.StringVar(&opts.adminPassword, "admin-password", "admin123", "admin account password")
	flag.Parse()

	opts.categories = splitCategories(categories)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewWithLevel(cfg.Env, cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	db, err := database.WaitForDB(cfg, appLogger, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := run(ctx, db, cfg, opts, appLogger); err != nil {
		appLogger.Fatal("Seed failed", err)
	}

	appLogger.Info("Seed completed successfully")
}

func run(ctx context.Context, db *sqlx.DB, cfg *config.Config, opts options, log *logger.Logger) error {
	if opts.clearExisting {
		if _, err := db.ExecContext(ctx, `TRUNCATE product_likes, products`); err != nil {
			return err
		}
		log.Info("Cleared existing products")
	}

	products := postgres.NewProductRepository(db)
	for _, p := range generateProducts(gofakeit.New(0), opts) {
		if err := products.Create(ctx, p); err != nil {
			return err
		}
	}
	log.Infof("Seeded %d products", opts.count)

	if opts.adminEmail == "" {
		return nil
	}
	return seedAdmin(ctx, postgres.NewUserRepository(db), auth.NewPasswordHasher(cfg.Auth.BcryptCost), opts, log)
}

func seedAdmin(ctx context.Context, users domain.UserRepository, hasher *auth.PasswordHasher, opts options, log *logger.Logger) error {
	hash, err := hasher.Hash(opts.adminPassword)
	if err != nil {
		return err
	}

	admin := &domain.User{
		FullName:        "Admin User",
		Email:           strings.ToLower(opts.adminEmail),
		PasswordHash:    hash,
		Role:            domain.RoleAdmin,
		IsEmailVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			log.Infof("Admin %s already exists", admin.Email)
			return nil
		}
		return err
	}

	log.Infof("Created admin %s", admin.Email)
	return nil
}

func generateProducts(f *gofakeit.Faker, opts options) []*domain.Product {
	products := make([]*domain.Product, 0, opts.count)
	for range opts.count {
		category := f.RandomString(opts.categories)
		subcategory := "Default"
		if subs, ok := subcategories[category]; ok {
			subcategory = f.RandomString(subs)
		}
		description := f.ProductDescription()

		products = append(products, &domain.Product{
			Name:        f.ProductName(),
			Description: &description,
			Price:       decimal.NewFromFloat(f.Price(opts.priceMin, opts.priceMax)).Round(2),
			Category:    category,
			Subcategory: &subcategory,
		})
	}
	return products
}

func splitCategories(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
