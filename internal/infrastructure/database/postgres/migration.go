// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
)

// Migration handles schema migration and seed data
type Migration struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Migration {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Migration{db: db, config: cfg, logger: logger}
}

// RunAutoMigrations runs GORM auto-migrations for all models in dependency
// order.
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	models := []interface{}{
		&user.User{},
		&user.Address{},

		&product.Category{},
		&product.Product{},
		&product.Review{},

		&order.Order{},
		&order.Item{},
		&order.StatusHistory{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// Seed populates an empty database with the admin account and the starter
// catalog. It is a no-op when products already exist.
func (m *Migration) Seed() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	m.logger.Info("Seeding database with starter catalog")

	return m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.seedAdmin(tx); err != nil {
			return err
		}
		return m.seedCatalog(tx)
	})
}

func (m *Migration) seedAdmin(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&user.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(m.config.Security.AdminPassword), m.config.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &user.User{
		Username: "admin",
		Email:    "admin@sweetcrumbs.example",
		Password: string(hash),
		IsAdmin:  true,
	}
	if err := tx.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

type seedProduct struct {
	name        string
	description string
	price       int64 // paise
	imageURL    string
	stock       int
}

// seedCatalog loads the starter categories and products. Prices in paise.
func (m *Migration) seedCatalog(tx *gorm.DB) error {
	catalog := map[string][]seedProduct{
		"Cakes": {
			{"Chocolate Truffle Cake", "Rich and decadent chocolate cake with chocolate ganache", 85000, "https://cdn.pixabay.com/photo/2016/11/22/18/54/cake-1851142_1280.jpg", 15},
			{"Red Velvet Cake", "Classic red velvet cake with cream cheese frosting", 92000, "https://cdn.pixabay.com/photo/2018/02/21/03/19/cake-3169966_1280.jpg", 10},
			{"Black Forest Cake", "Chocolate sponge with cherries and whipped cream", 105000, "https://cdn.pixabay.com/photo/2017/01/11/11/33/cake-1971555_1280.jpg", 8},
			{"Cheesecake", "New York style cheesecake with berry compote", 75000, "https://cdn.pixabay.com/photo/2017/05/12/08/29/cheesecake-2306966_1280.jpg", 9},
		},
		"Cupcakes": {
			{"Vanilla Bean Cupcakes", "Classic vanilla cupcakes with buttercream frosting", 12000, "https://cdn.pixabay.com/photo/2018/04/11/16/39/cupcake-3309789_1280.jpg", 24},
		},
		"Tarts": {
			{"Fresh Strawberry Tart", "Buttery pastry shell filled with pastry cream and fresh strawberries", 45000, "https://cdn.pixabay.com/photo/2017/05/01/05/18/pastry-2274750_1280.jpg", 8},
		},
		"Bread": {
			{"Artisan Sourdough Bread", "Freshly baked sourdough with a perfect crust", 18000, "https://cdn.pixabay.com/photo/2017/06/23/23/58/bread-2434370_1280.jpg", 12},
		},
		"Cookies": {
			{"Chocolate Chip Cookies", "Homemade chocolate chip cookies - pack of 12", 28000, "https://cdn.pixabay.com/photo/2014/07/08/12/34/cookies-386761_1280.jpg", 30},
		},
		"Pies": {
			{"Lemon Meringue Pie", "Tangy lemon curd topped with fluffy meringue", 65000, "https://cdn.pixabay.com/photo/2017/01/11/11/33/cake-1971552_1280.jpg", 6},
			{"Apple Pie", "Traditional apple pie with lattice crust", 58000, "https://cdn.pixabay.com/photo/2016/03/05/20/02/apple-pie-1238510_1280.jpg", 12},
		},
		"Pastries": {
			{"Cinnamon Rolls", "Warm cinnamon rolls with glaze - pack of 6", 32000, "https://cdn.pixabay.com/photo/2016/03/27/22/16/cinnamon-roll-1284543_1280.jpg", 18},
		},
		"Muffins": {
			{"Blueberry Muffins", "Fresh blueberry muffins - pack of 6", 24000, "https://cdn.pixabay.com/photo/2014/07/08/12/35/muffin-386646_1280.jpg", 20},
		},
	}

	for categoryName, items := range catalog {
		category := &product.Category{
			Name:     categoryName,
			Slug:     product.Slugify(categoryName),
			IsActive: true,
		}
		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", categoryName, err)
		}

		for _, item := range items {
			p := &product.Product{
				Name:        item.name,
				Slug:        product.Slugify(item.name),
				Description: item.description,
				Price:       item.price,
				CategoryID:  category.ID,
				ImageURL:    item.imageURL,
				Stock:       item.stock,
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("failed to seed product %q: %w", item.name, err)
			}
		}
	}
	return nil
}
