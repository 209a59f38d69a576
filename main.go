package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/streadway/amqp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vitrine/internal/config"
	"vitrine/internal/middleware"
	"vitrine/internal/models"
	"vitrine/internal/repositories"
	"vitrine/internal/server"
	"vitrine/internal/services"
	"vitrine/internal/storage"
	"vitrine/pkg/kafka"
	"vitrine/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// --- Storage, cache, uploads and events ---
	deps, cleanup, err := buildDependencies(ctx, cfg, afero.NewOsFs())
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	if cfg.SeedProducts {
		seedProducts(ctx, deps.Products)
	}

	// --- Fiber App ---
	app := server.New(cfg, deps)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// buildDependencies opens every backing service named by cfg.
// The returned cleanup closes them in reverse order.
func buildDependencies(ctx context.Context, cfg config.Config, fs afero.Fs) (server.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	products, users, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return server.Dependencies{}, nil, err
	}
	closers = append(closers, closeStore)

	deps := server.Dependencies{Products: products, Users: users}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable at %s, running without cache and rate limiting: %v", cfg.RedisAddr, err)
			rdb.Close()
		} else {
			log.Printf("Connected to Redis at %s", cfg.RedisAddr)
			closers = append(closers, func() { rdb.Close() })
			deps.Products = repositories.NewCachedProductRepository(products, repositories.NewRedisListCache(rdb), cfg.ProductCacheTTL)
			deps.RateCounter = middleware.NewRedisCounter(rdb)
		}
	}

	images, err := storage.NewImageStore(fs, storage.Config{
		Dir:          cfg.UploadDir,
		PublicPrefix: cfg.UploadPublicPrefix,
		MaxBytes:     cfg.UploadMaxBytes,
	})
	if err != nil {
		cleanup()
		return server.Dependencies{}, nil, err
	}
	deps.Images = images

	publisher, closePublisher, err := openPublisher(cfg)
	if err != nil {
		cleanup()
		return server.Dependencies{}, nil, err
	}
	if closePublisher != nil {
		closers = append(closers, closePublisher)
	}
	deps.Publisher = publisher

	return deps, cleanup, nil
}

// openStore returns the product and user repositories for cfg.DBDriver.
func openStore(ctx context.Context, cfg config.Config) (repositories.ProductRepository, repositories.UserRepository, func(), error) {
	switch cfg.DBDriver {
	case config.DriverMemory:
		log.Println("Using in-memory repositories")
		return repositories.NewMemoryProductRepository(), repositories.NewMemoryUserRepository(), func() {}, nil

	case config.DriverSQLite, config.DriverPostgres:
		var dialector gorm.Dialector
		if cfg.DBDriver == config.DriverSQLite {
			dialector = sqlite.Open(cfg.DatabaseDSN)
		} else {
			dialector = postgres.Open(cfg.DatabaseDSN)
		}
		db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.AutoMigrate(&models.Product{}, &models.User{}); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		log.Printf("Connected to %s database", cfg.DBDriver)
		closeDB := func() {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db), closeDB, nil

	case config.DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		users := repositories.NewMongoUserRepository(db)
		if err := users.EnsureIndexes(connectCtx); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, nil, err
		}
		log.Printf("Connected to MongoDB database %s", cfg.MongoDatabase)
		closeMongo := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Error disconnecting MongoDB: %v", err)
			}
		}
		return repositories.NewMongoProductRepository(db), users, closeMongo, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

// openPublisher returns the event publisher for cfg.EventsBroker, or nil when events are off.
func openPublisher(cfg config.Config) (services.EventPublisher, func(), error) {
	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		if cfg.RabbitMQConsume {
			logEvent := func(msg amqp.Delivery) error {
				log.Printf("Received %s event (Tag: %d): %s", msg.Type, msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if err := mqClient.Consume(logEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}
		return mqClient, func() { mqClient.Close() }, nil

	case config.BrokerKafka:
		publisher, err := kafka.NewPublisher(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Kafka publisher: %w", err)
		}
		return publisher, func() { publisher.Close() }, nil
	}
	log.Println("Product events disabled")
	return nil, nil, nil
}

// seedProducts populates an empty product repository with sample listings.
func seedProducts(ctx context.Context, repo repositories.ProductRepository) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		log.Printf("Error checking products before seeding: %v", err)
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Titulo: "Mesa de jantar", Descricao: "Mesa de madeira maciça para seis pessoas", Preco: 450.00, Categoria: "moveis", Status: models.StatusAtivo},
		{Titulo: "Bicicleta aro 29", Descricao: "Bicicleta usada em bom estado, 21 marchas", Preco: 899.90, Categoria: "esportes", Status: models.StatusAtivo},
		{Titulo: "Notebook", Descricao: "Notebook com 8GB de RAM e SSD de 256GB", Preco: 1800.00, Categoria: "eletronicos", Status: models.StatusVendido},
	}

	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Titulo, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Titulo, products[i].ID)
		}
	}
}
