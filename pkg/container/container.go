package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"biblioconnect-backend/internal/config"
	infraCache "biblioconnect-backend/internal/infrastructure/cache"
	"biblioconnect-backend/internal/infrastructure/database"
	"biblioconnect-backend/internal/infrastructure/storage"
	"biblioconnect-backend/pkg/cache"
	"biblioconnect-backend/pkg/jwt"

	bookHandler "biblioconnect-backend/internal/domains/book/handler"
	bookRepo "biblioconnect-backend/internal/domains/book/repository"
	bookService "biblioconnect-backend/internal/domains/book/service"
	notificationHandler "biblioconnect-backend/internal/domains/notification/handler"
	notificationService "biblioconnect-backend/internal/domains/notification/service"
	"biblioconnect-backend/internal/domains/rental/gateway"
	"biblioconnect-backend/internal/domains/rental/gateway/edipay"
	rentalHandler "biblioconnect-backend/internal/domains/rental/handler"
	rentalRepo "biblioconnect-backend/internal/domains/rental/repository"
	rentalService "biblioconnect-backend/internal/domains/rental/service"
	reviewHandler "biblioconnect-backend/internal/domains/review/handler"
	reviewRepo "biblioconnect-backend/internal/domains/review/repository"
	reviewService "biblioconnect-backend/internal/domains/review/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is a
// singleton living for the whole process.
type Container struct {
	// ---------- infrastructure ----------
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Covers     *storage.CoverStorage
	Gateway    gateway.PaymentGateway

	// ---------- repositories ----------
	BookRepo   bookRepo.BookRepository
	RentalRepo rentalRepo.Repository
	ReviewRepo reviewRepo.Repository

	// ---------- services ----------
	BookService         bookService.BookService
	RentalService       rentalService.RentalService
	ReviewService       reviewService.ReviewService
	NotificationService notificationService.NotificationService

	// ---------- handlers ----------
	BookHandler         *bookHandler.BookHandler
	RentalHandler       *rentalHandler.RentalHandler
	ReviewHandler       *reviewHandler.ReviewHandler
	NotificationHandler *notificationHandler.NotificationHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the whole graph in dependency order: config,
// infrastructure, repositories, services, handlers. A failure at any
// step aborts startup.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ----------------------------------------
	// CONFIGURATION
	// ----------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ----------------------------------------
	// DATABASE
	// ----------------------------------------
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// ----------------------------------------
	// CACHE
	// ----------------------------------------
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			// cache misses are survivable, a dead Redis is not fatal
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// ----------------------------------------
	// SHARED COMPONENTS
	// ----------------------------------------
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	covers, err := storage.NewCoverStorage(cfg.MinIO)
	if err != nil {
		// covers are decorative; the rental flow works without them
		log.Printf("⚠️  Cover storage unavailable (non-critical): %v", err)
	}
	c.Covers = covers

	c.Gateway = edipay.NewClient(edipay.Config{
		BaseURL: cfg.Gateway.BaseURL,
		Secret:  cfg.Gateway.Secret,
		Sender:  cfg.Gateway.Sender,
		Timeout: time.Duration(cfg.Gateway.Timeout) * time.Second,
	})

	// ----------------------------------------
	// REPOSITORIES
	// ----------------------------------------
	c.BookRepo = bookRepo.NewPostgresBookRepository(db.Pool)
	c.RentalRepo = rentalRepo.NewPostgresRepository(db.Pool)
	c.ReviewRepo = reviewRepo.NewPostgresRepository(db.Pool)

	// ----------------------------------------
	// SERVICES
	// ----------------------------------------
	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache, c.Covers)

	c.RentalService = rentalService.NewRentalService(
		c.RentalRepo,
		c.BookRepo,
		c.Gateway,
		c.Cache,
		rentalService.Config{
			Period:         time.Duration(cfg.Rental.PeriodDays) * 24 * time.Hour,
			CallbackURL:    cfg.App.PublicURL + "/api/v1/webhooks/payment",
			GatewayTimeout: time.Duration(cfg.Gateway.Timeout) * time.Second,
		},
	)

	c.ReviewService = reviewService.NewReviewService(c.ReviewRepo, c.BookRepo, c.Cache)

	c.NotificationService = notificationService.NewNotificationService(
		c.RentalRepo,
		time.Duration(cfg.Rental.UpcomingWindowDays)*24*time.Hour,
	)

	// ----------------------------------------
	// HANDLERS
	// ----------------------------------------
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.RentalHandler = rentalHandler.NewRentalHandler(c.RentalService)
	c.ReviewHandler = reviewHandler.NewReviewHandler(c.ReviewService)
	c.NotificationHandler = notificationHandler.NewNotificationHandler(c.NotificationService)

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// Cleanup releases infrastructure connections. Safe to call once at
// shutdown.
func (c *Container) Cleanup() {
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		}
	}
	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}
	log.Println("🧹 Container cleaned up")
}
