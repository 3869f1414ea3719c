package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/DivyeshVarade/grocery-scout/internal/api"
	"github.com/DivyeshVarade/grocery-scout/internal/config"
	"github.com/DivyeshVarade/grocery-scout/internal/consumer"
	"github.com/DivyeshVarade/grocery-scout/internal/entity"
	"github.com/DivyeshVarade/grocery-scout/internal/repository"
	"github.com/DivyeshVarade/grocery-scout/internal/service"
	"github.com/DivyeshVarade/grocery-scout/migrations"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB")
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, err
}

func main() {
	cfg := config.Load()

	db, err := connectDB(cfg.MySQLDSN)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(3, db); err != nil {
		log.Fatalf("Failed to migrate tables: %v", err)
	}
	if err := migrations.Seed(context.Background(), db); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := config.EnsureTopics(cfg.KafkaBrokers); err != nil {
		log.Printf("Failed to ensure kafka topics (continuing without): %v", err)
	}

	ordersWriter := config.NewKafkaWriter(cfg.KafkaBrokers, config.TopicOrdersCreated)
	notificationsWriter := config.NewKafkaWriter(cfg.KafkaBrokers, config.TopicNotificationsEmail)
	inventoryWriter := config.NewKafkaWriter(cfg.KafkaBrokers, config.TopicInventoryUpdates)
	recipesWriter := config.NewKafkaWriter(cfg.KafkaBrokers, config.TopicRecipesGenerated)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	publisher := service.NewEventPublisher(ordersWriter, notificationsWriter, inventoryWriter, recipesWriter)
	orderService := service.NewOrderService(orderRepo, productRepo, publisher)
	trendingService := service.NewTrendingService(rdb, productRepo)
	recipeService := service.NewRecipeService(recipeRepo, productRepo, publisher, cfg.Gemini, nil)

	// consumers
	ctx := context.Background()
	inventoryReader := config.NewKafkaReader(cfg.KafkaBrokers, config.TopicOrdersCreated, "inventory-group")
	inventoryConsumer := consumer.NewInventoryConsumer(inventoryReader, productRepo, trendingService, rdb)
	go inventoryConsumer.Run(ctx)

	auditConsumer := consumer.NewAuditConsumer(auditRepo)
	go auditConsumer.Run(ctx, config.NewKafkaReader(cfg.KafkaBrokers, config.TopicNotificationsEmail, "grocery-scout-group"), "ORDER_STATUS_CHANGED")
	go auditConsumer.Run(ctx, config.NewKafkaReader(cfg.KafkaBrokers, config.TopicRecipesGenerated, "grocery-scout-group"), "RECIPE_GENERATED")
	go auditConsumer.Run(ctx, config.NewKafkaReader(cfg.KafkaBrokers, config.TopicInventoryUpdates, "grocery-scout-group"), "INVENTORY_UPDATE")

	authHandler := api.NewAuthHandler(userRepo, cfg.JWTSecret)
	productHandler := api.NewProductHandler(productRepo)
	orderHandler := api.NewOrderHandler(orderService)
	cartHandler := api.NewCartHandler(cartRepo, productRepo, orderService)
	recipeHandler := api.NewRecipeHandler(recipeService, orderService, userRepo)
	trendingHandler := api.NewTrendingHandler(trendingService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/api/public/trending", trendingHandler.Get)
	e.GET("/api/public/products", productHandler.ListActive)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "grocery-scout",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	jwtMiddleware := echojwt.JWT([]byte(cfg.JWTSecret))

	user := e.Group("/api/user", jwtMiddleware)
	user.GET("/products", productHandler.ListActive)
	user.GET("/products/search", productHandler.Search)
	user.GET("/products/categories", productHandler.Categories)
	user.GET("/products/category/:category", productHandler.ByCategory)
	user.GET("/products/:id", productHandler.Get)
	user.GET("/cart", cartHandler.Get)
	user.POST("/cart/add", cartHandler.Add)
	user.PUT("/cart/:productId", cartHandler.Update)
	user.DELETE("/cart/:productId", cartHandler.Remove)
	user.DELETE("/cart", cartHandler.Clear)
	user.POST("/cart/checkout", cartHandler.Checkout)
	user.POST("/orders", orderHandler.PlaceOrder)
	user.GET("/orders", orderHandler.MyOrders)
	user.POST("/chef/generate", recipeHandler.Generate)
	user.GET("/recipes", recipeHandler.MyRecipes)
	user.DELETE("/recipes/:id", recipeHandler.Delete)
	user.POST("/recipes/:id/to-cart", recipeHandler.ToCart)

	admin := e.Group("/api/admin", jwtMiddleware, api.RequireRole(entity.RoleAdmin, entity.RoleManager))
	admin.POST("/products", productHandler.Create)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.GET("/orders", orderHandler.ListPaginated)
	admin.GET("/orders/stats", orderHandler.DashboardStats)
	admin.GET("/orders/status/:status", orderHandler.ListByStatus)
	admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)

	e.Logger.Fatal(e.Start(cfg.ServerAddr))
}
