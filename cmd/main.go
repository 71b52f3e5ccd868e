package main

import (
	"context"

	"autostock/internal/handler"
	mid "autostock/internal/middleware"
	"autostock/internal/model"
	"autostock/internal/store"
	"autostock/pkg/config"
	"autostock/pkg/database"
	"autostock/pkg/jwtutil"
	"autostock/pkg/logger"
	"autostock/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting autostock", appConfig.LogConfig()...)

	db, err := database.Open(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db,
		&model.Plan{},
		&model.Business{},
		&model.User{},
		&model.Product{},
		&model.Sale{},
		&model.Notification{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	jwt := jwtutil.NewJWTUtil(&appConfig.JWT)

	users := store.NewUserStore(db)
	businesses := store.NewBusinessStore(db)
	plans := store.NewPlanStore(db)
	products := store.NewProductStore(db)
	sales := store.NewSaleStore(db)
	notifications := store.NewNotificationStore(db)

	if appConfig.Bootstrap.SuperAdminUsername != "" && appConfig.Bootstrap.SuperAdminPassword != "" {
		admin, created, err := users.EnsureSuperAdmin(context.Background(),
			appConfig.Bootstrap.SuperAdminUsername, appConfig.Bootstrap.SuperAdminPassword)
		if err != nil {
			log.Fatal("Failed to seed superadmin", zap.Error(err))
		}
		if created {
			log.Info("Superadmin account created", zap.String("username", admin.Username))
		}
	}

	if _, active, err := businesses.CountByStatus(context.Background()); err == nil {
		prometheus.UpdateActiveBusinesses(active)
	}

	authHandler := handler.NewAuthHandler(users, jwt)
	superAdminHandler := handler.NewSuperAdminHandler(businesses, plans, users)
	businessHandler := handler.NewBusinessHandler(products, users, sales, notifications)
	sellerHandler := handler.NewSellerHandler(products, sales)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	api := e.Group("/api", mid.Authenticate(users, jwt))
	api.GET("/me", authHandler.Me)
	api.POST("/change-password", authHandler.ChangePassword)

	super := api.Group("/superadmin", mid.RequireRoles(businesses, model.RoleSuperAdmin))
	super.POST("/businesses", superAdminHandler.CreateBusiness)
	super.GET("/businesses", superAdminHandler.ListBusinesses)
	super.GET("/businesses/:id", superAdminHandler.GetBusiness)
	super.PUT("/businesses/:id/status", superAdminHandler.SetBusinessStatus)
	super.POST("/businesses/:id/reset-admin-password", superAdminHandler.ResetAdminPassword)
	super.DELETE("/businesses/:id", superAdminHandler.DeleteBusiness)
	super.POST("/plans", superAdminHandler.CreatePlan)
	super.PUT("/plans/:id", superAdminHandler.UpdatePlan)
	super.GET("/plans", superAdminHandler.ListPlans)
	super.GET("/stats", superAdminHandler.PlatformStats)

	business := api.Group("/business", mid.RequireRoles(businesses, model.RoleAdmin))
	business.GET("/products", businessHandler.ListProducts)
	business.POST("/products", businessHandler.CreateProduct)
	business.GET("/products/:id", businessHandler.GetProduct)
	business.PUT("/products/:id", businessHandler.UpdateProduct)
	business.DELETE("/products/:id", businessHandler.DeleteProduct)
	business.GET("/users", businessHandler.ListUsers)
	business.POST("/users", businessHandler.CreateSeller)
	business.PUT("/users/:id/status", businessHandler.SetUserStatus)
	business.POST("/users/:id/reset-password", businessHandler.ResetUserPassword)
	business.POST("/sales", businessHandler.RecordSale)
	business.GET("/sales", businessHandler.ListSales)
	business.GET("/notifications", businessHandler.ListNotifications)
	business.PUT("/notifications/:id/read", businessHandler.MarkNotificationRead)

	seller := api.Group("/seller", mid.RequireRoles(businesses, model.RoleSeller))
	seller.GET("/products", sellerHandler.ListProducts)
	seller.GET("/products/code/:code", sellerHandler.GetProductByCode)
	seller.POST("/sales", sellerHandler.RecordSale)
	seller.GET("/sales", sellerHandler.ListMySales)

	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
