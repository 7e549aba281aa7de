package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"carfest-ticketing/internal/auth"
	"carfest-ticketing/internal/codegen"
	"carfest-ticketing/internal/config"
	"carfest-ticketing/internal/database/migrations"
	"carfest-ticketing/internal/entry"
	"carfest-ticketing/internal/inventory"
	"carfest-ticketing/internal/kafka"
	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/merch"
	"carfest-ticketing/internal/orders"
	"carfest-ticketing/internal/utils"
	"carfest-ticketing/internal/vendors"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN)))
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := runner.RunMigrations(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	log.Info("DATABASE", "Migrations up to date")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	log.Info("REDIS", "Redis connection successful")

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.PaymentEvents,
			cfg.Kafka.Topics.OrderCompleted,
			cfg.Kafka.Topics.EntryVerified,
			cfg.Kafka.Topics.VendorRegistered,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
	}

	codes := codegen.NewGenerator(cfg.Festival.QRSecret)
	sessions := auth.NewRedisSessionStore(rdb)

	inventoryDB := &inventory.DB{Bun: bunDB}
	ordersDB := &orders.DB{Bun: bunDB, Inventory: inventoryDB}
	entryDB := &entry.DB{Bun: bunDB}
	vendorsDB := &vendors.DB{Bun: bunDB}
	merchDB := &merch.DB{Bun: bunDB}
	authDB := &auth.DB{Bun: bunDB}

	stripeVerifier, err := orders.NewStripeVerifier(log)
	if err != nil {
		log.Fatal("STRIPE", fmt.Sprintf("Payment gateway init failed: %v", err))
	}

	inventoryService := inventory.NewService(inventoryDB, log)
	orderService := &orders.Service{
		DB:          ordersDB,
		Tiers:       inventoryDB,
		Payments:    stripeVerifier,
		Codes:       codes,
		Logger:      log,
		Phase:       cfg.Festival.Phase,
		OrderNumber: utils.GenerateOrderNumber,
	}
	vendorService := &vendors.Service{DB: vendorsDB, Codes: codes, Logger: log}
	merchService := merch.NewService(merchDB, log)
	verifier := &entry.Verifier{
		Tickets: entryDB,
		Orders:  ordersDB,
		Tiers:   inventoryDB,
		Vendors: vendorsDB,
		Log:     entryDB,
		Logger:  log,
	}
	if producer != nil {
		orderService.Kafka = producer
		vendorService.Kafka = producer
		verifier.Kafka = producer
	}

	inventoryHandler := inventory.NewHandler(inventoryService)
	orderHandler := orders.NewHandler(orderService)
	vendorHandler := vendors.NewHandler(vendorService)
	merchHandler := merch.NewHandler(merchService)
	entryHandler := entry.NewHandler(verifier, entryDB, getEnv("ENTRY_LOCATION", "main-gate"))
	authHandler := &auth.Handler{
		DB:         authDB,
		Sessions:   sessions,
		Logger:     log,
		JWTSecret:  cfg.Auth.JWTSecret,
		SessionTTL: cfg.Auth.SessionTTL,
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.PaymentEvents, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.Start(consumerCtx, func(event kafka.PaymentEvent) {
			if event.Status != kafka.PaymentStatusSucceeded {
				return
			}
			if _, err := orderService.CompleteOrder(context.Background(), event.OrderNumber, event.PaymentRef); err != nil {
				log.LogOrder("PAYMENT_EVENT_FAILED", event.OrderNumber, err.Error())
			}
		})
		log.Info("KAFKA", "Payment event consumer started")
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Public storefront
		r.Get("/tiers", inventoryHandler.ListTiers)
		r.Get("/tiers/{tierID}", inventoryHandler.GetTier)
		r.Post("/orders", orderHandler.PlaceOrder)
		r.Post("/orders/{orderNumber}/complete", orderHandler.CompleteOrder)
		r.Get("/orders/{orderNumber}", orderHandler.GetOrder)
		r.Get("/orders/{orderNumber}/tickets", orderHandler.ListTickets)
		r.Get("/tickets/{code}/qr", entryHandler.TicketQR)
		r.Post("/vendors", vendorHandler.RegisterVendor)

		// Staff: gate scanners and admins
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret, sessions))
			r.Post("/entry/verify", entryHandler.VerifyCode)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				r.Route("/admin", func(r chi.Router) {
					r.Post("/tiers", inventoryHandler.CreateTier)
					r.Put("/tiers/{tierID}", inventoryHandler.UpdateTier)
					r.Get("/orders", orderHandler.ListOrders)
					r.Post("/orders/{orderNumber}/cash-complete", orderHandler.CompleteCashOrder)
					r.Post("/orders/{orderNumber}/refund", orderHandler.RefundOrder)
					r.Post("/orders/{orderNumber}/cancel", orderHandler.CancelOrder)
					r.Get("/vendors", vendorHandler.ListVendors)
					r.Get("/vendors/{vendorID}", vendorHandler.GetVendor)
					r.Put("/vendors/{vendorID}/status", vendorHandler.UpdateStatus)
					r.Get("/vendors/{vendorID}/access-logs", vendorHandler.AccessHistory)
					r.Get("/entry-logs", entryHandler.ListLogs)
					r.Post("/merch", merchHandler.CreateItem)
					r.Get("/merch", merchHandler.ListItems)
					r.Put("/merch/{itemID}", merchHandler.UpdateItem)
					r.Post("/merch/{itemID}/sell", merchHandler.Sell)
					r.Get("/merch-sales", merchHandler.ListSales)
				})
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", fmt.Sprintf("Carfest ticketing service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopConsumer()
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "Shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
