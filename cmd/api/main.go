package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/handler"
	"github.com/Dan9191/loan-service/internal/integrations/cbr"
	"github.com/Dan9191/loan-service/internal/integrations/profile"
	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/Dan9191/loan-service/internal/scheduler"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/Dan9191/loan-service/internal/utils/email"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db, []byte(cfg.EncryptionKey))
	rates := service.NewRateTable(cfg.DefaultRates)
	profiles := profile.NewClient(cfg, logger)
	publisher := events.NewLogPublisher(logger)
	notifier := email.NewSender(cfg, logger)
	svc := service.NewService(repo, rates, profiles, publisher, notifier, logger, cfg)
	cbrClient := cbr.NewClient(cfg, logger)
	h := handler.NewHandler(svc, cbrClient, logger)

	// Start the EMI reminder scheduler
	sched := scheduler.NewScheduler(repo, publisher, notifier, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(logger))

	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")

	// Protected routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))

	api.HandleFunc("/applications", h.CreateApplication).Methods("POST")
	api.HandleFunc("/applications", h.ListMyApplications).Methods("GET")
	api.HandleFunc("/applications/all", h.ListAllApplications).Methods("GET")
	api.HandleFunc("/applications/{id}", h.GetApplication).Methods("GET")
	api.HandleFunc("/applications/{id}/review", h.ReviewApplication).Methods("PUT")
	api.HandleFunc("/applications/{id}/approve", h.ApproveApplication).Methods("PUT")
	api.HandleFunc("/applications/{id}/reject", h.RejectApplication).Methods("PUT")

	api.HandleFunc("/loans", h.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", h.ListMyLoans).Methods("GET")
	api.HandleFunc("/loans/all", h.ListAllLoans).Methods("GET")
	api.HandleFunc("/loans/{id}", h.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{id}/emi-schedule", h.GenerateSchedule).Methods("POST")
	api.HandleFunc("/loans/{id}/emi-schedule", h.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{id}/repayments", h.RecordPayment).Methods("POST")
	api.HandleFunc("/loans/{id}/repayments", h.ListLoanPayments).Methods("GET")
	api.HandleFunc("/loans/{id}/outstanding-balance", h.GetOutstandingBalance).Methods("GET")
	api.HandleFunc("/loans/{id}/completed-count", h.GetCompletedPaymentsCount).Methods("GET")

	api.HandleFunc("/emi-schedules/{id}", h.GetScheduleEntry).Methods("GET")
	api.HandleFunc("/emi-schedules/{id}/repayments", h.ListEntryPayments).Methods("GET")
	api.HandleFunc("/repayments/{id}", h.GetPayment).Methods("GET")

	api.HandleFunc("/rates", h.ListRates).Methods("GET")
	api.HandleFunc("/rates/reset", h.ResetRates).Methods("POST")
	api.HandleFunc("/rates/key-rate", h.GetKeyRate).Methods("GET")
	api.HandleFunc("/rates/{loanType}", h.GetRate).Methods("GET")
	api.HandleFunc("/rates/{loanType}", h.UpdateRate).Methods("PUT")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
