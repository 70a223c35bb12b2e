package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/calebrws/investor-portal/internal/config"
	"github.com/calebrws/investor-portal/internal/infra/assistant"
	"github.com/calebrws/investor-portal/internal/infra/database"
	"github.com/calebrws/investor-portal/internal/infra/http/handlers"
	"github.com/calebrws/investor-portal/internal/infra/http/middleware"
	"github.com/calebrws/investor-portal/internal/infra/ingest"
	"github.com/calebrws/investor-portal/internal/infra/mail"
	"github.com/calebrws/investor-portal/internal/infra/queue"
	"github.com/calebrws/investor-portal/internal/usecase"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	// Money fields serialize as JSON numbers, matching the API contract.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	// Repositories
	investorRepo := database.NewInvestorRepository(db)
	leadRepo := database.NewLeadRepository(db)
	enrollmentRepo := database.NewEnrollmentRepository(db)
	userRepo := database.NewUserRepository(db)
	uploadRepo := database.NewUploadHistoryRepository(db)
	chunkRepo := database.NewDataChunkRepository(db)
	chatRepo := database.NewChatHistoryRepository(db)

	// Optional broker. The portal runs fine without it; imports just skip
	// the completed-event publish.
	var (
		rabbitConn *amqp091.Connection
		producer   usecase.QueueProducerInterface
		rabbitMQ   *queue.RabbitMQ
	)
	if cfg.AMQPURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.AMQPURL)
		if err != nil {
			log.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		defer rabbitMQ.Conn.Close()
		defer rabbitMQ.Ch.Close()
		rabbitConn = rabbitMQ.Conn
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	}

	// Optional assistant.
	var assistantSvc *assistant.Service
	if cfg.GeminiAPIKey != "" {
		assistantSvc, err = assistant.NewService(ctx, cfg.GeminiAPIKey, cfg.AssistantModel,
			chunkRepo, chatRepo, investorRepo, leadRepo, enrollmentRepo, log)
		if err != nil {
			log.Fatal("assistant initialization failed", zap.Error(err))
		}
	}

	// The worker refreshes assistant chunks when the broker announces a
	// finished import. It needs both optional pieces.
	if rabbitMQ != nil && assistantSvc != nil {
		worker := queue.NewWorker(rabbitMQ.Ch, assistantSvc, log)
		go worker.Start(queue.QueueName)
	}

	var emailSvc usecase.EmailService
	if cfg.MailHost != "" && cfg.ReportTo != "" {
		emailSvc = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)
	}

	// UseCases
	parser := ingest.NewParser()
	importUC := usecase.NewImportFileUseCase(
		investorRepo, leadRepo, enrollmentRepo, uploadRepo,
		parser, producer, emailSvc, cfg.ReportTo, log,
	)
	reconcileUC := usecase.NewReconcileUseCase(leadRepo, enrollmentRepo, log)
	authenticateUC := usecase.NewAuthenticateUserUseCase(userRepo, log)
	createUserUC := usecase.NewCreateUserUseCase(userRepo)

	autoSetup := &usecase.AutoSetupUseCase{
		InvestorRepo:   investorRepo,
		UserRepo:       userRepo,
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		CreateUser:     createUserUC,
		Import:         importUC,
		Reconcile:      reconcileUC,
		UploadsDir:     cfg.UploadsDir,
		Log:            log,
	}
	if err := autoSetup.Execute(ctx); err != nil {
		log.Fatal("auto setup failed", zap.Error(err))
	}

	// Sessions and handlers
	sessions := middleware.NewSessionManager(cfg.SessionSecret)

	authHandler := handlers.NewAuthHandler(authenticateUC, sessions, log)
	investorHandler := handlers.NewInvestorHandler(investorRepo, leadRepo, enrollmentRepo, log)
	adminHandler := &handlers.AdminHandler{
		ImportUC:       importUC,
		ReconcileUC:    reconcileUC,
		CreateUserUC:   createUserUC,
		InvestorRepo:   investorRepo,
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		UploadRepo:     uploadRepo,
		UploadsDir:     cfg.UploadsDir,
		Log:            log,
	}
	assistantHandler := handlers.NewAssistantHandler(assistantSvc, log)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, assistantSvc != nil)

	// Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
	}))
	r.Use(sessions.LoadUser)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	r.Route("/api/investor", func(r chi.Router) {
		r.Use(sessions.RequireInvestor)
		r.Get("/stats", investorHandler.Stats)
		r.Get("/leads", investorHandler.Leads)
		r.Get("/enrollments", investorHandler.Enrollments)
		r.Get("/roi", investorHandler.ROI)

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/process-data", assistantHandler.ProcessData)
			r.Post("/search", assistantHandler.Search)
			r.Get("/history", assistantHandler.History)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(sessions.RequireAdmin)
		r.Post("/upload-investor-data", adminHandler.UploadInvestorData)
		r.Get("/dashboard", adminHandler.Dashboard)
		r.Get("/investors", adminHandler.ListInvestors)
		r.Post("/investors", adminHandler.CreateInvestor)
		r.Put("/investors/{id}", adminHandler.UpdateInvestor)
		r.Post("/assistant/process-all", assistantHandler.ProcessAll)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("investor portal listening", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}
