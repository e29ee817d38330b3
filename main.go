package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"rule37-cloud/internal/audit"
	"rule37-cloud/internal/auth"
	"rule37-cloud/internal/entry"
	ledger "rule37-cloud/internal/ledger/domain"
	"rule37-cloud/internal/observability/metrics"
	"rule37-cloud/internal/rule37/application"
	rule37 "rule37-cloud/internal/rule37/domain"
	rule37repo "rule37-cloud/internal/rule37/infrastructure/postgres"
	rule37interfaces "rule37-cloud/internal/rule37/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	uploadCfg, err := application.LoadUploadConfig()
	if err != nil {
		logger.Fatalf("upload config error: %v", err)
	}

	processor, err := rule37.NewFileProcessor(ledger.NewSpreadsheetParser(), rule37.NewCalculator())
	if err != nil {
		logger.Fatalf("file processor error: %v", err)
	}
	runRepo := rule37repo.NewRunRepository(db)

	orchestrator, err := application.NewUploadOrchestrator(processor, runRepo, uploadCfg, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("upload orchestrator error: %v", err)
	}
	runService, err := application.NewRunService(runRepo)
	if err != nil {
		logger.Fatalf("run service error: %v", err)
	}

	sweeper, err := application.NewRetentionSweeper(runRepo, uploadCfg.SweepSchedule, systemClock{}, logger)
	if err != nil {
		logger.Fatalf("retention sweeper error: %v", err)
	}
	if err := sweeper.Start(); err != nil {
		logger.Fatalf("retention sweeper start error: %v", err)
	}
	defer sweeper.Stop()
	sweeper.RunOnce(context.Background())

	uploadHandler, err := rule37interfaces.NewUploadHandler(orchestrator, auditRepo, cfg.DefaultTenantID, logger)
	if err != nil {
		logger.Fatalf("upload handler error: %v", err)
	}
	runHandler, err := rule37interfaces.NewRunHandler(
		runService,
		rule37interfaces.NewExcelExportStrategy(),
		rule37interfaces.NewPDFExportStrategy(),
		auditRepo,
		cfg.DefaultTenantID,
		logger,
	)
	if err != nil {
		logger.Fatalf("run handler error: %v", err)
	}

	entryService, err := entry.NewService(entry.NewPostgresRepository(db), systemClock{})
	if err != nil {
		logger.Fatalf("entry service error: %v", err)
	}
	entryHandler, err := entry.NewHandler(entryService, cfg.DefaultTenantID)
	if err != nil {
		logger.Fatalf("entry handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/ledgers/upload", uploadHandler)
	mux.Handle("/api/v1/rule37/runs", runHandler)
	mux.Handle("/api/v1/rule37/runs/", runHandler)
	mux.Handle("/api/v1/entries", entryHandler)
	mux.Handle("/api/v1/entries/", entryHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	DefaultTenantID string
	JWTSecret       string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		DefaultTenantID: getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
