package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inspection "inspection-cloud/internal/inspection/domain"
	inspectionrepo "inspection-cloud/internal/inspection/infrastructure/postgres"
	"inspection-cloud/internal/observability/metrics"
	"inspection-cloud/internal/polling"
	"inspection-cloud/internal/prediction/application"
	predictionrepo "inspection-cloud/internal/prediction/infrastructure/postgres"
	predictionhttp "inspection-cloud/internal/prediction/interfaces/http"
	"inspection-cloud/internal/prediction/notify"
	"inspection-cloud/internal/simulator"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	rootCmd := &cobra.Command{
		Use:   "inspection-cloud",
		Short: "Inspection failure-prediction backend",
		Run: func(cmd *cobra.Command, args []string) {
			runServe(logger)
		},
	}

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one sensor poll cycle and exit",
		Run: func(cmd *cobra.Command, args []string) {
			runPollOnce(logger)
		},
	}

	var simulateMode string
	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print one simulated sensor reading as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			runSimulate(logger, simulateMode)
		},
	}
	simulateCmd.Flags().StringVar(&simulateMode, "mode", "random", "risk posture: normal, warning, critical or random")

	rootCmd.AddCommand(pollCmd, simulateCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.Fatalf("command error: %v", err)
	}
}

func runServe(logger *log.Logger) {
	cfg := loadConfig()

	db := openDB(cfg, logger)
	defer db.Close()

	metrics.Init()
	service, scheduler, pollingCfg := buildPolling(db, cfg, logger)

	handler, err := predictionhttp.NewHandler(service)
	if err != nil {
		logger.Fatalf("assessment handler error: %v", err)
	}

	scheduler.Start(pollingCfg.Interval())

	mux := http.NewServeMux()
	mux.Handle("/api/v1/inspections/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Printf("shutting down")
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func runPollOnce(logger *log.Logger) {
	cfg := loadConfig()

	db := openDB(cfg, logger)
	defer db.Close()

	metrics.Init()
	_, scheduler, _ := buildPolling(db, cfg, logger)
	scheduler.RunCycle(context.Background())
}

func runSimulate(logger *log.Logger, mode string) {
	sim := simulator.New(simulator.Mode(mode))
	input, err := sim.Read(context.Background(), inspection.Inspection{})
	if err != nil {
		logger.Fatalf("simulate error: %v", err)
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(input); err != nil {
		logger.Fatalf("encode error: %v", err)
	}
}

func openDB(cfg config, logger *log.Logger) *sql.DB {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}
	return db
}

func buildPolling(db *sql.DB, cfg config, logger *log.Logger) (*application.Service, *polling.Scheduler, polling.Config) {
	pollingCfg, err := polling.LoadConfig()
	if err != nil {
		logger.Fatalf("polling config error: %v", err)
	}

	inspections := inspectionrepo.NewInspectionRepository(db)
	assessments := predictionrepo.NewAssessmentRepository(db)
	source := simulator.New(simulator.Mode(pollingCfg.SimulatorMode))

	logNotifier, err := notify.NewLogNotifier(logger)
	if err != nil {
		logger.Fatalf("escalation log notifier error: %v", err)
	}
	notifiers := []application.Notifier{logNotifier}
	if pollingCfg.WebhookURL != "" {
		webhook, err := notify.NewWebhookNotifier(pollingCfg.WebhookURL, notify.WithErrorLog(logger.Printf))
		if err != nil {
			logger.Fatalf("escalation webhook error: %v", err)
		}
		notifiers = append(notifiers, webhook)
	}

	service, err := application.NewService(
		inspections, assessments, source, logger,
		application.WithNotifier(notify.NewMultiNotifier(notifiers...)),
	)
	if err != nil {
		logger.Fatalf("assessment service error: %v", err)
	}

	scheduler, err := polling.NewScheduler(service, logger)
	if err != nil {
		logger.Fatalf("scheduler error: %v", err)
	}
	return service, scheduler, pollingCfg
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
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
