package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"ADMINKA1.0/internal/aggregate"
	"ADMINKA1.0/internal/app/admin"
	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/bulk"
	"ADMINKA1.0/internal/config"
	"ADMINKA1.0/internal/lifecycle"
	"ADMINKA1.0/internal/metrics"
	"ADMINKA1.0/internal/mw"
	"ADMINKA1.0/internal/notify"
	"ADMINKA1.0/internal/redis"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/tools/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

func main() {
	logger.InitLogger()
	metrics.Init()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dsn := cfg.DB.DSN
	if dsn == "" {
		dsn = getPostgresDSN()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open postgres: %v", err)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	defer db.Close()

	// дедлайн на каждый поход в базу, на всех путях чтения и записи
	store := storage.WithTimeout(storage.NewPgStorage(db), cfg.DB.Timeout)

	redisClient := redis.NewClient(redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit.Rate)
	if err != nil {
		log.Fatalf("bad rate limit %q: %v", cfg.RateLimit.Rate, err)
	}
	limiterStore, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{
		Prefix: "adminka",
	})
	if err != nil {
		log.Fatalf("failed to init limiter store: %v", err)
	}
	rl := limiter.New(limiterStore, rate)

	auditLog := audit.NewLog(store)
	dispatcher := notify.NewDispatcher(store, notify.LogPusher{})
	lifecycleSvc := lifecycle.NewService(store, auditLog, dispatcher, cfg.DB.Timeout)
	composer := aggregate.NewComposer(store)
	operator := bulk.NewOperator(store, auditLog, cfg.Bulk.Workers)

	impl := admin.New(lifecycleSvc, composer, auditLog, operator, store)

	mux := chi.NewMux()
	mux.Use(mw.Logging)
	mux.Use(mw.RateLimiter(rl))

	mux.Get("/health", impl.HealthCheck)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		b, err := os.ReadFile("./api/swagger.json")
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			log.Printf("failed to read swagger.json: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(b); err != nil {
			log.Printf("failed to write response: %v", err)
		}
	})
	mux.HandleFunc("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	// всё остальное только для админов
	mux.Group(func(r chi.Router) {
		r.Use(mw.Auth(cfg.Auth.Tokens))
		r.Mount("/", impl.Routes())
	})

	log.Printf("admin API listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		log.Fatalf("failed to listen and serve: %v", err)
	}
}
