package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviewdesk/internal/adapters/gbp"
	server "reviewdesk/internal/adapters/http_server"
	"reviewdesk/internal/adapters/llm"
	"reviewdesk/internal/adapters/observability"
	redisad "reviewdesk/internal/adapters/redis"
	"reviewdesk/internal/adapters/whatsapp"
	"reviewdesk/internal/app"
	"reviewdesk/internal/shared"
	mysqlrepo "reviewdesk/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	dir := app.NewClientDirectory(repo, cache, cfg.CacheTTL)

	gen, err := llm.New(llm.Config{
		APIKey: cfg.OpenAIKey,
		OrgID:  cfg.OpenAIOrg,
		Model:  cfg.OpenAIModel,
		Prompt: cfg.DraftPrompt,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize draft generator")
	}
	notifier, err := whatsapp.New(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat notifier")
	}
	publisher, err := gbp.New(cfg.GBPBase, cfg.GBPToken, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review publisher")
	}

	coord := app.NewCoordinator(dir, repo, gen, notifier, publisher, cfg.DraftTimeout, cfg.PublishTimeout)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{C: coord})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("webhook server listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
