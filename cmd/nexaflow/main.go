package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/config"
	"github.com/devie/nexaflow-crm/internal/currency"
	"github.com/devie/nexaflow-crm/internal/db"
	httpx "github.com/devie/nexaflow-crm/internal/http"
	"github.com/devie/nexaflow-crm/internal/invoice"
	"github.com/devie/nexaflow-crm/internal/mail"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	conv := currency.NewConverter(
		&currency.GormStore{DB: gdb},
		currency.NewHTTPProvider(cfg.RateAPIURL),
		log,
	)

	mailer := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	invSvc := &invoice.Service{
		DB:      gdb,
		Mailer:  mailer,
		BaseURL: cfg.BaseURL,
		Log:     log,
	}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, conv, invSvc, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
