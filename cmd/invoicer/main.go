package main

import (
	"context"
	"os"

	"invoicer/internal/amqp"
	"invoicer/internal/cli"
	"invoicer/internal/config"
	apphttp "invoicer/internal/http"
	"invoicer/internal/invoice"
	"invoicer/internal/log"
	"invoicer/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped", log.FieldOperation, log.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	store, closeStore, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	invoices := invoice.NewCache(cfg.InvoiceCacheSize, cfg.InvoiceCacheTTL, invoice.Business{
		Name:    cfg.BusinessName,
		Address: cfg.BusinessAddress,
		Phone:   cfg.BusinessPhone,
	}, logger.WithComponent(log.ComponentInvoice).Slog())

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithPublisher(invoices),
	}

	// bill events are optional; the server runs without a broker
	if cfg.AMQPURL != "" {
		amqpLogger := logger.WithComponent(log.ComponentAMQP)
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpLogger.Slog())
		if err != nil {
			amqpLogger.Warn("Failed to initialize AMQP client, continuing without bill events", log.FieldError, err)
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			amqpLogger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewBillService(store, opts...)
	srv := apphttp.NewServer(":"+cfg.Port, svc, invoices, logger)

	logger.Info("Invoicer ready",
		log.FieldBackend, cfg.DataBackend,
		"port", cfg.Port,
		"bills", len(svc.List("")))

	return srv.Run(ctx)
}
