// The notify worker drains mail.requested events published by the API and
// delivers them over SMTP. Runs as its own process so mail latency never
// touches request handling.
package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/config"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/mail"
	"github.com/nirmitee/clinic-api/internal/queue"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer log.Sync()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.RabbitExchange, cfg.RabbitQueue, cfg.RabbitBindKey)
	if err != nil {
		logger.Fatal("rabbit consumer init", zap.Error(err))
	}
	defer cons.Close()

	var sender mail.Sender
	if cfg.SendEmail {
		sender = &mail.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			Log:      logger,
		}
	} else {
		sender = &mail.LogSender{Log: logger}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notify worker up",
		zap.String("exchange", cfg.RabbitExchange),
		zap.String("queue", cfg.RabbitQueue),
		zap.String("key", cfg.RabbitBindKey),
		zap.Int("workers", cfg.Concurrency),
	)

	if err := cons.Consume(ctx, cfg.Concurrency, func(body []byte) error {
		var ev queue.MailRequested
		if err := json.Unmarshal(body, &ev); err != nil {
			// poison message: log and ack, retrying cannot fix it
			logger.Error("malformed mail event", zap.Error(err))
			return nil
		}
		if err := sender.SendMail(ev.To, ev.Subject, ev.Template, ev.Locals); err != nil {
			logger.Error("mail delivery failed", zap.String("to", ev.To), zap.Error(err))
			return err
		}
		return nil
	}); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
