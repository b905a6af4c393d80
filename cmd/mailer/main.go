// Command mailer consumes mail jobs from RabbitMQ and delivers them over SMTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/doomzday403/admin-console/internal/infrastructure/queue"
	"github.com/doomzday403/admin-console/internal/pkg/config"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
	"github.com/doomzday403/admin-console/pkg/logger"
)

const sendTimeout = 30 * time.Second

func main() {
	cfg := config.LoadMailer()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "mailer",
	})

	r, err := newRenderer(cfg.Mail.From, cfg.Mail.ResetURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load mail templates")
	}

	client, err := newSMTPClient(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create smtp client")
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open rabbitmq channel")
	}
	defer ch.Close()

	q, err := queue.DeclareMailQueue(ch)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to declare mail queue")
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to consume mail queue")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consume(ctx, deliveries, r, client, log)
	}()

	log.Info().Str("queue", q.Name).Msg("waiting for mail jobs")
	<-ctx.Done()
	log.Info().Msg("shutting down mailer")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	wg.Wait()
	log.Info().Msg("mailer stopped")
}

func newSMTPClient(cfg config.MailConfig) (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(cfg.SMTPPort)}
	if cfg.SMTPPort == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUsername),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	return mail.NewClient(cfg.SMTPHost, opts...)
}

// consume handles deliveries until ctx is cancelled or the channel closes.
// Jobs that can never be sent are dropped; delivery failures are requeued.
func consume(ctx context.Context, deliveries <-chan amqp.Delivery, r *renderer, client *mail.Client, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn().Msg("delivery channel closed")
				return
			}

			var j job
			if err := json.Unmarshal(d.Body, &j); err != nil {
				log.Error().Err(err).Msg("malformed mail job")
				metrics.MailJobs.WithLabelValues("rejected").Inc()
				_ = d.Nack(false, false)
				continue
			}

			m, err := r.build(j)
			if err != nil {
				log.Error().Err(err).Str("type", j.Type).Msg("mail job rejected")
				metrics.MailJobs.WithLabelValues("rejected").Inc()
				_ = d.Nack(false, false)
				continue
			}

			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			start := time.Now()
			err = client.DialAndSendWithContext(sendCtx, m)
			cancel()
			metrics.MailSendDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				log.Error().Err(err).Str("type", j.Type).Msg("mail delivery failed, requeueing")
				metrics.MailJobs.WithLabelValues("error").Inc()
				_ = d.Nack(false, true)
				continue
			}

			metrics.MailJobs.WithLabelValues("sent").Inc()
			log.Info().Str("type", j.Type).Msg("mail delivered")
			_ = d.Ack(false)
		}
	}
}
