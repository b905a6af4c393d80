// Package queue delivers mail jobs off the request path. The dispatcher
// shards jobs by recipient over a fixed set of workers; senders hand each job
// to RabbitMQ or to the log.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/ports"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 10 * time.Second
)

// Dispatcher routes mail jobs to a fixed set of workers using consistent
// hashing on the recipient address, so mails to one address keep their order.
type Dispatcher struct {
	workers []chan domain.MailMessage
	sender  ports.MailSender
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.MailSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.MailMessage, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.MailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands a job to the worker responsible for its recipient. It never
// blocks: when that worker's buffer is full, or the workers have stopped, the
// job is dropped and counted.
func (d *Dispatcher) Enqueue(msg domain.MailMessage) {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.MailJobs.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("type", msg.Type).
			Int("worker_id", idx).
			Msg("mail queue full, job dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(to)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.MailMessage) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.send(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, worker int, msg domain.MailMessage) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Send(ctx, msg)
	metrics.MailSendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.MailJobs.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Str("type", msg.Type).
			Int("worker_id", worker).
			Msg("mail dispatch failed")
		return
	}
	metrics.MailJobs.WithLabelValues("sent").Inc()
}
