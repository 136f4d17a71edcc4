package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// MessageHandler consumes one inbound bot message. Satisfied by bot.Handler.
type MessageHandler interface {
	Handle(ctx context.Context, msg ports.InboundMessage) error
}

// Dispatcher routes inbound bot messages to a fixed set of workers, sharded
// by chat id so commands from one conversation are executed in the order they
// arrived. It is the detached unit of work behind the webhook front-end: the
// HTTP call enqueues and returns, the workers do the store mutation and
// notification fan-out out of band.
type Dispatcher struct {
	workers []chan ports.InboundMessage
	handler MessageHandler
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, handler MessageHandler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.InboundMessage, numWorkers),
		handler: handler,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.InboundMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its chat. The buffer
// is bounded; under overload the message is dropped and logged rather than
// blocking the webhook response.
func (d *Dispatcher) Enqueue(msg ports.InboundMessage) {
	idx := d.shardIndex(msg.ChatID)
	select {
	case d.workers[idx] <- msg:
		metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Error().
			Int("update_id", msg.UpdateID).
			Int64("chat_id", msg.ChatID).
			Int("worker_id", idx).
			Msg("worker queue full, dropping inbound message")
	}
}

// shardIndex maps a chat id deterministically to a worker index.
func (d *Dispatcher) shardIndex(chatID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(chatID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.InboundMessage) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.QueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			// Webhook-origin failures are not observable to the HTTP caller;
			// log and move on.
			if err := d.handler.Handle(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Int("update_id", msg.UpdateID).
					Int("worker_id", id).
					Msg("message processing failed")
			}
		}
	}
}
