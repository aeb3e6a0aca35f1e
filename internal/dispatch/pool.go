// Package dispatch consome jobs de auto-resposta da fila e os envia pelas
// APIs de saída da plataforma. O webhook já respondeu sucesso quando o job
// chega aqui: falha de envio é logada e descartada, nunca re-tentada.
package dispatch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ingest"
	"github.com/zapimob/zapimob/internal/pkg/queue"
)

const KindAutoReply = "auto_reply"

type Pool struct {
	queue  queue.Queue
	worker *Worker
	log    *zap.Logger

	numWorkers int
	taskChan   chan *queue.Event
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewPool(q queue.Queue, worker *Worker, log *zap.Logger, numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	return &Pool{
		queue:      q,
		worker:     worker,
		log:        log,
		numWorkers: numWorkers,
		taskChan:   make(chan *queue.Event, numWorkers*2),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.log.Info("dispatch pool: iniciando", zap.Int("workers", p.numWorkers))

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}

	p.wg.Add(1)
	go p.runDispatcher()
}

func (p *Pool) Stop() {
	p.log.Info("dispatch pool: encerrando")
	p.cancel()
	p.wg.Wait()
	close(p.taskChan)
	p.log.Info("dispatch pool: encerrada")
}

// Enqueue serializa um ReplyJob e o coloca na fila. Fila cheia derruba a
// resposta com warning; a mensagem recebida já está persistida.
func (p *Pool) Enqueue(ctx context.Context, id string, job ingest.ReplyJob) {
	payload, err := json.Marshal(job)
	if err != nil {
		p.log.Error("dispatch pool: erro ao serializar job", zap.Error(err))
		return
	}

	event := queue.Event{
		ID:        id,
		Kind:      KindAutoReply,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if err := p.queue.Enqueue(ctx, event); err != nil {
		p.log.Warn("dispatch pool: fila indisponível, resposta descartada",
			zap.String("eventId", id),
			zap.String("platform", string(job.Platform)),
			zap.Error(err),
		)
	}
}

func (p *Pool) runDispatcher() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
			event, err := p.queue.Dequeue(p.ctx, 1*time.Second)
			if err != nil {
				if p.ctx.Err() != nil {
					return
				}
				p.log.Error("dispatch pool: erro ao desenfileirar", zap.Error(err))
				continue
			}

			if event == nil {
				continue
			}

			select {
			case p.taskChan <- event:
			case <-p.ctx.Done():
				return
			case <-time.After(5 * time.Second):
				p.log.Warn("dispatch pool: taskChan cheio, descartando evento", zap.String("eventId", event.ID))
			}
		}
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	p.log.Info("dispatch pool: worker iniciado", zap.Int("workerId", id))

	for {
		select {
		case <-p.ctx.Done():
			p.log.Info("dispatch pool: worker encerrando", zap.Int("workerId", id))
			return
		case event := <-p.taskChan:
			if event == nil {
				return
			}
			p.processEvent(p.ctx, id, event)
		}
	}
}

func (p *Pool) processEvent(ctx context.Context, workerID int, event *queue.Event) {
	if event.Kind != KindAutoReply {
		p.log.Warn("dispatch pool: evento de tipo desconhecido",
			zap.Int("workerId", workerID), zap.String("kind", event.Kind))
		return
	}

	var job ingest.ReplyJob
	if err := json.Unmarshal(event.Payload, &job); err != nil {
		p.log.Error("dispatch pool: payload inválido",
			zap.Int("workerId", workerID),
			zap.String("eventId", event.ID),
			zap.Error(err),
		)
		return
	}

	if err := p.worker.Send(ctx, job); err != nil {
		// Fire-and-forget: o webhook que originou o job já foi respondido.
		p.log.Error("dispatch pool: falha no envio da auto-resposta",
			zap.Int("workerId", workerID),
			zap.String("eventId", event.ID),
			zap.String("platform", string(job.Platform)),
			zap.Error(err),
		)
		return
	}

	p.log.Info("dispatch pool: auto-resposta enviada",
		zap.Int("workerId", workerID),
		zap.String("eventId", event.ID),
		zap.String("platform", string(job.Platform)),
	)
}
