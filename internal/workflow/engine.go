package workflow

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mls-workflow/cadastro-api/internal/events"
	"github.com/mls-workflow/cadastro-api/internal/metrics"
	"github.com/mls-workflow/cadastro-api/internal/storage"
)

// Config holds the engine's collaborators. Storage and Instances are
// required; the rest fall back to no-op defaults.
type Config struct {
	Storage   storage.Storage
	Instances InstanceStore
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Engine executes process instances.
type Engine struct {
	storage   storage.Storage
	instances InstanceStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		storage:   cfg.Storage,
		instances: cfg.Instances,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       time.Now,
	}
	if e.publisher == nil {
		e.publisher = events.Nop{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Execute runs one process instance to completion and returns it. The
// instance is also saved in the instance store.
//
// businessKey may be empty; it then defaults to the request id, or a
// fresh uuid when there is no id.
func (e *Engine) Execute(ctx context.Context, req Request, businessKey string) Instance {
	inst := Instance{
		ID:          uuid.NewString(),
		BusinessKey: businessKey,
		State:       StateAwaitingOperation,
		Request:     req,
		StartedAt:   e.now(),
	}
	if inst.BusinessKey == "" {
		if req.ID != nil {
			inst.BusinessKey = strconv.FormatInt(*req.ID, 10)
		} else {
			inst.BusinessKey = uuid.NewString()
		}
	}

	log := e.logger.With(slog.String("instance_id", inst.ID))
	log.Debug("process instance started", slog.String("business_key", inst.BusinessKey))

	op, res, ok := dispatch(req.Operation)
	if ok {
		inst.State = StateDispatched
		inst.Operation = op
		log = log.With(slog.String("operation", string(op)))
		log.Info("operation identified")

		switch op {
		case OpCreate:
			res = handleCreate(ctx, e.storage, log, req)
		case OpRead:
			res = handleRead(ctx, e.storage, log, req)
		case OpUpdate:
			res = handleUpdate(ctx, e.storage, log, req)
		case OpDelete:
			res = handleDelete(ctx, e.storage, log, req)
		}
	} else {
		log.Warn("operation rejected", slog.String("operation", req.Operation))
	}

	inst.Result = res
	inst.Outcome = outcomeOf(res.StatusCode)
	inst.State = StateDone
	inst.EndedAt = e.now()

	if inst.Outcome == OutcomeSuccess {
		e.publish(ctx, log, inst)
	}

	e.metrics.ObserveInstance(string(inst.Operation), string(inst.Outcome), inst.EndedAt.Sub(inst.StartedAt))
	if e.instances != nil {
		e.instances.Save(inst)
	}

	log.Info("process instance finished",
		slog.String("outcome", string(inst.Outcome)),
		slog.Int("status_code", res.StatusCode),
	)
	return inst
}

// Instance returns a previously executed instance.
func (e *Engine) Instance(id string) (Instance, error) {
	if e.instances == nil {
		return Instance{}, ErrInstanceNotFound
	}
	return e.instances.Get(id)
}

func (e *Engine) publish(ctx context.Context, log *slog.Logger, inst Instance) {
	ev := events.Event{
		ID:                uuid.NewString(),
		ProcessInstanceID: inst.ID,
		Record:            inst.Result.Record,
		Timestamp:         inst.EndedAt,
	}

	switch inst.Operation {
	case OpCreate:
		ev.Type = events.TypeCreated
	case OpUpdate:
		ev.Type = events.TypeUpdated
	case OpDelete:
		ev.Type = events.TypeDeleted
	default:
		return
	}

	if inst.Result.Record != nil {
		ev.RecordID = inst.Result.Record.ID
	} else if inst.Request.ID != nil {
		ev.RecordID = *inst.Request.ID
	}

	if err := e.publisher.Publish(ctx, ev); err != nil {
		log.Error("failed to publish record event",
			slog.String("event_type", string(ev.Type)),
			slog.String("error", err.Error()),
		)
	}
}
