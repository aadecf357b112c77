package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	jsoniter "github.com/json-iterator/go"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/application/modules"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
)

const (
	TaskDealMemo = "deal:memo"
	QueueLedger  = "ledger"
)

type memoPayload struct {
	DealID  string `json:"dealId"`
	TraceID string `json:"traceId,omitempty"`
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// MemoQueue schedules ledger memos on the ledger queue.
type MemoQueue struct {
	client   enqueuer
	maxRetry int
	timeout  time.Duration
}

func NewMemoQueue(client enqueuer) *MemoQueue {
	return &MemoQueue{
		client:   client,
		maxRetry: 5,
		timeout:  2 * time.Minute,
	}
}

func (q *MemoQueue) WithRetry(maxRetry int, timeout time.Duration) *MemoQueue {
	q.maxRetry = maxRetry
	q.timeout = timeout

	return q
}

func (q *MemoQueue) EnqueueMemo(ctx context.Context, id value.DealID) error {
	task := memoPayload{DealID: id.String()}

	if traceID, err := contextx.TraceIDFromContext(ctx); err == nil {
		task.TraceID = traceID.String()
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	info, err := q.client.EnqueueContext(
		ctx,
		asynq.NewTask(TaskDealMemo, payload),
		asynq.Queue(QueueLedger),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.timeout),
	)
	if err != nil {
		return fmt.Errorf("client.EnqueueContext: %w", err)
	}

	logger(ctx).Info("memo task enqueued",
		slog.String(logx.FieldDealID, id.String()),
		slog.String("task-id", info.ID),
	)

	return nil
}

type memoCompleter interface {
	CompleteMemo(ctx context.Context, id value.DealID) (entity.MemoOutcome, error)
}

// MemoHandler completes memos scheduled by MemoQueue.
type MemoHandler struct {
	deals memoCompleter
}

func NewMemoHandler(deals memoCompleter) *MemoHandler {
	return &MemoHandler{deals: deals}
}

func (h *MemoHandler) Handler() modules.AsynqHandler {
	return modules.AsynqHandler{
		Pattern: TaskDealMemo,
		Handle:  h.Handle,
	}
}

// Handle returns an error to let asynq retry ledger failures. Tasks that can
// never succeed are not retried.
func (h *MemoHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload memoPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal: %v: %w", err, asynq.SkipRetry)
	}

	id, err := value.ParseDealID(payload.DealID)
	if err != nil {
		return fmt.Errorf("value.ParseDealID: %v: %w", err, asynq.SkipRetry)
	}

	traceID := contextx.TraceID(payload.TraceID)
	if traceID == "" {
		traceID = contextx.NewTraceID()
	}

	ctx = contextx.WithTraceID(ctx, traceID)
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		logx.Stringer(logx.FieldTraceID, traceID),
		slog.String(logx.FieldDealID, id.String()),
	))

	outcome, err := h.deals.CompleteMemo(ctx, id)
	if err != nil {
		if errcodes.Is(err, errcodes.MemoNotRequested) || errcodes.Is(err, errcodes.DealNotFound) {
			return fmt.Errorf("deals.CompleteMemo: %v: %w", err, asynq.SkipRetry)
		}

		return fmt.Errorf("deals.CompleteMemo: %w", err)
	}

	logger(ctx).Info("memo task completed", slog.String(logx.FieldMemoSignature, outcome.Signature))

	return nil
}
