package worker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/internal/worker"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
)

type enqueuerMock struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (m *enqueuerMock) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.task = task
	m.opts = opts

	if m.err != nil {
		return nil, m.err
	}

	return &asynq.TaskInfo{ID: "task-1", Queue: worker.QueueLedger}, nil
}

type completerMock struct {
	calls []value.DealID
	err   error
}

func (m *completerMock) CompleteMemo(_ context.Context, id value.DealID) (entity.MemoOutcome, error) {
	m.calls = append(m.calls, id)

	if m.err != nil {
		return entity.MemoOutcome{}, m.err
	}

	return entity.MemoOutcome{Status: value.MemoStatusRecorded, Signature: "sig"}, nil
}

func TestMemoQueueEnqueue(t *testing.T) {
	rq := require.New(t)

	client := &enqueuerMock{}
	id := value.NewDealID()

	rq.NoError(worker.NewMemoQueue(client).EnqueueMemo(context.Background(), id))

	rq.Equal(worker.TaskDealMemo, client.task.Type())
	rq.JSONEq(`{"dealId":"`+id.String()+`"}`, string(client.task.Payload()))

	ctx := contextx.WithTraceID(context.Background(), "trace-1")
	rq.NoError(worker.NewMemoQueue(client).EnqueueMemo(ctx, id))
	rq.JSONEq(`{"dealId":"`+id.String()+`","traceId":"trace-1"}`, string(client.task.Payload()))

	var queue string

	for _, opt := range client.opts {
		if opt.Type() == asynq.QueueOpt {
			queue, _ = opt.Value().(string)
		}
	}

	rq.Equal(worker.QueueLedger, queue)

	client.err = errors.New("redis is down")
	rq.Error(worker.NewMemoQueue(client).EnqueueMemo(context.Background(), id))
}

func TestMemoHandler(t *testing.T) {
	id := value.NewDealID()

	testCases := []struct {
		name          string
		payload       string
		completeErr   error
		expectedCalls int
		expectedErr   bool
		skipRetry     bool
	}{
		{
			name:          "Recorded",
			payload:       `{"dealId":"` + id.String() + `"}`,
			expectedCalls: 1,
		},
		{
			name:        "Malformed payload",
			payload:     `{`,
			expectedErr: true,
			skipRetry:   true,
		},
		{
			name:        "Malformed deal id",
			payload:     `{"dealId":"nope"}`,
			expectedErr: true,
			skipRetry:   true,
		},
		{
			name:          "Ledger failure is retried",
			payload:       `{"dealId":"` + id.String() + `"}`,
			completeErr:   domain.NewError(errcodes.LedgerUnavailable, "rpc timeout"),
			expectedCalls: 1,
			expectedErr:   true,
		},
		{
			name:          "Memo not requested",
			payload:       `{"dealId":"` + id.String() + `"}`,
			completeErr:   domain.NewError(errcodes.MemoNotRequested, "memo was not requested"),
			expectedCalls: 1,
			expectedErr:   true,
			skipRetry:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			deals := &completerMock{err: tc.completeErr}
			h := worker.NewMemoHandler(deals)

			rq.Equal(worker.TaskDealMemo, h.Handler().Pattern)

			err := h.Handle(context.Background(), asynq.NewTask(worker.TaskDealMemo, []byte(tc.payload)))

			rq.Len(deals.calls, tc.expectedCalls)
			rq.Equal(tc.expectedErr, err != nil)
			rq.Equal(tc.skipRetry, errors.Is(err, asynq.SkipRetry))

			if tc.expectedCalls > 0 {
				rq.Equal(id, deals.calls[0])
			}
		})
	}
}
