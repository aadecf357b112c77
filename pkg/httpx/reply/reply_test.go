package reply_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/httpx/reply"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

func TestError(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name       string
		err        error
		statusCode int
		code       string
		message    string
	}{
		{
			name:       "Validation",
			err:        errcodes.New(errcodes.KindInvalidArgument, errcodes.SelfDeal, "initiator and counterparty must differ"),
			statusCode: http.StatusBadRequest,
			code:       "SelfDeal",
			message:    "initiator and counterparty must differ",
		},
		{
			name:       "Not found without code",
			err:        fmt.Errorf("get: %w", errcodes.New(errcodes.KindNotFound, "", "missing")),
			statusCode: http.StatusNotFound,
			code:       "NotFound",
			message:    "missing",
		},
		{
			name:       "Unauthorized",
			err:        errcodes.New(errcodes.KindUnauthorized, errcodes.WalletSignatureRejected, "signature rejected"),
			statusCode: http.StatusUnauthorized,
			code:       "WalletSignatureRejected",
			message:    "signature rejected",
		},
		{
			name:       "Conflict",
			err:        errcodes.New(errcodes.KindConflict, errcodes.DealStatusConflict, "deal is not proposed"),
			statusCode: http.StatusConflict,
			code:       "DealStatusConflict",
			message:    "deal is not proposed",
		},
		{
			name:       "Plain error hides details",
			err:        errors.New("pq: connection refused"),
			statusCode: http.StatusInternalServerError,
			code:       "InternalServerError",
			message:    "internal server error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			ctx := contextx.WithTraceID(context.Background(), "trace-1")
			w := httptest.NewRecorder()

			reply.Error(ctx, w, tc.err)

			rq.Equal(tc.statusCode, w.Code)

			var body map[string]string
			rq.NoError(json.Unmarshal(w.Body.Bytes(), &body))
			rq.Equal(tc.code, body["code"])
			rq.Equal(tc.message, body["message"])
			rq.Equal("trace-1", body["supportId"])
		})
	}
}
