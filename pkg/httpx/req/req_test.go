package req_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"prodi/pkg/errcodes"
	"prodi/pkg/httpx/req"
)

type testRequest struct {
	Address string `json:"address" validate:"required"`
	Type    string `json:"type"    validate:"omitempty,oneof=producer distributor"`
}

func TestRead(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "Valid", body: `{"address":"0xabc","type":"producer"}`},
		{name: "Invalid JSON", body: `{"address":`, wantErr: true},
		{name: "Missing required field", body: `{"type":"producer"}`, wantErr: true},
		{name: "Value outside enum", body: `{"address":"0xabc","type":"miner"}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))

			var dest testRequest

			err := req.Read(r, &dest)
			if !tc.wantErr {
				rq.NoError(err)
				rq.Equal("0xabc", dest.Address)

				return
			}

			rq.Error(err)
			rq.Equal(errcodes.KindInvalidArgument, errcodes.KindOf(err))
			rq.Equal(errcodes.ValidationError, errcodes.CodeOf(err))
		})
	}
}
