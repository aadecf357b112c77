package postgrest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/internal/infrastructure/postgrest"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
)

const (
	walletA = value.Wallet("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	walletB = value.Wallet("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	dealID  = "6f1c2a9e-0c1b-4c1e-9f5e-1c2d3e4f5a6b"
)

type call struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

// tableAPI replays canned responses in order and records every call.
type tableAPI struct {
	t         *testing.T
	responses []string
	statuses  []int
	calls     []call
}

func (a *tableAPI) reply(status int, body string) *tableAPI {
	a.statuses = append(a.statuses, status)
	a.responses = append(a.responses, body)

	return a
}

func (a *tableAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(r.Body)
	assert.NoError(a.t, err)

	a.calls = append(a.calls, call{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.Query(),
		header: r.Header.Clone(),
		body:   string(b),
	})

	i := len(a.calls) - 1
	if !assert.Less(a.t, i, len(a.responses), "unexpected call %s %s", r.Method, r.URL) {
		w.WriteHeader(http.StatusTeapot)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(a.statuses[i])
	_, _ = w.Write([]byte(a.responses[i]))
}

func newClient(t *testing.T, api *tableAPI) *postgrest.Client {
	t.Helper()

	api.t = t

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	return postgrest.NewClient(server.URL+"/", postgrest.NewTransport("anon-key"), time.Second)
}

func TestProfileRepositoryUpsert(t *testing.T) {
	rq := require.New(t)

	api := (&tableAPI{}).
		reply(http.StatusOK, `[{"wallet":"`+walletA.String()+`","company":"Old","type":"producer","privacy":"public",
			"created_at":"2025-05-01T10:00:00","updated_at":"2025-05-01T10:00:00"}]`).
		reply(http.StatusCreated, `[{"wallet":"`+walletA.String()+`","company":"New","type":"agent","region":"Volga",
			"privacy":"private","created_at":"2025-05-01T10:00:00+00:00","updated_at":"2025-06-01T10:00:00+00:00"}]`)

	repo := postgrest.NewProfileRepository(newClient(t, api))

	ctx := contextx.WithWallet(context.Background(), contextx.Wallet(walletA))

	saved, err := repo.Upsert(ctx, entity.Profile{
		Wallet:    walletA,
		Company:   "New",
		Type:      value.CompanyTypeAgent,
		Region:    "Volga",
		Privacy:   value.PrivacyPrivate,
		CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	})
	rq.NoError(err)
	rq.Equal("New", saved.Company)
	rq.Equal(value.PrivacyPrivate, saved.Privacy)
	rq.Equal(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), saved.CreatedAt)

	rq.Len(api.calls, 2)

	get := api.calls[0]
	rq.Equal(http.MethodGet, get.method)
	rq.Equal("/rest/v1/profiles", get.path)
	rq.Equal("eq."+walletA.String(), get.query.Get("wallet"))

	upsert := api.calls[1]
	rq.Equal(http.MethodPost, upsert.method)
	rq.Equal("wallet", upsert.query.Get("on_conflict"))
	rq.Equal("resolution=merge-duplicates,return=representation", upsert.header.Get("Prefer"))
	rq.Equal("anon-key", upsert.header.Get("apikey"))
	rq.Equal("Bearer anon-key", upsert.header.Get("Authorization"))
	rq.Equal(walletA.String(), upsert.header.Get("X-Prodi-Wallet"))
	rq.Contains(upsert.body, `"created_at":"2025-05-01T10:00:00Z"`)
	rq.Contains(upsert.body, `"company":"New"`)
}

func TestProfileRepositoryGetByWalletNotFound(t *testing.T) {
	rq := require.New(t)

	api := (&tableAPI{}).reply(http.StatusOK, `[]`)

	_, err := postgrest.NewProfileRepository(newClient(t, api)).GetByWallet(context.Background(), walletB)
	rq.True(errcodes.Is(err, errcodes.ProfileNotFound))
	rq.Empty(api.calls[0].header.Get("X-Prodi-Wallet"))
}

func TestProfileRepositoryList(t *testing.T) {
	rq := require.New(t)

	api := (&tableAPI{}).reply(http.StatusOK, `[{"wallet":"`+walletB.String()+`","company":"B"},
		{"wallet":"`+walletA.String()+`","company":"A"}]`)

	found, err := postgrest.NewProfileRepository(newClient(t, api)).List(context.Background(), true)
	rq.NoError(err)
	rq.Len(found, 2)
	rq.Equal("B", found[0].Company)
	rq.Equal("neq.private", api.calls[0].query.Get("privacy"))
	rq.Equal("created_at.desc.nullslast", api.calls[0].query.Get("order"))
	rq.Equal("*", api.calls[0].query.Get("select"))
}

func TestProfileRepositorySearch(t *testing.T) {
	rq := require.New(t)

	api := (&tableAPI{}).reply(http.StatusOK, `[
		{"wallet":"0x1111111111111111111111111111111111111111","company":"Honey_Trade"},
		{"wallet":"0x2222222222222222222222222222222222222222","company":"HoneyXTrade"},
		{"wallet":"0x3333333333333333333333333333333333333333","company":"honey_trade two"}]`)

	found, err := postgrest.NewProfileRepository(newClient(t, api)).
		Search(context.Background(), "y_t", walletA, true, 1)
	rq.NoError(err)
	rq.Len(found, 1)
	rq.Equal("Honey_Trade", found[0].Company)

	q := api.calls[0].query
	rq.Equal(`(company.ilike."*y_t*",region.ilike."*y_t*",email.ilike."*y_t*")`, q.Get("or"))
	rq.Equal("neq."+walletA.String(), q.Get("wallet"))
	rq.Equal("eq.public", q.Get("privacy"))
	rq.Equal("created_at.desc.nullslast", q.Get("order"))
}

func dealRow(status string) string {
	return `[{"id":"` + dealID + `","initiator_wallet":"` + walletA.String() + `","partner_wallet":"` +
		walletB.String() + `","marketplaces":"ozon","is_exclusive_mp":true,"status":"` + status +
		`","blockchain_tx":null,"memo_status":null,"created_at":"2025-05-01T10:00:00.123456","updated_at":"2025-05-01T10:00:00"}]`
}

func TestDealRepositoryGetByID(t *testing.T) {
	rq := require.New(t)

	id, err := value.ParseDealID(dealID)
	rq.NoError(err)

	api := (&tableAPI{}).reply(http.StatusOK, dealRow("proposed")).reply(http.StatusOK, `[]`)
	repo := postgrest.NewDealRepository(newClient(t, api))

	deal, err := repo.GetByID(context.Background(), id)
	rq.NoError(err)
	rq.Equal(id, deal.ID)
	rq.Equal(entity.DealTerms{Marketplaces: "ozon", IsExclusiveMP: true}, deal.Terms)
	rq.Equal(value.DealStatusProposed, deal.Status)
	rq.Equal(value.MemoStatusNone, deal.MemoStatus)
	rq.Nil(deal.BlockchainTx)
	rq.Equal(123456000, deal.CreatedAt.Nanosecond())

	_, err = repo.GetByID(context.Background(), id)
	rq.True(errcodes.Is(err, errcodes.DealNotFound))
}

func TestDealRepositoryCreate(t *testing.T) {
	rq := require.New(t)

	api := (&tableAPI{}).reply(http.StatusCreated, ``)
	repo := postgrest.NewDealRepository(newClient(t, api))

	deal := entity.NewDeal(walletA, walletB, entity.DealTerms{}, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC))

	rq.NoError(repo.Create(context.Background(), deal))

	c := api.calls[0]
	rq.Equal(http.MethodPost, c.method)
	rq.Equal("/rest/v1/deals", c.path)
	rq.Equal("return=minimal", c.header.Get("Prefer"))
	rq.Contains(c.body, `"id":"`+deal.ID.String()+`"`)
	rq.Contains(c.body, `"memo_status":null`)
	rq.Contains(c.body, `"status":"proposed"`)
}

func TestDealRepositoryUpdateStatus(t *testing.T) {
	id, err := value.ParseDealID(dealID)
	require.NoError(t, err)

	testCases := []struct {
		name         string
		api          *tableAPI
		expectedCode errcodes.ErrorCode
	}{
		{
			name: "Updated",
			api:  (&tableAPI{}).reply(http.StatusOK, dealRow("accepted")),
		},
		{
			name:         "Already answered",
			api:          (&tableAPI{}).reply(http.StatusOK, `[]`).reply(http.StatusOK, dealRow("rejected")),
			expectedCode: errcodes.DealStatusConflict,
		},
		{
			name:         "Missing deal",
			api:          (&tableAPI{}).reply(http.StatusOK, `[]`).reply(http.StatusOK, `[]`),
			expectedCode: errcodes.DealNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			repo := postgrest.NewDealRepository(newClient(t, tc.api))

			deal, err := repo.UpdateStatus(context.Background(), id, value.DealStatusProposed, value.DealStatusAccepted)

			patch := tc.api.calls[0]
			rq.Equal(http.MethodPatch, patch.method)
			rq.Equal("eq."+dealID, patch.query.Get("id"))
			rq.Equal("eq.proposed", patch.query.Get("status"))
			rq.Equal("return=representation", patch.header.Get("Prefer"))
			rq.Contains(patch.body, `"status":"accepted"`)

			if tc.expectedCode != "" {
				rq.True(errcodes.Is(err, tc.expectedCode))
				return
			}

			rq.NoError(err)
			rq.Equal(value.DealStatusAccepted, deal.Status)
		})
	}
}

func TestDealRepositorySetMemoOutcome(t *testing.T) {
	rq := require.New(t)

	id, err := value.ParseDealID(dealID)
	rq.NoError(err)

	api := (&tableAPI{}).reply(http.StatusOK, dealRow("proposed")).reply(http.StatusOK, `[]`)
	repo := postgrest.NewDealRepository(newClient(t, api))

	signature := "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnb"
	rq.NoError(repo.SetMemoOutcome(context.Background(), id, value.MemoStatusRecorded, &signature))
	rq.Contains(api.calls[0].body, `"memo_status":"recorded"`)
	rq.Contains(api.calls[0].body, `"blockchain_tx":"`+signature+`"`)

	err = repo.SetMemoOutcome(context.Background(), id, value.MemoStatusFailed, nil)
	rq.True(errcodes.Is(err, errcodes.DealNotFound))
	rq.Contains(api.calls[1].body, `"blockchain_tx":null`)
}

func TestClientErrors(t *testing.T) {
	testCases := []struct {
		name         string
		status       int
		body         string
		expectedKind errcodes.Kind
		expectedCode errcodes.ErrorCode
	}{
		{
			name:         "Unique violation",
			status:       http.StatusConflict,
			body:         `{"code":"23505","message":"duplicate key value violates unique constraint"}`,
			expectedKind: errcodes.KindConflict,
			expectedCode: errcodes.Conflict,
		},
		{
			name:         "Server failure",
			status:       http.StatusInternalServerError,
			body:         `upstream exploded`,
			expectedKind: errcodes.KindInternal,
			expectedCode: errcodes.InternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			api := (&tableAPI{}).reply(tc.status, tc.body)
			repo := postgrest.NewDealRepository(newClient(t, api))

			err := repo.Create(context.Background(), entity.NewDeal(walletA, walletB, entity.DealTerms{}, time.Now()))
			rq.Error(err)
			rq.Equal(tc.expectedKind, errcodes.KindOf(err))
			rq.Equal(tc.expectedCode, errcodes.CodeOf(err))
		})
	}
}

func TestClientHonoursContext(t *testing.T) {
	rq := require.New(t)

	api := &tableAPI{}
	repo := postgrest.NewDealRepository(newClient(t, api))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Create(ctx, entity.NewDeal(walletA, walletB, entity.DealTerms{}, time.Now()))
	rq.Error(err)
	rq.ErrorIs(err, context.Canceled)
	rq.Equal(errcodes.InternalServerError, errcodes.CodeOf(err))
	rq.Empty(api.calls)
}
