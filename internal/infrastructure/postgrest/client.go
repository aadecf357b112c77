package postgrest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	pgrst "github.com/supabase-community/postgrest-go"

	"prodi/internal/domain"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/httpx"
	"prodi/pkg/logx"
)

var (
	json   = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip
	logger = contextx.LoggerFromContextOrDefault          //nolint:gochecknoglobals
)

const (
	returnMinimal        = "minimal"
	returnRepresentation = "representation"

	errorBodyLimit = 1 << 16
)

// Client talks to a PostgREST compatible table API mounted at /rest/v1.
type Client struct {
	restURL   string
	transport http.RoundTripper
	timeout   time.Duration
}

func NewClient(baseURL string, transport http.RoundTripper, timeout time.Duration) *Client {
	return &Client{
		restURL:   strings.TrimRight(baseURL, "/") + "/rest/v1",
		transport: transport,
		timeout:   timeout,
	}
}

// NewTransport authenticates every request with apiKey and logs the
// authenticated exchange through the masking logger.
func NewTransport(apiKey string, opts ...httpx.Option) http.RoundTripper {
	return httpx.NewAPIKeyRoundTripper(
		httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		apiKey,
	)
}

// apiError is the error body of the table API.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// exchange carries one query builder call. The builder has no context of its
// own, so the call context is attached here, and a failed response is kept
// for error mapping.
type exchange struct {
	ctx    context.Context //nolint:containedctx
	next   http.RoundTripper
	status int
	body   []byte
}

func (e *exchange) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := e.next.RoundTrip(req.WithContext(e.ctx))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		e.status = resp.StatusCode
		e.body, _ = io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(e.body))
	}

	return resp, nil
}

// query runs one builder chain against table. Rows are decoded into dest
// unless it is nil.
func (c *Client) query(
	ctx context.Context,
	table string,
	build func(*pgrst.QueryBuilder) *pgrst.FilterBuilder,
	dest any,
) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ex := &exchange{ctx: ctx, next: c.transport}

	client := pgrst.NewClient(c.restURL, "", nil)
	client.Transport.Parent = ex

	builder := build(client.From(table))

	var err error
	if dest == nil {
		_, _, err = builder.Execute()
	} else {
		_, err = builder.ExecuteTo(dest)
	}

	switch {
	case err == nil:
		return nil
	case ex.status != 0:
		err = decodeError(ex.status, ex.body)

		logger(ctx).Warn("datastore request failed",
			slog.String(logx.FieldTable, table),
			logx.Error(err),
		)

		return err
	case client.ClientError != nil:
		return domain.WrapError(err, errcodes.InternalServerError, "datastore query is malformed")
	case ctx.Err() != nil:
		return domain.WrapError(err, errcodes.InternalServerError, "datastore is unreachable")
	case dest != nil:
		return domain.WrapError(err, errcodes.InternalServerError, "failed to decode datastore response")
	default:
		return domain.WrapError(err, errcodes.InternalServerError, "datastore is unreachable")
	}
}

func decodeError(status int, body []byte) error {
	var apiErr apiError

	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	cause := fmt.Errorf("status %d: %s %s", status, apiErr.Code, apiErr.Message)

	switch {
	case status == http.StatusConflict || apiErr.Code == "23505":
		return domain.WrapError(cause, errcodes.Conflict, "datastore conflict")
	case status == http.StatusNotFound:
		return domain.WrapError(cause, errcodes.NotFound, "datastore table not found")
	default:
		return domain.WrapError(cause, errcodes.InternalServerError, "datastore request failed")
	}
}

// quote makes v safe inside a logic tree such as or=(...).
func quote(v string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

var newestFirst = &pgrst.OrderOpts{Ascending: false} //nolint:gochecknoglobals,exhaustruct
