package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prodi/pkg/logx"
	"prodi/pkg/middlewarex"
)

// Server joins the HTTP servers of the individual resources.
type Server struct {
	WalletServer
	ProfileServer
	DealServer
}

func NewServer(
	walletServer WalletServer,
	profileServer ProfileServer,
	dealServer DealServer,
) Server {
	return Server{
		WalletServer:  walletServer,
		ProfileServer: profileServer,
		DealServer:    dealServer,
	}
}

type RouterOptions struct {
	SensitiveDataMasker logx.SensitiveDataMaskerInterface
	LogFieldMaxLen      int
	Metrics             *middlewarex.HTTPMetrics
}

// NewRouter wraps the routes into the middleware chain shared by every
// endpoint.
func NewRouter(s Server, opts RouterOptions) http.Handler {
	if opts.SensitiveDataMasker == nil {
		opts.SensitiveDataMasker = logx.NewSensitiveDataMasker()
	}

	r := chi.NewRouter()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(opts.SensitiveDataMasker, opts.LogFieldMaxLen),
		middlewarex.ResponseLogging(opts.SensitiveDataMasker, opts.LogFieldMaxLen),
	)

	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	s.RegisterRoutes(r)

	return r
}
