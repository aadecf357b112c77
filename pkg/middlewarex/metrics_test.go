package middlewarex_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"prodi/pkg/middlewarex"
)

func TestHTTPMetrics(t *testing.T) {
	rq := require.New(t)

	registry := prometheus.NewRegistry()
	m := middlewarex.NewHTTPMetrics("prodi", registry)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/deals/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/v1/profile", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/v1/deals/a", "/v1/deals/b", "/v1/profile"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	count, err := testutil.GatherAndCount(registry, "prodi_http_requests_total")
	rq.NoError(err)
	rq.Equal(2, count)

	families, err := registry.Gather()
	rq.NoError(err)

	var seen bool

	for _, family := range families {
		if family.GetName() != "prodi_http_requests_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}

			if labels["route"] == "/v1/deals/{id}" {
				seen = true

				rq.Equal("404", labels["status"])
				rq.InDelta(2, metric.GetCounter().GetValue(), 0)
			}
		}
	}

	rq.True(seen)
}
