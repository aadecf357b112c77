package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"prodi/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/v1", func(r chi.Router) {
		// unauthorized zone
		r.Route("/wallet", func(r chi.Router) {
			r.Post("/challenge", handler(s.postV1WalletChallenge))
			r.Post("/connect", handler(s.postV1WalletConnect))

			r.With(walletAuth(s.walletService, true)).Post("/disconnect", handler(s.postV1WalletDisconnect))
		})

		// public pages, the wallet only changes what is visible
		r.Group(func(r chi.Router) {
			r.Use(walletAuth(s.walletService, false))

			r.Get("/profiles", handler(s.getV1Profiles))
			r.Get("/profiles/{wallet}", handler(s.getV1ProfileByWallet))
		})

		// wallet zone
		r.Group(func(r chi.Router) {
			r.Use(walletAuth(s.walletService, true))

			r.Get("/profile", handler(s.getV1Profile))
			r.Put("/profile", handler(s.putV1Profile))

			r.Route("/deals", func(r chi.Router) {
				r.Get("/", handler(s.getV1Deals))
				r.Post("/", handler(s.postV1Deals))
				r.Get("/draft", handler(s.getV1DealDraft))
				r.Get("/{id}", handler(s.getV1Deal))
				r.Post("/{id}/accept", handler(s.postV1DealAccept))
				r.Post("/{id}/reject", handler(s.postV1DealReject))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
