package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/deal"
	"prodi/internal/domain/value"
	"prodi/pkg/httpx/reply"
	"prodi/pkg/httpx/req"
	"prodi/pkg/rest"
)

type dealService interface {
	Draft(ctx context.Context, viewer value.Wallet, link deal.DeepLink) (deal.Draft, error)
	Create(ctx context.Context, initiator value.Wallet, form deal.Form, sources deal.CounterpartySources) (deal.CreateResult, error)
	Inbox(ctx context.Context, wallet value.Wallet) (entity.DealInbox, error)
	Get(ctx context.Context, wallet value.Wallet, rawID string) (entity.Deal, error)
	Respond(ctx context.Context, wallet value.Wallet, rawID string, next value.DealStatus) (entity.Deal, error)
}

type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) getV1DealDraft(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	draft, err := s.dealService.Draft(ctx, walletFromContext(ctx), deal.DeepLink{
		Counterparty: query.Get("counterparty"),
		Company:      query.Get("company"),
	})
	if err != nil {
		return fmt.Errorf("dealService.Draft: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDealDraft(draft))

	return nil
}

func (s DealServer) postV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.DealForm

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	result, err := s.dealService.Create(ctx, walletFromContext(ctx), newDomainDealForm(request), deal.CounterpartySources{
		Selected: request.Counterparty,
		DeepLink: r.URL.Query().Get("counterparty"),
		Manual:   request.ManualCounterparty,
	})
	if err != nil {
		return fmt.Errorf("dealService.Create: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, rest.DealCreated{
		Deal:    newRESTDeal(result.Deal),
		Warning: result.Memo.Warning,
	})

	return nil
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	inbox, err := s.dealService.Inbox(ctx, walletFromContext(ctx))
	if err != nil {
		return fmt.Errorf("dealService.Inbox: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDealInbox(inbox))

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	d, err := s.dealService.Get(ctx, walletFromContext(ctx), chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("dealService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}

func (s DealServer) postV1DealAccept(w http.ResponseWriter, r *http.Request) error {
	return s.respond(w, r, value.DealStatusAccepted)
}

func (s DealServer) postV1DealReject(w http.ResponseWriter, r *http.Request) error {
	return s.respond(w, r, value.DealStatusRejected)
}

func (s DealServer) respond(w http.ResponseWriter, r *http.Request, next value.DealStatus) error {
	ctx := r.Context()

	d, err := s.dealService.Respond(ctx, walletFromContext(ctx), chi.URLParam(r, "id"), next)
	if err != nil {
		return fmt.Errorf("dealService.Respond: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDeal(d))

	return nil
}
