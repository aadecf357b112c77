package deal

import (
	"context"
	"fmt"
	"log/slog"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

// Inbox returns the deals proposed to the wallet and by the wallet.
func (s *Service) Inbox(ctx context.Context, wallet value.Wallet) (entity.DealInbox, error) {
	if wallet.IsZero() {
		return entity.DealInbox{}, domain.NewError(errcodes.WalletNotConnected, "wallet is not connected")
	}

	incoming, err := s.repo.ListByPartner(ctx, wallet)
	if err != nil {
		return entity.DealInbox{}, fmt.Errorf("repo.ListByPartner: %w", err)
	}

	outgoing, err := s.repo.ListByInitiator(ctx, wallet)
	if err != nil {
		return entity.DealInbox{}, fmt.Errorf("repo.ListByInitiator: %w", err)
	}

	return entity.DealInbox{Incoming: incoming, Outgoing: outgoing}, nil
}

// Get returns a deal to either of its parties. Everyone else gets
// DealNotFound.
func (s *Service) Get(ctx context.Context, wallet value.Wallet, rawID string) (entity.Deal, error) {
	if wallet.IsZero() {
		return entity.Deal{}, domain.NewError(errcodes.WalletNotConnected, "wallet is not connected")
	}

	id, err := value.ParseDealID(rawID)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("value.ParseDealID: %w", err)
	}

	deal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("repo.GetByID: %w", err)
	}

	if !deal.IsParty(wallet) {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return deal, nil
}

// Respond moves a proposed deal to accepted or rejected. Only the partner
// may answer, and only once: the update is conditional on the deal still
// being proposed, so of two concurrent answers exactly one wins.
func (s *Service) Respond(
	ctx context.Context,
	wallet value.Wallet,
	rawID string,
	next value.DealStatus,
) (entity.Deal, error) {
	if !next.IsTerminal() {
		return entity.Deal{}, domain.NewError(errcodes.InvalidDealStatus, "a deal can only be accepted or rejected")
	}

	deal, err := s.Get(ctx, wallet, rawID)
	if err != nil {
		return entity.Deal{}, err
	}

	ctx = contextWithDeal(ctx, deal)

	if !deal.IsIncomingFor(wallet) {
		return entity.Deal{}, domain.NewError(errcodes.NotDealPartner, "only the partner can answer a deal")
	}

	if !deal.Status.CanTransitionTo(next) {
		return entity.Deal{}, domain.NewError(errcodes.DealStatusConflict, "deal is already "+deal.Status.String())
	}

	updated, err := s.repo.UpdateStatus(ctx, deal.ID, value.DealStatusProposed, next)
	if err != nil {
		return entity.Deal{}, fmt.Errorf("repo.UpdateStatus: %w", err)
	}

	logger(ctx).Info("deal answered", slog.String(logx.FieldDealStatus, next.String()))

	s.metrics.statusChanged(next)
	s.publish(ctx, entity.DealEventStatusChanged, updated)

	return updated, nil
}
