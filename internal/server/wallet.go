package server

import (
	"context"
	"fmt"
	"net/http"

	"prodi/internal/domain/entity"
	"prodi/pkg/httpx/reply"
	"prodi/pkg/httpx/req"
	"prodi/pkg/rest"
)

type walletService interface {
	sessionResolver
	Challenge(ctx context.Context, address string) (entity.WalletChallenge, error)
	Connect(ctx context.Context, address, signature string) (entity.WalletSession, error)
	Disconnect(ctx context.Context, token string) error
}

type WalletServer struct {
	walletService walletService
}

func NewWalletServer(walletService walletService) WalletServer {
	return WalletServer{
		walletService: walletService,
	}
}

func (s WalletServer) postV1WalletChallenge(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.WalletChallengeRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	challenge, err := s.walletService.Challenge(ctx, request.Address)
	if err != nil {
		return fmt.Errorf("walletService.Challenge: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTWalletChallenge(challenge))

	return nil
}

func (s WalletServer) postV1WalletConnect(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.WalletConnectRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	session, err := s.walletService.Connect(ctx, request.Address, request.Signature)
	if err != nil {
		return fmt.Errorf("walletService.Connect: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTWalletSession(session))

	return nil
}

func (s WalletServer) postV1WalletDisconnect(w http.ResponseWriter, r *http.Request) error {
	if err := s.walletService.Disconnect(r.Context(), bearerToken(r)); err != nil {
		return fmt.Errorf("walletService.Disconnect: %w", err)
	}

	reply.NoContent(w)

	return nil
}
