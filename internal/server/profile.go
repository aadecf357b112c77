package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/profile"
	"prodi/internal/domain/service/search"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/httpx/reply"
	"prodi/pkg/httpx/req"
	"prodi/pkg/lox"
	"prodi/pkg/rest"
)

type profileService interface {
	Save(ctx context.Context, wallet value.Wallet, form profile.Form) (entity.Profile, error)
	Get(ctx context.Context, address string) (entity.Profile, error)
	View(ctx context.Context, viewer value.Wallet, address string) (profile.View, error)
}

type searchService interface {
	Find(ctx context.Context, mode search.Mode, viewer value.Wallet, query string) ([]entity.Profile, error)
}

type ProfileServer struct {
	profileService profileService
	searchService  searchService
}

func NewProfileServer(profileService profileService, searchService searchService) ProfileServer {
	return ProfileServer{
		profileService: profileService,
		searchService:  searchService,
	}
}

func (s ProfileServer) getV1Profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	p, err := s.profileService.Get(ctx, walletFromContext(ctx).String())
	if err != nil {
		return fmt.Errorf("profileService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTProfile(p))

	return nil
}

func (s ProfileServer) putV1Profile(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ProfileForm

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	saved, err := s.profileService.Save(ctx, walletFromContext(ctx), newDomainProfileForm(request))
	if err != nil {
		return fmt.Errorf("profileService.Save: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTProfile(saved))

	return nil
}

func (s ProfileServer) getV1ProfileByWallet(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	view, err := s.profileService.View(ctx, walletFromContext(ctx), chi.URLParam(r, "wallet"))
	if err != nil {
		return fmt.Errorf("profileService.View: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTProfileView(view))

	return nil
}

func (s ProfileServer) getV1Profiles(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	mode := search.Mode(query.Get("mode"))

	switch mode {
	case "":
		mode = search.ModeSnapshot
	case search.ModeSnapshot, search.ModeRemote:
	default:
		return domain.NewError(errcodes.ValidationError, "mode must be snapshot or remote")
	}

	found, err := s.searchService.Find(ctx, mode, walletFromContext(ctx), query.Get("q"))
	if err != nil {
		return fmt.Errorf("searchService.Find: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ProfileList{Items: lox.Map(found, newRESTProfile)})

	return nil
}
