package handler

import (
	"context"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/profile"
	"prodi/internal/domain/value"
	"prodi/pkg/contextx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const defaultPageSize = 5

type profileViewer interface {
	View(ctx context.Context, viewer value.Wallet, address string) (profile.View, error)
}

type profileFinder interface {
	Snapshot(ctx context.Context, query string) ([]entity.Profile, error)
}

type statusReporter interface {
	IsRunning() bool
}

// Handler answers desk commands in the operator chat. It sees the directory
// the way an anonymous visitor does.
type Handler struct {
	profiles profileViewer
	search   profileFinder
	warmer   statusReporter
	pageSize int
}

func New(profiles profileViewer, search profileFinder) *Handler {
	return &Handler{
		profiles: profiles,
		search:   search,
		pageSize: defaultPageSize,
	}
}

func (h *Handler) WithPageSize(size int) *Handler {
	if size > 0 {
		h.pageSize = size
	}

	return h
}

// WithStatus reports the snapshot warmer state on /status.
func (h *Handler) WithStatus(warmer statusReporter) *Handler {
	h.warmer = warmer
	return h
}
