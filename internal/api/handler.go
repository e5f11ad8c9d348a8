package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"plantops-backend/internal/notification"
	"plantops-backend/internal/store"
	"plantops-backend/internal/sync"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	sync     *sync.Service
	machines []string
	webpush  *webpush.Options
	alerts   *notification.WorkerPool
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, syncSvc *sync.Service, machines []string, webpushOptions *webpush.Options, alerts *notification.WorkerPool) *Handler {
	return &Handler{
		store:    s,
		sync:     syncSvc,
		machines: machines,
		webpush:  webpushOptions,
		alerts:   alerts,
	}
}
