package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Store is the subset of the persistence gateway the handlers use.
type Store interface {
	QueryRows(ctx context.Context, dest any, query string, args ...any) error
	QueryRow(ctx context.Context, dest any, query string, args ...any) error
	Ping(ctx context.Context) (time.Time, error)
}

type Options struct {
	BodyLimit int64
	// ExposeErrorDetail adds the underlying error text to 5xx bodies.
	ExposeErrorDetail bool
}

type Handlers struct {
	store   Store
	log     *zap.SugaredLogger
	opts    Options
	started time.Time
}

func New(s Store, lg *zap.SugaredLogger, opts Options) *Handlers {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = 10 << 20
	}
	return &Handlers{store: s, log: lg, opts: opts, started: time.Now()}
}

// Set is the five operations of one resource family.
type Set struct {
	List   http.HandlerFunc
	Get    http.HandlerFunc
	Create http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}
