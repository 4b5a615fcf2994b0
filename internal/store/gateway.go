package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config sizes and times the connection pool.
type Config struct {
	MaxOpen     int
	MinIdle     int
	IdleTimeout time.Duration
	MaxLifetime time.Duration

	// StatementTimeout bounds one statement end to end: waiting for a pooled
	// connection and executing share the same deadline.
	StatementTimeout time.Duration
}

// StatementObserver is told about every statement the gateway runs.
type StatementObserver interface {
	ObserveStatement(op string, took time.Duration, err error)
}

type Option func(*options)

type options struct {
	log      *zap.SugaredLogger
	logLevel logger.LogLevel
	observer StatementObserver
}

// WithLogger routes gorm's own logging (slow statements, errors) through lg.
func WithLogger(lg *zap.SugaredLogger, level string) Option {
	return func(o *options) {
		o.log = lg
		o.logLevel = parseLogLevel(level)
	}
}

func WithObserver(obs StatementObserver) Option {
	return func(o *options) { o.observer = obs }
}

// Gateway runs one bound statement per call against a shared pool. It holds
// no per-request state and is safe for concurrent use.
type Gateway struct {
	db       *gorm.DB
	timeout  time.Duration
	observer StatementObserver
}

// Open connects to PostgreSQL, applies the pool settings, and verifies the
// connection with a round trip.
func Open(ctx context.Context, dsn string, cfg Config, opts ...Option) (*Gateway, error) {
	o := buildOptions(opts)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: o.gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	g, err := New(db, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := g.Ping(ctx); err != nil {
		_ = g.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return g, nil
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB, cfg Config, opts ...Option) (*Gateway, error) {
	o := buildOptions(opts)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("pool handle: %w", err)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	// database/sql has no floor on pool size; DB_MIN caps how many idle
	// connections are retained instead.
	idle := cfg.MaxOpen
	if cfg.MinIdle > 0 {
		idle = cfg.MinIdle
	}
	sqlDB.SetMaxIdleConns(idle)
	if cfg.IdleTimeout > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.IdleTimeout)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}
	return &Gateway{db: db, timeout: cfg.StatementTimeout, observer: o.observer}, nil
}

// QueryRows scans every returned row into dest, which must point to a slice.
func (g *Gateway) QueryRows(ctx context.Context, dest any, query string, args ...any) error {
	_, err := g.run(ctx, dest, query, args)
	return err
}

// QueryRow scans the first returned row into dest and reports KindNotFound
// when the statement produced no rows.
func (g *Gateway) QueryRow(ctx context.Context, dest any, query string, args ...any) error {
	n, err := g.run(ctx, dest, query, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return &Error{Kind: KindNotFound, Op: verb(query)}
	}
	return nil
}

// Ping issues a trivial round trip and returns the server clock.
func (g *Gateway) Ping(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := g.QueryRow(ctx, &now, "SELECT NOW()"); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

func (g *Gateway) Migrate(ctx context.Context, models ...any) error {
	if err := g.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Close drains the pool. In-flight statements finish first.
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *Gateway) run(ctx context.Context, dest any, query string, args []any) (int64, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	op := verb(query)
	start := time.Now()
	res := g.db.WithContext(ctx).Raw(query, args...).Scan(dest)
	if g.observer != nil {
		g.observer.ObserveStatement(op, time.Since(start), res.Error)
	}
	if res.Error != nil {
		// Drivers report an expired deadline in their own words.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, &Error{Kind: KindTimeout, Op: op, Err: res.Error}
		}
		return 0, classify(op, res.Error)
	}
	return res.RowsAffected, nil
}

// verb is the lowercased leading keyword of a statement.
func verb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

func buildOptions(opts []Option) options {
	o := options{logLevel: logger.Warn}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) gormLogger() logger.Interface {
	if o.log == nil {
		return logger.Default.LogMode(o.logLevel)
	}
	return logger.New(zapWriter{o.log}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  o.logLevel,
		IgnoreRecordNotFoundError: true,
	})
}

type zapWriter struct{ lg *zap.SugaredLogger }

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.lg.Infof(format, args...)
}

func parseLogLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
