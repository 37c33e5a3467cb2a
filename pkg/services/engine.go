// Package services orchestrates the full composition pipeline: load the
// structural and secret sources, inject secrets, validate the composite,
// and hand back typed connection handlers. Loads are cached with request
// collapsing so concurrent callers share one composition.
package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/cache"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/catalog"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/logger"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/merge"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schema"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/source"
)

// DefaultTTL bounds how long a composed bundle is served before the
// sources are re-read.
const DefaultTTL = 5 * time.Minute

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTTL sets the bundle cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.ttl = ttl }
}

// WithCacheOptions forwards options to the bundle cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(e *Engine) { e.cacheOpts = opts }
}

// Engine owns the schema registry and the bundle cache.
type Engine struct {
	reg       *schema.Registry
	bundles   *cache.Cache[*Bundle]
	log       logger.Logger
	ttl       time.Duration
	cacheOpts []cache.Option
}

// NewEngine builds the schema registry, verifies that the injection table
// covers every secret-required field, and prepares the bundle cache. A
// coverage gap is a programming error and fails construction.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		log: logger.NewNop(),
		ttl: DefaultTTL,
	}
	for _, opt := range opts {
		opt(e)
	}

	reg := schema.NewRegistry()
	if err := catalog.Register(reg); err != nil {
		return nil, err
	}
	if err := merge.VerifyCoverage(); err != nil {
		return nil, err
	}
	e.reg = reg
	e.bundles = cache.New[*Bundle](e.ttl, e.cacheOpts...)
	return e, nil
}

// Registry exposes the engine's schema registry for direct validation.
func (e *Engine) Registry() *schema.Registry {
	return e.reg
}

// Load runs the composition pipeline once, bypassing the cache. The two
// sources are read and validated concurrently; the merge only starts once
// both succeeded.
func (e *Engine) Load(ctx context.Context, structural, secrets source.Source) (*Bundle, error) {
	var (
		servicesDoc map[string]any
		secretsDoc  map[string]string
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		doc, err := source.LoadServices(structural, e.reg)
		if err != nil {
			return fmt.Errorf("structural source %s: %w", structural.Name(), err)
		}
		servicesDoc = doc
		return nil
	})
	g.Go(func() error {
		doc, err := source.LoadSecrets(secrets, e.reg)
		if err != nil {
			return fmt.Errorf("secret source %s: %w", secrets.Name(), err)
		}
		secretsDoc = doc
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := merge.Merge(servicesDoc, secretsDoc, e.reg)
	if err != nil {
		return nil, err
	}
	cfg, err := decodeConfig(merged)
	if err != nil {
		return nil, err
	}
	bundle, err := newBundle(cfg, merged)
	if err != nil {
		return nil, err
	}
	e.log.Info("services configuration composed",
		"structural", structural.Name(),
		"secrets", secrets.Name(),
		"version", cfg.Version,
	)
	return bundle, nil
}

// LoadCached returns the cached bundle for the source pair, composing it
// on a miss. Concurrent misses on the same pair share one composition.
func (e *Engine) LoadCached(ctx context.Context, structural, secrets source.Source) (*Bundle, error) {
	key := structural.Name() + "\x00" + secrets.Name()
	return e.bundles.GetOrLoad(ctx, key, func(ctx context.Context) (*Bundle, error) {
		return e.Load(ctx, structural, secrets)
	})
}

// Invalidate drops the cached bundle for the source pair, forcing the next
// LoadCached to recompose.
func (e *Engine) Invalidate(structural, secrets source.Source) {
	e.bundles.Delete(structural.Name() + "\x00" + secrets.Name())
}
