package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ridasset/pkg/cache"
	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/manifest"
	"github.com/matzehuels/ridasset/pkg/observability"
	"github.com/matzehuels/ridasset/pkg/platform"
	"github.com/matzehuels/ridasset/pkg/resolve"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Execute loads every manifest, resolves the application and then its
// components, with caching. Loading is all-or-nothing: if any manifest is
// invalid no pass runs.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.Logger

	platformRID := detect(opts.Detector)
	key := r.Keyer.ResultKey(opts.Manifest.Hash(), opts.ResultKeyOpts(platformRID))
	if !opts.Refresh {
		if res, ok := r.cachedResult(ctx, key); ok && len(res.Components) == len(opts.Components) {
			// Component names are labels, not part of the key.
			for i := range res.Components {
				res.Components[i].Name = opts.Components[i].Name
			}
			logger.Debug("result cache hit", "manifest", opts.Manifest.Name)
			return res, nil
		}
	}

	loadStart := time.Now()
	app, comps, err := r.LoadAll(ctx, opts.Manifest, opts.Components)
	if err != nil {
		return nil, err
	}
	if opts.NoGraph {
		app = app.WithoutGraph()
	}
	result := &Result{Platform: platformRID}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Libraries = len(app.Libraries())

	resolveStart := time.Now()
	result.Application = r.ResolveApp(ctx, app, opts.Request(), platform.Static(platformRID))
	compResults, err := r.ResolveComponents(ctx, result.Application.Host(), comps)
	if err != nil {
		return nil, err
	}
	for i, res := range compResults {
		result.Components = append(result.Components, ComponentResult{
			Name:   opts.Components[i].Name,
			Result: res,
		})
	}
	result.Stats.ResolveTime = time.Since(resolveStart)

	logger.Info("resolved manifest",
		"manifest", opts.Manifest.Name,
		"assemblies", len(result.Application.Assemblies),
		"native", len(result.Application.NativeLibraries),
		"components", len(result.Components),
		"duration", result.Stats.ResolveTime)

	r.storeResult(ctx, key, result, opts.TTL)
	return result, nil
}

// Load decodes and validates one manifest.
func (r *Runner) Load(ctx context.Context, in Input) (*manifest.Manifest, error) {
	start := time.Now()
	m, err := manifest.Parse(in.Data)
	libs := 0
	if m != nil {
		libs = len(m.Libraries())
	}
	observability.Resolve().OnLoad(ctx, in.Name, libs, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}
	r.Logger.Debug("loaded manifest", "manifest", in.Name, "libraries", libs, "target", m.Target())
	return m, nil
}

// LoadAll loads the application manifest and every component manifest
// concurrently. The first failure cancels the rest and is returned.
func (r *Runner) LoadAll(ctx context.Context, app Input, components []Input) (*manifest.Manifest, []*manifest.Manifest, error) {
	g, ctx := errgroup.WithContext(ctx)
	var appManifest *manifest.Manifest
	comps := make([]*manifest.Manifest, len(components))

	g.Go(func() error {
		m, err := r.Load(ctx, app)
		appManifest = m
		return err
	})
	for i, in := range components {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := r.Load(ctx, in)
			comps[i] = m
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return appManifest, comps, nil
}

// ResolveApp runs the application pass. d is consulted at most once.
func (r *Runner) ResolveApp(ctx context.Context, m *manifest.Manifest, req rid.Request, d rid.Detector) resolve.Result {
	start := time.Now()
	res := resolve.Application(m, resolve.NewContext(m, req), d)
	r.observe(ctx, observability.PassApplication, res, time.Since(start))

	if res.Chain.UsedDefault {
		r.Logger.Info("used fallback RID", "request", req.String(), "chain", res.Chain.String())
	} else {
		r.Logger.Debug("selected chain", "source", res.Chain.Source, "chain", res.Chain.String())
	}
	r.logContributions(observability.PassApplication, res)
	return res
}

// ResolveComponents runs one component pass per manifest, in parallel, each
// against the finalized host chain. Results are returned in input order.
func (r *Runner) ResolveComponents(ctx context.Context, host resolve.Host, comps []*manifest.Manifest) ([]resolve.Result, error) {
	results := make([]resolve.Result, len(comps))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range comps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			results[i] = resolve.Component(m, host)
			r.observe(ctx, observability.PassComponent, results[i], time.Since(start))
			r.logContributions(observability.PassComponent, results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Chain loads the application manifest and returns the chain an application
// pass would use, without selecting assets.
func (r *Runner) Chain(ctx context.Context, opts Options) (rid.Chain, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return rid.Chain{}, fmt.Errorf("invalid options: %w", err)
	}
	m, err := r.Load(ctx, opts.Manifest)
	if err != nil {
		return rid.Chain{}, err
	}
	if opts.NoGraph {
		m = m.WithoutGraph()
	}
	return rid.BuildChain(resolve.NewContext(m, opts.Request()), opts.Detector), nil
}

// RenderGraph renders a fallback graph as DOT or SVG, with caching.
// The graph is the manifest's runtimes section, or the compiled-in default
// table when opts.Builtin is set.
func (r *Runner) RenderGraph(ctx context.Context, in Input, opts GraphOptions) ([]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	key := r.Keyer.GraphKey(in.Hash(), opts.keyFormat())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "graph")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "graph")

	g := rid.DefaultFallbacks
	if !opts.Builtin {
		m, err := r.Load(ctx, in)
		if err != nil {
			return nil, err
		}
		mg, ok := m.Graph()
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "%s has no runtimes section", in.Name)
		}
		g = mg
	}

	var dotOpts rid.DOTOptions
	if opts.Highlight != "" {
		chain := rid.BuildChain(rid.Context{
			Request:  rid.Explicit(rid.RID(opts.Highlight)),
			Fallback: rid.WithGraph{Graph: g},
		}, platform.Static(opts.Highlight))
		dotOpts.Highlight = &chain
	}
	dot := g.DOT(dotOpts)

	var data []byte
	switch opts.Format {
	case FormatSVG:
		svg, err := rid.RenderSVG(ctx, dot)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
		}
		data = svg
	default:
		data = []byte(dot)
	}

	if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}
	return data, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	res.CacheInfo.ResultHit = true
	return &res, true
}

func (r *Runner) storeResult(ctx context.Context, key string, res *Result, ttl time.Duration) {
	data, err := json.Marshal(res)
	if err != nil {
		r.Logger.Warn("encode result for cache", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "result", len(data))
}

func (r *Runner) observe(ctx context.Context, pass observability.Pass, res resolve.Result, d time.Duration) {
	observability.Resolve().OnResolve(ctx, pass, observability.PassStats{
		Source:      res.Chain.Source.String(),
		UsedDefault: res.Chain.UsedDefault,
		Assemblies:  len(res.Assemblies),
		Natives:     len(res.NativeLibraries),
		Unresolved:  len(res.Unresolved),
	}, d)
}

func (r *Runner) logContributions(pass observability.Pass, res resolve.Result) {
	for _, c := range res.Contributions {
		r.Logger.Debug("selected assets",
			"pass", pass,
			"library", c.Library,
			"kind", c.Kind,
			"tier", c.Tier.String(),
			"assets", len(c.Assets))
	}
	for _, u := range res.Unresolved {
		r.Logger.Debug("no matching group", "pass", pass, "library", u.Library, "kind", u.Kind)
	}
}

func detect(d rid.Detector) rid.RID {
	if d == nil {
		return rid.Agnostic
	}
	return d.Detect()
}
