// Package pipeline provides the load → resolve pipeline shared by the CLI and
// the HTTP API.
//
// By centralizing manifest loading, chain selection, caching and logging here,
// every entry point resolves the same manifest the same way.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: decode and validate the application manifest and every component
//     manifest. This is the only stage that can fail.
//  2. Application pass: build the application chain and select assets.
//  3. Component passes: resolve each component against the finalized host
//     chain. Component passes run in parallel.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	app, _ := pipeline.ReadInput("app.deps.json")
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: app,
//	    RID:      "linux-x64",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Application.Assemblies)
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/ridasset/pkg/cache"
	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/manifest"
	"github.com/matzehuels/ridasset/pkg/resolve"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultFormat is the default result output format.
const DefaultFormat = FormatText

// DefaultGraphFormat is the default fallback graph output format.
const DefaultGraphFormat = FormatDOT

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported result formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
}

// ValidGraphFormats is the set of supported graph formats.
var ValidGraphFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Inputs
// =============================================================================

// Input is a manifest document together with a display name. Name is only
// used in logs and error messages; decoding does not depend on it.
type Input struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// ReadInput reads the manifest at path. Files whose extension no parser
// supports are rejected before reading.
func ReadInput(path string) (Input, error) {
	if _, err := manifest.DetectParser(path); err != nil {
		return Input{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Input{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Input{}, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	return Input{Name: filepath.Base(path), Data: data}, nil
}

// Hash returns the content hash of the input.
func (in Input) Hash() string { return cache.Hash(in.Data) }

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	Manifest   Input   `json:"manifest"`
	Components []Input `json:"components,omitempty"`

	// Request options. RID and UnknownRID are mutually exclusive; neither
	// set means the request is unset.
	RID        string `json:"rid,omitempty"`
	UnknownRID bool   `json:"unknown_rid,omitempty"`
	NoGraph    bool   `json:"no_graph,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Detector rid.Detector  `json:"-"`
	TTL      time.Duration `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// GraphOptions configures [Runner.RenderGraph].
type GraphOptions struct {
	Format string `json:"format,omitempty"`
	// Builtin renders the compiled-in default table instead of the
	// manifest's runtimes section.
	Builtin bool `json:"builtin,omitempty"`
	// Highlight marks the chain for this RID, when set.
	Highlight string `json:"highlight,omitempty"`
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Application resolve.Result    `json:"application"`
	Components  []ComponentResult `json:"components,omitempty"`

	// Platform is the RID reported by the detector for this run.
	Platform rid.RID `json:"platform,omitempty"`

	Stats     Stats     `json:"-"`
	CacheInfo CacheInfo `json:"-"`
}

// ComponentResult is the resolution of one hosted component.
type ComponentResult struct {
	Name string `json:"name"`
	resolve.Result
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Libraries   int
	LoadTime    time.Duration
	ResolveTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ResultHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a result format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json)", format)
	}
	return nil
}

// ValidateGraphFormat checks that a graph format is valid.
func ValidateGraphFormat(format string) error {
	if !ValidGraphFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid graph format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Manifest.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "manifest is required")
	}
	for i, c := range o.Components {
		if len(c.Data) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "component %d: manifest is empty", i)
		}
	}
	if o.RID != "" && o.UnknownRID {
		return errors.New(errors.ErrCodeInvalidInput, "rid and unknown_rid are mutually exclusive")
	}
	if o.RID != "" {
		if err := errors.ValidateRID(o.RID); err != nil {
			return err
		}
	}
	if o.TTL == 0 {
		o.TTL = cache.DefaultTTL
	}
	o.validated = true
	return nil
}

// Request returns the RID request described by the options.
func (o *Options) Request() rid.Request {
	switch {
	case o.UnknownRID:
		return rid.Unknown()
	case o.RID != "":
		return rid.Explicit(rid.RID(o.RID))
	default:
		return rid.Unset()
	}
}

// ResultKeyOpts returns cache key options for the result of this run.
// platform is the detected RID the chain was built against.
func (o *Options) ResultKeyOpts(platform rid.RID) cache.ResultKeyOpts {
	req := o.Request()
	opts := cache.ResultKeyOpts{
		Request:  req.Kind.String(),
		RID:      string(req.RID),
		Platform: string(platform),
		NoGraph:  o.NoGraph,
	}
	for _, c := range o.Components {
		opts.Components = append(opts.Components, c.Hash())
	}
	return opts
}

// ValidateAndSetDefaults checks the graph options and applies defaults.
func (o *GraphOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = DefaultGraphFormat
	}
	if err := ValidateGraphFormat(o.Format); err != nil {
		return err
	}
	if o.Highlight != "" {
		if err := errors.ValidateRID(o.Highlight); err != nil {
			return err
		}
	}
	return nil
}

// keyFormat distinguishes renderings of the same manifest in the cache.
func (o GraphOptions) keyFormat() string {
	return fmt.Sprintf("%s/builtin=%t/highlight=%s", o.Format, o.Builtin, o.Highlight)
}
