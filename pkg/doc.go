// Package pkg provides the core libraries for ridasset asset resolution.
//
// # Overview
//
// ridasset answers one question for a dependency manifest: given a runtime
// identifier (RID), which assemblies and native libraries should be loaded?
// Libraries ship assets per RID, and RIDs form a fallback graph from most
// to least specific ("linux-x64" -> "linux" -> "unix" -> "any"), so the
// answer is the most specific group each library declares along that chain.
//
// The pkg directory is organized into these areas:
//
//  1. [rid] - RIDs, fallback graphs, chain building and the compiled-in defaults
//  2. [manifest] - Manifest model, JSON/YAML decoding and validation
//  3. [resolve] - Per-library, per-kind selection and the host/component passes
//  4. [pipeline] - Orchestration (load → resolve application → resolve components)
//  5. [cache], [observability], [platform], [errors] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	deps.json / deps.yaml
//	         ↓
//	    [manifest] package (decode + validate, all-or-nothing)
//	         ↓
//	    [rid] package (request + graph → candidate chain)
//	         ↓
//	    [resolve] package (select one group per library and kind)
//	         ↓
//	    assemblies + native libraries, in manifest order
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/ridasset/pkg/manifest"
//	    "github.com/matzehuels/ridasset/pkg/platform"
//	    "github.com/matzehuels/ridasset/pkg/resolve"
//	    "github.com/matzehuels/ridasset/pkg/rid"
//	)
//
//	m, err := manifest.ParseFile("app.deps.json")
//	if err != nil {
//	    return err
//	}
//	res := resolve.Application(m, resolve.NewContext(m, rid.Explicit("linux-x64")), platform.Current())
//	fmt.Println(res.Assemblies, res.NativeLibraries)
//
// Hosted components reuse the host's chain:
//
//	plugin, _ := manifest.ParseFile("plugin.deps.json")
//	pluginRes := resolve.Component(plugin, res.Host())
//
// [rid]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/rid
// [manifest]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/manifest
// [resolve]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/resolve
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/observability
// [platform]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/platform
// [errors]: https://pkg.go.dev/github.com/matzehuels/ridasset/pkg/errors
package pkg
