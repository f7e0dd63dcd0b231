// Package manifest models a dependency manifest: the libraries an application
// loads and, for each library, the asset groups it ships per platform.
//
// # Document shape
//
// Manifests follow the deps.json layout. Only the parts that matter for asset
// selection are read:
//
//	{
//	  "runtimeTarget": {"name": ".NETCoreApp,Version=v8.0"},
//	  "targets": {
//	    ".NETCoreApp,Version=v8.0": {
//	      "Native.Lib/1.0.0": {
//	        "runtime": {"lib/net8.0/Native.Lib.dll": {}},
//	        "runtimeTargets": {
//	          "runtimes/linux-x64/native/libnative.so": {"rid": "linux-x64", "assetType": "native"},
//	          "runtimes/win/lib/net8.0/Native.Lib.dll": {"rid": "win", "assetType": "runtime"}
//	        }
//	      }
//	    }
//	  },
//	  "libraries": {"Native.Lib/1.0.0": {"type": "package"}},
//	  "runtimes": {"linux-x64": ["linux", "unix-x64", "unix", "any", "base"]}
//	}
//
// "runtime" and "native" entries form the platform-agnostic groups;
// "runtimeTargets" entries form RID-tagged groups. Entries that repeat a
// (RID, kind) pair are merged into one group in document order.
//
// The "runtimes" section is the raw fallback graph. Its absence is
// meaningful: self-contained deployments ship no graph, and
// [Manifest.Fallback] then reports [rid.ExactOnly].
//
// # Parsing
//
// Documents are decoded through the YAML node API, so JSON and YAML inputs
// share one decoder and mapping order is kept exactly as written. Parsing is
// all-or-nothing: any structural problem, invalid version, unsafe asset path
// or malformed RID fails the whole manifest with
// [errors.ErrCodeInvalidManifest].
package manifest
