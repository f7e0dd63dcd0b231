package resolve

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/ridasset/pkg/manifest"
	"github.com/matzehuels/ridasset/pkg/platform"
	"github.com/matzehuels/ridasset/pkg/rid"
)

func testGraph() *rid.Graph {
	return rid.MustGraph(
		rid.Entry{RID: "win10-x64", Fallbacks: []rid.RID{"win10", "win81-x64", "win81", "win8-x64", "win8", "win7-x64", "win7", "win-x64", "win", "any", "base"}},
		rid.Entry{RID: "win10-x86", Fallbacks: []rid.RID{"win10", "win81-x86", "win81", "win8-x86", "win8", "win7-x86", "win7", "win-x86", "win", "any", "base"}},
		rid.Entry{RID: "linux-x64", Fallbacks: []rid.RID{"linux", "unix-x64", "unix", "any", "base"}},
		rid.Entry{RID: "osx-x64", Fallbacks: []rid.RID{"osx", "unix-x64", "unix", "any", "base"}},
	)
}

// multiAssetManifest has one library with several RID-specific groups per
// kind and one library that only ships portable assemblies.
func multiAssetManifest(g *rid.Graph) *manifest.Manifest {
	specific := manifest.NewLibrary("ridSpecificLib", "1.0.0").
		WithGroup(manifest.Assembly, rid.Agnostic, "DependencyLib.dll").
		WithGroup(manifest.Assembly, "win", "win/ManagedWin.dll").
		WithGroup(manifest.Assembly, "win", "win/AnotherWin.dll").
		WithGroup(manifest.Native, "win10-x64", "native/win10-x64/n1.dll").
		WithGroup(manifest.Native, "win10-x64", "native/win10-x64/n2.dll").
		WithGroup(manifest.Native, "win10-x64", "native/win10-x64-2/n3.dll").
		WithGroup(manifest.Native, "win-x86", "native/win-x86/n1.dll").
		WithGroup(manifest.Native, "win-x86", "native/win-x86/n2.dll").
		WithGroup(manifest.Native, "linux", "native/linux/n.so")
	agnostic := manifest.NewLibrary("ridAgnosticLib", "2.0.0").
		WithGroup(manifest.Assembly, rid.Agnostic, "PortableLib.dll", "PortableLib2.dll")
	return manifest.New(g, specific, agnostic)
}

func explicit(m *manifest.Manifest, r rid.RID) Result {
	return Application(m, NewContext(m, rid.Explicit(r)), nil)
}

func TestApplicationMultipleAssetsPerType(t *testing.T) {
	m := multiAssetManifest(testGraph())

	tests := []struct {
		rid        rid.RID
		assemblies []string
		natives    []string
	}{
		{
			rid:        "win10-x64",
			assemblies: []string{"win/ManagedWin.dll", "win/AnotherWin.dll", "PortableLib.dll", "PortableLib2.dll"},
			natives:    []string{"native/win10-x64/n1.dll", "native/win10-x64/n2.dll", "native/win10-x64-2/n3.dll"},
		},
		{
			rid:        "win10-x86",
			assemblies: []string{"win/ManagedWin.dll", "win/AnotherWin.dll", "PortableLib.dll", "PortableLib2.dll"},
			natives:    []string{"native/win-x86/n1.dll", "native/win-x86/n2.dll"},
		},
		{
			rid:        "linux-x64",
			assemblies: []string{"DependencyLib.dll", "PortableLib.dll", "PortableLib2.dll"},
			natives:    []string{"native/linux/n.so"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.rid), func(t *testing.T) {
			res := explicit(m, tt.rid)
			if diff := cmp.Diff(tt.assemblies, res.Assemblies); diff != "" {
				t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.natives, res.NativeLibraries); diff != "" {
				t.Errorf("NativeLibraries mismatch (-want +got):\n%s", diff)
			}
			if res.Chain.UsedDefault {
				t.Error("UsedDefault = true for a RID known to the graph")
			}
		})
	}
}

func TestApplicationPerTypeTiers(t *testing.T) {
	lib := manifest.NewLibrary("NativeDependency", "1.0.0").
		WithGroup(manifest.Assembly, rid.Agnostic, "any/ManagedAny.dll").
		WithGroup(manifest.Assembly, "win", "win/ManagedWin.dll").
		WithGroup(manifest.Native, "win-x64", "native/win-x64/n.dll").
		WithGroup(manifest.Native, "win-x86", "native/win-x86/n.dll").
		WithGroup(manifest.Native, "linux", "native/linux/n.so")
	m := manifest.New(testGraph(), lib)

	tests := []struct {
		rid          rid.RID
		assemblyTier rid.RID
		nativeTier   rid.RID
	}{
		{"win10-x64", "win", "win-x64"},
		{"win10-x86", "win", "win-x86"},
		{"linux-x64", rid.Agnostic, "linux"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rid), func(t *testing.T) {
			res := explicit(m, tt.rid)
			if got, _ := res.Tier("NativeDependency", manifest.Assembly); got != tt.assemblyTier {
				t.Errorf("assembly tier = %q, want %q", got, tt.assemblyTier)
			}
			if got, _ := res.Tier("NativeDependency/1.0.0", manifest.Native); got != tt.nativeTier {
				t.Errorf("native tier = %q, want %q", got, tt.nativeTier)
			}
		})
	}
}

func TestApplicationUnknownRIDUsesDefaultChain(t *testing.T) {
	lib := manifest.NewLibrary("NativeDependency", "1.0.0").
		WithGroup(manifest.Native, "win", "win/WindowsNativeLibrary.dll").
		WithGroup(manifest.Native, "linux", "linux/LinuxNativeLibrary.so").
		WithGroup(manifest.Native, "osx", "osx/MacOSNativeLibrary.dylib")
	m := manifest.New(testGraph(), lib)

	tests := []struct {
		platform rid.RID
		want     []string
	}{
		{"linux-x64", []string{"linux/LinuxNativeLibrary.so"}},
		{"osx-arm64", []string{"osx/MacOSNativeLibrary.dylib"}},
		{"win-x64", []string{"win/WindowsNativeLibrary.dll"}},
		{"plan9-x64", nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			res := Application(m, NewContext(m, rid.Unknown()), platform.Static(tt.platform))
			if diff := cmp.Diff(tt.want, res.NativeLibraries, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("NativeLibraries mismatch (-want +got):\n%s", diff)
			}
			if !res.Chain.UsedDefault {
				t.Error("UsedDefault = false for an unknown RID")
			}
		})
	}
}

func TestApplicationUnsetRIDUsesPlatform(t *testing.T) {
	lib := manifest.NewLibrary("NativeDependency", "1.0.0").
		WithGroup(manifest.Assembly, "win", "win/WindowsAssembly.dll").
		WithGroup(manifest.Assembly, "linux", "linux/LinuxAssembly.dll").
		WithGroup(manifest.Assembly, "osx", "osx/MacOSAssembly.dll")
	m := manifest.New(testGraph(), lib)

	res := Application(m, NewContext(m, rid.Unset()), platform.Static("osx-x64"))
	if diff := cmp.Diff([]string{"osx/MacOSAssembly.dll"}, res.Assemblies); diff != "" {
		t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
	}
	if res.Chain.UsedDefault {
		t.Error("UsedDefault = true for a platform RID known to the graph")
	}
}

func TestApplicationAbsenceIsNotFailure(t *testing.T) {
	m := manifest.New(testGraph(),
		manifest.NewLibrary("AssemblyOnly", "1.0.0").WithGroup(manifest.Assembly, rid.Agnostic, "a.dll"),
		manifest.NewLibrary("WinOnly", "1.0.0").WithGroup(manifest.Native, "win", "w.dll"),
		manifest.NewLibrary("Empty", "1.0.0"),
	)
	res := explicit(m, "linux-x64")

	if len(res.NativeLibraries) != 0 {
		t.Errorf("NativeLibraries = %v, want none", res.NativeLibraries)
	}
	want := []Unresolved{{Library: "WinOnly/1.0.0", Kind: manifest.Native, Tags: []rid.RID{"win"}}}
	if diff := cmp.Diff(want, res.Unresolved); diff != "" {
		t.Errorf("Unresolved mismatch (-want +got):\n%s", diff)
	}
	if _, ok := res.Tier("Empty", manifest.Assembly); ok {
		t.Error("Tier(Empty) should report no contribution")
	}
}

func TestApplicationDeduplicatesAcrossLibraries(t *testing.T) {
	m := manifest.New(testGraph(),
		manifest.NewLibrary("A", "1.0.0").WithGroup(manifest.Assembly, rid.Agnostic, "shared.dll", "a.dll"),
		manifest.NewLibrary("B", "1.0.0").WithGroup(manifest.Assembly, "linux", "b.dll", "shared.dll"),
	)
	res := explicit(m, "linux-x64")
	if diff := cmp.Diff([]string{"shared.dll", "a.dll", "b.dll"}, res.Assemblies); diff != "" {
		t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
	}
}

func TestResolutionIsIdempotent(t *testing.T) {
	m := multiAssetManifest(testGraph())
	for _, r := range []rid.RID{"win10-x64", "linux-x64", "unknown-rid"} {
		first, err := json.Marshal(explicit(m, r))
		if err != nil {
			t.Fatal(err)
		}
		second, _ := json.Marshal(explicit(m, r))
		if string(first) != string(second) {
			t.Errorf("%s: results differ:\n%s\n%s", r, first, second)
		}
	}
}

func TestPerKindIndependence(t *testing.T) {
	full := multiAssetManifest(testGraph())

	var noNative, noAssembly []manifest.Library
	for _, l := range full.Libraries() {
		noNative = append(noNative, l.WithoutKind(manifest.Native))
		noAssembly = append(noAssembly, l.WithoutKind(manifest.Assembly))
	}
	g, _ := full.Graph()

	for _, r := range []rid.RID{"win10-x64", "win10-x86", "linux-x64"} {
		res := explicit(full, r)
		if diff := cmp.Diff(res.Assemblies, explicit(manifest.New(g, noNative...), r).Assemblies); diff != "" {
			t.Errorf("%s: removing native groups changed assemblies (-want +got):\n%s", r, diff)
		}
		if diff := cmp.Diff(res.NativeLibraries, explicit(manifest.New(g, noAssembly...), r).NativeLibraries); diff != "" {
			t.Errorf("%s: removing assembly groups changed natives (-want +got):\n%s", r, diff)
		}
	}
}

func TestNoTierMixing(t *testing.T) {
	m := manifest.New(testGraph(), manifest.NewLibrary("A", "1.0.0").
		WithGroup(manifest.Assembly, rid.Agnostic, "portable/A.dll").
		WithGroup(manifest.Assembly, "unix", "unix/A.dll"))

	res := explicit(m, "osx-x64")
	if diff := cmp.Diff([]string{"unix/A.dll"}, res.Assemblies); diff != "" {
		t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
	}
}

func TestSelfContainedDegradation(t *testing.T) {
	lib := manifest.NewLibrary("NativeDependency", "1.0.0").
		WithGroup(manifest.Native, "linux", "linux/n.so").
		WithGroup(manifest.Native, rid.Agnostic, "portable/n.so")

	withGraph := manifest.New(testGraph(), lib)
	noGraph := withGraph.WithoutGraph()

	if got := explicit(withGraph, "linux-x64").NativeLibraries; len(got) != 1 || got[0] != "linux/n.so" {
		t.Fatalf("with graph: NativeLibraries = %v, want [linux/n.so]", got)
	}

	res := explicit(noGraph, "linux-x64")
	if diff := cmp.Diff([]string{"portable/n.so"}, res.NativeLibraries); diff != "" {
		t.Errorf("without graph: NativeLibraries mismatch (-want +got):\n%s", diff)
	}
	if res.Chain.Source != rid.SourceExact {
		t.Errorf("Source = %v, want exact", res.Chain.Source)
	}

	exact := explicit(noGraph, "linux")
	if diff := cmp.Diff([]string{"linux/n.so"}, exact.NativeLibraries); diff != "" {
		t.Errorf("exact tag without graph mismatch (-want +got):\n%s", diff)
	}
}

func TestComponentOnSelfContainedHost(t *testing.T) {
	host := manifest.New(nil, manifest.NewLibrary("Host", "1.0.0").WithGroup(manifest.Assembly, rid.Agnostic, "Host.dll"))
	component := manifest.New(testGraph(),
		manifest.NewLibrary("Component", "1.0.0").WithGroup(manifest.Assembly, rid.Agnostic, "Component.dll"),
		manifest.NewLibrary("NativeDependency", "1.0.0").WithGroup(manifest.Native, "linux", "linux/n.so"),
	)

	hostRes := Application(host, NewContext(host, rid.Unset()), platform.Static("linux-x64"))
	res := Component(component, hostRes.Host())

	if len(res.NativeLibraries) != 0 {
		t.Errorf("NativeLibraries = %v, want none", res.NativeLibraries)
	}
	if diff := cmp.Diff([]string{"Component.dll"}, res.Assemblies); diff != "" {
		t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hostRes.Chain, res.Chain); diff != "" {
		t.Errorf("component chain differs from host chain (-host +component):\n%s", diff)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].Library != "NativeDependency/1.0.0" {
		t.Errorf("Unresolved = %+v", res.Unresolved)
	}
}

func TestComponentOnFrameworkDependentHost(t *testing.T) {
	host := manifest.New(testGraph())
	component := manifest.New(nil,
		manifest.NewLibrary("NativeDependency", "1.0.0").
			WithGroup(manifest.Native, "win", "win/n.dll").
			WithGroup(manifest.Native, "linux", "linux/n.so"),
	)

	for _, tt := range []struct {
		rid  rid.RID
		want string
	}{
		{"win10-x64", "win/n.dll"},
		{"linux-x64", "linux/n.so"},
	} {
		hostRes := explicit(host, tt.rid)
		res := Component(component, hostRes.Host())
		if len(res.NativeLibraries) != 1 || res.NativeLibraries[0] != tt.want {
			t.Errorf("%s: NativeLibraries = %v, want [%s]", tt.rid, res.NativeLibraries, tt.want)
		}
	}
}

func TestComponentOnSelfContainedHostWithGraph(t *testing.T) {
	host := manifest.New(testGraph(), manifest.NewLibrary("Host", "1.0.0").WithGroup(manifest.Assembly, rid.Agnostic, "Host.dll"))
	component := manifest.New(nil, manifest.NewLibrary("NativeDependency", "1.0.0").WithGroup(manifest.Native, "linux", "linux/n.so"))

	hostRes := Application(host, NewContext(host, rid.Unset()), platform.Static("linux-x64"))
	res := Component(component, hostRes.Host())
	if diff := cmp.Diff([]string{"linux/n.so"}, res.NativeLibraries); diff != "" {
		t.Errorf("NativeLibraries mismatch (-want +got):\n%s", diff)
	}
}

func TestZeroHostResolvesAgnosticOnly(t *testing.T) {
	m := manifest.New(nil, manifest.NewLibrary("A", "1.0.0").
		WithGroup(manifest.Assembly, "linux", "linux/a.dll").
		WithGroup(manifest.Assembly, rid.Agnostic, "a.dll"))
	res := Component(m, Host{})
	if diff := cmp.Diff([]string{"a.dll"}, res.Assemblies); diff != "" {
		t.Errorf("Assemblies mismatch (-want +got):\n%s", diff)
	}
}

func TestResultAssets(t *testing.T) {
	res := Result{Assemblies: []string{"a.dll"}, NativeLibraries: []string{"n.so"}}
	if got := res.Assets(manifest.Assembly); len(got) != 1 || got[0] != "a.dll" {
		t.Errorf("Assets(Assembly) = %v", got)
	}
	if got := res.Assets(manifest.Native); len(got) != 1 || got[0] != "n.so" {
		t.Errorf("Assets(Native) = %v", got)
	}
}
