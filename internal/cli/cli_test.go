package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/ridasset/internal/config"
	"github.com/matzehuels/ridasset/pkg/pipeline"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// isolate points the config and cache directories at fresh temp dirs.
func isolate(t *testing.T) (configHome, cacheHome string) {
	t.Helper()
	configHome, cacheHome = t.TempDir(), t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return configHome, cacheHome
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResolveText(t *testing.T) {
	isolate(t)
	out, err := run(t, "resolve", "testdata/app.deps.json",
		"--rid", "linux-x64",
		"--component", "testdata/plugin.deps.yaml",
		"--no-cache")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{
		"Application",
		"App.dll",
		"runtimes/linux-x64/native/libnative.so",
		"Component plugin.deps.yaml",
		"runtimes/linux/native/libplugin.so",
		"Native/2.1.0 native linux-x64",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResolveJSON(t *testing.T) {
	isolate(t)
	out, err := run(t, "resolve", "testdata/app.deps.json", "--rid", "win-x64", "--format", "json", "--no-cache")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(res.Application.NativeLibraries) != 1 || res.Application.NativeLibraries[0] != "runtimes/win/native/native.dll" {
		t.Errorf("natives = %v", res.Application.NativeLibraries)
	}
}

func TestResolveOutputFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "out", "assets.json")
	out, err := run(t, "resolve", "testdata/app.deps.json", "--rid", "linux-x64", "-f", "json", "-o", path, "--no-cache")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output should name the written file:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Errorf("written file is not JSON:\n%s", data)
	}
}

func TestResolveUsesCache(t *testing.T) {
	isolate(t)
	args := []string{"resolve", "testdata/app.deps.json", "--rid", "linux-x64"}

	first, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(first, "fresh") {
		t.Errorf("first run should be fresh:\n%s", first)
	}
	second, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(second, "cached") {
		t.Errorf("second run should be cached:\n%s", second)
	}
}

func TestResolveConfigDefaultRID(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("default_rid = \"win-x64\"\n[cache]\ndisabled = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfgPath, "resolve", "testdata/app.deps.json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "runtimes/win/native/native.dll") {
		t.Errorf("default_rid should select win assets:\n%s", out)
	}

	out, err = run(t, "--config", cfgPath, "resolve", "testdata/app.deps.json", "--rid", "linux-x64")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "runtimes/linux-x64/native/libnative.so") {
		t.Errorf("--rid should override default_rid:\n%s", out)
	}
}

func TestResolveErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing manifest", []string{"resolve", "testdata/absent.deps.json"}},
		{"bad format", []string{"resolve", "testdata/app.deps.json", "--format", "xml"}},
		{"rid and unknown", []string{"resolve", "testdata/app.deps.json", "--rid", "linux-x64", "--unknown-rid"}},
		{"no args", []string{"resolve"}},
		{"missing component", []string{"resolve", "testdata/app.deps.json", "--component", "testdata/absent.yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestChainCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "chain", "testdata/app.deps.json", "--rid", "linux-x64")
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if !strings.Contains(out, "graph") || !strings.Contains(out, "unix-x64") {
		t.Errorf("chain output:\n%s", out)
	}
	if strings.Contains(out, "used fallback RID") {
		t.Errorf("graph chain should not warn:\n%s", out)
	}

	out, err = run(t, "chain", "testdata/app.deps.json", "--unknown-rid")
	if err != nil {
		t.Fatalf("chain --unknown-rid: %v", err)
	}
	if !strings.Contains(out, "used fallback RID") {
		t.Errorf("unknown RID should warn:\n%s", out)
	}

	out, err = run(t, "chain", "testdata/app.deps.json", "--rid", "win-x64", "--no-graph", "-f", "json")
	if err != nil {
		t.Fatalf("chain json: %v", err)
	}
	var chain rid.Chain
	if err := json.Unmarshal([]byte(out), &chain); err != nil {
		t.Fatalf("chain output is not JSON: %v", err)
	}
	if chain.Source != rid.SourceExact || len(chain.Tiers) != 1 || chain.Tiers[0] != "win-x64" {
		t.Errorf("chain = %+v, want exact [win-x64]", chain)
	}
}

func TestGraphCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "graph", "testdata/app.deps.json", "--no-cache")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.HasPrefix(out, "digraph RIDs") {
		t.Errorf("graph output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "builtin.dot")
	if _, err := run(t, "graph", "--builtin", "-o", path); err != nil {
		t.Fatalf("graph --builtin: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"osx-arm64" -> "osx"`) {
		t.Error("builtin graph missing osx edge")
	}

	if _, err := run(t, "graph"); err == nil {
		t.Error("graph without manifest or --builtin should fail")
	}
	if _, err := run(t, "graph", "testdata/plugin.deps.yaml"); err == nil {
		t.Error("graph of a manifest without runtimes should fail")
	}
}

func TestCacheCommands(t *testing.T) {
	_, cacheHome := isolate(t)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, config.AppName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}

	out, err = run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on empty cache:\n%s", out)
	}

	if _, err := run(t, "resolve", "testdata/app.deps.json", "--rid", "linux-x64"); err != nil {
		t.Fatal(err)
	}
	out, err = run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("clear after resolve:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	if _, err := run(t, "completion", "fish"); err != nil {
		t.Errorf("completion fish: %v", err)
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, "-", []byte("x")); err != nil || buf.String() != "x" {
		t.Errorf("writeOutput(-) = %q, %v", buf.String(), err)
	}

	path := filepath.Join(t.TempDir(), "nested", "file.txt")
	if err := writeOutput(&buf, path, []byte("y")); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "y" {
		t.Errorf("file contents = %q", data)
	}
}
