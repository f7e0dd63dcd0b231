package manifest

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Parser reads a manifest document.
type Parser interface {
	// Parse decodes and validates a manifest.
	Parse(r io.Reader) (*Manifest, error)
	// Supports reports whether this parser handles the given filename.
	Supports(filename string) bool
	// Type returns the parser type identifier ("json", "yaml").
	Type() string
}

// JSONParser reads deps.json documents.
type JSONParser struct{}

// YAMLParser reads the same document shape written as YAML.
type YAMLParser struct{}

// DefaultParsers lists the built-in parsers in detection order.
var DefaultParsers = []Parser{JSONParser{}, YAMLParser{}}

func (JSONParser) Parse(r io.Reader) (*Manifest, error) { return read(r) }
func (JSONParser) Supports(name string) bool            { return strings.EqualFold(filepath.Ext(name), ".json") }
func (JSONParser) Type() string                         { return "json" }

func (YAMLParser) Parse(r io.Reader) (*Manifest, error) { return read(r) }
func (YAMLParser) Type() string                         { return "yaml" }
func (YAMLParser) Supports(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// DetectParser finds a parser that supports the given file path. With no
// parsers given, [DefaultParsers] are tried.
func DetectParser(path string, parsers ...Parser) (Parser, error) {
	if len(parsers) == 0 {
		parsers = DefaultParsers
	}
	name := filepath.Base(path)
	for _, p := range parsers {
		if p.Supports(name) {
			return p, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported manifest: %s", name)
}

// ParseFile reads and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	p, err := DetectParser(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open manifest")
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open manifest")
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse decodes a manifest from JSON or YAML bytes. Document order of
// libraries, asset groups, assets and runtimes is preserved.
func Parse(data []byte) (*Manifest, error) {
	var root *yaml.Node
	if isJSON(data) {
		n, err := decodeJSON(data)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
		}
		root = n
	} else {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
		}
		if len(doc.Content) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest is empty")
		}
		root = doc.Content[0]
	}
	m, err := decodeRoot(root)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func read(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read manifest")
	}
	return Parse(data)
}

type field struct {
	key   string
	value *yaml.Node
}

func fields(n *yaml.Node, what string) ([]field, error) {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n, "%s must be an object", what)
	}
	out := make([]field, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := deref(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			return nil, invalid(k, "%s has a non-string key", what)
		}
		out = append(out, field{key: k.Value, value: deref(n.Content[i+1])})
	}
	return out, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func invalid(n *yaml.Node, format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidManifest, "line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func decodeRoot(root *yaml.Node) (*Manifest, error) {
	top, err := fields(root, "manifest")
	if err != nil {
		return nil, err
	}

	var (
		targetName string
		targets    []field
		types      = map[string]string{}
		graph      *rid.Graph
	)
	for _, f := range top {
		switch f.key {
		case "runtimeTarget":
			if targetName, err = decodeRuntimeTarget(f.value); err != nil {
				return nil, err
			}
		case "targets":
			if targets, err = fields(f.value, "targets"); err != nil {
				return nil, err
			}
		case "libraries":
			if types, err = decodeLibraryTypes(f.value); err != nil {
				return nil, err
			}
		case "runtimes":
			if graph, err = decodeRuntimes(f.value); err != nil {
				return nil, err
			}
		}
	}

	m := &Manifest{graph: graph}
	if len(targets) == 0 {
		return m, nil
	}
	target := targets[0]
	if targetName != "" {
		found := false
		for _, t := range targets {
			if t.key == targetName {
				target, found = t, true
				break
			}
		}
		if !found {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "runtime target %q not found in targets", targetName)
		}
	}
	m.target = target.key

	entries, err := fields(target.value, "target "+target.key)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		lib, err := decodeLibrary(e.key, e.value)
		if err != nil {
			return nil, err
		}
		lib.Type = types[e.key]
		m.libs = append(m.libs, lib)
	}
	return m, nil
}

func decodeRuntimeTarget(n *yaml.Node) (string, error) {
	switch {
	case isNull(n):
		return "", nil
	case n.Kind == yaml.ScalarNode:
		return n.Value, nil
	}
	fs, err := fields(n, "runtimeTarget")
	if err != nil {
		return "", err
	}
	for _, f := range fs {
		if f.key == "name" {
			return f.value.Value, nil
		}
	}
	return "", nil
}

func decodeLibraryTypes(n *yaml.Node) (map[string]string, error) {
	types := map[string]string{}
	if isNull(n) {
		return types, nil
	}
	libs, err := fields(n, "libraries")
	if err != nil {
		return nil, err
	}
	for _, l := range libs {
		props, err := fields(l.value, "library "+l.key)
		if err != nil {
			return nil, err
		}
		for _, p := range props {
			if p.key == "type" {
				types[l.key] = p.value.Value
			}
		}
	}
	return types, nil
}

func decodeRuntimes(n *yaml.Node) (*rid.Graph, error) {
	if isNull(n) {
		return nil, nil
	}
	fs, err := fields(n, "runtimes")
	if err != nil {
		return nil, err
	}
	entries := make([]rid.Entry, 0, len(fs))
	for _, f := range fs {
		list := f.value
		if list.Kind != yaml.SequenceNode {
			return nil, invalid(list, "runtimes[%s] must be an array", f.key)
		}
		e := rid.Entry{RID: rid.RID(f.key)}
		for _, item := range list.Content {
			item = deref(item)
			if item.Kind != yaml.ScalarNode {
				return nil, invalid(item, "runtimes[%s] must contain strings", f.key)
			}
			e.Fallbacks = append(e.Fallbacks, rid.RID(item.Value))
		}
		entries = append(entries, e)
	}
	g, err := rid.NewGraph(entries...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "runtimes")
	}
	return g, nil
}

func decodeLibrary(id string, n *yaml.Node) (Library, error) {
	name, version, ok := strings.Cut(id, "/")
	if !ok {
		return Library{}, invalid(n, "library key %q must be name/version", id)
	}
	lib := Library{Name: name, Version: version}

	props, err := fields(n, "library "+id)
	if err != nil {
		return Library{}, err
	}
	for _, p := range props {
		switch p.key {
		case "runtime", "native":
			kind := Assembly
			if p.key == "native" {
				kind = Native
			}
			paths, err := fields(p.value, id+" "+p.key)
			if err != nil {
				return Library{}, err
			}
			for _, a := range paths {
				lib = lib.WithGroup(kind, rid.Agnostic, a.key)
			}
		case "runtimeTargets":
			assets, err := fields(p.value, id+" runtimeTargets")
			if err != nil {
				return Library{}, err
			}
			for _, a := range assets {
				kind, tag, err := decodeRuntimeAsset(id, a)
				if err != nil {
					return Library{}, err
				}
				lib = lib.WithGroup(kind, tag, a.key)
			}
		}
	}
	return lib, nil
}

func decodeRuntimeAsset(id string, a field) (AssetKind, rid.RID, error) {
	props, err := fields(a.value, id+" runtimeTargets["+a.key+"]")
	if err != nil {
		return 0, "", err
	}
	var (
		tag       string
		assetType string
	)
	for _, p := range props {
		switch p.key {
		case "rid":
			tag = p.value.Value
		case "assetType":
			assetType = p.value.Value
		}
	}
	if tag == "" {
		return 0, "", invalid(a.value, "%s runtimeTargets[%s] has no rid", id, a.key)
	}
	switch assetType {
	case "runtime":
		return Assembly, rid.RID(tag), nil
	case "native":
		return Native, rid.RID(tag), nil
	default:
		return 0, "", invalid(a.value, "%s runtimeTargets[%s] has unknown assetType %q", id, a.key, assetType)
	}
}
