package manifest

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/ridasset/pkg/errors"
	"github.com/matzehuels/ridasset/pkg/rid"
)

// Validate checks every library name, version, RID tag and asset path in m,
// and every RID of its fallback graph. The first problem found is returned
// as an [errors.Error] with code [errors.ErrCodeInvalidManifest].
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.libs))
	for _, l := range m.libs {
		if err := validateLibrary(l); err != nil {
			return err
		}
		if seen[l.ID()] {
			return errors.New(errors.ErrCodeInvalidManifest, "duplicate library %s", l.ID())
		}
		seen[l.ID()] = true
	}
	for _, e := range m.graph.Entries() {
		if err := errors.ValidateRID(string(e.RID)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "runtimes")
		}
		for _, fb := range e.Fallbacks {
			if err := errors.ValidateRID(string(fb)); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "runtimes[%s]", e.RID)
			}
		}
	}
	return nil
}

func validateLibrary(l Library) error {
	if err := errors.ValidateLibraryName(l.Name); err != nil {
		return err
	}
	if _, err := ParseVersion(l.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "library %s: invalid version %q", l.Name, l.Version)
	}
	for _, kind := range Kinds {
		for _, g := range l.groups[kind] {
			if g.RID != rid.Agnostic {
				if err := errors.ValidateRID(string(g.RID)); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidManifest, err, "library %s", l.ID())
				}
			}
			if len(g.Assets) == 0 {
				return errors.New(errors.ErrCodeInvalidManifest, "library %s: empty %s group for %s", l.ID(), kind, g.RID)
			}
			for _, a := range g.Assets {
				if err := errors.ValidatePath(a); err != nil {
					return errors.Wrap(errors.ErrCodeInvalidManifest, err, "library %s: asset %q", l.ID(), a)
				}
			}
		}
	}
	return nil
}

// ParseVersion parses a library version. NuGet allows a fourth numeric
// revision component ("4.0.0.1"), which is accepted by validating the first
// three components.
func ParseVersion(v string) (*semver.Version, error) {
	sv, err := semver.NewVersion(v)
	if err == nil {
		return sv, nil
	}
	core, rest, _ := strings.Cut(v, "-")
	parts := strings.Split(core, ".")
	if len(parts) != 4 || !isDigits(parts[3]) {
		return nil, err
	}
	trimmed := strings.Join(parts[:3], ".")
	if rest != "" {
		trimmed += "-" + rest
	}
	if sv, err2 := semver.NewVersion(trimmed); err2 == nil {
		return sv, nil
	}
	return nil, err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
