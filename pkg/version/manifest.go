package version

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/camkit-project/camkit-go/pkg/metadata"
	"gopkg.in/yaml.v3"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// Manifest describes the capability tags a protocol version expects a
// camera to advertise at enumeration.
type Manifest struct {
	Version      string       `yaml:"version"`
	Description  string       `yaml:"description"`
	Capabilities Capabilities `yaml:"capabilities"`
}

// Capabilities lists mandatory and optional capability tags.
type Capabilities struct {
	Mandatory []CapabilityDef `yaml:"mandatory"`
	Optional  []CapabilityDef `yaml:"optional"`
}

// CapabilityDef names a capability tag, its value type and the minimum
// number of values it must carry.
type CapabilityDef struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	MinCount uint32 `yaml:"minCount"`
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Manifest)
)

// LoadManifest loads a manifest by version string (e.g. "1.0").
func LoadManifest(ver string) (*Manifest, error) {
	cacheMu.RLock()
	if m, ok := cache[ver]; ok {
		cacheMu.RUnlock()
		return m, nil
	}
	cacheMu.RUnlock()

	data, err := manifestFS.ReadFile("manifests/" + ver + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("manifest version %q not found: %w", ver, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", ver, err)
	}

	cacheMu.Lock()
	cache[ver] = &m
	cacheMu.Unlock()

	return &m, nil
}

// LoadCurrentManifest loads the manifest for the current protocol version.
func LoadCurrentManifest() (*Manifest, error) {
	return LoadManifest(Current)
}

// AvailableManifests returns the version strings of all embedded manifests.
func AvailableManifests() ([]string, error) {
	entries, err := manifestFS.ReadDir("manifests")
	if err != nil {
		return nil, fmt.Errorf("reading manifests directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			versions = append(versions, name)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// MandatoryNames returns the names of all mandatory capability tags, sorted.
func (m *Manifest) MandatoryNames() []string {
	out := make([]string, 0, len(m.Capabilities.Mandatory))
	for _, c := range m.Capabilities.Mandatory {
		out = append(out, c.Name)
	}
	sort.Strings(out)
	return out
}

// ValidationResult holds the outcome of validating capabilities against a
// manifest.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateCapabilities checks a device's capability store against the
// manifest. Missing or malformed mandatory tags are errors; malformed
// optional tags are warnings.
func ValidateCapabilities(m *Manifest, caps *metadata.Store) ValidationResult {
	var result ValidationResult

	for _, def := range m.Capabilities.Mandatory {
		if msg := checkCapability(def, caps, true); msg != "" {
			result.Errors = append(result.Errors, msg)
		}
	}
	for _, def := range m.Capabilities.Optional {
		if msg := checkCapability(def, caps, false); msg != "" {
			result.Warnings = append(result.Warnings, msg)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func checkCapability(def CapabilityDef, caps *metadata.Store, mandatory bool) string {
	tag, ok := metadata.TagByName(def.Name)
	if !ok {
		return fmt.Sprintf("manifest references unknown tag %s", def.Name)
	}
	typ, ok := metadata.ParseType(def.Type)
	if !ok {
		return fmt.Sprintf("manifest tag %s has unknown type %q", def.Name, def.Type)
	}

	it, present := caps.Get(tag)
	if !present {
		if mandatory {
			return fmt.Sprintf("mandatory capability %s missing", def.Name)
		}
		return ""
	}
	if it.Type != typ {
		return fmt.Sprintf("capability %s has type %s, expected %s", def.Name, it.Type, typ)
	}
	if it.Count < def.MinCount {
		return fmt.Sprintf("capability %s has %d values, expected at least %d", def.Name, it.Count, def.MinCount)
	}
	return ""
}
