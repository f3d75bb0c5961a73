// Package manifest parses and validates the metadata submitted alongside
// a package archive.
package manifest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"modvault/internal/version"
)

const (
	NameMaxLen        = 128
	URLMaxLen         = 1024
	DescriptionMaxLen = 256
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z0-9 \-_]+$`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	classPattern = regexp.MustCompile(`^[a-zA-Z]+$`)
	dllPattern   = regexp.MustCompile(`^[a-zA-Z0-9\-_]+\.dll$`)
)

// ValidationError reports a manifest that failed validation, scoped to
// the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest error for field '%s': %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// VersionBounds are optional inclusive version bounds on a dependency or
// target entry. Empty string means unbounded on that side.
type VersionBounds struct {
	MinVersion string `json:"MinVersion,omitempty"`
	MaxVersion string `json:"MaxVersion,omitempty"`
}

// Manifest is the submitted package metadata.
type Manifest struct {
	Name         string                   `json:"Name"`
	URL          string                   `json:"Url"`
	Version      string                   `json:"Version"`
	Description  string                   `json:"Description"`
	Dependencies map[string]VersionBounds `json:"Dependencies,omitempty"`
	Targets      map[string]VersionBounds `json:"Targets"`
	ContentTypes int                      `json:"ContentTypes"`
	Artifacts    []string                 `json:"Artifacts,omitempty"`

	PreloadAssemblies []string `json:"PreloadAssemblies,omitempty"`
	PreloadAssembly   string   `json:"PreloadAssembly,omitempty"`
	PreloadClass      string   `json:"PreloadClass,omitempty"`
	RuntimeAssemblies []string `json:"RuntimeAssemblies,omitempty"`
	RuntimeAssembly   string   `json:"RuntimeAssembly,omitempty"`
	RuntimeClass      string   `json:"RuntimeClass,omitempty"`
}

var requiredKeys = []string{"Name", "Url", "Version", "Description", "Targets", "ContentTypes"}

// Parse decodes and validates a manifest. The returned error is a
// *ValidationError for anything the submitter can fix.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid("manifest", "invalid JSON: %v", err)
	}
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return nil, invalid(key, "required field is missing")
		}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, invalid("manifest", "malformed field: %v", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every field constraint. Presence of required keys is
// Parse's job; Validate assumes the struct is populated.
func (m *Manifest) Validate() error {
	if m.Name == "" || len(m.Name) > NameMaxLen || !namePattern.MatchString(m.Name) {
		return invalid("Name", "must be 1-%d characters of letters, digits, spaces, dashes or underscores", NameMaxLen)
	}
	if len(m.URL) > URLMaxLen {
		return invalid("Url", "must be at most %d characters", URLMaxLen)
	}
	if _, err := url.ParseRequestURI(m.URL); err != nil {
		return invalid("Url", "must be a valid URI")
	}
	if !version.IsValid(m.Version) {
		return invalid("Version", "must match MAJOR.MINOR.PATCH")
	}
	if len(m.Description) > DescriptionMaxLen {
		return invalid("Description", "must be at most %d characters", DescriptionMaxLen)
	}
	if err := validateBoundsMap("Dependencies", m.Dependencies); err != nil {
		return err
	}
	if err := validateBoundsMap("Targets", m.Targets); err != nil {
		return err
	}

	if err := symmetricGroup("PreloadClass", m.PreloadClass, "PreloadAssembly", m.PreloadAssembly, "PreloadAssemblies", m.PreloadAssemblies); err != nil {
		return err
	}
	if err := symmetricGroup("RuntimeClass", m.RuntimeClass, "RuntimeAssembly", m.RuntimeAssembly, "RuntimeAssemblies", m.RuntimeAssemblies); err != nil {
		return err
	}
	if m.PreloadClass != "" && !classPattern.MatchString(m.PreloadClass) {
		return invalid("PreloadClass", "must contain only letters")
	}
	if m.PreloadAssembly != "" && !classPattern.MatchString(m.PreloadAssembly) {
		return invalid("PreloadAssembly", "must contain only letters")
	}
	if m.RuntimeClass != "" && !classPattern.MatchString(m.RuntimeClass) {
		return invalid("RuntimeClass", "must contain only letters")
	}
	if m.RuntimeAssembly != "" && !classPattern.MatchString(m.RuntimeAssembly) {
		return invalid("RuntimeAssembly", "must contain only letters")
	}
	for _, dll := range m.PreloadAssemblies {
		if !dllPattern.MatchString(dll) {
			return invalid("PreloadAssemblies", "entry %q must be a .dll filename", dll)
		}
	}
	for _, dll := range m.RuntimeAssemblies {
		if !dllPattern.MatchString(dll) {
			return invalid("RuntimeAssemblies", "entry %q must be a .dll filename", dll)
		}
	}
	return nil
}

func validateBoundsMap(field string, entries map[string]VersionBounds) error {
	for slug, bounds := range entries {
		if !slugPattern.MatchString(slug) {
			return invalid(field, "key %q must be a lowercase slug", slug)
		}
		if bounds.MinVersion != "" && !version.IsValid(bounds.MinVersion) {
			return invalid(field, "MinVersion for %q must match MAJOR.MINOR.PATCH", slug)
		}
		if bounds.MaxVersion != "" && !version.IsValid(bounds.MaxVersion) {
			return invalid(field, "MaxVersion for %q must match MAJOR.MINOR.PATCH", slug)
		}
	}
	return nil
}

// symmetricGroup enforces that a class/assembly/assemblies triple is
// either fully absent or fully present.
func symmetricGroup(classField, class, assemblyField, assembly, assembliesField string, assemblies []string) error {
	if class == "" && assembly == "" {
		return nil
	}
	if class != "" {
		if len(assemblies) == 0 {
			return invalid(assembliesField, "required when %s is present", classField)
		}
		if assembly == "" {
			return invalid(assemblyField, "required when %s is present", classField)
		}
	}
	if assembly != "" {
		if len(assemblies) == 0 {
			return invalid(assembliesField, "required when %s is present", assemblyField)
		}
		if class == "" {
			return invalid(classField, "required when %s is present", assemblyField)
		}
	}
	return nil
}
