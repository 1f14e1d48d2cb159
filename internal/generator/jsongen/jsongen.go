// Package jsongen emits the "JSON model dump" generator named in spec.md
// §2's generator-table row ("Code / config generators... JSON model
// dump") and SPEC_FULL.md §4.5x: a full serialisation of the conceptual
// model, validated against a schema built with
// github.com/google/jsonschema-go/jsonschema before it is written, the
// same package the teacher uses in internal/mcp/server.go to describe
// tool input/output shapes.
package jsongen

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/legato-af/mktools/internal/model"
)

// AppDump is the JSON-serialisable shape of one App, sorted so repeated
// runs over the same model produce byte-identical output (spec.md §5
// ordering guarantee 4).
type AppDump struct {
	Name           string       `json:"name"`
	Version        string       `json:"version,omitempty"`
	IsSandboxed    bool         `json:"isSandboxed"`
	MaxMemoryBytes int          `json:"maxMemoryBytes"`
	Executables    []ExeDump    `json:"executables"`
	Bindings       []string     `json:"bindings"`
	Groups         []string     `json:"groups,omitempty"`
}

type ExeDump struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
}

// SystemDump is the top-level document written to the model dump file.
type SystemDump struct {
	System string    `json:"system"`
	Apps   []AppDump `json:"apps"`
}

// BuildDump converts a fully-resolved System into its JSON-dump shape.
func BuildDump(sys *model.System) *SystemDump {
	dump := &SystemDump{System: sys.Name, Apps: []AppDump{}}
	for _, app := range sys.Apps {
		ad := AppDump{
			Name:           app.Name,
			Version:        app.Version,
			IsSandboxed:    app.IsSandboxed,
			MaxMemoryBytes: app.MaxMemoryBytes,
			Groups:         app.Groups,
			Executables:    []ExeDump{},
			Bindings:       []string{},
		}
		for _, exe := range app.Exes {
			ed := ExeDump{Name: exe.Name, Components: []string{}}
			for _, ci := range exe.Components {
				ed.Components = append(ed.Components, ci.Component.Name)
			}
			ad.Executables = append(ad.Executables, ed)
		}
		for _, b := range app.Bindings {
			ad.Bindings = append(ad.Bindings, bindingLabel(b))
		}
		sort.Strings(ad.Bindings)
		dump.Apps = append(dump.Apps, ad)
	}
	sort.Slice(dump.Apps, func(i, j int) bool { return dump.Apps[i].Name < dump.Apps[j].Name })
	return dump
}

func bindingLabel(b *model.Binding) string {
	return fmt.Sprintf("%s -> %s", endpointLabel(b.Client), endpointLabel(b.Server))
}

func endpointLabel(ep model.BindingEndpoint) string {
	if ep.IsExternal {
		return fmt.Sprintf("%s.%s", ep.ExternalAgentName, ep.ExternalAlias)
	}
	exeName := ""
	if ep.Exe != nil {
		exeName = ep.Exe.Name
	}
	alias := ""
	if ep.Iface != nil {
		alias = ep.Iface.Alias
	}
	return fmt.Sprintf("%s.%s", exeName, alias)
}

// Schema describes SystemDump's shape so third-party tooling (and this
// generator's own self-check) can validate a rendered dump structurally.
func Schema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"system", "apps"},
		Properties: map[string]*jsonschema.Schema{
			"system": {Type: "string"},
			"apps": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type:     "object",
					Required: []string{"name", "isSandboxed", "maxMemoryBytes", "executables", "bindings"},
					Properties: map[string]*jsonschema.Schema{
						"name":           {Type: "string"},
						"version":        {Type: "string"},
						"isSandboxed":    {Type: "boolean"},
						"maxMemoryBytes": {Type: "integer"},
						"groups":         {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						"bindings":       {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						"executables": {
							Type: "array",
							Items: &jsonschema.Schema{
								Type:     "object",
								Required: []string{"name", "components"},
								Properties: map[string]*jsonschema.Schema{
									"name":       {Type: "string"},
									"components": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
								},
							},
						},
					},
				},
			},
		},
	}
}

// Render marshals dump to indented JSON after validating it against
// Schema, so a generator bug that produces a structurally malformed dump
// is caught before it reaches disk rather than silently shipped.
func Render(dump *SystemDump) ([]byte, error) {
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, err
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, err
	}
	resolved, err := Schema().Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("jsongen: resolving schema: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return nil, fmt.Errorf("jsongen: model dump failed its own schema: %w", err)
	}
	return data, nil
}
