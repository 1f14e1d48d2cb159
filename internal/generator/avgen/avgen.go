// Package avgen emits the one-page AirVantage application manifest XML
// spec.md §6 names: "AirVantage manifest.app — XML with the namespace
// http://www.sierrawireless.com/airvantage/application/1.0". The XML
// shape is the only contract in scope (§1's Non-goals exclude the
// AirVantage payload's cryptographic/transport details); encoding/xml is
// used directly since no example repo in the retrieval pack carries a
// third-party XML library — see DESIGN.md.
package avgen

import (
	"bytes"
	"encoding/xml"

	"github.com/legato-af/mktools/internal/model"
)

const avNamespace = "http://www.sierrawireless.com/airvantage/application/1.0"

// Manifest is the root element of manifest.app.
type Manifest struct {
	XMLName xml.Name `xml:"app"`
	XMLNS   string   `xml:"xmlns,attr"`
	Name    string   `xml:"name,attr"`
	Type    string   `xml:"type,attr"`
	Version string   `xml:"revision,attr"`

	Capabilities Capabilities `xml:"capabilities"`
}

type Capabilities struct {
	Embedded EmbeddedApp `xml:"embedded-app"`
}

type EmbeddedApp struct {
	AppName string `xml:"app-name"`
}

// BuildManifest converts a resolved App into its manifest shape.
func BuildManifest(app *model.App) *Manifest {
	version := app.Version
	if version == "" {
		version = "1.0"
	}
	return &Manifest{
		XMLNS:        avNamespace,
		Name:         app.Name,
		Type:         "legatoApp",
		Version:      version,
		Capabilities: Capabilities{Embedded: EmbeddedApp{AppName: app.Name}},
	}
}

// Render serialises m to indented XML with the standard declaration.
func Render(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
