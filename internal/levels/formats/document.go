// Package formats provides pluggable level file format parsers.
// Every format decodes into the same Document, which the levels package
// validates and converts into a simulation definition.
package formats

import (
	"fmt"
	"path"
	"strings"

	"github.com/vovakirdan/wormtrack/internal/registry"
)

// Document is the format-independent content of a level file.
// Strings are kept raw; the levels package parses and validates them.
type Document struct {
	ID          string            `yaml:"id" hcl:"id"`
	Name        string            `yaml:"name" hcl:"name,optional"`
	Description string            `yaml:"description,omitempty" hcl:"description,optional"`
	Required    int               `yaml:"required,omitempty" hcl:"required,optional"`
	TimeLimitMs float64           `yaml:"time_limit_ms,omitempty" hcl:"time_limit_ms,optional"`
	Nodes       []NodeDoc         `yaml:"nodes" hcl:"node,block"`
	Edges       []EdgeDoc         `yaml:"edges" hcl:"edge,block"`
	Branches    []BranchDoc       `yaml:"branches,omitempty" hcl:"branch,block"`
	Hazards     []HazardDoc       `yaml:"hazards,omitempty" hcl:"hazard,block"`
	Worms       []WormDoc         `yaml:"worms" hcl:"worm,block"`
	Metadata    map[string]string `yaml:"metadata,omitempty" hcl:"metadata,optional"`
}

// NodeDoc is one track node.
type NodeDoc struct {
	ID    string  `yaml:"id" hcl:"id,label"`
	Kind  string  `yaml:"kind" hcl:"kind,optional"`
	X     float64 `yaml:"x" hcl:"x,optional"`
	Y     float64 `yaml:"y" hcl:"y,optional"`
	Color string  `yaml:"color,omitempty" hcl:"color,optional"`
	Size  string  `yaml:"size,omitempty" hcl:"size,optional"`
}

// EdgeDoc is one directed track segment. Points are [x, y] pairs.
type EdgeDoc struct {
	ID     string      `yaml:"id" hcl:"id,label"`
	From   string      `yaml:"from" hcl:"from"`
	To     string      `yaml:"to" hcl:"to"`
	Length float64     `yaml:"length,omitempty" hcl:"length,optional"`
	Width  string      `yaml:"width,omitempty" hcl:"width,optional"`
	Points [][]float64 `yaml:"points,omitempty" hcl:"points,optional"`
}

// BranchDoc declares the out-edge order and default of a routing node.
type BranchDoc struct {
	Node    string   `yaml:"node" hcl:"node,label"`
	Out     []string `yaml:"out,omitempty" hcl:"out,optional"`
	Default int      `yaml:"default,omitempty" hcl:"default,optional"`
}

// HazardDoc is one hazard.
type HazardDoc struct {
	ID             string   `yaml:"id" hcl:"id,label"`
	Kind           string   `yaml:"kind" hcl:"kind"`
	Target         string   `yaml:"target,omitempty" hcl:"target,optional"`
	Pool           []string `yaml:"pool,omitempty" hcl:"pool,optional"`
	IntervalMs     float64  `yaml:"interval_ms,omitempty" hcl:"interval_ms,optional"`
	ActiveMs       float64  `yaml:"active_ms,omitempty" hcl:"active_ms,optional"`
	InitialDelayMs float64  `yaml:"initial_delay_ms,omitempty" hcl:"initial_delay_ms,optional"`
	WarningLeadMs  float64  `yaml:"warning_lead_ms,omitempty" hcl:"warning_lead_ms,optional"`
	MaxAppearances int      `yaml:"max_appearances,omitempty" hcl:"max_appearances,optional"`
	Clearance      float64  `yaml:"clearance,omitempty" hcl:"clearance,optional"`
}

// WormDoc is one worm spawn entry.
type WormDoc struct {
	ID      string  `yaml:"id" hcl:"id,label"`
	Color   string  `yaml:"color" hcl:"color"`
	Size    string  `yaml:"size,omitempty" hcl:"size,optional"`
	Speed   float64 `yaml:"speed" hcl:"speed"`
	Spawn   string  `yaml:"spawn" hcl:"spawn"`
	DelayMs float64 `yaml:"delay_ms,omitempty" hcl:"delay_ms,optional"`
}

// Parser decodes raw file content. filename is used in diagnostics only.
type Parser func(data []byte, filename string) (Document, error)

// Parsers holds every registered format keyed by file extension,
// including the leading dot.
var Parsers = registry.New[Parser]("format")

// Parse decodes data with the parser registered for the file's extension.
func Parse(filename string, data []byte) (Document, error) {
	ext := strings.ToLower(path.Ext(filename))
	parse, err := Parsers.Get(ext)
	if err != nil {
		return Document{}, fmt.Errorf("unsupported extension %q: %w", ext, err)
	}
	return parse(data, filename)
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return Parsers.Keys()
}

// Supported reports whether a file name has a registered extension.
func Supported(filename string) bool {
	return Parsers.Exists(strings.ToLower(path.Ext(filename)))
}
