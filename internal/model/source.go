package model

import (
	"path/filepath"
	"strings"
)

// Path represents a file system path.
type Path string

// Format names a configuration encoding understood by the profile codec.
type Format string

const (
	// FormatAFDO is the text AFDO profile format: one unindented header line per
	// function followed by its indented body.
	FormatAFDO Format = "afdo"
	// FormatYAML is a flat YAML mapping of component name to payload.
	FormatYAML Format = "yaml"
	// FormatJSON is a flat JSON object of component name to payload.
	FormatJSON Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatAFDO, FormatYAML, FormatJSON}

// FormatFromPath infers the format from a file extension, defaulting to AFDO.
func FormatFromPath(path Path) Format {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}

	return FormatAFDO
}

// Profile is a configuration together with where it came from.
type Profile struct {
	Path   Path
	Format Format
	Config Configuration
}
