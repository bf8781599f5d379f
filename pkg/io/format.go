package io

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Format identifies a station file encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatRailML Format = "railml"
)

// Formats returns the supported formats.
func Formats() []Format { return []Format{FormatJSON, FormatYAML, FormatRailML} }

// ParseFormat resolves a format name. "yml" and "xml" are accepted as
// aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "railml", "xml":
		return FormatRailML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported format %q", s)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeUnsupported, "cannot detect format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Read decodes a station in the given format. For RailML only the skipped
// connection count survives, under [MetaSkippedConnections]; call
// [ReadRailML] for the full [RailMLStats].
func Read(r io.Reader, f Format) (*network.Network, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatYAML:
		return ReadYAML(r)
	case FormatRailML:
		g, _, err := ReadRailML(r)
		return g, err
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", f)
}

// Write encodes a station in the given format. RailML export is not
// supported.
func Write(g *network.Network, w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(g, w)
	case FormatYAML:
		return WriteYAML(g, w)
	}
	return errors.New(errors.ErrCodeUnsupported, "cannot write format %q", f)
}

// Import reads a station file, detecting the format from its extension.
//
// Import opens the file, decodes it using [Read], and closes the file. A
// missing file yields a FILE_NOT_FOUND error.
func Import(path string) (*network.Network, error) {
	return ImportAs(path, "")
}

// ImportAs reads a station file in format f. An empty f is detected from
// the extension.
func ImportAs(path string, f Format) (*network.Network, error) {
	if f == "" {
		var err error
		if f, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer file.Close()
	return Read(file, f)
}

// Export writes a station to path in the format given by its extension.
func Export(g *network.Network, path string) error {
	f, err := DetectFormat(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := Write(g, file, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
