// Package adapter contains the infrastructure adapters for profbisect: profile
// codecs, candidate files, the decider process runner and the report store.
package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	m "profbisect.dev/pkg/profbisect/internal/model"
)

var (
	// ErrUnknownFormat is returned for a format the codec does not support.
	ErrUnknownFormat = errors.New("unknown profile format")
	// ErrMalformedProfile is returned when a profile cannot be parsed.
	ErrMalformedProfile = errors.New("malformed profile")
)

// ProfileAdapter reads and writes configurations in the supported formats. The
// decider always receives candidates in the same format the inputs used.
type ProfileAdapter interface {
	// Load reads and parses the profile at path. An empty format is inferred
	// from the file extension.
	Load(ctx context.Context, path m.Path, format m.Format) (m.Profile, error)

	// Decode parses a configuration from r.
	Decode(r io.Reader, format m.Format) (m.Configuration, error)

	// Encode writes cfg to w. Components are written in sorted order.
	Encode(w io.Writer, cfg m.Configuration, format m.Format) error
}

// LocalProfileAdapter implements ProfileAdapter on top of the local filesystem.
type LocalProfileAdapter struct{}

// NewLocalProfileAdapter constructs a LocalProfileAdapter.
func NewLocalProfileAdapter() *LocalProfileAdapter {
	return &LocalProfileAdapter{}
}

// Load reads and parses the profile at path.
func (a *LocalProfileAdapter) Load(ctx context.Context, path m.Path, format m.Format) (m.Profile, error) {
	if err := ctx.Err(); err != nil {
		return m.Profile{}, err
	}

	if format == "" {
		format = m.FormatFromPath(path)
	}

	// #nosec G304 - profile paths are supplied by the user on purpose
	file, err := os.Open(string(path))
	if err != nil {
		return m.Profile{}, fmt.Errorf("open profile: %w", err)
	}

	defer func() { _ = file.Close() }()

	cfg, err := a.Decode(file, format)
	if err != nil {
		return m.Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	return m.Profile{Path: path, Format: format, Config: cfg}, nil
}

// Decode parses a configuration from r.
func (a *LocalProfileAdapter) Decode(r io.Reader, format m.Format) (m.Configuration, error) {
	switch format {
	case m.FormatAFDO:
		return decodeAFDO(r)
	case m.FormatYAML:
		cfg := m.Configuration{}
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %w", ErrMalformedProfile, err)
		}

		return cfg, nil
	case m.FormatJSON:
		cfg := m.Configuration{}
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedProfile, err)
		}

		return cfg, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// Encode writes cfg to w in the given format.
func (a *LocalProfileAdapter) Encode(w io.Writer, cfg m.Configuration, format m.Format) error {
	switch format {
	case m.FormatAFDO:
		return encodeAFDO(w, cfg)
	case m.FormatYAML:
		encoder := yaml.NewEncoder(w)
		if err := encoder.Encode(map[m.Component]m.Payload(cfg)); err != nil {
			return err
		}

		return encoder.Close()
	case m.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(map[m.Component]m.Payload(cfg))
	}

	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

// decodeAFDO splits a text AFDO profile into per-function entries. A line
// starting in column zero opens a function; its name runs up to the first ':'
// and the payload is the remainder of that line plus every indented line
// after it, newlines included, so encoding reproduces the input. Blank lines
// ahead of the first header are dropped.
func decodeAFDO(r io.Reader) (m.Configuration, error) {
	cfg := m.Configuration{}
	reader := bufio.NewReader(r)

	var (
		current m.Component
		body    strings.Builder
		lineNo  int
	)

	flush := func() {
		if current != "" {
			cfg[current] = m.Payload(body.String())
		}

		body.Reset()
	}

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lineNo++

			switch {
			case isAFDOHeader(line):
				flush()

				name, payload := splitAFDOHeader(line)
				if _, dup := cfg[name]; dup {
					return nil, fmt.Errorf("%w: duplicate function %q on line %d", ErrMalformedProfile, name, lineNo)
				}

				current = name
				body.WriteString(payload)
			case current != "":
				body.WriteString(line)
			case strings.TrimSpace(line) != "":
				return nil, fmt.Errorf("%w: body line %d before any function header", ErrMalformedProfile, lineNo)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}
	}

	flush()

	return cfg, nil
}

func isAFDOHeader(line string) bool {
	switch line[0] {
	case ' ', '\t', '\n', '\r':
		return false
	}

	return true
}

func splitAFDOHeader(line string) (m.Component, string) {
	if idx := strings.IndexByte(line, ':'); idx > 0 {
		return m.Component(line[:idx]), line[idx:]
	}

	name := strings.TrimRight(line, "\r\n")

	return m.Component(name), line[len(name):]
}

func encodeAFDO(w io.Writer, cfg m.Configuration) error {
	buffered := bufio.NewWriter(w)

	for _, name := range cfg.Components() {
		if _, err := buffered.WriteString(string(name)); err != nil {
			return err
		}

		if _, err := buffered.WriteString(string(cfg[name])); err != nil {
			return err
		}
	}

	return buffered.Flush()
}
