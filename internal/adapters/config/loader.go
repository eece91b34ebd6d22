// Package config provides the configuration loader for kcache.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"go.trai.ch/kcache/internal/core/domain"
	"go.trai.ch/kcache/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the config file looked up when no path is given.
const DefaultFilename = "kcache.yaml"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the configuration at path. A missing file yields
// domain.DefaultConfig. Every value is validated before it is returned.
func (l *Loader) Load(path string) (domain.Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Info(fmt.Sprintf("no config file at %s, using defaults", path))
		return domain.DefaultConfig(), nil
	}
	if err != nil {
		return domain.Config{}, zerr.With(errors.Join(domain.ErrConfigReadFailed, err), "path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// Parse decodes a kcache.yaml document on top of domain.DefaultConfig.
// Unknown keys are rejected.
func Parse(data []byte) (domain.Config, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domain.Config{}, errors.Join(domain.ErrConfigParseFailed, err)
	}
	return file.toDomain()
}

func (f *File) toDomain() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if f.Capacity != nil {
		cfg.Capacity = *f.Capacity
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}

	policy, err := domain.ParseDuplicatePolicy(f.DuplicatePolicy)
	if err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, "invalid configuration"), "duplicate_policy", f.DuplicatePolicy)
	}
	cfg.DuplicatePolicy = policy

	routing, err := domain.ParseRouting(f.Routing)
	if err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, "invalid configuration"), "routing", f.Routing)
	}
	cfg.Routing = routing

	format, err := domain.ParseLogFormat(f.LogFormat)
	if err != nil {
		return domain.Config{}, zerr.With(zerr.Wrap(err, "invalid configuration"), "log_format", f.LogFormat)
	}
	cfg.LogFormat = format

	if f.CompileLatency != "" {
		d, err := time.ParseDuration(f.CompileLatency)
		if err != nil {
			return domain.Config{}, zerr.With(errors.Join(domain.ErrConfigParseFailed, err), "compile_latency", f.CompileLatency)
		}
		cfg.CompileLatency = d
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}
