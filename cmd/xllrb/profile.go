package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/safeopen"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	metricsNone       = "none"
	metricsConsole    = "console"
	metricsPrometheus = "prometheus"
)

// StressProfile drives a stress run. Every tree is independent and
// replays its own pseudo random operation stream.
type StressProfile struct {
	Trees       int     `yaml:"trees"`
	Operations  int     `yaml:"operations"`
	KeySpace    int64   `yaml:"keySpace"`
	DeleteRatio float64 `yaml:"deleteRatio"`
	CheckEvery  int     `yaml:"checkEvery"`
	Workers     int     `yaml:"workers"`
	Seed        uint64  `yaml:"seed"`
	Desc        bool    `yaml:"desc"`
	Metrics     string  `yaml:"metrics"`
	Listen      string  `yaml:"listen"`
}

func defaultStressProfile() *StressProfile {
	return &StressProfile{
		Trees:       16,
		Operations:  10000,
		KeySpace:    4096,
		DeleteRatio: 0.4,
		CheckEvery:  1000,
		Workers:     4,
		Seed:        2024,
		Metrics:     metricsNone,
		Listen:      ":9464",
	}
}

func (p *StressProfile) validate() error {
	var err error
	if p.Trees <= 0 {
		err = multierr.Append(err, fmt.Errorf("trees must be positive, got %d", p.Trees))
	}
	if p.Operations < 0 {
		err = multierr.Append(err, fmt.Errorf("operations must not be negative, got %d", p.Operations))
	}
	if p.KeySpace <= 0 {
		err = multierr.Append(err, fmt.Errorf("keySpace must be positive, got %d", p.KeySpace))
	}
	if p.DeleteRatio < 0 || p.DeleteRatio > 1 {
		err = multierr.Append(err, fmt.Errorf("deleteRatio must be in [0, 1], got %v", p.DeleteRatio))
	}
	if p.CheckEvery < 0 {
		err = multierr.Append(err, fmt.Errorf("checkEvery must not be negative, got %d", p.CheckEvery))
	}
	if p.Workers <= 0 {
		err = multierr.Append(err, fmt.Errorf("workers must be positive, got %d", p.Workers))
	}
	switch p.Metrics {
	case metricsNone, metricsConsole, metricsPrometheus:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown metrics exporter %q", p.Metrics))
	}
	return err
}

// loadStressProfile overlays the yaml file on the default profile.
func loadStressProfile(path string) (*StressProfile, error) {
	p := defaultStressProfile()
	if path == "" {
		return p, nil
	}
	f, err := safeopen.OpenBeneath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("open stress profile: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode stress profile %s: %w", path, err)
	}
	return p, nil
}
