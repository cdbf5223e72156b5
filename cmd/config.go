package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/tantalor93/dnsrtt/pkg/dnsbench"
	"gopkg.in/yaml.v3"
)

// fileConfig is the content of the YAML config file. Keys are named after the command line flags,
// fields left out of the file keep the value from the command line.
type fileConfig struct {
	Hostname       *string        `yaml:"hostname"`
	Servers        []string       `yaml:"server"`
	Number         *uint16        `yaml:"number"`
	ID             *uint16        `yaml:"id"`
	Timeout        *time.Duration `yaml:"timeout"`
	Bind           *string        `yaml:"bind"`
	Interface      *string        `yaml:"interface"`
	Delay          *string        `yaml:"delay"`
	RateLimit      *int           `yaml:"rate-limit"`
	Concurrency    *uint32        `yaml:"concurrency"`
	Verify         *bool          `yaml:"verify"`
	LogRequests    *bool          `yaml:"log-requests"`
	LogRequestPath *string        `yaml:"log-requests-path"`
	Progress       *bool          `yaml:"progress"`
	Min            *time.Duration `yaml:"min"`
	Max            *time.Duration `yaml:"max"`
	Precision      *int           `yaml:"precision"`
	Distribution   *bool          `yaml:"distribution"`
	Csv            *string        `yaml:"csv"`
	JSON           *bool          `yaml:"json"`
	Silent         *bool          `yaml:"silent"`
	Color          *bool          `yaml:"color"`
	Plot           *string        `yaml:"plot"`
	PlotFormat     *string        `yaml:"plotf"`
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	if cfg.PlotFormat != nil && !slices.Contains(plotFormats, *cfg.PlotFormat) {
		return cfg, fmt.Errorf("invalid plot format '%s' in config file '%s'", *cfg.PlotFormat, path)
	}
	return cfg, nil
}

// apply sets the benchmark fields present in the config file unless the matching flag was set on the command line.
func (c fileConfig) apply(b *dnsbench.Benchmark, setByUser func(flag string) bool) {
	if c.Hostname != nil && b.Hostname == "" {
		b.Hostname = *c.Hostname
	}
	if len(c.Servers) > 0 && !setByUser("server") {
		b.Targets = c.Servers
	}
	set(&b.Repetitions, c.Number, "number", setByUser)
	set(&b.ID, c.ID, "id", setByUser)
	set(&b.Timeout, c.Timeout, "timeout", setByUser)
	set(&b.LocalBind, c.Bind, "bind", setByUser)
	set(&b.Interface, c.Interface, "interface", setByUser)
	set(&b.Delay, c.Delay, "delay", setByUser)
	set(&b.Rate, c.RateLimit, "rate-limit", setByUser)
	set(&b.Concurrency, c.Concurrency, "concurrency", setByUser)
	set(&b.VerifyResponse, c.Verify, "verify", setByUser)
	set(&b.RequestLogEnabled, c.LogRequests, "log-requests", setByUser)
	set(&b.RequestLogPath, c.LogRequestPath, "log-requests-path", setByUser)
	set(&b.ProgressBar, c.Progress, "progress", setByUser)
	set(&b.HistMin, c.Min, "min", setByUser)
	set(&b.HistMax, c.Max, "max", setByUser)
	set(&b.HistPre, c.Precision, "precision", setByUser)
	set(&b.HistDisplay, c.Distribution, "distribution", setByUser)
	set(&b.Csv, c.Csv, "csv", setByUser)
	set(&b.JSON, c.JSON, "json", setByUser)
	set(&b.Silent, c.Silent, "silent", setByUser)
	set(&b.Color, c.Color, "color", setByUser)
	set(&b.PlotDir, c.Plot, "plot", setByUser)
	set(&b.PlotFormat, c.PlotFormat, "plotf", setByUser)
}

func set[T any](dst *T, v *T, flag string, setByUser func(flag string) bool) {
	if v != nil && !setByUser(flag) {
		*dst = *v
	}
}
