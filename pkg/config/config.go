// Copyright 2025 the hpcrocket authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the launch configuration describing the target
// machine, the files to stage, collect and clean, and the job to submit.
package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/hpcrocket/hpcrocket/pkg/application"
	"github.com/hpcrocket/hpcrocket/pkg/environment"
	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"github.com/hpcrocket/hpcrocket/pkg/sshclient"
)

// 🔌 Parser is the interface for config parsers.
type Parser interface {
	// Parse parses the config from bytes.
	Parse(ctx context.Context, data []byte) (*Config, error)

	// CanParse checks if this parser can handle the given file.
	CanParse(filename string) bool
}

// parsers is the list of available parsers.
var parsers []Parser

// Register registers a parser.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns a parser that can handle the given file.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔗 Connection describes one SSH endpoint in the configuration.
type Connection struct {
	Host           string `yaml:"host" hcl:"host"`
	Port           int    `yaml:"port,omitempty" hcl:"port,optional"`
	User           string `yaml:"user" hcl:"user"`
	Password       string `yaml:"password,omitempty" hcl:"password,optional"`
	PrivateKey     string `yaml:"private_key,omitempty" hcl:"private_key,optional"`
	PrivateKeyFile string `yaml:"private_keyfile,omitempty" hcl:"private_keyfile,optional"`
}

// 📋 CopyEntry is one file transfer in the configuration.
type CopyEntry struct {
	From      string `yaml:"from" hcl:"from"`
	To        string `yaml:"to" hcl:"to"`
	Overwrite bool   `yaml:"overwrite,omitempty" hcl:"overwrite,optional"`
}

// 📚 Config is the complete launch configuration.
type Config struct {
	Target Connection `yaml:"target" hcl:"target,block"`

	ProxyJumps []Connection `yaml:"proxyjumps,omitempty" hcl:"proxyjump,block"`

	Sbatch             string `yaml:"sbatch" hcl:"sbatch"`
	Watch              bool   `yaml:"watch,omitempty" hcl:"watch,optional"`
	PollIntervalSec    int    `yaml:"poll_interval,omitempty" hcl:"poll_interval,optional"`
	ContinueIfJobFails bool   `yaml:"continue_if_job_fails,omitempty" hcl:"continue_if_job_fails,optional"`

	Copy    []CopyEntry `yaml:"copy,omitempty" hcl:"copy,block"`
	Collect []CopyEntry `yaml:"collect,omitempty" hcl:"collect,block"`
	Clean   []string    `yaml:"clean,omitempty" hcl:"clean,optional"`
}

// Load reads, parses and validates the configuration file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.expandEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// expandEnvironment expands ${VAR} references in credential and path
// fields so config files stay free of secrets and machine-local paths.
func (cfg *Config) expandEnvironment() {
	expand := func(c *Connection) {
		c.Host = os.ExpandEnv(c.Host)
		c.User = os.ExpandEnv(c.User)
		c.Password = os.ExpandEnv(c.Password)
		c.PrivateKey = os.ExpandEnv(c.PrivateKey)
		c.PrivateKeyFile = os.ExpandEnv(c.PrivateKeyFile)
	}
	expandEntries := func(entries []CopyEntry) {
		for i := range entries {
			entries[i].From = os.ExpandEnv(entries[i].From)
			entries[i].To = os.ExpandEnv(entries[i].To)
		}
	}
	expand(&cfg.Target)
	for i := range cfg.ProxyJumps {
		expand(&cfg.ProxyJumps[i])
	}
	cfg.Sbatch = os.ExpandEnv(cfg.Sbatch)
	expandEntries(cfg.Copy)
	expandEntries(cfg.Collect)
	for i := range cfg.Clean {
		cfg.Clean[i] = os.ExpandEnv(cfg.Clean[i])
	}
}

// Validate checks required fields and applies defaults.
func (cfg *Config) Validate() error {
	if cfg.Target.Host == "" {
		return errors.New("target.host is required")
	}
	if cfg.Target.User == "" {
		return errors.New("target.user is required")
	}
	if cfg.Target.Password == "" && cfg.Target.PrivateKey == "" && cfg.Target.PrivateKeyFile == "" {
		return errors.New("one of password, private_key or private_keyfile is required")
	}
	if cfg.Sbatch == "" {
		return errors.New("sbatch is required")
	}
	for i, jump := range cfg.ProxyJumps {
		if jump.Host == "" || jump.User == "" {
			return errors.Errorf("proxyjump %d: host and user are required", i+1)
		}
	}
	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = 5
	}
	return nil
}

// ConnectionData converts the target connection for the ssh client.
func (cfg *Config) ConnectionData() sshclient.ConnectionData {
	return connectionData(cfg.Target)
}

// ProxyConnections converts the proxy jump chain for the ssh client.
func (cfg *Config) ProxyConnections() []sshclient.ConnectionData {
	proxies := make([]sshclient.ConnectionData, 0, len(cfg.ProxyJumps))
	for _, jump := range cfg.ProxyJumps {
		proxies = append(proxies, connectionData(jump))
	}
	return proxies
}

func connectionData(c Connection) sshclient.ConnectionData {
	return sshclient.ConnectionData{
		Host:           c.Host,
		Port:           c.Port,
		User:           c.User,
		Password:       c.Password,
		PrivateKey:     c.PrivateKey,
		PrivateKeyFile: c.PrivateKeyFile,
	}
}

// Options converts the configuration into driver options.
func (cfg *Config) Options() application.Options {
	return application.Options{
		Job:                executor.JobOptions{JobFile: cfg.Sbatch},
		Watch:              cfg.Watch,
		PollInterval:       time.Duration(cfg.PollIntervalSec) * time.Second,
		ContinueIfJobFails: cfg.ContinueIfJobFails,
		CopyFiles:          instructions(cfg.Copy),
		CollectFiles:       instructions(cfg.Collect),
		CleanFiles:         append([]string(nil), cfg.Clean...),
	}
}

func instructions(entries []CopyEntry) []environment.CopyInstruction {
	result := make([]environment.CopyInstruction, 0, len(entries))
	for _, entry := range entries {
		result = append(result, environment.CopyInstruction{
			Source:      entry.From,
			Destination: entry.To,
			Overwrite:   entry.Overwrite,
		})
	}
	return result
}
