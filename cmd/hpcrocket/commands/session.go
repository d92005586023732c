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

package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/hpcrocket/hpcrocket/pkg/application"
	"github.com/hpcrocket/hpcrocket/pkg/config"
	"github.com/hpcrocket/hpcrocket/pkg/executor"
	"github.com/hpcrocket/hpcrocket/pkg/executor/slurm"
	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
	"github.com/hpcrocket/hpcrocket/pkg/sshclient"
	"github.com/hpcrocket/hpcrocket/pkg/ui"
)

// session bundles the collaborators a command needs for one run: the
// ssh connection, the executor behind it, both filesystems, the UI and
// the assembled application driver.
type session struct {
	Config   *config.Config
	Executor executor.Executor
	App      *application.Application
	UI       *ui.Terminal

	client *sshclient.Client
}

// newSession loads the config at path and connects to the target.
func newSession(ctx context.Context, path string) (*session, error) {
	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	client, err := sshclient.Connect(ctx, cfg.ConnectionData(), cfg.ProxyConnections()...)
	if err != nil {
		return nil, errors.Errorf("connecting to %s: %w", cfg.Target.Host, err)
	}

	remote, err := client.Filesystem()
	if err != nil {
		client.Close()
		return nil, errors.Errorf("opening remote filesystem: %w", err)
	}

	term := ui.NewTerminal(os.Stdout, *zerolog.Ctx(ctx))
	exec := slurm.New(&sshRunner{client: client})
	local := filesystem.NewLocal("")

	return &session{
		Config:   cfg,
		Executor: exec,
		App:      application.New(exec, local, remote, term),
		UI:       term,
		client:   client,
	}, nil
}

func (s *session) Close() {
	s.client.Close()
}

// sshRunner adapts the ssh client to the slurm command runner contract.
type sshRunner struct {
	client *sshclient.Client
}

func (r *sshRunner) Run(ctx context.Context, command string) (slurm.RunResult, error) {
	stdout, stderr, code, err := r.client.Exec(ctx, command)
	if err != nil {
		return slurm.RunResult{}, err
	}
	return slurm.RunResult{Stdout: stdout, Stderr: stderr, ExitCode: code}, nil
}
