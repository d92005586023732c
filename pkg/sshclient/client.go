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

// Package sshclient connects to the target machine, optionally through a
// chain of proxy jumps, and exposes remote command execution plus an
// SFTP-backed filesystem over the same connection.
package sshclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"

	"github.com/hpcrocket/hpcrocket/pkg/filesystem"
)

// 🔑 ConnectionData describes one SSH endpoint and its credentials.
type ConnectionData struct {
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKey     string
	PrivateKeyFile string
}

// Validate checks that the endpoint is addressable and has credentials.
func (c ConnectionData) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.User == "" {
		return errors.New("user is required")
	}
	if c.Password == "" && c.PrivateKey == "" && c.PrivateKeyFile == "" {
		return errors.New("one of password, private_key or private_keyfile is required")
	}
	return nil
}

func (c ConnectionData) address() string {
	port := c.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", port))
}

func (c ConnectionData) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	key := []byte(c.PrivateKey)
	if c.PrivateKeyFile != "" {
		data, err := os.ReadFile(expandHome(c.PrivateKeyFile))
		if err != nil {
			return nil, errors.Errorf("reading private key file: %w", err)
		}
		key = data
	}
	if len(key) > 0 {
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Errorf("parsing private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}
	return methods, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	}
	return path
}

// 🚪 Client is an established SSH connection to the target machine.
type Client struct {
	conn *ssh.Client
	// hops are intermediate proxy connections, closed with the client.
	hops []*ssh.Client
	sftp *sftp.Client
}

// Connect dials the target described by data, tunneling through the
// proxy jumps in order.
func Connect(ctx context.Context, data ConnectionData, proxies ...ConnectionData) (*Client, error) {
	logger := zerolog.Ctx(ctx)

	var hops []*ssh.Client
	var previous *ssh.Client
	for _, hop := range append(append([]ConnectionData(nil), proxies...), data) {
		if err := hop.Validate(); err != nil {
			closeAll(hops)
			return nil, errors.Errorf("validating connection to %s: %w", hop.Host, err)
		}

		methods, err := hop.authMethods()
		if err != nil {
			closeAll(hops)
			return nil, errors.Errorf("building auth for %s: %w", hop.Host, err)
		}

		config := &ssh.ClientConfig{
			User: hop.User,
			Auth: methods,
			// Matches the original client's auto-accept policy.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		}

		logger.Debug().Str("host", hop.Host).Msg("connecting")
		client, err := dial(previous, hop.address(), config)
		if err != nil {
			closeAll(hops)
			return nil, errors.Errorf("connecting to %s: %w", hop.Host, err)
		}
		hops = append(hops, client)
		previous = client
	}

	target := hops[len(hops)-1]
	return &Client{conn: target, hops: hops[:len(hops)-1]}, nil
}

func dial(through *ssh.Client, address string, config *ssh.ClientConfig) (*ssh.Client, error) {
	if through == nil {
		return ssh.Dial("tcp", address, config)
	}
	conn, err := through.Dial("tcp", address)
	if err != nil {
		return nil, errors.Errorf("tunneling to %s: %w", address, err)
	}
	c, channels, requests, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, channels, requests), nil
}

func closeAll(clients []*ssh.Client) {
	for i := len(clients) - 1; i >= 0; i-- {
		clients[i].Close()
	}
}

// Exec runs a command on the target, returning its output and exit code.
// A nonzero exit code is not an error; transport failures are.
func (c *Client) Exec(ctx context.Context, command string) (stdout, stderr string, exitCode int, err error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return "", "", 0, errors.Errorf("opening session: %w", err)
	}
	defer session.Close()

	outPipe, err := session.StdoutPipe()
	if err != nil {
		return "", "", 0, errors.Errorf("attaching stdout: %w", err)
	}
	errPipe, err := session.StderrPipe()
	if err != nil {
		return "", "", 0, errors.Errorf("attaching stderr: %w", err)
	}

	var outBuf, errBuf strings.Builder
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, err := io.Copy(&outBuf, outPipe)
		return err
	})
	group.Go(func() error {
		_, err := io.Copy(&errBuf, errPipe)
		return err
	})

	if err := session.Start(command); err != nil {
		return "", "", 0, errors.Errorf("starting %q: %w", command, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case <-ctx.Done():
		session.Close()
		<-done
		return "", "", 0, errors.Errorf("running %q: %w", command, ctx.Err())
	case err = <-done:
	}

	if drainErr := group.Wait(); drainErr != nil && err == nil {
		err = drainErr
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return outBuf.String(), errBuf.String(), exitErr.ExitStatus(), nil
		}
		return "", "", 0, errors.Errorf("running %q: %w", command, err)
	}
	return outBuf.String(), errBuf.String(), 0, nil
}

// Filesystem opens (and caches) an SFTP session over the connection.
func (c *Client) Filesystem() (filesystem.Filesystem, error) {
	if c.sftp == nil {
		client, err := sftp.NewClient(c.conn)
		if err != nil {
			return nil, errors.Errorf("opening sftp session: %w", err)
		}
		c.sftp = client
	}
	return filesystem.NewSFTP(c.sftp), nil
}

// Close shuts down the SFTP session, the target connection and every
// proxy hop, in reverse connect order.
func (c *Client) Close() error {
	if c.sftp != nil {
		c.sftp.Close()
	}
	err := c.conn.Close()
	closeAll(c.hops)
	return err
}
