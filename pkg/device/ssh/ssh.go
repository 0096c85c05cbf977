// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package ssh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/device"
	mderrors "github.com/macdiff/macdiff/pkg/errors"
)

const (
	defaultPort = 22

	hostnameCommand = "show running-config | include ^hostname"
)

var hostnameLine = regexp.MustCompile(`(?m)^hostname\s+(\S+)`)

// Option configures a Handler.
type Option func(*Handler)

// WithConnectTimeout sets the TCP connect and handshake timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.connectTimeout = d
	}
}

// WithCommandTimeout sets the per-command timeout.
func WithCommandTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.commandTimeout = d
	}
}

// WithHostKeyCallback sets host key verification for devices and jump hosts.
func WithHostKeyCallback(cb ssh.HostKeyCallback) Option {
	return func(h *Handler) {
		h.hostKeyCallback = cb
	}
}

// Handler opens SSH sessions to switches.
type Handler struct {
	connectTimeout  time.Duration
	commandTimeout  time.Duration
	hostKeyCallback ssh.HostKeyCallback
}

// New returns a Handler. Host keys are not verified unless
// WithHostKeyCallback or KnownHosts is used.
func New(opts ...Option) *Handler {
	h := &Handler{
		connectTimeout:  defaults.SSHConnectTimeout,
		commandTimeout:  defaults.SSHCommandTimeout,
		hostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // opt-in verification via KnownHosts
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// KnownHosts returns an Option verifying host keys against OpenSSH
// known_hosts files.
func KnownHosts(files ...string) (Option, error) {
	cb, err := knownhosts.New(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}
	return WithHostKeyCallback(cb), nil
}

// Open implements device.Query.
func (h *Handler) Open(ctx context.Context, t device.Target) (device.Session, error) {
	if t.Host == "" {
		return nil, mderrors.New(mderrors.ErrCodeInvalidRequest, "device host is empty")
	}

	addr := t.Address(defaultPort)
	cfg := h.clientConfig(t.Credentials.Username, t.Credentials.Password)

	var (
		client *ssh.Client
		jump   *ssh.Client
		err    error
	)

	if t.Proxy != nil && t.Proxy.Host != "" {
		jump, err = h.dial(ctx, t.Proxy.Address(), h.clientConfig(t.Proxy.Username, t.Proxy.Password))
		if err != nil {
			return nil, mderrors.WrapWithContext(mderrors.ErrCodeUnavailable, "failed to connect to jump host", err,
				map[string]any{"proxy": t.Proxy.Host, "device": t.Host})
		}
		client, err = h.dialVia(ctx, jump, addr, cfg)
	} else {
		client, err = h.dial(ctx, addr, cfg)
	}
	if err != nil {
		if jump != nil {
			jump.Close()
		}
		return nil, mderrors.WrapWithContext(mderrors.ErrCodeUnavailable, "failed to open ssh session", err,
			map[string]any{"device": t.Host})
	}

	s := &Session{
		host:    t.Host,
		client:  client,
		jump:    jump,
		timeout: h.commandTimeout,
	}
	s.prompt = s.discoverPrompt(ctx)
	return s, nil
}

func (h *Handler) clientConfig(user, password string) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: h.hostKeyCallback,
		Timeout:         h.connectTimeout,
	}
}

func (h *Handler) dial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: h.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return h.handshake(conn, addr, cfg)
}

func (h *Handler) dialVia(ctx context.Context, jump *ssh.Client, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	dctx, cancel := context.WithTimeout(ctx, h.connectTimeout)
	defer cancel()

	conn, err := jump.DialContext(dctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s through jump host: %w", addr, err)
	}
	return h.handshake(conn, addr, cfg)
}

func (h *Handler) handshake(conn net.Conn, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	if err := conn.SetDeadline(time.Now().Add(h.connectTimeout)); err != nil {
		slog.Debug("failed to set handshake deadline", "address", addr, "error", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	// clear the handshake deadline; commands have their own timeout
	_ = conn.SetDeadline(time.Time{})
	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Session is an open SSH connection to one device.
type Session struct {
	host    string
	prompt  string
	client  *ssh.Client
	jump    *ssh.Client
	timeout time.Duration
}

// Prompt returns the configured hostname of the device, or its address when
// the hostname could not be read.
func (s *Session) Prompt() string {
	return s.prompt
}

func (s *Session) discoverPrompt(ctx context.Context) string {
	out, err := s.Run(ctx, hostnameCommand)
	if err != nil {
		slog.Debug("failed to read device hostname", "device", s.host, "error", err)
		return s.host
	}
	return promptFromConfig(out, s.host)
}

func promptFromConfig(out, fallback string) string {
	m := hostnameLine.FindStringSubmatch(out)
	if m == nil {
		return fallback
	}
	return m[1]
}

// Run executes command in a new exec channel and returns its combined output.
// A non-zero exit status is not an error; switches report failures in-band.
func (s *Session) Run(ctx context.Context, command string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", mderrors.WrapWithContext(mderrors.ErrCodeUnavailable, "failed to create ssh channel", err,
			map[string]any{"device": s.host, "command": command})
	}
	defer sess.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(command)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		var exitErr *ssh.ExitError
		if r.err != nil && !errors.As(r.err, &exitErr) {
			return "", mderrors.WrapWithContext(mderrors.ErrCodeInternal, "command failed", r.err,
				map[string]any{"device": s.host, "command": command})
		}
		return normalizeNewlines(string(r.out)), nil
	case <-ctx.Done():
		_ = sess.Signal(ssh.SIGKILL)
		return "", mderrors.WrapWithContext(mderrors.ErrCodeTimeout, "command timed out", ctx.Err(),
			map[string]any{"device": s.host, "command": command})
	}
}

// Parse runs command and parses its output into a table keyed by key.
func (s *Session) Parse(ctx context.Context, command, key string) (*device.Table, error) {
	out, err := s.Run(ctx, command)
	if err != nil {
		return nil, err
	}
	rows, err := device.ParseOutput(command, out)
	if err != nil {
		return nil, err
	}
	return device.NewTable(key, rows), nil
}

// Close closes the device connection and the jump host connection, if any.
func (s *Session) Close() error {
	err := s.client.Close()
	if s.jump != nil {
		if jerr := s.jump.Close(); err == nil {
			err = jerr
		}
	}
	return err
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
