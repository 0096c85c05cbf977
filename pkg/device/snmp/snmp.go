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

package snmp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/macdiff/macdiff/pkg/defaults"
	"github.com/macdiff/macdiff/pkg/device"
	"github.com/macdiff/macdiff/pkg/errors"
)

const (
	defaultPort      = 161
	defaultCommunity = "public"

	oidSysName              = ".1.3.6.1.2.1.1.5.0"
	oidDot1dBasePortIfIndex = ".1.3.6.1.2.1.17.1.4.1.2"
	oidDot1dTpFdbPort       = ".1.3.6.1.2.1.17.4.3.1.2"
	oidDot1qTpFdbPort       = ".1.3.6.1.2.1.17.7.1.2.2.1.2"
	oidIfOperStatus         = ".1.3.6.1.2.1.2.2.1.8"
	oidIfName               = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIfHighSpeed          = ".1.3.6.1.2.1.31.1.1.1.15"
	oidIPNetToMediaPhys     = ".1.3.6.1.2.1.4.22.1.2"
	oidDot3DuplexStatus     = ".1.3.6.1.2.1.10.7.2.1.19"
)

// walker is the subset of *gosnmp.GoSNMP used by sessions.
type walker interface {
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	Get(oids []string) (*gosnmp.SnmpPacket, error)
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// WithRetries sets the number of request retries.
func WithRetries(n int) Option {
	return func(h *Handler) {
		h.retries = n
	}
}

// Handler opens SNMP sessions to switches.
type Handler struct {
	timeout time.Duration
	retries int
}

// New returns a Handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		timeout: defaults.SNMPTimeout,
		retries: defaults.SNMPRetries,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open implements device.Query.
func (h *Handler) Open(ctx context.Context, t device.Target) (device.Session, error) {
	if t.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "device host is empty")
	}
	if t.Proxy != nil && t.Proxy.Host != "" {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"snmp handler does not support jump hosts", map[string]any{"device": t.Host})
	}

	port := t.Port
	if port == 0 {
		port = defaultPort
	}
	community := t.Credentials.Community
	if community == "" {
		community = defaultCommunity
	}

	g := &gosnmp.GoSNMP{
		Target:             t.Host,
		Port:               uint16(port), //nolint:gosec // port range checked by config
		Transport:          "udp",
		Community:          community,
		Version:            gosnmp.Version2c,
		Timeout:            h.timeout,
		Retries:            h.retries,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     25,
		Context:            ctx,
	}
	if err := g.Connect(); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "failed to open snmp session", err,
			map[string]any{"device": t.Host})
	}

	s := newSession(t.Host, g)
	s.closer = func() error { return g.Conn.Close() }

	// the first request doubles as a reachability check
	name, err := s.sysName()
	if err != nil {
		s.Close()
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "device did not answer snmp", err,
			map[string]any{"device": t.Host})
	}
	if name != "" {
		s.prompt = name
	}
	return s, nil
}

// Session answers the known commands from MIB walks.
type Session struct {
	host   string
	prompt string
	w      walker
	closer func() error
}

func newSession(host string, w walker) *Session {
	return &Session{host: host, prompt: host, w: w}
}

// Prompt returns sysName, or the address when sysName is empty.
func (s *Session) Prompt() string {
	return s.prompt
}

// Run is not supported: SNMP has no textual command output.
func (s *Session) Run(_ context.Context, command string) (string, error) {
	return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
		"raw command output is not available over snmp", map[string]any{"command": command})
}

// Parse walks the MIBs backing command and returns the rows keyed by key.
func (s *Session) Parse(ctx context.Context, command, key string) (*device.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, "snmp query canceled", err)
	}

	var (
		rows []device.Row
		err  error
	)
	switch command {
	case device.CommandMACTable:
		rows, err = s.macTable()
	case device.CommandARP:
		rows, err = s.arpTable()
	case device.CommandInterfaceStatus:
		rows, err = s.interfaceStatus()
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("no snmp mapping for command %q", command))
	}
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable, "snmp walk failed", err,
			map[string]any{"device": s.host, "command": command})
	}
	return device.NewTable(key, rows), nil
}

// Close closes the UDP socket.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func (s *Session) sysName() (string, error) {
	pkt, err := s.w.Get([]string{oidSysName})
	if err != nil {
		return "", err
	}
	for _, v := range pkt.Variables {
		if b, ok := v.Value.([]byte); ok {
			return strings.TrimSpace(string(b)), nil
		}
	}
	return "", nil
}

func (s *Session) macTable() ([]device.Row, error) {
	ports, err := s.bridgePortNames()
	if err != nil {
		return nil, err
	}

	pdus, err := s.w.BulkWalkAll(oidDot1qTpFdbPort)
	if err != nil {
		return nil, err
	}
	withVLAN := true
	if len(pdus) == 0 {
		slog.Debug("q-bridge fdb empty, falling back to bridge fdb", "device", s.host)
		withVLAN = false
		if pdus, err = s.w.BulkWalkAll(oidDot1dTpFdbPort); err != nil {
			return nil, err
		}
	}

	root := oidDot1qTpFdbPort
	if !withVLAN {
		root = oidDot1dTpFdbPort
	}

	var rows []device.Row
	for _, pdu := range pdus {
		idx := suffix(pdu.Name, root)
		parts := strings.Split(idx, ".")

		vlan := ""
		if withVLAN {
			if len(parts) != 7 {
				continue
			}
			vlan, parts = parts[0], parts[1:]
		}
		mac, ok := macFromOctets(parts)
		if !ok {
			continue
		}

		bridgePort := gosnmp.ToBigInt(pdu.Value).String()
		name, ok := ports[bridgePort]
		if !ok {
			name = bridgePort
		}

		row := device.Row{
			device.FieldMACAddress: mac,
			device.FieldPorts:      name,
			device.FieldType:       "dynamic",
		}
		if vlan != "" {
			row[device.FieldVLAN] = vlan
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Session) arpTable() ([]device.Row, error) {
	names, err := s.ifNames()
	if err != nil {
		return nil, err
	}
	pdus, err := s.w.BulkWalkAll(oidIPNetToMediaPhys)
	if err != nil {
		return nil, err
	}

	var rows []device.Row
	for _, pdu := range pdus {
		parts := strings.Split(suffix(pdu.Name, oidIPNetToMediaPhys), ".")
		if len(parts) != 5 {
			continue
		}
		ip := net.ParseIP(strings.Join(parts[1:], "."))
		raw, ok := pdu.Value.([]byte)
		if ip == nil || !ok || len(raw) != 6 {
			continue
		}
		rows = append(rows, device.Row{
			device.FieldIPAddress:  ip.String(),
			device.FieldMACAddress: net.HardwareAddr(raw).String(),
			device.FieldInterface:  names[parts[0]],
		})
	}
	return rows, nil
}

func (s *Session) interfaceStatus() ([]device.Row, error) {
	names, err := s.ifNames()
	if err != nil {
		return nil, err
	}
	speeds, err := s.intColumn(oidIfHighSpeed)
	if err != nil {
		return nil, err
	}
	oper, err := s.intColumn(oidIfOperStatus)
	if err != nil {
		return nil, err
	}
	duplex, err := s.intColumn(oidDot3DuplexStatus)
	if err != nil {
		// EtherLike-MIB is optional on many platforms
		slog.Debug("duplex status unavailable", "device", s.host, "error", err)
		duplex = map[string]int64{}
	}

	var rows []device.Row
	for _, ifIndex := range sortedKeys(names) {
		rows = append(rows, device.Row{
			device.FieldInterface: names[ifIndex],
			device.FieldStatus:    operStatus(oper[ifIndex]),
			device.FieldSpeed:     strconv.FormatInt(speeds[ifIndex], 10),
			device.FieldDuplex:    duplexStatus(duplex[ifIndex]),
		})
	}
	return rows, nil
}

// bridgePortNames maps bridge port numbers to interface names.
func (s *Session) bridgePortNames() (map[string]string, error) {
	names, err := s.ifNames()
	if err != nil {
		return nil, err
	}
	ifIndexes, err := s.intColumn(oidDot1dBasePortIfIndex)
	if err != nil {
		return nil, err
	}

	ports := make(map[string]string, len(ifIndexes))
	for port, ifIndex := range ifIndexes {
		if name, ok := names[strconv.FormatInt(ifIndex, 10)]; ok {
			ports[port] = name
		}
	}
	return ports, nil
}

func (s *Session) ifNames() (map[string]string, error) {
	pdus, err := s.w.BulkWalkAll(oidIfName)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(pdus))
	for _, pdu := range pdus {
		if b, ok := pdu.Value.([]byte); ok {
			names[suffix(pdu.Name, oidIfName)] = string(b)
		}
	}
	return names, nil
}

func (s *Session) intColumn(root string) (map[string]int64, error) {
	pdus, err := s.w.BulkWalkAll(root)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int64, len(pdus))
	for _, pdu := range pdus {
		col[suffix(pdu.Name, root)] = gosnmp.ToBigInt(pdu.Value).Int64()
	}
	return col, nil
}

func suffix(name, root string) string {
	name = "." + strings.TrimPrefix(name, ".")
	return strings.TrimPrefix(strings.TrimPrefix(name, root), ".")
}

func macFromOctets(parts []string) (string, bool) {
	if len(parts) != 6 {
		return "", false
	}
	hw := make(net.HardwareAddr, 6)
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return "", false
		}
		hw[i] = byte(v)
	}
	return hw.String(), true
}

func operStatus(v int64) string {
	switch v {
	case 1:
		return "connected"
	case 2:
		return "notconnect"
	case 5:
		return "dormant"
	case 7:
		return "lowerLayerDown"
	default:
		return "unknown"
	}
}

func duplexStatus(v int64) string {
	switch v {
	case 2:
		return "half"
	case 3:
		return "full"
	default:
		return "unknown"
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// ifIndex values are numeric; order them numerically
	slices.SortFunc(keys, func(a, b string) int {
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		return ai - bi
	})
	return keys
}
