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

package device

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/macdiff/macdiff/pkg/errors"
)

var (
	interfaceStatuses = map[string]bool{
		"connected":    true,
		"notconnect":   true,
		"notconnec":    true,
		"disabled":     true,
		"err-disabled": true,
		"errdisable":   true,
		"inactive":     true,
		"monitoring":   true,
		"suspended":    true,
		"sfpAbsent":    true,
		"xcvrAbsent":   true,
		"noOperMem":    true,
		"linkFlapE":    true,
		"up":           true,
		"down":         true,
	}

	duplexValue = regexp.MustCompile(`^(?i)((a-)?(full|half)|auto|unknown|--)$`)
)

// CanonicalMAC parses an EUI-48 address in dotted, colon or hyphen notation
// and returns it in lower-case colon form.
func CanonicalMAC(s string) (string, bool) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil || len(hw) != 6 {
		return "", false
	}
	return hw.String(), true
}

// ParseOutput parses CLI output of one of the known commands into rows.
func ParseOutput(command, output string) ([]Row, error) {
	switch command {
	case CommandMACTable:
		return ParseMACTable(output), nil
	case CommandARP:
		return ParseARP(output), nil
	case CommandInterfaceStatus:
		return ParseInterfaceStatus(output), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("no parser for command %q", command))
	}
}

// ParseMACTable parses "show mac address-table" output from IOS, IOS-XE and
// NX-OS. Lines without a MAC address (headers, totals, legends) are skipped.
func ParseMACTable(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		idx, mac := findMAC(fields)
		if idx < 0 || idx == len(fields)-1 {
			continue
		}

		row := Row{
			FieldMACAddress: mac,
			FieldPorts:      fields[len(fields)-1],
		}
		if idx > 0 {
			row[FieldVLAN] = fields[idx-1]
		}
		if idx+1 < len(fields)-1 {
			row[FieldType] = strings.ToLower(fields[idx+1])
		}
		rows = append(rows, row)
	}
	return rows
}

// ParseARP parses "show ip arp" output. Incomplete entries have no MAC
// address and are skipped.
func ParseARP(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		idx, mac := findMAC(fields)
		if idx < 0 {
			continue
		}

		ip := ""
		for _, f := range fields[:idx] {
			if parsed := net.ParseIP(f); parsed != nil {
				ip = parsed.String()
				break
			}
		}
		if ip == "" {
			continue
		}

		row := Row{
			FieldIPAddress:  ip,
			FieldMACAddress: mac,
		}
		if last := fields[len(fields)-1]; idx < len(fields)-1 && !strings.EqualFold(last, "ARPA") {
			row[FieldInterface] = last
		}
		rows = append(rows, row)
	}
	return rows
}

// ParseInterfaceStatus parses "show interfaces status" output. The Name
// column is free text, so rows are anchored on the status column instead of
// fixed offsets.
func ParseInterfaceStatus(output string) []Row {
	var rows []Row
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || strings.EqualFold(fields[0], "Port") {
			continue
		}

		s := statusIndex(fields)
		if s < 0 {
			continue
		}

		rows = append(rows, Row{
			FieldInterface: fields[0],
			FieldName:      strings.Join(fields[1:s], " "),
			FieldStatus:    fields[s],
			FieldVLAN:      fields[s+1],
			FieldDuplex:    fields[s+2],
			FieldSpeed:     fields[s+3],
			FieldType:      strings.Join(fields[s+4:], " "),
		})
	}
	return rows
}

func findMAC(fields []string) (int, string) {
	for i, f := range fields {
		if mac, ok := CanonicalMAC(f); ok {
			return i, mac
		}
	}
	return -1, ""
}

func statusIndex(fields []string) int {
	for s := 1; s+3 < len(fields); s++ {
		if interfaceStatuses[fields[s]] && duplexValue.MatchString(fields[s+2]) {
			return s
		}
	}
	return -1
}
