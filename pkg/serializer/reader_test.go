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

package serializer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.json", FormatJSON},
		{"A.JSON", FormatJSON},
		{"inventory.yaml", FormatYAML},
		{"inventory.yml", FormatYAML},
		{"out.table", FormatTable},
		{"out.txt", FormatTable},
		{"noext", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatFromPath(tt.path); got != tt.want {
				t.Errorf("FormatFromPath(%q) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewReader_RejectsTable(t *testing.T) {
	if _, err := NewReader(FormatTable, strings.NewReader("")); err == nil {
		t.Error("expected error for table format")
	}
	if _, err := NewReader(Format("xml"), strings.NewReader("")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestReader_Deserialize(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, `{"name":"sw1","value":3}`},
		{"yaml", FormatYAML, "name: sw1\nvalue: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(tt.format, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("NewReader: %v", err)
			}
			defer r.Close()

			var got testConfig
			if err := r.Deserialize(&got); err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if got.Name != "sw1" || got.Value != 3 {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestReader_DeserializeInvalid(t *testing.T) {
	r, err := NewReader(FormatJSON, strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var got testConfig
	if err := r.Deserialize(&got); err == nil {
		t.Error("expected decode error")
	}

	var nilReader *Reader
	if err := nilReader.Deserialize(&got); err == nil {
		t.Error("expected error from nil reader")
	}
	if err := nilReader.Close(); err != nil {
		t.Errorf("Close on nil reader should be nil, got %v", err)
	}
}

func TestFromFile_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("name: local\nvalue: 9\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := FromFile[testConfig](path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if got.Name != "local" || got.Value != 9 {
		t.Errorf("got %+v", got)
	}
}

func TestFromFile_Missing(t *testing.T) {
	if _, err := FromFile[testConfig](filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFromFile_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(testConfig{Name: "remote", Value: 1})
	}))
	defer srv.Close()

	got, err := FromFileWithContext[testConfig](context.Background(), srv.URL+"/cfg.json")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if got.Name != "remote" {
		t.Errorf("got %+v", got)
	}
}
