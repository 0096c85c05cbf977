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

package client

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetClient() {
	clientOnce = sync.Once{}
	cachedClient = nil
	cachedConfig = nil
	clientErr = nil
}

func TestResolveKubeconfig(t *testing.T) {
	t.Setenv(EnvKubeconfig, "/from/env")
	assert.Equal(t, "/explicit", ResolveKubeconfig("/explicit"))
	assert.Equal(t, "/from/env", ResolveKubeconfig(""))
}

func TestResolveKubeconfig_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvKubeconfig, "")

	assert.Empty(t, ResolveKubeconfig(""))

	path := filepath.Join(home, ".kube", "config")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: v1\n"), 0o600))
	assert.Equal(t, path, ResolveKubeconfig(""))
}

func TestBuildKubeClient_InvalidPath(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		env  string
	}{
		{name: "explicit", arg: "/nonexistent/kubeconfig"},
		{name: "env", env: "/nonexistent/env/kubeconfig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvKubeconfig, tt.env)
			_, _, err := BuildKubeClient(tt.arg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to build kube config")
		})
	}
}

func TestBuildKubeClient_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte("invalid yaml content"), 0o600))

	_, _, err := BuildKubeClient(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build kube config")
}

func TestBuildKubeClient_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kubeconfig")
	cfg := `apiVersion: v1
kind: Config
clusters:
- name: lab
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: lab
  context:
    cluster: lab
    user: ops
current-context: lab
users:
- name: ops
  user:
    token: abc
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	cs, config, err := BuildKubeClient(path)
	require.NoError(t, err)
	assert.NotNil(t, cs)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestGetKubeClient_Cached(t *testing.T) {
	resetClient()
	defer resetClient()
	t.Setenv(EnvKubeconfig, "/nonexistent/kubeconfig")

	_, _, err1 := GetKubeClient()
	_, _, err2 := GetKubeClient()
	require.Error(t, err1)
	assert.Same(t, err1, err2)
}
