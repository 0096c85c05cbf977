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

// Package client builds Kubernetes clients for the ConfigMap snapshot store.
//
// GetKubeClient caches one client per process:
//
//	cs, _, err := client.GetKubeClient()
//	if err != nil {
//	    return fmt.Errorf("failed to get kubernetes client: %w", err)
//	}
//	cms, err := cs.CoreV1().ConfigMaps("network-ops").List(ctx, metav1.ListOptions{})
//
// The kubeconfig is taken from an explicit path, $KUBECONFIG or
// ~/.kube/config, in that order. Without one the in-cluster service account
// is used.
package client
