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
package api

import (
	"context"

	"github.com/macdiff/macdiff/pkg/server"
)

// Serve runs the API on a pkg/server instance until ctx is done or the
// process receives SIGINT or SIGTERM. The API is closed on return.
func Serve(ctx context.Context, a *API, opts ...server.Option) error {
	defer a.Close()

	opts = append(opts,
		server.WithHandler(a.Routes()),
		server.WithReadinessCheck("store", a.CheckStore),
	)
	return server.New(opts...).Run(ctx)
}
