// Copyright 2025 go-highway Authors
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

// Package batch plans many independent operator invocations concurrently.
//
// Plans share nothing, so a batch is a plain fan-out: each request is planned
// on its own goroutine and the results are returned in request order.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-tiling/tiling"
)

// PlanAll plans every request with planner, running at most limit plans at a
// time (limit <= 0 means no limit). On the first failure the remaining
// requests are skipped and that error is returned; no plans are returned.
func PlanAll(ctx context.Context, planner *tiling.Planner, reqs []tiling.Request, limit int) ([]*tiling.DispatchPlan, error) {
	plans := make([]*tiling.DispatchPlan, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan, err := planner.Plan(req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}
