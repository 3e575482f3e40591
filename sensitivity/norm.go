//
// Copyright 2020 Sherpa.ai
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Package sensitivity empirically estimates the sensitivity of a query
// function when no analytic bound is available, following "Pain-Free Random
// Differential Privacy with Sensitivity Sampling"
// (https://arxiv.org/abs/1706.02562). The resulting estimate calibrates a
// noise-adding mechanism.
package sensitivity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Norm is a distance function between two query outputs. Alternative norms
// can be substituted without touching the sampler.
type Norm interface {
	Compute(x1, x2 any) (float64, error)
}

// L1SensitivityNorm is the sum of absolute element-wise differences.
type L1SensitivityNorm struct{}

// Compute returns the L1 distance between x1 and x2, which must both be
// float64 scalars or []float64 vectors of equal length.
func (L1SensitivityNorm) Compute(x1, x2 any) (float64, error) {
	switch v1 := x1.(type) {
	case float64:
		v2, ok := x2.(float64)
		if !ok {
			return 0, fmt.Errorf("mismatched query outputs: %T and %T", x1, x2)
		}
		return math.Abs(v1 - v2), nil
	case []float64:
		v2, ok := x2.([]float64)
		if !ok {
			return 0, fmt.Errorf("mismatched query outputs: %T and %T", x1, x2)
		}
		if len(v1) != len(v2) {
			return 0, fmt.Errorf("mismatched query output lengths: %d and %d", len(v1), len(v2))
		}
		return floats.Distance(v1, v2, 1), nil
	default:
		return 0, fmt.Errorf("unsupported query output of type %T, must be a float64 or a []float64", x1)
	}
}
