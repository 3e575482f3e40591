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

// Package mechanism contains the randomizers that turn a private value into a
// differentially private release. Every mechanism implements
// private.DPAccessDefinition: Apply transforms a scalar, a vector or a matrix
// (noise mechanisms operate element-wise) and EpsilonDelta reports the (ε, δ)
// cost of one application. The identity variant with no privacy cost is
// private.UnprotectedAccess.
package mechanism

import (
	"fmt"
)

// valueShape records the shape of a private value so that an element-wise
// release can be returned in the caller's shape.
type valueShape struct {
	scalar bool
	rows   []int // row lengths for matrix values, nil otherwise
}

var scalarShape = valueShape{scalar: true}

// vectorize flattens a supported private value into a float64 vector.
func vectorize(data any) ([]float64, valueShape, error) {
	switch v := data.(type) {
	case float64:
		return []float64{v}, scalarShape, nil
	case int:
		return []float64{float64(v)}, scalarShape, nil
	case int64:
		return []float64{float64(v)}, scalarShape, nil
	case []float64:
		return v, valueShape{}, nil
	case [][]float64:
		rows := make([]int, len(v))
		var flat []float64
		for i, row := range v {
			rows[i] = len(row)
			flat = append(flat, row...)
		}
		return flat, valueShape{rows: rows}, nil
	default:
		return nil, valueShape{}, fmt.Errorf("unsupported private value of type %T, must be a float64, an int, a []float64 or a [][]float64", data)
	}
}

// reshape returns vals in the shape recorded by vectorize.
func reshape(vals []float64, shape valueShape) any {
	if shape.scalar {
		return vals[0]
	}
	if shape.rows == nil {
		return vals
	}
	out := make([][]float64, len(shape.rows))
	offset := 0
	for i, n := range shape.rows {
		out[i] = vals[offset : offset+n]
		offset += n
	}
	return out
}
