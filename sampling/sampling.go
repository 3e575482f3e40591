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

// Package sampling contains decorators that subsample the private data before
// delegating to a wrapped differentially private mechanism. Subsampling
// provably amplifies privacy, so the wrappers report a reduced (ε, δ) cost
// computed in closed form from the wrapped mechanism's cost.
//
// The reductions implement theorems 9 and 10 of "Privacy Amplification by
// Subsampling: Tight Analyses via Couplings and Divergences"
// (https://arxiv.org/abs/1807.01647).
package sampling

import (
	"fmt"

	exprand "golang.org/x/exp/rand"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
)

// SamplerOptions contains the options necessary to initialize a subsampling
// wrapper.
type SamplerOptions struct {
	// Mechanism is the wrapped differentially private mechanism. Required.
	Mechanism private.DPAccessDefinition
	// SampleSize is the number of first-axis records drawn per query. Required.
	SampleSize int
	// DataSize is the declared shape of the total private data; sampling
	// happens along the first axis. Required.
	DataSize []int
	// Src is the source of randomness. Defaults to the secure source.
	Src exprand.Source
}

// sampler holds the state shared by both subsampling wrappers. The closed
// form reductions treat multi-dimensional data as flattened over all but the
// first axis.
type sampler struct {
	mechanism        private.DPAccessDefinition
	sampleSize       int
	actualSampleSize int
	flatDataSize     int
	rnd              *exprand.Rand
}

func newSampler(opt *SamplerOptions) (sampler, error) {
	if opt == nil {
		opt = &SamplerOptions{}
	}
	if opt.Mechanism == nil {
		return sampler{}, fmt.Errorf("Mechanism must be set")
	}
	if err := checks.CheckSampleSize(opt.SampleSize, opt.DataSize); err != nil {
		return sampler{}, err
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	trailing := 1
	for _, extent := range opt.DataSize[1:] {
		trailing *= extent
	}
	return sampler{
		mechanism:        opt.Mechanism,
		sampleSize:       opt.SampleSize,
		actualSampleSize: opt.SampleSize * trailing,
		flatDataSize:     opt.DataSize[0] * trailing,
		rnd:              exprand.New(src),
	}, nil
}

// sampleIndices returns sampleSize indices into a first axis of length n.
func (s *sampler) sampleIndices(n int, withReplacement bool) []int {
	if withReplacement {
		idxs := make([]int, s.sampleSize)
		for i := range idxs {
			idxs[i] = s.rnd.Intn(n)
		}
		return idxs
	}
	return s.rnd.Perm(n)[:s.sampleSize]
}

// sample draws a first-axis sample from data and returns it in the same form.
func (s *sampler) sample(data any, withReplacement bool) (any, error) {
	switch v := data.(type) {
	case []float64:
		if s.sampleSize > len(v) {
			return nil, fmt.Errorf("SampleSize is %d, but the queried data only has %d records", s.sampleSize, len(v))
		}
		sampled := make([]float64, s.sampleSize)
		for i, idx := range s.sampleIndices(len(v), withReplacement) {
			sampled[i] = v[idx]
		}
		return sampled, nil
	case [][]float64:
		if s.sampleSize > len(v) {
			return nil, fmt.Errorf("SampleSize is %d, but the queried data only has %d records", s.sampleSize, len(v))
		}
		sampled := make([][]float64, s.sampleSize)
		for i, idx := range s.sampleIndices(len(v), withReplacement) {
			sampled[i] = v[idx]
		}
		return sampled, nil
	default:
		return nil, fmt.Errorf("unsupported private value of type %T, must be a []float64 or a [][]float64", data)
	}
}
