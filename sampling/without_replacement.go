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

package sampling

import (
	"math"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
)

// SampleWithoutReplacement subsamples the first axis of the private data
// without replacement before delegating to the wrapped mechanism. With
// sampling proportion p = m/n, the wrapped cost (ε, δ) is reduced to
// (ln(1 + p·(e^ε − 1)), p·δ).
//
// Not thread-safe.
type SampleWithoutReplacement struct {
	sampler
}

// NewSampleWithoutReplacement returns a new SampleWithoutReplacement wrapper.
func NewSampleWithoutReplacement(opt *SamplerOptions) (*SampleWithoutReplacement, error) {
	s, err := newSampler(opt)
	if err != nil {
		return nil, err
	}
	return &SampleWithoutReplacement{sampler: s}, nil
}

// Apply draws a sample of the configured size from data and releases it
// through the wrapped mechanism.
func (s *SampleWithoutReplacement) Apply(data any) (any, error) {
	sampled, err := s.sample(data, false)
	if err != nil {
		return nil, err
	}
	return s.mechanism.Apply(sampled)
}

// EpsilonDelta returns the amplified cost of one application. It is computed
// in closed form from the wrapped mechanism's cost, never measured.
func (s *SampleWithoutReplacement) EpsilonDelta() private.PrivacyBudget {
	cost := s.mechanism.EpsilonDelta()
	proportion := float64(s.actualSampleSize) / float64(s.flatDataSize)
	return private.PrivacyBudget{
		Epsilon: math.Log1p(proportion * math.Expm1(cost.Epsilon)),
		Delta:   proportion * cost.Delta,
	}
}
