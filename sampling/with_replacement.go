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

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
)

// SampleWithReplacement subsamples the first axis of the private data with
// replacement before delegating to the wrapped mechanism. With sampling
// proportion p = 1 − (1 − 1/n)^m, the wrapped ε is reduced to
// ln(1 + p·(e^ε − 1)) and δ is scaled by the probability that a fixed record
// is drawn at least once.
//
// Not thread-safe.
type SampleWithReplacement struct {
	sampler
}

// NewSampleWithReplacement returns a new SampleWithReplacement wrapper.
func NewSampleWithReplacement(opt *SamplerOptions) (*SampleWithReplacement, error) {
	s, err := newSampler(opt)
	if err != nil {
		return nil, err
	}
	return &SampleWithReplacement{sampler: s}, nil
}

// Apply draws a sample of the configured size from data and releases it
// through the wrapped mechanism.
func (s *SampleWithReplacement) Apply(data any) (any, error) {
	sampled, err := s.sample(data, true)
	if err != nil {
		return nil, err
	}
	return s.mechanism.Apply(sampled)
}

// EpsilonDelta returns the amplified cost of one application. It is computed
// in closed form from the wrapped mechanism's cost, never measured.
func (s *SampleWithReplacement) EpsilonDelta() private.PrivacyBudget {
	cost := s.mechanism.EpsilonDelta()
	n := float64(s.flatDataSize)
	m := float64(s.actualSampleSize)
	proportion := 1 - math.Pow(1-1/n, m)

	// Σ_{k=1}^{m} C(m,k)·(1/n)^k·(1−1/n)^(m−k), evaluated through the binomial
	// PMF so large m does not overflow the binomial coefficient.
	hit := distuv.Binomial{N: m, P: 1 / n}
	var deltaScale float64
	for k := 1.0; k <= m; k++ {
		deltaScale += hit.Prob(k)
	}

	return private.PrivacyBudget{
		Epsilon: math.Log1p(proportion * math.Expm1(cost.Epsilon)),
		Delta:   cost.Delta * deltaScale,
	}
}
