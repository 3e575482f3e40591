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

package mechanism

import (
	"fmt"
	"math"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
)

// RandomizedResponseCoins is the two-coin randomized response over binary
// values. For each element, a first coin with heads probability p1 decides
// whether the true value is released; on tails, a second coin with heads
// probability p2 is released instead. With the default fair coins the cost is
// (ln 3, 0).
//
// Not thread-safe.
type RandomizedResponseCoins struct {
	probHeadFirst  float64
	probHeadSecond float64
	epsilon        float64
	firstCoin      distuv.Bernoulli
	secondCoin     distuv.Bernoulli
}

// RandomizedResponseCoinsOptions contains the options necessary to initialize
// a RandomizedResponseCoins mechanism.
type RandomizedResponseCoinsOptions struct {
	ProbHeadFirst  float64        // Heads probability of the first coin. Defaults to 0.5.
	ProbHeadSecond float64        // Heads probability of the second coin. Defaults to 0.5.
	Src            exprand.Source // Source of randomness. Defaults to the secure source.
}

// NewRandomizedResponseCoins returns a new RandomizedResponseCoins mechanism.
func NewRandomizedResponseCoins(opt *RandomizedResponseCoinsOptions) (*RandomizedResponseCoins, error) {
	if opt == nil {
		opt = &RandomizedResponseCoinsOptions{}
	}
	p1 := opt.ProbHeadFirst
	if p1 == 0 {
		p1 = 0.5
	}
	p2 := opt.ProbHeadSecond
	if p2 == 0 {
		p2 = 0.5
	}
	if err := checks.CheckProbabilityStrict(p1, "ProbHeadFirst"); err != nil {
		return nil, err
	}
	if err := checks.CheckProbabilityStrict(p2, "ProbHeadSecond"); err != nil {
		return nil, err
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	// Release probabilities of the equivalent binary randomized response:
	// P(release 1 | true 1) and P(release 0 | true 0).
	releaseOne := p1 + (1-p1)*p2
	releaseZero := p1 + (1-p1)*(1-p2)
	epsilon := math.Log(math.Max(releaseOne/(1-releaseZero), releaseZero/(1-releaseOne)))
	return &RandomizedResponseCoins{
		probHeadFirst:  p1,
		probHeadSecond: p2,
		epsilon:        epsilon,
		firstCoin:      distuv.Bernoulli{P: p1, Src: src},
		secondCoin:     distuv.Bernoulli{P: p2, Src: src},
	}, nil
}

// Apply randomizes each binary element of data with the two-coin protocol.
// It fails if any element is not strictly binary.
func (m *RandomizedResponseCoins) Apply(data any) (any, error) {
	vals, shape, err := vectorize(data)
	if err != nil {
		return nil, err
	}
	if err := checks.CheckBinaryValues(vals); err != nil {
		return nil, err
	}
	released := make([]float64, len(vals))
	for i, v := range vals {
		if m.firstCoin.Rand() == 1 {
			released[i] = v
		} else {
			released[i] = m.secondCoin.Rand()
		}
	}
	return reshape(released, shape), nil
}

// EpsilonDelta returns the analytically derived (ε, 0) cost of one application.
func (m *RandomizedResponseCoins) EpsilonDelta() private.PrivacyBudget {
	return private.PrivacyBudget{Epsilon: m.epsilon, Delta: 0}
}

// RandomizedResponseBinary is the general binary randomized response
// parametrized by f0 = P(release 0 | true 0) and f1 = P(release 1 | true 1).
// Construction fails when the parametrization is deterministic or not
// consistent with the declared ε. Its cost is (ε, 0).
//
// Not thread-safe.
type RandomizedResponseBinary struct {
	f0          float64
	f1          float64
	epsilon     float64
	onGivenOne  distuv.Bernoulli
	onGivenZero distuv.Bernoulli
}

// RandomizedResponseBinaryOptions contains the options necessary to
// initialize a RandomizedResponseBinary mechanism.
type RandomizedResponseBinaryOptions struct {
	F0      float64        // P(release 0 | true 0). Required, within (0, 1).
	F1      float64        // P(release 1 | true 1). Required, within (0, 1).
	Epsilon float64        // Privacy parameter ε the parametrization must satisfy. Required.
	Src     exprand.Source // Source of randomness. Defaults to the secure source.
}

// NewRandomizedResponseBinary returns a new RandomizedResponseBinary mechanism.
func NewRandomizedResponseBinary(opt *RandomizedResponseBinaryOptions) (*RandomizedResponseBinary, error) {
	if opt == nil {
		opt = &RandomizedResponseBinaryOptions{}
	}
	if err := checks.CheckEpsilonStrict(opt.Epsilon); err != nil {
		return nil, err
	}
	if err := checks.CheckProbabilityStrict(opt.F0, "F0"); err != nil {
		return nil, err
	}
	if err := checks.CheckProbabilityStrict(opt.F1, "F1"); err != nil {
		return nil, err
	}
	// ε-differential privacy of the binary randomized response requires
	//   P(release b | true b) ≤ e^ε · P(release b | true 1−b)  for b ∈ {0, 1}.
	expEpsilon := math.Exp(opt.Epsilon)
	if opt.F0 > expEpsilon*(1-opt.F1) || opt.F1 > expEpsilon*(1-opt.F0) {
		return nil, fmt.Errorf("f0=%f, f1=%f are not consistent with epsilon %f: the mechanism would not be %f-differentially private", opt.F0, opt.F1, opt.Epsilon, opt.Epsilon)
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	return &RandomizedResponseBinary{
		f0:          opt.F0,
		f1:          opt.F1,
		epsilon:     opt.Epsilon,
		onGivenOne:  distuv.Bernoulli{P: opt.F1, Src: src},
		onGivenZero: distuv.Bernoulli{P: 1 - opt.F0, Src: src},
	}, nil
}

// Apply randomizes each binary element of data. It fails if any element is
// not strictly binary.
func (m *RandomizedResponseBinary) Apply(data any) (any, error) {
	vals, shape, err := vectorize(data)
	if err != nil {
		return nil, err
	}
	if err := checks.CheckBinaryValues(vals); err != nil {
		return nil, err
	}
	released := make([]float64, len(vals))
	for i, v := range vals {
		if v == 1 {
			released[i] = m.onGivenOne.Rand()
		} else {
			released[i] = m.onGivenZero.Rand()
		}
	}
	return reshape(released, shape), nil
}

// EpsilonDelta returns the (ε, 0) cost of one application.
func (m *RandomizedResponseBinary) EpsilonDelta() private.PrivacyBudget {
	return private.PrivacyBudget{Epsilon: m.epsilon, Delta: 0}
}
