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

// GaussianMechanism adds zero-mean Gaussian noise calibrated with the classic
// analytic formula σ = sqrt(2·ln(1.25/δ))·sensitivity/ε. The analytic Gaussian
// mechanism requires 0 < ε < 1. Its cost is (ε, δ).
//
// Not thread-safe.
type GaussianMechanism struct {
	sensitivity  float64
	epsilonDelta private.PrivacyBudget
	dist         distuv.Normal
}

// GaussianMechanismOptions contains the options necessary to initialize a
// GaussianMechanism.
type GaussianMechanismOptions struct {
	Sensitivity  float64               // L2 sensitivity of the query being released. Required.
	EpsilonDelta private.PrivacyBudget // Privacy parameters (ε, δ), with 0 < ε < 1 and δ > 0. Required.
	Src          exprand.Source        // Source of randomness. Defaults to the secure source.
}

// NewGaussianMechanism returns a new GaussianMechanism.
func NewGaussianMechanism(opt *GaussianMechanismOptions) (*GaussianMechanism, error) {
	if opt == nil {
		opt = &GaussianMechanismOptions{}
	}
	if err := checks.CheckSensitivity(opt.Sensitivity); err != nil {
		return nil, err
	}
	epsilon, delta := opt.EpsilonDelta.Epsilon, opt.EpsilonDelta.Delta
	if err := checks.CheckEpsilonStrict(epsilon); err != nil {
		return nil, err
	}
	if epsilon >= 1 {
		return nil, fmt.Errorf("Epsilon is %f, the Gaussian mechanism requires epsilon within (0, 1)", epsilon)
	}
	if err := checks.CheckDelta(delta); err != nil {
		return nil, err
	}
	if delta <= 0 || delta > 1 {
		return nil, fmt.Errorf("Delta is %e, the Gaussian mechanism requires delta within (0, 1]", delta)
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	sigma := math.Sqrt(2*math.Log(1.25/delta)) * opt.Sensitivity / epsilon
	return &GaussianMechanism{
		sensitivity:  opt.Sensitivity,
		epsilonDelta: opt.EpsilonDelta,
		dist: distuv.Normal{
			Mu:    0,
			Sigma: sigma,
			Src:   src,
		},
	}, nil
}

// Apply adds Gaussian noise to each component of data.
func (m *GaussianMechanism) Apply(data any) (any, error) {
	vals, shape, err := vectorize(data)
	if err != nil {
		return nil, err
	}
	noised := make([]float64, len(vals))
	for i, v := range vals {
		noised[i] = v + m.dist.Rand()
	}
	return reshape(noised, shape), nil
}

// EpsilonDelta returns the (ε, δ) cost of one application.
func (m *GaussianMechanism) EpsilonDelta() private.PrivacyBudget {
	return m.epsilonDelta
}
