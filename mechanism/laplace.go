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
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
)

// LaplaceMechanism adds zero-mean Laplace noise with scale sensitivity/ε,
// independently per output component. Its cost is (ε, 0).
//
// Not thread-safe.
type LaplaceMechanism struct {
	sensitivity float64
	epsilon     float64
	dist        distuv.Laplace
}

// LaplaceMechanismOptions contains the options necessary to initialize a
// LaplaceMechanism.
type LaplaceMechanismOptions struct {
	Sensitivity float64        // L1 sensitivity of the query being released. Required.
	Epsilon     float64        // Privacy parameter ε. Required.
	Src         exprand.Source // Source of randomness. Defaults to the secure source.
}

// NewLaplaceMechanism returns a new LaplaceMechanism.
func NewLaplaceMechanism(opt *LaplaceMechanismOptions) (*LaplaceMechanism, error) {
	if opt == nil {
		opt = &LaplaceMechanismOptions{}
	}
	if err := checks.CheckSensitivity(opt.Sensitivity); err != nil {
		return nil, err
	}
	if err := checks.CheckEpsilonStrict(opt.Epsilon); err != nil {
		return nil, err
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	return &LaplaceMechanism{
		sensitivity: opt.Sensitivity,
		epsilon:     opt.Epsilon,
		dist: distuv.Laplace{
			Mu:    0,
			Scale: opt.Sensitivity / opt.Epsilon,
			Src:   src,
		},
	}, nil
}

// Apply adds Laplace noise to each component of data.
func (m *LaplaceMechanism) Apply(data any) (any, error) {
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

// EpsilonDelta returns the (ε, 0) cost of one application.
func (m *LaplaceMechanism) EpsilonDelta() private.PrivacyBudget {
	return private.PrivacyBudget{Epsilon: m.epsilon, Delta: 0}
}
