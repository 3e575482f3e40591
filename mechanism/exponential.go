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

// UtilityFunc scores every candidate output in r against the private data.
// It must return one score per candidate.
type UtilityFunc func(data any, r []float64) []float64

// ExponentialMechanism draws outputs from a candidate range with probability
// proportional to exp(ε·u(data, r)/(2·Δu)). Its cost is (ε, 0).
//
// Not thread-safe.
type ExponentialMechanism struct {
	utility     UtilityFunc
	outputRange []float64
	deltaU      float64
	epsilon     float64
	repetitions int
	src         exprand.Source
}

// ExponentialMechanismOptions contains the options necessary to initialize an
// ExponentialMechanism.
type ExponentialMechanismOptions struct {
	Utility     UtilityFunc    // Utility function scoring the candidate outputs. Required.
	Range       []float64      // Candidate outputs the mechanism draws from. Required.
	DeltaU      float64        // Sensitivity Δu of the utility function. Required.
	Epsilon     float64        // Privacy parameter ε. Required.
	Repetitions int            // Number of draws per Apply. Defaults to 1, which releases a scalar.
	Src         exprand.Source // Source of randomness. Defaults to the secure source.
}

// NewExponentialMechanism returns a new ExponentialMechanism.
func NewExponentialMechanism(opt *ExponentialMechanismOptions) (*ExponentialMechanism, error) {
	if opt == nil {
		opt = &ExponentialMechanismOptions{}
	}
	if opt.Utility == nil {
		return nil, fmt.Errorf("Utility function must be set")
	}
	if len(opt.Range) == 0 {
		return nil, fmt.Errorf("Range must contain at least one candidate output")
	}
	if err := checks.CheckSensitivity(opt.DeltaU); err != nil {
		return nil, err
	}
	if err := checks.CheckEpsilonStrict(opt.Epsilon); err != nil {
		return nil, err
	}
	repetitions := opt.Repetitions
	if repetitions == 0 {
		repetitions = 1
	}
	if repetitions < 0 {
		return nil, fmt.Errorf("Repetitions is %d, must be strictly positive", repetitions)
	}
	src := opt.Src
	if src == nil {
		src = rand.Secure()
	}
	return &ExponentialMechanism{
		utility:     opt.Utility,
		outputRange: opt.Range,
		deltaU:      opt.DeltaU,
		epsilon:     opt.Epsilon,
		repetitions: repetitions,
		src:         src,
	}, nil
}

// Apply draws the configured number of outputs from the candidate range with
// probability proportional to exp(ε·u/(2·Δu)). A single repetition releases a
// scalar, more release a vector of draws.
func (m *ExponentialMechanism) Apply(data any) (any, error) {
	scores := m.utility(data, m.outputRange)
	if len(scores) != len(m.outputRange) {
		return nil, fmt.Errorf("utility function returned %d scores for %d candidate outputs", len(scores), len(m.outputRange))
	}
	// Shifting the scaled scores by their maximum keeps the exponentials
	// within float64 range; the shift cancels in the normalization.
	scaled := make([]float64, len(scores))
	maxScaled := math.Inf(-1)
	for i, s := range scores {
		scaled[i] = m.epsilon * s / (2 * m.deltaU)
		if scaled[i] > maxScaled {
			maxScaled = scaled[i]
		}
	}
	weights := make([]float64, len(scaled))
	for i, s := range scaled {
		weights[i] = math.Exp(s - maxScaled)
	}
	dist := distuv.NewCategorical(weights, m.src)
	draws := make([]float64, m.repetitions)
	for i := range draws {
		draws[i] = m.outputRange[int(dist.Rand())]
	}
	if m.repetitions == 1 {
		return draws[0], nil
	}
	return draws, nil
}

// EpsilonDelta returns the (ε, 0) cost of one application.
func (m *ExponentialMechanism) EpsilonDelta() private.PrivacyBudget {
	return private.PrivacyBudget{Epsilon: m.epsilon, Delta: 0}
}
