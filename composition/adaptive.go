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

// Package composition contains the adaptive privacy filter that tracks the
// cumulative (ε, δ) expenditure of a sequence of adaptively chosen queries
// and rejects queries that would exceed a declared global budget.
//
// The composition bounds implement theorems 3.6 and 5.1 of "Privacy Odometers
// and Filters: Pay-as-you-Go Composition" (https://arxiv.org/abs/1605.08294).
package composition

import (
	"fmt"
	"math"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
)

// ExceededPrivacyBudgetError is returned by AdaptiveDifferentialPrivacy.Apply
// when the composition checks report that the global budget is exhausted. The
// rejected query leaves no trace in the filter's access history.
type ExceededPrivacyBudgetError struct {
	// EpsilonDelta is the configured global budget that would have been exceeded.
	EpsilonDelta private.PrivacyBudget
}

func (e *ExceededPrivacyBudgetError) Error() string {
	return fmt.Sprintf("privacy budget (%f, %e) has been exceeded", e.EpsilonDelta.Epsilon, e.EpsilonDelta.Delta)
}

// AdaptiveDifferentialPrivacy is a privacy filter: an access definition that
// wraps a default differentially private mechanism, keeps an append-only
// history of the (ε, δ) spent by every accepted query and refuses queries
// once the global budget is exhausted.
//
// A query is rejected only when every applicable composition theorem reports
// exhaustion: the basic bound always, and additionally the advanced bound
// when 0 < δ < e⁻¹. This permissive combination is intentional and must be
// preserved; most filter designs reject as soon as either bound is violated.
//
// The access history is single-writer state. Concurrent Apply calls against
// the same filter must be serialized externally.
type AdaptiveDifferentialPrivacy struct {
	epsilonDelta     private.PrivacyBudget
	defaultMechanism private.DPAccessDefinition
	accessHistory    []private.PrivacyBudget
}

// AdaptiveDifferentialPrivacyOptions contains the options necessary to
// initialize an AdaptiveDifferentialPrivacy filter.
type AdaptiveDifferentialPrivacyOptions struct {
	// EpsilonDelta is the global privacy budget enforced across all queries. Required.
	EpsilonDelta private.PrivacyBudget
	// DefaultMechanism is used by queries that do not supply their own
	// mechanism. Optional; without it every query must supply one.
	DefaultMechanism private.DPAccessDefinition
}

// NewAdaptiveDifferentialPrivacy returns a new filter with an empty access history.
func NewAdaptiveDifferentialPrivacy(opt *AdaptiveDifferentialPrivacyOptions) (*AdaptiveDifferentialPrivacy, error) {
	if opt == nil {
		opt = &AdaptiveDifferentialPrivacyOptions{}
	}
	if err := checks.CheckEpsilon(opt.EpsilonDelta.Epsilon); err != nil {
		return nil, err
	}
	if err := checks.CheckDelta(opt.EpsilonDelta.Delta); err != nil {
		return nil, err
	}
	if opt.DefaultMechanism != nil {
		if err := checkMechanism(opt.DefaultMechanism); err != nil {
			return nil, err
		}
	}
	return &AdaptiveDifferentialPrivacy{
		epsilonDelta:     opt.EpsilonDelta,
		defaultMechanism: opt.DefaultMechanism,
	}, nil
}

// checkMechanism rejects mechanisms whose declared cost cannot be accounted
// against a budget, such as cost-free identity access.
func checkMechanism(mechanism private.DPAccessDefinition) error {
	cost := mechanism.EpsilonDelta()
	if err := checks.CheckEpsilonStrict(cost.Epsilon); err != nil {
		return fmt.Errorf("cannot access differentially private data with a non differentially private mechanism: %v", err)
	}
	return checks.CheckDelta(cost.Delta)
}

// EpsilonDelta returns the configured global budget.
func (a *AdaptiveDifferentialPrivacy) EpsilonDelta() private.PrivacyBudget {
	return a.epsilonDelta
}

// Apply releases data through the default mechanism, provided the global
// budget admits the expense. It fails with a validation error if no default
// mechanism is configured.
func (a *AdaptiveDifferentialPrivacy) Apply(data any) (any, error) {
	if a.defaultMechanism == nil {
		return nil, fmt.Errorf("no mechanism provided and no default mechanism configured")
	}
	return a.apply(data, a.defaultMechanism)
}

// ApplyMechanism releases data through the supplied mechanism instead of the
// configured default, provided the global budget admits the expense.
func (a *AdaptiveDifferentialPrivacy) ApplyMechanism(data any, mechanism private.DPAccessDefinition) (any, error) {
	if mechanism == nil {
		if a.defaultMechanism == nil {
			return nil, fmt.Errorf("no mechanism provided and no default mechanism configured")
		}
		return a.apply(data, a.defaultMechanism)
	}
	if err := checkMechanism(mechanism); err != nil {
		return nil, err
	}
	return a.apply(data, mechanism)
}

func (a *AdaptiveDifferentialPrivacy) apply(data any, mechanism private.DPAccessDefinition) (any, error) {
	a.accessHistory = append(a.accessHistory, mechanism.EpsilonDelta())

	exceeded := a.basicCompositionExceeded()
	if delta := a.epsilonDelta.Delta; 0 < delta && delta < math.Exp(-1) {
		exceeded = exceeded && a.advancedCompositionExceeded()
	}
	if exceeded {
		// Roll back the tentative entry so the filter's state is exactly as
		// before the call.
		a.accessHistory = a.accessHistory[:len(a.accessHistory)-1]
		return nil, &ExceededPrivacyBudgetError{EpsilonDelta: a.epsilonDelta}
	}
	return mechanism.Apply(data)
}

// basicCompositionExceeded reports whether the running ε and δ sums of the
// access history surpass the global budget (theorem 3.6).
func (a *AdaptiveDifferentialPrivacy) basicCompositionExceeded() bool {
	var epsilonSum, deltaSum float64
	for _, expense := range a.accessHistory {
		epsilonSum += expense.Epsilon
		deltaSum += expense.Delta
	}
	return epsilonSum > a.epsilonDelta.Epsilon || deltaSum > a.epsilonDelta.Delta
}

// advancedCompositionExceeded reports whether the tighter adaptive bound of
// theorem 5.1 is violated. Only meaningful when 0 < δ < e⁻¹.
func (a *AdaptiveDifferentialPrivacy) advancedCompositionExceeded() bool {
	globalEpsilon, globalDelta := a.epsilonDelta.Epsilon, a.epsilonDelta.Delta

	var deltaSum, epsilonSquaredSum, linearTerm float64
	for _, expense := range a.accessHistory {
		deltaSum += expense.Delta
		epsilonSquaredSum += expense.Epsilon * expense.Epsilon
		linearTerm += expense.Epsilon * math.Expm1(expense.Epsilon) * 0.5
	}

	h := globalEpsilon * globalEpsilon / (28.04 * math.Log(1/globalDelta))
	b := epsilonSquaredSum + h
	c := 2 + math.Log(epsilonSquaredSum/h+1)
	d := math.Log(2 / globalDelta)
	k := linearTerm + math.Sqrt(b*c*d)

	return k > globalEpsilon || deltaSum > globalDelta*0.5
}

// historyLength is used by tests to verify the rollback invariant.
func (a *AdaptiveDifferentialPrivacy) historyLength() int {
	return len(a.accessHistory)
}
