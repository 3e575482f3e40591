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

// Package private contains the entities that own private data and the access
// definitions that mediate every read of it. A DataNode never exposes a raw
// payload; callers read a named property exclusively through the
// AccessDefinition configured for it.
package private

import (
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
)

// PrivacyBudget is an (ε, δ) privacy expense or allowance. It is an immutable
// value; construct it with NewPrivacyBudget so that it is validated exactly once.
type PrivacyBudget struct {
	Epsilon float64
	Delta   float64
}

// NewPrivacyBudget returns the validated (ε, δ) pair. ε must be nonnegative
// and finite, δ must be nonnegative and finite.
func NewPrivacyBudget(epsilon, delta float64) (PrivacyBudget, error) {
	if err := checks.CheckEpsilon(epsilon); err != nil {
		return PrivacyBudget{}, err
	}
	if err := checks.CheckDelta(delta); err != nil {
		return PrivacyBudget{}, err
	}
	return PrivacyBudget{Epsilon: epsilon, Delta: delta}, nil
}

// AccessDefinition describes how a named private value may be read. Apply
// transforms the raw value into the released value; implementations decide
// what, if anything, the caller learns about the input.
type AccessDefinition interface {
	Apply(data any) (any, error)
}

// DPAccessDefinition is an AccessDefinition with a declared differential
// privacy cost. Mechanisms, subsampling wrappers and privacy filters all
// implement it; UnprotectedAccess deliberately does not.
type DPAccessDefinition interface {
	AccessDefinition

	// EpsilonDelta returns the (ε, δ) privacy cost of a single Apply call.
	EpsilonDelta() PrivacyBudget
}

// UnprotectedAccess releases the raw value unchanged. It carries no privacy
// guarantee and no privacy cost, and cannot be used where a differentially
// private mechanism is required.
type UnprotectedAccess struct{}

// Apply returns data unchanged.
func (UnprotectedAccess) Apply(data any) (any, error) {
	return data, nil
}

// LabeledData is the canonical payload a node trains on. Both fields may be
// mutated independently.
type LabeledData struct {
	Data  any
	Label any
}
