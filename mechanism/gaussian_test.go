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
	"math"
	"testing"

	"github.com/grd/stat"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/private"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/stattestutils"
)

func TestNewGaussianMechanism(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		opt     *GaussianMechanismOptions
		wantErr bool
	}{
		{
			"valid parameters",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 0.1, Delta: 1}},
			false,
		},
		{
			"epsilon of one",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 1, Delta: 1}},
			true,
		},
		{
			"epsilon above one",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 2, Delta: 0.5}},
			true,
		},
		{
			"zero epsilon",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 0, Delta: 0.5}},
			true,
		},
		{
			"zero delta",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 0.5, Delta: 0}},
			true,
		},
		{
			"delta above one",
			&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: private.PrivacyBudget{Epsilon: 0.5, Delta: 1.5}},
			true,
		},
		{
			"zero sensitivity",
			&GaussianMechanismOptions{Sensitivity: 0, EpsilonDelta: private.PrivacyBudget{Epsilon: 0.5, Delta: 0.5}},
			true,
		},
		{"nil options", nil, true},
	} {
		if _, err := NewGaussianMechanism(tc.opt); (err != nil) != tc.wantErr {
			t.Errorf("NewGaussianMechanism: when %s for err got %v, wantErr %t", tc.desc, err, tc.wantErr)
		}
	}
}

func TestGaussianMechanismEpsilonDelta(t *testing.T) {
	budget := private.PrivacyBudget{Epsilon: 0.1, Delta: 1}
	m, err := NewGaussianMechanism(&GaussianMechanismOptions{Sensitivity: 1, EpsilonDelta: budget})
	if err != nil {
		t.Fatalf("NewGaussianMechanism: got error %v", err)
	}
	if got := m.EpsilonDelta(); got != budget {
		t.Errorf("EpsilonDelta: got %+v, want %+v", got, budget)
	}
}

// Checks that noised samples of a constant input have an empirical mean close
// to the input and an empirical variance close to 2·ln(1.25/δ)·(sensitivity/ε)².
func TestGaussianMechanismStatistics(t *testing.T) {
	const (
		numberOfSamples = 100000
		input           = 175.0
		sensitivity     = 1.0
		epsilon         = 0.5
		delta           = 0.5
	)
	m, err := NewGaussianMechanism(&GaussianMechanismOptions{
		Sensitivity:  sensitivity,
		EpsilonDelta: private.PrivacyBudget{Epsilon: epsilon, Delta: delta},
		Src:          rand.Seeded(42),
	})
	if err != nil {
		t.Fatalf("NewGaussianMechanism: got error %v", err)
	}

	constant := make([]float64, numberOfSamples)
	for i := range constant {
		constant[i] = input
	}
	released, err := m.Apply(constant)
	if err != nil {
		t.Fatalf("Apply: got error %v", err)
	}
	noisedSamples := stat.Float64Slice(released.([]float64))

	sigma := math.Sqrt(2*math.Log(1.25/delta)) * sensitivity / epsilon
	wantVariance := sigma * sigma
	sampleMean, sampleVariance := stat.Mean(noisedSamples), stat.Variance(noisedSamples)
	if math.Abs(sampleMean-input) > 0.1 {
		t.Errorf("got mean = %f, want %f (might fail with a very small probability)", sampleMean, input)
	}
	if math.Abs(sampleVariance-wantVariance) > 0.5 {
		t.Errorf("got variance = %f, want %f (might fail with a very small probability)", sampleVariance, wantVariance)
	}
	// The 0.975 tail quantile of Gaussian noise sits 1.96σ above the input.
	wantQuantile := input + 1.96*sigma
	if sampleQuantile := stattestutils.SampleQuantile(released.([]float64), 0.975); math.Abs(sampleQuantile-wantQuantile) > 0.2 {
		t.Errorf("got 0.975 quantile = %f, want %f (might fail with a very small probability)", sampleQuantile, wantQuantile)
	}
}

func TestGaussianMechanismPreservesShape(t *testing.T) {
	m, err := NewGaussianMechanism(&GaussianMechanismOptions{
		Sensitivity:  1,
		EpsilonDelta: private.PrivacyBudget{Epsilon: 0.5, Delta: 0.5},
		Src:          rand.Seeded(1),
	})
	if err != nil {
		t.Fatalf("NewGaussianMechanism: got error %v", err)
	}
	released, err := m.Apply([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Apply: got error %v", err)
	}
	noised, ok := released.([]float64)
	if !ok {
		t.Fatalf("Apply: got %T, want a []float64", released)
	}
	if len(noised) != 3 {
		t.Errorf("Apply: got %d elements, want 3", len(noised))
	}
}
