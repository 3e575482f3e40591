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

package sensitivity

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/checks"
)

// Query is the function whose sensitivity is being estimated. It is evaluated
// on a resampled dataset and may return a float64 scalar or a []float64.
type Query func(data []float64) any

// SamplingPolicy selects how the sampler builds each pair of datasets.
type SamplingPolicy int

const (
	// SingleRecordSwap draws pairs sharing all but exactly one record. This
	// matches the neighboring-database relation of differential privacy.
	SingleRecordSwap SamplingPolicy = iota
	// IndependentPairs draws two fully independent samples per iteration,
	// yielding a coarser, more conservative distance distribution.
	IndependentPairs
)

// Sensitivity aggregates the observed distance distribution: the empirical
// mean and a high-probability upper bound used to calibrate a noise-adding
// mechanism.
type Sensitivity struct {
	Mean       float64
	UpperBound float64
}

// SensitivitySamplerOptions contains the options necessary to run
// SampleSensitivity.
type SensitivitySamplerOptions struct {
	Query        Query                   // Query function to estimate. Required.
	Norm         Norm                    // Distance between two query outputs. Required.
	Distribution ProbabilityDistribution // Data distribution to resample from. Required.
	SampleSize   int                     // Number of records per resampled dataset. Required.
	Iterations   int                     // Number of dataset pairs drawn. Defaults to 100.
	Quantile     float64                 // Order of the empirical upper bound, within (0, 1]. Defaults to 0.95.
	Policy       SamplingPolicy          // Defaults to SingleRecordSwap.
}

// SampleSensitivity estimates an upper bound on the sensitivity of a query
// function by evaluating it on resampled dataset pairs and reducing each pair
// with the configured norm.
func SampleSensitivity(opt *SensitivitySamplerOptions) (Sensitivity, error) {
	if opt == nil {
		opt = &SensitivitySamplerOptions{}
	}
	if opt.Query == nil {
		return Sensitivity{}, fmt.Errorf("Query must be set")
	}
	if opt.Norm == nil {
		return Sensitivity{}, fmt.Errorf("Norm must be set")
	}
	if opt.Distribution == nil {
		return Sensitivity{}, fmt.Errorf("Distribution must be set")
	}
	if opt.SampleSize <= 0 {
		return Sensitivity{}, fmt.Errorf("SampleSize is %d, must be strictly positive", opt.SampleSize)
	}
	iterations := opt.Iterations
	if iterations == 0 {
		iterations = 100
	}
	if iterations < 0 {
		return Sensitivity{}, fmt.Errorf("Iterations is %d, must be strictly positive", iterations)
	}
	quantile := opt.Quantile
	if quantile == 0 {
		quantile = 0.95
	}
	if err := checks.CheckProbability(quantile, "Quantile"); err != nil {
		return Sensitivity{}, err
	}

	distances := make([]float64, iterations)
	for i := range distances {
		s1, s2, err := samplePair(opt.Distribution, opt.SampleSize, opt.Policy)
		if err != nil {
			return Sensitivity{}, err
		}
		distance, err := opt.Norm.Compute(opt.Query(s1), opt.Query(s2))
		if err != nil {
			return Sensitivity{}, err
		}
		distances[i] = distance
	}

	sort.Float64s(distances)
	return Sensitivity{
		Mean:       stat.Mean(distances, nil),
		UpperBound: stat.Quantile(quantile, stat.Empirical, distances, nil),
	}, nil
}

// samplePair draws two datasets of the given size according to the policy.
func samplePair(distribution ProbabilityDistribution, size int, policy SamplingPolicy) ([]float64, []float64, error) {
	switch policy {
	case IndependentPairs:
		s1, err := distribution.Sample(size)
		if err != nil {
			return nil, nil, err
		}
		s2, err := distribution.Sample(size)
		if err != nil {
			return nil, nil, err
		}
		return s1, s2, nil
	case SingleRecordSwap:
		// Both datasets share size−1 records and differ in the last one.
		var common []float64
		if size > 1 {
			var err error
			common, err = distribution.Sample(size - 1)
			if err != nil {
				return nil, nil, err
			}
		}
		r1, err := distribution.Sample(1)
		if err != nil {
			return nil, nil, err
		}
		r2, err := distribution.Sample(1)
		if err != nil {
			return nil, nil, err
		}
		s1 := append(append([]float64{}, common...), r1[0])
		s2 := append(append([]float64{}, common...), r2[0])
		return s1, s2, nil
	default:
		return nil, nil, fmt.Errorf("unknown sampling policy (%v)", policy)
	}
}
