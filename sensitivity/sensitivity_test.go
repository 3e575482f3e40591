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
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
)

func TestL1SensitivityNorm(t *testing.T) {
	for _, tc := range []struct {
		desc    string
		x1      any
		x2      any
		want    float64
		wantErr bool
	}{
		{"scalars", 3.0, 1.5, 1.5, false},
		{"scalars in reverse order", 1.5, 3.0, 1.5, false},
		{"vectors", []float64{1, 2, 3}, []float64{2, 0, 3}, 3.0, false},
		{"identical vectors", []float64{1, 2}, []float64{1, 2}, 0.0, false},
		{"mismatched lengths", []float64{1, 2}, []float64{1}, 0, true},
		{"mismatched types", 1.0, []float64{1}, 0, true},
		{"unsupported type", "secret", "secret", 0, true},
	} {
		got, err := L1SensitivityNorm{}.Compute(tc.x1, tc.x2)
		if (err != nil) != tc.wantErr {
			t.Errorf("Compute: when %s for err got %v, wantErr %t", tc.desc, err, tc.wantErr)
		}
		if err == nil && math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Compute: when %s got %f, want %f", tc.desc, got, tc.want)
		}
	}
}

func TestNormalDistributionSample(t *testing.T) {
	d := NormalDistribution{Mean: 5, StdDev: 0.1, Src: rand.Seeded(42)}
	sample, err := d.Sample(10000)
	if err != nil {
		t.Fatalf("Sample: got error %v", err)
	}
	if len(sample) != 10000 {
		t.Fatalf("Sample: got %d records, want 10000", len(sample))
	}
	if mean := stat.Mean(sample, nil); math.Abs(mean-5) > 0.01 {
		t.Errorf("got mean = %f, want approximately 5 (might fail with a very small probability)", mean)
	}

	if _, err := d.Sample(0); err == nil {
		t.Errorf("Sample: expected an error for a nonpositive size, got nil")
	}
	if _, err := (NormalDistribution{Mean: 0, StdDev: 0}).Sample(1); err == nil {
		t.Errorf("Sample: expected an error for a nonpositive standard deviation, got nil")
	}
}

func TestEmpiricalDistributionSample(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	withReplacement := EmpiricalDistribution{Data: data, Replace: true, Src: rand.Seeded(42)}
	sample, err := withReplacement.Sample(50)
	if err != nil {
		t.Fatalf("Sample: got error %v", err)
	}
	for _, v := range sample {
		if v < 1 || v > 5 || v != math.Trunc(v) {
			t.Errorf("Sample: got %v, want a member of the dataset", v)
		}
	}

	withoutReplacement := EmpiricalDistribution{Data: data, Src: rand.Seeded(42)}
	sample, err = withoutReplacement.Sample(5)
	if err != nil {
		t.Fatalf("Sample: got error %v", err)
	}
	seen := make(map[float64]bool)
	for _, v := range sample {
		if seen[v] {
			t.Errorf("Sample: record %v drawn twice without replacement", v)
		}
		seen[v] = true
	}
	// The dataset bounds the sample size without replacement.
	if _, err := withoutReplacement.Sample(6); err == nil {
		t.Errorf("Sample: expected an error for a sample larger than the dataset, got nil")
	}
}

func TestSampleSensitivityValidation(t *testing.T) {
	meanQuery := func(data []float64) any { return stat.Mean(data, nil) }
	norm := L1SensitivityNorm{}
	distribution := NormalDistribution{Mean: 0, StdDev: 1, Src: rand.Seeded(42)}
	for _, tc := range []struct {
		desc    string
		opt     *SensitivitySamplerOptions
		wantErr bool
	}{
		{
			"valid options",
			&SensitivitySamplerOptions{Query: meanQuery, Norm: norm, Distribution: distribution, SampleSize: 10},
			false,
		},
		{
			"missing query",
			&SensitivitySamplerOptions{Norm: norm, Distribution: distribution, SampleSize: 10},
			true,
		},
		{
			"missing norm",
			&SensitivitySamplerOptions{Query: meanQuery, Distribution: distribution, SampleSize: 10},
			true,
		},
		{
			"missing distribution",
			&SensitivitySamplerOptions{Query: meanQuery, Norm: norm, SampleSize: 10},
			true,
		},
		{
			"zero sample size",
			&SensitivitySamplerOptions{Query: meanQuery, Norm: norm, Distribution: distribution},
			true,
		},
		{
			"quantile above one",
			&SensitivitySamplerOptions{Query: meanQuery, Norm: norm, Distribution: distribution, SampleSize: 10, Quantile: 1.5},
			true,
		},
		{"nil options", nil, true},
	} {
		if _, err := SampleSensitivity(tc.opt); (err != nil) != tc.wantErr {
			t.Errorf("SampleSensitivity: when %s for err got %v, wantErr %t", tc.desc, err, tc.wantErr)
		}
	}
}

// The mean over n records changes by at most |r1 − r2|/n under a single
// record swap, so the estimated sensitivity must be small and the upper bound
// must dominate the mean.
func TestSampleSensitivityOfMeanQuery(t *testing.T) {
	const sampleSize = 100
	estimate, err := SampleSensitivity(&SensitivitySamplerOptions{
		Query:        func(data []float64) any { return stat.Mean(data, nil) },
		Norm:         L1SensitivityNorm{},
		Distribution: NormalDistribution{Mean: 0, StdDev: 1, Src: rand.Seeded(42)},
		SampleSize:   sampleSize,
		Iterations:   500,
	})
	if err != nil {
		t.Fatalf("SampleSensitivity: got error %v", err)
	}
	if estimate.Mean <= 0 {
		t.Errorf("got mean sensitivity %f, want a strictly positive estimate", estimate.Mean)
	}
	if estimate.UpperBound < estimate.Mean {
		t.Errorf("got upper bound %f below the mean %f", estimate.UpperBound, estimate.Mean)
	}
	// E|X − Y|/n for X, Y ~ N(0, 1) is about 1.13/n.
	if estimate.Mean > 0.05 {
		t.Errorf("got mean sensitivity %f, want a small value for a mean query over %d records (might fail with a very small probability)", estimate.Mean, sampleSize)
	}
	if estimate.UpperBound > 0.2 {
		t.Errorf("got upper bound %f, want a small value for a mean query over %d records (might fail with a very small probability)", estimate.UpperBound, sampleSize)
	}
}

func TestSampleSensitivityIndependentPairsIsCoarser(t *testing.T) {
	options := func(policy SamplingPolicy, seed uint64) *SensitivitySamplerOptions {
		return &SensitivitySamplerOptions{
			Query:        func(data []float64) any { return stat.Mean(data, nil) },
			Norm:         L1SensitivityNorm{},
			Distribution: NormalDistribution{Mean: 0, StdDev: 1, Src: rand.Seeded(seed)},
			SampleSize:   100,
			Iterations:   500,
			Policy:       policy,
		}
	}
	swap, err := SampleSensitivity(options(SingleRecordSwap, 42))
	if err != nil {
		t.Fatalf("SampleSensitivity(SingleRecordSwap): got error %v", err)
	}
	independent, err := SampleSensitivity(options(IndependentPairs, 42))
	if err != nil {
		t.Fatalf("SampleSensitivity(IndependentPairs): got error %v", err)
	}
	// Fully independent pairs differ in every record, so their distance
	// distribution dominates the single-swap one on average.
	if independent.Mean <= swap.Mean {
		t.Errorf("got independent-pairs mean %f not above single-swap mean %f (might fail with a very small probability)", independent.Mean, swap.Mean)
	}
}

func TestSampleSensitivityPropagatesDistributionFailure(t *testing.T) {
	_, err := SampleSensitivity(&SensitivitySamplerOptions{
		Query:        func(data []float64) any { return stat.Mean(data, nil) },
		Norm:         L1SensitivityNorm{},
		Distribution: EmpiricalDistribution{Data: []float64{1, 2, 3}, Src: rand.Seeded(42)},
		SampleSize:   51,
	})
	if err == nil {
		t.Errorf("SampleSensitivity: expected an error when the distribution cannot produce the sample size, got nil")
	}
}

func TestSampleSensitivityVectorQuery(t *testing.T) {
	// A query returning the per-half means exercises the vector branch of the norm.
	estimate, err := SampleSensitivity(&SensitivitySamplerOptions{
		Query: func(data []float64) any {
			half := len(data) / 2
			return []float64{stat.Mean(data[:half], nil), stat.Mean(data[half:], nil)}
		},
		Norm:         L1SensitivityNorm{},
		Distribution: NormalDistribution{Mean: 0, StdDev: 1, Src: rand.Seeded(42)},
		SampleSize:   50,
		Iterations:   200,
	})
	if err != nil {
		t.Fatalf("SampleSensitivity: got error %v", err)
	}
	if estimate.Mean <= 0 || estimate.UpperBound < estimate.Mean {
		t.Errorf("got %+v, want a positive mean dominated by the upper bound", estimate)
	}
}
