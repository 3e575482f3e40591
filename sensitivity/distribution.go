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

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Fussiji/Sherpa.ai-Federated-Learning-Framework/rand"
)

// ProbabilityDistribution models the data distribution the sensitivity
// sampler resamples from. Sample fails if the distribution cannot produce the
// requested number of records.
type ProbabilityDistribution interface {
	Sample(size int) ([]float64, error)
}

// NormalDistribution samples records from a Gaussian with the given mean and
// standard deviation.
type NormalDistribution struct {
	Mean   float64
	StdDev float64
	Src    exprand.Source // Defaults to the secure source.
}

// Sample returns size independent draws.
func (d NormalDistribution) Sample(size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("Sample size is %d, must be strictly positive", size)
	}
	if d.StdDev <= 0 {
		return nil, fmt.Errorf("StdDev is %f, must be strictly positive", d.StdDev)
	}
	src := d.Src
	if src == nil {
		src = rand.Secure()
	}
	dist := distuv.Normal{Mu: d.Mean, Sigma: d.StdDev, Src: src}
	sample := make([]float64, size)
	for i := range sample {
		sample[i] = dist.Rand()
	}
	return sample, nil
}

// EmpiricalDistribution samples records from a fixed dataset, with or without
// replacement. Without replacement it cannot produce samples larger than the
// dataset.
type EmpiricalDistribution struct {
	Data    []float64
	Replace bool
	Src     exprand.Source // Defaults to the secure source.
}

// Sample returns size records drawn from the dataset.
func (d EmpiricalDistribution) Sample(size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("Sample size is %d, must be strictly positive", size)
	}
	if !d.Replace && size > len(d.Data) {
		return nil, fmt.Errorf("Sample size is %d, but the dataset only has %d records", size, len(d.Data))
	}
	src := d.Src
	if src == nil {
		src = rand.Secure()
	}
	rnd := exprand.New(src)
	sample := make([]float64, size)
	if d.Replace {
		for i := range sample {
			sample[i] = d.Data[rnd.Intn(len(d.Data))]
		}
		return sample, nil
	}
	for i, idx := range rnd.Perm(len(d.Data))[:size] {
		sample[i] = d.Data[idx]
	}
	return sample, nil
}
