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

// Package checks contains checks for differentially private access definitions.
package checks

import (
	"fmt"
	"math"
)

const (
	epsilonName     = "Epsilon"
	deltaName       = "Delta"
	probabilityName = "Probability"
)

func verifyName(defaultName string, nameSlice []string) (string, error) {
	var name string
	switch len(nameSlice) {
	case 0:
		name = defaultName
	case 1:
		name = nameSlice[0]
	default:
		return "", fmt.Errorf("This should never happen. There should be 0 or 1 'name' parameter, got %d", len(nameSlice))
	}
	return name, nil
}

// CheckEpsilonStrict returns an error if ε is nonpositive or +∞.
func CheckEpsilonStrict(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon <= 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be strictly positive and finite", epsName, epsilon)
	}
	return nil
}

// CheckEpsilon returns an error if ε is strictly negative or +∞.
func CheckEpsilon(epsilon float64, name ...string) error {
	epsName, err := verifyName(epsilonName, name)
	if err != nil {
		return err
	}
	if epsilon < 0 || math.IsInf(epsilon, 0) || math.IsNaN(epsilon) {
		return fmt.Errorf("%s is %f, must be nonnegative and finite", epsName, epsilon)
	}
	return nil
}

// CheckDelta returns an error if δ is negative or not finite.
func CheckDelta(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%s is %e, cannot be NaN", delName, delta)
	}
	if math.IsInf(delta, 0) {
		return fmt.Errorf("%s is %e, must be finite", delName, delta)
	}
	if delta < 0 {
		return fmt.Errorf("%s is %e, cannot be negative", delName, delta)
	}
	return nil
}

// CheckDeltaStrict returns an error if δ is nonpositive or greater than or equal to 1.
func CheckDeltaStrict(delta float64, name ...string) error {
	delName, err := verifyName(deltaName, name)
	if err != nil {
		return err
	}
	if math.IsNaN(delta) {
		return fmt.Errorf("%s is %e, cannot be NaN", delName, delta)
	}
	if delta <= 0 {
		return fmt.Errorf("%s is %e, must be strictly positive", delName, delta)
	}
	if delta >= 1 {
		return fmt.Errorf("%s is %e, must be strictly less than 1", delName, delta)
	}
	return nil
}

// CheckProbability returns an error if p is not contained in [0, 1].
func CheckProbability(p float64, name ...string) error {
	probName, err := verifyName(probabilityName, name)
	if err != nil {
		return err
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return fmt.Errorf("%s is %f, must be within [0, 1]", probName, p)
	}
	return nil
}

// CheckProbabilityStrict returns an error if p is not contained in the open
// interval (0, 1). Release probabilities of exactly 0 or 1 make a randomized
// response deterministic.
func CheckProbabilityStrict(p float64, name ...string) error {
	probName, err := verifyName(probabilityName, name)
	if err != nil {
		return err
	}
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return fmt.Errorf("%s is %f, must be within (0, 1)", probName, p)
	}
	return nil
}

// CheckSensitivity returns an error if sensitivity is nonpositive or +∞.
func CheckSensitivity(sensitivity float64) error {
	if sensitivity <= 0 || math.IsInf(sensitivity, 0) || math.IsNaN(sensitivity) {
		return fmt.Errorf("Sensitivity is %f, must be strictly positive and finite", sensitivity)
	}
	return nil
}

// CheckSampleSize returns an error if sampleSize is nonpositive or exceeds the
// first-axis extent of dataSize.
func CheckSampleSize(sampleSize int, dataSize []int) error {
	if len(dataSize) == 0 {
		return fmt.Errorf("DataSize must have at least one axis")
	}
	for i, extent := range dataSize {
		if extent <= 0 {
			return fmt.Errorf("DataSize axis %d is %d, must be strictly positive", i, extent)
		}
	}
	if sampleSize <= 0 {
		return fmt.Errorf("SampleSize is %d, must be strictly positive", sampleSize)
	}
	if sampleSize > dataSize[0] {
		return fmt.Errorf("SampleSize is %d, must not exceed the first axis of the data size %v", sampleSize, dataSize)
	}
	return nil
}

// CheckBinaryValue returns an error if x is neither 0 nor 1.
func CheckBinaryValue(x float64) error {
	if x != 0 && x != 1 {
		return fmt.Errorf("Input value is %f, must be binary (0 or 1)", x)
	}
	return nil
}

// CheckBinaryValues returns an error if any element of xs is neither 0 nor 1.
func CheckBinaryValues(xs []float64) error {
	for i, x := range xs {
		if x != 0 && x != 1 {
			return fmt.Errorf("Input element %d is %f, must be binary (0 or 1)", i, x)
		}
	}
	return nil
}
