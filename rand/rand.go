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

// Package rand provides randomness sources for the privacy mechanisms and
// samplers. The default source draws from crypto/rand; deterministic seeded
// sources are available for tests. Both satisfy golang.org/x/exp/rand.Source,
// which is the source type consumed by gonum's distributions.
package rand

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	log "github.com/golang/glog"
	exprand "golang.org/x/exp/rand"
)

var (
	randBufLock sync.Mutex
	randBuf     io.Reader = bufio.NewReaderSize(cryptorand.Reader, 65536)

	secureSrc = &secureSource{}
)

// secureSource is a cryptographically secure implementation of exprand.Source.
// It is safe for concurrent use.
type secureSource struct{}

// Uint64 returns a uniformly random uint64.
func (s *secureSource) Uint64() uint64 {
	var r [8]uint8
	randBufLock.Lock()
	defer randBufLock.Unlock()
	if _, err := io.ReadFull(randBuf, r[:]); err != nil {
		log.Fatalf("out of randomness, should never happen: %v", err)
	}
	return binary.LittleEndian.Uint64(r[:])
}

// Seed is a no-op.
func (s *secureSource) Seed(_ uint64) {}

// Secure returns the process-wide cryptographically secure source. It is the
// source used by every mechanism whose options do not specify one.
func Secure() exprand.Source {
	return secureSrc
}

// Seeded returns a deterministic source for the given seed. It is intended
// for tests; it must not be used to release production data.
func Seeded(seed uint64) exprand.Source {
	return exprand.NewSource(seed)
}

// Uniform returns a float64 drawn uniformly from [0, 1) using the secure source.
func Uniform() float64 {
	return exprand.New(secureSrc).Float64()
}

// Boolean returns true or false with equal probability using the secure source.
func Boolean() bool {
	return secureSrc.Uint64()&1 == 1
}
