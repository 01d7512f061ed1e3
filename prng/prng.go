// Copyright (c) 2025-2026, The RangeNet Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// Package prng provides the deterministic random sources of the simulated
// radio environment. Each purpose gets its own seeded generator so that a
// fixed root seed reproduces an identical run.
package prng

import (
	"math/rand"
	"sync"
	"time"
)

var (
	mu                 sync.Mutex
	timingNoiseRandGen *rand.Rand
	frameLossRandGen   *rand.Rand
	clockSkewRandGen   *rand.Rand
)

// Init initializes the prng package, either with a fixed PRNG seed
// (rootSeed != 0) or a time-based seed (rootSeed == 0).
func Init(rootSeed int64) {
	if rootSeed == 0 {
		rootSeed = time.Now().UnixNano()
	}
	root := rand.New(rand.NewSource(rootSeed))
	mu.Lock()
	defer mu.Unlock()
	timingNoiseRandGen = rand.New(rand.NewSource(root.Int63()))
	frameLossRandGen = rand.New(rand.NewSource(root.Int63()))
	clockSkewRandGen = rand.New(rand.NewSource(root.Int63()))
}

func ensureInit() {
	if timingNoiseRandGen == nil {
		Init(0)
	}
}

// TimingNoise returns a timestamp jitter in [-maxTicks, +maxTicks], modelling
// receive timestamp latch noise of the simulated radio.
func TimingNoise(maxTicks int64) int64 {
	mu.Lock()
	defer mu.Unlock()
	ensureInit()
	if maxTicks <= 0 {
		return 0
	}
	return timingNoiseRandGen.Int63n(2*maxTicks+1) - maxTicks
}

// FrameLost returns true with probability p, modelling frame loss on the
// simulated air link.
func FrameLost(p float64) bool {
	mu.Lock()
	defer mu.Unlock()
	ensureInit()
	return p > 0 && frameLossRandGen.Float64() < p
}

// ClockSkewPpm returns a random oscillator skew in [-maxPpm, +maxPpm] parts
// per million, used to give each simulated node an independent clock rate.
func ClockSkewPpm(maxPpm float64) float64 {
	mu.Lock()
	defer mu.Unlock()
	ensureInit()
	return (clockSkewRandGen.Float64()*2 - 1) * maxPpm
}
