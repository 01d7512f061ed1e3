// Copyright (c) 2026, The RangeNet Authors.
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

// Package progctx ties the long-running goroutines of a program (ranging
// loop, console, collectors) to one cancellable context so shutdown drains
// them all.
package progctx

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/logger"
)

// ProgCtx is the lifetime of a program. Goroutines register by name so a
// hung shutdown names the routine still running.
type ProgCtx struct {
	context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	mu       sync.Mutex
	routines map[string]int
	deferred []func()
}

// New derives a program context from parent.
func New(parent context.Context) *ProgCtx {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &ProgCtx{
		Context:  ctx,
		cancel:   cancel,
		routines: map[string]int{},
	}
}

// Cancel ends the program with the given cause. Only the first call has an
// effect; it also runs the deferred cleanups in registration order.
func (ctx *ProgCtx) Cancel(cause interface{}) {
	if ctx.Err() != nil {
		return
	}
	ctx.cancel()

	if e, ok := cause.(error); ok && e != nil {
		logger.Errorf("program exit: %v", e)
	} else {
		logger.Infof("program exit: %v", cause)
	}

	ctx.mu.Lock()
	deferred := ctx.deferred
	ctx.deferred = nil
	ctx.mu.Unlock()
	for _, f := range deferred {
		f()
	}
}

// Defer registers a cleanup to run when Cancel fires. Registration after
// cancellation is a programming error.
func (ctx *ProgCtx) Defer(f func()) {
	if ctx.Err() != nil {
		panic(errors.New("Defer after program context is done"))
	}
	ctx.mu.Lock()
	ctx.deferred = append(ctx.deferred, f)
	ctx.mu.Unlock()
}

// WaitAdd registers delta goroutines under name.
func (ctx *ProgCtx) WaitAdd(name string, delta int) {
	ctx.mu.Lock()
	ctx.routines[name] += delta
	ctx.mu.Unlock()
	ctx.wg.Add(delta)
}

// WaitDone marks one goroutine under name as finished.
func (ctx *ProgCtx) WaitDone(name string) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.routines[name] <= 0 {
		logger.Panicf("routine %s is not running, WaitDone without WaitAdd", name)
	}
	ctx.routines[name]--
	ctx.wg.Done()
}

// WaitCount is the number of registered goroutines still running.
func (ctx *ProgCtx) WaitCount() int {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	total := 0
	for _, c := range ctx.routines {
		total += c
	}
	return total
}

// Wait blocks until every registered goroutine has finished.
func (ctx *ProgCtx) Wait() {
	ctx.mu.Lock()
	logger.Debugf("waiting for routines: %v", ctx.routines)
	ctx.mu.Unlock()
	ctx.wg.Wait()
}
