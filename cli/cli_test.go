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

package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/progctx"
	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/session"
	"github.com/uwbprox/rangenet/telemetry"
	"github.com/uwbprox/rangenet/types"
)

func parseOne(t *testing.T, line string) *Command {
	var cmd Command
	assert.NoError(t, ParseBytes([]byte(line), &cmd), "line %q", line)
	return &cmd
}

func TestParseCommands(t *testing.T) {
	assert.NotNil(t, parseOne(t, "status").Status)
	assert.NotNil(t, parseOne(t, "counters").Counters)
	assert.NotNil(t, parseOne(t, "peers").Peers)
	assert.NotNil(t, parseOne(t, "exit").Exit)
	assert.NotNil(t, parseOne(t, "help").Help)

	cmd := parseOne(t, "help counters")
	assert.NotNil(t, cmd.Help)
	assert.Equal(t, "counters", cmd.Help.Topic)

	cmd = parseOne(t, "loglevel debug")
	assert.NotNil(t, cmd.LogLevel)
	assert.Equal(t, "debug", cmd.LogLevel.Level)

	cmd = parseOne(t, "loglevel")
	assert.NotNil(t, cmd.LogLevel)
	assert.Empty(t, cmd.LogLevel.Level)
}

func TestParseRejectsUnknown(t *testing.T) {
	var cmd Command
	assert.Error(t, ParseBytes([]byte("teleport"), &cmd))
	assert.Error(t, ParseBytes([]byte("status extra"), &cmd))
}

func newTestRunner(t *testing.T) (*CmdRunner, *progctx.ProgCtx) {
	cfg := session.DefaultConfig()
	cfg.Node = 'A'
	cfg.Roster = types.Roster{'A', 'B', 'C'}
	assert.NoError(t, cfg.Validate())

	orch := session.NewOrchestrator(cfg, radio.NewSimTransport(), telemetry.NopSender{})
	ctx := progctx.New(context.Background())
	return NewCmdRunner(ctx, orch), ctx
}

func TestRunnerStatus(t *testing.T) {
	cr, _ := newTestRunner(t)
	var out bytes.Buffer
	assert.NoError(t, cr.HandleCommand("status", &out))
	assert.Contains(t, out.String(), "node     A (rank 0)")
	assert.Contains(t, out.String(), "roster   A,B,C")
}

func TestRunnerCounters(t *testing.T) {
	cr, _ := newTestRunner(t)
	var out bytes.Buffer
	assert.NoError(t, cr.HandleCommand("counters", &out))
	assert.Contains(t, out.String(), "attempts      0")
}

func TestRunnerPeers(t *testing.T) {
	cr, _ := newTestRunner(t)
	var out bytes.Buffer
	assert.NoError(t, cr.HandleCommand("peers", &out))
	assert.Contains(t, out.String(), "B (rank 1)")
	assert.Contains(t, out.String(), "C (rank 2)")
	assert.NotContains(t, out.String(), "A (rank 0)")
}

func TestRunnerLogLevel(t *testing.T) {
	cr, _ := newTestRunner(t)
	defer logger.SetLevel(logger.DefaultLevel)

	var out bytes.Buffer
	assert.NoError(t, cr.HandleCommand("loglevel debug", &out))
	assert.Equal(t, logger.DebugLevel, logger.GetLevel())
	assert.Contains(t, out.String(), "debug")

	out.Reset()
	assert.NoError(t, cr.HandleCommand("loglevel", &out))
	assert.Contains(t, out.String(), "debug")
}

func TestRunnerExitCancelsProgram(t *testing.T) {
	cr, ctx := newTestRunner(t)
	var out bytes.Buffer
	err := cr.HandleCommand("exit", &out)
	assert.ErrorIs(t, err, ErrConsoleExit)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("program context was not canceled")
	}
}

func TestRunnerBadCommandKeepsConsole(t *testing.T) {
	cr, _ := newTestRunner(t)
	var out bytes.Buffer
	assert.NoError(t, cr.HandleCommand("launch missiles", &out))
	assert.Contains(t, out.String(), "Error")
}

func TestHelpOutput(t *testing.T) {
	h := newHelp()
	general := h.output("")
	for _, cmd := range []string{"status", "counters", "peers", "loglevel", "exit", "help"} {
		assert.Contains(t, general, cmd)
	}
	assert.Contains(t, h.output("peers"), "owns the current slot")
	assert.Contains(t, h.output("nosuch"), "unknown command")
}
