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
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/progctx"
	"github.com/uwbprox/rangenet/session"
)

// CmdRunner executes parsed console commands against the running session.
type CmdRunner struct {
	ctx  *progctx.ProgCtx
	orch *session.Orchestrator
	help Help
}

func NewCmdRunner(ctx *progctx.ProgCtx, orch *session.Orchestrator) *CmdRunner {
	return &CmdRunner{
		ctx:  ctx,
		orch: orch,
		help: newHelp(),
	}
}

func (cr *CmdRunner) GetPrompt() string {
	return cr.orch.Node().String() + "> "
}

func (cr *CmdRunner) HandleCommand(line string, output io.Writer) error {
	var cmd Command
	if err := ParseBytes([]byte(line), &cmd); err != nil {
		_, _ = fmt.Fprintf(output, "Error: %v\n", err)
		return nil // a bad command line never ends the console
	}

	switch {
	case cmd.Status != nil:
		cr.executeStatus(output)
	case cmd.Counters != nil:
		cr.executeCounters(output)
	case cmd.Peers != nil:
		cr.executePeers(output)
	case cmd.LogLevel != nil:
		cr.executeLogLevel(output, cmd.LogLevel)
	case cmd.Help != nil:
		_, _ = fmt.Fprint(output, cr.help.output(cmd.Help.Topic))
	case cmd.Exit != nil:
		cr.ctx.Cancel("exit")
		return ErrConsoleExit
	default:
		_, _ = fmt.Fprintf(output, "Error: unknown command\n")
	}
	return nil
}

func (cr *CmdRunner) executeStatus(output io.Writer) {
	sched := cr.orch.Scheduler()
	_, _ = fmt.Fprintf(output, "node     %s (rank %d)\n", cr.orch.Node(), sched.Rank())
	_, _ = fmt.Fprintf(output, "roster   %s\n", sched.Roster())
	_, _ = fmt.Fprintf(output, "slot     owner=%s own=%v cycle=%v\n",
		sched.SlotOwner(), sched.IsOwnSlot(), sched.CycleLength())
	_, _ = fmt.Fprintf(output, "uptime   %v\n", cr.orch.Uptime().Round(1e9))
}

func (cr *CmdRunner) executeCounters(output io.Writer) {
	c := cr.orch.Counters()
	_, _ = fmt.Fprintf(output, "attempts      %d\n", c.Attempts)
	_, _ = fmt.Fprintf(output, "successes     %d\n", c.Successes)
	_, _ = fmt.Fprintf(output, "failures      %d\n", c.Failures)
	_, _ = fmt.Fprintf(output, "timeouts      %d\n", c.Timeouts)
	_, _ = fmt.Fprintf(output, "violations    %d\n", c.Violations)
	_, _ = fmt.Fprintf(output, "served        %d\n", c.Served)
	_, _ = fmt.Fprintf(output, "sent          %d\n", c.Sent)
	_, _ = fmt.Fprintf(output, "discarded     %d\n", c.Discarded)
	_, _ = fmt.Fprintf(output, "send failures %d\n", c.SendFailures)
}

func (cr *CmdRunner) executePeers(output io.Writer) {
	sched := cr.orch.Scheduler()
	owner := sched.SlotOwner()
	for _, peer := range sched.Roster().Peers(sched.Self()) {
		marker := " "
		if peer == owner {
			marker = "*"
		}
		_, _ = fmt.Fprintf(output, "%s %s (rank %d)\n", marker, peer, sched.Roster().RankOf(peer))
	}
}

func (cr *CmdRunner) executeLogLevel(output io.Writer, cmd *LogLevelCmd) {
	if cmd.Level == "" {
		_, _ = fmt.Fprintf(output, "%s\n", logger.GetLevel())
		return
	}
	lv, err := logger.ParseLevelString(cmd.Level)
	if err != nil {
		_, _ = fmt.Fprintf(output, "Error: %v\n", errors.Wrap(err, "loglevel"))
		return
	}
	logger.SetLevel(lv)
	_, _ = fmt.Fprintf(output, "%s\n", lv)
}
