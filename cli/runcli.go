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
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
)

// ErrConsoleExit ends the console loop cleanly. Handlers return it from the
// exit command.
var ErrConsoleExit = errors.New("console exit")

// Handler executes one console command line.
type Handler interface {
	HandleCommand(cmd string, output io.Writer) error
	GetPrompt() string
}

// Options selects the console's in and out streams; nil fields mean the
// process defaults. Tests substitute pipes here.
type Options struct {
	EchoInput bool
	Stdin     io.ReadCloser
	Stdout    io.Writer
}

// Run reads command lines until EOF, interrupt or an exit command, handing
// each to the handler. Blocks the calling goroutine.
func Run(handler Handler, options *Options) error {
	if options == nil {
		options = &Options{}
	}

	cfg := &readline.Config{
		Prompt:            handler.GetPrompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		FuncFilterInputRune: func(r rune) (rune, bool) {
			// Ctrl-Z would suspend with the terminal in raw mode.
			if r == readline.CharCtrlZ {
				return r, false
			}
			return r, true
		},
	}
	if options.Stdin != nil {
		cfg.Stdin = options.Stdin
	}
	if options.Stdout != nil {
		cfg.Stdout = options.Stdout
	}

	l, err := readline.NewEx(cfg)
	if err != nil {
		return errors.Wrap(err, "open console")
	}
	defer func() { _ = l.Close() }()

	stdout := options.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	for {
		l.SetPrompt(handler.GetPrompt())
		line, err := l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				return nil
			}
			continue // Ctrl-C in midline edit only cancels the present line
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		if options.EchoInput {
			if _, err := io.WriteString(stdout, line+"\n"); err != nil {
				return err
			}
		}

		cmd := strings.TrimSpace(line)
		if len(cmd) == 0 {
			continue
		}
		if err = handler.HandleCommand(cmd, l.Stdout()); err != nil {
			if errors.Is(err, ErrConsoleExit) {
				return nil
			}
			return err
		}
	}
}
