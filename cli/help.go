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
	"os"
	"sort"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

type Help struct {
	termWidth     uint
	commandsShort map[string]string
	commands      map[string]string
}

func newHelp() Help {
	h := Help{
		termWidth: 80,
		commandsShort: map[string]string{
			"status":   "show node identity, roster and slot state",
			"counters": "show ranging and telemetry counters",
			"peers":    "list peers and the current slot owner",
			"loglevel": "show or change the log level",
			"exit":     "stop the node and leave the console",
			"help":     "show this help, or help for one command",
		},
		commands: map[string]string{
			"status": "status\n\nShows the node identity, its rank, the roster, " +
				"the current slot owner and the session uptime.",
			"counters": "counters\n\nShows how many ranging attempts were made, how many " +
				"succeeded or failed and what telemetry left the node.",
			"peers": "peers\n\nLists every peer in the roster with its rank. " +
				"A star marks the peer that owns the current slot.",
			"loglevel": "loglevel [trace|debug|info|warn|error|off]\n\nWithout an argument, " +
				"prints the active log level. With one, changes it at runtime.",
			"exit": "exit\n\nStops the ranging session cleanly and leaves the console. " +
				"Ctrl-D does the same.",
			"help": "help [command]\n\nShows the command overview, or the detailed help " +
				"of one command.",
		},
	}
	h.update()
	return h
}

// update adapts the wrap width to the user's terminal.
func (help *Help) update() {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil && width > 0 {
			help.termWidth = uint(width)
		}
	}
}

func (help *Help) output(topic string) string {
	if topic != "" {
		text, ok := help.commands[topic]
		if !ok {
			return fmt.Sprintf("no help for unknown command %q\n", topic)
		}
		return wordwrap.WrapString(text, help.termWidth) + "\n"
	}

	cmds := make([]string, 0, len(help.commandsShort))
	for c := range help.commandsShort {
		cmds = append(cmds, c)
	}
	sort.Strings(cmds)

	out := ""
	for _, c := range cmds {
		out += fmt.Sprintf("%-12s %s\n", c, help.commandsShort[c])
	}
	return out + wordwrap.WrapString("\nFor detailed help per command, use: 'help <command>'\n",
		help.termWidth)
}
