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

// rangenet-node runs one ranging node (or, in world mode, a whole roster of
// in-process nodes over a simulated air link) and an operator console.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/uwbprox/rangenet/cli"
	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/pcap"
	"github.com/uwbprox/rangenet/prng"
	"github.com/uwbprox/rangenet/progctx"
	"github.com/uwbprox/rangenet/radio"
	"github.com/uwbprox/rangenet/session"
	"github.com/uwbprox/rangenet/telemetry"
	"github.com/uwbprox/rangenet/types"
)

type mainArgs struct {
	ConfigFile string
	Node       string
	Roster     string
	HubAddr    string
	LogLevel   string
	Synthetic  bool
	World      bool
	Radius     float64
	Seed       int64
	PcapFile   string
	NoConsole  bool
}

var args mainArgs

func parseArgs() {
	flag.StringVar(&args.ConfigFile, "config", "", "YAML config file")
	flag.StringVar(&args.Node, "node", "", "node identity (single letter A-Z), overrides config")
	flag.StringVar(&args.Roster, "roster", "", "roster such as \"A,B,C\", overrides config")
	flag.StringVar(&args.HubAddr, "hub", "", "telemetry hub address host:port, overrides config")
	flag.StringVar(&args.LogLevel, "log", "info", "log level: trace, debug, info, warn, error, off")
	flag.BoolVar(&args.Synthetic, "synthetic", false, "substitute synthetic distances for failed attempts")
	flag.BoolVar(&args.World, "world", false, "run the whole roster in-process over a simulated air link")
	flag.Float64Var(&args.Radius, "radius", 5.0, "world mode: radius in meters of the circle nodes stand on")
	flag.Int64Var(&args.Seed, "seed", 0, "world mode: random seed for clock skew and timing noise (0 = time based)")
	flag.StringVar(&args.PcapFile, "pcap", "", "world mode: write all on-air frames to this PCAP file")
	flag.BoolVar(&args.NoConsole, "no-console", false, "run without the operator console")
	flag.Parse()
}

func loadConfig() session.Config {
	var cfg session.Config
	var err error
	if args.ConfigFile != "" {
		cfg, err = session.LoadConfig(args.ConfigFile)
		logger.FatalIfError(err, "loading config failed")
	} else {
		cfg = session.DefaultConfig()
	}

	if args.Node != "" {
		cfg.Node, err = types.ParseNodeId(args.Node)
		logger.FatalIfError(err, "invalid -node")
	}
	if args.Roster != "" {
		cfg.Roster, err = types.ParseRoster(args.Roster)
		logger.FatalIfError(err, "invalid -roster")
	}
	if args.HubAddr != "" {
		cfg.HubAddr = args.HubAddr
	}
	if args.Synthetic {
		cfg.Synthetic.Enabled = true
	}

	logger.FatalIfError(cfg.Validate(), "invalid config")
	return cfg
}

func newSender(cfg session.Config) telemetry.Sender {
	if cfg.HubAddr == "" {
		logger.Infof("no hub address configured, telemetry disabled")
		return telemetry.NopSender{}
	}
	tel, err := telemetry.NewUDPSender(cfg.Node, cfg.HubAddr)
	logger.FatalIfError(err, "opening telemetry sender failed")
	return tel
}

// worldTransports places the whole roster on a circle and attaches every
// node to one shared air link, each with its own clock offset and skew.
func worldTransports(ctx *progctx.ProgCtx, roster types.Roster, radius float64) map[types.NodeId]radio.Transport {
	prng.Init(args.Seed)

	link := radio.NewAirLink(radio.DefaultAirLinkConfig())
	if args.PcapFile != "" {
		capture, err := pcap.NewFile(args.PcapFile)
		logger.FatalIfError(err, "opening capture file failed")
		link.SetCapture(capture)
		ctx.Defer(func() { _ = capture.Close() })
		logger.Infof("world: capturing frames to %s", args.PcapFile)
	}
	transports := make(map[types.NodeId]radio.Transport, len(roster))
	for i, id := range roster {
		angle := 2 * math.Pi * float64(i) / float64(len(roster))
		pos := radio.Position{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
		offset := radio.Ticks(uint64(id) * 1e9)
		transports[id] = link.Attach(id, pos, offset, prng.ClockSkewPpm(20))
		logger.Infof("world: node %s at (%.2f, %.2f)", id, pos.X, pos.Y)
	}
	return transports
}

func startOrchestrator(ctx *progctx.ProgCtx, o *session.Orchestrator) {
	name := "session-" + o.Node().String()
	ctx.WaitAdd(name, 1)
	go func() {
		defer ctx.WaitDone(name)
		_ = o.Run(ctx)
	}()
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT, syscall.SIGHUP)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer ctx.WaitDone("handleSignals")
		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func main() {
	parseArgs()
	lv, err := logger.ParseLevelString(args.LogLevel)
	logger.FatalIfError(err, "invalid -log")
	logger.SetLevel(lv)

	cfg := loadConfig()
	ctx := progctx.New(context.Background())
	handleSignals(ctx)

	var console *session.Orchestrator
	if args.World {
		transports := worldTransports(ctx, cfg.Roster, args.Radius)
		for _, id := range cfg.Roster {
			nodeCfg := cfg
			nodeCfg.Node = id
			o := session.NewOrchestrator(nodeCfg, transports[id], newSender(nodeCfg))
			startOrchestrator(ctx, o)
			if id == cfg.Node {
				console = o
			}
		}
		logger.Infof("world mode: %d nodes ranging over a shared air link", len(cfg.Roster))
	} else {
		// Without hardware attached the sim transport never hears anyone;
		// synthetic mode keeps the telemetry stream alive regardless.
		if !cfg.Synthetic.Enabled {
			logger.Warnf("sim transport without synthetic mode will produce no distances")
		}
		console = session.NewOrchestrator(cfg, radio.NewSimTransport(), newSender(cfg))
		startOrchestrator(ctx, console)
	}

	if args.NoConsole {
		<-ctx.Done()
	} else {
		rt := cli.NewCmdRunner(ctx, console)
		err := cli.Run(rt, nil)
		ctx.Cancel(err)
	}

	logger.Debugf("waiting for node to stop gracefully ...")
	ctx.Wait()
}
