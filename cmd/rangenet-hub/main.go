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

// rangenet-hub collects telemetry from ranging nodes over UDP and serves the
// live distance matrix over HTTP.
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uwbprox/rangenet/hub"
	"github.com/uwbprox/rangenet/logger"
	"github.com/uwbprox/rangenet/progctx"
)

type mainArgs struct {
	ListenAddr string
	HTTPAddr   string
	StaleAfter time.Duration
	LogLevel   string
}

var args mainArgs

func parseArgs() {
	flag.StringVar(&args.ListenAddr, "listen", ":9750", "UDP address to receive node telemetry on")
	flag.StringVar(&args.HTTPAddr, "http", ":9751", "HTTP address to serve the API on")
	flag.DurationVar(&args.StaleAfter, "stale", 30*time.Second, "age after which pairs and nodes count as stale")
	flag.StringVar(&args.LogLevel, "log", "info", "log level: trace, debug, info, warn, error, off")
	flag.Parse()
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

	ctx := progctx.New(context.Background())
	handleSignals(ctx)

	ua, err := net.ResolveUDPAddr("udp", args.ListenAddr)
	logger.FatalIfError(err, "invalid -listen address")
	conn, err := net.ListenUDP("udp", ua)
	logger.FatalIfError(err, "opening telemetry socket failed")

	collector := hub.NewCollector(args.StaleAfter)

	ctx.WaitAdd("collector", 1)
	go func() {
		defer ctx.WaitDone("collector")
		if err := collector.Serve(ctx, conn); err != nil && ctx.Err() == nil {
			ctx.Cancel(err)
		}
	}()

	srv := &http.Server{Addr: args.HTTPAddr, Handler: hub.NewRouter(collector)}
	ctx.Defer(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = conn.Close()
	})

	ctx.WaitAdd("httpserver", 1)
	go func() {
		defer ctx.WaitDone("httpserver")
		logger.Infof("hub: telemetry on %s, API on %s", args.ListenAddr, args.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ctx.Cancel(err)
		}
	}()

	<-ctx.Done()
	logger.Debugf("waiting for hub to stop gracefully ...")
	ctx.Wait()
}
