/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Command snekrpc-echo-server is a minimal server binary hosting a single
// "echo" service, used to exercise every transport/codec combination by
// hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/nabbar/snekrpc/config"
	"github.com/nabbar/snekrpc/internal/rpcmetrics"
	"github.com/nabbar/snekrpc/server"
)

func main() {
	var (
		listen     string
		cfgFile    string
		metricsOff bool
	)

	flag.StringVar(&listen, "listen", "tcp://127.0.0.1:4242", "address to listen on (tcp://, unix://, http://)")
	flag.StringVar(&cfgFile, "config", "", "optional viper config file overriding -listen")
	flag.BoolVar(&metricsOff, "no-metrics", false, "disable prometheus instrumentation")
	flag.Parse()

	v := viper.New()
	v.SetDefault("rpc.server.listen", listen)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadServer(v, "rpc.server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading server config: %v\n", err)
		os.Exit(1)
	}

	var metrics *rpcmetrics.Metrics
	if !metricsOff {
		metrics = rpcmetrics.New("snekrpc_echo")
	}

	srv, err := server.New(cfg, "echo-server/1.0.0", metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building server: %v\n", err)
		os.Exit(1)
	}
	srv.AddService(newEchoService())

	if err := srv.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
	srv.Join()
}
