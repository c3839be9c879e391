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

// Command snekrpc-echo-client dials a snekrpc-echo-server and calls either
// its echo or countdown command, printing whatever comes back.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"

	"github.com/nabbar/snekrpc/client"
	"github.com/nabbar/snekrpc/config"
	"github.com/nabbar/snekrpc/logger"
)

func main() {
	var (
		dial        string
		cfgFile     string
		cmd         string
		versionWant string
	)

	flag.StringVar(&dial, "dial", "tcp://127.0.0.1:4242", "address to dial (tcp://, unix://, http://)")
	flag.StringVar(&cfgFile, "config", "", "optional viper config file overriding -dial")
	flag.StringVar(&cmd, "cmd", "echo", "command to run: echo <value> | countdown <n>")
	flag.StringVar(&versionWant, "require-version", "", "if set, refuse to call unless the server version satisfies this constraint")
	flag.Parse()

	v := viper.New()
	v.SetDefault("rpc.client.dial", dial)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadClient(v, "rpc.client")
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading client config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(context.Background())

	c, err := client.New(cfg, log, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building client: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if versionWant != "" {
		ok, vErr := c.CheckVersion(versionWant)
		if vErr != nil {
			fmt.Fprintf(os.Stderr, "checking server version: %v\n", vErr)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "server version does not satisfy %q\n", versionWant)
			os.Exit(1)
		}
	}

	p, err := c.Service("echo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "binding echo service: %v\n", err)
		os.Exit(1)
	}

	rest := flag.Args()

	switch cmd {
	case "echo":
		var arg interface{}
		if len(rest) > 0 {
			arg = rest[0]
		}
		res, cErr := p.Call("echo", []interface{}{arg}, nil, nil)
		if cErr != nil {
			fmt.Fprintf(os.Stderr, "echo: %v\n", cErr)
			os.Exit(1)
		}
		fmt.Println(res)

	case "countdown":
		n := 5
		if len(rest) > 0 {
			if parsed, pErr := strconv.Atoi(rest[0]); pErr == nil {
				n = parsed
			}
		}
		ch, cErr := p.CallStream("countdown", []interface{}{n}, nil, nil)
		if cErr != nil {
			fmt.Fprintf(os.Stderr, "countdown: %v\n", cErr)
			os.Exit(1)
		}
		for item := range ch {
			if item.Err != nil {
				fmt.Fprintf(os.Stderr, "countdown: %v\n", item.Err)
				os.Exit(1)
			}
			fmt.Println(item.Value)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q (want echo or countdown)\n", cmd)
		os.Exit(1)
	}
}
