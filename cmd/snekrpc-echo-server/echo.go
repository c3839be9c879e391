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

package main

import (
	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/service"
)

// echoService hosts two commands: echo, returning its single argument
// unchanged, and countdown, a streaming command yielding n, n-1, ..., 1.
type echoService struct {
	service.Remote
}

func newEchoService() *echoService {
	return &echoService{}
}

func (e *echoService) Name() string { return "echo" }
func (e *echoService) Doc() string  { return "echoes its argument back, and streams a countdown" }

func (e *echoService) Commands() []service.CommandMeta {
	return []service.CommandMeta{e.echoCmd(), e.countdownCmd()}
}

func (e *echoService) Command(name string) (service.CommandMeta, bool) {
	for _, c := range e.Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return service.CommandMeta{}, false
}

func (e *echoService) echoCmd() service.CommandMeta {
	return service.CommandMeta{
		Name: "echo",
		Doc:  "returns its single argument unchanged",
		Params: []service.ParamMeta{
			{Name: "value"},
		},
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			if len(args) > 0 {
				return args[0], nil, nil
			}
			if v, ok := kwargs["value"]; ok {
				return v, nil, nil
			}
			return nil, nil, nil
		},
	}
}

func (e *echoService) countdownCmd() service.CommandMeta {
	return service.CommandMeta{
		Name:  "countdown",
		Doc:   "streams n, n-1, ..., 1",
		IsGen: true,
		Params: []service.ParamMeta{
			{Name: "n"},
		},
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			n := intArg(args, kwargs, "n")

			ch := make(chan message.StreamItem)
			go func() {
				defer close(ch)
				for i := n; i > 0; i-- {
					ch <- message.StreamItem{Value: i}
				}
			}()

			return nil, ch, nil
		},
	}
}

func intArg(args []interface{}, kwargs map[string]interface{}, name string) int {
	var v interface{}
	if len(args) > 0 {
		v = args[0]
	} else if kv, ok := kwargs[name]; ok {
		v = kv
	}

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
