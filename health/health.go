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

// Package health implements the built-in heartbeat/ping service, grounded
// on service/health.py's HealthService: ping streams count-1 empty values
// spaced interval apart so a client can hold a connection open and confirm
// it is still alive, looping forever when count <= 0.
package health

import (
	"time"

	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/service"
)

// ServiceName is the fixed registry name the health service is mounted
// under, matching HealthService(Service, name='health').
const ServiceName = "health"

const (
	DefaultCount    = 1
	DefaultInterval = time.Second
)

// Service exposes a single streaming ping command for monitoring.
type Service struct {
	service.Remote
}

func New() *Service { return &Service{} }

func (s *Service) Name() string { return ServiceName }
func (s *Service) Doc() string  { return "heartbeat/ping commands for monitoring" }

func (s *Service) Commands() []service.CommandMeta {
	return []service.CommandMeta{s.pingCmd()}
}

func (s *Service) Command(name string) (service.CommandMeta, bool) {
	for _, c := range s.Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return service.CommandMeta{}, false
}

func (s *Service) pingCmd() service.CommandMeta {
	return service.CommandMeta{
		Name:  "ping",
		Doc:   "yield count-1 empty values, interval apart, to keep a connection alive",
		IsGen: true,
		Params: []service.ParamMeta{
			{Name: "count", Hint: "int", Default: DefaultCount, HasDefault: true},
			{Name: "interval", Hint: "float", Default: DefaultInterval.Seconds(), HasDefault: true},
		},
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			count := intArg(args, kwargs, 0, "count", DefaultCount)
			interval := durationArg(args, kwargs, 1, "interval", DefaultInterval)

			out := make(chan message.StreamItem)
			go func() {
				defer close(out)
				if count > 0 {
					for i := 0; i < count-1; i++ {
						out <- message.StreamItem{}
						time.Sleep(interval)
					}
					return
				}
				for {
					out <- message.StreamItem{}
					time.Sleep(interval)
				}
			}()
			return nil, out, nil
		},
	}
}

func intArg(args []interface{}, kwargs map[string]interface{}, pos int, name string, def int) int {
	if len(args) > pos {
		if n, ok := toInt(args[pos]); ok {
			return n
		}
	}
	if v, ok := kwargs[name]; ok {
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return def
}

func durationArg(args []interface{}, kwargs map[string]interface{}, pos int, name string, def time.Duration) time.Duration {
	if len(args) > pos {
		if d, ok := toSeconds(args[pos]); ok {
			return d
		}
	}
	if v, ok := kwargs[name]; ok {
		if d, ok := toSeconds(v); ok {
			return d
		}
	}
	return def
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toSeconds(v interface{}) (time.Duration, bool) {
	switch n := v.(type) {
	case float64:
		return time.Duration(n * float64(time.Second)), true
	case int:
		return time.Duration(n) * time.Second, true
	case int64:
		return time.Duration(n) * time.Second, true
	default:
		return 0, false
	}
}
