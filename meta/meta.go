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

// Package meta implements the built-in "meta" service every server exposes
// alongside the services it hosts, grounded on service/metadata.py's
// MetadataService: status, service_names, services and service(name) let a
// client introspect what it is talking to before issuing a real call, which
// is exactly what ServiceProxy's metadata=True path relies on.
package meta

import (
	"sort"

	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/service"
)

// ServiceName is the fixed registry name the meta service is always
// mounted under, matching Server.__init__'s
// `self.add_service('meta', {'server': self}, '_meta')`.
const ServiceName = "_meta"

// Info exposes the handful of server facts the status command reports.
// The server package implements this directly rather than meta importing
// server, which would cycle back through service.Registry.
type Info interface {
	CodecName() string
	TransportName() string
	Version() string
}

// Service is the meta service itself; New wires it against a running
// server's Info and the Registry it is meant to introspect.
type Service struct {
	service.Remote
	info Info
	reg  *service.Registry
}

// New builds the meta service bound to a server's info and registry.
func New(srv interface{}, info Info, reg *service.Registry) *Service {
	return &Service{Remote: service.Remote{Server: srv}, info: info, reg: reg}
}

func (s *Service) Name() string { return ServiceName }
func (s *Service) Doc() string  { return "introspection commands for the services this server hosts" }

func (s *Service) Commands() []service.CommandMeta {
	return []service.CommandMeta{
		s.statusCmd(),
		s.serviceNamesCmd(),
		s.servicesCmd(),
		s.serviceCmd(),
	}
}

func (s *Service) Command(name string) (service.CommandMeta, bool) {
	for _, c := range s.Commands() {
		if c.Name == name {
			return c, true
		}
	}
	return service.CommandMeta{}, false
}

func (s *Service) statusCmd() service.CommandMeta {
	return service.CommandMeta{
		Name: "status",
		Doc:  "report the codec, transport and protocol version this server runs",
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			return map[string]interface{}{
				"codec":     s.info.CodecName(),
				"transport": s.info.TransportName(),
				"version":   s.info.Version(),
			}, nil, nil
		},
	}
}

func (s *Service) serviceNamesCmd() service.CommandMeta {
	return service.CommandMeta{
		Name: "service_names",
		Doc:  "list the names of the services currently mounted on this server",
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			return publicNames(s.reg), nil, nil
		},
	}
}

func (s *Service) servicesCmd() service.CommandMeta {
	return service.CommandMeta{
		Name: "services",
		Doc:  "describe every service mounted on this server, command metadata included",
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			names := publicNames(s.reg)
			out := make([]interface{}, 0, len(names))
			for _, n := range names {
				svc, err := s.reg.Get(n)
				if err != nil {
					continue
				}
				out = append(out, serviceToDict(svc))
			}
			return out, nil, nil
		},
	}
}

// publicNames filters out the registry's own private/aliased services
// (those mounted under a leading underscore, like "_meta" itself),
// matching Server.service_names skipping any name that starts with "_".
func publicNames(reg *service.Registry) []string {
	all := reg.Names()
	out := make([]string, 0, len(all))
	for _, n := range all {
		if n == "" || n[0] == '_' {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *Service) serviceCmd() service.CommandMeta {
	return service.CommandMeta{
		Name: "service",
		Doc:  "describe a single service by name",
		Params: []service.ParamMeta{
			{Name: "name", Hint: "str"},
		},
		Handler: func(args []interface{}, kwargs map[string]interface{}) (interface{}, <-chan message.StreamItem, liberr.Error) {
			name, _ := stringArg(args, kwargs, "name")
			svc, err := s.reg.Get(name)
			if err != nil {
				return nil, nil, err
			}
			return serviceToDict(svc), nil, nil
		},
	}
}

func stringArg(args []interface{}, kwargs map[string]interface{}, name string) (string, bool) {
	if len(args) > 0 {
		if s, ok := args[0].(string); ok {
			return s, true
		}
	}
	if v, ok := kwargs[name]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// serviceToDict mirrors service.service_to_dict: a plain map keyed the same
// way so a remote meta.service() caller in any language sees the same shape.
func serviceToDict(svc service.Service) map[string]interface{} {
	cmds := svc.Commands()
	names := make([]string, 0, len(cmds))
	byName := make(map[string]service.CommandMeta, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
		byName[c.Name] = c
	}
	sort.Strings(names)

	out := make([]interface{}, 0, len(names))
	for _, n := range names {
		out = append(out, commandToDict(byName[n]))
	}

	return map[string]interface{}{
		"name":     svc.Name(),
		"doc":      svc.Doc(),
		"commands": out,
	}
}

// commandToDict mirrors utils.function.func_to_dict's output shape.
func commandToDict(cmd service.CommandMeta) map[string]interface{} {
	params := make([]interface{}, 0, len(cmd.Params))
	for _, p := range cmd.Params {
		entry := map[string]interface{}{"name": p.Name, "kind": p.Kind.String()}
		if p.Hint != "" {
			entry["hint"] = p.Hint
		}
		if p.Doc != "" {
			entry["doc"] = p.Doc
		}
		if p.Hide {
			entry["hide"] = true
		}
		if p.HasDefault {
			entry["default"] = p.Default
		}
		params = append(params, entry)
	}

	out := map[string]interface{}{
		"name":   cmd.Name,
		"doc":    cmd.Doc,
		"params": params,
	}
	if cmd.IsGen {
		out["isgen"] = true
	}
	if cmd.StreamParam != "" {
		out["stream"] = cmd.StreamParam
	}
	return out
}
