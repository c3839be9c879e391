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

package service

import (
	"sort"
	"sync"

	"github.com/nabbar/snekrpc/errors"
)

// classRegistry is the global service-class registry, equivalent to
// ServiceMeta/registry.create_metaclass keeping every declared Service
// subclass addressable by name.
var (
	classMu sync.RWMutex
	classes = map[string]Factory{}
)

// RegisterClass makes a service class available to Get/New by name, the Go
// equivalent of a Service subclass being picked up by ServiceMeta at import
// time.
func RegisterClass(name string, f Factory) errors.Error {
	classMu.Lock()
	defer classMu.Unlock()

	if _, ok := classes[name]; ok {
		return ErrorAlreadyRegistered.Errorf(name)
	}
	classes[name] = f
	return nil
}

// ClassNames lists every registered service class name, sorted.
func ClassNames() []string {
	classMu.RLock()
	defer classMu.RUnlock()

	names := make([]string, 0, len(classes))
	for n := range classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New instantiates the service class registered under name, optionally
// aliasing it, mirroring service.get(name, service_args, alias).
func New(name string, args map[string]interface{}, alias string) (Service, errors.Error) {
	classMu.RLock()
	f, ok := classes[name]
	classMu.RUnlock()

	if !ok {
		return nil, ErrorUnknownService.Errorf(name)
	}

	svc := f(args)
	if alias != "" {
		svc = &aliased{Service: svc, name: alias}
	}
	return svc, nil
}

type aliased struct {
	Service
	name string
}

func (a *aliased) Name() string { return a.name }

// Registry is a live, per-server table of instantiated services (as
// opposed to the classRegistry of classes above), looked up by name during
// command dispatch.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

func NewRegistry() *Registry {
	return &Registry{services: map[string]Service{}}
}

func (r *Registry) Add(svc Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.Name()] = svc
}

func (r *Registry) Get(name string) (Service, errors.Error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[name]
	if !ok {
		return nil, ErrorUnknownService.Errorf(name)
	}
	return svc, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for n := range r.services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) All() []Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for n := range r.services {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Service, 0, len(names))
	for _, n := range names {
		out = append(out, r.services[n])
	}
	return out
}
