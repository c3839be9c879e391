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

// Package proxy implements the client-side dynamic service proxy, grounded
// on service/__init__.py's ServiceProxy/wrap_call: on first use it fetches
// the remote service's command metadata through the bypassed `_meta`
// service, then wraps every call in the connection's retry policy, closing
// the underlying connection on a transport-level failure so the next call
// redials, exactly as wrap_call's `except errors.TransportError: proxy.
// _client.close(); raise`.
package proxy

import (
	"sync"

	liberr "github.com/nabbar/snekrpc/errors"
	svcmeta "github.com/nabbar/snekrpc/meta"
	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/protocol"
	"github.com/nabbar/snekrpc/retry"
	"github.com/nabbar/snekrpc/service"
)

// Dialer lazily acquires a protocol.Engine to send commands over. Close
// tears down the underlying connection so the next Dial redials, matching
// Client.connect()/Client.close().
type Dialer interface {
	Dial() (*protocol.Engine, liberr.Error)
	Close()
}

// Proxy is a bound handle to one remote service, caching the command
// metadata fetched at construction the way ServiceProxy caches its
// self._commands dict.
type Proxy struct {
	svcName string
	dialer  Dialer
	retry   retry.Policy

	mu   sync.RWMutex
	cmds map[string]service.CommandMeta
}

// New builds a Proxy for svcName. Unless svcName is the built-in meta
// service itself, it immediately fetches that service's command metadata
// through an internal bypass call to `_meta.service(svcName)`, matching
// ServiceProxy.__init__'s `metadata is True` branch.
func New(svcName string, dialer Dialer, retryPolicy retry.Policy) (*Proxy, liberr.Error) {
	p := &Proxy{svcName: svcName, dialer: dialer, retry: retryPolicy}

	if svcName == svcmeta.ServiceName {
		return p, nil
	}

	if err := p.loadMetadata(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Proxy) loadMetadata() liberr.Error {
	eng, dErr := p.dialer.Dial()
	if dErr != nil {
		return dErr
	}

	res, _, err := eng.SendCmd(svcmeta.ServiceName, "service", []interface{}{p.svcName}, nil, nil)
	if err != nil {
		return err
	}

	data, _ := res.(map[string]interface{})
	list, _ := data["commands"].([]interface{})

	cmds := make(map[string]service.CommandMeta, len(list))
	for _, c := range list {
		cm, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := cm["name"].(string)
		if name == "" {
			continue
		}
		isgen, _ := cm["isgen"].(bool)
		streamParam, _ := cm["stream"].(string)

		var params []service.ParamMeta
		if rawParams, ok := cm["params"].([]interface{}); ok {
			params = make([]service.ParamMeta, 0, len(rawParams))
			for _, rp := range rawParams {
				pm, ok := rp.(map[string]interface{})
				if !ok {
					continue
				}
				pName, _ := pm["name"].(string)
				hint, _ := pm["hint"].(string)
				doc, _ := pm["doc"].(string)
				hide, _ := pm["hide"].(bool)
				kindStr, _ := pm["kind"].(string)
				def, hasDefault := pm["default"]
				params = append(params, service.ParamMeta{
					Name:       pName,
					Hint:       hint,
					Doc:        doc,
					Kind:       service.ParamKindFromString(kindStr),
					Hide:       hide,
					Default:    def,
					HasDefault: hasDefault,
				})
			}
		}

		cmds[name] = service.CommandMeta{Name: name, IsGen: isgen, StreamParam: streamParam, Params: params}
	}

	p.mu.Lock()
	p.cmds = cmds
	p.mu.Unlock()
	return nil
}

func (p *Proxy) isStream(cmdName string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cmds == nil {
		return false
	}
	c, ok := p.cmds[cmdName]
	return ok && c.IsGen
}

// streamParam reports the declared name of cmdName's stream argument, or
// "" if it takes none, matching the `stream` entry commandToDict emits.
func (p *Proxy) streamParam(cmdName string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cmds == nil {
		return ""
	}
	return p.cmds[cmdName].StreamParam
}

// withStreamSentinel places a message.StreamSentinel at cmdName's declared
// stream parameter so the receiving resolveStreamArgs knows a follow-up
// stream of Op.data frames is coming, matching how the original marks a
// generator argument before packing the Command tuple. kwargs is copied,
// never mutated in place, since callers may reuse the map they passed in.
func (p *Proxy) withStreamSentinel(cmdName string, args []interface{}, kwargs map[string]interface{}) ([]interface{}, map[string]interface{}, liberr.Error) {
	name := p.streamParam(cmdName)
	if name == "" {
		return nil, nil, service.ErrorUnexpectedStreamArg.Errorf(cmdName)
	}

	out := make(map[string]interface{}, len(kwargs)+1)
	for k, v := range kwargs {
		out[k] = v
	}
	out[name] = message.StreamSentinel{}
	return args, out, nil
}

// Call invokes a unary command, retried per policy. streamArg, when
// non-nil, is drained to the server alongside the command the same way a
// generator argument is detected and streamed by send_cmd; it may be nil.
func (p *Proxy) Call(cmdName string, args []interface{}, kwargs map[string]interface{}, streamArg <-chan message.StreamItem) (interface{}, liberr.Error) {
	if p.isStream(cmdName) {
		return nil, ErrorUnexpectedStreamResult.Errorf(cmdName)
	}

	res, err := p.retry.Call(func() (interface{}, error) {
		return p.invoke(cmdName, args, kwargs, streamArg)
	})
	if err != nil {
		return nil, toLibErr(err)
	}
	return res, nil
}

// CallStream invokes a streaming command, retried per the stream-aware
// retry path (call_gen in the original): a retryable failure before any
// value has been produced re-issues the whole call from scratch.
func (p *Proxy) CallStream(cmdName string, args []interface{}, kwargs map[string]interface{}, streamArg <-chan message.StreamItem) (<-chan message.StreamItem, liberr.Error) {
	if !p.isStream(cmdName) {
		return nil, ErrorExpectedStreamResult.Errorf(cmdName)
	}

	ch, err := p.retry.CallStream(func() (<-chan message.StreamItem, error) {
		return p.invokeStream(cmdName, args, kwargs, streamArg)
	})
	if err != nil {
		return nil, toLibErr(err)
	}
	return ch, nil
}

func (p *Proxy) invoke(cmdName string, args []interface{}, kwargs map[string]interface{}, streamArg <-chan message.StreamItem) (interface{}, error) {
	eng, dErr := p.dialer.Dial()
	if dErr != nil {
		return nil, dErr
	}

	if streamArg != nil {
		var sErr liberr.Error
		args, kwargs, sErr = p.withStreamSentinel(cmdName, args, kwargs)
		if sErr != nil {
			return nil, sErr
		}
	}

	res, _, err := eng.SendCmd(p.svcName, cmdName, args, kwargs, streamArg)
	if err != nil {
		if !err.IsCode(protocol.ErrorRemote) {
			p.dialer.Close()
		}
		return nil, err
	}
	return res, nil
}

func (p *Proxy) invokeStream(cmdName string, args []interface{}, kwargs map[string]interface{}, streamArg <-chan message.StreamItem) (<-chan message.StreamItem, error) {
	eng, dErr := p.dialer.Dial()
	if dErr != nil {
		return nil, dErr
	}

	if streamArg != nil {
		var sErr liberr.Error
		args, kwargs, sErr = p.withStreamSentinel(cmdName, args, kwargs)
		if sErr != nil {
			return nil, sErr
		}
	}

	_, stream, err := eng.SendCmd(p.svcName, cmdName, args, kwargs, streamArg)
	if err != nil {
		if !err.IsCode(protocol.ErrorRemote) {
			p.dialer.Close()
		}
		return nil, err
	}
	if stream == nil {
		return nil, ErrorExpectedStreamResult.Errorf(cmdName)
	}
	return stream, nil
}

func toLibErr(err error) liberr.Error {
	if err == nil {
		return nil
	}
	if le, ok := err.(liberr.Error); ok {
		return le
	}
	return ErrorUnknownCommand.Error(err)
}
