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

// Package client is the lazy-connecting counterpart of package server,
// grounded on interface.py's Client: it holds a transport and a codec name,
// opening the actual connection only when a Service proxy first needs one,
// and closing it again on a transport-level failure so the next call redials.
package client

import (
	"sync"

	"github.com/nabbar/snekrpc/config"
	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/internal/rpcmetrics"
	"github.com/nabbar/snekrpc/logger"
	svcmeta "github.com/nabbar/snekrpc/meta"
	"github.com/nabbar/snekrpc/protocol"
	"github.com/nabbar/snekrpc/proxy"
	"github.com/nabbar/snekrpc/retry"
	"github.com/nabbar/snekrpc/transport"
	"github.com/nabbar/snekrpc/url"
)

// Client dials a single remote endpoint on demand and hands out Proxy
// handles to the services it hosts.
type Client struct {
	t         transport.Transport
	codecName string
	log       logger.Logger
	metrics   *rpcmetrics.Metrics
	retry     retry.Policy

	mu  sync.Mutex
	eng *protocol.Engine
}

// New builds a Client from cfg without dialing; the first Proxy.Call does
// that, matching Client.connect() being invoked lazily by ServiceProxy.
func New(cfg *config.Client, log logger.Logger, metrics *rpcmetrics.Metrics) (*Client, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u, uErr := url.Parse(cfg.Dial)
	if uErr != nil {
		return nil, uErr
	}

	t, tErr := transport.New(u, 0, cfg.TLS, nil)
	if tErr != nil {
		return nil, tErr
	}

	retryCount := cfg.RetryCount
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = config.DefaultRetryInterval
	}

	return &Client{
		t:         t,
		codecName: cfg.Codec,
		log:       log,
		metrics:   metrics,
		retry:     retry.New(retryCount, retryInterval, nil, nil),
	}, nil
}

// Dial implements proxy.Dialer: it reuses the live engine if one exists,
// otherwise opens a fresh connection, matching Client.connect().
func (c *Client) Dial() (*protocol.Engine, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eng != nil {
		return c.eng, nil
	}

	con, err := c.t.Dial(c.codecName)
	if err != nil {
		return nil, err
	}

	if c.metrics != nil {
		c.metrics.ConnOpen("client", c.t.Address())
	}

	c.eng = protocol.New(con, nil, c.log, false)
	return c.eng, nil
}

// Close implements proxy.Dialer: it tears down the current connection so
// the next Dial reconnects, matching Client.close().
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eng == nil {
		return
	}

	if c.metrics != nil {
		c.metrics.ConnClose("client", c.t.Address())
	}

	c.eng = nil
}

// Service returns a bound Proxy for name, fetching its command metadata
// immediately (unless name is the built-in meta service), matching
// Client.service()/__getattr__.
func (c *Client) Service(name string) (*proxy.Proxy, liberr.Error) {
	return proxy.New(name, c, c.retry)
}

// ServiceNames lists the services the remote server hosts publicly, by
// calling through the built-in meta service, matching Client.service_names().
func (c *Client) ServiceNames() ([]string, liberr.Error) {
	p, err := proxy.New(svcmeta.ServiceName, c, c.retry)
	if err != nil {
		return nil, err
	}

	res, cErr := p.Call("service_names", nil, nil, nil)
	if cErr != nil {
		return nil, cErr
	}

	switch v := res.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}

// CheckVersion fetches the remote server's reported version through the
// built-in meta service and checks it against a hashicorp/go-version
// constraint string (e.g. ">= 1.0.0, < 2.0.0"), matching the version gate
// a generated static client would apply before trusting a server.
func (c *Client) CheckVersion(constraint string) (bool, liberr.Error) {
	p, err := proxy.New(svcmeta.ServiceName, c, c.retry)
	if err != nil {
		return false, err
	}

	res, cErr := p.Call("status", nil, nil, nil)
	if cErr != nil {
		return false, cErr
	}

	status, ok := res.(map[string]interface{})
	if !ok {
		return false, nil
	}

	v, ok := status["version"].(string)
	if !ok {
		return false, nil
	}

	return svcmeta.CompatibleVersion(v, constraint)
}
