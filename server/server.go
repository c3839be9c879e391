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

// Package server ties a transport, a codec choice and a service registry
// together into one bindable RPC endpoint, grounded on interface.py's
// Server class: construction always mounts the meta service under the
// "_meta" alias before the caller adds anything of its own.
package server

import (
	"context"

	uuid "github.com/hashicorp/go-uuid"
	"golang.org/x/sync/semaphore"

	"github.com/nabbar/snekrpc/config"
	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/health"
	"github.com/nabbar/snekrpc/internal/rpcmetrics"
	"github.com/nabbar/snekrpc/logger"
	"github.com/nabbar/snekrpc/meta"
	"github.com/nabbar/snekrpc/protocol"
	"github.com/nabbar/snekrpc/service"
	"github.com/nabbar/snekrpc/transport"
	"github.com/nabbar/snekrpc/url"
)

// ProtocolVersion is the version reported by the "_meta" status command when
// the caller does not supply its own.
const ProtocolVersion = "1.0.0"

// Server hosts a transport.Transport and dispatches every accepted
// connection to a protocol.Engine bound to reg. A bounded semaphore caps how
// many connections are handled at once when cfg.MaxConnections is set,
// rather than letting Serve spawn one goroutine per accept unconditionally.
type Server struct {
	t       transport.Transport
	reg     *service.Registry
	log     logger.Logger
	metrics *rpcmetrics.Metrics
	sem     *semaphore.Weighted

	codecName       string
	transportName   string
	version         string
	remoteTraceback bool
}

// New builds a Server from cfg, validating it first. It mounts the "_meta"
// introspection service and the "health" heartbeat service immediately,
// matching Server.__init__'s unconditional add_service('meta', ..., '_meta').
func New(cfg *config.Server, version string, metrics *rpcmetrics.Metrics) (*Server, liberr.Error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u, uErr := url.Parse(cfg.Listen)
	if uErr != nil {
		return nil, uErr
	}

	t, tErr := transport.New(u, 0, cfg.TLS, nil)
	if tErr != nil {
		return nil, tErr
	}

	if version == "" {
		version = ProtocolVersion
	}

	transportName := u.Scheme()
	if transportName == "" {
		transportName = "tcp"
	}

	s := &Server{
		t:               t,
		reg:             service.NewRegistry(),
		log:             logger.New(context.Background()),
		metrics:         metrics,
		codecName:       cfg.Codec,
		transportName:   transportName,
		version:         version,
		remoteTraceback: cfg.RemoteTracebacks,
	}

	if cfg.MaxConnections > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConnections))
	}

	s.reg.Add(meta.New(s, s, s.reg))
	s.reg.Add(health.New())

	return s, nil
}

// AddService mounts svc, overwriting any previous service of the same name.
func (s *Server) AddService(svc service.Service) {
	s.reg.Add(svc)
}

// Registry exposes the live service table, mainly so tests and the meta
// service itself can introspect it.
func (s *Server) Registry() *service.Registry {
	return s.reg
}

func (s *Server) CodecName() string     { return s.codecName }
func (s *Server) TransportName() string { return s.transportName }
func (s *Server) Version() string       { return s.version }

// Handle implements transport.Handler: one protocol.Engine per accepted
// connection, matching Server.handle building a fresh Protocol per Connection.
// When cfg.MaxConnections bounds concurrency, a connection that arrives over
// budget blocks here until another finishes instead of being dropped.
func (s *Server) Handle(con transport.Conn) {
	if s.sem != nil {
		ctx := context.Background()
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer s.sem.Release(1)
	}

	connID, _ := uuid.GenerateUUID()

	if s.metrics != nil {
		s.metrics.ConnOpen("server", s.t.Address())
		defer s.metrics.ConnClose("server", s.t.Address())
	}
	if s.log != nil {
		s.log.Debug("connection %s from %s opened", nil, connID, con.RemoteAddr())
		defer s.log.Debug("connection %s from %s closed", nil, connID, con.RemoteAddr())
	}

	eng := protocol.New(con, s.reg, s.log, s.remoteTraceback)
	eng.Handle()
}

// Serve blocks, accepting and dispatching connections until Stop is called.
func (s *Server) Serve() liberr.Error {
	if s.log != nil {
		s.log.Info("server listening on %s", nil, s.t.Address())
	}
	return s.t.Serve(s, s.codecName)
}

func (s *Server) Stop() {
	s.t.Stop()
}

func (s *Server) Join() {
	s.t.Join()
}
