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

package tcp

import (
	"crypto/tls"
	"net"
	"sync"
	"time"

	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/certificates"

	"github.com/nabbar/snekrpc/codec"
	"github.com/nabbar/snekrpc/transport"
	"github.com/nabbar/snekrpc/transport/frame"
)

// AcceptTimeout bounds each Accept call so the serve loop can notice Stop
// promptly, mirroring the original's ACCEPT_TIMEOUT poll.
const AcceptTimeout = 100 * time.Millisecond

// Transport implements transport.Transport over net.Conn, optionally wrapped
// in TLS via a certificates.TLSConfig, with BACKLOG/CHUNK_SIZE knobs
// matching TcpTransport's constructor parameters.
type Transport struct {
	addr      string
	backlog   int
	chunkSize int
	tls       certificates.TLSConfig

	mu       sync.Mutex
	stopOnce sync.Once
	listener net.Listener
	stop     chan struct{}
	stopped  chan struct{}
}

// New builds a tcp Transport bound/dialing addr ("host:port"). tls may be
// nil for a plaintext connection.
func New(addr string, chunkSize int, tls certificates.TLSConfig) *Transport {
	if chunkSize <= 0 {
		chunkSize = frame.DefaultChunkSize
	}
	return &Transport{
		addr:      addr,
		chunkSize: chunkSize,
		tls:       tls,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (t *Transport) Address() string { return t.addr }

func (t *Transport) Dial(codecName string) (transport.Conn, liberr.Error) {
	var (
		conn net.Conn
		err  error
	)

	if t.tls != nil {
		conn, err = tlsDial(t.addr, t.tls)
	} else {
		conn, err = net.Dial("tcp", t.addr)
	}
	if err != nil {
		return nil, ErrorDial.Error(err)
	}

	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		return nil, cErr
	}

	return transport.NewFramedConn(conn, cd, conn.RemoteAddr().String(), t.chunkSize), nil
}

func (t *Transport) Serve(handler transport.Handler, codecName string) liberr.Error {
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return ErrorListen.Error(err)
	}
	if t.tls != nil {
		ln = tlsListener(ln, t.tls)
	}

	t.mu.Lock()
	t.listener = ln
	t.mu.Unlock()

	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		_ = ln.Close()
		return cErr
	}

	defer close(t.stopped)
	defer func() { _ = ln.Close() }()

	for {
		select {
		case <-t.stop:
			return nil
		default:
		}

		if tc, ok := ln.(*net.TCPListener); ok {
			_ = tc.SetDeadline(time.Now().Add(AcceptTimeout))
		}

		conn, acceptErr := ln.Accept()
		if acceptErr != nil {
			if ne, ok := acceptErr.(net.Error); ok && ne.Timeout() {
				continue
			}
			select {
			case <-t.stop:
				return nil
			default:
				return transport.ErrorAccept.Error(acceptErr)
			}
		}

		con := transport.NewFramedConn(conn, cd, conn.RemoteAddr().String(), t.chunkSize)
		go handler.Handle(con)
	}
}

func (t *Transport) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Transport) Join() {
	<-t.stopped
}

func tlsDial(addr string, cfg certificates.TLSConfig) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return tls.Dial("tcp", addr, cfg.TLS(host))
}

func tlsListener(ln net.Listener, cfg certificates.TLSConfig) net.Listener {
	return tls.NewListener(ln, cfg.TLS(""))
}
