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

package http

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	liberr "github.com/nabbar/snekrpc/errors"
	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/nabbar/snekrpc/certificates"

	"github.com/nabbar/snekrpc/codec"
	"github.com/nabbar/snekrpc/transport"
	"github.com/nabbar/snekrpc/transport/frame"
)

// upgradeHeader is the value of the Upgrade header a client sends to signal
// it wants the POST it's issuing to be hijacked into a raw rpc stream,
// replacing the original's do_POST + chunked transfer-encoding bootstrap.
const upgradeHeader = "snekrpc"

// RequestPath is the single route the server registers and the client
// always posts to, mirroring the original's single-path BaseHTTPRequestHandler.
const RequestPath = "/rpc"

// Transport implements transport.Transport on top of an HTTP POST whose
// connection is hijacked into a raw stream once the upgrade header is seen,
// grounded on the original's HTTPTransport/HTTPHandler pair. It trades the
// original's hand-rolled hex-length-CRLF chunk framing for a plain
// http.Hijacker upgrade into the same length-prefixed transport.FramedConn
// used by tcp and unix.
type Transport struct {
	addr      string
	chunkSize int
	tls       certificates.TLSConfig
	headers   map[string]string

	mu       sync.Mutex
	stopOnce sync.Once
	server   *http.Server
	stop     chan struct{}
	stopped  chan struct{}
}

// New builds an http Transport bound/dialing addr ("host:port"). tls may be
// nil for a plaintext listener. headers are extra response headers sent on
// the upgrade response, mirroring the original's `headers` constructor param.
func New(addr string, chunkSize int, tls certificates.TLSConfig, headers map[string]string) *Transport {
	if chunkSize <= 0 {
		chunkSize = frame.DefaultChunkSize
	}
	return &Transport{
		addr:      addr,
		chunkSize: chunkSize,
		tls:       tls,
		headers:   headers,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (t *Transport) Address() string { return t.addr }

func (t *Transport) Serve(handler transport.Handler, codecName string) liberr.Error {
	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		return cErr
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.POST(RequestPath, t.upgradeHandler(handler, cd))

	srv := &http.Server{
		Addr:    t.addr,
		Handler: engine,
	}
	if t.tls != nil {
		srv.TLSConfig = t.tls.TLS("")
	}

	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return ErrorListen.Error(err)
	}

	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if t.tls != nil {
			errCh <- srv.ServeTLS(ln, "", "")
		} else {
			errCh <- srv.Serve(ln)
		}
	}()

	defer close(t.stopped)

	select {
	case <-t.stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		return nil
	case err = <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return ErrorListen.Error(err)
		}
		return nil
	}
}

func (t *Transport) upgradeHandler(handler transport.Handler, cd codec.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Upgrade") != upgradeHeader {
			c.Status(http.StatusBadRequest)
			return
		}

		hj, ok := c.Writer.(http.Hijacker)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}

		conn, rw, err := hj.Hijack()
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}

		if wErr := writeUpgradeResponse(rw.Writer, t.headers); wErr != nil {
			_ = conn.Close()
			return
		}

		remote := conn.RemoteAddr().String()
		con := transport.NewFramedConn(conn, cd, remote, t.chunkSize)
		handler.Handle(con)
	}
}

func writeUpgradeResponse(w *bufio.Writer, extra map[string]string) error {
	if _, err := fmt.Fprintf(w, "HTTP/1.1 101 Switching Protocols\r\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Upgrade: %s\r\nConnection: Upgrade\r\n", upgradeHeader); err != nil {
		return err
	}
	for k, v := range extra {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", k, v); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return err
	}
	return w.Flush()
}

func (t *Transport) Dial(codecName string) (transport.Conn, liberr.Error) {
	var (
		raw net.Conn
		err error
	)

	if t.tls != nil {
		host, _, splitErr := net.SplitHostPort(t.addr)
		if splitErr != nil {
			host = t.addr
		}
		raw, err = tls.Dial("tcp", t.addr, t.tls.TLS(host))
	} else {
		raw, err = net.Dial("tcp", t.addr)
	}
	if err != nil {
		return nil, ErrorDial.Error(err)
	}

	req, err := http.NewRequest(http.MethodPost, "http://"+t.addr+RequestPath, nil)
	if err != nil {
		_ = raw.Close()
		return nil, ErrorDial.Error(err)
	}
	req.Header.Set("Upgrade", upgradeHeader)
	req.Header.Set("Connection", "Upgrade")

	if wErr := req.Write(raw); wErr != nil {
		_ = raw.Close()
		return nil, ErrorDial.Error(wErr)
	}

	br := bufio.NewReader(raw)
	resp, rErr := http.ReadResponse(br, req)
	if rErr != nil {
		_ = raw.Close()
		return nil, ErrorDial.Error(rErr)
	}
	if resp.StatusCode != http.StatusSwitchingProtocols {
		_ = raw.Close()
		return nil, ErrorUpgradeRejected.Error()
	}

	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		_ = raw.Close()
		return nil, cErr
	}

	return transport.NewFramedConn(raw, cd, raw.RemoteAddr().String(), t.chunkSize), nil
}

func (t *Transport) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Transport) Join() {
	<-t.stopped
}

// retryClient returns a retryablehttp client suitable for probing the
// upgrade endpoint's availability before committing to the raw hijack dial
// above (e.g. health checks), mirroring the resilience the rest of the
// module gets from hashicorp/go-retryablehttp elsewhere.
func retryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.Logger = nil
	return c
}
