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

package unix

import (
	"net"
	"os"
	"sync"
	"time"

	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/codec"
	"github.com/nabbar/snekrpc/transport"
	"github.com/nabbar/snekrpc/transport/frame"
)

// AcceptTimeout mirrors tcp.AcceptTimeout; kept separate so the two
// transports can diverge independently.
const AcceptTimeout = 100 * time.Millisecond

// Transport implements transport.Transport over net.UnixConn, removing any
// stale socket file at the path before binding and again once serving ends,
// matching `utils.path.discard_file(self._path)` in the original.
type Transport struct {
	path      string
	chunkSize int

	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}
}

func New(path string, chunkSize int) *Transport {
	if chunkSize <= 0 {
		chunkSize = frame.DefaultChunkSize
	}
	return &Transport{
		path:      path,
		chunkSize: chunkSize,
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (t *Transport) Address() string { return t.path }

func (t *Transport) Dial(codecName string) (transport.Conn, liberr.Error) {
	conn, err := net.Dial("unix", t.path)
	if err != nil {
		return nil, ErrorDial.Error(err)
	}

	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		return nil, cErr
	}

	return transport.NewFramedConn(conn, cd, t.path, t.chunkSize), nil
}

func (t *Transport) Serve(handler transport.Handler, codecName string) liberr.Error {
	_ = os.Remove(t.path)

	ln, err := net.Listen("unix", t.path)
	if err != nil {
		return ErrorListen.Error(err)
	}

	cd, cErr := codec.Get(codecName, nil)
	if cErr != nil {
		_ = ln.Close()
		return cErr
	}

	defer close(t.stopped)
	defer func() { _ = ln.Close() }()
	defer func() { _ = os.Remove(t.path) }()

	ul, _ := ln.(*net.UnixListener)

	for {
		select {
		case <-t.stop:
			return nil
		default:
		}

		if ul != nil {
			_ = ul.SetDeadline(time.Now().Add(AcceptTimeout))
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

		con := transport.NewFramedConn(conn, cd, t.path, t.chunkSize)
		go handler.Handle(con)
	}
}

func (t *Transport) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Transport) Join() {
	<-t.stopped
}
