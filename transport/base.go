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

package transport

import (
	"io"
	"sync"

	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/codec"
	"github.com/nabbar/snekrpc/handshake"
	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/transport/frame"
)

// FramedConn is a Conn built over any io.ReadWriteCloser that speaks the
// length-prefix framing (package frame): both the tcp and unix transports
// use it directly, each only providing the underlying net.Conn.
type FramedConn struct {
	rw         io.ReadWriteCloser
	chunkSize  int
	remoteAddr string

	mu    sync.Mutex
	codec codec.Codec
}

// NewFramedConn wraps rw. If localCodec is nil, the first Send negotiates a
// codec via handshake.Request (client role); if set, it both encodes
// outgoing frames and answers any incoming handshake.Request transparently
// (server role), matching `if self._ifc.codec: return` in req_handshake.
func NewFramedConn(rw io.ReadWriteCloser, localCodec codec.Codec, remoteAddr string, chunkSize int) *FramedConn {
	return &FramedConn{rw: rw, codec: localCodec, remoteAddr: remoteAddr, chunkSize: chunkSize}
}

func (c *FramedConn) SendRaw(data []byte) liberr.Error {
	return frame.Write(c.rw, data)
}

func (c *FramedConn) RecvRaw() ([]byte, liberr.Error) {
	return frame.Read(c.rw, c.chunkSize)
}

func (c *FramedConn) Send(env message.Envelope) liberr.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.codec == nil {
		name, err := handshake.Request(c)
		if err != nil {
			return err
		}
		cd, err2 := codec.Get(name, nil)
		if err2 != nil {
			return err2
		}
		c.codec = cd
	}

	data, err := c.codec.EncodeEnvelope(env)
	if err != nil {
		return err
	}
	return frame.Write(c.rw, data)
}

func (c *FramedConn) Recv() (message.Envelope, bool, liberr.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := frame.Read(c.rw, c.chunkSize)
	if err != nil {
		return message.Envelope{}, false, err
	}
	if raw == nil {
		return message.Envelope{}, false, nil
	}

	if handshake.IsRequest(raw) {
		if c.codec == nil {
			return message.Envelope{}, false, ErrorCodecNotSet.Error(nil)
		}
		if e := handshake.Respond(c, c.codec.Name()); e != nil {
			return message.Envelope{}, false, e
		}

		raw, err = frame.Read(c.rw, c.chunkSize)
		if err != nil {
			return message.Envelope{}, false, err
		}
		if raw == nil {
			return message.Envelope{}, false, nil
		}
	}

	if c.codec == nil {
		return message.Envelope{}, false, ErrorCodecNotSet.Error(nil)
	}

	env, err := c.codec.DecodeEnvelope(raw)
	if err != nil {
		return message.Envelope{}, false, err
	}
	return env, true, nil
}

func (c *FramedConn) RemoteAddr() string { return c.remoteAddr }

func (c *FramedConn) Close() liberr.Error {
	if err := c.rw.Close(); err != nil {
		return ErrorAccept.Error(err)
	}
	return nil
}
