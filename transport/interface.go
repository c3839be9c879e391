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

// Package transport defines the Transport/Conn abstractions shared by the
// tcp, unix and http transports, plus the handshake-aware envelope framing
// built on top of package frame, codec and handshake.
package transport

import (
	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/message"
)

// Handler processes one accepted connection until it closes. The protocol
// engine implements this.
type Handler interface {
	Handle(con Conn)
}

// Transport is a listen/dial endpoint. Concrete transports (tcp, unix, http)
// implement this over their own network primitive.
type Transport interface {
	// Dial opens a client-side Conn negotiating codecName.
	Dial(codecName string) (Conn, liberr.Error)

	// Serve accepts connections until Stop is called, dispatching each to
	// handler. It blocks the calling goroutine.
	Serve(handler Handler, codecName string) liberr.Error

	// Stop requests the accept loop to end.
	Stop()

	// Join waits for a prior Stop to take effect.
	Join()

	// Address returns the bound/dialed endpoint string.
	Address() string
}

// Conn is a single bidirectional connection carrying Envelopes, with the
// codec negotiated lazily on the first Send/Recv the way the original
// triggers req_handshake/res_handshake from send_msg/recv_msg.
type Conn interface {
	// Send encodes and writes one envelope, negotiating the codec first if
	// this is the first frame this side initiates.
	Send(env message.Envelope) liberr.Error

	// Recv reads and decodes one envelope, answering a handshake request
	// transparently if the peer opened with one. ok is false when the peer
	// closed the connection cleanly before sending a frame, matching the
	// original's recv_msg returning None.
	Recv() (env message.Envelope, ok bool, err liberr.Error)

	// RemoteAddr identifies the peer, for logging.
	RemoteAddr() string

	Close() liberr.Error
}
