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

// Package message defines the wire-level opcodes and envelope shared by every
// transport and the protocol engine.
package message

import (
	"fmt"

	"github.com/nabbar/snekrpc/errors"
)

// Op is the single byte that opens every frame after the handshake.
type Op uint8

const (
	// OpHandshake carries the raw codec name, once per connection.
	OpHandshake Op = iota
	// OpCommand calls a command: data is a Command value.
	OpCommand
	// OpData carries a single return value or stream item.
	OpData
	// OpError carries a RemoteError triple (name, message, traceback).
	OpError
	// OpStreamStart opens a stream of OpData frames.
	OpStreamStart
	// OpStreamEnd closes a stream opened by OpStreamStart.
	OpStreamEnd
)

func (o Op) String() string {
	switch o {
	case OpHandshake:
		return "handshake"
	case OpCommand:
		return "command"
	case OpData:
		return "data"
	case OpError:
		return "error"
	case OpStreamStart:
		return "stream_start"
	case OpStreamEnd:
		return "stream_end"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Command is the payload of an OpCommand envelope: a service name, a command
// name, positional arguments, and named arguments. At most one argument
// (positional or named) may be a stream placeholder (see StreamMarker in
// package codec) — the protocol engine enforces this, not this type.
type Command struct {
	Service string
	Command string
	Args    []interface{}
	Kwargs  map[string]interface{}
}

// StreamSentinel stands in for a generator argument on the wire: a
// placeholder value meaning "the real values for this parameter travel as a
// follow-up stream of OpData frames", matching the original's
// `__generator__` marker recognized by codec.encode/decode. Declared here
// (not in package codec, which this package cannot import without a cycle)
// so both the protocol engine and the codecs can test a decoded value's
// identity against it.
type StreamSentinel struct{}

// IsStreamSentinel reports whether a decoded command argument is a stream
// placeholder, the Go equivalent of `inspect.isgenerator(arg)` in recv_cmd.
func IsStreamSentinel(v interface{}) bool {
	_, ok := v.(StreamSentinel)
	return ok
}

// StreamItem is one value pulled from either direction of a stream: a
// result stream a handler produces, or an upload stream a caller feeds a
// command argument from. Err set (Value then ignored) means the producer
// stopped because it failed, matching "if the generator raises, send Error
// and stop the stream (no StreamEnd)" — the two cases are not the same
// thing and a consumer must tell them apart.
type StreamItem struct {
	Value interface{}
	Err   errors.Error
}

// RemoteErrorData is the payload of an OpError envelope.
type RemoteErrorData struct {
	Name      string
	Message   string
	Traceback string
}

// Envelope is a single frame: an opcode and its opaque payload. Encoded on
// the wire as a 2-element array, matching the original's `(op, data)` tuple.
type Envelope struct {
	Op   Op
	Data interface{}
}

func (e Envelope) String() string {
	if e.Data == nil {
		return fmt.Sprintf("Envelope(op=<%d:%s>)", e.Op, e.Op)
	}
	return fmt.Sprintf("Envelope(op=<%d:%s>, data=%v)", e.Op, e.Op, e.Data)
}
