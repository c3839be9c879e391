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

package handshake

import (
	liberr "github.com/nabbar/snekrpc/errors"

	"github.com/nabbar/snekrpc/message"
)

// opByte is the single byte a handshake request/response opens with; the
// opcode is always message.OpHandshake, but kept as a raw byte here since
// handshake frames are never codec-encoded.
const opByte = byte(message.OpHandshake)

// RawIO is the minimal raw-frame transport a handshake needs: send/receive
// one already-framed byte slice with no codec involved.
type RawIO interface {
	SendRaw(data []byte) liberr.Error
	RecvRaw() ([]byte, liberr.Error)
}

// IsRequest reports whether a just-received raw frame is a bare handshake
// request: a single zero-valued opcode byte with no payload.
func IsRequest(data []byte) bool {
	return len(data) == 1 && data[0] == opByte
}

// Request performs the client side of the negotiation: send a bare opcode
// byte, then read back the peer's opcode+codec-name frame and return the
// codec name. Called once, before the first envelope a connection sends.
func Request(io RawIO) (codecName string, err liberr.Error) {
	if e := io.SendRaw([]byte{opByte}); e != nil {
		return "", e
	}

	buf, e := io.RecvRaw()
	if e != nil {
		return "", e
	}
	if len(buf) == 0 {
		return "", ErrorEmptyResponse.Error(nil)
	}
	if buf[0] != opByte {
		return "", ErrorUnexpectedOp.Error(nil)
	}

	return string(buf[1:]), nil
}

// Respond performs the server side of the negotiation: send back the opcode
// followed by the local codec name. Called once a received raw frame
// satisfies IsRequest.
func Respond(io RawIO, localCodecName string) liberr.Error {
	buf := make([]byte, 1+len(localCodecName))
	buf[0] = opByte
	copy(buf[1:], localCodecName)
	return io.SendRaw(buf)
}
