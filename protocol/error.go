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

// Package protocol implements the command/stream/error exchange running
// over a transport.Conn, grounded on the original's Protocol class: handle
// for the server accept loop, send_cmd/recv_stream/send_stream/send_err
// for both roles.
package protocol

import "github.com/nabbar/snekrpc/errors"

const (
	ErrorUnexpectedOp errors.CodeError = iota + errors.MinPkgRpcProtocol
	ErrorReceiveInterrupted
	ErrorOnlyOneStreamParam
	ErrorRemote
	ErrorMalformedCommand
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorUnexpectedOp)
	errors.RegisterIdFctMessage(ErrorUnexpectedOp, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorUnexpectedOp:
		return "received an opcode that is not valid at this point of the protocol: %d"
	case ErrorReceiveInterrupted:
		return "the peer closed the connection before completing the exchange"
	case ErrorOnlyOneStreamParam:
		return "only one stream param is possible per command"
	case ErrorRemote:
		return "%s"
	case ErrorMalformedCommand:
		return "received a command envelope that does not match the expected shape"
	}

	return ""
}
