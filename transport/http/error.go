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

// Package http implements the chunked-POST transport: a gin server that
// hijacks the accepted connection once the request is recognized as an RPC
// stream, and a go-retryablehttp-backed client that dials the same way with
// retry/backoff, grounded on the original's HTTPTransport/HTTPHandler pair.
package http

import "github.com/nabbar/snekrpc/errors"

const (
	ErrorListen errors.CodeError = iota + errors.MinPkgRpcTransportHttp
	ErrorDial
	ErrorHijack
	ErrorUpgradeRejected
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorListen)
	errors.RegisterIdFctMessage(ErrorListen, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorListen:
		return "unable to start the http listener"
	case ErrorDial:
		return "unable to open the http rpc stream"
	case ErrorHijack:
		return "unable to hijack the accepted http connection"
	case ErrorUpgradeRejected:
		return "remote endpoint rejected the rpc stream upgrade"
	}

	return ""
}
