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

package config

import "github.com/nabbar/snekrpc/errors"

// Error codes for the Server/Client config loader, kept in their own
// reserved range (errors.MinPkgRpcConfig) separate from the component
// manager's own ErrorParamEmpty range above: two unrelated concerns share
// this package the way certificates/config.go and certificates/config_old.go
// share theirs.
const (
	ErrorViperBind errors.CodeError = iota + errors.MinPkgRpcConfig
	ErrorListenEmpty
	ErrorDialEmpty
)

var isRpcCodeError = false

func IsRpcCodeError() bool {
	return isRpcCodeError
}

func init() {
	isRpcCodeError = errors.ExistInMapMessage(ErrorViperBind)
	errors.RegisterIdFctMessage(ErrorViperBind, getRpcMessage)
}

func getRpcMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorViperBind:
		return "unable to unmarshal configuration from viper"
	case ErrorListenEmpty:
		return "server configuration requires a non-empty listen address"
	case ErrorDialEmpty:
		return "client configuration requires a non-empty dial address"
	}

	return ""
}
