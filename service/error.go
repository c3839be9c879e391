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

// Package service defines the Service/CommandMeta registry that a protocol
// Engine dispatches incoming commands against, grounded on the original's
// Service/ServiceMeta metaclass registry and utils.function's command/param
// decorators, adapted to a statically typed handler registration since Go
// has no runtime introspection of default values or generator functions.
package service

import "github.com/nabbar/snekrpc/errors"

const (
	ErrorUnknownService errors.CodeError = iota + errors.MinPkgRpcService
	ErrorUnknownCommand
	ErrorOnlyOneStreamParam
	ErrorUnexpectedStreamArg
	ErrorStreamResultUnsupported
	ErrorAlreadyRegistered
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorUnknownService)
	errors.RegisterIdFctMessage(ErrorUnknownService, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorUnknownService:
		return "no service is registered under this name: %s"
	case ErrorUnknownCommand:
		return "service '%s' has no command named: %s"
	case ErrorOnlyOneStreamParam:
		return "only one stream param is possible per command"
	case ErrorUnexpectedStreamArg:
		return "command does not declare a stream parameter but a stream was given"
	case ErrorStreamResultUnsupported:
		return "command is not declared as streaming but returned a stream"
	case ErrorAlreadyRegistered:
		return "a service is already registered under this name: %s"
	}

	return ""
}
