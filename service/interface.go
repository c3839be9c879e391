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

package service

import (
	"github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/message"
)

// ParamKind classifies how a parameter binds to a call, mirroring Python's
// inspect.Parameter.kind enumeration that ParameterSpec's `kind` field
// carries across the wire. The zero value is PositionalOrKeyword, matching
// every ParamMeta literal in this tree that never sets Kind explicitly.
type ParamKind uint8

const (
	KindPositionalOrKeyword ParamKind = iota
	KindPositionalOnly
	KindVarPositional
	KindKeywordOnly
	KindVarKeyword
)

func (k ParamKind) String() string {
	switch k {
	case KindPositionalOnly:
		return "POSITIONAL_ONLY"
	case KindVarPositional:
		return "VAR_POSITIONAL"
	case KindKeywordOnly:
		return "KEYWORD_ONLY"
	case KindVarKeyword:
		return "VAR_KEYWORD"
	default:
		return "POSITIONAL_OR_KEYWORD"
	}
}

// ParamKindFromString reverses ParamKind.String, defaulting to
// PositionalOrKeyword for anything unrecognized so a decoded signature
// never panics on a future kind it doesn't know about yet.
func ParamKindFromString(s string) ParamKind {
	switch s {
	case "POSITIONAL_ONLY":
		return KindPositionalOnly
	case "VAR_POSITIONAL":
		return KindVarPositional
	case "KEYWORD_ONLY":
		return KindKeywordOnly
	case "VAR_KEYWORD":
		return KindVarKeyword
	default:
		return KindPositionalOrKeyword
	}
}

// ParamMeta describes one command parameter, mirroring the entries
// utils.function.func_to_dict builds from a function's signature plus any
// @param() decorator hints.
type ParamMeta struct {
	Name       string
	Hint       string
	Doc        string
	Kind       ParamKind
	Hide       bool
	Default    interface{}
	HasDefault bool
}

// HandlerFunc is a command's implementation. Exactly one of result/stream
// is non-nil on success: result for a plain command, stream for one
// declared IsGen, matching `inspect.isgenerator(res)` in recv_cmd. A
// streaming handler reports a terminal failure as a StreamItem with Err
// set rather than through the err return, since by the time it has handed
// back a channel there is no other slot left to carry one.
type HandlerFunc func(args []interface{}, kwargs map[string]interface{}) (result interface{}, stream <-chan message.StreamItem, err errors.Error)

// CommandMeta is one callable entry of a Service, equivalent to one
// func_to_dict() result plus its bound HandlerFunc.
type CommandMeta struct {
	Name        string
	Doc         string
	IsGen       bool
	StreamParam string
	Params      []ParamMeta
	Handler     HandlerFunc
}

// Service is one RPC service: a named bag of commands. Concrete services
// build their CommandMeta slice in their constructor instead of relying on
// decorator-populated metaclass state.
type Service interface {
	Name() string
	Doc() string
	Commands() []CommandMeta
	Command(name string) (CommandMeta, bool)
}

// Factory builds a Service instance from construction args, mirroring
// `get(name, service_args)` instantiating the registered class.
type Factory func(args map[string]interface{}) Service
