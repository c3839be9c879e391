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

package protocol

import (
	"github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/message"
)

// packCommand builds the wire shape for Op.command: a 4-element array of
// (svc_name, cmd_name, args, kwargs), matching
// `self._con.send_msg(Op.command, (svc_name, cmd_name, args, kwargs))`.
func packCommand(svcName, cmdName string, args []interface{}, kwargs map[string]interface{}) interface{} {
	if args == nil {
		args = []interface{}{}
	}
	if kwargs == nil {
		kwargs = map[string]interface{}{}
	}
	return []interface{}{svcName, cmdName, args, kwargs}
}

// unpackCommand reverses packCommand after a round trip through a codec,
// which turns the 4-tuple into a generic []interface{} and the kwargs map
// into a map[string]interface{}.
func unpackCommand(data interface{}) (svcName, cmdName string, args []interface{}, kwargs map[string]interface{}, err errors.Error) {
	seq, ok := data.([]interface{})
	if !ok || len(seq) != 4 {
		return "", "", nil, nil, ErrorMalformedCommand.Error(nil)
	}

	svcName, ok = seq[0].(string)
	if !ok {
		return "", "", nil, nil, ErrorMalformedCommand.Error(nil)
	}
	cmdName, ok = seq[1].(string)
	if !ok {
		return "", "", nil, nil, ErrorMalformedCommand.Error(nil)
	}
	args, ok = seq[2].([]interface{})
	if !ok {
		args = []interface{}{}
	}
	kwargs, ok = seq[3].(map[string]interface{})
	if !ok {
		kwargs = map[string]interface{}{}
	}

	return svcName, cmdName, args, kwargs, nil
}

// countStreamSentinels reports how many positional and named arguments are
// stream placeholders. A Command may carry at most one, per §3's "at most
// one stream argument" invariant — this is how both ends check it.
func countStreamSentinels(args []interface{}, kwargs map[string]interface{}) int {
	n := 0
	for _, a := range args {
		if message.IsStreamSentinel(a) {
			n++
		}
	}
	for _, v := range kwargs {
		if message.IsStreamSentinel(v) {
			n++
		}
	}
	return n
}

// packRemoteError builds the wire shape for Op.error: (name, msg, tb),
// matching `self._con.send_msg(Op.error, (name, msg, tb))`.
func packRemoteError(name, msg, tb string) interface{} {
	return []interface{}{name, msg, tb}
}

func unpackRemoteError(data interface{}) (name, msg, tb string) {
	seq, ok := data.([]interface{})
	if !ok || len(seq) != 3 {
		return "", "", ""
	}
	name, _ = seq[0].(string)
	msg, _ = seq[1].(string)
	tb, _ = seq[2].(string)
	return name, msg, tb
}
