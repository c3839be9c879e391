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
	"fmt"
	"runtime/debug"

	liberr "github.com/nabbar/snekrpc/errors"
	"github.com/nabbar/snekrpc/logger"

	"github.com/nabbar/snekrpc/message"
	"github.com/nabbar/snekrpc/service"
	"github.com/nabbar/snekrpc/transport"
)

// streamChanSize bounds how many pending values send_stream buffers before
// the sender blocks, matching the original's unbounded generator pull but
// giving Go backpressure instead of unbounded goroutine growth.
const streamChanSize = 16

// Engine runs one Protocol instance over one transport.Conn, dispatching
// commands against a service.Registry, grounded on the original's Protocol
// class.
type Engine struct {
	con             transport.Conn
	registry        *service.Registry
	log             logger.Logger
	remoteTraceback bool
}

// New builds an Engine bound to con. registry supplies the services
// available to recvCmd (nil on a pure client that only ever calls SendCmd).
func New(con transport.Conn, registry *service.Registry, log logger.Logger, remoteTraceback bool) *Engine {
	return &Engine{con: con, registry: registry, log: log, remoteTraceback: remoteTraceback}
}

// Handle is the server-side accept loop: receive a command, dispatch it,
// reply, repeat until the peer disconnects, matching Protocol.handle().
func (e *Engine) Handle() {
	for {
		env, ok, err := e.con.Recv()
		if err != nil {
			if e.log != nil {
				e.log.Error("transport error from %s: %s", nil, e.con.RemoteAddr(), err.Error())
			}
			continue
		}
		if !ok {
			return
		}

		if env.Op != message.OpCommand {
			e.sendErr(fmt.Errorf("%s", ErrorUnexpectedOp.Errorf(uint8(env.Op)).Error()), "ProtocolOpError")
			continue
		}

		e.recvCmd(env)
	}
}

// recvCmd dispatches one received command envelope against the registry,
// matching Protocol.recv_cmd.
func (e *Engine) recvCmd(env message.Envelope) {
	svcName, cmdName, args, kwargs, uErr := unpackCommand(env.Data)
	if uErr != nil {
		e.sendErr(fmt.Errorf("%s", uErr.Error()), "MalformedCommand")
		return
	}

	if e.registry == nil {
		e.sendErr(fmt.Errorf("no service registry configured"), "UnknownService")
		return
	}

	svc, sErr := e.registry.Get(svcName)
	if sErr != nil {
		e.sendErr(fmt.Errorf("%s", sErr.Error()), "UnknownService")
		return
	}

	cmd, cOk := svc.Command(cmdName)
	if !cOk {
		e.sendErr(fmt.Errorf("service '%s' has no command named '%s'", svcName, cmdName), "UnknownCommand")
		return
	}

	if e.log != nil {
		e.log.Debug("cmd: %s.%s <- %s", nil, svcName, cmdName, e.con.RemoteAddr())
	}

	recvArgs, recvKwargs, rErr := e.resolveStreamArgs(args, kwargs)
	if rErr != nil {
		e.sendErr(fmt.Errorf("%s", rErr.Error()), "StreamError")
		return
	}

	result, stream, hErr := e.invoke(cmd, recvArgs, recvKwargs)
	if hErr != nil {
		e.sendErr(fmt.Errorf("%s", hErr.Error()), "CommandError")
		return
	}

	if stream != nil {
		e.sendStream(stream)
		return
	}

	if sendErr := e.con.Send(message.Envelope{Op: message.OpData, Data: result}); sendErr != nil && e.log != nil {
		e.log.Error("send data error to %s: %s", nil, e.con.RemoteAddr(), sendErr.Error())
	}
}

// invoke recovers from a handler panic the way the original lets an
// unhandled Exception escape recv_cmd into Protocol.handle's send_err.
func (e *Engine) invoke(cmd service.CommandMeta, args []interface{}, kwargs map[string]interface{}) (result interface{}, stream <-chan message.StreamItem, err liberr.Error) {
	defer func() {
		if r := recover(); r != nil {
			err = service.ErrorUnknownCommand.Errorf(fmt.Sprintf("%v", r))
		}
	}()
	return cmd.Handler(args, kwargs)
}

// resolveStreamArgs replaces any message.StreamSentinel placeholder among
// args/kwargs with a pulled-through channel fed by recvStream, matching
// `if inspect.isgenerator(arg): arg = self.recv_stream()` in recv_cmd.
func (e *Engine) resolveStreamArgs(args []interface{}, kwargs map[string]interface{}) ([]interface{}, map[string]interface{}, liberr.Error) {
	if countStreamSentinels(args, kwargs) > 1 {
		return nil, nil, service.ErrorOnlyOneStreamParam.Error(nil)
	}

	outArgs := make([]interface{}, len(args))
	for i, a := range args {
		if message.IsStreamSentinel(a) {
			ch, err := e.recvStream(false)
			if err != nil {
				return nil, nil, err
			}
			outArgs[i] = ch
			continue
		}
		outArgs[i] = a
	}

	outKwargs := make(map[string]interface{}, len(kwargs))
	for k, v := range kwargs {
		if message.IsStreamSentinel(v) {
			ch, err := e.recvStream(false)
			if err != nil {
				return nil, nil, err
			}
			outKwargs[k] = ch
			continue
		}
		outKwargs[k] = v
	}

	return outArgs, outKwargs, nil
}

// SendCmd issues a command and waits for its reply, matching Protocol.send_cmd.
// If streamArg is non-nil its values are sent as the stream payload following
// the command envelope, matching the single-stream-param constraint enforced
// by send_cmd when scanning args/kwargs for a generator.
func (e *Engine) SendCmd(svcName, cmdName string, args []interface{}, kwargs map[string]interface{}, streamArg <-chan message.StreamItem) (interface{}, <-chan message.StreamItem, liberr.Error) {
	if e.log != nil {
		e.log.Debug("cmd: %s.%s -> %s", nil, svcName, cmdName, e.con.RemoteAddr())
	}

	if countStreamSentinels(args, kwargs) > 1 {
		return nil, nil, ErrorOnlyOneStreamParam.Error(nil)
	}

	if err := e.con.Send(message.Envelope{Op: message.OpCommand, Data: packCommand(svcName, cmdName, args, kwargs)}); err != nil {
		return nil, nil, err
	}

	if streamArg != nil {
		e.sendStream(streamArg)
	}

	env, ok, err := e.con.Recv()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrorReceiveInterrupted.Error(nil)
	}

	switch env.Op {
	case message.OpData:
		return env.Data, nil, nil
	case message.OpError:
		name, msg, tb := unpackRemoteError(env.Data)
		return nil, nil, ErrorRemote.Errorf(formatRemoteError(name, msg, tb))
	case message.OpStreamStart:
		ch, rErr := e.recvStream(true)
		return nil, ch, rErr
	default:
		return nil, nil, ErrorUnexpectedOp.Errorf(uint8(env.Op))
	}
}

func formatRemoteError(name, msg, tb string) string {
	if tb != "" {
		return fmt.Sprintf("%s: %s\n%s", name, msg, tb)
	}
	return fmt.Sprintf("%s: %s", name, msg)
}

// recvStream pulls Op.data frames into a channel until Op.stream_end,
// matching Protocol.recv_stream. When started is true the leading
// Op.stream_start frame was already consumed by the caller.
func (e *Engine) recvStream(started bool) (<-chan message.StreamItem, liberr.Error) {
	if !started {
		env, ok, err := e.con.Recv()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrorReceiveInterrupted.Error(nil)
		}
		if env.Op != message.OpStreamStart {
			return nil, ErrorUnexpectedOp.Errorf(uint8(env.Op))
		}
	}

	out := make(chan message.StreamItem, streamChanSize)
	go func() {
		defer close(out)
		for {
			env, ok, err := e.con.Recv()
			if err != nil {
				if e.log != nil {
					e.log.Error("stream receive error from %s: %s", nil, e.con.RemoteAddr(), err.Error())
				}
				return
			}
			if !ok {
				return
			}
			switch env.Op {
			case message.OpData:
				out <- message.StreamItem{Value: env.Data}
			case message.OpStreamEnd:
				return
			case message.OpError:
				name, msg, tb := unpackRemoteError(env.Data)
				out <- message.StreamItem{Err: ErrorRemote.Errorf(formatRemoteError(name, msg, tb))}
				return
			default:
				return
			}
		}
	}()

	return out, nil
}

// sendStream drains it as Op.stream_start, one Op.data per value, then
// Op.stream_end, matching Protocol.send_stream. If a pulled item carries
// Err, that replaces Op.stream_end with Op.error: the producer raised, so
// the stream stops there rather than claiming a clean end.
func (e *Engine) sendStream(it <-chan message.StreamItem) {
	if err := e.con.Send(message.Envelope{Op: message.OpStreamStart, Data: nil}); err != nil {
		if e.log != nil {
			e.log.Error("stream start error to %s: %s", nil, e.con.RemoteAddr(), err.Error())
		}
		return
	}
	for item := range it {
		if item.Err != nil {
			e.sendErr(fmt.Errorf("%s", item.Err.Error()), "StreamError")
			return
		}
		if err := e.con.Send(message.Envelope{Op: message.OpData, Data: item.Value}); err != nil {
			if e.log != nil {
				e.log.Error("stream data error to %s: %s", nil, e.con.RemoteAddr(), err.Error())
			}
			return
		}
	}
	if err := e.con.Send(message.Envelope{Op: message.OpStreamEnd, Data: nil}); err != nil && e.log != nil {
		e.log.Error("stream end error to %s: %s", nil, e.con.RemoteAddr(), err.Error())
	}
}

// sendErr reports a local failure to the peer as Op.error, matching
// Protocol.send_err. name mirrors exc.__class__.__name__ since Go errors
// carry no class identity of their own.
func (e *Engine) sendErr(exc error, name string) {
	tb := ""
	if e.remoteTraceback {
		tb = string(debug.Stack())
	}

	if e.log != nil {
		e.log.Error("%s: %s", nil, name, exc.Error())
	}

	if err := e.con.Send(message.Envelope{Op: message.OpError, Data: packRemoteError(name, exc.Error(), tb)}); err != nil && e.log != nil {
		e.log.Error("send error to %s: %s", nil, e.con.RemoteAddr(), err.Error())
	}
}
