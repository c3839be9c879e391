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

// Server/Client describe the desired state of one endpoint of this RPC
// engine; they say nothing about how that state is reached, matching how
// the teacher always separates "a struct describing desired state" (this
// file) from "the component that becomes that state" (the client/server
// packages). spf13/viper is the only loader; nothing here touches a
// running socket.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/nabbar/snekrpc/certificates"
	liberr "github.com/nabbar/snekrpc/errors"
)

const (
	DefaultCodec            = "msgpack"
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultRetryCount       = 0
	DefaultRetryInterval    = time.Second
)

// Server is the desired configuration of a server endpoint: where it
// listens, which codec and TLS material it offers, its retry/handshake
// timing, and whether remote tracebacks are included in Error replies.
type Server struct {
	Listen           string              `mapstructure:"listen" json:"listen" yaml:"listen" toml:"listen"`
	Codec            string              `mapstructure:"codec" json:"codec" yaml:"codec" toml:"codec"`
	TLS              *certificates.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
	HandshakeTimeout time.Duration        `mapstructure:"handshakeTimeout" json:"handshakeTimeout" yaml:"handshakeTimeout" toml:"handshakeTimeout"`
	RemoteTracebacks bool                 `mapstructure:"remoteTracebacks" json:"remoteTracebacks" yaml:"remoteTracebacks" toml:"remoteTracebacks"`
	// MaxConnections bounds how many connections are served concurrently;
	// zero means unlimited.
	MaxConnections int `mapstructure:"maxConnections" json:"maxConnections" yaml:"maxConnections" toml:"maxConnections"`
}

// Validate checks the fields that Load cannot guarantee by construction
// (non-empty listen address, a parseable codec name is deferred to
// codec.Get at wiring time), mirroring socket/config's Client/Server
// Validate() split between "shape is sane" and "can actually be dialed".
func (s *Server) Validate() liberr.Error {
	if s == nil || s.Listen == "" {
		return ErrorListenEmpty.Error(nil)
	}
	if s.Codec == "" {
		s.Codec = DefaultCodec
	}
	if s.HandshakeTimeout <= 0 {
		s.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return nil
}

// LoadServer unmarshals a Server out of v under the given key prefix
// (e.g. "rpc.server"), applying defaults and validating the result.
func LoadServer(v *viper.Viper, key string) (*Server, liberr.Error) {
	cfg := &Server{
		Codec:            DefaultCodec,
		HandshakeTimeout: DefaultHandshakeTimeout,
	}

	sub := v
	if key != "" {
		sub = v.Sub(key)
		if sub == nil {
			sub = viper.New()
		}
	}

	if err := sub.Unmarshal(cfg); err != nil {
		return nil, ErrorViperBind.Error(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
