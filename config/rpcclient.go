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

import (
	"time"

	"github.com/spf13/viper"

	"github.com/nabbar/snekrpc/certificates"
	liberr "github.com/nabbar/snekrpc/errors"
)

// Client is the desired configuration of a client endpoint: where it
// dials, which codec it asks for, its TLS material, and its retry policy
// (§4.8 — count == -1 unlimited, 0 disabled).
type Client struct {
	Dial             string                `mapstructure:"dial" json:"dial" yaml:"dial" toml:"dial"`
	Codec            string                `mapstructure:"codec" json:"codec" yaml:"codec" toml:"codec"`
	TLS              *certificates.Config  `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`
	HandshakeTimeout time.Duration         `mapstructure:"handshakeTimeout" json:"handshakeTimeout" yaml:"handshakeTimeout" toml:"handshakeTimeout"`
	RetryCount       int                   `mapstructure:"retryCount" json:"retryCount" yaml:"retryCount" toml:"retryCount"`
	RetryInterval    time.Duration         `mapstructure:"retryInterval" json:"retryInterval" yaml:"retryInterval" toml:"retryInterval"`
}

func (c *Client) Validate() liberr.Error {
	if c == nil || c.Dial == "" {
		return ErrorDialEmpty.Error(nil)
	}
	if c.Codec == "" {
		c.Codec = DefaultCodec
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	return nil
}

// LoadClient unmarshals a Client out of v under the given key prefix.
func LoadClient(v *viper.Viper, key string) (*Client, liberr.Error) {
	cfg := &Client{
		Codec:            DefaultCodec,
		HandshakeTimeout: DefaultHandshakeTimeout,
		RetryCount:       DefaultRetryCount,
		RetryInterval:    DefaultRetryInterval,
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
