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

package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	libcfg "github.com/nabbar/snekrpc/config"
)

var _ = Describe("Server", func() {
	It("rejects an empty listen address", func() {
		s := &libcfg.Server{}
		Expect(s.Validate()).ToNot(BeNil())
	})

	It("fills in defaults on a valid listen address", func() {
		s := &libcfg.Server{Listen: "tcp://127.0.0.1:9000"}
		Expect(s.Validate()).To(BeNil())
		Expect(s.Codec).To(Equal(libcfg.DefaultCodec))
		Expect(s.HandshakeTimeout).To(Equal(libcfg.DefaultHandshakeTimeout))
	})

	It("loads from viper under a key prefix", func() {
		v := viper.New()
		v.Set("rpc.server.listen", "unix:///tmp/snekrpc.sock")
		v.Set("rpc.server.codec", "json")

		cfg, err := libcfg.LoadServer(v, "rpc.server")
		Expect(err).To(BeNil())
		Expect(cfg.Listen).To(Equal("unix:///tmp/snekrpc.sock"))
		Expect(cfg.Codec).To(Equal("json"))
	})

	It("fails to load when the listen address is missing", func() {
		v := viper.New()
		_, err := libcfg.LoadServer(v, "rpc.server")
		Expect(err).ToNot(BeNil())
	})
})

var _ = Describe("Client", func() {
	It("rejects an empty dial address", func() {
		c := &libcfg.Client{}
		Expect(c.Validate()).ToNot(BeNil())
	})

	It("fills in defaults on a valid dial address", func() {
		c := &libcfg.Client{Dial: "tcp://127.0.0.1:9000"}
		Expect(c.Validate()).To(BeNil())
		Expect(c.Codec).To(Equal(libcfg.DefaultCodec))
		Expect(c.RetryInterval).To(Equal(libcfg.DefaultRetryInterval))
	})

	It("loads from viper under a key prefix", func() {
		v := viper.New()
		v.Set("rpc.client.dial", "tcp://127.0.0.1:9000")
		v.Set("rpc.client.retryCount", 3)
		v.Set("rpc.client.retryInterval", 2*time.Second)

		cfg, err := libcfg.LoadClient(v, "rpc.client")
		Expect(err).To(BeNil())
		Expect(cfg.Dial).To(Equal("tcp://127.0.0.1:9000"))
		Expect(cfg.RetryCount).To(Equal(3))
	})

	It("fails to load when the dial address is missing", func() {
		v := viper.New()
		_, err := libcfg.LoadClient(v, "rpc.client")
		Expect(err).ToNot(BeNil())
	})
})
