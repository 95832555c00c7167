// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/certificate"
)

// Client - to hold RPC connections streams
type Client struct {
	conn    net.Conn
	client  *rpc.Client
	verbose bool
	handle  io.Writer // if verbose is set output items here
}

// NewClient - create an RPC connection to an accountd
//
// the server certificate is self signed, when a fingerprint is
// given it must match the SHA3-256 of the certificate
func NewClient(connect string, fingerprint []byte, verbose bool, handle io.Writer) (*Client, error) {

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
	}

	conn, err := tls.Dial("tcp", connect, tlsConfig)
	if nil != err {
		return nil, err
	}

	if 0 != len(fingerprint) {
		state := conn.ConnectionState()
		if 0 == len(state.PeerCertificates) {
			conn.Close()
			return nil, fault.FingerprintMismatch
		}
		fin := certificate.Fingerprint(state.PeerCertificates[0].Raw)
		if !bytes.Equal(fin[:], fingerprint) {
			conn.Close()
			return nil, fault.FingerprintMismatch
		}
	}

	r := &Client{
		conn:    conn,
		client:  jsonrpc.NewClient(conn),
		verbose: verbose,
		handle:  handle,
	}
	return r, nil
}

// Close - shutdown the accountd connection
func (c *Client) Close() {
	c.client.Close()
	c.conn.Close()
}

// call - perform one request, echoing it when verbose
func (c *Client) call(method string, arguments interface{}, reply interface{}) error {
	if c.verbose {
		c.printJSON("request: "+method, arguments)
	}
	if err := c.client.Call(method, arguments, reply); nil != err {
		return err
	}
	if c.verbose {
		c.printJSON("reply: "+method, reply)
	}
	return nil
}

func (c *Client) printJSON(title string, message interface{}) {
	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		fmt.Fprintf(c.handle, "%s: json error: %s\n", title, err)
		return
	}
	fmt.Fprintf(c.handle, "%s\n%s\n", title, b)
}
