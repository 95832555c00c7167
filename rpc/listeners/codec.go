// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package listeners

import (
	"io"
	"net/rpc"
	"net/rpc/jsonrpc"

	"github.com/bitmark-inc/accountd/fault"
)

// codec - JSON-RPC server codec whose argument errors carry a code
type codec struct {
	rpc.ServerCodec
}

// NewServerCodec - JSON-RPC codec for one connection
//
// arguments that fail to decode are reported as invalid parameters
func NewServerCodec(conn io.ReadWriteCloser) rpc.ServerCodec {
	return &codec{
		ServerCodec: jsonrpc.NewServerCodec(conn),
	}
}

// ReadRequestBody - decode the arguments of a request
func (c *codec) ReadRequestBody(x interface{}) error {
	err := c.ServerCodec.ReadRequestBody(x)
	if nil == err {
		return nil
	}
	if fault.CodeInternal == fault.Code(err) {
		return &fault.CodedError{
			Code:    fault.CodeInvalidParameters,
			Message: err.Error(),
		}
	}
	return fault.Coded(err)
}
