// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// accounts-cli - command line client for the accountd RPC service
//
// every command opens one TLS connection to the server given by
// --connect and prints the reply as JSON; passwords not given as
// flags are read from the terminal
package main
