// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - start a file logger in the package test directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the test directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// TempDir - create a scratch directory, the caller must remove it
func TempDir(prefix string) string {
	d, err := ioutil.TempDir("", prefix)
	if nil != err {
		panic(fmt.Sprintf("create temp dir error: %s", err))
	}
	return d
}

// Certificate - a fresh self signed PEM certificate and key for 127.0.0.1
func Certificate() (string, string) {
	cert, key, err := certgen.NewTLSCertPair("accountd test", time.Now().Add(time.Hour), false, []string{"127.0.0.1"})
	if nil != err {
		panic(fmt.Sprintf("create certificate error: %s", err))
	}
	return string(cert), string(key)
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
