// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/accountd/fault"
	"github.com/bitmark-inc/accountd/rpc/listeners"
	"github.com/bitmark-inc/accountd/secretstore"
)

// basic defaults (directories and files are relative to the
// "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultKeystoreDirectory = "keystore"
	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "accountd.leveldb"

	defaultRPCCertificate     = "rpc.crt"
	defaultRPCPrivateKey      = "rpc.key"
	defaultMaximumConnections = 50

	defaultLogDirectory = "log"
	defaultLogFile      = "accountd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

// KeystoreType - secret store location and key derivation cost
type KeystoreType struct {
	Directory string          `gluamapper:"directory" json:"directory"`
	KDF       secretstore.KDF `gluamapper:"kdf" json:"kdf"`
}

// DatabaseType - bookkeeping database location
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - the accountd configuration file
type Configuration struct {
	DataDirectory string                       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string                       `gluamapper:"pidfile" json:"pidfile"`
	Keystore      KeystoreType                 `gluamapper:"keystore" json:"keystore"`
	Database      DatabaseType                 `gluamapper:"database" json:"database"`
	ClientRPC     listeners.RPCConfiguration   `gluamapper:"client_rpc" json:"client_rpc"`
	HttpsRPC      listeners.HTTPSConfiguration `gluamapper:"https_rpc" json:"https_rpc"`
	Logging       logger.Configuration         `gluamapper:"logging" json:"logging"`
}

// Get - read, decode and verify the configuration
//
// the data directory must exist, every other directory is created
func Get(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}
	if _, err := os.Stat(configurationFileName); nil != err {
		return nil, fault.ConfigurationFileNotFound
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Keystore: KeystoreType{
			Directory: defaultKeystoreDirectory,
			KDF:       secretstore.DefaultKDF,
		},

		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		ClientRPC: listeners.RPCConfiguration{
			MaximumConnections: defaultMaximumConnections,
			Certificate:        defaultRPCCertificate,
			PrivateKey:         defaultRPCPrivateKey,
		},

		HttpsRPC: listeners.HTTPSConfiguration{
			MaximumConnections: defaultMaximumConnections,
			Certificate:        defaultRPCCertificate,
			PrivateKey:         defaultRPCPrivateKey,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	if 0 == options.Keystore.KDF.Time || 0 == options.Keystore.KDF.Memory || 0 == options.Keystore.KDF.Threads {
		return nil, fmt.Errorf("keystore kdf: %+v has a zero parameter", options.Keystore.KDF)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.ClientRPC.Certificate,
		&options.ClientRPC.PrivateKey,
		&options.HttpsRPC.Certificate,
		&options.HttpsRPC.PrivateKey,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = ensureAbsolute(options.DataDirectory, *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Keystore.Directory,
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d = ensureAbsolute(options.DataDirectory, *d)
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names i.e. must
	// not contain path separator, then add the correct directory
	// prefix, file item is first and corresponding directory is
	// second (or nil if no prefix can be added)
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = ensureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	// done
	return options, nil
}

// ensureAbsolute - prefix a relative path with a directory
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
