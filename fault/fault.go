// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LockedError GenericError
type NotFoundError GenericError
type PasswordError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	ConfigurationFileNotFound    = NotFoundError("configuration file not found")
	CryptoFailed                 = ProcessError("crypto failed")
	FingerprintMismatch          = ProcessError("certificate fingerprint mismatch")
	HasKeyMaterial               = InvalidError("account has key material: use kill account")
	InvalidListenAddress         = InvalidError("invalid listen address")
	InvalidParameters            = InvalidError("invalid parameters")
	InvalidVaultName             = InvalidError("invalid vault name")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	KeyFileCorrupt               = ProcessError("key file corrupt")
	MissingParameters            = InvalidError("missing parameters")
	RateLimiting                 = InvalidError("rate limiting")
	UnknownAccount               = NotFoundError("unknown account")
	VaultAlreadyExists           = ExistsError("vault already exists")
	VaultLocked                  = LockedError("vault is locked")
	VaultNotFound                = NotFoundError("vault not found")
	WrongPassword                = PasswordError("wrong password")
)

// the error interface methods
func (e GenericError) Error() string  { return string(e) }
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LockedError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e PasswordError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// StoreError - a failure inside the secret store or database that is
// not one of the named errors, the operation is kept for the log
type StoreError struct {
	Op  string
	Err error
}

// Error - the error interface
func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap - access the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap - convert a foreign error into a StoreError
//
// errors that are already classified are passed through unchanged
// so that callers can still compare them directly
func Wrap(op string, err error) error {
	if nil == err {
		return nil
	}
	if IsErrExists(err) || IsErrInvalid(err) || IsErrLocked(err) ||
		IsErrNotFound(err) || IsErrPassword(err) || IsErrProcess(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLocked(e error) bool   { _, ok := e.(LockedError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrPassword(e error) bool { _, ok := e.(PasswordError); return ok }
func IsErrProcess(e error) bool {
	switch e.(type) {
	case ProcessError, *StoreError:
		return true
	}
	return false
}
