// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultMeta - meta of an account that never had meta set
const DefaultMeta = "{}"

// reserved meta field holding the vault name
const vaultField = "vault"

// Meta - caller supplied meta text and the vault it is read under
//
// Raw never carries the vault field when it is a JSON object, the
// field is injected by Text
type Meta struct {
	Raw   string
	Vault string
}

// NewMeta - remove any vault field from caller supplied text
//
// every other byte of the text is kept
func NewMeta(text string) Meta {
	o, ok := splitObject(text)
	if !ok || !o.strip() {
		return Meta{Raw: text}
	}
	return Meta{Raw: o.String()}
}

// Text - the meta as seen by a reader
//
// a JSON object gets the vault field set to the current vault, or
// removed when there is no vault; anything else is returned verbatim
func (m Meta) Text() string {
	o, ok := splitObject(m.Raw)
	if !ok {
		return m.Raw
	}

	found := o.strip()
	if "" == m.Vault {
		if !found {
			return m.Raw
		}
		return o.String()
	}

	name, err := encodeString(m.Vault)
	if nil != err {
		return m.Raw
	}
	o.members = append(o.members, `"`+vaultField+`":`+name)
	return o.String()
}

// the text of a JSON object cut at its top level commas
type object struct {
	prefix  string
	members []string
	suffix  string
}

func (o *object) String() string {
	return o.prefix + strings.Join(o.members, ",") + o.suffix
}

// drop every vault member, true if one was found
func (o *object) strip() bool {
	found := false
	kept := o.members[:0]
	for _, member := range o.members {
		if vaultField == memberName(member) {
			found = true
			continue
		}
		kept = append(kept, member)
	}
	o.members = kept
	return found
}

// split valid JSON object text into its members, each member keeps
// its surrounding white space
func splitObject(text string) (*object, bool) {
	if !json.Valid([]byte(text)) {
		return nil, false
	}
	open := strings.IndexByte(text, '{')
	if open < 0 || "" != strings.TrimSpace(text[:open]) {
		return nil, false
	}

	o := &object{}
	depth := 0
	quoted := false
	escaped := false
	start := open + 1

scan:
	for i := start; i < len(text); i += 1 {
		c := text[i]
		if quoted {
			switch {
			case escaped:
				escaped = false
			case '\\' == c:
				escaped = true
			case '"' == c:
				quoted = false
			}
			continue
		}
		switch c {
		case '"':
			quoted = true
		case '{', '[':
			depth += 1
		case ']':
			depth -= 1
		case '}':
			if 0 == depth {
				o.members = append(o.members, text[start:i])
				o.prefix = text[:open+1]
				o.suffix = text[i:]
				break scan
			}
			depth -= 1
		case ',':
			if 0 == depth {
				o.members = append(o.members, text[start:i])
				start = i + 1
			}
		}
	}

	// an empty object keeps its inner white space in the prefix
	if 1 == len(o.members) && "" == strings.TrimSpace(o.members[0]) {
		o.prefix += o.members[0]
		o.members = o.members[:0]
	}
	return o, true
}

// the decoded name of one member, "" if it cannot be read
func memberName(member string) string {
	d := json.NewDecoder(strings.NewReader(member))
	token, err := d.Token()
	if nil != err {
		return ""
	}
	name, _ := token.(string)
	return name
}

// JSON string without HTML escaping
func encodeString(s string) (string, error) {
	var buffer bytes.Buffer
	e := json.NewEncoder(&buffer)
	e.SetEscapeHTML(false)
	err := e.Encode(s)
	if nil != err {
		return "", err
	}
	return strings.TrimRight(buffer.String(), "\n"), nil
}
