// Package reqparse implements spec.md §4.F's Breakdown: decoding one
// line-framed socket message into an id, a command name, and a
// transfer.Map of fields.
//
// Grounded on the teacher's internal/rpc wire-decode step (the small
// length-prefixed frame reader in internal/rpc/codec.go), generalized
// from a binary frame to ckdb's dot-delimited/JSON text frame.
package reqparse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ckpool/ckdb/internal/transfer"
)

// FieldSep is the byte separating dot-frame name=value fields (spec.md
// §4.F FLDSEP).
const FieldSep = 0x02

// maxIDLen is the id segment's truncation limit (spec.md §4.F).
const maxIDLen = 31

// Breakdown decodes msg of the form "id.cmd[.data]" into its id, cmd
// (case-folded to lower), and a populated transfer.Map. cmd lookup
// against the command table is the caller's responsibility; Breakdown
// only performs framing, not command validation.
func Breakdown(msg []byte) (id string, cmd string, tm *transfer.Map, err error) {
	text := strings.TrimRight(string(msg), "\r\n")
	if text == "" {
		return "", "", nil, fmt.Errorf("reqparse: empty message")
	}

	parts := strings.SplitN(text, ".", 3)
	if len(parts) < 2 {
		return "", "", nil, fmt.Errorf("reqparse: missing id.cmd framing")
	}

	id = parts[0]
	if len(id) > maxIDLen {
		id = id[:maxIDLen]
	}
	cmd = strings.ToLower(parts[1])

	tm = transfer.New()
	if len(parts) == 3 && parts[2] != "" {
		if err := fill(tm, parts[2]); err != nil {
			return "", "", nil, err
		}
	}
	return id, cmd, tm, nil
}

func fill(tm *transfer.Map, data string) error {
	if strings.HasPrefix(data, "json=") {
		return fillJSON(tm, data[len("json="):])
	}
	return fillDotFrame(tm, data)
}

func fillDotFrame(tm *transfer.Map, data string) error {
	fields := bytes.Split([]byte(data), []byte{FieldSep})
	for _, field := range fields {
		if len(field) == 0 {
			continue
		}
		name, value, found := strings.Cut(string(field), "=")
		if !found {
			name, value = string(field), ""
		}
		tm.Set(name, value)
	}
	return nil
}

// fillJSON decodes a JSON object into tm, following spec.md §4.F's
// per-type rules: strings pass through, numbers render as their decimal
// text, arrays of strings space-join (used for the merkle branch list),
// and any other value type is ignored.
func fillJSON(tm *transfer.Map, data string) error {
	var obj map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("reqparse: invalid json payload: %w", err)
	}

	for name, v := range obj {
		switch val := v.(type) {
		case string:
			tm.Set(name, val)
		case json.Number:
			tm.Set(name, val.String())
		case []interface{}:
			if s, ok := joinStringArray(val); ok {
				tm.Set(name, s)
			}
		default:
			// bool, object, null: ignored per spec.md §4.F.
		}
	}
	return nil
}

func joinStringArray(items []interface{}) (string, bool) {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return "", false
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), true
}
