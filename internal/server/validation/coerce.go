package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// numericFields lists, per schema, the keys whose values are converted to
// numbers before validation, at any depth of the payload.
var numericFields = map[string]map[string]bool{
	SkillCreate: {"ref_category": true, "length_in_mins": true},
	SkillUpdate: {"ref_category": true, "length_in_mins": true},
}

// maxExact is the largest magnitude a float64 holds without losing integer
// precision.
const maxExact = 1 << 53

// coerceNumbers rewrites numeric strings in the given fields as JSON numbers
// and integral values such as 2.0 or 1e3 as plain integers. Values that are
// not numeric are left for the schema to reject.
func coerceNumbers(payload []byte, fields map[string]bool) ([]byte, error) {
	if len(fields) == 0 {
		return payload, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	if !coerceValue(doc, fields) {
		return payload, nil
	}
	return json.Marshal(doc)
}

func coerceValue(v any, fields map[string]bool) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if fields[k] {
				if n, ok := toNumber(val); ok {
					if n != val {
						t[k] = n
						changed = true
					}
					continue
				}
			}
			if coerceValue(val, fields) {
				changed = true
			}
		}
	case []any:
		for _, item := range t {
			if coerceValue(item, fields) {
				changed = true
			}
		}
	}
	return changed
}

func toNumber(v any) (json.Number, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return "", false
	}

	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) || !json.Valid([]byte(s)) {
		return "", false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.Abs(f) > maxExact {
		// Out of range: keep the literal so the bounds check reports it.
		return json.Number(s), true
	}

	r, ok := new(big.Rat).SetString(s)
	if ok && r.IsInt() {
		return json.Number(r.Num().String()), true
	}
	return json.Number(s), true
}
