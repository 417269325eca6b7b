package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FieldError reports a single invalid input location.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError aggregates field errors found while validating a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(fe FieldError) {
	e.Errors = append(e.Errors, fe)
}

func (e *ValidationError) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

const (
	errTypeMissing   = "value_error.missing"
	errTypeNone      = "type_error.none.not_allowed"
	errTypeString    = "type_error.str"
	errTypeFloat     = "type_error.float"
	errTypeInteger   = "type_error.integer"
	errTypeJSON      = "value_error.jsondecode"
	errTypeObject    = "type_error.dict"
	errTypeNotGT     = "value_error.number.not_gt"
	errTypeNotLE     = "value_error.number.not_le"
	msgInvalidInt    = "value is not a valid integer"
	msgInvalidFloat  = "value is not a valid float"
	msgFieldRequired = "field required"
)

// DecodeHouse validates a JSON request body against the House schema and
// returns the decoded record. Every schema column is required; id is optional
// and, when present, must be an integer. Numbers may be sent as numeric strings.
func DecodeHouse(body []byte) (House, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		var verr ValidationError
		if len(bytes.TrimSpace(body)) > 0 && json.Valid(body) {
			verr.add(FieldError{Loc: []string{"body"}, Msg: "value is not a valid dict", Type: errTypeObject})
		} else {
			verr.add(FieldError{Loc: []string{"body"}, Msg: "request body is not valid JSON", Type: errTypeJSON})
		}
		return House{}, &verr
	}
	if raw == nil {
		return House{}, &ValidationError{Errors: []FieldError{{Loc: []string{"body"}, Msg: "value is not a valid dict", Type: errTypeObject}}}
	}

	var (
		house House
		verr  ValidationError
	)
	if msg, ok := raw["id"]; ok && !isNull(msg) {
		id, fe := decodeInt(msg)
		if fe != nil {
			fe.Loc = []string{"body", "id"}
			verr.add(*fe)
		} else {
			house.ID = id
		}
	}
	for _, f := range Fields {
		msg, ok := raw[f.Name]
		if !ok {
			verr.add(FieldError{Loc: []string{"body", f.Name}, Msg: msgFieldRequired, Type: errTypeMissing})
			continue
		}
		if isNull(msg) {
			verr.add(FieldError{Loc: []string{"body", f.Name}, Msg: "none is not an allowed value", Type: errTypeNone})
			continue
		}
		if fe := decodeField(f, &house, msg); fe != nil {
			fe.Loc = []string{"body", f.Name}
			verr.add(*fe)
		}
	}
	if err := verr.orNil(); err != nil {
		return House{}, err
	}
	return house, nil
}

func decodeField(f Field, h *House, msg json.RawMessage) *FieldError {
	switch f.Kind {
	case KindString:
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return &FieldError{Msg: "str type expected", Type: errTypeString}
		}
		*f.str(h) = s
	case KindFloat:
		v, fe := decodeFloat(msg)
		if fe != nil {
			return fe
		}
		*f.flt(h) = v
	default:
		v, fe := decodeInt(msg)
		if fe != nil {
			return fe
		}
		*f.intg(h) = v
	}
	return nil
}

func decodeFloat(msg json.RawMessage) (float64, *FieldError) {
	text, ok := numericText(msg)
	if !ok {
		return 0, &FieldError{Msg: msgInvalidFloat, Type: errTypeFloat}
	}
	v, err := ParseFloat(text)
	if err != nil {
		return 0, &FieldError{Msg: msgInvalidFloat, Type: errTypeFloat}
	}
	return v, nil
}

func decodeInt(msg json.RawMessage) (int, *FieldError) {
	text, ok := numericText(msg)
	if !ok {
		return 0, &FieldError{Msg: msgInvalidInt, Type: errTypeInteger}
	}
	v, err := ParseInt(text)
	if err != nil {
		return 0, &FieldError{Msg: msgInvalidInt, Type: errTypeInteger}
	}
	return v, nil
}

// numericText extracts the text of a JSON number or string literal.
func numericText(msg json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 {
		return "", false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}
