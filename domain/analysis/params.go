package analysis

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// ParamKind is the declared type of a method parameter
type ParamKind string

const (
	KindInteger ParamKind = "integer"
	KindEnum    ParamKind = "string-enum"
	KindString  ParamKind = "string-free"
)

// ParseParamKind maps the loose type names used by method catalogs onto a ParamKind.
// A string parameter with options is an enum.
func ParseParamKind(name string, hasOptions bool) (ParamKind, error) {
	switch name {
	case "int", string(KindInteger):
		return KindInteger, nil
	case "enum", string(KindEnum):
		return KindEnum, nil
	case "str", "string", "text", string(KindString):
		if hasOptions {
			return KindEnum, nil
		}
		return KindString, nil
	default:
		return "", fmt.Errorf("unknown parameter type %q", name)
	}
}

// ParamValue is a tagged union over the three parameter kinds
type ParamValue struct {
	Kind ParamKind
	Int  int
	Str  string
}

// IntParam creates an integer parameter value
func IntParam(v int) ParamValue { return ParamValue{Kind: KindInteger, Int: v} }

// EnumParam creates an enumerated string parameter value
func EnumParam(v string) ParamValue { return ParamValue{Kind: KindEnum, Str: v} }

// StringParam creates a free-form string parameter value
func StringParam(v string) ParamValue { return ParamValue{Kind: KindString, Str: v} }

// IsZero reports whether the value carries no kind
func (v ParamValue) IsZero() bool { return v.Kind == "" }

// Any returns the value as a plain Go value for serialization
func (v ParamValue) Any() any {
	if v.Kind == KindInteger {
		return v.Int
	}
	return v.Str
}

func (v ParamValue) String() string {
	if v.Kind == KindInteger {
		return strconv.Itoa(v.Int)
	}
	return v.Str
}

// MarshalJSON encodes the bare value, as the analysis service expects
func (v ParamValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes a bare number or string. Strings decode as free-form;
// Conform upgrades them to enums against a schema.
func (v *ParamValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		if t != float64(int(t)) {
			return fmt.Errorf("parameter value %v is not an integer", t)
		}
		*v = IntParam(int(t))
	case string:
		*v = StringParam(t)
	case nil:
		*v = ParamValue{}
	default:
		return fmt.Errorf("unsupported parameter value %s", string(data))
	}
	return nil
}

// Conform coerces v to the kind declared by spec and validates it.
// Integer strings are accepted for integer parameters since form input arrives as text.
func (v ParamValue) Conform(spec ParamSpec) (ParamValue, error) {
	switch spec.Kind {
	case KindInteger:
		switch v.Kind {
		case KindInteger:
			return v, nil
		case KindString, KindEnum:
			n, err := strconv.Atoi(v.Str)
			if err != nil {
				return ParamValue{}, fmt.Errorf("expected integer, got %q", v.Str)
			}
			return IntParam(n), nil
		}
	case KindEnum:
		if v.Kind == KindInteger {
			return ParamValue{}, fmt.Errorf("expected one of %v, got integer %d", spec.Options, v.Int)
		}
		if !slices.Contains(spec.Options, v.Str) {
			return ParamValue{}, fmt.Errorf("expected one of %v, got %q", spec.Options, v.Str)
		}
		return EnumParam(v.Str), nil
	case KindString:
		if v.Kind == KindInteger {
			return StringParam(strconv.Itoa(v.Int)), nil
		}
		return StringParam(v.Str), nil
	}
	return ParamValue{}, fmt.Errorf("unsupported parameter kind %q", spec.Kind)
}

// ParameterSet maps parameter names to values
type ParameterSet map[string]ParamValue

// Clone returns an independent copy
func (p ParameterSet) Clone() ParameterSet {
	out := make(ParameterSet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in sorted order
func (p ParameterSet) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
