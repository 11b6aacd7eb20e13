package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Flag is a boolean stored and transmitted as the integer 0 or 1.
// Every decode path funnels through NormalizeFlag so no other value can exist.
type Flag int

const (
	FlagOff Flag = 0
	FlagOn  Flag = 1
)

// NormalizeFlag maps 1, "1", "si", "true" (any case) and true to FlagOn.
// Anything else, including nil, is FlagOff.
func NormalizeFlag(v any) Flag {
	switch val := v.(type) {
	case nil:
		return FlagOff
	case Flag:
		if val == FlagOn {
			return FlagOn
		}
		return FlagOff
	case bool:
		if val {
			return FlagOn
		}
		return FlagOff
	case int:
		return flagFromInt(int64(val))
	case int8:
		return flagFromInt(int64(val))
	case int16:
		return flagFromInt(int64(val))
	case int32:
		return flagFromInt(int64(val))
	case int64:
		return flagFromInt(val)
	case uint:
		return flagFromInt(int64(val))
	case uint8:
		return flagFromInt(int64(val))
	case uint32:
		return flagFromInt(int64(val))
	case uint64:
		if val == 1 {
			return FlagOn
		}
		return FlagOff
	case float32:
		return flagFromFloat(float64(val))
	case float64:
		return flagFromFloat(val)
	case json.Number:
		return NormalizeFlag(string(val))
	case string:
		return flagFromString(val)
	case []byte:
		return flagFromString(string(val))
	case *string:
		if val == nil {
			return FlagOff
		}
		return flagFromString(*val)
	case *bool:
		if val == nil {
			return FlagOff
		}
		return NormalizeFlag(*val)
	default:
		return FlagOff
	}
}

func flagFromInt(v int64) Flag {
	if v == 1 {
		return FlagOn
	}
	return FlagOff
}

func flagFromFloat(v float64) Flag {
	if v == 1 {
		return FlagOn
	}
	return FlagOff
}

func flagFromString(raw string) Flag {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "si", "true":
		return FlagOn
	default:
		return FlagOff
	}
}

// Bool reports whether the flag is on.
func (f Flag) Bool() bool {
	return f == FlagOn
}

func (f Flag) String() string {
	return strconv.Itoa(int(NormalizeFlag(f)))
}

// MarshalJSON always emits 0 or 1.
func (f Flag) MarshalJSON() ([]byte, error) {
	if NormalizeFlag(f) == FlagOn {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode flag: %w", err)
	}
	*f = NormalizeFlag(raw)
	return nil
}

// Scan implements sql.Scanner.
func (f *Flag) Scan(value any) error {
	*f = NormalizeFlag(value)
	return nil
}

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	return int64(NormalizeFlag(f)), nil
}
