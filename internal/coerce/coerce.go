// Package coerce converts raw textual values into the canonical
// representation of an item's declared type.
//
// Every type tag maps to a converter. A nil raw value passes through as nil
// for all tags. The strict path propagates conversion failures, the lenient
// path logs them and nulls the value instead.
package coerce

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	internalerrors "github.com/banbrick/collector/internal/errors"
	models "github.com/banbrick/collector/internal/model"
)

type converter func(string) (any, error)

var converters = map[string]converter{
	models.TypeInteger: coerceInteger,
	models.TypeFloat:   coerceFloat,
	models.TypeText:    coerceText,
	models.TypeBoolean: coerceBoolean,
	models.TypeDecimal: coerceDecimal,
}

// Boolean literal sets, matched case-insensitively. Anything outside both
// sets is a coercion failure; "0", "false" and "" are falsy, not truthy.
var (
	truthy = map[string]bool{
		"1": true, "t": true, "true": true, "y": true, "yes": true, "on": true,
	}
	falsy = map[string]bool{
		"": true, "0": true, "f": true, "false": true, "n": true, "no": true, "off": true,
	}
)

// Coerce converts raw into the canonical value for the given type tag.
func Coerce(raw *string, typ string) (any, error) {
	if raw == nil {
		return nil, nil
	}
	conv, ok := converters[typ]
	if !ok {
		return nil, internalerrors.ErrUnknownItemType
	}
	value, err := conv(*raw)
	if err != nil {
		return nil, &internalerrors.CoercionError{Value: *raw, Type: typ}
	}
	return value, nil
}

// Canonical returns the storage text form of a coerced value, or nil for a
// nil value.
func Canonical(value any) *string {
	if value == nil {
		return nil
	}
	var s string
	switch value := value.(type) {
	case string:
		s = value
	case int64:
		s = strconv.FormatInt(value, 10)
	case float64:
		s = strconv.FormatFloat(value, 'g', -1, 64)
	case bool:
		s = strconv.FormatBool(value)
	case decimal.Decimal:
		s = value.String()
	default:
		return nil
	}
	return &s
}

func coerceInteger(s string) (any, error) {
	return strconv.ParseInt(s, 10, 64)
}

func coerceFloat(s string) (any, error) {
	return strconv.ParseFloat(s, 64)
}

func coerceText(s string) (any, error) {
	return s, nil
}

func coerceBoolean(s string) (any, error) {
	literal := strings.ToLower(strings.TrimSpace(s))
	if truthy[literal] {
		return true, nil
	}
	if falsy[literal] {
		return false, nil
	}
	return nil, errors.New("unrecognized boolean literal")
}

func coerceDecimal(s string) (any, error) {
	return decimal.NewFromString(s)
}

// Fixer applies type coercion to items before they are persisted.
type Fixer struct {
	logger *zap.SugaredLogger
}

func NewFixer(logger *zap.SugaredLogger) *Fixer {
	return &Fixer{logger: logger}
}

// FixStrict replaces the item value with its canonical form. On failure the
// error is returned and the item is left untouched, so the caller must
// reject the write.
func (f *Fixer) FixStrict(item *models.Item) (any, error) {
	value, err := Coerce(item.Value, item.Type)
	if err != nil {
		return nil, err
	}
	item.Value = Canonical(value)
	return value, nil
}

// FixLenient nulls out an unconvertible value instead of failing, logging a
// warning. Used by administrative save paths where availability wins over
// fidelity.
func (f *Fixer) FixLenient(item *models.Item) any {
	value, err := Coerce(item.Value, item.Type)
	if err != nil {
		raw := ""
		if item.Value != nil {
			raw = *item.Value
		}
		f.logger.Warnf("convert item value[%s] by type[%s] failed", raw, item.Type)
		item.Value = nil
		return nil
	}
	item.Value = Canonical(value)
	return value
}
