// Package typedesc parses configured SQL type strings into comparable
// descriptors and decides which observed/declared mismatches may be corrected
// automatically.
package typedesc

import (
	"fmt"
	"strconv"
	"strings"

	"db-reconcile/internal/model"
)

// Unit is the Oracle length semantics suffix of a character type.
type Unit string

const (
	UnitNone Unit = ""
	UnitByte Unit = "BYTE"
	UnitChar Unit = "CHAR"
)

// Descriptor is a parsed SQL type. Size and Decimals are -1 when absent.
type Descriptor struct {
	Base     string
	Size     int
	Decimals int
	Unit     Unit
}

func (d Descriptor) String() string {
	switch {
	case d.Size < 0:
		return d.Base
	case d.Decimals >= 0:
		return fmt.Sprintf("%s(%d,%d)", d.Base, d.Size, d.Decimals)
	case d.Unit != UnitNone:
		return fmt.Sprintf("%s(%d %s)", d.Base, d.Size, d.Unit)
	default:
		return fmt.Sprintf("%s(%d)", d.Base, d.Size)
	}
}

// HasSize reports whether a size was declared.
func (d Descriptor) HasSize() bool { return d.Size >= 0 }

// HasDecimals reports whether decimal digits were declared.
func (d Descriptor) HasDecimals() bool { return d.Decimals >= 0 }

// Parse splits a type string such as "NUMERIC(18,2)" or "VARCHAR2(60 CHAR)".
// Malformed size clauses produce warnings, never errors; the affected part of
// the descriptor is left unset.
func Parse(sqlType string, oracleLike bool) (Descriptor, []string) {
	d := Descriptor{Size: -1, Decimals: -1}
	var warnings []string

	open := strings.IndexByte(sqlType, '(')
	if open < 0 {
		d.Base = normalizeBase(sqlType)
		return d, nil
	}
	d.Base = normalizeBase(sqlType[:open])
	end := strings.IndexByte(sqlType[open:], ')')
	if end < 0 {
		warnings = append(warnings, fmt.Sprintf("type [%s] has an unterminated size clause", sqlType))
		return d, warnings
	}
	inner := strings.TrimSpace(sqlType[open+1 : open+end])

	if comma := strings.IndexByte(inner, ','); comma >= 0 {
		size, err := strconv.Atoi(strings.TrimSpace(inner[:comma]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("type [%s] has a non-numeric size [%s]", sqlType, inner[:comma]))
			return d, warnings
		}
		d.Size = size
		decimals, err := strconv.Atoi(strings.TrimSpace(inner[comma+1:]))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("type [%s] has non-numeric decimal digits [%s]", sqlType, inner[comma+1:]))
			return d, warnings
		}
		d.Decimals = decimals
		return d, warnings
	}

	parts := strings.Fields(inner)
	if len(parts) == 0 {
		warnings = append(warnings, fmt.Sprintf("type [%s] has an empty size clause", sqlType))
		return d, warnings
	}
	size, err := strconv.Atoi(parts[0])
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("type [%s] has a non-numeric size [%s]", sqlType, parts[0]))
		return d, warnings
	}
	d.Size = size
	if len(parts) == 1 {
		return d, warnings
	}
	ext := Unit(strings.ToUpper(parts[1]))
	if oracleLike && len(parts) == 2 && (ext == UnitByte || ext == UnitChar) {
		d.Unit = ext
		return d, warnings
	}
	warnings = append(warnings, fmt.Sprintf("type [%s] has an unrecognized size extension [%s], ignoring it", sqlType, strings.Join(parts[1:], " ")))
	return d, warnings
}

// FromFieldType parses a field type's SQL type. A configured alias replaces
// the base name used for comparison; size and decimals still come from SQLType.
func FromFieldType(ft *model.FieldType, oracleLike bool) (Descriptor, []string) {
	d, warnings := Parse(ft.SQLType, oracleLike)
	if ft.SQLTypeAlias != "" {
		d.Base = normalizeBase(ft.SQLTypeAlias)
	}
	return d, warnings
}

func normalizeBase(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
