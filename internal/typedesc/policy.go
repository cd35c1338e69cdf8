package typedesc

// Action is the outcome of a type or size comparison.
type Action int

const (
	// Match means no correction is needed.
	Match Action = iota
	// Warn means the mismatch is reported and left alone.
	Warn
	// Promote means the observed type is accepted as a wider form of the
	// declared one and left alone.
	Promote
	// Widen means the column is enlarged to the declared size.
	Widen
)

func (a Action) String() string {
	switch a {
	case Match:
		return "match"
	case Warn:
		return "warn"
	case Promote:
		return "promote"
	case Widen:
		return "widen"
	default:
		return "unknown"
	}
}

// Synonyms maps the names vendors report for a standard type to that type.
// Postgres reports udt_name (INT4, BPCHAR, FLOAT8), which never changes
// whatever the type was declared as.
var Synonyms = map[string]string{
	"INT":                         "INTEGER",
	"INT4":                        "INTEGER",
	"INT2":                        "SMALLINT",
	"INT8":                        "BIGINT",
	"BPCHAR":                      "CHAR",
	"CHARACTER":                   "CHAR",
	"CHARACTER VARYING":           "VARCHAR",
	"FLOAT8":                      "DOUBLE PRECISION",
	"DOUBLE":                      "DOUBLE PRECISION",
	"FLOAT4":                      "REAL",
	"BOOL":                        "BOOLEAN",
	"DECIMAL":                     "NUMERIC",
	"TIMESTAMP WITHOUT TIME ZONE": "TIMESTAMP",
	"TIMESTAMPTZ":                 "TIMESTAMP WITH TIME ZONE",
	"TIME WITHOUT TIME ZONE":      "TIME",
	"TIMETZ":                      "TIME WITH TIME ZONE",
}

// Canonical returns the standard name of a type name.
func Canonical(name string) string {
	if c, ok := Synonyms[name]; ok {
		return c
	}
	return name
}

// AllowedPromotions maps a canonical declared base type to the wider
// observed types that are accepted in its place.
var AllowedPromotions = map[string]map[string]bool{
	"VARCHAR":   set("NVARCHAR", "TEXT", "LONGTEXT", "MEDIUMTEXT", "CLOB", "VARCHAR2", "NVARCHAR2"),
	"VARCHAR2":  set("NVARCHAR2", "CLOB", "NCLOB"),
	"NVARCHAR":  set("NTEXT", "TEXT", "LONGTEXT"),
	"CHAR":      set("NCHAR"),
	"TEXT":      set("LONGTEXT", "MEDIUMTEXT", "CLOB"),
	"SMALLINT":  set("INTEGER", "BIGINT"),
	"INTEGER":   set("BIGINT", "NUMBER"),
	"BIGINT":    set("NUMBER", "NUMERIC"),
	"NUMERIC":   set("NUMBER"),
	"REAL":      set("DOUBLE PRECISION", "FLOAT"),
	"FLOAT":     set("DOUBLE PRECISION"),
	"TIMESTAMP": set("DATETIME", "DATETIME2", "TIMESTAMP WITH TIME ZONE"),
	"DATETIME":  set("DATETIME2", "TIMESTAMP"),
	"BLOB":      set("LONGBLOB", "MEDIUMBLOB", "BYTEA", "IMAGE", "VARBINARY"),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsAllowedPromotion reports whether observed is a sanctioned wider form of
// declared.
func IsAllowedPromotion(declared, observed string) bool {
	return AllowedPromotions[Canonical(declared)][Canonical(observed)]
}

// DecideMismatch decides what to do when the observed base type differs from
// the declared one. Names that are synonyms of each other match. Promotion
// requires the flag, a sanctioned pair and no declared decimal digits, and
// means the observed type is kept.
func DecideMismatch(observed, declared string, decimals int, promote bool) Action {
	if Canonical(observed) == Canonical(declared) {
		return Match
	}
	if !promote {
		return Warn
	}
	if IsAllowedPromotion(declared, observed) && decimals < 0 {
		return Promote
	}
	return Warn
}

// SizeCheck holds the inputs of a size comparison for one column.
type SizeCheck struct {
	ObservedBase     string
	ObservedSize     int
	ObservedMaxBytes int
	Declared         Descriptor
	Widen            bool
	OracleLike       bool
}

// oracleUnicode reports the Oracle VARCHAR2 case whose byte length is four
// times its character length, which is widened to character semantics.
func (c SizeCheck) oracleUnicode() bool {
	return c.OracleLike &&
		c.ObservedBase == "VARCHAR2" &&
		c.ObservedSize > 0 &&
		c.ObservedSize*4 == c.ObservedMaxBytes
}

// Mismatch reports whether the sizes differ or the Oracle unicode case applies.
func (c SizeCheck) Mismatch() bool {
	if c.ObservedSize < 0 || !c.Declared.HasSize() {
		return false
	}
	return c.ObservedSize != c.Declared.Size || c.oracleUnicode()
}

// DecideSizeChange never returns Widen for a declared size below the
// observed one, whatever the flags.
func DecideSizeChange(c SizeCheck) Action {
	if !c.Mismatch() {
		return Match
	}
	if !c.Widen || c.Declared.HasDecimals() {
		return Warn
	}
	if c.Declared.Size < c.ObservedSize {
		return Warn
	}
	if c.Declared.Size > c.ObservedSize || c.oracleUnicode() {
		return Widen
	}
	return Warn
}

// DecimalsMismatch reports a decimal digit difference, which is never corrected.
func DecimalsMismatch(observed int, declared Descriptor) bool {
	return observed >= 0 && declared.HasDecimals() && observed != declared.Decimals
}
