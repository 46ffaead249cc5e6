package catalog

import "strings"

// Canonical type vocabulary. Everything the sources emit collapses onto
// one of these.
const (
	TypeString    = "string"
	TypeNumber    = "number"
	TypeInteger   = "integer"
	TypeBoolean   = "boolean"
	TypeDate      = "date"
	TypeDateTime  = "dateTime"
	TypeTime      = "time"
	TypeReference = "reference"
	TypeBase64    = "base64"
	TypeObject    = "object"
	TypeArray     = "array"
)

var typeTable = map[string]string{
	"string":          TypeString,
	"text":            TypeString,
	"textarea":        TypeString,
	"text area":       TypeString,
	"long textarea":   TypeString,
	"rich textarea":   TypeString,
	"picklist":        TypeString,
	"multipicklist":   TypeString,
	"combobox":        TypeString,
	"email":           TypeString,
	"phone":           TypeString,
	"fax":             TypeString,
	"url":             TypeString,
	"id":              TypeString,
	"anytype":         TypeString,
	"encryptedstring": TypeString,

	"number":   TypeNumber,
	"double":   TypeNumber,
	"currency": TypeNumber,
	"percent":  TypeNumber,
	"decimal":  TypeNumber,

	"int":     TypeInteger,
	"integer": TypeInteger,
	"long":    TypeInteger,

	"boolean":  TypeBoolean,
	"checkbox": TypeBoolean,

	"date":      TypeDate,
	"datetime":  TypeDateTime,
	"date/time": TypeDateTime,
	"time":      TypeTime,

	"reference":     TypeReference,
	"lookup":        TypeReference,
	"master-detail": TypeReference,

	"base64":      TypeBase64,
	"blob":        TypeBase64,
	"address":     TypeObject,
	"location":    TypeObject,
	"geolocation": TypeObject,

	"junctionidlist": TypeArray,
}

// format hints for tokens that collapse onto plain string but carry a
// useful shape the consumer may want to keep.
var formatTable = map[string]string{
	"email":    "email",
	"phone":    "phone",
	"fax":      "phone",
	"url":      "uri",
	"id":       "salesforce-id",
	"currency": "currency",
	"percent":  "percent",
	"datetime": "date-time",
}

// Normalize maps a raw source type token onto the canonical vocabulary.
// Lookup is case-insensitive and trimmed; unknown tokens fall back to
// string. The fallback is deliberate: a batch must never abort because a
// page grew a type token we have not seen before.
func Normalize(raw string) string {
	canonical, ok := typeTable[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return TypeString
	}
	return canonical
}

// FormatFor returns the format hint for a raw type token, or "" when the
// token carries none.
func FormatFor(raw string) string {
	return formatTable[strings.ToLower(strings.TrimSpace(raw))]
}
