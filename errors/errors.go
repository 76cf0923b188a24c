package errors

import (
	"fmt"
	"strings"
)

// Stage indicates where in decoding the error occurred
type Stage string

const (
	StageHeader   Stage = "header"   // ##BLOCKS= file header
	StageSettings Stage = "settings" // block settings row
	StageGrid     Stage = "grid"     // well-value grid rows
	StageBlock    Stage = "block"    // block framing (unit header, sentinel)
	StageFile     Stage = "file"     // file-level assembly
	StageOutput   Stage = "output"   // CSV serialization
)

// Kind categorizes the error
type Kind string

const (
	KindMissingMagic         Kind = "missing_magic"
	KindMalformedCount       Kind = "malformed_count"
	KindTruncatedSettings    Kind = "truncated_settings"
	KindUnknownEnum          Kind = "unknown_enum"
	KindUnsupportedVariant   Kind = "unsupported_variant"
	KindUnsupportedPlateSize Kind = "unsupported_plate_size"
	KindUnsupportedUnit      Kind = "unsupported_unit"
	KindMissingSentinel      Kind = "missing_sentinel"
	KindFieldParse           Kind = "field_parse"
	KindPrematureEOF         Kind = "premature_eof"
	KindReadFailure          Kind = "read_failure"
	KindStrictViolation      Kind = "strict_violation"
)

// Error is the structured error type used throughout the decoder
type Error struct {
	Value  any
	Cause  error
	Stage  Stage
	Kind   Kind
	Field  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}

	if e.Detail != "" {
		if e.Field != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Value != nil {
		fmt.Fprintf(&b, " (value %v)", e.Value)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a decoder Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// Path sets the structural location path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Field sets the semantic field name
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// Value sets the offending raw value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Location tags used in error paths. Assemblers prepend these as an
// error travels up from the failing token to the file level, so the
// rendered message names the exact block/read/row.

// BlockTag formats the location tag for a block index.
func BlockTag(i int) string {
	return fmt.Sprintf("block[%d]", i)
}

// ReadTag formats the location tag for a read (timepoint) index.
func ReadTag(i int) string {
	return fmt.Sprintf("read[%d]", i)
}

// RowTag formats the location tag for a grid row index.
func RowTag(i int) string {
	return fmt.Sprintf("row[%d]", i)
}

// Locate prepends location tags to a structured error's path. Errors
// of other types are wrapped so the location survives rendering.
func Locate(err error, tags ...string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		e.Path = append(append([]string{}, tags...), e.Path...)
		return e
	}
	return &Error{
		Stage: StageFile,
		Kind:  KindFieldParse,
		Path:  tags,
		Cause: err,
	}
}

// Convenience constructors, one per taxonomy member

// MissingMagic creates an error for a header missing the magic token
func MissingMagic(got string) *Error {
	return &Error{
		Stage:  StageHeader,
		Kind:   KindMissingMagic,
		Detail: "missing ##BLOCKS= magic token",
		Value:  got,
	}
}

// MalformedCount creates an error for an unparseable block count
func MalformedCount(raw string, cause error) *Error {
	return &Error{
		Stage:  StageHeader,
		Kind:   KindMalformedCount,
		Detail: "block count is not an unsigned 16-bit integer",
		Value:  raw,
		Cause:  cause,
	}
}

// TruncatedSettings creates an error for a settings row with too few tokens
func TruncatedSettings(got, want int) *Error {
	return &Error{
		Stage:  StageSettings,
		Kind:   KindTruncatedSettings,
		Detail: fmt.Sprintf("settings row has %d tokens, need at least %d", got, want),
	}
}

// UnknownEnum creates an error for an unrecognized enum string
func UnknownEnum(kind, value string) *Error {
	return &Error{
		Stage:  StageSettings,
		Kind:   KindUnknownEnum,
		Field:  kind,
		Detail: "unrecognized value",
		Value:  value,
	}
}

// UnsupportedVariant creates an error for a (read type, read mode)
// combination with no layout table entry
func UnsupportedVariant(readType, readMode string) *Error {
	return &Error{
		Stage:  StageSettings,
		Kind:   KindUnsupportedVariant,
		Detail: fmt.Sprintf("no field layout for read type %q with read mode %q", readType, readMode),
	}
}

// UnsupportedPlateSize creates an error for a plate size other than 96 or 384
func UnsupportedPlateSize(wells int) *Error {
	return &Error{
		Stage:  StageSettings,
		Kind:   KindUnsupportedPlateSize,
		Detail: fmt.Sprintf("plate size %d wells (supported: 96, 384)", wells),
		Value:  wells,
	}
}

// UnsupportedUnit creates an error for an unrecognized temperature unit header
func UnsupportedUnit(got string) *Error {
	return &Error{
		Stage:  StageBlock,
		Kind:   KindUnsupportedUnit,
		Detail: "temperature unit header does not contain Temperature(°C)",
		Value:  got,
	}
}

// MissingSentinel creates an error for a block not terminated by ~End
func MissingSentinel(got string) *Error {
	return &Error{
		Stage:  StageBlock,
		Kind:   KindMissingSentinel,
		Detail: "expected ~End block sentinel",
		Value:  got,
	}
}

// FieldParse creates an error for a token that failed to parse as its
// target type, tagged with the field's semantic name
func FieldParse(stage Stage, field, raw string, cause error) *Error {
	return &Error{
		Stage: stage,
		Kind:  KindFieldParse,
		Field: field,
		Value: raw,
		Cause: cause,
	}
}

// PrematureEOF creates an error for input ending mid-structure
func PrematureEOF(stage Stage, expected string) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindPrematureEOF,
		Detail: fmt.Sprintf("input ended while reading %s", expected),
	}
}

// ReadFailure creates an error for an input read that failed for a
// reason other than end of input
func ReadFailure(stage Stage, expected string, cause error) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindReadFailure,
		Detail: fmt.Sprintf("read failed while reading %s", expected),
		Cause:  cause,
	}
}

// StrictViolation creates an error for a strict-mode validation failure
func StrictViolation(stage Stage, detail string, value any) *Error {
	return &Error{
		Stage:  stage,
		Kind:   KindStrictViolation,
		Detail: detail,
		Value:  value,
	}
}
