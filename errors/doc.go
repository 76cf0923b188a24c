// Package errors provides structured error types for the m5csv decoder.
//
// Errors are categorized by Stage (where in decoding the error occurred)
// and Kind (error category). The Error type includes rich context: a
// structural location path (block/read/row), the semantic field name,
// the offending raw value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.StageSettings, errors.KindFieldParse).
//		Field("row span").
//		Value("abc").
//		Detail("not an integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.FieldParse(errors.StageSettings, "row span", "abc", cause)
//	err := errors.UnsupportedPlateSize(48)
//
// Assemblers attach structural location as errors propagate upward:
//
//	return errors.Locate(err, errors.BlockTag(i))
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
