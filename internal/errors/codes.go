// Package errors centralizes the interpreter's diagnostic codes and output
// formatting, in the style of the teacher's internal/errors/codes.go.
package errors

// Code identifies one diagnosable failure kind. Codes are grouped by the
// pipeline stage that raises them.
type Code string

const (
	// Lexing/parsing.
	ParUnexpectedToken Code = "PAR001"
	ParUnexpectedEnd   Code = "PAR002"
	ParIndent          Code = "PAR003"
	ParTokensRemaining Code = "PAR004"
	ParUnknownOperator Code = "PAR005"
	ParBadNumber       Code = "PAR006"
	ParBadEscape       Code = "PAR007"

	// Module resolution/loading.
	ModNotFound  Code = "MOD001"
	ModCycle     Code = "MOD002"
	ModReadError Code = "MOD003"
	ModParse     Code = "MOD004"

	// Type checking.
	ChkUnify        Code = "CHK001"
	ChkUnboundVar   Code = "CHK002"
	ChkArity        Code = "CHK003"
	ChkNotAFunction Code = "CHK004"

	// Evaluation.
	EvlUnboundVar    Code = "EVL001"
	EvlNotAFunction  Code = "EVL002"
	EvlTypeMismatch  Code = "EVL003"
	EvlNoMatchingArm Code = "EVL004"
	EvlDivideByZero  Code = "EVL005"
)
