// =============================================================================
// Inventario - Line Validation
// =============================================================================
//
// This module decides whether the rows of a transaction form are complete
// enough to be registered. The rule is all-or-nothing: one incomplete row
// blocks the whole batch.
//
// VALIDATION RULES:
//   A line is invalid when any of these is empty:
//   1. Product name
//   2. Quantity
//   3. The price of the form's mode (purchase price or sale price)
//
//   Quantity and price are numeric fields. Text that does not parse as a
//   number counts as empty, which is how a number input reports it.
//
// ERROR HANDLING:
//   - Errors are collected, not returned on the first failure
//   - Each error names the line and field so the message can point at it
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/inventario/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents one missing or unusable field.
type ValidationError struct {
	// Line is the 1-based position of the row in display order.
	Line int

	// Field is the human label of the field ("name", "quantity", ...).
	Field string

	// Value is the raw text that failed.
	Value string

	// Rule is the rule that was violated: "required" or "numeric".
	Rule string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d, %s: %s", e.Line, e.Field, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the outcome of validating every line of a form.
type Result struct {
	// IsValid is true when no line has an error.
	IsValid bool

	// Errors contains all validation errors in line order.
	Errors []*ValidationError

	// LinesValidated is the number of lines inspected.
	LinesValidated int
}

// Line is the raw text of one form row as the validator sees it.
type Line struct {
	Name     string
	Quantity string
	Price    string
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateLines validates every line and returns a detailed result.
//
// PARAMETERS:
//   - mode: Selects the label used for the price field.
//   - lines: The rows in display order.
//
// RETURNS:
//   - A Result. IsValid is false if any line has an error.
func ValidateLines(mode types.Mode, lines []Line) *Result {
	result := &Result{
		IsValid:        true,
		Errors:         make([]*ValidationError, 0),
		LinesValidated: len(lines),
	}

	for i, line := range lines {
		errs := ValidateLine(mode, i+1, line)
		if len(errs) > 0 {
			result.IsValid = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	return result
}

// ValidateLine validates a single line.
func ValidateLine(mode types.Mode, number int, line Line) []*ValidationError {
	var errs []*ValidationError

	if strings.TrimSpace(line.Name) == "" {
		errs = append(errs, required(number, "name", line.Name))
	}
	if err := validateAmount(number, "quantity", line.Quantity); err != nil {
		errs = append(errs, err)
	}
	if err := validateAmount(number, PriceLabel(mode), line.Price); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// validateAmount checks a numeric field.
func validateAmount(number int, field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return required(number, field, value)
	}
	if _, ok := ParseAmount(value); !ok {
		return &ValidationError{
			Line:    number,
			Field:   field,
			Value:   value,
			Rule:    "numeric",
			Message: fmt.Sprintf("'%s' is not a number", value),
		}
	}
	return nil
}

func required(number int, field, value string) *ValidationError {
	return &ValidationError{
		Line:    number,
		Field:   field,
		Value:   value,
		Rule:    "required",
		Message: "is required",
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ParseAmount parses the text of a numeric field.
// Surrounding whitespace is ignored. Returns false for empty or non-numeric text.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// PriceLabel returns the label of the price field for a mode.
func PriceLabel(mode types.Mode) string {
	if mode == types.ModeSale {
		return "sale price"
	}
	return "purchase price"
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display.
//
// PARAMETERS:
//   - errs: The validation errors to format.
//
// RETURNS:
//   - A formatted string, one error per line.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString("Please complete all fields:\n")
	for _, err := range errs {
		builder.WriteString("  - ")
		builder.WriteString(err.Error())
		builder.WriteString("\n")
	}

	return builder.String()
}
