package dataset

import "fmt"

// ColumnNotFoundError indicates a requested column is absent from the table.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// MissingValueError indicates a numeric extraction hit a missing or
// non-numeric cell. Fits must fail on these, never paper over them.
type MissingValueError struct {
	Column string
	Row    int
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("column %q has a missing value at row %d", e.Column, e.Row)
}

// UnknownLabelError indicates a status cell carried neither configured label.
type UnknownLabelError struct {
	Column string
	Label  string
	Row    int
}

func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("column %q row %d: unknown label %q", e.Column, e.Row, e.Label)
}
