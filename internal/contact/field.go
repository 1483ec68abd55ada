package contact

import (
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/validation"
)

// Field identifies one editable control of the New Contact form.
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldEmail
	FieldCompany
	FieldPhoneNumber
	FieldNote
)

// Fields lists every field in record order.
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldCompany,
	FieldNote,
	FieldPhoneNumber,
}

var fieldNames = map[Field]string{
	FieldFirstName:   "firstName",
	FieldLastName:    "lastName",
	FieldEmail:       "email",
	FieldCompany:     "company",
	FieldPhoneNumber: "phoneNumber",
	FieldNote:        "note",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(fieldNames))
	for f, name := range fieldNames {
		m[name] = f
	}
	return m
}()

// Name returns the wire name of the field, as used by the form control and
// the GraphQL input.
func (f Field) Name() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return f.Name()
}

// Required reports whether the form control carries the required attribute.
func (f Field) Required() bool {
	return f == FieldFirstName || f == FieldEmail
}

// InputType returns the HTML input type of the control.
func (f Field) InputType() validation.InputType {
	switch f {
	case FieldEmail:
		return validation.InputEmail
	case FieldPhoneNumber:
		return validation.InputTel
	case FieldNote:
		return validation.InputTextarea
	default:
		return validation.InputText
	}
}

// ParseField maps a wire name to a Field. Names outside the form are rejected.
func ParseField(name string) (Field, error) {
	if f, ok := fieldsByName[name]; ok {
		return f, nil
	}
	return 0, errors.ErrUnknownField(name)
}

// FieldChange is a single edit to one field.
type FieldChange struct {
	Field Field
	Value string
}

// Change builds a FieldChange.
func Change(f Field, value string) FieldChange {
	return FieldChange{Field: f, Value: value}
}
