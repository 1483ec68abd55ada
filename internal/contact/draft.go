package contact

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/conneroisu/contactform/internal/validation"
)

// Draft holds the values entered so far. A nil field was never set.
// Values are kept exactly as entered.
type Draft struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Company     *string `json:"company"`
	PhoneNumber *string `json:"phoneNumber"`
	Note        *string `json:"note"`
}

func (d *Draft) slot(f Field) **string {
	switch f {
	case FieldFirstName:
		return &d.FirstName
	case FieldLastName:
		return &d.LastName
	case FieldEmail:
		return &d.Email
	case FieldCompany:
		return &d.Company
	case FieldPhoneNumber:
		return &d.PhoneNumber
	case FieldNote:
		return &d.Note
	default:
		return nil
	}
}

// Set stores value for f. Unknown fields are ignored.
func (d *Draft) Set(f Field, value string) {
	if p := d.slot(f); p != nil {
		v := value
		*p = &v
	}
}

// Get returns the value of f, or nil when unset.
func (d Draft) Get(f Field) *string {
	if p := d.slot(f); p != nil {
		return *p
	}
	return nil
}

// Value returns the value of f, or "" when unset.
func (d Draft) Value(f Field) string {
	if v := d.Get(f); v != nil {
		return *v
	}
	return ""
}

// Clone returns a deep copy so later edits cannot leak into a snapshot.
func (d Draft) Clone() Draft {
	var out Draft
	for _, f := range Fields {
		if v := d.Get(f); v != nil {
			out.Set(f, *v)
		}
	}
	return out
}

// Inputs describes the draft as form controls for constraint validation.
func (d Draft) Inputs() []validation.Input {
	inputs := make([]validation.Input, 0, len(Fields))
	for _, f := range Fields {
		inputs = append(inputs, validation.Input{
			Name:     f.Name(),
			Type:     f.InputType(),
			Required: f.Required(),
			Value:    d.Get(f),
		})
	}
	return inputs
}

// OwnerIDString is the fixed owner every created contact is attributed to.
const OwnerIDString = "55253720-a134-430a-ac5e-0ffbe88c8790"

// OwnerID is OwnerIDString parsed.
var OwnerID = uuid.MustParse(OwnerIDString)

// Record is the input of the create contact mutation. Unset draft fields
// stay nil and encode as null.
type Record struct {
	UserID      string  `json:"userID"`
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	Company     *string `json:"company"`
	Note        *string `json:"note"`
	PhoneNumber *string `json:"phoneNumber"`
}

// NewRecord builds a fresh Record from a draft snapshot.
func NewRecord(d Draft) Record {
	snapshot := d.Clone()
	return Record{
		UserID:      OwnerID.String(),
		FirstName:   snapshot.FirstName,
		LastName:    snapshot.LastName,
		Email:       snapshot.Email,
		Company:     snapshot.Company,
		Note:        snapshot.Note,
		PhoneNumber: snapshot.PhoneNumber,
	}
}

// Digest is a stable name for the payload. Records with the same values,
// including which fields are null, share a digest.
func (r Record) Digest() string {
	payload, _ := json.Marshal(r)
	return uuid.NewSHA1(OwnerID, payload).String()
}
