package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/contactform/internal/contact"
)

// contactFlagNames maps each form field to its command-line flag.
var contactFlagNames = map[contact.Field]string{
	contact.FieldFirstName:   "first-name",
	contact.FieldLastName:    "last-name",
	contact.FieldEmail:       "email",
	contact.FieldCompany:     "company",
	contact.FieldNote:        "note",
	contact.FieldPhoneNumber: "phone",
}

// ContactFlags holds one flag per form field. Only flags given on the command
// line become field changes, so an omitted flag leaves the field unset.
type ContactFlags struct {
	set    *pflag.FlagSet
	values map[contact.Field]*string
}

// NewContactFlags builds the field flag set.
func NewContactFlags() *ContactFlags {
	cf := &ContactFlags{
		set:    pflag.NewFlagSet("contact", pflag.ContinueOnError),
		values: make(map[contact.Field]*string, len(contact.Fields)),
	}
	for _, f := range contact.Fields {
		cf.values[f] = cf.set.String(contactFlagNames[f], "", fmt.Sprintf("contact %s", f.Name()))
	}
	return cf
}

// AddTo registers the field flags on cmd.
func (cf *ContactFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().AddFlagSet(cf.set)
}

// Changes returns a FieldChange for every flag that was set, in record order.
func (cf *ContactFlags) Changes() []contact.FieldChange {
	var changes []contact.FieldChange
	for _, f := range contact.Fields {
		if cf.set.Changed(contactFlagNames[f]) {
			changes = append(changes, contact.Change(f, *cf.values[f]))
		}
	}
	return changes
}

// Apply feeds the set flags to form.
func (cf *ContactFlags) Apply(form *contact.Form) {
	for _, change := range cf.Changes() {
		form.OnFieldChange(change)
	}
}
