package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/contactform/internal/contact"
	"github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/graphql"
	"github.com/conneroisu/contactform/internal/logging"
)

var submitFlags = NewContactFlags()

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one contact from flags",
	Long: `Fill the New Contact form from flags and submit it once.

Only the flags you pass are set; the rest are sent as null. Validation
problems are reported, and with form.block_invalid the mutation is skipped.

Examples:
  contactform submit --first-name Ana --email ana@example.com
  contactform submit --first-name Ana --note "met at the conference"`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitFlags.AddTo(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	client := graphql.NewClientFromConfig(&cfg.API, logger)
	return submitContact(cmd.Context(), cmd.OutOrStdout(), client, logger, formPolicy(cfg), submitFlags)
}

// submitContact mounts a form, applies the given flags, and submits it once.
func submitContact(ctx context.Context, w io.Writer, client contact.Creator, logger logging.Logger, policy contact.Policy, flags *ContactFlags) error {
	creator := &recordingCreator{next: client}
	form := contact.NewForm(creator, contact.NavigatorFunc(func(context.Context, string) error {
		return nil
	}),
		contact.WithLogger(logger),
		contact.WithPolicy(policy),
	)
	flags.Apply(form)

	result := form.OnSubmit(ctx)
	return reportSubmit(w, result, creator.err)
}

// recordingCreator keeps the error the form logs and swallows so the
// command can exit non-zero.
type recordingCreator struct {
	next contact.Creator
	err  error
}

func (c *recordingCreator) CreateContact(ctx context.Context, record contact.Record) error {
	c.err = c.next.CreateContact(ctx, record)
	return c.err
}

func reportSubmit(w io.Writer, result contact.SubmitResult, createErr error) error {
	invalid := errors.NewErrorCollector()
	for _, name := range result.Validity.InvalidNames() {
		field, _ := contact.ParseField(name)
		state := result.Validity.Fields[name]
		message := state.Message(field.InputType())
		fmt.Fprintf(w, "  %s: %s\n", name, message)

		code := errors.ErrCodeTypeMismatch
		if state.ValueMissing {
			code = errors.ErrCodeValueMissing
		}
		invalid.AddError(errors.FieldError(name, code, message))
	}

	switch {
	case !result.Attempted:
		return errors.WrapValidation(invalid.Err(), errors.ErrCodeValidationFailed,
			fmt.Sprintf("not sent, invalid fields: %s", strings.Join(result.Validity.InvalidNames(), ", ")))
	case createErr != nil:
		return createErr
	}

	fmt.Fprintln(w, "Contact submitted")
	return nil
}
