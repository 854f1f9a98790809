package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/anggasct/animfsm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition.yaml>",
	Short: "Check a definition for declaration errors",
	Long:  `Builds the controller described by the definition and reports every duplicate declaration, unknown state or unknown flag.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, path string) error {
	def, err := animfsm.LoadDefinition(path)
	if err != nil {
		return err
	}

	controller, err := def.Build(nil)
	if err != nil {
		return fmt.Errorf("validation failed:\n%w", describe(err))
	}

	fmt.Fprintf(out, "%s is valid: %d states, %d transitions, %d flags, %d triggers (starts in %q)\n",
		path,
		len(controller.States()),
		len(controller.Transitions()),
		len(controller.FlagNames()),
		len(controller.TriggerNames()),
		controller.CurrentStateName(),
	)
	return nil
}

// describe prefixes every joined error with its code
func describe(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return fmt.Errorf("  [%s] %w", animfsm.GetErrorCode(err), err)
	}
	var errs []error
	for _, e := range joined.Unwrap() {
		errs = append(errs, fmt.Errorf("  [%s] %w", animfsm.GetErrorCode(e), e))
	}
	return errors.Join(errs...)
}
