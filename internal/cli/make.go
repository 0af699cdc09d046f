package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/nusig/internal/codegen"
	"github.com/vk/nusig/internal/driver"
	"github.com/vk/nusig/internal/dsl"
)

// tokenArgs joins the positional arguments into one literal token, or reads
// it from stdin when there are none.
func tokenArgs(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", failure(err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", usageError("a signature literal is required")
	}
	return string(b), nil
}

func newMakeCommand() *cobra.Command {
	var qualifier string
	cmd := &cobra.Command{
		Use:   "make [LITERAL]",
		Short: "Print the Go expression for one signature literal",
		Example: `  nusig make 'r#"greet [name: string]: nothing -> string"#'
  echo '"ls [--all(-a)]"' | nusig make`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArgs(cmd, args)
			if err != nil {
				return err
			}
			frag := driver.Make(cmd.Context(), token, codegen.Options{Qualifier: qualifier})
			fmt.Fprintln(cmd.OutOrStdout(), frag.Source)
			if !frag.OK() {
				reportParseError(cmd.ErrOrStderr(), frag.Err)
				return failure(frag.Err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&qualifier, "qualifier", codegen.DefaultQualifier, "Package name the generated code uses for the runtime.")
	return cmd
}

func newFmtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt [LITERAL]",
		Short: "Print the canonical signature text of a literal",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArgs(cmd, args)
			if err != nil {
				return err
			}
			m, err := driver.Model(token)
			if err != nil {
				reportParseError(cmd.ErrOrStderr(), err)
				return failure(err)
			}
			text, err := dsl.Format(m)
			if err != nil {
				return failure(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
