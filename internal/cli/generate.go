package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/vk/nusig/internal/app"
	"github.com/vk/nusig/internal/config"
)

func newGenerateCommand(root *rootOptions, loader config.Loader) *cobra.Command {
	var cfg app.Config
	cmd := &cobra.Command{
		Use:   "generate [PATH...]",
		Short: "Write <file>_nusig.go for every Go file with directives",
		Long: `Scans the given files and directories (default: the current directory) for
//nusig:make directives and writes the generated variables next to each source
file. A directive that fails still produces a variable whose initializer does
not type-check, and the command exits with status 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Paths = args
			cfg.LogLevel = root.logLevel
			cfg.LogFormat = root.logFormat

			appConfig, err := app.NewConfig(cfg)
			if err != nil {
				return usageError("%v", err)
			}
			a, err := app.NewApp(cmd.ErrOrStderr(), appConfig, loader)
			if err != nil {
				return failure(err)
			}

			if appConfig.Watch {
				err = a.Watch(cmd.Context())
			} else {
				_, err = a.Run(cmd.Context())
			}
			if err != nil {
				var genErr *app.GenerationError
				if errors.As(err, &genErr) {
					return &ExitError{Code: ExitFailure}
				}
				return failure(err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&cfg.Workers, "workers", "w", 0, "Number of files generated concurrently. 0 uses GOMAXPROCS.")
	flags.StringVarP(&cfg.ConfigFile, "config", "c", "", "Settings file (default: "+config.DefaultFile+" if present).")
	flags.StringVar(&cfg.Qualifier, "qualifier", "", "Package name the generated code uses for the runtime.")
	flags.StringVar(&cfg.ImportPath, "import", "", "Import path of the runtime package.")
	flags.StringVar(&cfg.Suffix, "suffix", "", "Suffix of generated files.")
	flags.BoolVar(&cfg.Watch, "watch", false, "Keep running and regenerate files as they change.")
	return cmd
}
