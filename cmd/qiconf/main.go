// Command qiconf composes and inspects the services stack configuration.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/logger"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/schemagen"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/services"
	"github.com/zhifengzhang-sz/qi-v2-dp-sub007/pkg/source"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	servicesPath string
	secretsPath  string
	logLevel     string
	logFormat    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "qiconf",
		Short:         "Compose and inspect the services stack configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.servicesPath, "services", "f", "services.yaml", "path to the structural services file")
	root.PersistentFlags().StringVarP(&flags.secretsPath, "secrets", "s", ".env", "path to the secrets env file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newValidateCmd(flags))
	root.AddCommand(newLoadCmd(flags))
	root.AddCommand(newSchemaCmd())
	return root
}

func buildLogger(flags *rootFlags) logger.Logger {
	return logger.NewZapLogger(logger.Config{
		Level:  logger.Level(flags.logLevel),
		Format: logger.Format(flags.logFormat),
	})
}

// newValidateCmd checks both sources without composing a bundle. All
// violations are reported, not just the first.
func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the structural and secret sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := services.NewEngine(services.WithLogger(buildLogger(flags)))
			if err != nil {
				return err
			}
			reg := engine.Registry()

			var failed bool
			if _, err := source.LoadServices(source.File(flags.servicesPath), reg); err != nil {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "structural source %s:\n%v\n", flags.servicesPath, err)
			}
			if _, err := source.LoadSecrets(source.File(flags.secretsPath), reg); err != nil {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "secret source %s:\n%v\n", flags.secretsPath, err)
			}
			if failed {
				return errors.New("validation failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "both sources valid")
			return nil
		},
	}
}

// newLoadCmd runs the full composition and prints redacted diagnostics.
func newLoadCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Compose the configuration and print redacted diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := services.NewEngine(services.WithLogger(buildLogger(flags)))
			if err != nil {
				return err
			}
			bundle, err := engine.Load(cmd.Context(), source.File(flags.servicesPath), source.File(flags.secretsPath))
			if err != nil {
				return err
			}
			diag, err := bundle.Diagnostics()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), diag)
			return nil
		},
	}
}

// newSchemaCmd prints the JSON Schema for the typed configuration.
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the composed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schemagen.MarshalIndent()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
