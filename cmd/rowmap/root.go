package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jacoelho/rowmap/internal/apperr"
	"github.com/jacoelho/rowmap/internal/config"
)

type globalOptions struct {
	configFile string
	v          *viper.Viper
}

// load resolves configuration once flags have been parsed.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return nil, apperr.New(http.StatusBadRequest, "invalid configuration", err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "rowmap",
		Short: "Project JSON documents into flat rows",
		Long: `rowmap turns JSON documents into flat rows using declarative field mappings,
then filters, sorts and paginates them. Documents can come from files, URLs,
Redis keys or S3 objects; mappings can be saved and served over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file (YAML, JSON or TOML)")
	cmd.PersistentFlags().String("log-level", "INFO", "Log level: DEBUG, INFO, WARN or ERROR")
	cmd.PersistentFlags().String("log-format", "json", "Log format: json or text")
	_ = opts.v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = opts.v.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.BadRequest(err.Error())
	})

	cmd.AddCommand(
		newServeCommand(opts),
		newApplyCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "rowmap "+version)
		},
	}
}
