package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-lifewheel/internal/application"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	loaderOpts []application.LoaderOption
}

// newRootCmd builds the command tree. Running the root command starts an
// interview.
func newRootCmd(loaderOpts ...application.LoaderOption) *cobra.Command {
	opts := &rootOptions{loaderOpts: loaderOpts}
	iv := &interviewOptions{root: opts}

	root := &cobra.Command{
		Use:   "lifewheel",
		Short: "Rank your life-wheel categories and keywords",
		Long: `lifewheel asks a series of "which matters more" questions to order
the life-wheel categories, collects three keywords per category, picks
each category's representative keyword and finally ranks those keywords.

Configuration is read from --config (YAML) with LIFEWHEEL_* environment
variables applied on top.`,
		SilenceUsage: true,
		RunE:         iv.run,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML configuration file")
	iv.bindFlags(root)

	interview := &cobra.Command{
		Use:   "interview",
		Short: "Run an interview (the default command)",
		Args:  cobra.NoArgs,
		RunE:  iv.run,
	}
	iv.bindFlags(interview)

	root.AddCommand(interview, newConfigCmd(opts))
	return root
}

// newConfigCmd prints the effective configuration after defaults, file
// and environment are merged and validated.
func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (application.Config, error) {
	loader, err := application.NewConfigLoader(o.loaderOpts...)
	if err != nil {
		return application.Config{}, err
	}
	if o.configPath != "" {
		return loader.LoadFromFile(cmd.Context(), o.configPath)
	}
	var cfg application.Config
	if err := loader.Load(cmd.Context(), &cfg); err != nil {
		return application.Config{}, err
	}
	return cfg, nil
}
