// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/rolodex/internal/config"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// NewRootCmd creates the root rolodex command with all subcommands
// registered. Each root owns its own Viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "rolodex",
		Short:         "rolodex: contact book service",
		Long:          "rolodex serves a contact book over HTTP with prefix search, relationships and call logging.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd, v)
		},
	}

	// Global flags. These map to viper keys via initViper.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().String("data-dir", "", "path to data directory")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInitCmd(),
		newStartCmd(v),
		newStatusCmd(v),
		newSearchCmd(v),
		newVersionCmd(),
	)

	return root
}

// initViper sets up v with defaults, .env and environment bindings, flag
// bindings and an optional config file, so the standard precedence
// (flag > env > file > defaults) is handled uniformly.
func initViper(cmd *cobra.Command, v *viper.Viper) error {
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted so Viper does not match the bare
		// ./rolodex binary as a config file.
		v.SetConfigName("rolodex")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/rolodex")
		v.AddConfigPath("/etc/rolodex")
		// No config file is fine. Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
		}
	}

	flags := cmd.Root().PersistentFlags()
	if f := flags.Lookup("data-dir"); f.Changed {
		v.Set("data_dir", f.Value.String())
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return sigilerr.Errorf(sigilerr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
