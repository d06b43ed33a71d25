// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/rolodex/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long:  "Write the commented default configuration to --path (default ~/.config/rolodex/rolodex.yaml) unless a file already exists.",
		RunE:  runInit,
	}

	cmd.Flags().String("path", "", "where to write the config file")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	written, err := config.WriteDefault(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !written {
		_, err = fmt.Fprintf(out, "Config already exists at %s\n", path)
		return err
	}
	_, err = fmt.Fprintf(out, "Wrote default config to %s\n", path)
	return err
}
