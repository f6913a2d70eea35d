package main

import (
	"github.com/spf13/cobra"
	"github.com/tauraamui/camarchive/pkg/config"
	"github.com/tauraamui/camarchive/pkg/log"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write the default configuration file",
	RunE: func(*cobra.Command, []string) error {
		if err := config.DefaultCreator().Create(); err != nil {
			return err
		}
		log.Info("Created default config") //nolint
		return nil
	},
}

var configDestroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete the configuration file",
	RunE: func(*cobra.Command, []string) error {
		return config.DefaultDestroyer().Destroy()
	},
}

func init() {
	configCmd.AddCommand(configCreateCmd, configDestroyCmd)
}
