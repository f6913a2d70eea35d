package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/takama/daemon"
	"github.com/tauraamui/camarchive/pkg/config"
	"github.com/tauraamui/camarchive/pkg/configdef"
	data "github.com/tauraamui/camarchive/pkg/database"
	"github.com/tauraamui/camarchive/pkg/log"
)

type Service struct {
	daemon.Daemon
}

func newService() (*Service, error) {
	daemonType := daemon.SystemDaemon
	if runtime.GOOS == "darwin" {
		daemonType = daemon.UserAgent
	}

	srv, err := daemon.New(name, description, daemonType)
	if err != nil {
		return nil, err
	}
	return &Service{srv}, nil
}

// Setup creates the config file and run ledger, leaving existing ones alone.
func (service *Service) Setup() (string, error) {
	log.Info("Setting up camarchived service...") //nolint

	err := config.DefaultCreator().Create()
	if err != nil {
		if !errors.Is(err, configdef.ErrConfigAlreadyExists) {
			return "", err
		}
		log.Error(err.Error()) //nolint
	}

	err = data.Setup()
	if err != nil {
		if !errors.Is(err, data.ErrDBAlreadyExists) {
			return "", err
		}
		log.Error(err.Error()) //nolint
	}

	return "Setup successful...", nil
}

func (service *Service) RemoveSetup() (string, error) {
	log.Info("Removing setup for camarchived service...") //nolint
	if err := data.Destroy(); err != nil {
		log.Error("unable to delete database file: %s", err.Error()) //nolint
	}

	return "Removing setup successful...", nil
}

func (service *Service) Manage(action string) (string, error) {
	switch action {
	case "setup":
		return service.Setup()
	case "remove-setup":
		return service.RemoveSetup()
	case "install":
		// the installed service archives the configured cameras
		return service.Install("run")
	case "remove":
		return service.Remove()
	case "start":
		return service.Start()
	case "stop":
		return service.Stop()
	case "status":
		return service.Status()
	}
	return "", fmt.Errorf("unknown service action %q", action)
}

var serviceCmd = &cobra.Command{
	Use:       "service setup | remove-setup | install | remove | start | stop | status",
	Short:     "Manage the camarchived system service",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"setup", "remove-setup", "install", "remove", "start", "stop", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		status, err := service.Manage(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status)
		return nil
	},
}
