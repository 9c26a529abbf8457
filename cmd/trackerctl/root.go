package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"tracker/internal/client"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigName = ".trackerctl.yaml"

type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:           "trackerctl",
		Short:         "Command-line client for the tracker API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("url", "http://localhost:8080", "API base URL")
	flags.String("token", "", "Bearer token (stored by login)")
	flags.String("config", "", "Config file (default $HOME/"+defaultConfigName+")")
	flags.String("log-level", "warn", "Log level")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix("TRACKER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.loginCmd())
	root.AddCommand(a.tasksCmd())
	root.AddCommand(a.notificationsCmd())

	return root
}

// load reads the optional config file and sets up logging. Flags and
// TRACKER_* variables override values from the file.
func (a *app) load(cmd *cobra.Command) error {
	a.v.SetConfigFile(a.configPath())
	a.v.SetConfigType("yaml")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return err
		}
	}

	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())
	return nil
}

func (a *app) configPath() string {
	if path := a.v.GetString("config"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(home, defaultConfigName)
}

func (a *app) client() *client.Client {
	return client.New(a.v.GetString("url"), a.v.GetString("token"))
}
