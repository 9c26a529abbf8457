package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store the token in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = a.v.GetString("password")
			}
			if password == "" {
				return fmt.Errorf("password is required (--password or TRACKER_PASSWORD)")
			}

			session, err := a.client().Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			// written with a fresh viper so the password never reaches disk
			out := viper.New()
			out.Set("url", a.v.GetString("url"))
			out.Set("token", session.Token)
			path := a.configPath()
			if err := out.WriteConfigAs(path); err != nil {
				return fmt.Errorf("saving token: %w", err)
			}
			a.log.WithField("config", path).Debug("token saved")

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", session.User.Name, session.User.Email)
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "Account password")
	_ = a.v.BindEnv("password", "TRACKER_PASSWORD")

	return cmd
}
