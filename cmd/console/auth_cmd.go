package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"positions-console/internal/session"
	"positions-console/internal/util"
)

type credentialsOptions struct {
	username string
	password string
}

func (o *credentialsOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&o.password, "password", "p", "", "password; read from stdin when omitted")
}

// resolve fills in a missing password from the first line of stdin.
func (o *credentialsOptions) resolve(c *cli) error {
	o.username = util.CleanField(o.username)
	if o.username == "" {
		return withCode(exitUsage, fmt.Errorf("--username is required"))
	}
	if o.password != "" {
		return nil
	}

	fmt.Fprint(c.errOut, "Password: ")
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && line == "" {
		return withCode(exitUsage, fmt.Errorf("no password given"))
	}
	o.password = strings.TrimRight(line, "\r\n")
	return nil
}

func newLoginCmd(c *cli) *cobra.Command {
	opts := &credentialsOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.resolve(c); err != nil {
				return err
			}

			core, err := c.core(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer core.Close()

			token, err := core.Client.Login(cmd.Context(), opts.username, opts.password)
			if err != nil {
				return remoteError(err)
			}
			if err := core.Sessions.Begin(cmd.Context(), token); err != nil {
				return err
			}

			s := session.Display(token, core.Log)
			fmt.Fprintf(c.out, "Welcome back, %s!\n", s.Username)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	opts := &credentialsOptions{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.resolve(c); err != nil {
				return err
			}

			core, err := c.core(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.Client.Register(cmd.Context(), opts.username, opts.password); err != nil {
				return remoteError(err)
			}

			fmt.Fprintln(c.out, "Registration Successful! Run `positions-console login` to sign in.")
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer core.Close()

			if err := core.Guard.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := c.core(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer core.Close()

			decision := core.Guard.Enter(cmd.Context())
			if !decision.Allowed() {
				return withCode(exitUnauthorized, fmt.Errorf("not signed in"))
			}

			s := decision.Session
			fmt.Fprintf(c.out, "Welcome back, %s!\n", s.Username)
			fmt.Fprintf(c.out, "Role: %s\n", s.Role)
			if !s.ExpiresAt.IsZero() {
				fmt.Fprintf(c.out, "Expires: %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
			}
			if showToken {
				fmt.Fprintf(c.out, "Token: %s\n", decision.Token)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showToken, "show-token", false, "print the raw access token")
	return cmd
}
