package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"stickynotes/internal/auth"
	"stickynotes/internal/database/dto"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	userEmail    string
	userPassword string
	userStaff    bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if cfg.Database.Driver != "postgres" {
			return errMemoryDriver
		}
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openAuth(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		form := dto.SignupForm{
			Username:  args[0],
			Email:     userEmail,
			Password1: password,
			Password2: password,
		}
		create := svc.CreateUser
		if userStaff {
			create = svc.CreateStaffUser
		}
		user, err := create(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openAuth(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		users, err := svc.Users(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tEMAIL\tSTAFF\tJOINED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", u.Username, u.Email, u.IsStaff, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Replace a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openAuth(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		if err := svc.SetPassword(cmd.Context(), args[0], password); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", args[0])
		return nil
	},
}

func openAuth(cmd *cobra.Command) (*auth.Service, *stores, error) {
	st, err := openStores(cmd.Context(), false)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewService(st.users, nil, nil, zlog), st, nil
}

// readPassword takes --password, or the first line of stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userCreateCmd.Flags().BoolVar(&userStaff, "staff", false, "Grant staff status")
	_ = userCreateCmd.MarkFlagRequired("email")
	for _, c := range []*cobra.Command{userCreateCmd, userSetPasswordCmd} {
		c.Flags().StringVar(&userPassword, "password", "", "Password (read from stdin when omitted)")
	}

	userCmd.AddCommand(userCreateCmd, userListCmd, userSetPasswordCmd)
	rootCmd.AddCommand(userCmd)
}
