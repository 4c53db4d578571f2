// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/dsatutor/internal/api"
	"github.com/jeranaias/dsatutor/internal/credential"
)

// =============================================================================
// LOGIN / REGISTER
// =============================================================================

func readCredentials(env *Env, username string) (api.Credentials, error) {
	var err error
	if username == "" {
		if username, err = env.prompt("Username: "); err != nil {
			return api.Credentials{}, err
		}
	}
	password, err := env.promptPassword("Password: ")
	if err != nil {
		return api.Credentials{}, err
	}
	creds := api.Credentials{Username: strings.TrimSpace(username), Password: password}
	if creds.Username == "" || creds.Password == "" {
		return api.Credentials{}, errors.New("username and password are required")
	}
	return creds, nil
}

func newLoginCmd(envOf func() *Env) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			creds, err := readCredentials(env, username)
			if err != nil {
				return err
			}
			token, err := env.Client.Login(cmd.Context(), creds)
			if err != nil {
				if errors.Is(err, api.ErrUnauthorized) {
					return errors.New("invalid username or password")
				}
				return err
			}
			if err := env.Tokens.Save(cmd.Context(), token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}
			env.Logger.Info("logged in", zap.String("username", creds.Username))

			if env.JSON {
				return NewJSONResponse("login", map[string]string{"username": creds.Username}).Write(env.Out)
			}
			fmt.Fprintln(env.Out, SuccessStyle.Render("Logged in as "+creds.Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	return cmd
}

func newRegisterCmd(envOf func() *Env) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			creds, err := readCredentials(env, username)
			if err != nil {
				return err
			}
			if err := env.Client.Register(cmd.Context(), creds); err != nil {
				var ce *api.ClientError
				if errors.As(err, &ce) && ce.Message != "" {
					return errors.New("registration failed: " + ce.Message)
				}
				return fmt.Errorf("registration failed: %w", err)
			}
			if env.JSON {
				return NewJSONResponse("register", map[string]string{"username": creds.Username}).Write(env.Out)
			}
			fmt.Fprintln(env.Out, SuccessStyle.Render("Registration successful. Please log in."))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when empty)")
	return cmd
}

// =============================================================================
// LOGOUT / STATUS
// =============================================================================

func newLogoutCmd(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			if err := env.Tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			if env.JSON {
				return NewJSONResponse("logout", nil).Write(env.Out)
			}
			fmt.Fprintln(env.Out, "Logged out")
			return nil
		},
	}
}

// StatusReport is the data shown by the status command.
type StatusReport struct {
	LoggedIn  bool       `json:"logged_in"`
	Valid     bool       `json:"valid"`
	UserID    string     `json:"user_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Backend   string     `json:"backend"`
	Error     string     `json:"error,omitempty"`
}

func newStatusCmd(envOf func() *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and whether the backend accepts it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envOf()
			ctx := cmd.Context()
			report := StatusReport{Backend: env.Client.BaseURL()}

			token, err := env.Tokens.Token(ctx)
			switch {
			case errors.Is(err, credential.ErrNoCredential):
			case err != nil:
				report.Error = err.Error()
			default:
				report.LoggedIn = true
				report.UserID = credential.UserID(token, env.Config.Profile.UserID)
				if claims, err := credential.Inspect(token); err == nil && !claims.ExpiresAt.IsZero() {
					exp := claims.ExpiresAt
					report.ExpiresAt = &exp
				}
				if err := env.Client.VerifyToken(ctx, token); err != nil {
					report.Error = err.Error()
				} else {
					report.Valid = true
				}
			}

			if env.JSON {
				return NewJSONResponse("status", report).Write(env.Out)
			}
			printStatus(env, report)
			return nil
		},
	}
}

func printStatus(env *Env, r StatusReport) {
	fmt.Fprintln(env.Out, TitleStyle.Render("dsatutor status"))
	fmt.Fprintln(env.Out, RenderField("Backend", r.Backend))
	if !r.LoggedIn {
		fmt.Fprintln(env.Out, RenderField("Session", "not logged in"))
		if r.Error != "" {
			fmt.Fprintln(env.Out, RenderField("Error", r.Error))
		}
		return
	}
	fmt.Fprintln(env.Out, RenderField("User", r.UserID))
	if r.ExpiresAt != nil {
		fmt.Fprintln(env.Out, RenderField("Expires", r.ExpiresAt.Local().Format(time.RFC1123)))
	}
	fmt.Fprintln(env.Out, RenderField("Session", RenderStatus(r.Valid)))
	if r.Error != "" {
		fmt.Fprintln(env.Out, RenderField("Error", WarningStyle.Render(r.Error)))
	}
}
