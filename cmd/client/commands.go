// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MKhiriev/go-user-gate/internal/adapter"
	"github.com/MKhiriev/go-user-gate/models"
)

// tokenEnv carries the bearer token between invocations; signin prints it.
const tokenEnv = "GO_USER_GATE_TOKEN"

var errUsage = errors.New("usage: client <command> [flags]")

type command struct {
	usage string
	run   func(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error
}

var commands = map[string]command{
	"signup":          {usage: "register a new account", run: runSignUp},
	"signin":          {usage: "sign in and print the session token", run: runSignIn},
	"forgot-password": {usage: "request a one-time code by email", run: runForgotPassword},
	"verify-otp":      {usage: "verify a one-time code", run: runVerifyOTP},
	"reset-password":  {usage: "set a new password with a verified code", run: runResetPassword},
	"profile":         {usage: "show the signed-in user", run: runProfile},
	"change-password": {usage: "change the password of the signed-in user", run: runChangePassword},
	"pending-users":   {usage: "list accounts waiting for approval (admin)", run: runPendingUsers},
	"approve":         {usage: "approve a pending account (admin)", run: runApprove},
	"version":         {usage: "print client and server versions", run: runVersion},
}

// run dispatches args[0] to its command. Flags after the command name belong
// to that command.
func run(ctx context.Context, a adapter.AuthAdapter, args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(out)
	token := fs.String("token", "", "bearer token (default $"+tokenEnv+")")

	return cmd.run(ctx, withToken(a, token), fs, args[1:], out)
}

// withToken applies the -token flag once the command has parsed its flags.
func withToken(a adapter.AuthAdapter, token *string) adapter.AuthAdapter {
	return &tokenOverride{AuthAdapter: a, token: token}
}

type tokenOverride struct {
	adapter.AuthAdapter
	token *string
}

func (t *tokenOverride) apply() {
	if *t.token != "" {
		t.SetToken(*t.token)
	}
}

func printUsage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "Commands:")
	for _, name := range names {
		fmt.Fprintf(out, "  %-16s %s\n", name, commands[name].usage)
	}
}

func parse(a adapter.AuthAdapter, fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if t, ok := a.(*tokenOverride); ok {
		t.apply()
	}

	var missing []string
	for _, name := range required {
		if f := fs.Lookup(name); f != nil && f.Value.String() == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errUsage, strings.Join(missing, ", "))
	}

	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMessage returns a sink for the (message, error) results of the adapter.
func printMessage(out io.Writer) func(msg string, err error) error {
	return func(msg string, err error) error {
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, msg)
		return err
	}
}

func runSignUp(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	username := fs.String("username", "", "login name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	roles := fs.String("roles", "", "comma separated roles: user, mod, admin")
	if err := parse(a, fs, args, "username", "email", "password"); err != nil {
		return err
	}

	req := models.SignUpRequest{Username: *username, Email: *email, Password: *password}
	if *roles != "" {
		req.Roles = strings.Split(*roles, ",")
	}

	return printMessage(out)(a.SignUp(ctx, req))
}

func runSignIn(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password")
	if err := parse(a, fs, args, "username", "password"); err != nil {
		return err
	}

	resp, err := a.SignIn(ctx, models.SignInRequest{Username: *username, Password: *password})
	if err != nil {
		return err
	}

	return printJSON(out, resp)
}

func runForgotPassword(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	email := fs.String("email", "", "email address")
	if err := parse(a, fs, args, "email"); err != nil {
		return err
	}

	return printMessage(out)(a.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: *email}))
}

func runVerifyOTP(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	email := fs.String("email", "", "email address")
	code := fs.String("code", "", "one-time code")
	if err := parse(a, fs, args, "email", "code"); err != nil {
		return err
	}

	return printMessage(out)(a.VerifyOTP(ctx, models.VerifyOTPRequest{Email: *email, OTPCode: *code}))
}

func runResetPassword(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	email := fs.String("email", "", "email address")
	code := fs.String("code", "", "verified one-time code")
	password := fs.String("password", "", "new password")
	if err := parse(a, fs, args, "email", "code", "password"); err != nil {
		return err
	}

	return printMessage(out)(a.ResetPassword(ctx, models.ResetPasswordRequest{
		Email:       *email,
		OTPCode:     *code,
		NewPassword: *password,
	}))
}

func runProfile(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	if err := parse(a, fs, args); err != nil {
		return err
	}

	profile, err := a.Profile(ctx)
	if err != nil {
		return err
	}

	return printJSON(out, profile)
}

func runChangePassword(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "new password")
	if err := parse(a, fs, args, "old", "new"); err != nil {
		return err
	}

	return printMessage(out)(a.ChangePassword(ctx, models.ChangePasswordRequest{
		OldPassword: *oldPassword,
		NewPassword: *newPassword,
	}))
}

func runPendingUsers(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	if err := parse(a, fs, args); err != nil {
		return err
	}

	users, err := a.PendingUsers(ctx)
	if err != nil {
		return err
	}

	return printJSON(out, users)
}

func runApprove(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	id := fs.Int64("id", 0, "user id")
	if err := parse(a, fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id must be positive", errUsage)
	}

	return printMessage(out)(a.ApproveUser(ctx, *id))
}

func runVersion(ctx context.Context, a adapter.AuthAdapter, fs *flag.FlagSet, args []string, out io.Writer) error {
	if err := parse(a, fs, args); err != nil {
		return err
	}

	if _, err := fmt.Fprint(out, models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)); err != nil {
		return err
	}

	version, err := a.Version(ctx)
	return printMessage(out)("Server version: "+version, err)
}
