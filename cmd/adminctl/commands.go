package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/client"
	"github.com/dtroode/themekeeper/internal/tui"
)

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "themes":
		return a.themes(ctx, rest)
	case "users":
		return a.users(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func (a *app) themes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: themes needs a subcommand", errUsage)
	}
	switch args[0] {
	case "list":
		return a.themesList(ctx, args[1:])
	case "browse":
		return a.themesBrowse(ctx)
	case "create":
		return a.themesWrite(ctx, "", args[1:])
	case "update":
		key, rest, err := positional(args[1:], "KEY")
		if err != nil {
			return err
		}
		return a.themesWrite(ctx, key, rest)
	case "delete":
		key, _, err := positional(args[1:], "KEY")
		if err != nil {
			return err
		}
		return a.themesDelete(ctx, key)
	default:
		return fmt.Errorf("%w: unknown themes subcommand %q", errUsage, args[0])
	}
}

func (a *app) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: users needs a subcommand", errUsage)
	}
	switch args[0] {
	case "list":
		return a.usersList(ctx, args[1:])
	case "show":
		uid, _, err := positional(args[1:], "UID")
		if err != nil {
			return err
		}
		return a.usersShow(ctx, uid)
	case "create":
		return a.usersCreate(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown users subcommand %q", errUsage, args[0])
	}
}

// positional splits off a leading positional argument.
func positional(args []string, name string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s is required", errUsage, name)
	}
	return args[0], args[1:], nil
}

// call returns an authorized context bounded by the configured timeout.
func (a *app) call(ctx context.Context) (context.Context, context.CancelFunc, error) {
	token, err := a.tokens.Load()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(client.WithToken(ctx, token), a.cfg.Timeout)
	return ctx, cancel, nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.String("email", "", "administrator email")
	password := fs.String("password", "", "password, read from stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("%w: --email is required", errUsage)
	}
	if *password == "" {
		fmt.Fprint(a.out, "Password: ")
		line, err := readLine(a.in)
		if err != nil {
			return err
		}
		*password = line
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	resp, err := a.api.SignIn(ctx, adminapi.SignInRequest{Email: *email, Password: *password})
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}
	if err := a.tokens.Save(resp.AccessToken); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", *email)
	return nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errors.New("no password given")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func (a *app) logout() error {
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) themesList(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("themes list", pflag.ContinueOnError)
	query := fs.StringP("query", "q", "", "case-insensitive title filter")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	list, err := a.api.ListThemes(ctx, adminapi.ThemeQuery{Query: *query})
	if err != nil {
		return err
	}
	if list.Notice != "" {
		fmt.Fprintln(a.out, list.Notice)
	}
	if !list.Loaded {
		fmt.Fprintln(a.out, "Themes are still loading")
		return nil
	}
	if list.NoResults {
		fmt.Fprintln(a.out, "No themes found")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTITLE")
	for _, theme := range list.Themes {
		fmt.Fprintf(tw, "%s\t%s\n", theme.Key, deref(theme.Title))
	}
	return tw.Flush()
}

func (a *app) themesBrowse(ctx context.Context) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(client.WithToken(ctx, token))
	defer cancel()

	watch, err := a.api.WatchThemes(ctx, adminapi.ThemeQuery{})
	if err != nil {
		return err
	}

	states := make(chan adminapi.ThemeList)
	go func() {
		defer close(states)
		for {
			list, err := watch.Recv()
			if err != nil {
				return
			}
			select {
			case states <- list:
			case <-ctx.Done():
				return
			}
		}
	}()

	remove := func(key string) (string, error) {
		callCtx, callCancel := context.WithTimeout(client.WithToken(context.Background(), token), a.cfg.Timeout)
		defer callCancel()
		ack, err := a.api.DeleteTheme(callCtx, adminapi.ThemeKey{Key: key})
		if err != nil {
			return "", err
		}
		return ack.Message, nil
	}

	_, err = tea.NewProgram(tui.NewBrowser(states, remove), tea.WithAltScreen()).Run()
	return err
}

func (a *app) themesWrite(ctx context.Context, key string, args []string) error {
	fs := pflag.NewFlagSet("themes write", pflag.ContinueOnError)
	title := fs.String("title", "", "theme title")
	theory := fs.String("theory", "", "theory text")
	examples := fs.String("examples", "", "examples text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	req := adminapi.ThemeWrite{Key: key, Title: *title, Theory: *theory, Examples: *examples}
	var theme adminapi.Theme
	if key == "" {
		theme, err = a.api.CreateTheme(ctx, req)
	} else {
		theme, err = a.api.UpdateTheme(ctx, req)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved theme %s (%s)\n", theme.Key, deref(theme.Title))
	return nil
}

func (a *app) themesDelete(ctx context.Context, key string) error {
	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	ack, err := a.api.DeleteTheme(ctx, adminapi.ThemeKey{Key: key})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, ack.Message)
	return nil
}

func (a *app) usersList(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("users list", pflag.ContinueOnError)
	reload := fs.Bool("reload", false, "fetch the list from the backend again")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	list, err := a.api.ListUsers(ctx, adminapi.UserQuery{Reload: *reload})
	if err != nil {
		return err
	}
	if !list.Loaded {
		fmt.Fprintln(a.out, "Users are not loaded")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tNAME\tEMAIL\tROLE")
	for _, user := range list.Users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", user.UID, user.DisplayName, deref(user.Email), user.Role)
	}
	return tw.Flush()
}

func (a *app) usersShow(ctx context.Context, uid string) error {
	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	card, err := a.api.GetUser(ctx, adminapi.UserRef{UID: uid})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "UID\t%s\n", card.UID)
	fmt.Fprintf(tw, "Name\t%s\n", card.FullName)
	fmt.Fprintf(tw, "Email\t%s\n", card.Email)
	fmt.Fprintf(tw, "Role\t%s\n", card.Role)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, card.PasswordNote)
	fmt.Fprintln(a.out, card.DeletionNote)
	return nil
}

func (a *app) usersCreate(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("users create", pflag.ContinueOnError)
	email := fs.String("email", "", "account email")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	password := fs.String("password", "", "initial password")
	role := fs.String("role", "", "role, the default role when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel, err := a.call(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	created, err := a.api.CreateUser(ctx, adminapi.NewUser{
		Email:     *email,
		FirstName: *firstName,
		LastName:  *lastName,
		Password:  *password,
		Role:      *role,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, created.Message)
	fmt.Fprintf(a.out, "uid: %s\nemail: %s\npassword: %s\n", created.UID, created.Email, created.Password)
	fmt.Fprintln(a.out, "The password is shown only once.")
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
