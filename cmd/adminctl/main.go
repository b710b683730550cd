// adminctl is the command line client of the themekeeper admin API.
//
// Connection settings come from ADMINCTL_* environment variables; the
// access token obtained by `adminctl login` is kept in the user config
// directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/client"
	"github.com/dtroode/themekeeper/internal/config"
)

// adminAPI is the part of the admin client the commands use.
type adminAPI interface {
	SignIn(ctx context.Context, req adminapi.SignInRequest, opts ...grpc.CallOption) (adminapi.SignInResponse, error)
	ListThemes(ctx context.Context, req adminapi.ThemeQuery, opts ...grpc.CallOption) (adminapi.ThemeList, error)
	WatchThemes(ctx context.Context, req adminapi.ThemeQuery, opts ...grpc.CallOption) (*adminapi.ThemeWatch, error)
	CreateTheme(ctx context.Context, req adminapi.ThemeWrite, opts ...grpc.CallOption) (adminapi.Theme, error)
	UpdateTheme(ctx context.Context, req adminapi.ThemeWrite, opts ...grpc.CallOption) (adminapi.Theme, error)
	DeleteTheme(ctx context.Context, req adminapi.ThemeKey, opts ...grpc.CallOption) (adminapi.Ack, error)
	ListUsers(ctx context.Context, req adminapi.UserQuery, opts ...grpc.CallOption) (adminapi.UserList, error)
	GetUser(ctx context.Context, req adminapi.UserRef, opts ...grpc.CallOption) (adminapi.UserCard, error)
	CreateUser(ctx context.Context, req adminapi.NewUser, opts ...grpc.CallOption) (adminapi.CreatedUser, error)
}

type app struct {
	cfg    config.Client
	in     io.Reader
	out    io.Writer
	tokens *client.TokenStore
	api    adminAPI
}

// errUsage marks errors that should be followed by the usage text.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.NewClientConfig()
	if err != nil {
		return err
	}

	flagSet := pflag.NewFlagSet("adminctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&cfg.Address, "address", cfg.Address, "admin API address")
	flagSet.BoolVar(&cfg.TLS, "tls", cfg.TLS, "connect with TLS")
	flagSet.StringVar(&cfg.CAFile, "ca-file", cfg.CAFile, "CA certificate for TLS")
	flagSet.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "where the access token is kept")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(os.Stdout)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(os.Stdout)
		return nil
	}

	tokens, err := client.NewTokenStore(cfg.TokenFile)
	if err != nil {
		return err
	}

	conn, err := client.Dial(*cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	a := &app{cfg: *cfg, in: os.Stdin, out: os.Stdout, tokens: tokens, api: conn}
	return a.dispatch(context.Background(), flagSet.Args())
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `adminctl manages themes and users of a themekeeper server.

Usage:
  adminctl [--address host:port] [--tls] <command> [flags]

Commands:
  login --email EMAIL [--password PASSWORD]   sign in as an administrator
  logout                                      forget the saved token
  themes list [-q QUERY]                      list themes matching a title query
  themes browse                               live, filterable theme list
  themes create --title T [--theory T] [--examples E]
  themes update KEY --title T [--theory T] [--examples E]
  themes delete KEY                           delete a theme and its tests
  users list [--reload]                       list user accounts
  users show UID                              show an account card
  users create --email E --first-name F --last-name L --password P [--role R]

Environment:
  ADMINCTL_ADDRESS, ADMINCTL_TLS, ADMINCTL_CA_FILE, ADMINCTL_TOKEN_FILE,
  ADMINCTL_TIMEOUT
`)
}
