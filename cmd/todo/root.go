package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/biosecret/go-todo/client"
	"github.com/biosecret/go-todo/client/dashboard"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand.
type app struct {
	log      *log.Logger
	api      *client.Client
	sessions *client.SessionStore
	out      io.Writer

	apiURL         string
	settingsPath   string
	credentialsDir string
	verbose        bool
}

var timeNow = time.Now

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "todo",
		Short:         "Manage your todos from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return a.runDashboard()
		},
	}
	root.SetOut(a.out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "API base URL (default from config.toml or "+client.APIURLEnv+")")
	flags.StringVar(&a.settingsPath, "config", "", "path to config.toml")
	flags.StringVar(&a.credentialsDir, "credentials-dir", "", "directory holding credentials.json")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.meCmd(),
		a.listCmd(),
		a.addCmd(),
		a.toggleCmd(),
		a.rmCmd(),
		&cobra.Command{
			Use:   "dashboard",
			Short: "Open the interactive dashboard",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.runDashboard()
			},
		},
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := log.InfoLevel
	if a.verbose {
		level = log.DebugLevel
	}
	a.log = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "todo",
	})

	path := a.settingsPath
	if path == "" {
		p, err := client.SettingsPath()
		if err != nil {
			return err
		}
		path = p
	}
	settings, err := client.LoadSettings(path)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		settings.APIURL = a.apiURL
	}
	a.log.Debug("settings loaded", "path", path, "api_url", settings.APIURL)

	a.api = client.New(settings.APIURL, nil)
	a.sessions = client.NewSessionStore(a.credentialsDir)
	return nil
}

// authenticate loads the stored token into the API client.
func (a *app) authenticate() error {
	sess, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil || sess.Expired(timeNow()) {
		return dashboard.ErrNotLoggedIn
	}
	a.log.Debug("using session", "source", sess.Source)
	a.api.SetToken(sess.Token)
	return nil
}

func (a *app) runDashboard() error {
	return dashboard.Run(a.api, a.sessions)
}

func (a *app) report(err error) {
	if a.log == nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	var apiErr *client.APIError
	switch {
	case errors.Is(err, dashboard.ErrNotLoggedIn):
		a.log.Error("not logged in, run `todo login` first")
	case errors.As(err, &apiErr):
		a.log.Error(apiErr.Message, "status", apiErr.Status)
	default:
		a.log.Error(err.Error())
	}
}
