package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/biosecret/go-todo/client"
	"github.com/biosecret/go-todo/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func (a *app) ok(msg string) {
	fmt.Fprintln(a.out, successStyle.Render("✔ "+msg))
}

// prompt reads one line from stdin when a flag was left empty.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo on a terminal and falls back to a line
// read when stdin is piped.
func promptPassword(cmd *cobra.Command) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(cmd, "Password")
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func (a *app) saveSession(res *client.AuthResult) error {
	sess, err := a.sessions.Save(res.Token)
	if err != nil {
		return err
	}
	if sess.ExpiresAt != nil {
		a.log.Debug("session saved", "expires_at", sess.ExpiresAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *app) signupCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if password == "" {
				if password, err = promptPassword(cmd); err != nil {
					return err
				}
			}
			res, err := a.api.Signup(email, password, name)
			if err != nil {
				return err
			}
			if err := a.saveSession(res); err != nil {
				return err
			}
			a.ok(fmt.Sprintf("signed up as %s <%s>", res.User.Name, res.User.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if password == "" {
				if password, err = promptPassword(cmd); err != nil {
					return err
				}
			}
			res, err := a.api.Login(email, password)
			if err != nil {
				return err
			}
			if err := a.saveSession(res); err != nil {
				return err
			}
			a.ok("logged in as " + res.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.sessions.Clear(); err != nil {
				return err
			}
			a.ok("logged out")
			return nil
		},
	}
}

func (a *app) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.authenticate(); err != nil {
				return err
			}
			user, err := a.api.Me()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your todos",
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.authenticate(); err != nil {
				return err
			}
			todos, err := a.api.ListTodos()
			if err != nil {
				return err
			}
			a.printTodos(todos)
			return nil
		},
	}
}

func (a *app) printTodos(todos []models.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(a.out, mutedStyle.Render("no todos"))
		return
	}
	done := 0
	for _, t := range todos {
		box, title := "☐", t.Title
		if t.Completed {
			box, title = successStyle.Render("☑"), doneStyle.Render(t.Title)
			done++
		}
		line := fmt.Sprintf("%s %s  %s", box, title, mutedStyle.Render(t.ID))
		if t.Description != "" {
			line += "\n    " + mutedStyle.Render(t.Description)
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "\n%d total, %d completed, %d pending\n", len(todos), done, len(todos)-done)
}

func (a *app) addCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.authenticate(); err != nil {
				return err
			}
			todo, err := a.api.CreateTodo(strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			a.ok(fmt.Sprintf("added %q (%s)", todo.Title, todo.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional notes")
	return cmd
}

func (a *app) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a todo between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.authenticate(); err != nil {
				return err
			}
			todos, err := a.api.ListTodos()
			if err != nil {
				return err
			}
			var current *models.Todo
			for i := range todos {
				if todos[i].ID == args[0] {
					current = &todos[i]
					break
				}
			}
			if current == nil {
				return errors.New("no todo with id " + args[0])
			}

			completed := !current.Completed
			todo, err := a.api.UpdateTodo(current.ID, models.TodoPatch{Completed: &completed})
			if err != nil {
				return err
			}
			state := "pending"
			if todo.Completed {
				state = "completed"
			}
			a.ok(fmt.Sprintf("%q is now %s", todo.Title, state))
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.authenticate(); err != nil {
				return err
			}
			if err := a.api.DeleteTodo(args[0]); err != nil {
				return err
			}
			a.ok("removed " + args[0])
			return nil
		},
	}
}
