package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticketflex/internal/app"
	"github.com/spec-kit/ticketflex/internal/auth"
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/forms"
	"github.com/spec-kit/ticketflex/internal/service"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

type builder func(ctx context.Context) (*app.Container, error)

// cli carries the container across subcommands. It is built lazily in the
// root's PersistentPreRunE so --help never touches a backend.
type cli struct {
	out       io.Writer
	build     builder
	container *app.Container
}

func newRootCmd(out io.Writer, build builder) *cobra.Command {
	c := &cli{out: out, build: build}

	root := &cobra.Command{
		Use:           "ticketctl",
		Short:         "Operate the ticket store from the command line",
		Long:          "ticketctl drives the same forms and services as the HTTP API. Use STORE_DRIVER=redis or postgres to share state between invocations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			container, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			c.container = container
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.container != nil {
				c.container.Close()
			}
		},
	}
	root.SetOut(out)

	root.AddCommand(c.signupCmd(), c.loginCmd(), c.logoutCmd(), c.whoamiCmd(), c.dashboardCmd(), c.ticketsCmd())
	return root
}

func (c *cli) signupCmd() *cobra.Command {
	var values forms.SignupValues
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := forms.NewSignupController(c.container.Auth)
			form.Dispatch(forms.SetField{Field: forms.FieldFullName, Value: values.FullName})
			form.Dispatch(forms.SetField{Field: forms.FieldEmail, Value: values.Email})
			form.Dispatch(forms.SetField{Field: forms.FieldPassword, Value: values.Password})
			form.Dispatch(forms.SetField{Field: forms.FieldConfirmPassword, Value: values.ConfirmPassword})

			sub, err := form.Submit()
			if err != nil {
				return err
			}
			user, err := sub.Wait()
			if err != nil {
				return c.formFailure(form.State().Errors)
			}
			fmt.Fprintf(c.out, "Signup successful for %s. You can now log in.\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&values.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&values.Email, "email", "", "email address")
	cmd.Flags().StringVar(&values.Password, "password", "", "password (at least 6 characters)")
	cmd.Flags().StringVar(&values.ConfirmPassword, "confirm", "", "password confirmation")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var values forms.LoginValues
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := forms.NewLoginController(c.container.Auth)
			form.Dispatch(forms.SetField{Field: forms.FieldEmail, Value: values.Email})
			form.Dispatch(forms.SetField{Field: forms.FieldPassword, Value: values.Password})

			sub, err := form.Submit()
			if err != nil {
				return err
			}
			session, err := sub.Wait()
			if err != nil {
				return c.formFailure(form.State().Errors)
			}
			fmt.Fprintf(c.out, "Logged in as %s.\n", session.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&values.Email, "email", "", "email address")
	cmd.Flags().StringVar(&values.Password, "password", "", "password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.container.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session and check its token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.container.Auth.CurrentSession(cmd.Context())
			if err != nil {
				return errLoginRequired
			}
			fmt.Fprintf(c.out, "Logged in as %s.\n", session.Email)

			jwtMinter, ok := c.container.Minter.(*auth.JWTMinter)
			if !ok {
				fmt.Fprintln(c.out, "Token: opaque")
				return nil
			}
			subject, err := jwtMinter.Parse(session.Token)
			if err != nil {
				fmt.Fprintf(c.out, "Token: invalid (%v)\n", err)
				return nil
			}
			if subject != session.Email {
				fmt.Fprintf(c.out, "Token: issued to %s\n", subject)
				return nil
			}
			fmt.Fprintln(c.out, "Token: valid")
			return nil
		},
	}
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show ticket counts by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.container.Auth.CurrentSession(cmd.Context())
			if err != nil {
				return errLoginRequired
			}
			overview, err := c.container.Dashboard.Overview(cmd.Context(), *session)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Welcome, %s\n", overview.FullName)
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Open\t%d\n", overview.Stats.Open)
			fmt.Fprintf(w, "In Progress\t%d\n", overview.Stats.InProgress)
			fmt.Fprintf(w, "Closed\t%d\n", overview.Stats.Closed)
			fmt.Fprintf(w, "Total\t%d\n", overview.Stats.Total)
			return w.Flush()
		},
	}
}

func (c *cli) ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Manage tickets",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if _, err := c.container.Auth.CurrentSession(cmd.Context()); err != nil {
				return errLoginRequired
			}
			return nil
		},
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tickets, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tickets := c.container.Tickets.List(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(c.out)
				enc.SetIndent("", "  ")
				return enc.Encode(tickets)
			}
			if len(tickets) == 0 {
				fmt.Fprintln(c.out, "No tickets yet.")
				return nil
			}
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tCREATED")
			for _, t := range tickets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Priority, t.Status, t.CreatedAt)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var input ticketFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a ticket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ticket, err := c.container.Tickets.Create(cmd.Context(), c.actor(cmd), input.toInput())
			if err != nil {
				return c.serviceFailure(err)
			}
			fmt.Fprintf(c.out, "Ticket #%d created.\n", ticket.ID)
			return nil
		},
	}
	input.register(add)

	var changes ticketFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := c.container.Tickets.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			ticket, err := c.container.Tickets.Update(cmd.Context(), c.actor(cmd), id, changes.over(cmd, *current))
			if err != nil {
				return c.serviceFailure(err)
			}
			fmt.Fprintf(c.out, "Ticket #%d updated.\n", ticket.ID)
			return nil
		},
	}
	changes.register(update)

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.container.Tickets.Delete(cmd.Context(), c.actor(cmd), id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Ticket #%d deleted.\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}

type ticketFlags struct {
	title       string
	description string
	priority    string
	status      string
}

func (f *ticketFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "ticket title")
	cmd.Flags().StringVar(&f.description, "description", "", "ticket description")
	cmd.Flags().StringVar(&f.priority, "priority", string(domain.TicketPriorityLow), "Low, Medium or High")
	cmd.Flags().StringVar(&f.status, "status", string(domain.TicketStatusOpen), "Open, In Progress or Closed")
}

// over starts from ticket's current fields and applies only the flags set on
// cmd.
func (f *ticketFlags) over(cmd *cobra.Command, ticket domain.Ticket) service.TicketInput {
	input := service.TicketInput{
		Title:       ticket.Title,
		Description: ticket.Description,
		Priority:    ticket.Priority,
		Status:      ticket.Status,
	}
	flags := cmd.Flags()
	if flags.Changed("title") {
		input.Title = f.title
	}
	if flags.Changed("description") {
		input.Description = f.description
	}
	if flags.Changed("priority") {
		input.Priority = domain.TicketPriority(f.priority)
	}
	if flags.Changed("status") {
		input.Status = domain.TicketStatus(f.status)
	}
	return input
}

func (f *ticketFlags) toInput() service.TicketInput {
	return service.TicketInput{
		Title:       f.title,
		Description: f.description,
		Priority:    domain.TicketPriority(f.priority),
		Status:      domain.TicketStatus(f.status),
	}
}

var errLoginRequired = errors.New("not logged in: run `ticketctl login` first")

func (c *cli) actor(cmd *cobra.Command) string {
	session, err := c.container.Auth.CurrentSession(cmd.Context())
	if err != nil {
		return ""
	}
	return session.Email
}

// formFailure prints field errors in a stable order and returns a short
// summary error.
func (c *cli) formFailure(errs forms.FieldErrors) error {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(c.out, "%s: %s\n", field, errs[field])
	}
	return errors.New("submission rejected")
}

func (c *cli) serviceFailure(err error) error {
	if errorutil.HasCode(err, errorutil.CodeValidationFailed) {
		return c.formFailure(errorutil.FieldErrors(err))
	}
	return err
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ticket id %q", raw)
	}
	return id, nil
}
