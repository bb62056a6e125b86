package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/example/salon-admin/internal/agenda"
	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/application"
)

type command struct {
	name         string
	usage        string
	summary      string
	needsSession bool
	run          func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{name: "connect", usage: "connect <domain>", summary: "check and remember the salon domain", run: runConnect},
		{name: "login", usage: "login <email>", summary: "sign in (password from APPOINT_PASSWORD or stdin)", run: runLogin},
		{name: "logout", usage: "logout", summary: "sign out, keeping theme and language", run: runLogout},
		{name: "status", usage: "status", summary: "show the session", run: runStatus},
		{name: "refresh-permissions", usage: "refresh-permissions", summary: "reload the profile and permissions", needsSession: true, run: runRefreshPermissions},
		{name: "dashboard", usage: "dashboard", summary: "today's remaining appointments and stats", needsSession: true, run: runDashboard},
		{name: "appointments", usage: "appointments [--staff id]", summary: "upcoming appointments by day", needsSession: true, run: runAppointments},
		{name: "appointment", usage: "appointment <sub> ...", summary: "show, status, delete or create an appointment", needsSession: true, run: runAppointment},
		{name: "customers", usage: "customers [query]", summary: "list customers", needsSession: true, run: runCustomers},
		{name: "customer", usage: "customer <sub> <id>", summary: "show or delete a customer", needsSession: true, run: runCustomer},
		{name: "staff", usage: "staff [query]", summary: "list staff members", needsSession: true, run: runStaff},
		{name: "services", usage: "services [--all]", summary: "list services", needsSession: true, run: runServices},
		{name: "theme", usage: "theme [standard|custom]", summary: "show or set the colour theme", run: runTheme},
		{name: "language", usage: "language [code]", summary: "show or set the language", run: runLanguage},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

var errUsage = errors.New("invalid arguments, see appointctl --help")

func runConnect(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	domain, err := a.sessions.ConnectDomain(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.store.SaveDomain(ctx, domain); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Connected to %s\n", domain)
	return nil
}

func runLogin(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	domain := a.store.Domain(ctx)
	if domain == "" {
		return errors.New("no salon domain yet, run `appointctl connect <domain>` first")
	}

	password := a.env("APPOINT_PASSWORD")
	if password == "" {
		var err error
		if password, err = readLine(a.stdin); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}

	profile, err := a.sessions.Login(ctx, application.LoginParams{Domain: domain, Email: args[0], Password: password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", profile.Name)
	return nil
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	installation, err := a.store.InstallationID(ctx)
	if err != nil {
		return err
	}
	profile := a.store.StaffProfile(ctx)
	token := a.store.Token(ctx)
	if profile == nil || token == "" {
		printStatus(a.out, statusView{Domain: a.store.Domain(ctx), Installation: installation})
		return nil
	}

	view := statusView{
		SignedIn:     true,
		Domain:       a.store.Domain(ctx),
		Staff:        profile.Name,
		Email:        profile.Email,
		Installation: installation,
		Access:       a.permissions.Current(ctx),
	}
	if license := a.store.License(ctx); license != nil {
		view.License = license.Type
	}
	if expiry, err := api.TokenExpiry(token); err == nil {
		view.Expires = expiry.In(a.cfg.Location).Format(time.DateTime)
	}
	printStatus(a.out, view)
	return nil
}

func runRefreshPermissions(ctx context.Context, a *app, _ []string) error {
	profile, err := a.sessions.RefreshPermissions(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Permissions refreshed for %s\n", profile.Name)
	printAccess(a.out, a.permissions.Current(ctx))
	return nil
}

func runDashboard(ctx context.Context, a *app, _ []string) error {
	dash, err := a.appointments.Dashboard(ctx)
	if err != nil {
		return err
	}
	printDashboard(a.out, dash, a.lang(ctx))
	return nil
}

func runAppointments(ctx context.Context, a *app, args []string) error {
	flags := pflag.NewFlagSet("appointments", pflag.ContinueOnError)
	staffID := flags.String("staff", "", "only this staff member")
	if err := flags.Parse(args); err != nil {
		return err
	}
	list, err := a.appointments.Upcoming(ctx, *staffID)
	if err != nil {
		return err
	}
	printBuckets(a.out, list, a.lang(ctx))
	return nil
}

func runAppointment(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		if len(rest) != 1 {
			return errUsage
		}
		detail, err := a.appointments.Detail(ctx, rest[0])
		if err != nil {
			return err
		}
		printAppointmentDetail(a.out, detail)
	case "status":
		if len(rest) != 2 {
			return errUsage
		}
		if err := a.appointments.UpdateStatus(ctx, rest[0], rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Appointment %s is now %s\n", rest[0], rest[1])
	case "delete":
		if len(rest) != 1 {
			return errUsage
		}
		if err := a.appointments.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Appointment %s deleted\n", rest[0])
	case "create":
		return createAppointment(ctx, a, rest)
	default:
		return errUsage
	}
	return nil
}

func createAppointment(ctx context.Context, a *app, args []string) error {
	flags := pflag.NewFlagSet("appointment create", pflag.ContinueOnError)
	name := flags.String("name", "", "customer name")
	email := flags.String("email", "", "customer email")
	phone := flags.String("phone", "", "customer phone")
	service := flags.String("service", "", "service id")
	staff := flags.String("staff", "", "staff id, defaults to you")
	date := flags.String("date", "", "day as YYYY-MM-DD")
	at := flags.String("time", "", "start as HH:MM")
	status := flags.String("status", "", "pending, confirmed or cancelled")
	notes := flags.String("notes", "", "notes")
	if err := flags.Parse(args); err != nil {
		return err
	}

	params := application.CreateAppointmentParams{
		CustomerName:  *name,
		CustomerEmail: *email,
		CustomerPhone: *phone,
		ServiceID:     *service,
		StaffID:       *staff,
		Status:        *status,
		Notes:         *notes,
		Hour:          -1,
		Minute:        -1,
	}
	if params.StaffID == "" {
		form, err := a.appointments.FormData(ctx)
		if err != nil {
			return err
		}
		params.StaffID = form.DefaultStaffID
	}
	if *date != "" {
		day, err := time.ParseInLocation(time.DateOnly, *date, a.cfg.Location)
		if err != nil {
			return fmt.Errorf("date must look like 2025-03-14")
		}
		params.Date = day
	}
	if *at != "" {
		clock, err := time.Parse("15:04", *at)
		if err != nil {
			return fmt.Errorf("time must look like 14:30")
		}
		params.Hour, params.Minute = clock.Hour(), clock.Minute()
	}

	id, err := a.appointments.Create(ctx, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Appointment %s created\n", id)
	return nil
}

func runCustomers(ctx context.Context, a *app, args []string) error {
	customers, err := a.customers.List(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printCustomers(a.out, customers)
	return nil
}

func runCustomer(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	switch args[0] {
	case "show":
		detail, err := a.customers.Detail(ctx, args[1])
		if err != nil {
			return err
		}
		printCustomerDetail(a.out, detail, a.lang(ctx))
	case "delete":
		if err := a.customers.Delete(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Customer %s deleted\n", args[1])
	default:
		return errUsage
	}
	return nil
}

func runStaff(ctx context.Context, a *app, args []string) error {
	members, err := a.staff.List(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	printStaff(a.out, members)
	return nil
}

func runServices(ctx context.Context, a *app, args []string) error {
	flags := pflag.NewFlagSet("services", pflag.ContinueOnError)
	all := flags.Bool("all", false, "include inactive services")
	if err := flags.Parse(args); err != nil {
		return err
	}
	services, err := a.catalog.Services(ctx, !*all)
	if err != nil {
		return err
	}
	printServices(a.out, services)
	return nil
}

func runTheme(ctx context.Context, a *app, args []string) error {
	var (
		theme application.Theme
		err   error
	)
	switch len(args) {
	case 0:
		theme, err = a.theme.Initialize(ctx)
	case 1:
		mode, ok := application.ParseThemeMode(args[0])
		if !ok {
			return fmt.Errorf("unknown theme %q, use standard or custom", args[0])
		}
		theme, err = a.theme.SetMode(ctx, mode)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	printTheme(a.out, theme)
	return nil
}

func runLanguage(ctx context.Context, a *app, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(a.out, a.language.Resolve(ctx, a.env("LANG")))
		return nil
	case 1:
		code, err := a.language.Set(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Language set to %s\n", code)
		return nil
	}
	return errUsage
}

// describeError renders err the way a screen would show it.
func describeError(err error) string {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		return "Please check: " + validation.Summary()
	case errors.Is(err, application.ErrPermissionDenied):
		return "You do not have permission to do this."
	case errors.Is(err, application.ErrNotFound):
		return "Not found."
	case errors.Is(err, application.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, application.ErrConnectionFailed):
		return "Could not reach the salon. Check the domain and try again."
	case errors.Is(err, application.ErrNotAuthenticated):
		return "Your session has expired. Please sign in again."
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func (a *app) lang(ctx context.Context) string {
	return a.language.Resolve(ctx, a.env("LANG"))
}

// statusLabel renders a raw status in the stored language.
func statusLabel(raw, lang string) string {
	label, _ := agenda.Describe(raw, lang)
	return label
}
