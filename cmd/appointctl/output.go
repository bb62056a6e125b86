package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/salon-admin/internal/api"
	"github.com/example/salon-admin/internal/application"
)

type statusView struct {
	SignedIn     bool
	Domain       string
	Staff        string
	Email        string
	License      string
	Expires      string
	Installation string
	Access       application.Access
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printStatus(w io.Writer, v statusView) {
	tw := newTable(w)
	if !v.SignedIn {
		fmt.Fprintln(tw, "Signed in:\tno")
		if v.Domain != "" {
			fmt.Fprintf(tw, "Domain:\t%s\n", v.Domain)
		}
		fmt.Fprintf(tw, "Installation:\t%s\n", v.Installation)
		tw.Flush()
		return
	}
	fmt.Fprintln(tw, "Signed in:\tyes")
	fmt.Fprintf(tw, "Domain:\t%s\n", v.Domain)
	fmt.Fprintf(tw, "Staff:\t%s <%s>\n", v.Staff, v.Email)
	if v.License != "" {
		fmt.Fprintf(tw, "Licence:\t%s\n", v.License)
	}
	if v.Expires != "" {
		fmt.Fprintf(tw, "Token expires:\t%s\n", v.Expires)
	}
	fmt.Fprintf(tw, "Installation:\t%s\n", v.Installation)
	tw.Flush()
	printAccess(w, v.Access)
}

func printAccess(w io.Writer, access application.Access) {
	tw := newTable(w)
	fmt.Fprintln(tw, "SECTION\tVIEW\tCREATE\tEDIT\tDELETE")
	rows := []struct {
		name string
		caps application.Capabilities
	}{
		{name: "appointments", caps: access.Appointments},
		{name: "customers", caps: access.Customers},
		{name: "staff", caps: access.Staff},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.name, yesNo(r.caps.CanView), yesNo(r.caps.CanCreate), yesNo(r.caps.CanEdit), yesNo(r.caps.CanDelete))
	}
	tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

func printDashboard(w io.Writer, dash application.Dashboard, lang string) {
	switch {
	case dash.ShowingTomorrow:
		fmt.Fprintln(w, "Tomorrow")
	default:
		fmt.Fprintln(w, "Today")
	}
	if len(dash.Upcoming) == 0 {
		fmt.Fprintln(w, "  No upcoming appointments")
	} else {
		printAppointmentRows(w, dash.Upcoming, lang)
	}
	fmt.Fprintln(w)

	stats := dash.Stats
	tw := newTable(w)
	if dash.StatsErr != nil {
		fmt.Fprintf(tw, "This month:\tunavailable (%v)\n", dash.StatsErr)
	} else {
		fmt.Fprintf(tw, "This month:\t%d (%+d%% vs. %d last month)\n", stats.Month.Current, stats.Month.GrowthPercent, stats.Month.Previous)
	}
	if stats.CustomersKnown {
		fmt.Fprintf(tw, "Customers:\t%d\n", stats.CustomerCount)
	}
	fmt.Fprintf(tw, "Revenue today:\t%.2f\n", stats.TodayRevenue)
	if len(stats.SkippedAppointments) > 0 {
		fmt.Fprintf(tw, "Not priced:\t%s\n", strings.Join(stats.SkippedAppointments, ", "))
	}
	tw.Flush()
}

func printAppointmentRows(w io.Writer, appts []api.Appointment, lang string) {
	tw := newTable(w)
	for _, a := range appts {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t#%s\n", clockTime(a.StartsAt), a.CustomerName, a.ServiceName, a.StaffName, statusLabel(a.Status, lang), a.ID)
	}
	tw.Flush()
}

// clockTime returns HH:MM of a plugin timestamp.
func clockTime(ts string) string {
	if len(ts) >= len("2006-01-02 15:04") {
		return ts[len("2006-01-02 "):len("2006-01-02 15:04")]
	}
	return ts
}

func printBuckets(w io.Writer, list application.AppointmentList, lang string) {
	sections := []struct {
		title string
		appts []api.Appointment
		dated bool
	}{
		{title: "Today", appts: list.Buckets.Today},
		{title: "Tomorrow", appts: list.Buckets.Tomorrow},
		{title: "Later", appts: list.Buckets.Future, dated: true},
	}
	if list.Buckets.Len() == 0 {
		fmt.Fprintln(w, "No upcoming appointments")
		return
	}
	for _, s := range sections {
		if len(s.appts) == 0 {
			continue
		}
		fmt.Fprintln(w, s.title)
		if !s.dated {
			printAppointmentRows(w, s.appts, lang)
			continue
		}
		tw := newTable(w)
		for _, a := range s.appts {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t#%s\n", a.StartsAt, a.CustomerName, a.ServiceName, a.StaffName, statusLabel(a.Status, lang), a.ID)
		}
		tw.Flush()
	}
}

func printAppointmentDetail(w io.Writer, d application.AppointmentDetail) {
	a := d.Appointment
	tw := newTable(w)
	fmt.Fprintf(tw, "Appointment:\t#%s\n", a.ID)
	fmt.Fprintf(tw, "Status:\t%s (%s)\n", d.StatusLabel, d.StatusColor)
	fmt.Fprintf(tw, "Customer:\t%s\n", a.CustomerName)
	fmt.Fprintf(tw, "Email:\t%s\n", a.CustomerEmail)
	if a.CustomerPhone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", a.CustomerPhone)
	}
	fmt.Fprintf(tw, "Service:\t%s\n", a.ServiceName)
	fmt.Fprintf(tw, "Staff:\t%s\n", a.StaffName)
	fmt.Fprintf(tw, "Time:\t%s - %s (%d min)\n", a.StartsAt, clockTime(a.EndsAt), d.DurationMinutes)
	if a.Notes != "" {
		fmt.Fprintf(tw, "Notes:\t%s\n", a.Notes)
	}
	actions := make([]string, 0, 2)
	if d.Capabilities.CanEdit {
		actions = append(actions, "status")
	}
	if d.Capabilities.CanDelete {
		actions = append(actions, "delete")
	}
	if len(actions) > 0 {
		fmt.Fprintf(tw, "Actions:\t%s\n", strings.Join(actions, ", "))
	}
	tw.Flush()
}

func printCustomers(w io.Writer, customers []api.Customer) {
	if len(customers) == 0 {
		fmt.Fprintln(w, "No customers found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, c := range customers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.Email, c.Phone)
	}
	tw.Flush()
}

func printCustomerDetail(w io.Writer, d application.CustomerDetail, lang string) {
	c := d.Customer
	tw := newTable(w)
	fmt.Fprintf(tw, "Customer:\t%s\n", c.FullName())
	fmt.Fprintf(tw, "Email:\t%s\n", c.Email)
	fmt.Fprintf(tw, "Phone:\t%s\n", c.Phone)
	if d.HistoryHidden {
		tw.Flush()
		return
	}
	fmt.Fprintf(tw, "Appointments:\t%d (%d upcoming)\n", d.History.Total, d.History.Upcoming)
	tw.Flush()
	if len(d.History.Appointments) > 0 {
		tw = newTable(w)
		for _, a := range d.History.Appointments {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t#%s\n", a.StartsAt, a.ServiceName, statusLabel(a.Status, lang), a.ID)
		}
		tw.Flush()
	}
}

func printStaff(w io.Writer, members []api.Staff) {
	if len(members) == 0 {
		fmt.Fprintln(w, "No staff members found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE")
	for _, m := range members {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, m.Phone)
	}
	tw.Flush()
}

func printServices(w io.Writer, services []api.Service) {
	if len(services) == 0 {
		fmt.Fprintln(w, "No services found")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tMINUTES\tPRICE\tACTIVE")
	for _, s := range services {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.DurationMinutes, s.Price, yesNo(s.IsActive()))
	}
	tw.Flush()
}

func printTheme(w io.Writer, theme application.Theme) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Theme:\t%s\n", theme.Mode)
	if theme.Fallback {
		fmt.Fprintln(tw, "Note:\tsalon colours unavailable, showing the standard palette")
	}
	fmt.Fprintf(tw, "Primary:\t%s\n", theme.Palette.Primary)
	fmt.Fprintf(tw, "Primary light:\t%s\n", theme.Palette.PrimaryLight)
	fmt.Fprintf(tw, "Background:\t%s\n", theme.Palette.Background)
	tw.Flush()
}
