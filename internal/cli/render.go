package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"health-portal/internal/models"
	"health-portal/internal/records"
)

const timestampLayout = "2006-01-02 15:04"

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderUser(w io.Writer, u *models.User) {
	tw := table(w)
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", describeRole(u))
	if u.Department != "" {
		fmt.Fprintf(tw, "Department\t%s\n", u.Department)
	}
	tw.Flush()
}

// counterpart is the other party of an appointment as the viewer sees it.
func counterpart(v records.Viewer, a *models.Appointment) string {
	if v.Role() == models.RolePatient {
		return a.ProviderName
	}
	return a.PatientName
}

func renderAppointments(w io.Writer, v records.Viewer, items []*models.Appointment) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No appointments found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tWITH\tTYPE\tSTATUS\tREASON")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Date, a.Time, counterpart(v, a), a.Type, a.Status, a.Reason)
	}
	tw.Flush()
}

func renderMedicalRecords(w io.Writer, items []*models.MedicalRecord) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No medical records found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tTITLE\tPROVIDER")
	for _, r := range items {
		title := r.Title
		if r.Confidential {
			title += " [confidential]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.Type, title, r.ProviderName)
	}
	tw.Flush()
}

func renderMedicalRecord(w io.Writer, r *models.MedicalRecord) {
	tw := table(w)
	fmt.Fprintf(tw, "Title\t%s\n", r.Title)
	fmt.Fprintf(tw, "Date\t%s\n", r.Date)
	fmt.Fprintf(tw, "Type\t%s\n", r.Type)
	fmt.Fprintf(tw, "Provider\t%s\n", r.ProviderName)
	if len(r.Attachments) > 0 {
		fmt.Fprintf(tw, "Attachments\t%s\n", strings.Join(r.Attachments, ", "))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", r.Description)
}

func renderPrescriptions(w io.Writer, items []*models.Prescription, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No prescriptions found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tMEDICATION\tDOSAGE\tFREQUENCY\tENDS\tREFILLS\tSTATUS")
	for _, p := range items {
		status := string(p.Status)
		if p.Expiring(now) {
			status += " (expiring soon)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Medication, p.Dosage, p.Frequency, p.EndDate, p.Refills, status)
	}
	tw.Flush()
}

func renderMessages(w io.Writer, v records.Viewer, items []*models.Message) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No messages found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tWHEN\tWITH\tSUBJECT\tFLAGS")
	for _, m := range items {
		with := "from " + m.SenderName
		if m.SenderID == v.UserID() {
			with = "to " + m.RecipientName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Timestamp.Format(timestampLayout), with, m.Subject, messageFlags(v, m))
	}
	tw.Flush()
}

func messageFlags(v records.Viewer, m *models.Message) string {
	var flags []string
	if !m.Read && m.RecipientID == v.UserID() {
		flags = append(flags, "unread")
	}
	if m.Urgent {
		flags = append(flags, "urgent")
	}
	return strings.Join(flags, ",")
}

func renderMessage(w io.Writer, m *models.Message) {
	tw := table(w)
	fmt.Fprintf(tw, "From\t%s\n", m.SenderName)
	fmt.Fprintf(tw, "To\t%s\n", m.RecipientName)
	fmt.Fprintf(tw, "Date\t%s\n", m.Timestamp.Format(timestampLayout))
	fmt.Fprintf(tw, "Subject\t%s\n", m.Subject)
	if m.Urgent {
		fmt.Fprintf(tw, "Priority\turgent\n")
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%s\n", m.Content)
}

func renderDashboard(w io.Writer, v records.Viewer, d records.Dashboard, now time.Time) {
	fmt.Fprintf(w, "Welcome, %s\n\n", v.DisplayName())

	fmt.Fprintln(w, "Upcoming appointments")
	renderAppointments(w, v, d.Upcoming)

	fmt.Fprintln(w, "\nRecent medical records")
	renderMedicalRecords(w, d.RecentRecords)

	if v.Role() == models.RolePatient {
		fmt.Fprintf(w, "\nActive prescriptions (%d expiring soon)\n", len(d.Expiring))
		renderPrescriptions(w, d.ActivePrescriptions, now)
	}

	fmt.Fprintf(w, "\nUnread messages: %d\n", len(d.Unread))
}
