package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"health-portal/internal/portal"
	"health-portal/internal/records"
)

// listFlags are the filter and sort flags shared by every list command.
type listFlags struct {
	status string
	search string
	sort   string
}

func (f *listFlags) bind(cmd *cobra.Command, statusHelp, defaultSort string) {
	cmd.Flags().StringVar(&f.status, "status", records.StatusAll, statusHelp)
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive text search")
	cmd.Flags().StringVar(&f.sort, "sort", defaultSort, "date, -date or name")
}

func (f *listFlags) query() (records.Criteria, records.Order, error) {
	o, err := records.ParseOrder(f.sort)
	if err != nil {
		return records.Criteria{}, records.OrderNone, err
	}
	return records.Criteria{Status: f.status, SearchTerm: f.search}, o, nil
}

// withStore opens the store and hands it to run.
func withStore(a *app, run func(cmd *cobra.Command, st *portal.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := a.openStore(cmd)
		if err != nil {
			return err
		}
		return run(cmd, st, args)
	}
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show upcoming appointments, recent records and unread messages",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			now := a.now()
			renderDashboard(cmd.OutOrStdout(), st.Viewer(), st.Dashboard(now), now)
			return nil
		}),
	}
}

func newAppointmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "List and manage appointments",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			c, o, err := lf.query()
			if err != nil {
				return err
			}
			renderAppointments(cmd.OutOrStdout(), st.Viewer(), st.Appointments(c, o))
			return nil
		}),
	}
	lf.bind(list, "all, scheduled, completed, cancelled or no-show", string(records.OrderDateAsc))

	cancel := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a scheduled appointment",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			return st.CancelAppointment(cmd.Context(), args[0])
		}),
	}

	reschedule := &cobra.Command{
		Use:   "reschedule ID",
		Short: "Ask to move a scheduled appointment",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			_, err := st.RequestReschedule(cmd.Context(), args[0])
			return err
		}),
	}

	cmd.AddCommand(list, cancel, reschedule)
	return cmd
}

func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse medical records",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List medical records",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			c, o, err := lf.query()
			if err != nil {
				return err
			}
			renderMedicalRecords(cmd.OutOrStdout(), st.MedicalRecords(c, o))
			return nil
		}),
	}
	lf.bind(list, "all, examination, test, procedure or note", string(records.OrderDateDesc))

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one medical record",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			r, err := st.MedicalRecord(args[0])
			if err != nil {
				return err
			}
			renderMedicalRecord(cmd.OutOrStdout(), r)
			return nil
		}),
	}

	cmd.AddCommand(list, show)
	return cmd
}

func newPrescriptionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prescriptions",
		Aliases: []string{"rx"},
		Short:   "List prescriptions and request renewals",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List prescriptions",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			c, o, err := lf.query()
			if err != nil {
				return err
			}
			renderPrescriptions(cmd.OutOrStdout(), st.Prescriptions(c, o), a.now())
			return nil
		}),
	}
	lf.bind(list, "all, active, completed or cancelled", string(records.OrderNone))

	renew := &cobra.Command{
		Use:   "renew ID",
		Short: "Ask the prescriber to renew an active prescription",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			_, err := st.RequestRenewal(cmd.Context(), args[0])
			return err
		}),
	}

	cmd.AddCommand(list, renew)
	return cmd
}

func newMessagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   "Read and send secure messages",
	}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List messages",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			c, o, err := lf.query()
			if err != nil {
				return err
			}
			renderMessages(cmd.OutOrStdout(), st.Viewer(), st.Messages(c, o))
			return nil
		}),
	}
	lf.bind(list, "all, read, unread or urgent", string(records.OrderDateDesc))

	read := &cobra.Command{
		Use:   "read ID",
		Short: "Open a message, marking it read",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			m, err := st.ViewMessage(cmd.Context(), args[0])
			if m != nil {
				renderMessage(cmd.OutOrStdout(), m)
			}
			return err
		}),
	}

	var d records.Draft
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a new message",
		Args:  cobra.NoArgs,
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, _ []string) error {
			d.RecipientName = a.directoryName(d.RecipientID)
			m, err := st.SendMessage(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s\n", m.ID)
			return nil
		}),
	}
	send.Flags().StringVar(&d.RecipientID, "to", "", "recipient user id")
	send.Flags().StringVar(&d.Subject, "subject", "", "subject line")
	send.Flags().StringVar(&d.Content, "content", "", "message body")
	send.Flags().BoolVar(&d.Urgent, "urgent", false, "mark the message urgent")

	var (
		content string
		urgent  bool
	)
	reply := &cobra.Command{
		Use:   "reply ID",
		Short: "Reply to a message",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(a, func(cmd *cobra.Command, st *portal.Store, args []string) error {
			m, err := st.Reply(cmd.Context(), args[0], content, urgent)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s\n", m.ID)
			return nil
		}),
	}
	reply.Flags().StringVar(&content, "content", "", "message body")
	reply.Flags().BoolVar(&urgent, "urgent", false, "mark the reply urgent")

	cmd.AddCommand(list, read, send, reply)
	return cmd
}
