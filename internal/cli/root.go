// Package cli is the portal command: the API server and a terminal front-end
// over the same records.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"health-portal/internal/client"
	"health-portal/internal/config"
	"health-portal/internal/fixtures"
	"health-portal/internal/logging"
	"health-portal/internal/models"
	"health-portal/internal/notify"
	"health-portal/internal/portal"
	"health-portal/internal/records"
	"health-portal/internal/session"
)

// demoTokenPrefix marks sessions signed in against the built-in fixtures.
const demoTokenPrefix = "demo:"

var (
	errSignedOut    = errors.New("not signed in; run `portal login`")
	errModeMismatch = errors.New("session belongs to the other mode (--demo or API); sign in again")
	errNoProfile    = errors.New("could not load your profile; try again")
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time

	apiURL      string
	sessionFile string
	reconcile   string
	logLevel    string
	demo        bool
}

// Execute runs the portal command with the process arguments.
func Execute() {
	if err := newRootCmd(&app{now: time.Now}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Patient portal API server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.apiURL, "api-url", "", "API base URL (default $PORTAL_API_URL or "+client.DefaultBaseURL+")")
	f.StringVar(&a.sessionFile, "session-file", "", "where the signed-in session is kept (default $PORTAL_SESSION_FILE)")
	f.StringVar(&a.reconcile, "reconcile", "", "on a rejected change: revert or keep (default $PORTAL_RECONCILE)")
	f.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")
	f.BoolVar(&a.demo, "demo", false, "use the built-in demo records instead of the API")

	root.AddCommand(
		newServeCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newDashboardCmd(a),
		newAppointmentsCmd(a),
		newRecordsCmd(a),
		newPrescriptionsCmd(a),
		newMessagesCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.apiURL == "" {
		a.apiURL = cfg.Client.APIURL
	}
	if a.reconcile == "" {
		a.reconcile = cfg.Client.Reconcile
	}
	// Terminal commands stay quiet unless a level is asked for; the server
	// logs at the configured level.
	if _, set := os.LookupEnv("LOG_LEVEL"); a.logLevel == "" && (set || cmd.Name() == "serve") {
		a.logLevel = cfg.LogLevel
	}
	if a.logLevel == "" {
		a.logLevel = "warn"
	}
	if a.sessionFile == "" {
		a.sessionFile = cfg.Client.SessionFile
	}
	if a.sessionFile == "" {
		if a.sessionFile, err = session.DefaultPath(); err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
	}
	if a.now == nil {
		a.now = time.Now
	}
	a.logger = logging.New(cmd.ErrOrStderr(), a.logLevel, cfg.IsDevelopment())
	return nil
}

func (a *app) sessionStore() session.FileStore { return session.FileStore{Path: a.sessionFile} }

func (a *app) loadSession() (*session.Session, error) {
	s := &session.Session{}
	if err := a.sessionStore().Load(s); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return s, nil
}

func (a *app) notifier(cmd *cobra.Command) notify.Notifier {
	return notify.Multi(
		notify.Writer{Out: cmd.ErrOrStderr()},
		notify.LogNotifier{Logger: a.logger.With().Str("component", "notify").Logger()},
	)
}

func (a *app) client(cmd *cobra.Command, s *session.Session) *client.Client {
	return client.New(a.apiURL, s,
		client.WithNotifier(a.notifier(cmd)),
		client.WithLogger(a.logger),
	)
}

// openStore resolves the signed-in viewer and loads their records, either
// from the API or from the demo fixtures.
func (a *app) openStore(cmd *cobra.Command) (*portal.Store, error) {
	ctx := cmd.Context()
	policy, err := portal.ParsePolicy(a.reconcile)
	if err != nil {
		return nil, err
	}
	s, err := a.loadSession()
	if err != nil {
		return nil, err
	}
	if !s.Active() {
		return nil, errSignedOut
	}
	if isDemoToken(s.Token()) != a.demo {
		return nil, errModeMismatch
	}

	opts := []portal.Option{
		portal.WithNotifier(a.notifier(cmd)),
		portal.WithPolicy(policy),
		portal.WithLogger(a.logger),
		portal.WithClock(a.now),
	}

	var (
		user *models.User
		src  portal.Source
	)
	if a.demo {
		user, src = s.User(), portal.FixtureSource{}
	} else {
		c := a.client(cmd, s)
		if user, err = c.CurrentUser(ctx); err != nil {
			return nil, err
		}
		if user == nil {
			return nil, a.noUser(s)
		}
		src = c
		opts = append(opts, portal.WithRemote(c))
	}

	v, err := records.ViewerFor(user)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errSignedOut
	}
	st := portal.NewStore(v, opts...)
	st.Load(ctx, src)
	return st, nil
}

// noUser explains a missing profile: a rejected session is forgotten, any
// other failure keeps the session for the next try.
func (a *app) noUser(s *session.Session) error {
	if s.Active() {
		return errNoProfile
	}
	if err := a.sessionStore().Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return errSignedOut
}

// directoryName resolves a user id to a display name where the data is local.
func (a *app) directoryName(id string) string {
	if !a.demo {
		return ""
	}
	for _, u := range fixtures.Users() {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func isDemoToken(token string) bool { return strings.HasPrefix(token, demoTokenPrefix) }
