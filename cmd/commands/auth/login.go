package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/cmdutil"
	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/tui"
	"github.com/xbocquet/twcatele/internal/util"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the platform",
		Long: `Sign in to the platform and store the session in the local keychain.

Without --token, a local listener is started on callback-addr and the
authorize URL is printed. Open it in a browser, sign in, and the access
token is captured from the redirect. The listener address must be a
registered redirect URI of the application id.

With --token, the given access token is stored directly. Pass "-" to type
it into a prompt without echo, or to read it from piped stdin.

--influx-token stores the InfluxDB API token used when telemetry-backend
is influxdb. It may be combined with any other flags or used alone.

Examples:
  twcatele auth login
  twcatele auth login --app-id 00000000-0000-0000-0000-000000000000
  twcatele auth login --token - --env https://api.invicara.com
  twcatele auth login --influx-token "$INFLUX_TOKEN"`,
		Args:         cobra.NoArgs,
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().String("token", "", "Access token to store instead of the browser flow (\"-\" prompts)")
	cmd.Flags().String("env", "", "Platform origin the token was issued by (defaults to the passport origin)")
	cmd.Flags().String("app-id", "", "OAuth application id (defaults to the stored or configured one)")
	cmd.Flags().String("influx-token", "", "InfluxDB API token for the influxdb telemetry backend")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	store := auth.DefaultStore()

	token, _ := cmd.Flags().GetString("token")
	envFlag, _ := cmd.Flags().GetString("env")
	appIDFlag, _ := cmd.Flags().GetString("app-id")
	influxToken, _ := cmd.Flags().GetString("influx-token")

	if influxToken = strings.TrimSpace(influxToken); influxToken != "" {
		if err := store.Set(auth.InfluxTokenKey, influxToken); err != nil {
			return fmt.Errorf("failed to store InfluxDB token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved InfluxDB token.")
		if !cmd.Flags().Changed("token") && !cmd.Flags().Changed("env") && !cmd.Flags().Changed("app-id") {
			return nil
		}
	}

	ep := cfg.Endpoints()
	appID := strings.TrimSpace(appIDFlag)
	if appID == "" {
		appID = auth.StoredAppID(store, ep.ApplicationID)
	}
	if err := util.ValidateApplicationID(appID); err != nil {
		return err
	}

	env := strings.TrimRight(strings.TrimSpace(envFlag), "/")
	if env == "" {
		env = auth.AuthEnv(ep.PassportServiceOrigin, ep.ItemServiceOrigin)
	} else if err := util.ValidateOrigin(env); err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	switch {
	case token == "-":
		token, err = promptToken(cmd, env)
		if err != nil {
			return err
		}
	case token == "":
		token, err = browserLogin(cmd, cfg, env, appID)
		if err != nil {
			return err
		}
	}

	if token == "" {
		return fmt.Errorf("token cannot be empty")
	}

	previous, _ := auth.LoadSession(store)
	session := &auth.Session{Token: token, Env: env, AppID: appID}
	if err := auth.SaveSession(store, *session); err != nil {
		return err
	}
	if err := cmdutil.ForgetLists(cmdutil.Context(cmd), cfg, previous, session); err != nil {
		slog.Warn("failed to clear cached lists", "error", err)
	}

	if user := currentUser(cmd, cfg, store); user != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in to %s as %s\n", env, user)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved session for %s\n", env)
	return nil
}

// promptToken reads the token through the prompt TUI on a terminal, or as
// the first line of stdin when it is piped.
func promptToken(cmd *cobra.Command, env string) (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		token, err := tui.RunTokenPrompt(env)
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", fmt.Errorf("login aborted")
		}
		return token, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// browserLogin runs the implicit-flow redirect through the local listener.
func browserLogin(cmd *cobra.Command, cfg *config.Config, env, appID string) (string, error) {
	server, err := auth.StartCallbackServer(cfg.Callback(), env)
	if err != nil {
		return "", err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Close(shutdownCtx)
	}()

	url := auth.AuthorizeURL(env, appID, server.RedirectURI(), server.State())
	fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in your browser to sign in:\n\n  %s\n\n", url)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return server.Wait(ctx)
	}

	var token string
	var waitErr error
	spinErr := spinner.New().
		Title("Waiting for the browser redirect...").
		Accessible(os.Getenv("ACCESSIBLE") != "").
		Output(cmd.ErrOrStderr()).
		ActionWithErr(func(ctx context.Context) error {
			token, waitErr = server.Wait(ctx)
			return waitErr
		}).
		Run()
	if spinErr != nil {
		if errors.Is(spinErr, huh.ErrUserAborted) || errors.Is(spinErr, context.Canceled) {
			return "", fmt.Errorf("login aborted")
		}
		return "", spinErr
	}
	return token, waitErr
}

// currentUser greets the freshly signed-in user. Failures only skip the
// greeting; the session is already stored.
func currentUser(cmd *cobra.Command, cfg *config.Config, store auth.Store) string {
	clients, err := backends.Connect(cfg, store)
	if err != nil {
		return ""
	}
	defer clients.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := clients.Platform.CurrentUser(ctx)
	if err != nil || user == nil {
		return ""
	}
	if name := user.DisplayName(); name != "" {
		return name
	}
	return user.Email
}
