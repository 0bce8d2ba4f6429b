package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/idilsaglam/issuetracker/internal/auth"
	"github.com/idilsaglam/issuetracker/internal/config"
	"github.com/idilsaglam/issuetracker/internal/logging"
	"github.com/idilsaglam/issuetracker/internal/shopify"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/store/jsonstore"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// Exit codes: 0 ok, 1 runtime error, 2 usage or validation.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// exitError carries an exit code up through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func usageErr(format string, args ...any) error {
	return &exitError{code: ExitUsage, msg: fmt.Sprintf(format, args...)}
}

// usageArgs turns cobra's positional argument errors into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageErr("%v", err)
		}
		return nil
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
	logs   *logging.Gate
	creds  auth.Credentials

	out, errOut io.Writer

	// overridable in tests
	newStore func(ctx context.Context) (store.Store, error)
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := &app{v: config.New(), out: out, errOut: errOut}
	a.newStore = a.buildStore
	ui.SetOutput(out, errOut)

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			ui.Fail(ee.msg)
		}
		return ee.code
	}
	ui.Fail(err.Error())
	return ExitError
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "issuetracker",
		Short: "Track issues on Shopify products",
		Long: `issuetracker - a create-issue form for Shopify products.

Issues live as a JSON list in a product metafield
(namespace com_my_app_issues, key issues_list by default).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErr("%v", err)
	})

	pf := root.PersistentFlags()
	pf.Bool("debug", false, "verbose logging")
	pf.String("log-file", "", "write logs to this file instead of stderr")
	pf.String("store", "", "issue storage backend: shopify|file")
	pf.String("store-path", "", "file backend: path of the JSON file")
	pf.String("shop", "", "shop domain, e.g. demo.myshopify.com")
	pf.String("endpoint", "", "Admin GraphQL endpoint override (e.g. a local sandbox)")
	pf.String("theme", ui.DefaultTheme, "output theme: "+strings.Join(ui.Themes(), "|"))
	pf.Bool("no-color", false, "disable colored output")

	_ = a.v.BindPFlag("log.debug", pf.Lookup("debug"))
	_ = a.v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = a.v.BindPFlag("store.backend", pf.Lookup("store"))
	_ = a.v.BindPFlag("store.path", pf.Lookup("store-path"))
	_ = a.v.BindPFlag("shop_domain", pf.Lookup("shop"))
	_ = a.v.BindPFlag("endpoint", pf.Lookup("endpoint"))

	root.AddCommand(
		a.createCommand(),
		a.listCommand(),
		a.authCommand(),
		a.serveCommand(),
		a.sandboxCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return usageErr("config: %v", err)
	}
	a.cfg = cfg

	theme, _ := cmd.Flags().GetString("theme")
	if err := ui.SetTheme(theme); err != nil {
		return usageErr("%v", err)
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		ui.SetColorForcing(false, true)
	}

	a.logs = &logging.Gate{}
	logger, err := logging.New(logging.Options{Debug: cfg.Log.Debug, File: cfg.Log.File, Gate: a.logs})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.logger = logger

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	a.creds = auth.Credentials{Dir: dir}
	return nil
}

// logFileName receives log output while a full-screen view is open and no
// log.file is configured.
const logFileName = "issuetracker.log"

// quietLogs keeps log lines off the terminal while fn runs a full-screen view.
// With log.file set they already go there.
func (a *app) quietLogs(fn func() error) error {
	if a.cfg.Log.File != "" {
		return fn()
	}
	dir, err := config.Dir()
	if err == nil {
		err = a.logs.Divert(filepath.Join(dir, logFileName))
	}
	if err != nil {
		a.logger.Warn("cannot divert logs, they may overwrite the screen", zap.Error(err))
		return fn()
	}
	defer a.logs.Restore()
	return fn()
}

// buildStore picks the configured backend.
func (a *app) buildStore(_ context.Context) (store.Store, error) {
	switch a.cfg.Store.Backend {
	case config.BackendFile:
		return jsonstore.New(a.cfg.Store.Path)
	default:
		ti, err := a.creds.Get()
		if err != nil {
			return nil, err
		}
		shopCfg := shopify.Config{
			ShopDomain: a.cfg.ShopDomain,
			APIVersion: a.cfg.APIVersion,
			Endpoint:   a.cfg.Endpoint,
		}
		if ti != nil {
			shopCfg.AccessToken = ti.Token
			if shopCfg.ShopDomain == "" {
				shopCfg.ShopDomain = ti.ShopDomain
			}
		}
		// a sandbox endpoint may run without a token
		if shopCfg.AccessToken == "" && shopCfg.Endpoint == "" {
			return nil, usageErr("no access token found. Set %s or run `issuetracker auth login`", auth.EnvToken)
		}
		client, err := shopify.NewClient(shopCfg, a.logger.Named("shopify"))
		if err != nil {
			return nil, usageErr("%v", err)
		}
		return shopify.NewMetafieldStore(client, a.cfg.Metafield.Namespace, a.cfg.Metafield.Key, a.logger.Named("metafield")), nil
	}
}
