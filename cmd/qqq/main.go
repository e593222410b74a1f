package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kingsrook/qqq-client/agent"
	"github.com/kingsrook/qqq-client/analytics"
	"github.com/kingsrook/qqq-client/config"
	"github.com/kingsrook/qqq-client/logger"
	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/process"
	"github.com/kingsrook/qqq-client/rest"
	"github.com/kingsrook/qqq-client/util"
)

type cli struct {
	v     *viper.Viper
	cfg   config.Config
	agent *agent.Agent
}

func setupFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config-file", "", "Path to config file.")
	flags.String("base-url", "http://localhost:8000", "base url of the qqq backend")
	flags.Duration("timeout", 0, "timeout of a single backend request, 0 for none")
	flags.String("log-level", "info", "log level")
	flags.Duration("metadata-ttl", 0, "how long loaded metadata is cached, 0 for ever")
}

func setupRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArray("param", nil, "k=v sent when the process starts")
	flags.StringArray("value", nil, "k=v sent with every step, {$.field} resolves against the session values")
	flags.Duration("poll-interval", process.DEFAULT_POLL_INTERVAL, "first wait between job status checks")
	flags.Duration("poll-timeout", 0, "give up waiting for a job after this long, 0 for never")
	flags.String("storage-impl", string(config.STORAGE_TYPE_INMEM), "where sessions are saved: memory or redis")
	flags.String("redis-addr", "localhost:6379", "comma separated list of redis host:port")
	flags.String("redis-password", "", "redis password")
	flags.String("namespace", "qqq", "namespace used in storage")
	flags.Duration("session-ttl", 0, "expire saved sessions after this long, 0 for never")
	flags.String("analytics-file", "", "append every process outcome to this file")
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	c.v = viper.New()
	c.v.SetEnvPrefix("QQQ")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	configFile := c.v.GetString("config-file")
	if configFile != "" {
		c.v.SetConfigFile(configFile)
		if err := c.v.ReadInConfig(); err != nil {
			// it's ok if config file doesn't exist
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
	}

	var err error
	c.cfg, err = config.FromViper(c.v)
	if err != nil {
		return err
	}
	return logger.Init(c.cfg.LogLevel)
}

func (c *cli) setupAgent(cmd *cobra.Command, args []string) error {
	if err := c.setupConfig(cmd, args); err != nil {
		return err
	}
	var err error
	c.agent, err = agent.New(c.cfg)
	return err
}

func (c *cli) teardown(cmd *cobra.Command, args []string) error {
	defer logger.Sync()
	if c.agent == nil {
		return nil
	}
	return c.agent.Shutdown()
}

// withTeardown runs fn and then tears down whatever fn returned; cobra skips PostRunE
// when RunE fails.
func (c *cli) withTeardown(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if teardownErr := c.teardown(cmd, args); err == nil {
				err = teardownErr
			}
		}()
		return fn(cmd, args)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

func (c *cli) metadata(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if len(args) == 1 {
		table, err := c.agent.Metadata().GetTable(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, table)
	}
	instance, err := c.agent.Metadata().GetInstance(ctx)
	if err != nil {
		return err
	}
	return printJSON(cmd, instance)
}

func (c *cli) query(cmd *cobra.Command, args []string) error {
	var filter *model.QueryFilter
	if raw, _ := cmd.Flags().GetString("filter"); raw != "" {
		filter = &model.QueryFilter{}
		if err := json.Unmarshal([]byte(raw), filter); err != nil {
			return fmt.Errorf("invalid filter: %w", err)
		}
	}
	records, err := c.agent.Client().Query(cmd.Context(), args[0], filter)
	if err != nil {
		return err
	}
	return printJSON(cmd, records)
}

// parseValues turns k=v pairs into a map.
func parseValues(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid value %q, expected k=v", pair)
		}
		values[k] = v
	}
	return values, nil
}

func flagValues(cmd *cobra.Command, name string) (map[string]any, error) {
	pairs, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		return nil, err
	}
	return parseValues(pairs)
}

func (c *cli) stepInput(cmd *cobra.Command) (process.StepInput, map[string]any, error) {
	params, err := flagValues(cmd, "param")
	if err != nil {
		return nil, nil, err
	}
	values, err := flagValues(cmd, "value")
	if err != nil {
		return nil, nil, err
	}
	input := func(ctx context.Context, session *model.ProcessSession) (map[string]any, error) {
		logger.Info("submitting step", zap.String("process", session.ProcessName), zap.String("step", session.CurrentStep))
		return util.ResolveInputParams(session.Values, values), nil
	}
	return input, params, nil
}

func (c *cli) finish(cmd *cobra.Command, m *process.Machine, outcome model.JobOutcome, err error) error {
	session := m.Session()
	if printErr := printJSON(cmd, session); printErr != nil {
		return printErr
	}
	if err != nil {
		return fmt.Errorf("session %s: %w", session.Id, err)
	}
	if outcome.Kind == model.JOB_ERROR {
		return fmt.Errorf("process %s failed: %s", session.ProcessName, outcome.Error.Message)
	}
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	input, params, err := c.stepInput(cmd)
	if err != nil {
		return err
	}
	m := c.agent.NewSession(args[0])
	outcome, err := c.agent.Runner(input).Run(cmd.Context(), m, params)
	return c.finish(cmd, m, outcome, err)
}

func (c *cli) resume(cmd *cobra.Command, args []string) error {
	input, params, err := c.stepInput(cmd)
	if err != nil {
		return err
	}
	m, err := c.agent.ResumeSession(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	outcome, err := c.agent.Runner(input).Run(cmd.Context(), m, params)
	return c.finish(cmd, m, outcome, err)
}

func (c *cli) mockServer(cmd *cobra.Command, args []string) error {
	fixtureFile, _ := cmd.Flags().GetString("fixture")
	port, _ := cmd.Flags().GetInt("port")
	fixture, err := rest.LoadFixture(fixtureFile)
	if err != nil {
		return err
	}
	server, err := rest.NewServer(port, fixture)
	if err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-cmd.Context().Done():
	}
	return server.Stop()
}

func newRootCommand() *cobra.Command {
	return (&cli{}).rootCommand()
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "qqq",
		Short:         "Client for qqq backends",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	setupFlags(root)

	metadataCmd := &cobra.Command{
		Use:     "metadata [table]",
		Short:   "Print instance metadata, or one table's",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: c.setupAgent,
		RunE:    c.withTeardown(c.metadata),
	}

	queryCmd := &cobra.Command{
		Use:     "query <table>",
		Short:   "Query the records of a table",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.setupAgent,
		RunE:    c.withTeardown(c.query),
	}
	queryCmd.Flags().String("filter", "", "query filter as json")

	runCmd := &cobra.Command{
		Use:     "run <process>",
		Short:   "Run a process to completion",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.setupAgent,
		RunE:    c.withTeardown(c.run),
	}
	setupRunFlags(runCmd)

	resumeCmd := &cobra.Command{
		Use:     "resume <sessionId>",
		Short:   "Continue a saved process session",
		Args:    cobra.ExactArgs(1),
		PreRunE: c.setupAgent,
		RunE:    c.withTeardown(c.resume),
	}
	setupRunFlags(resumeCmd)

	mockCmd := &cobra.Command{
		Use:     "mock-server",
		Short:   "Serve a scripted backend from a fixture file",
		Args:    cobra.NoArgs,
		PreRunE: c.setupConfig,
		RunE:    c.withTeardown(c.mockServer),
	}
	mockCmd.Flags().String("fixture", "fixture.json", "fixture file")
	mockCmd.Flags().Int("port", 8000, "http port")

	root.AddCommand(metadataCmd, queryCmd, runCmd, resumeCmd, mockCmd)
	return root
}

func main() {
	if err := analytics.RegisterViews(); err != nil {
		log.Fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}
