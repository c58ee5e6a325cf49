package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deploymenttheory/go-api-session-client/apiclient"
	"github.com/deploymenttheory/go-api-session-client/cookiestore"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configKey     = "config"
	apiURLKey     = "api_url"
	cookieFileKey = "cookie_file"
	cookieDBKey   = "cookie_db"
	logLevelKey   = "log_level"
	logFormatKey  = "log_format"

	defaultCLILogLevel = "LogLevelWarn"
)

// cliConfig resolves flags, APICLIENT_* variables and the optional config file into a session.
type cliConfig struct {
	v *viper.Viper
}

func newRootCommand() *cobra.Command {
	cfg := &cliConfig{v: viper.New()}
	cmd := &cobra.Command{
		Use:           "apiclient",
		Short:         "Call a bearer-token API with a persisted session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a JSON, YAML or TOML client configuration")
	flags.String("api-url", "", "API base URL")
	flags.String("cookie-file", defaultCookieFile(), "JSON file holding the session cookies")
	flags.String("cookie-db", "", "SQLite database holding the session cookies (overrides --cookie-file)")
	flags.String("log-level", defaultCLILogLevel, "log level (LogLevelDebug|LogLevelInfo|LogLevelWarn|LogLevelError)")
	flags.String("log-format", "console", "log output format (console|json)")

	cfg.mustBindFlag(configKey, "APICLIENT_CONFIG", flags.Lookup("config"))
	cfg.mustBindFlag(apiURLKey, "", flags.Lookup("api-url"))
	cfg.mustBindFlag(cookieFileKey, "APICLIENT_COOKIE_FILE", flags.Lookup("cookie-file"))
	cfg.mustBindFlag(cookieDBKey, "APICLIENT_COOKIE_DB", flags.Lookup("cookie-db"))
	cfg.mustBindFlag(logLevelKey, "", flags.Lookup("log-level"))
	cfg.mustBindFlag(logFormatKey, "", flags.Lookup("log-format"))

	cmd.AddCommand(
		newLoginCommand(cfg),
		newRefreshCommand(cfg),
		newRequestCommand(cfg, "get"),
		newRequestCommand(cfg, "delete"),
		newRequestCommand(cfg, "post"),
		newRequestCommand(cfg, "put"),
		newRequestCommand(cfg, "patch"),
		newStatusCommand(cfg),
		newLogoutCommand(cfg),
		newRollbackCommand(cfg),
		newVersionCommand(),
	)
	return cmd
}

func (c *cliConfig) mustBindFlag(key, env string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("flag for key %s not found", key))
	}
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
	if env != "" {
		if err := c.v.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".apiclient", "cookies.json")
	}
	return filepath.Join(home, ".apiclient", "cookies.json")
}

// clientConfig layers the config file, then APICLIENT_* variables, then explicit flags.
func (c *cliConfig) clientConfig() (*apiclient.ClientConfig, error) {
	config := &apiclient.ClientConfig{}
	if path := c.v.GetString(configKey); path != "" {
		loaded, err := apiclient.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}
	if config.LogLevel == "" {
		config.LogLevel = c.v.GetString(logLevelKey)
	}
	if config.LogOutputFormat == "" {
		config.LogOutputFormat = c.v.GetString(logFormatKey)
	}

	config, err := apiclient.LoadConfigFromEnv(config)
	if err != nil {
		return nil, err
	}

	if c.v.IsSet(apiURLKey) {
		config.APIURL = c.v.GetString(apiURLKey)
	}
	if c.v.IsSet(logLevelKey) {
		config.LogLevel = c.v.GetString(logLevelKey)
	}
	if c.v.IsSet(logFormatKey) {
		config.LogOutputFormat = c.v.GetString(logFormatKey)
	}
	return config, nil
}

// store opens the configured cookie store. The returned func releases it.
func (c *cliConfig) store() (cookiestore.Store, func(), error) {
	if dbPath := c.v.GetString(cookieDBKey); dbPath != "" {
		store, err := cookiestore.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}

	store, err := cookiestore.NewFileStore(c.v.GetString(cookieFileKey))
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// session builds a client over the configured cookie store.
func (c *cliConfig) session() (*apiclient.Client, cookiestore.Store, func(), error) {
	config, err := c.clientConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	store, closeStore, err := c.store()
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := apiclient.BuildClient(*config, store)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	return client, store, closeStore, nil
}
