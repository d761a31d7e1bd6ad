// Copyright (c) 2025 Keywarden Team
// Keywarden - API credential and preference manager
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Keywarden using the
// Cobra library. It defines the root command, subcommands (set-key,
// show, prefs, audit, backup, restore, maintenance), flags, and the
// main entry point for execution.

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keywarden/keywarden/internal/config"
	"github.com/keywarden/keywarden/internal/db"
	"github.com/keywarden/keywarden/internal/logging"
	"github.com/keywarden/keywarden/internal/mask"
	"github.com/keywarden/keywarden/internal/model"
	"github.com/keywarden/keywarden/internal/settings"
	"github.com/keywarden/keywarden/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var appConfig config.Config

var keyFile string
var acknowledgeFlag bool
var allowSmallEditFlag bool
var fullRestore bool
var systemConfig bool

// main is the entry point of the application.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

// newRootCmd creates and configures a new root cobra command. It is a
// function rather than a package-level singleton so tests can build
// fresh, isolated command trees.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keywarden",
		Short: "Keywarden is a local vault for your assistant's API key and preferences.",
		Long: `Keywarden keeps the API credential and the behavior preferences of a
self-hosted assistant in one small database. Replacing the stored key
is deliberately ceremonial: the new key is entered twice, compared
against the old one, and a near-identical entry needs an explicit
override before anything is written. Every change leaves an audit
trail; the key itself only ever appears in masked form.

Running without a subcommand will launch the interactive TUI.`,
		PersistentPreRunE: setupDefaultServices,
		Run: func(cmd *cobra.Command, args []string) {
			// The database is already initialized by PersistentPreRunE.
			tui.Run()
		},
	}

	cmd.Version = composeVersion()

	// Define flags
	cmd.PersistentFlags().String("config", "", "config file (default is keywarden.yaml in the config dir or current directory)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("db-type", "sqlite", "Database type (e.g., sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("db-dsn", "./keywarden.db", "Database connection string (DSN)")

	// Subcommands are package-level singletons shared between root
	// instances, so their flags are only defined once. pflag panics on
	// duplicate definitions.
	if setKeyCmd.Flags().Lookup("key-file") == nil {
		setKeyCmd.Flags().StringVar(&keyFile, "key-file", "", "Read the new key from this file instead of prompting ('-' reads stdin)")
		setKeyCmd.Flags().BoolVar(&acknowledgeFlag, "acknowledge", false, "Confirm the replacement without the interactive prompt")
		setKeyCmd.Flags().BoolVar(&allowSmallEditFlag, "allow-small-edit", false, "Replace the key even when it is nearly identical to the current one")
	}
	if restoreCmd.Flags().Lookup("full") == nil {
		restoreCmd.Flags().BoolVar(&fullRestore, "full", false, "Perform a full, destructive restore (wipes all existing data first)")
	}
	if configInitCmd.Flags().Lookup("system") == nil {
		configInitCmd.Flags().BoolVar(&systemConfig, "system", false, "Write to the system-wide config directory instead of the user one")
	}
	// The same holds for nested commands: attach them only once.
	if configInitCmd.Parent() == nil {
		configCmd.AddCommand(configInitCmd)
	}
	if prefsGetCmd.Parent() == nil {
		prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd)
	}

	// A lightweight `version` subcommand so users and CI can run
	// `keywarden version`.
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			fmt.Printf("version: %s\n", v)
			fmt.Printf("commit: %s\n", c)
			if d != "" {
				fmt.Printf("built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		setKeyCmd,
		showCmd,
		prefsCmd,
		auditCmd,
		backupCmd,
		restoreCmd,
		maintenanceCmd,
		configCmd,
		versionCmd,
	)

	return cmd
}

// setupDefaultServices resolves the configuration and initializes the
// database. It runs before every command via PersistentPreRunE.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run, or the config file was deleted. Drop a commented
		// starter file so configuration is discoverable.
		if optionalConfigPath == nil {
			writeStarterConfig()
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// A config file with empty values must not leave the app without a
	// database. Fall back to the defaults for the critical fields.
	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}

	logging.SetDebug(appConfig.Debug)
	db.SetDebug(appConfig.Debug)

	// Tests and earlier setup may already have opened a database; keep it.
	if !db.IsInitialized() {
		if err := db.InitDB(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
			return fmt.Errorf("could not initialize the database: %w", err)
		}
	}

	return nil
}

// getConfigPathFromCli returns the config file path when the user set
// the --config flag, or nil to use the standard search locations.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	// Make sure the user-provided file exists to avoid unwanted behavior.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

const starterConfigFile = "keywarden.yaml"

const starterConfigContent = `# Keywarden configuration file.
# This file is automatically generated with default values.
# You can modify these settings to configure Keywarden.

database:
  # The type of database to use. Supported values: "sqlite", "postgres", "mysql".
  type: sqlite

  # The Data Source Name (DSN) for the database connection.
  # For SQLite, this is the path to the database file.
  dsn: ./keywarden.db

# Log internal debug detail to stderr.
debug: false

# Example for a PostgreSQL setup:
# database:
#   type: postgres
#   dsn: "host=localhost user=keywarden password=secret dbname=keywarden port=5432 sslmode=disable"

# Example for a MySQL setup:
# database:
#   type: mysql
#   dsn: "keywarden:password@tcp(127.0.0.1:3306)/keywarden?parseTime=true"
`

// writeStarterConfig writes a commented default config into the current
// directory. If writing fails (e.g. due to permissions), the app simply
// runs with the default values held in memory.
func writeStarterConfig() {
	if _, err := os.Stat(starterConfigFile); err == nil {
		return
	}
	if err := os.WriteFile(starterConfigFile, []byte(starterConfigContent), 0644); err == nil {
		fmt.Printf("No config file found. Created a default '%s' in the current directory.\n", starterConfigFile)
	}
}

// composeVersion builds the single-line version string cobra prints for
// --version.
func composeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	composite := v
	if c != "" && c != "dev" {
		composite = composite + " (" + c + ")"
	}
	if d != "" {
		composite = composite + " built: " + d
	}
	return composite
}

// resolveBuildVersion computes the best-available version, commit and
// build date for the running binary. If `info` is nil, it reads build
// info from the runtime. This helper is separated to make unit testing
// straightforward.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths leave Main.Version empty; try to find the
		// module among the dependencies and use that version.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/keywarden/keywarden" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}

		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort, if no version was discovered but a gitCommit was
	// provided via ldflags, show that to aid support.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}

// showCmd represents the 'show' command. It prints the store status the
// way the TUI dashboard renders it: the key in masked form only.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored key (masked) and the current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := settings.Credential()
		if err != nil {
			return fmt.Errorf("could not read the stored key: %w", err)
		}
		provider, err := settings.Provider()
		if err != nil {
			return fmt.Errorf("could not read the provider: %w", err)
		}
		retain, err := settings.RetainVoiceNotes()
		if err != nil {
			return fmt.Errorf("could not read the voice note preference: %w", err)
		}
		share, err := settings.ShareDiagnostics()
		if err != nil {
			return fmt.Errorf("could not read the diagnostics preference: %w", err)
		}

		if key == "" {
			fmt.Println("API key:      not set")
		} else {
			fmt.Printf("API key:      %s\n", mask.Mask(key, 0))
		}
		fmt.Printf("Provider:     %s\n", provider)
		fmt.Printf("Voice notes:  %s\n", onOff(retain))
		fmt.Printf("Diagnostics:  %s\n", onOff(share))
		return nil
	},
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// prefsCmd groups the preference subcommands.
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read or change assistant preferences",
	Long: `Reads or changes the assistant preferences stored alongside the key.

Known preferences:
  provider            assistant backend (` + strings.Join(model.KnownProviders, ", ") + `)
  retain-voice-notes  keep raw voice notes after transcription (true/false)
  share-diagnostics   share anonymized usage diagnostics (true/false)`,
}

// prefsGetCmd represents the 'prefs get' command.
var prefsGetCmd = &cobra.Command{
	Use:   "get [name]",
	Short: "Print one preference, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := currentPrefs()
		if err != nil {
			return err
		}
		if len(args) == 0 {
			for _, name := range prefNames {
				fmt.Printf("%s: %s\n", name, values[name])
			}
			return nil
		}
		v, ok := values[args[0]]
		if !ok {
			return fmt.Errorf("unknown preference %q (known: %s)", args[0], strings.Join(prefNames, ", "))
		}
		fmt.Println(v)
		return nil
	},
}

// prefsSetCmd represents the 'prefs set' command.
var prefsSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]
		switch name {
		case "provider":
			if err := settings.SetProvider(value); err != nil {
				if errors.Is(err, settings.ErrUnknownProvider) {
					return fmt.Errorf("unknown provider %q (known: %s)", value, strings.Join(model.KnownProviders, ", "))
				}
				return err
			}
		case "retain-voice-notes":
			on, err := parseBoolValue(value)
			if err != nil {
				return err
			}
			if err := settings.SetRetainVoiceNotes(on); err != nil {
				return err
			}
		case "share-diagnostics":
			on, err := parseBoolValue(value)
			if err != nil {
				return err
			}
			if err := settings.SetShareDiagnostics(on); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown preference %q (known: %s)", name, strings.Join(prefNames, ", "))
		}
		fmt.Printf("%s set to %s\n", name, value)
		return nil
	},
}

// prefNames lists the preferences in display order.
var prefNames = []string{"provider", "retain-voice-notes", "share-diagnostics"}

func currentPrefs() (map[string]string, error) {
	provider, err := settings.Provider()
	if err != nil {
		return nil, fmt.Errorf("could not read the provider: %w", err)
	}
	retain, err := settings.RetainVoiceNotes()
	if err != nil {
		return nil, fmt.Errorf("could not read the voice note preference: %w", err)
	}
	share, err := settings.ShareDiagnostics()
	if err != nil {
		return nil, fmt.Errorf("could not read the diagnostics preference: %w", err)
	}
	return map[string]string{
		"provider":           provider,
		"retain-voice-notes": fmt.Sprintf("%t", retain),
		"share-diagnostics":  fmt.Sprintf("%t", share),
	}, nil
}

func parseBoolValue(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q, expected true or false", value)
}

// auditCmd represents the 'audit' command. It prints the audit trail of
// credential replacements and preference changes.
var auditCmd = &cobra.Command{
	Use:   "audit [filter terms...]",
	Short: "Print the audit log",
	Long: `Prints the audit log, newest first. Any arguments are treated as filter
terms; an entry is shown only when every term appears in one of its
fields.

Example:
  keywarden audit replace alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := db.GetAllAuditLogEntries()
		if err != nil {
			return fmt.Errorf("could not read the audit log: %w", err)
		}
		tokens := db.TokenizeFilterQuery(strings.Join(args, " "))
		entries = db.FilterAuditEntriesByTokens(entries, tokens)
		if len(entries) == 0 {
			fmt.Println("No audit log entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %-12s  %-22s  %s\n", e.Timestamp, e.Username, e.Action, e.Details)
		}
		return nil
	},
}

// maintenanceCmd represents the 'maintenance' command.
var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run database maintenance for the configured backend",
	Long: `Runs engine-specific maintenance against the configured database:
VACUUM, integrity_check and PRAGMA optimize on SQLite, VACUUM ANALYZE
on PostgreSQL, OPTIMIZE TABLE on MySQL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.RunDBMaintenance(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
			return fmt.Errorf("maintenance failed: %w", err)
		}
		fmt.Println("Maintenance completed successfully.")
		return nil
	},
}

// configCmd groups configuration file management.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the Keywarden configuration file",
}

// configInitCmd represents the 'config init' command. It persists the
// resolved configuration so later runs pick it up from the standard
// location.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the resolved configuration to the config directory",
	Long: `Writes the currently resolved configuration (defaults, config files,
environment and flags combined) to the user configuration directory,
or to the system-wide directory with --system.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteConfigFile(&appConfig, systemConfig); err != nil {
			return fmt.Errorf("could not write the config file: %w", err)
		}
		path, err := config.GetConfigPath(systemConfig)
		if err != nil {
			return err
		}
		fmt.Printf("Configuration written to %s\n", path)
		return nil
	},
}
