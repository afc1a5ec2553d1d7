package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/futureaiitofficial/prosumeai-sub005/internal"
	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "ADDRESSCTL"

// app carries the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE once flags and config are resolved.
type app struct {
	v      *viper.Viper
	rules  *address.RuleBook
	logger *slog.Logger
}

// newRootCmd builds the command tree. Flags are bound to v so that every
// setting can also come from a config file or ADDRESSCTL_* variables.
func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:   "addressctl",
		Short: "Inspect and exercise the billing address rules",
		Long: `addressctl runs the billing address formatter, validator and keystroke
filter locally, using the embedded country rules or a rules file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("rules-file", "", "country rules YAML (default: embedded rules)")
	flags.StringP("output", "o", "text", "output format: text or json")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		a.countriesCmd(),
		a.rulesCmd(),
		a.formatCmd(),
		a.validateCmd(),
		a.typeCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	a.logger = internal.NewLogger(cmd.ErrOrStderr(), "dev", a.v.GetString("log-level"))

	switch out := a.v.GetString("output"); out {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", out)
	}

	path := a.v.GetString("rules-file")
	if path == "" {
		rules, err := address.DefaultRules()
		if err != nil {
			return err
		}
		a.rules = rules
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()

	rules, err := address.LoadRules(f)
	if err != nil {
		return err
	}
	a.logger.Debug("rules loaded", "file", path, "countries", len(rules.Countries()))
	a.rules = rules
	return nil
}

func (a *app) jsonOutput() bool {
	return a.v.GetString("output") == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// bindLocal binds a subcommand's local flags to v. Local flags share the
// viper namespace with the persistent ones, so names must not collide.
func (a *app) bindLocal(cmd *cobra.Command) {
	_ = a.v.BindPFlags(cmd.Flags())
}

func jsonUnmarshalStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}
