package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/futureaiitofficial/prosumeai-sub005/internal/address"
	"github.com/spf13/cobra"
)

// errInvalidAddress makes validate exit non-zero after printing the
// field errors.
var errInvalidAddress = errors.New("address is invalid")

func (a *app) countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries with a dedicated rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := a.rules.Countries()
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), codes)
			}
			for _, code := range codes {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
}

type ruleView struct {
	Country       string `json:"country"`
	Supported     bool   `json:"supported"`
	CityLabel     string `json:"cityLabel"`
	StateLabel    string `json:"stateLabel"`
	PostalLabel   string `json:"postalLabel"`
	TaxIDLabel    string `json:"taxIdLabel"`
	PostalExample string `json:"postalExample"`
	PostalPattern string `json:"postalPattern"`
	PostalMessage string `json:"postalMessage"`
}

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules <country>",
		Short: "Show the labels and postal code rule for a country",
		Long: `Show the rule a country resolves to. Countries without a dedicated
rule resolve to the default rule and are reported as unsupported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(strings.TrimSpace(args[0]))
			rule := a.rules.Resolve(code)

			view := ruleView{
				Country:       code,
				Supported:     !rule.IsDefault(),
				CityLabel:     rule.CityLabel,
				StateLabel:    rule.StateLabel,
				PostalLabel:   rule.PostalLabel,
				TaxIDLabel:    rule.TaxIDLabel,
				PostalExample: rule.PostalPlaceholder,
				PostalMessage: rule.PostalMessage,
			}
			if rule.PostalPattern != nil {
				view.PostalPattern = rule.PostalPattern.String()
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Country:   %s (supported: %t)\n", view.Country, view.Supported)
			fmt.Fprintf(w, "City:      %s\n", view.CityLabel)
			fmt.Fprintf(w, "State:     %s\n", view.StateLabel)
			fmt.Fprintf(w, "Postal:    %s, e.g. %s\n", view.PostalLabel, view.PostalExample)
			fmt.Fprintf(w, "Pattern:   %s\n", view.PostalPattern)
			fmt.Fprintf(w, "Tax ID:    %s\n", view.TaxIDLabel)
			return nil
		},
	}
}

func (a *app) formatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format <value>",
		Short: "Run the field formatter on a value",
		Example: `  addressctl format --country US --field postalCode 100011234
  addressctl format --country GB --field postalCode sw1a1aa`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			a.bindLocal(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := a.field()
			if err != nil {
				return err
			}
			out := a.rules.FormatField(args[0], a.v.GetString("country"), field)
			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"value": out})
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().String("country", "US", "ISO-3166 alpha-2 country code")
	cmd.Flags().String("field", string(address.FieldPostalCode), "field name: postalCode or phoneNumber")
	return cmd
}

type validateView struct {
	Valid      bool              `json:"valid"`
	Errors     map[string]string `json:"errors,omitempty"`
	Normalized *address.Address  `json:"normalized,omitempty"`
}

func (a *app) validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an address read from a JSON file",
		Long: `Validate an address JSON document using the form field names
(fullName, country, addressLine1, city, state, postalCode, phoneNumber, ...).
Use --file - to read from standard input. Exits non-zero when invalid.`,
		Args: cobra.NoArgs,
		PreRun: func(cmd *cobra.Command, args []string) {
			a.bindLocal(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := readAddress(cmd.InOrStdin(), a.v.GetString("file"))
			if err != nil {
				return err
			}

			result, err := address.NewBasicValidator(a.rules).Validate(cmd.Context(), addr)
			if err != nil {
				return err
			}
			a.logger.Debug("address validated", "country", addr.Country, "valid", result.Valid())

			view := validateView{Valid: result.Valid(), Errors: result.Fields(), Normalized: result.NormalizedAddress}
			if a.jsonOutput() {
				if err := writeJSON(cmd.OutOrStdout(), view); err != nil {
					return err
				}
			} else {
				printValidation(cmd.OutOrStdout(), view)
			}

			if !view.Valid {
				return errInvalidAddress
			}
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "-", "address JSON file, - for stdin")
	return cmd
}

func readAddress(stdin io.Reader, path string) (address.Address, error) {
	var addr address.Address

	r := stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return addr, fmt.Errorf("failed to open address file: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return addr, fmt.Errorf("failed to read address: %w", err)
	}
	if err := jsonUnmarshalStrict(data, &addr); err != nil {
		return addr, fmt.Errorf("failed to parse address: %w", err)
	}
	return addr, nil
}

func printValidation(w io.Writer, view validateView) {
	if view.Valid {
		fmt.Fprintln(w, "valid")
		if n := view.Normalized; n != nil {
			fmt.Fprintf(w, "  postalCode: %s\n", n.PostalCode)
			if n.PhoneNumber != "" {
				fmt.Fprintf(w, "  phoneNumber: %s\n", n.PhoneNumber)
			}
		}
		return
	}
	fmt.Fprintln(w, "invalid")
	for _, field := range slices.Sorted(maps.Keys(view.Errors)) {
		fmt.Fprintf(w, "  %s: %s\n", field, view.Errors[field])
	}
}

type typeView struct {
	Value    string   `json:"value"`
	Rejected []string `json:"rejected,omitempty"`
}

func (a *app) typeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type <text>",
		Short: "Simulate typing text into a field through the keystroke filter",
		Long: `Type each character of text into a form field. Characters rejected by
the keystroke filter are reported; the final value is what the form holds.`,
		Example: `  addressctl type --country AU --field postalCode 2,000`,
		Args:    cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			a.bindLocal(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := a.field()
			if err != nil {
				return err
			}

			initial := address.Address{Country: strings.ToUpper(a.v.GetString("country"))}
			form := address.NewForm(a.rules, address.NewBasicValidator(a.rules), &initial)

			var view typeView
			for _, k := range address.KeysFromText(args[0]) {
				if !form.Type(field, k) {
					view.Rejected = append(view.Rejected, k.Value)
				}
			}
			view.Value = form.Address().Get(field)

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Value)
			if len(view.Rejected) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "rejected: %s\n", strings.Join(view.Rejected, " "))
			}
			return nil
		},
	}
	cmd.Flags().String("country", "US", "ISO-3166 alpha-2 country code")
	cmd.Flags().String("field", string(address.FieldPostalCode), "form field name")
	return cmd
}

func (a *app) field() (address.Field, error) {
	name := a.v.GetString("field")
	field, ok := address.ParseField(name)
	if !ok {
		return "", fmt.Errorf("unknown field %q", name)
	}
	return field, nil
}
