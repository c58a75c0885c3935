package commands

import (
	"fmt"

	"github.com/loykin/apifetch/internal/request"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	fetchSets       []string
	fetchSetStrings []string
	fetchPath       string
)

var FetchCmd = &cobra.Command{
	Use:   "fetch <endpoint>",
	Short: "Call a catalog endpoint and print the response body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		cat, err := a.doc.LoadCatalog()
		if err != nil {
			return err
		}
		overrides, err := parseSets(fetchSets, fetchSetStrings)
		if err != nil {
			return err
		}
		d, err := cat.Descriptor(args[0], a.env, overrides...)
		if err != nil {
			return err
		}

		body, err := request.FetchBytes(commandContext(cmd), a.client, d)
		if err != nil {
			return err
		}
		if fetchPath == "" {
			_, err = fmt.Fprintln(a.out, string(body))
			return err
		}
		if !gjson.ValidBytes(body) {
			return fmt.Errorf("--path given but response is not JSON")
		}
		res := gjson.GetBytes(body, fetchPath)
		if !res.Exists() {
			return fmt.Errorf("path %q not found in response", fetchPath)
		}
		out := res.Raw
		if res.Type == gjson.String {
			out = res.Str
		}
		_, err = fmt.Fprintln(a.out, out)
		return err
	},
}

func init() {
	FetchCmd.Flags().StringArrayVar(&fetchSets, "set", nil, "override a param (key=value, typed)")
	FetchCmd.Flags().StringArrayVar(&fetchSetStrings, "set-string", nil, "override a param with a literal string (key=value)")
	FetchCmd.Flags().StringVar(&fetchPath, "path", "", "print only this gjson path of the JSON response")
}
