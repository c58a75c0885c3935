package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/spf13/cobra"
)

var EndpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List endpoints defined in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		cat, err := a.doc.LoadCatalog()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, name := range cat.Names() {
			ep, _ := cat.Get(name)
			m, _ := endpoint.ParseMethod(ep.Method)
			enc, _ := endpoint.ParseEncoding(ep.Encoding)
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, m, ep.Path, enc)
		}
		return tw.Flush()
	},
}
