package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/loykin/apifetch/internal/util"
	"github.com/loykin/apifetch/pkg/search"
	"github.com/spf13/cobra"
)

var searchThumbDir string

var SearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the store for products",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term, err := search.ValidateTerm(args[0])
		if err != nil {
			return err
		}
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		base, ok := util.TrimEmptyCheck(a.env.RenderGoTemplate(a.doc.Search.BaseAddress))
		if !ok {
			return fmt.Errorf("search.base_address is not configured")
		}
		var opts []search.Option
		if p, ok := util.TrimEmptyCheck(a.doc.Search.Path); ok {
			opts = append(opts, search.WithPath(p))
		}
		if a.doc.Search.Limit > 0 {
			opts = append(opts, search.WithLimit(a.doc.Search.Limit))
		}
		svc := search.NewService(a.client, base, opts...)

		res, err := svc.Search(commandContext(cmd), term)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintf(tw, "%d results for %q\n", res.Paging.Total, term)
		for _, p := range res.Results {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%.2f %s\n", p.ID, p.Title, p.Price, p.Currency)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if searchThumbDir == "" {
			return nil
		}
		if err := os.MkdirAll(searchThumbDir, 0o755); err != nil {
			return err
		}
		for i, o := range svc.Thumbnails(commandContext(cmd), res.Results) {
			id := res.Results[i].ID
			if !o.OK() {
				a.log.Warn("thumbnail unavailable", "product", id, "error", o.Err)
				continue
			}
			if err := os.WriteFile(filepath.Join(searchThumbDir, filepath.Base(id)+".img"), o.Value, 0o600); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	SearchCmd.Flags().StringVar(&searchThumbDir, "thumbnails", "", "download product thumbnails into this directory")
}
