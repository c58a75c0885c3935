package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/loykin/apifetch"
	"github.com/loykin/apifetch/internal/constants"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

var (
	batchLimit   int
	batchMetrics bool
)

var BatchCmd = &cobra.Command{
	Use:   "batch <endpoint>...",
	Short: "Call several catalog endpoints concurrently and summarize the outcomes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		cat, err := a.doc.LoadCatalog()
		if err != nil {
			return err
		}
		ds := make([]endpoint.Descriptor, len(args))
		for i, name := range args {
			if ds[i], err = cat.Descriptor(name, a.env); err != nil {
				return err
			}
		}

		limit := batchLimit
		if limit <= 0 {
			limit = a.doc.BatchLimit
		}
		if limit <= 0 {
			limit = constants.DefaultBatchLimit
		}
		a.log.Debug("starting batch", "endpoints", len(ds), "limit", limit)
		outs := apifetch.FetchAll(commandContext(cmd), a.client, ds, limit)

		failed := 0
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for i, o := range outs {
			if o.OK() {
				_, _ = fmt.Fprintf(tw, "%s\tok\t%d bytes\n", args[i], len(o.Value))
				continue
			}
			failed++
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%v\n", args[i], o.Kind(), o.Err)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if batchMetrics {
			mfs, err := a.registry.Gather()
			if err != nil {
				return err
			}
			for _, mf := range mfs {
				if _, err := expfmt.MetricFamilyToText(a.out, mf); err != nil {
					return err
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d calls failed", failed, len(outs))
		}
		return nil
	},
}

func init() {
	BatchCmd.Flags().IntVar(&batchLimit, "limit", 0, "maximum concurrent calls (default from config or 4)")
	BatchCmd.Flags().BoolVar(&batchMetrics, "metrics", false, "print request metrics in Prometheus text format")
}
