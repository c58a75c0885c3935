package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loykin/apifetch/cmd/apifetch/config"
	"github.com/loykin/apifetch/internal/common"
	"github.com/loykin/apifetch/internal/constants"
	"github.com/loykin/apifetch/internal/request"
	"github.com/loykin/apifetch/internal/util"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/spf13/cobra"
)

// waitParams holds the parsed and normalized parameters for waiting
type waitParams struct {
	descriptor endpoint.Descriptor
	expected   int
	timeout    time.Duration
	interval   time.Duration
}

// parseWaitConfig applies defaults: status 200, timeout 60s, interval 2s.
func parseWaitConfig(wc config.WaitConfig, d endpoint.Descriptor) waitParams {
	expected := wc.Status
	if expected == 0 {
		expected = constants.DefaultWaitStatus
	}
	d.AcceptStatus = []int{expected}
	return waitParams{
		descriptor: d,
		expected:   expected,
		timeout:    util.ParseDurationOr(wc.Timeout, constants.DefaultWaitTimeout),
		interval:   util.ParseDurationOr(wc.Interval, constants.DefaultWaitInterval),
	}
}

// probe makes one call. A matching status counts as ready even without a body.
func probe(ctx context.Context, c *request.Client, d endpoint.Descriptor) error {
	_, err := request.FetchBytes(ctx, c, d)
	if err == nil || errors.Is(err, request.ErrEmptyBody) {
		return nil
	}
	return err
}

// performPolling repeatedly probes the endpoint until it answers with the
// expected status or the timeout elapses.
func performPolling(ctx context.Context, c *request.Client, params waitParams, log *common.Logger) error {
	deadline := time.Now().Add(params.timeout)
	for attempt := 1; ; attempt++ {
		err := probe(ctx, c, params.descriptor)
		if err == nil {
			log.Info("endpoint ready", "attempts", attempt)
			return nil
		}
		if request.KindOf(err) == request.KindInvalidURL || request.KindOf(err) == request.KindEncoding {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("wait: timeout waiting for status %d: %w", params.expected, err)
		}
		log.Debug("endpoint not ready", "attempt", attempt, "kind", request.KindOf(err).String())

		timer := time.NewTimer(params.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

var WaitCmd = &cobra.Command{
	Use:   "wait [endpoint]",
	Short: "Poll a catalog endpoint until it returns the expected status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		name := a.doc.Wait.Endpoint
		if len(args) > 0 {
			name = args[0]
		}
		name, ok := util.TrimEmptyCheck(name)
		if !ok {
			return fmt.Errorf("no endpoint to wait for (argument or wait.endpoint)")
		}
		cat, err := a.doc.LoadCatalog()
		if err != nil {
			return err
		}
		d, err := cat.Descriptor(name, a.env)
		if err != nil {
			return err
		}
		return performPolling(commandContext(cmd), a.client, parseWaitConfig(a.doc.Wait, d), a.log.WithEndpoint(name))
	},
}
