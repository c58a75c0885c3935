package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/loykin/apifetch/cmd/apifetch/config"
	"github.com/loykin/apifetch/internal/common"
	"github.com/loykin/apifetch/internal/metrics"
	"github.com/loykin/apifetch/internal/request"
	"github.com/loykin/apifetch/internal/util"
	"github.com/loykin/apifetch/pkg/endpoint"
	"github.com/loykin/apifetch/pkg/env"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is what a command needs once the config is loaded.
type app struct {
	doc      *config.ConfigDoc
	env      *env.Env
	client   *request.Client
	registry *prometheus.Registry
	log      *common.Logger
	out      io.Writer
}

// loadApp reads the config named by the "config" key, applies the
// "log_level" override and builds the request client.
func loadApp(cmd *cobra.Command) (*app, error) {
	v := viper.GetViper()
	doc := &config.ConfigDoc{}
	if p, ok := util.TrimEmptyCheck(v.GetString("config")); ok {
		if err := doc.Load(p); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if lvl, ok := util.TrimEmptyCheck(v.GetString("log_level")); ok {
		doc.Logging.Level = lvl
	}
	if err := doc.SetupLogging(); err != nil {
		return nil, err
	}

	h, err := doc.HTTPC()
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	opts := []request.Option{request.WithHTTPC(h), request.WithMetrics(m)}
	for k, val := range doc.Client.Headers {
		opts = append(opts, request.WithHeader(k, val))
	}
	if doc.Client.StrictQuery {
		opts = append(opts, request.WithQueryPolicy(request.QueryStrict))
	}

	e := doc.GetEnv()
	e.Seal()
	return &app{
		doc:      doc,
		env:      e,
		client:   request.NewClient(opts...),
		registry: reg,
		log:      common.GetLogger().WithComponent("cli"),
		out:      cmd.OutOrStdout(),
	}, nil
}

// parseSet turns k=v into a param. Integers, floats, true/false and null are
// typed; anything else is a string. Use --set-string to force a string.
func parseSet(s string, forceString bool) (endpoint.Param, error) {
	k, v, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return endpoint.Param{}, fmt.Errorf("invalid param %q (want key=value)", s)
	}
	if forceString {
		return endpoint.P(k, endpoint.String(v)), nil
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return endpoint.P(k, endpoint.Int(i)), nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && strings.ContainsAny(v, ".eE") {
		return endpoint.P(k, endpoint.Float(f)), nil
	}
	switch v {
	case "true", "false":
		return endpoint.P(k, endpoint.Bool(v == "true")), nil
	case "null":
		return endpoint.P(k, endpoint.Null()), nil
	}
	return endpoint.P(k, endpoint.String(v)), nil
}

func parseSets(typed, literal []string) ([]endpoint.Param, error) {
	var out []endpoint.Param
	for _, s := range typed {
		p, err := parseSet(s, false)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	for _, s := range literal {
		p, err := parseSet(s, true)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
