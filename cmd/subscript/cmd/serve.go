package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Neopallium/sub-script/pkg/api"
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP codec server",
		Long: `Start the REST API serving type listings and encode/decode endpoints under
/api/v1, with Prometheus metrics on /metrics. Snapshots stored in the data
directory are listed under /api/v1/snapshots.

Examples:
  subscript -s chain.json serve --port 9200
  subscript -s chain.json serve --api-key=mysecretkey --rate-limit 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, s, err := buildLookup(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				s.cfg.Server.Port, _ = flags.GetInt("port")
			}
			if flags.Changed("bind") {
				s.cfg.Server.Bind, _ = flags.GetString("bind")
			}
			if flags.Changed("api-key") {
				s.cfg.Server.APIKey, _ = flags.GetString("api-key")
			}
			if flags.Changed("rate-limit") {
				s.cfg.Server.RateLimit, _ = flags.GetFloat64("rate-limit")
			}
			if err := s.cfg.Validate(); err != nil {
				return err
			}

			store, err := openSnapshots(s)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			starter := container.GetServerFactory().CreateServerStarter(s.log)
			return starter.StartServer(ctx, lookup, store, api.ServerConfig{
				Port:      s.cfg.Server.Port,
				Bind:      s.cfg.Server.Bind,
				APIKey:    s.cfg.Server.APIKey,
				RateLimit: s.cfg.Server.RateLimit,
				Burst:     s.cfg.Server.Burst,
			})
		},
	}

	c.Flags().IntP("port", "p", 8080, "Port to listen on")
	c.Flags().String("bind", "127.0.0.1", "Address to bind")
	c.Flags().String("api-key", "", "API key required in X-API-Key (empty disables auth)")
	c.Flags().Float64("rate-limit", 0, "Requests per second, 0 disables limiting")
	return c
}
