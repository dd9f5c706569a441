package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hivebrain/synapse-go/pkg/logging"
	"github.com/hivebrain/synapse-go/pkg/service"
)

var (
	addrFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the trust API server",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, ledger, err := buildEngine("")

			if err != nil {
				return err
			}

			audit, err := logging.OpenAudit(dataPath("audit.file"))

			if err != nil {
				return err
			}

			defer audit.Close()

			addr := addrFlag

			if addr == "" {
				addr = viper.GetString("server.addr")
			}

			log.Info("starting trust server", "policy", viper.GetString("policy"))
			return service.NewTrustServer(addr, engine, ledger, audit).Run()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (defaults to the configured one)")
}

var longServe = `
Serve the assimilation pipeline and reputation ledger over HTTP, so sidecar
agents can evaluate shards and submit attestations without linking the core.

Endpoints:
  GET  /healthz                 liveness probe
  POST /evaluate                run the trust pipeline over a shard
  POST /attestations            record a signed quality attestation
  GET  /reputation/:agentid     current score and attestation count

Examples:
  synapse-go serve --addr :3210
`
