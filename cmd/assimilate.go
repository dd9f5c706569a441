package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/logging"
)

var (
	assimilateMagnetFlag  string
	assimilatePayloadFlag string
	assimilatePolicyFlag  string

	assimilateCmd = &cobra.Command{
		Use:   "assimilate",
		Short: "Run the full trust pipeline over a received shard",
		Long:  longAssimilate,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(assimilatePayloadFlag)

			if err != nil {
				return err
			}

			engine, _, err := buildEngine(assimilatePolicyFlag)

			if err != nil {
				return err
			}

			decision := engine.Evaluate(assimilateMagnetFlag, payload)

			if audit, err := logging.OpenAudit(dataPath("audit.file")); err == nil {
				defer audit.Close()

				if err := audit.Record(decision); err != nil {
					log.Error("failed to record decision", "error", err)
				}
			}

			fmt.Println("state: ", decision.State)
			fmt.Println("policy:", decision.Policy)

			if decision.Accepted() {
				fmt.Printf("score:  %.4f\n", decision.Score)
				return nil
			}

			fmt.Println("reason:", decision.Reason)

			if decision.Detail != "" {
				fmt.Println("detail:", decision.Detail)
			}

			return fmt.Errorf("shard rejected: %s", decision.Reason)
		},
	}
)

func init() {
	rootCmd.AddCommand(assimilateCmd)

	assimilateCmd.Flags().StringVar(&assimilateMagnetFlag, "magnet", "", "Magnet locator of the shard")
	assimilateCmd.Flags().StringVar(&assimilatePayloadFlag, "payload", "", "Path to the downloaded payload")
	assimilateCmd.Flags().StringVar(&assimilatePolicyFlag, "policy", "", "Trust policy (paranoid, strict, balanced, open)")

	_ = assimilateCmd.MarkFlagRequired("magnet")
	_ = assimilateCmd.MarkFlagRequired("payload")
}

var longAssimilate = `
Evaluate a received shard against the local trust policy: the locator is
decoded and validated, the signature verified, the payload scanned, and the
creator's reputation checked before the shard is accepted. Every decision is
appended to the audit log.

Examples:
  # Evaluate with the configured policy
  synapse-go assimilate --magnet "magnet:?xt=urn:btih:..." --payload shard.db

  # Evaluate under a stricter policy for this call only
  synapse-go assimilate --magnet "..." --payload shard.db --policy paranoid
`
