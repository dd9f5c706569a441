package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/identity"
	"github.com/hivebrain/synapse-go/pkg/reputation"
)

var (
	attestShardFlag   string
	attestCreatorFlag string
	attestScoreFlag   float64
	attestCommentFlag string

	attestCmd = &cobra.Command{
		Use:   "attest",
		Short: "Sign a quality attestation for a shard",
		Long:  longAttest,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Load(dataPath("identity.dir"))

			if err != nil {
				return err
			}

			att, err := reputation.NewAttestation(id, attestShardFlag, attestScoreFlag, attestCommentFlag)

			if err != nil {
				return err
			}

			if err := reputation.AppendFile(dataPath("ledger.file"), attestCreatorFlag, att); err != nil {
				return err
			}

			fmt.Println("attestation recorded")
			fmt.Println("rater: ", att.RaterAgentID)
			fmt.Println("shard: ", att.ShardTopicHash)
			fmt.Printf("score:  %.2f\n", att.Score)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(attestCmd)

	attestCmd.Flags().StringVar(&attestShardFlag, "shard", "", "Topic hash of the rated shard")
	attestCmd.Flags().StringVar(&attestCreatorFlag, "creator", "", "Agent id of the shard's creator")
	attestCmd.Flags().Float64Var(&attestScoreFlag, "score", 0, "Quality score in [0,1]")
	attestCmd.Flags().StringVar(&attestCommentFlag, "comment", "", "Optional free-text comment")

	_ = attestCmd.MarkFlagRequired("shard")
	_ = attestCmd.MarkFlagRequired("creator")
	_ = attestCmd.MarkFlagRequired("score")
}

var longAttest = `
Rate the quality of a shard you assimilated. The attestation is signed with
your identity, appended to the local ledger file, and counts toward the
creator's reputation score on future assimilation decisions.

Examples:
  synapse-go attest --shard a94a8fe5... --creator mfrggzdf... --score 0.9 --comment "accurate and useful"
`
