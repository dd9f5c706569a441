package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/identity"
	"github.com/hivebrain/synapse-go/pkg/shard"
)

var (
	shardModelFlag string
	shardDimsFlag  int
	shardCountFlag int
	shardTagsFlag  []string
	shardNameFlag  string
	shardSignFlag  bool

	shardCmd = &cobra.Command{
		Use:   "shard",
		Short: "Create and inspect memory shards",
		Long:  longShard,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	shardCreateCmd = &cobra.Command{
		Use:   "create <payload file>",
		Short: "Create a shard from a vector database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shard.CreateFromFile(
				args[0],
				shardModelFlag,
				shardDimsFlag,
				shardCountFlag,
				shardTagsFlag,
				shardNameFlag,
			)

			if err != nil {
				return err
			}

			if shardSignFlag {
				id, err := identity.Load(dataPath("identity.dir"))

				if err != nil {
					return err
				}

				if err := s.Sign(id); err != nil {
					return err
				}
			}

			path, err := s.SaveMetadata()

			if err != nil {
				return err
			}

			fmt.Println("topic hash:", s.PayloadHash)
			fmt.Println("metadata:  ", path)
			return nil
		},
	}

	shardShowCmd = &cobra.Command{
		Use:   "show <payload file>",
		Short: "Show a shard's sidecar metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shard.LoadMetadata(shard.MetadataPath(args[0]))

			if err != nil {
				return err
			}

			fmt.Println("display name:", s.DisplayName)
			fmt.Println("model:       ", s.EmbeddingModel)
			fmt.Println("dimensions:  ", s.Dimensions)
			fmt.Println("entries:     ", s.EntryCount)
			fmt.Println("tags:        ", s.Tags)
			fmt.Println("topic hash:  ", s.PayloadHash)

			if s.CreatorAgentID != "" {
				fmt.Println("creator:     ", s.CreatorAgentID)
			}

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(shardCmd)
	shardCmd.AddCommand(shardCreateCmd)
	shardCmd.AddCommand(shardShowCmd)

	shardCreateCmd.Flags().StringVar(&shardModelFlag, "model", "", "Embedding model identifier")
	shardCreateCmd.Flags().IntVar(&shardDimsFlag, "dims", 0, "Embedding dimension size")
	shardCreateCmd.Flags().IntVar(&shardCountFlag, "entries", 0, "Number of memory entries")
	shardCreateCmd.Flags().StringSliceVar(&shardTagsFlag, "tags", nil, "Comma-separated topic tags")
	shardCreateCmd.Flags().StringVar(&shardNameFlag, "name", "", "Display name (defaults to the file name)")
	shardCreateCmd.Flags().BoolVar(&shardSignFlag, "sign", true, "Sign the shard with the stored identity")

	_ = shardCreateCmd.MarkFlagRequired("model")
	_ = shardCreateCmd.MarkFlagRequired("dims")
}

var longShard = `
Create a memory shard from a local vector database file. The payload is
hashed with SHA-256 to form the shard's topic hash, and the metadata is
written to a sidecar file next to the payload.

Examples:
  # Create and sign a shard
  synapse-go shard create memories.db --model all-MiniLM-L6-v2 --dims 384 --entries 1200 --tags "golang,distributed"

  # Inspect the sidecar
  synapse-go shard show memories.db
`
