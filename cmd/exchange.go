package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/locator"
	"github.com/hivebrain/synapse-go/pkg/shard"
)

var (
	fetchOutFlag string

	announceCmd = &cobra.Command{
		Use:   "announce <payload file>",
		Short: "Publish a shard's payload and print its locator",
		Long:  longAnnounce,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shard.LoadMetadata(shard.MetadataPath(args[0]))

			if err != nil {
				return err
			}

			payload, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			peer, err := buildNode(cmd.Context())

			if err != nil {
				return err
			}

			loc, err := peer.AnnounceShard(cmd.Context(), s, payload)

			if err != nil {
				return err
			}

			fmt.Println(locator.Encode(loc))
			return nil
		},
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch <magnet uri>",
		Short: "Fetch a shard's payload and verify its integrity",
		Long:  longFetch,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := locator.Decode(args[0])

			if err != nil {
				return err
			}

			peer, err := buildNode(cmd.Context())

			if err != nil {
				return err
			}

			payload, err := peer.RequestShard(cmd.Context(), loc)

			if err != nil {
				return err
			}

			out := fetchOutFlag

			if out == "" {
				out = filepath.Join(dataPath("storage.downloads"), loc.TopicHash)
			}

			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}

			if err := os.WriteFile(out, payload, 0o644); err != nil {
				return err
			}

			fmt.Println("fetched", len(payload), "bytes to", out)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchOutFlag, "out", "", "Output path (defaults to the downloads directory)")
}

var longAnnounce = `
Publish a shard's payload through the configured store (object storage when
an s3 endpoint is set, the local shard directory otherwise) and print the
magnet locator other agents can use to fetch it.

Examples:
  synapse-go announce memories.db
`

var longFetch = `
Fetch a shard's payload by its magnet locator and verify the downloaded
bytes against the topic hash before writing them out. A hash mismatch fails
the fetch, never silently accepted.

Examples:
  synapse-go fetch "magnet:?xt=urn:btih:..." --out ./shard.db
`
