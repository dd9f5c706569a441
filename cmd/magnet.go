package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hivebrain/synapse-go/pkg/locator"
	"github.com/hivebrain/synapse-go/pkg/shard"
)

var (
	magnetTrackersFlag []string

	magnetCmd = &cobra.Command{
		Use:   "magnet",
		Short: "Encode and decode shard magnet locators",
		Long:  longMagnet,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	magnetEncodeCmd = &cobra.Command{
		Use:   "encode <payload file>",
		Short: "Build a magnet locator from a shard's sidecar metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shard.LoadMetadata(shard.MetadataPath(args[0]))

			if err != nil {
				return err
			}

			trackers := magnetTrackersFlag

			if len(trackers) == 0 {
				trackers = viper.GetStringSlice("trackers")
			}

			fmt.Println(locator.Encode(s.Locator(trackers)))
			return nil
		},
	}

	magnetDecodeCmd = &cobra.Command{
		Use:   "decode <magnet uri>",
		Short: "Decode and validate a magnet locator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := locator.Decode(args[0])

			if err != nil {
				return err
			}

			fmt.Println("topic hash:  ", loc.TopicHash)
			fmt.Println("display name:", loc.DisplayName)
			fmt.Println("model:       ", loc.ModelID)
			fmt.Println("dimensions:  ", loc.Dimensions)
			fmt.Println("tags:        ", strings.Join(loc.Tags, ", "))
			fmt.Println("trackers:    ", strings.Join(loc.Trackers, ", "))
			fmt.Println("signed:      ", loc.Signed())

			if loc.Signed() {
				fmt.Println("signer id:   ", loc.SignerID)
			}

			for key, value := range loc.Extra {
				fmt.Printf("extension:    %s=%s\n", key, value)
			}

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(magnetCmd)
	magnetCmd.AddCommand(magnetEncodeCmd)
	magnetCmd.AddCommand(magnetDecodeCmd)

	magnetEncodeCmd.Flags().StringSliceVar(&magnetTrackersFlag, "trackers", nil, "Tracker URLs to announce on (defaults to the configured list)")
}

var longMagnet = `
Work with the magnet locator wire format. Encoding is canonical: the same
shard always produces byte-identical output, so locators can be compared
and deduplicated as strings.

Examples:
  # Produce a shareable locator from a shard sidecar
  synapse-go magnet encode memories.db

  # Inspect a received locator
  synapse-go magnet decode "magnet:?xt=urn:btih:..."
`
