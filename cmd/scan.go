package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/scanner"
	"github.com/hivebrain/synapse-go/pkg/shard"
)

var (
	scanCmd = &cobra.Command{
		Use:   "scan <payload file>",
		Short: "Scan a shard payload for unsafe content",
		Long:  longScan,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])

			if err != nil {
				return err
			}

			meta := scanner.Metadata{}

			// A sidecar, when present, lets the scanner see the fields a
			// recipient would receive through the locator.
			if s, err := shard.LoadMetadata(shard.MetadataPath(args[0])); err == nil {
				meta = scanner.Metadata{
					DisplayName: s.DisplayName,
					Tags:        s.Tags,
					Dimensions:  s.Dimensions,
				}
			}

			verdict := buildScanner().Scan(meta, payload)

			for _, finding := range verdict.Findings {
				fmt.Printf("%-8s %-18s %-24s %s\n",
					finding.Severity, finding.Family, finding.RuleID, finding.Location)
			}

			if !verdict.Passed {
				return fmt.Errorf("scan failed with %d findings", len(verdict.Findings))
			}

			fmt.Println("scan passed")
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(scanCmd)
}

var longScan = `
Run the content scanner over a local payload file without the rest of the
assimilation pipeline. If a shard sidecar exists next to the payload, its
display name, tags and dimensions are scanned too.

Examples:
  synapse-go scan downloaded-shard.db
`
