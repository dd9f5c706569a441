package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hivebrain/synapse-go/pkg/identity"
)

var (
	forceFlag     bool
	algorithmFlag string

	identityCmd = &cobra.Command{
		Use:   "identity",
		Short: "Manage the agent's signing identity",
		Long:  longIdentity,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	identityGenerateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a new key pair and agent id",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dataPath("identity.dir")

			if identity.Exists(dir) && !forceFlag {
				return fmt.Errorf("an identity already exists in %s, use --force to overwrite", dir)
			}

			id, err := identity.GenerateWithAlgorithm(algorithmFlag)

			if err != nil {
				return err
			}

			if err := id.Save(dir); err != nil {
				return err
			}

			fmt.Println("agent id:", id.AgentID)
			return nil
		},
	}

	identityShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := identity.Load(dataPath("identity.dir"))

			if err != nil {
				return err
			}

			fmt.Println("agent id: ", id.AgentID)
			fmt.Println("algorithm:", id.Algorithm)
			fmt.Println("public key:", base64.RawURLEncoding.EncodeToString(id.PublicKeyBytes()))
			fmt.Println("can sign: ", id.CanSign())
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.AddCommand(identityGenerateCmd)
	identityCmd.AddCommand(identityShowCmd)

	identityGenerateCmd.Flags().BoolVar(&forceFlag, "force", false, "Overwrite an existing identity")
	identityGenerateCmd.Flags().StringVar(&algorithmFlag, "algorithm", identity.DefaultAlgorithm, "Signature scheme to use")
}

var longIdentity = `
Manage the post-quantum signing identity for this agent.

The agent id is derived from the public key, so it cannot be chosen and
cannot be spoofed without the matching private key.

Examples:
  # Generate a fresh identity
  synapse-go identity generate

  # Inspect the stored identity
  synapse-go identity show
`
