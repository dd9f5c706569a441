package cmd

import (
	"context"

	"github.com/spf13/viper"

	"github.com/hivebrain/synapse-go/pkg/assimilation"
	"github.com/hivebrain/synapse-go/pkg/node"
	"github.com/hivebrain/synapse-go/pkg/reputation"
	"github.com/hivebrain/synapse-go/pkg/scanner"
	"github.com/hivebrain/synapse-go/pkg/stores/s3"
	"github.com/hivebrain/synapse-go/pkg/transport"
)

func buildScanner() *scanner.Scanner {
	return scanner.New(
		scanner.WithWarningFamilyLimit(viper.GetInt("scanner.warning_family_limit")),
	)
}

func buildLedger() (*reputation.Ledger, error) {
	return reputation.LoadFile(
		dataPath("ledger.file"),
		reputation.WithDecay(viper.GetFloat64("reputation.decay")),
	)
}

func buildEngine(policyName string) (*assimilation.Engine, *reputation.Ledger, error) {
	if policyName == "" {
		policyName = viper.GetString("policy")
	}

	policy, err := assimilation.PolicyByName(policyName)

	if err != nil {
		return nil, nil, err
	}

	ledger, err := buildLedger()

	if err != nil {
		return nil, nil, err
	}

	return assimilation.NewEngine(policy, buildScanner(), ledger), ledger, nil
}

/*
buildNode wires the local peer over whichever payload store is configured:
object storage when an s3 endpoint is set, the local filesystem otherwise.
*/
func buildNode(ctx context.Context) (*node.Node, error) {
	trackers := viper.GetStringSlice("trackers")

	if endpoint := viper.GetString("s3.endpoint"); endpoint != "" {
		conn, err := s3.NewConn(ctx, s3.Config{
			Endpoint:  endpoint,
			AccessKey: viper.GetString("s3.access_key"),
			SecretKey: viper.GetString("s3.secret_key"),
			Bucket:    viper.GetString("s3.bucket"),
			UseSSL:    viper.GetBool("s3.use_ssl"),
		})

		if err != nil {
			return nil, err
		}

		store := s3.NewStore(conn)
		return node.New(store, store, trackers), nil
	}

	store, err := transport.NewLocalStore(dataPath("storage.dir"))

	if err != nil {
		return nil, err
	}

	return node.New(store, store, trackers), nil
}
