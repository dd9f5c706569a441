/*
Package cmd implements the command-line interface for the Synapse trust
core. It provides commands for managing the agent identity, building and
inspecting magnet locators, scanning payloads, running the assimilation
pipeline and serving the trust API.
*/
package cmd

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

/*
Embed a mini filesystem into the binary to hold the default config file.
This will be written to the home directory of the user running the service,
which allows a developer to easily override the config file.
*/
//go:embed cfg/*
var embedded embed.FS

var (
	projectName = "synapse-go"
	cfgFile     string

	rootCmd = &cobra.Command{
		Use:   "synapse-go",
		Short: "A trust and validation pipeline for P2P memory shards",
		Long:  longRoot,
	}
)

/*
Execute is the main entry point for the synapse-go CLI.
*/
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file (default is $HOME/."+projectName+"/config.yml)",
	)
}

/*
initConfig writes the default config file to the user's home directory if it
doesn't exist, then reads it back through viper.
*/
func initConfig() {
	var err error

	if err = writeConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetDefault("policy", "balanced")
	viper.SetDefault("scanner.warning_family_limit", 2)
	viper.SetDefault("reputation.decay", 0.9)
	viper.SetDefault("server.addr", ":3210")

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(configDir())

	if err = viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+projectName)
}

// dataPath resolves a config-relative path under the project directory.
func dataPath(key string) string {
	value := viper.GetString(key)

	if filepath.IsAbs(value) {
		return value
	}

	return filepath.Join(configDir(), value)
}

/*
writeConfig writes the default config file to the user's home directory.
*/
func writeConfig() (err error) {
	var (
		fh  fs.File
		buf bytes.Buffer
	)

	dir := configDir()

	if !checkFileExists(dir) {
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	for _, file := range []string{cfgFile} {
		fullPath := filepath.Join(dir, file)

		if checkFileExists(fullPath) {
			continue
		}

		if fh, err = embedded.Open("cfg/" + file); err != nil {
			return fmt.Errorf("failed to open embedded config file: %w", err)
		}

		if _, err = io.Copy(&buf, fh); err != nil {
			fh.Close()
			return fmt.Errorf("failed to read embedded config file: %w", err)
		}

		if err = os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			fh.Close()
			return fmt.Errorf("failed to write config file: %w", err)
		}

		log.Println("wrote config file to", fullPath)
		buf.Reset()
		fh.Close()
	}

	return nil
}

func checkFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

/*
longRoot contains the detailed help text for the root command.
*/
var longRoot = `
synapse-go lets autonomous agents exchange memory shards over a peer-to-peer
network while protecting each recipient from malicious or low-quality
content. Shards are named by content-addressed magnet locators, bound to
their creator with post-quantum signatures, scanned for unsafe content and
gated on the creator's decentralized reputation before anything is merged.
`
