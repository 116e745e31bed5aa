package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/groblegark/confpub/internal/client"
	"github.com/groblegark/confpub/internal/engine"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	jsonOutput bool
	actor      string
	actorName  string

	configClient client.ConfigClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.email").Output()
	if err == nil {
		email := strings.TrimSpace(string(out))
		if email != "" {
			return email
		}
	}
	return "unknown"
}

func defaultActorName() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return ""
}

func defaultServer() string {
	if s := os.Getenv("CONFPUB_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:   "cpc <command>",
	Short: "CLI client for the confpub service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configClient = client.NewHTTPClient(serverURL, activeRemoteToken(), engine.Actor{
			ID:   actor,
			Name: actorName,
		})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if configClient != nil {
			return configClient.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "confpub server base URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor id for changed_by fields")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor-name", defaultActorName(), "actor display name")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
