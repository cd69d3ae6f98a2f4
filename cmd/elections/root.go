package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/constants"
	"github.com/MinnPost/minnpost-elections-dashboard/internal/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elections",
		Short: "Minnesota election results scraper and API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			logger.Init(viper.GetBool(constants.ViperDebug))
		},
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

func initConfig() {
	viper.SetEnvPrefix("elections")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(constants.ViperListenAddr, ":5000")
	viper.SetDefault(constants.ViperDatabaseURL, "postgres://localhost:5432/minnpost_mn_elections?sslmode=disable")
	viper.SetDefault(constants.ViperSourcesFile, "scraper_sources.json")
	viper.SetDefault(constants.ViperBoundaryAPI, "https://boundaries.minnpost.com/1.0/")
	viper.SetDefault(constants.ViperOverlayAPI, "https://sheets-proxy.minnpost.com/proxy")
	viper.SetDefault(constants.ViperDebug, false)
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
