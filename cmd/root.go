package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gnunet-go/gns/config"
	"github.com/gnunet-go/gns/log"
	"github.com/gnunet-go/gns/metrics"
	"github.com/gnunet-go/gns/util"
)

//nolint:gochecknoglobals
var (
	version   = "undefined"
	buildTime = "undefined"

	configPath string
	cfg        *config.Config
)

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "gns",
	Short: "gns is a GNU Name System resolver",
	Long: `A recursive resolver for the GNU Name System: it walks chains of
cryptographic zone delegations across namestore, DHT and legacy DNS.`,
	Run: func(cmd *cobra.Command, args []string) {
		util.FatalOnError("can't print help: ", cmd.Help())
	},
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "path to config file")
}

func initConfig() {
	if _, err := os.Stat(configPath); err != nil {
		cfg = config.NewDefaultConfig()
	} else {
		loaded, err := config.NewConfig(configPath)
		util.FatalOnError("can't load config: ", err)

		cfg = loaded
	}

	log.ConfigureLogger(cfg.Log)
	metrics.StartCollection()
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
