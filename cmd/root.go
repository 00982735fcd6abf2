package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"hawkdrive/config"
)

var (
	configPath string
	verbose    bool

	conf *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hawkdrive",
	Short: "A CLI program which emulates a Hawk moving-head disk drive",
	Long: "The hawkdrive tool emulates the timing and raw recording format " +
		"of a Hawk moving-head disk drive over flat disk image files.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		if configPath != "" {
			conf, err = config.Load(configPath)
		} else {
			conf, err = config.Default()
		}
		cobra.CheckErr(err)

		level := conf.LogLevel
		if verbose {
			level = "debug"
		}
		parsed, err := log.ParseLevel(level)
		cobra.CheckErr(err)
		log.SetLevel(parsed)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"configuration file (TOML); built-in defaults when omitted")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
