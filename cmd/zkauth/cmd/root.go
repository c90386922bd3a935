package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taurusgroup/zkauth/internal/config"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// AppVersion stores the version of the binary
	AppVersion string
	// AppBuildTime stores the build time of the binary
	AppBuildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "zkauth",
	Short: "Password authentication with Chaum-Pedersen zero-knowledge proofs",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if Verbose || viper.GetBool("debug") {
			log.SetLevel(log.DebugLevel)
		}
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = AppVersion
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/zkauth/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().String("group", "default", "group parameters (default|toy)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "verifier URL")
	viper.BindPFlag("group", rootCmd.PersistentFlags().Lookup("group"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(paramsCmd)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "zkauth"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
