package ctl

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tenant-platform/internal/ctl/api"
)

var (
	cfgFile   string
	serverURL string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tenantctl",
	Short: "tenantctl - admin CLI for the tenant platform",
	Long: `tenantctl manages the tenant platform from the command line:
the signup request queue, tenant lifecycle (approve, reject, suspend,
activate) and the operator's own sessions.

It talks to the platform's REST API and stores its session token in
the config file after login.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tenantctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "platform API base URL (default http://localhost:8080)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(tenantsCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tenantctl")
	}

	viper.SetDefault("server_url", "http://localhost:8080")

	// Environment variables
	viper.SetEnvPrefix("TENANTCTL")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	_ = viper.ReadInConfig()

	if serverURL != "" {
		viper.Set("server_url", serverURL)
	}
}

// newClient builds an API client from the active configuration.
func newClient() *api.Client {
	return api.NewClient(viper.GetString("server_url"), viper.GetString("token"))
}

// saveToken writes the session token back into the config file so
// subsequent invocations stay authenticated.
func saveToken(token string) error {
	viper.Set("token", token)

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".tenantctl.yaml")
	}
	return viper.WriteConfigAs(path)
}

// parseIDs converts positional arguments into numeric ids.
func parseIDs(args []string) ([]uint, error) {
	ids := make([]uint, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", arg)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
