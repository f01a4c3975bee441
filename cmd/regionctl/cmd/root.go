package cmd

import (
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "regionctl",
	Short: "Cache region administration CLI",
	Long:  "Inspect and clear cache regions on a shared redis deployment.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("addr", "127.0.0.1:6379", "redis address")
	rootCmd.PersistentFlags().Int("db", 0, "redis database")
	rootCmd.PersistentFlags().String("password", "", "redis password")

	viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
}

func initConfig() {
	viper.SetEnvPrefix("REGIONCTL")
	viper.AutomaticEnv()
}

func newClient() redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     viper.GetString("addr"),
		DB:       viper.GetInt("db"),
		Password: viper.GetString("password"),
	})
}
