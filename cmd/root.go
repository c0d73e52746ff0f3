package cmd

import (
	"strings"

	"github.com/addrgate/addrgate/internal/bootstrap"
	"github.com/addrgate/addrgate/internal/config"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "addrgate",
	Short: "Scoped, revocable sharing of verified postal addresses.",
	Long:  `Addrgate lets users grant third-party apps time-boxed, field-scoped, revocable read access to their verified address through an OAuth-style code and token flow.`,
	Run: func(cmd *cobra.Command, args []string) {
		var conf config.Config

		err := viper.Unmarshal(&conf)
		HandleError(err, "Failed to parse config")

		validate := validator.New()
		err = validate.Struct(conf)
		HandleError(err, "Invalid config")

		level, err := zerolog.ParseLevel(conf.LogLevel)
		HandleError(err, "Invalid log level")
		zerolog.SetGlobalLevel(level)

		app := bootstrap.NewBootstrapApp(conf)
		err = app.Setup()
		HandleError(err, "Failed to start server")
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}

func HandleError(err error, msg string) {
	if err != nil {
		log.Fatal().Err(err).Msg(msg)
	}
}

func init() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.Flags().Int("port", 3000, "Port to run the server on.")
	rootCmd.Flags().String("address", "0.0.0.0", "Address to bind the server to.")
	rootCmd.Flags().String("app-url", "", "The public URL of the service.")
	rootCmd.Flags().String("database-path", "/data/addrgate.db", "Path to the sqlite database.")
	rootCmd.Flags().String("log-level", "info", "Log level (trace, debug, info, warn, error, fatal, panic).")
	rootCmd.Flags().String("trusted-proxies", "", "Comma separated list of trusted proxy addresses.")
	rootCmd.Flags().String("audit-log-file", "", "File to write the access audit log to.")
	rootCmd.Flags().Bool("audit-log-json", false, "Write the audit log as JSON instead of console format.")
	rootCmd.Flags().Int("access-token-expiry", 3600, "Access token lifetime in seconds.")
	rootCmd.Flags().Int("refresh-token-expiry", 2592000, "Refresh token lifetime in seconds.")
	rootCmd.Flags().Int("code-expiry", 600, "Authorization code lifetime in seconds.")
	rootCmd.Flags().Int("authorize-rate-limit", 30, "Requests per window on the authorize endpoints (0 disables).")
	rootCmd.Flags().Int("token-rate-limit", 60, "Requests per window on the token endpoint (0 disables).")
	rootCmd.Flags().Int("resource-rate-limit", 120, "Requests per window on the resource endpoints (0 disables).")
	rootCmd.Flags().Int("revoke-rate-limit", 60, "Requests per window on the revocation endpoints (0 disables).")
	rootCmd.Flags().Int("rate-limit-window", 60, "Rate limit window in seconds.")
	rootCmd.Flags().Int("webhook-timeout", 10, "Webhook delivery timeout in seconds.")
	rootCmd.Flags().Int("webhook-queue-size", 256, "Webhook dispatch queue size.")
	rootCmd.Flags().Bool("disable-notifications", false, "Disable webhook notifications entirely.")

	viper.BindEnv("port", "PORT")
	viper.BindEnv("address", "ADDRESS")
	viper.BindEnv("app-url", "APP_URL")
	viper.BindEnv("database-path", "DATABASE_PATH")
	viper.BindEnv("log-level", "LOG_LEVEL")
	viper.BindEnv("trusted-proxies", "TRUSTED_PROXIES")
	viper.BindEnv("audit-log-file", "AUDIT_LOG_FILE")
	viper.BindEnv("audit-log-json", "AUDIT_LOG_JSON")
	viper.BindEnv("access-token-expiry", "ACCESS_TOKEN_EXPIRY")
	viper.BindEnv("refresh-token-expiry", "REFRESH_TOKEN_EXPIRY")
	viper.BindEnv("code-expiry", "CODE_EXPIRY")
	viper.BindEnv("authorize-rate-limit", "AUTHORIZE_RATE_LIMIT")
	viper.BindEnv("token-rate-limit", "TOKEN_RATE_LIMIT")
	viper.BindEnv("resource-rate-limit", "RESOURCE_RATE_LIMIT")
	viper.BindEnv("revoke-rate-limit", "REVOKE_RATE_LIMIT")
	viper.BindEnv("rate-limit-window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("webhook-timeout", "WEBHOOK_TIMEOUT")
	viper.BindEnv("webhook-queue-size", "WEBHOOK_QUEUE_SIZE")
	viper.BindEnv("disable-notifications", "DISABLE_NOTIFICATIONS")

	viper.BindPFlags(rootCmd.Flags())

	rootCmd.AddCommand(versionCmd)
}
