package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd/cmdutil"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/cmd/users"
	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/config"
)

var (
	cfg     *config.Config
	logger  *zap.Logger
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "taskapi",
	Short: "Task API server",
	Long: `Task API serves a JSON task list over HTTP. Every /tasks request is
authenticated with an HS256 bearer token naming an existing user.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = cmdutil.NewLogger(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML/JSON/TOML config file")
	flags.String("db-url", "", "Database connection URL (env: TASKAPI_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: TASKAPI_SERVER_ADDR)")
	flags.Bool("debug", false, "Enable debug logging (env: TASKAPI_DEBUG)")

	bindFlag("database_url", "db-url")
	bindFlag("server_addr", "server-addr")
	bindFlag("debug", "debug")

	rootCmd.AddCommand(users.UsersCmd)
}

// bindFlag binds a persistent flag to a viper key so that an explicitly set
// flag overrides environment and file values.
func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
