package root

import (
	"os"
	"strings"

	"github.com/Kirov7/CouloyLite"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "couloy-lite",
	Short: "Embedded transactional key value engine speaking the Redis command set",
	Long: `couloy-lite runs Redis style commands against a single log file without a server process.
Every command is applied atomically and survives a crash once its reply is returned.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "f", "", "Path of the configuration file in yaml, json and toml format (optional)")
	flags.StringP("path", "d", "./couloy-lite.klite", "Log file of the storage target, :memory: keeps everything in memory")
	flags.StringP("itype", "t", "btree", "Type of memory index (hashmap/btree/art)")
	flags.Bool("sync", true, "Whether to fsync the log on every commit (true/false)")
	flags.Int64("mthreshold", 0, "Compact the log once it grows past this many bytes, 0 disables")
	flags.BoolP("verbose", "v", false, "Print engine logs to stderr")

	_ = viper.BindPFlag("engine.path", flags.Lookup("path"))
	_ = viper.BindPFlag("engine.indexType", flags.Lookup("itype"))
	_ = viper.BindPFlag("engine.syncWrites", flags.Lookup("sync"))
	_ = viper.BindPFlag("engine.mergeThreshold", flags.Lookup("mthreshold"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	// KULOY_ENGINE_PATH, KULOY_ENGINE_INDEXTYPE ...
	viper.SetEnvPrefix("KULOY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func loadConfig() error {
	if configFile == "" {
		return nil
	}
	viper.SetConfigFile(configFile)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "unable to read configuration file %s, please check whether the path is correct", configFile)
	}
	return nil
}

// Options resolves the engine options, a flag set on the command line wins
// over the environment, which wins over the configuration file
func Options() (CouloyLite.Options, error) {
	opt := CouloyLite.DefaultOptions()
	opt.Path = viper.GetString("engine.path")
	opt.SyncWrites = viper.GetBool("engine.syncWrites")
	opt.MergeThreshold = viper.GetInt64("engine.mergeThreshold")

	indexType, ok := CouloyLite.ParseIndexType(strings.ToLower(viper.GetString("engine.indexType")))
	if !ok {
		return opt, errors.Errorf("unknown index type %q, use hashmap, btree or art", viper.GetString("engine.indexType"))
	}
	opt.IndexType = indexType

	if !viper.GetBool("verbose") {
		opt.Logger = nil
	}
	return opt, nil
}

// OpenDB opens the storage target described by the resolved options
func OpenDB() (*CouloyLite.DB, error) {
	opt, err := Options()
	if err != nil {
		return nil, err
	}
	return CouloyLite.Open(opt)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func AddCommand(cmds ...*cobra.Command) {
	rootCmd.AddCommand(cmds...)
}
