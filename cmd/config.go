package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nodewee/file-to-text/pkg/config"
	"github.com/nodewee/file-to-text/pkg/constants"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage configuration settings.

Configuration is stored as YAML in ~/.file-to-text/config.yaml (or the file
given with --config). Environment variables prefixed with FILE_TO_TEXT_ override
file values, e.g. FILE_TO_TEXT_SERVER_ADDR=:9000.

Available commands:
  list  - Show the effective configuration
  get   - Get a specific value
  set   - Set a specific value in the config file

Examples:
  file-to-text config list
  file-to-text config get server.max_upload_mb
  file-to-text config set conversion.enable_plugins true
  file-to-text config set conversion.calibre_path /opt/calibre/ebook-convert`,
}

// listConfig prints the effective configuration as YAML
func listConfig() {
	fmt.Println("🛠️  Configuration")
	fmt.Println("=================")

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Printf("❌ Error loading configuration: %v\n", err)
		return
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Printf("📁 Config file: %s\n\n", used)
	} else if path, err := configFilePath(); err == nil {
		fmt.Printf("📁 Config file: %s (not created yet)\n\n", path)
	}

	rendered, err := config.RenderYAML(cfg)
	if err != nil {
		fmt.Printf("❌ Error rendering configuration: %v\n", err)
		return
	}
	fmt.Print(rendered)

	fmt.Printf("\n💡 Tip: Use '%s config get <key>' to get specific values\n", constants.AppName)
	fmt.Printf("💡 Tip: Keys: %v\n", config.ListConfigKeys())
}

// getConfig gets a specific configuration value
func getConfig(key string) {
	value, err := config.GetConfigValue(viper.GetViper(), key)
	if err != nil {
		fmt.Printf("❌ Error getting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("📝 %s = %v\n", key, value)
}

// setConfig sets a specific configuration value
func setConfig(key, value string) {
	path, err := configFilePath()
	if err != nil {
		fmt.Printf("❌ Error locating config file: %v\n", err)
		return
	}

	if err := config.SetConfigValue(path, key, value); err != nil {
		fmt.Printf("❌ Error setting config value '%s': %v\n", key, err)
		return
	}

	fmt.Printf("✅ Successfully set %s = %v\n", key, value)
	fmt.Printf("📁 Saved to: %s\n", path)
}

// configFilePath is the file `config set` writes: --config, the file in use, or the user default
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	return config.GetConfigFilePath()
}

// configListCmd represents the 'config list' command
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listConfig()
	},
}

// configGetCmd represents the 'config get' command
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		getConfig(args[0])
	},
}

// configSetCmd represents the 'config set' command
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a specific configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setConfig(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
