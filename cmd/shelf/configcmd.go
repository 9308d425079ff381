package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papershelf/papershelf/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global configuration",
}

// ConfigResponse is the view returned by `shelf config get`: the stored
// settings plus the paths they resolve to.
type ConfigResponse struct {
	ConfigPath            string  `json:"config_path"`
	DataDir               string  `json:"data_dir"`
	RegistryMailTo        string  `json:"registry_mailto,omitempty"`
	HTTPTimeoutSeconds    float64 `json:"http_timeout_seconds,omitempty"`
	HTTPRetries           int     `json:"http_retries,omitempty"`
	LooseAbstractOverride bool    `json:"loose_abstract_override"`
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			exitWithError(ExitConfigError, "loading config: %v", err)
		}

		resp := ConfigResponse{
			ConfigPath:            config.GlobalConfigPath(),
			DataDir:               cfg.ResolveDataDir(),
			RegistryMailTo:        cfg.RegistryMailTo,
			HTTPTimeoutSeconds:    cfg.HTTPTimeoutSeconds,
			HTTPRetries:           cfg.HTTPRetries,
			LooseAbstractOverride: cfg.LooseAbstractOverride,
		}
		if humanOutput {
			cmd.Printf("config:   %s\n", resp.ConfigPath)
			cmd.Printf("data dir: %s\n", resp.DataDir)
			if resp.RegistryMailTo != "" {
				cmd.Printf("mailto:   %s\n", resp.RegistryMailTo)
			}
			return
		}
		outputJSON(resp)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the global config file.

Keys: data_dir, registry_mailto, http_timeout_seconds, http_retries,
loose_abstract_override`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadGlobalConfig()
		if err != nil {
			exitWithError(ExitConfigError, "loading config: %v", err)
		}

		key, value := args[0], args[1]
		switch key {
		case "data_dir":
			cfg.DataDir = config.ExpandTilde(value)
		case "registry_mailto":
			cfg.RegistryMailTo = value
		case "http_timeout_seconds":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f <= 0 {
				exitWithError(ExitError, "http_timeout_seconds must be a positive number")
			}
			cfg.HTTPTimeoutSeconds = f
		case "http_retries":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				exitWithError(ExitError, "http_retries must be a non-negative integer")
			}
			cfg.HTTPRetries = n
		case "loose_abstract_override":
			b, err := strconv.ParseBool(value)
			if err != nil {
				exitWithError(ExitError, "loose_abstract_override must be true or false")
			}
			cfg.LooseAbstractOverride = b
		default:
			exitWithError(ExitError, "unknown config key %q", key)
		}

		if err := cfg.Save(); err != nil {
			exitWithError(ExitConfigError, "saving config: %v", err)
		}

		if humanOutput {
			cmd.Printf("%s = %s\n", key, value)
			return
		}
		outputJSON(StatusResponse{Status: "saved"})
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
