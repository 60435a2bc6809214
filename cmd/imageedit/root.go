package main

import (
	"fmt"

	"github.com/mhpenta/imageedit/internal/config"
	"github.com/mhpenta/imageedit/internal/logging"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	envFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "imageedit",
	Short: "Edit images with a text instruction using Gemini",
	Long: `imageedit edits an uploaded image according to a natural-language
instruction. Run "imageedit serve" for the browser UI or "imageedit edit"
for a single edit from the command line.

The Gemini API key is read from GEMINI_API_KEY (or IMAGEEDIT_API_KEY), a
.env file, or the config file. It is never sent to the browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		logging.Init(v.GetString("log_level"), v.GetBool("log_console"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("model", "", "Model to use: nano-banana-1 or nano-banana-2")

	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))

	rootCmd.AddCommand(serveCmd, editCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}
