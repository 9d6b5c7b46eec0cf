package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/memora-app/memora/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "memora",
	Short: "Face recognition training backend for people with prosopagnosia",
	Long: `Memora is the backend for a face recognition training application.
It serves adaptive training exercises (caricature recognition, feature
spacing, trait identification and face morphing), tracks per-module
progress, and generates memory cues for the people a user registers.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logging.SetLevel(level)
	}
}
