package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobtrack/core/cmd/api/commands"
)

// @title JobTrack API
// @version 1.0
// @description Job application tracker with reminder lifecycle and notifications

// @contact.name JobTrack Support
// @contact.url https://github.com/jobtrack/core

// @license.name MIT
// @license.url https://github.com/jobtrack/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "jobtrack",
		Short: "JobTrack API Server",
		Long:  `JobTrack keeps track of job applications and the reminders attached to them, including recurring follow-ups and due notifications.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewNotifyCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
