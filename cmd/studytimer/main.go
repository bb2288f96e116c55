// studytimer is the backend for the study-timer web app: a pomodoro
// countdown with task lists, session history and weekly goals.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studytimer",
	Short: "Study timer backend",
	Long: `Backend API for the study timer web app.

  studytimer serve      Start the HTTP server
  studytimer migrate    Apply pending database migrations`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
