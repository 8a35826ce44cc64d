package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"redactproxy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the redactproxy server",
	Long:  `Start the redactproxy HTTP server and begin accepting requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.log.Sync()

		srv := server.New(a.settings.Server, a.gateway, a.log)
		return srv.Start()
	},
}

func SetupServeCmd() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Server port")
	serveCmd.Flags().StringP("host", "H", "0.0.0.0", "Server host")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}
