package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"valgate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the valgate server",
	Long:  `Start the valgate HTTP server and begin accepting validation requests.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime()
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		srv := server.NewHTTPServer(rt.cfg.Server.Addr(), rt.engine, rt.log)
		srv.SetMaxBodyBytes(rt.cfg.Server.MaxBodyBytes)
		return srv.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Server port")
	serveCmd.Flags().StringP("host", "H", "0.0.0.0", "Server host")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}
