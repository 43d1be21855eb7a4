package main

import (
	"github.com/spf13/cobra"

	"ai-memories/internal/api"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if addr == "" {
				addr = app.Config.HTTPAddr
			}
			router := api.NewRouter(app.Service, app.Config.CORSOrigins, app.Logger.Named("api"))
			return api.Serve(ctx, addr, router.Setup(), app.Logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to HTTP_ADDR)")
	return cmd
}
