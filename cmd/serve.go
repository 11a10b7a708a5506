package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nodewee/file-to-text/pkg/logger"
	"github.com/nodewee/file-to-text/pkg/utils"
	"github.com/nodewee/file-to-text/pkg/web"
)

// serveCmd starts the web UI and JSON API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Long: `Start the single-page converter UI and its JSON API.

Routes:
  GET  /                       upload page
  POST /                       convert the uploaded file and show the preview
  POST /api/convert            JSON preview, download metadata and full text
  POST /api/convert/download   full text as a .txt attachment
  GET  /api/formats            accepted extensions and registered converters
  GET  /health                 health check`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		handler := NewAppHandler()
		if err := handler.Serve(); err != nil {
			log.Fatalf("Error: %s", utils.UserMessage(err))
		}
	},
}

// Serve runs the web server until SIGINT or SIGTERM
func (h *AppHandler) Serve() error {
	if err := h.initialize(); err != nil {
		return err
	}
	defer h.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverCfg := h.config.Server
	webHandler := web.NewHandler(h.orchestrator, h.processor.Factory(), serverCfg.MaxUploadBytes(), version, h.logger)
	server := web.NewServer(serverCfg, webHandler, h.logger)

	h.logger.ProgressAlways("🌐", "Serving on http://localhost%s", portSuffix(serverCfg.Addr))
	h.logger.With(logger.Fields{
		"plugins":    h.config.Conversion.EnablePlugins,
		"converters": h.processor.Factory().ListConverters(),
		"max_mb":     serverCfg.MaxUploadMB,
	}).Info("converter pipeline ready")

	if err := server.Run(ctx); err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "server failed")
	}
	return nil
}

// portSuffix returns ":port" from a listen address such as ":8501" or "0.0.0.0:8501"
func portSuffix(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i:]
		}
	}
	return ""
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8501)")
	serveCmd.Flags().Int64("max-upload-mb", 0, "upload size limit in MB (default 200)")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.max_upload_mb", serveCmd.Flags().Lookup("max-upload-mb"))

	rootCmd.AddCommand(serveCmd)
}
