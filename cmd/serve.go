package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"scholarscout/internal/logger"
	"scholarscout/internal/server"
	"scholarscout/internal/session"
	"scholarscout/internal/workflow"
)

const (
	defaultAddress     = ":8080"
	defaultSessionTTL  = time.Hour
	defaultMaxUploadMB = 15
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening workflow over HTTP for the browser frontend",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default "+defaultAddress+")")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the "+app+" server", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	address := defaultAddress
	sessionTTL := defaultSessionTTL
	maxUpload := int64(defaultMaxUploadMB) << 20

	if config.Server != nil {
		if config.Server.Address != "" {
			address = config.Server.Address
		}
		if config.Server.SessionTTL > 0 {
			sessionTTL = config.Server.SessionTTL
		}
		if config.Server.MaxUploadMB > 0 {
			maxUpload = config.Server.MaxUploadMB << 20
		}
	}
	if flag := viper.GetString("server.address"); flag != "" {
		address = flag
	}

	useLLM := false
	if config.AI != nil {
		useLLM = config.AI.UseLLM
	}

	flow := workflow.New(nil, instituteFromConfig(config), logger)
	sessions := session.NewManager(sessionTTL, logger)

	srv := server.New(flow, sessions, server.Options{
		Address:   address,
		MaxUpload: maxUpload,
		UseLLM:    useLLM,
		Model:     modelConfig(config, logger),
	}, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down", zap.String("reason", "signal received"))

		if err := srv.Shutdown(); err != nil {
			logger.Error("draining the server", zap.Error(err))
		}
	}()

	if err := srv.Listen(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
