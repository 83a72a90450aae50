package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"waferplot/adapters/api"
	"waferplot/adapters/excel"
	"waferplot/adapters/render"
	"waferplot/app"
	"waferplot/domain/measurement"
	"waferplot/internal/config"
	"waferplot/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	excelConfig := excel.DefaultExcelConfig()
	excelConfig.Sheet = appConfig.Input.Sheet
	excelConfig.CoercionConfig.DecimalComma = appConfig.Input.DecimalComma
	service := app.NewPlotService(excel.NewDataReader(excelConfig), render.NewRenderer())

	layout := measurement.DefaultLayout()
	layout.IndexRow = appConfig.Input.IndexRow
	handler := api.NewServer(service, api.Config{
		Layout: layout,
		Scatter: app.ScatterOptions{
			Codes:           appConfig.Plot.TargetCodes,
			TrackedCapacity: appConfig.Plot.TrackedCapacity,
			MaxIndex:        appConfig.Plot.MaxIndex,
			RegionPadding:   appConfig.Plot.RegionPadding,
			Style: ports.ChartStyle{
				Title:  appConfig.Plot.Title,
				XLabel: appConfig.Plot.XAxisLabel,
				YLabel: appConfig.Plot.YAxisLabel,
				Width:  appConfig.Plot.Width,
				Height: appConfig.Plot.Height,
			},
		},
		MaxUploadBytes: int64(appConfig.Server.MaxUploadMB) << 20,
	})

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Performance profiling server starting on :%s", appConfig.Profiling.Port)
			log.Printf("View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("waferplot API listening on :%s (target codes %v)", appConfig.Server.Port, appConfig.Plot.TargetCodes)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}
