package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"p9e.in/procurement/config"
	"p9e.in/procurement/handlers"
	"p9e.in/procurement/pkg/storage"
	"p9e.in/procurement/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	settings := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(settings.LogLevel),
	})))

	// Connect also runs migrations
	config.Connect(settings)

	store, err := storage.Open(context.Background(), settings.StorageBackend, settings.GCSBucket, settings.UploadDir)
	if err != nil {
		slog.Error("could not open blob storage", "backend", settings.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	engine := handlers.NewEngine(config.DB, store)
	handler := routes.RegisterRoutes(engine)

	slog.Info("server starting", "port", settings.Port, "version", Version)
	if err := http.ListenAndServe(":"+settings.Port, handler); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
