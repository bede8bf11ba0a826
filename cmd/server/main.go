package main

import (
	"context"
	"log"

	"github.com/mkatbalasd/PDFCompress/config"
	"github.com/mkatbalasd/PDFCompress/internal/server"

	_ "github.com/mkatbalasd/PDFCompress/cmd/server/docs"
)

// @title           PDF Compression Service API
// @version         1.0
// @description     Compresses PDF documents with Ghostscript, synchronously or through queued jobs.

// @host      localhost:8080
// @BasePath  /

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	ctx := context.Background()
	s := server.NewServer(cfg)
	s.Run(ctx, cfg)
}
