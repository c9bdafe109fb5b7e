package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/champa/scrapbook/server"
	"github.com/champa/scrapbook/server/media"
	"github.com/champa/scrapbook/server/storage"
	"github.com/cyclopcam/logs"
)

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// Order of preference: -m, $MEDIA_DIR, public/media (if it exists), champa-resources
func resolveMediaDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := strings.TrimSpace(os.Getenv(server.EnvMediaDir)); env != "" {
		return env
	}
	publicMedia := filepath.Join("public", "media")
	if st, err := os.Stat(publicMedia); err == nil && st.IsDir() {
		return publicMedia
	}
	return server.DefaultMediaDir
}

func main() {
	parser := argparse.NewParser("manifest", "Scan a media directory, and write the sorted media manifest")
	mediaDirArg := parser.String("m", "media", &argparse.Options{Help: "Media directory", Default: ""})
	output := parser.String("o", "output", &argparse.Options{Help: "Manifest file to write", Default: filepath.Join(server.DefaultContentDir, media.ManifestFilename)})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	check(err)

	mediaDir := resolveMediaDir(*mediaDirArg)
	store, err := storage.NewStorageFS(logger, mediaDir)
	check(err)
	names, err := store.List(context.Background())
	check(err)
	items := media.ScanItems(names)

	raw, err := json.MarshalIndent(items, "", "  ")
	check(err)
	check(os.MkdirAll(filepath.Dir(*output), 0755))
	check(os.WriteFile(*output, append(raw, '\n'), 0644))

	stats := media.ComputeStats(items)
	firstDate, lastDate := stats.FirstDate, stats.LastDate
	if stats.Total == 0 {
		firstDate, lastDate = "n/a", "n/a"
	}
	fmt.Printf("Manifest written: %v\n", *output)
	fmt.Printf("Media directory: %v\n", mediaDir)
	fmt.Printf("Items: %v (photos: %v, videos: %v)\n", stats.Total, stats.Photos, stats.Videos)
	fmt.Printf("Timeline: %v -> %v\n", firstDate, lastDate)
}
