package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/champa/scrapbook/server"
	"github.com/coreos/go-systemd/daemon"
	"github.com/cyclopcam/logs"
)

func main() {
	parser := argparse.NewParser("scrapbook", "Private, password protected photo and video scrapbook")
	configFile := parser.String("c", "config", &argparse.Options{Help: "Config file (optional; environment variables override it)", Default: ""})
	listenAddr := parser.String("l", "listen", &argparse.Options{Help: "HTTP listen address", Default: ":3000"})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := server.LoadConfig(logger, *configFile)
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	srv, err := server.NewServer(logger, cfg)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	srv.ListenForKillSignals()

	// Tell systemd that we're alive
	daemon.SdNotify(false, daemon.SdNotifyReady)

	if err := srv.ListenHTTP(*listenAddr); err != nil {
		logger.Errorf("ListenHTTP returned: %v", err)
		os.Exit(1)
	}
	// ListenHTTP returns as soon as Shutdown starts, so wait for it to finish
	<-srv.ShutdownComplete
}
