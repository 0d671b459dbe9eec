package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/bobmcallan/flowlens/internal/app"
)

func main() {
	var (
		filePath   = flag.String("file", "", "path to the flow export (.csv or .xlsx)")
		userID     = flag.String("user", "", "user id to ingest under (default: default)")
		source     = flag.String("source", "", "source label stored on every trade (default: file name)")
		configPath = flag.String("config", "", "path to flowlens.toml (overrides FLOWLENS_CONFIG)")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: flowlens-ingest -file <flow.csv|flow.xlsx> [-user id] [-source label] [-config path]")
		os.Exit(2)
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	report, err := app.IngestFile(context.Background(), a.IngestService, a.Logger, *filePath, *userID, *source)
	a.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
