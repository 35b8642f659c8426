// Command docreader reads, classifies and scans aviation documents locally, using the same
// readers the API ingests with.
package main

import (
	"os"

	"github.com/akolanti/AviationCompliance/internal/config"
	"github.com/akolanti/AviationCompliance/pkg/logger_i"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		os.Stderr.WriteString("loading .env: " + err.Error() + "\n")
	}
	logger_i.Init(logger_i.Options{Production: config.IsProd, Level: config.LogLevel, Output: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
