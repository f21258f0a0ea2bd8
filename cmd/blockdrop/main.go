package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"blockdrop/client"

	"github.com/eiannone/keyboard"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[24;0H\n\r\033[?25h"
)

func main() {
	addr := flag.String("addr", "", "server address for online games (defaults to $GRPC_ADDR or localhost:9000)")
	logFile := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	if *addr == "" {
		*addr = os.Getenv("GRPC_ADDR")
	}
	if *addr == "" {
		*addr = "localhost:9000"
	}

	// the terminal is taken by the game so logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unable to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cl, err := client.New(logger, &client.Options{Address: *addr, Writer: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to start: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}()

	fmt.Print(hideCursor)
	cl.Start()
	fmt.Print(showCursor)
}
