package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blockdrop/pb"
	"blockdrop/server"
	"blockdrop/session"
	"blockdrop/web"

	"google.golang.org/grpc"
)

func main() {
	grpcAddr := flag.String("grpc", ":9000", "gRPC listen address")
	httpAddr := flag.String("http", "", "HTTP listen address (defaults to :$PORT or :8080)")
	debug := flag.Bool("debug", false, "enable debug logs")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if *httpAddr == "" {
		*httpAddr = ":" + strings.TrimSpace(os.Getenv("PORT"))
		if *httpAddr == ":" {
			*httpAddr = ":8080"
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(&session.Options{Logger: logger})
	defer store.Close()

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		logger.Error("failed to listen", slog.String("addr", *grpcAddr), slog.String("error", err.Error()))
		os.Exit(1)
	}
	s := grpc.NewServer()
	pb.RegisterGameServiceServer(s, server.New(store, logger))
	go func() {
		logger.Info("starting gRPC server", slog.String("addr", lis.Addr().String()))
		if err := s.Serve(lis); err != nil {
			logger.Error("failed to serve gRPC", slog.String("error", err.Error()))
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr:              *httpAddr,
		Handler:           web.NewRouter(web.NewHandler(store, logger)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("starting HTTP server", slog.String("addr", *httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to serve HTTP", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("unable to shut down HTTP server", slog.String("error", err.Error()))
	}
	s.Stop()
}
