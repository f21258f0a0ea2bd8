package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"blockdrop/pb"
	"blockdrop/session"
	"blockdrop/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type gameServer struct {
	store  *session.Store
	logger *slog.Logger
}

func New(store *session.Store, l *slog.Logger) pb.GameServiceServer {
	return &gameServer{store: store, logger: l}
}

// Play hosts a game for the lifetime of the stream. The first message the
// client receives carries the game ID.
func (g *gameServer) Play(stream grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error {
	sess, err := g.store.Create()
	if err != nil {
		return status.Errorf(codes.Internal, "unable to create game: %v", err)
	}
	defer func() {
		if err := g.store.Delete(sess.ID); err != nil {
			g.logger.Error("unable to delete session", slog.String("id", sess.ID), slog.String("error", err.Error()))
		}
	}()
	updates := sess.Subscribe()
	defer sess.Unsubscribe(updates)

	if err := send(stream, sess.ID, sess.Snapshot()); err != nil {
		return err
	}

	// receive commands from the client
	rcvErrCh := make(chan error, 1)
	go func() {
		for {
			rcv, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					rcvErrCh <- nil
					return
				}
				rcvErrCh <- fmt.Errorf("failed to receive Play message: %w", err)
				return
			}
			c, err := pb.CommandFrom(rcv)
			if err != nil {
				rcvErrCh <- status.Error(codes.InvalidArgument, err.Error())
				return
			}
			sess.Command(c)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return status.Error(codes.Aborted, "game stopped")
			}
			if err := send(stream, sess.ID, u); err != nil {
				return err
			}
		case err := <-rcvErrCh:
			if err != nil {
				g.logger.Debug("Play stream finished with error", slog.String("id", sess.ID), slog.String("error", err.Error()))
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func send(stream grpc.BidiStreamingServer[structpb.Struct, structpb.Struct], id string, s *tetris.Snapshot) error {
	msg, err := pb.NewSnapshot(id, s)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := stream.Send(msg); err != nil {
		return fmt.Errorf("failed to send Play message: %w", err)
	}
	return nil
}
