package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"blockdrop/pb"
	"blockdrop/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// remoteGame plays a game hosted by the server. It has the same surface as a
// local tetris.Game so the client doesn't care where the simulation runs.
type remoteGame struct {
	addr     string
	dialOpts []grpc.DialOption
	logger   *slog.Logger

	updateCh chan *tetris.Snapshot
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *grpc.ClientConn
	stream   grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]
	sendMu   sync.Mutex
	stopOnce sync.Once
	gameID   string
}

func newRemoteGame(addr string, l *slog.Logger, opts ...grpc.DialOption) *remoteGame {
	ctx, cancel := context.WithCancel(context.Background())
	return &remoteGame{
		addr:     addr,
		dialOpts: append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...),
		logger:   l,
		updateCh: make(chan *tetris.Snapshot),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (r *remoteGame) Start() error {
	conn, err := grpc.NewClient(r.addr, r.dialOpts...)
	if err != nil {
		return fmt.Errorf("unable to create gRPC client: %w", err)
	}
	r.conn = conn
	stream, err := pb.NewGameServiceClient(conn).Play(r.ctx)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("unable to create gRPC Play stream: %w", err)
	}
	r.stream = stream
	go r.listen()
	return nil
}

func (r *remoteGame) listen() {
	defer close(r.updateCh)
	for {
		rcv, err := r.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
				return
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled {
				r.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			} else {
				r.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		id, s, err := pb.SnapshotFrom(rcv)
		if err != nil {
			r.logger.Error("unable to read snapshot", slog.String("error", err.Error()))
			continue
		}
		if r.gameID == "" {
			r.gameID = id
			r.logger.Info("playing online", slog.String("id", id))
		}
		select {
		case r.updateCh <- s:
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *remoteGame) GetUpdate() <-chan *tetris.Snapshot { return r.updateCh }

func (r *remoteGame) Action(c tetris.Command) {
	if r.stream == nil {
		return
	}
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	if err := r.stream.Send(pb.NewCommand(c)); err != nil {
		r.logger.Debug("unable to send command", slog.String("command", string(c)), slog.String("error", err.Error()))
	}
}

func (r *remoteGame) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		if r.conn != nil {
			if err := r.conn.Close(); err != nil {
				r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
			}
		}
	})
}
