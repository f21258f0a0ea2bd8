package server

import (
	"context"
	"log"
	"log/slog"
	"net"
	"testing"
	"time"

	"blockdrop/pb"
	"blockdrop/session"
	"blockdrop/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestPlay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := testStore()
	client, closer := testServer(store)
	defer closer()

	stream, err := client.Play(ctx)
	require.NoError(t, err)

	first := recv(t, stream)
	id, _, err := pb.SnapshotFrom(first)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = store.Get(id)
	require.NoError(t, err, "the stream's game should be in the store")

	require.NoError(t, stream.Send(pb.NewCommand(tetris.MoveLeft)))
	var moved bool
	for !moved {
		gotID, s, err := pb.SnapshotFrom(recv(t, stream))
		require.NoError(t, err)
		assert.Equal(t, id, gotID)
		moved = s.Piece != nil && s.Piece.X == 4
	}

	require.NoError(t, stream.CloseSend())
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestPlayInvalidCommand(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	store := testStore()
	client, closer := testServer(store)
	defer closer()

	stream, err := client.Play(ctx)
	require.NoError(t, err)
	recv(t, stream)

	require.NoError(t, stream.Send(pb.NewCommand("jump")))
	for {
		_, err := stream.Recv()
		if err != nil {
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			break
		}
	}
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func recv(t *testing.T, stream grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]) *structpb.Struct {
	t.Helper()
	msg, err := stream.Recv()
	require.NoError(t, err)
	require.NotNil(t, msg)
	return msg
}

func testStore() *session.Store {
	return session.NewStore(&session.Options{
		NewGame: func() (*tetris.Game, error) {
			g, _ := tetris.NewTestGame(tetris.O)
			return g, nil
		},
	})
}

func testServer(store *session.Store) (pb.GameServiceClient, func()) {
	buffer := 101024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	pb.RegisterGameServiceServer(s, New(store, slog.Default()))
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Printf("error connecting to server: %v", err)
	}

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
		store.Close()
	}

	return pb.NewGameServiceClient(conn), closer
}
