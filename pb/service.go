// Package pb describes the GameService gRPC API. Messages are
// google.protobuf.Struct values so the service needs no generated code:
//
//	service GameService {
//	  rpc Play(stream google.protobuf.Struct) returns (stream google.protobuf.Struct);
//	}
package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName       = "blockdrop.v1.GameService"
	GameServicePlay   = "/" + ServiceName + "/Play"
	gameServiceSource = "blockdrop/v1/game.proto"
)

// GameServiceServer is the server API for GameService.
type GameServiceServer interface {
	// Play starts a game hosted by the server. The client streams commands
	// and the server streams a snapshot after every change.
	Play(grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]) error
}

// GameService_ServiceDesc is the grpc.ServiceDesc for GameService.
var GameService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Play",
			Handler:       playHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: gameServiceSource,
}

func playHandler(srv any, stream grpc.ServerStream) error {
	return srv.(GameServiceServer).Play(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameService_ServiceDesc, srv)
}

// GameServiceClient is the client API for GameService.
type GameServiceClient interface {
	Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error)
}

type gameServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGameServiceClient(cc grpc.ClientConnInterface) GameServiceClient {
	return &gameServiceClient{cc: cc}
}

func (c *gameServiceClient) Play(ctx context.Context, opts ...grpc.CallOption) (grpc.BidiStreamingClient[structpb.Struct, structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &GameService_ServiceDesc.Streams[0], GameServicePlay, opts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}
