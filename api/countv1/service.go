package countv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "stockcount.v1.CountService"

type CountServiceServer interface {
	StartCycle(context.Context, *StartCycleRequest) (*CycleResponse, error)
	GetActiveCycle(context.Context, *GetActiveCycleRequest) (*CycleResponse, error)
	GetCycle(context.Context, *CycleRequest) (*CycleResponse, error)
	GetSectorCount(context.Context, *SectorRequest) (*SectorCountResponse, error)
	AssignCounters(context.Context, *AssignCountersRequest) (*SectorCountResponse, error)
	SubmitCount(context.Context, *SubmitCountRequest) (*ProductCountResponse, error)
	FinalizeRound(context.Context, *FinalizeRequest) (*SectorCountResponse, error)
	GetRecountReference(context.Context, *SectorRequest) (*RecountReferenceResponse, error)
	SubmitRecount(context.Context, *SubmitCountRequest) (*ProductCountResponse, error)
	FinalizeRecount(context.Context, *FinalizeRequest) (*SectorCountResponse, error)
	GetPeerTally(context.Context, *PeerTallyRequest) (*PeerTallyResponse, error)
	ResolveDifferences(context.Context, *ResolveDifferencesRequest) (*SectorCountResponse, error)
	CancelCycle(context.Context, *CycleRequest) (*CycleResponse, error)
	FinalizeCycle(context.Context, *CycleRequest) (*CycleResponse, error)
	WatchCycle(*CycleRequest, grpc.ServerStreamingServer[CycleEvent]) error
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(CountServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CountServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchCycleHandler(srv any, stream grpc.ServerStream) error {
	in := new(CycleRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(CountServiceServer).WatchCycle(in, &grpc.GenericServerStream[CycleRequest, CycleEvent]{ServerStream: stream})
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("StartCycle", CountServiceServer.StartCycle),
		unary("GetActiveCycle", CountServiceServer.GetActiveCycle),
		unary("GetCycle", CountServiceServer.GetCycle),
		unary("GetSectorCount", CountServiceServer.GetSectorCount),
		unary("AssignCounters", CountServiceServer.AssignCounters),
		unary("SubmitCount", CountServiceServer.SubmitCount),
		unary("FinalizeRound", CountServiceServer.FinalizeRound),
		unary("GetRecountReference", CountServiceServer.GetRecountReference),
		unary("SubmitRecount", CountServiceServer.SubmitRecount),
		unary("FinalizeRecount", CountServiceServer.FinalizeRecount),
		unary("GetPeerTally", CountServiceServer.GetPeerTally),
		unary("ResolveDifferences", CountServiceServer.ResolveDifferences),
		unary("CancelCycle", CountServiceServer.CancelCycle),
		unary("FinalizeCycle", CountServiceServer.FinalizeCycle),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchCycle",
			Handler:       watchCycleHandler,
			ServerStreams: true,
		},
	},
	Metadata: "stockcount/v1/count.json",
}

func RegisterCountServiceServer(s grpc.ServiceRegistrar, srv CountServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
