package countv1

import (
	"context"

	"google.golang.org/grpc"
)

type CountServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCountServiceClient(cc grpc.ClientConnInterface) *CountServiceClient {
	return &CountServiceClient{cc: cc}
}

func (c *CountServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *CountServiceClient) StartCycle(ctx context.Context, in *StartCycleRequest, opts ...grpc.CallOption) (*CycleResponse, error) {
	out := new(CycleResponse)
	if err := c.invoke(ctx, "StartCycle", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) GetActiveCycle(ctx context.Context, in *GetActiveCycleRequest, opts ...grpc.CallOption) (*CycleResponse, error) {
	out := new(CycleResponse)
	if err := c.invoke(ctx, "GetActiveCycle", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) GetCycle(ctx context.Context, in *CycleRequest, opts ...grpc.CallOption) (*CycleResponse, error) {
	out := new(CycleResponse)
	if err := c.invoke(ctx, "GetCycle", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) GetSectorCount(ctx context.Context, in *SectorRequest, opts ...grpc.CallOption) (*SectorCountResponse, error) {
	out := new(SectorCountResponse)
	if err := c.invoke(ctx, "GetSectorCount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) AssignCounters(ctx context.Context, in *AssignCountersRequest, opts ...grpc.CallOption) (*SectorCountResponse, error) {
	out := new(SectorCountResponse)
	if err := c.invoke(ctx, "AssignCounters", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) SubmitCount(ctx context.Context, in *SubmitCountRequest, opts ...grpc.CallOption) (*ProductCountResponse, error) {
	out := new(ProductCountResponse)
	if err := c.invoke(ctx, "SubmitCount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) FinalizeRound(ctx context.Context, in *FinalizeRequest, opts ...grpc.CallOption) (*SectorCountResponse, error) {
	out := new(SectorCountResponse)
	if err := c.invoke(ctx, "FinalizeRound", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) GetRecountReference(ctx context.Context, in *SectorRequest, opts ...grpc.CallOption) (*RecountReferenceResponse, error) {
	out := new(RecountReferenceResponse)
	if err := c.invoke(ctx, "GetRecountReference", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) SubmitRecount(ctx context.Context, in *SubmitCountRequest, opts ...grpc.CallOption) (*ProductCountResponse, error) {
	out := new(ProductCountResponse)
	if err := c.invoke(ctx, "SubmitRecount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) FinalizeRecount(ctx context.Context, in *FinalizeRequest, opts ...grpc.CallOption) (*SectorCountResponse, error) {
	out := new(SectorCountResponse)
	if err := c.invoke(ctx, "FinalizeRecount", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) GetPeerTally(ctx context.Context, in *PeerTallyRequest, opts ...grpc.CallOption) (*PeerTallyResponse, error) {
	out := new(PeerTallyResponse)
	if err := c.invoke(ctx, "GetPeerTally", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) ResolveDifferences(ctx context.Context, in *ResolveDifferencesRequest, opts ...grpc.CallOption) (*SectorCountResponse, error) {
	out := new(SectorCountResponse)
	if err := c.invoke(ctx, "ResolveDifferences", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) CancelCycle(ctx context.Context, in *CycleRequest, opts ...grpc.CallOption) (*CycleResponse, error) {
	out := new(CycleResponse)
	if err := c.invoke(ctx, "CancelCycle", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CountServiceClient) FinalizeCycle(ctx context.Context, in *CycleRequest, opts ...grpc.CallOption) (*CycleResponse, error) {
	out := new(CycleResponse)
	if err := c.invoke(ctx, "FinalizeCycle", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchCycle streams change signals for a cycle until ctx ends or the cycle
// closes. Clients re-fetch the state they show on each signal.
func (c *CountServiceClient) WatchCycle(ctx context.Context, in *CycleRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[CycleEvent], error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], fullMethod("WatchCycle"), opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[CycleRequest, CycleEvent]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
