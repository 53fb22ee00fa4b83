package handler

import (
	"context"
	"strings"

	countv1 "github.com/fekuna/omnipos-stockcount-service/api/countv1"
	"github.com/fekuna/omnipos-stockcount-service/internal/apperr"
	"github.com/fekuna/omnipos-stockcount-service/internal/auth"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle"
	"github.com/fekuna/omnipos-stockcount-service/internal/cycle/dto"
	"github.com/fekuna/omnipos-stockcount-service/internal/logger"
	"github.com/fekuna/omnipos-stockcount-service/internal/notify"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Watcher hands out per-cycle event subscriptions.
type Watcher interface {
	Subscribe(cycleID string) (<-chan notify.Event, func())
}

type CountHandler struct {
	uc      cycle.UseCase
	watcher Watcher
	logger  logger.ZapLogger
}

var _ countv1.CountServiceServer = (*CountHandler)(nil)

func NewCountHandler(uc cycle.UseCase, watcher Watcher, log logger.ZapLogger) *CountHandler {
	return &CountHandler{
		uc:      uc,
		watcher: watcher,
		logger:  log,
	}
}

var grpcCodes = map[apperr.Code]codes.Code{
	apperr.CodeMalformedExpression: codes.InvalidArgument,
	apperr.CodeInvalidAssignment:   codes.InvalidArgument,
	apperr.CodeInvalidInput:        codes.InvalidArgument,
	apperr.CodeProductNotInScope:   codes.InvalidArgument,
	apperr.CodeRoundClosed:         codes.FailedPrecondition,
	apperr.CodeIncompleteCount:     codes.FailedPrecondition,
	apperr.CodeSectorClosed:        codes.FailedPrecondition,
	apperr.CodeWrongRound:          codes.FailedPrecondition,
	apperr.CodeCycleNotComplete:    codes.FailedPrecondition,
	apperr.CodeCycleAlreadyActive:  codes.AlreadyExists,
	apperr.CodeNoActiveCycle:       codes.NotFound,
	apperr.CodeNotFound:            codes.NotFound,
	apperr.CodeNotAssigned:         codes.PermissionDenied,
	apperr.CodeBusy:                codes.Unavailable,
}

// toStatus turns a usecase error into a localized gRPC status. The reason
// code and details travel as an ErrorInfo so clients can branch on them.
func (h *CountHandler) toStatus(ctx context.Context, method string, err error) error {
	code := apperr.CodeOf(err)
	grpcCode, ok := grpcCodes[code]
	if !ok {
		h.logger.Error("Unexpected error", zap.String("method", method), zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}

	st := status.New(grpcCode, apperr.Localize(err, auth.GetLanguage(ctx)))
	info := &errdetails.ErrorInfo{
		Reason: string(code),
		Domain: countv1.ServiceName,
	}
	if details := apperr.DetailsOf(err); len(details) > 0 {
		info.Metadata = map[string]string{"details": strings.Join(details, ",")}
	}
	if withInfo, derr := st.WithDetails(info); derr == nil {
		st = withInfo
	}
	return st.Err()
}

func sectorRef(ctx context.Context, cycleID, sectorID string) dto.SectorRef {
	return dto.SectorRef{CompanyID: auth.GetCompanyID(ctx), CycleID: cycleID, SectorID: sectorID}
}

// counterOrCaller defaults the acting counter to the authenticated user.
func counterOrCaller(ctx context.Context, counterID string) string {
	if counterID != "" {
		return counterID
	}
	return auth.GetUserID(ctx)
}

func (h *CountHandler) StartCycle(ctx context.Context, _ *countv1.StartCycleRequest) (*countv1.CycleResponse, error) {
	snap, err := h.uc.StartCycle(ctx, &dto.StartCycleInput{CompanyID: auth.GetCompanyID(ctx)})
	if err != nil {
		return nil, h.toStatus(ctx, "StartCycle", err)
	}
	return mapCycle(snap), nil
}

func (h *CountHandler) GetActiveCycle(ctx context.Context, _ *countv1.GetActiveCycleRequest) (*countv1.CycleResponse, error) {
	snap, err := h.uc.GetActiveCycle(ctx, auth.GetCompanyID(ctx))
	if err != nil {
		return nil, h.toStatus(ctx, "GetActiveCycle", err)
	}
	return mapCycle(snap), nil
}

func (h *CountHandler) GetCycle(ctx context.Context, req *countv1.CycleRequest) (*countv1.CycleResponse, error) {
	snap, err := h.uc.GetCycle(ctx, &dto.CycleRef{CompanyID: auth.GetCompanyID(ctx), CycleID: req.CycleID})
	if err != nil {
		return nil, h.toStatus(ctx, "GetCycle", err)
	}
	return mapCycle(snap), nil
}

func (h *CountHandler) CancelCycle(ctx context.Context, req *countv1.CycleRequest) (*countv1.CycleResponse, error) {
	snap, err := h.uc.CancelCycle(ctx, &dto.CycleRef{CompanyID: auth.GetCompanyID(ctx), CycleID: req.CycleID})
	if err != nil {
		return nil, h.toStatus(ctx, "CancelCycle", err)
	}
	return mapCycle(snap), nil
}

func (h *CountHandler) FinalizeCycle(ctx context.Context, req *countv1.CycleRequest) (*countv1.CycleResponse, error) {
	snap, err := h.uc.FinalizeCycle(ctx, &dto.CycleRef{CompanyID: auth.GetCompanyID(ctx), CycleID: req.CycleID})
	if err != nil {
		return nil, h.toStatus(ctx, "FinalizeCycle", err)
	}
	return mapCycle(snap), nil
}

func (h *CountHandler) GetSectorCount(ctx context.Context, req *countv1.SectorRequest) (*countv1.SectorCountResponse, error) {
	ref := sectorRef(ctx, req.CycleID, req.SectorID)
	snap, err := h.uc.GetSectorCount(ctx, &ref)
	if err != nil {
		return nil, h.toStatus(ctx, "GetSectorCount", err)
	}
	return mapSectorCount(snap), nil
}

func (h *CountHandler) AssignCounters(ctx context.Context, req *countv1.AssignCountersRequest) (*countv1.SectorCountResponse, error) {
	snap, err := h.uc.AssignCounters(ctx, &dto.AssignCountersInput{
		SectorRef: sectorRef(ctx, req.CycleID, req.SectorID),
		CounterA:  req.CounterA,
		CounterB:  req.CounterB,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "AssignCounters", err)
	}
	return mapSectorCount(snap), nil
}

func submitInput(ctx context.Context, req *countv1.SubmitCountRequest) *dto.SubmitCountInput {
	return &dto.SubmitCountInput{
		SectorRef:  sectorRef(ctx, req.CycleID, req.SectorID),
		ProductID:  req.ProductID,
		CounterID:  counterOrCaller(ctx, req.CounterID),
		Expression: req.Expression,
	}
}

func (h *CountHandler) SubmitCount(ctx context.Context, req *countv1.SubmitCountRequest) (*countv1.ProductCountResponse, error) {
	snap, err := h.uc.SubmitCount(ctx, submitInput(ctx, req))
	if err != nil {
		return nil, h.toStatus(ctx, "SubmitCount", err)
	}
	return mapProductCount(snap), nil
}

func (h *CountHandler) SubmitRecount(ctx context.Context, req *countv1.SubmitCountRequest) (*countv1.ProductCountResponse, error) {
	snap, err := h.uc.SubmitRecount(ctx, submitInput(ctx, req))
	if err != nil {
		return nil, h.toStatus(ctx, "SubmitRecount", err)
	}
	return mapProductCount(snap), nil
}

func finalizeInput(ctx context.Context, req *countv1.FinalizeRequest) *dto.FinalizeInput {
	return &dto.FinalizeInput{
		SectorRef: sectorRef(ctx, req.CycleID, req.SectorID),
		CounterID: counterOrCaller(ctx, req.CounterID),
	}
}

func (h *CountHandler) FinalizeRound(ctx context.Context, req *countv1.FinalizeRequest) (*countv1.SectorCountResponse, error) {
	snap, err := h.uc.FinalizeRound(ctx, finalizeInput(ctx, req))
	if err != nil {
		return nil, h.toStatus(ctx, "FinalizeRound", err)
	}
	return mapSectorCount(snap), nil
}

func (h *CountHandler) FinalizeRecount(ctx context.Context, req *countv1.FinalizeRequest) (*countv1.SectorCountResponse, error) {
	snap, err := h.uc.FinalizeRecount(ctx, finalizeInput(ctx, req))
	if err != nil {
		return nil, h.toStatus(ctx, "FinalizeRecount", err)
	}
	return mapSectorCount(snap), nil
}

func (h *CountHandler) GetRecountReference(ctx context.Context, req *countv1.SectorRequest) (*countv1.RecountReferenceResponse, error) {
	ref := sectorRef(ctx, req.CycleID, req.SectorID)
	items, err := h.uc.GetRecountReference(ctx, &ref)
	if err != nil {
		return nil, h.toStatus(ctx, "GetRecountReference", err)
	}
	return mapRecountReference(items), nil
}

func (h *CountHandler) GetPeerTally(ctx context.Context, req *countv1.PeerTallyRequest) (*countv1.PeerTallyResponse, error) {
	snap, err := h.uc.GetPeerTally(ctx, &dto.PeerTallyInput{
		SectorRef: sectorRef(ctx, req.CycleID, req.SectorID),
		ProductID: req.ProductID,
		CounterID: counterOrCaller(ctx, req.CounterID),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "GetPeerTally", err)
	}
	return &countv1.PeerTallyResponse{
		ProductID: snap.ProductID,
		CounterID: snap.CounterID,
		Quantity:  snap.Quantity,
		Events:    snap.Events,
		Terms:     snap.Terms,
	}, nil
}

func (h *CountHandler) ResolveDifferences(ctx context.Context, req *countv1.ResolveDifferencesRequest) (*countv1.SectorCountResponse, error) {
	snap, err := h.uc.ResolveDifferences(ctx, &dto.ResolveInput{
		SectorRef:   sectorRef(ctx, req.CycleID, req.SectorID),
		ResolvedBy:  auth.GetUserID(ctx),
		Resolutions: req.Resolutions,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "ResolveDifferences", err)
	}
	return mapSectorCount(snap), nil
}

const KindWatchStarted = "watch.started"

// WatchCycle streams one signal per change of the cycle. It subscribes before
// reading the cycle, so nothing published after the first message is missed.
// The stream ends with the caller's context or after the cycle closes.
func (h *CountHandler) WatchCycle(req *countv1.CycleRequest, stream grpc.ServerStreamingServer[countv1.CycleEvent]) error {
	ctx := stream.Context()

	events, cancel := h.watcher.Subscribe(req.CycleID)
	defer cancel()

	snap, err := h.uc.GetCycle(ctx, &dto.CycleRef{CompanyID: auth.GetCompanyID(ctx), CycleID: req.CycleID})
	if err != nil {
		return h.toStatus(ctx, "WatchCycle", err)
	}
	err = stream.Send(&countv1.CycleEvent{
		Kind:    KindWatchStarted,
		CycleID: snap.Cycle.ID,
		State:   string(snap.Cycle.State),
		Rollup:  mapRollup(snap.Rollup),
		At:      snap.Cycle.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if !snap.Cycle.Active() {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := stream.Send(mapEvent(ev)); err != nil {
				return err
			}
			if ev.Kind == notify.KindCycleCancelled || ev.Kind == notify.KindCycleFinalized {
				return nil
			}
		}
	}
}
