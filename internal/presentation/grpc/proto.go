package grpc

// Server interface and descriptors for risk.v1.RiskService. Messages travel
// with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "risk.v1.RiskService"

// Full method names, as seen by interceptors.
const (
	MethodPredictRisk      = "/" + ServiceName + "/PredictRisk"
	MethodPredictMagnitude = "/" + ServiceName + "/PredictMagnitude"
	MethodTrainModel       = "/" + ServiceName + "/TrainModel"
	MethodGetModelInfo     = "/" + ServiceName + "/GetModelInfo"
)

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	PredictRisk(context.Context, *PredictRiskRequest) (*PredictRiskResponse, error)
	PredictMagnitude(context.Context, *PredictRiskRequest) (*PredictMagnitudeResponse, error)
	TrainModel(context.Context, *TrainModelRequest) (*TrainModelResponse, error)
	GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) PredictRisk(context.Context, *PredictRiskRequest) (*PredictRiskResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictRisk not implemented")
}
func (UnimplementedRiskServiceServer) PredictMagnitude(context.Context, *PredictRiskRequest) (*PredictMagnitudeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method PredictMagnitude not implemented")
}
func (UnimplementedRiskServiceServer) TrainModel(context.Context, *TrainModelRequest) (*TrainModelResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TrainModel not implemented")
}
func (UnimplementedRiskServiceServer) GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetModelInfo not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers srv with s.
func RegisterRiskServiceServer(s grpclib.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&riskServiceDesc, srv)
}

var riskServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "PredictRisk", Handler: predictRiskHandler},
		{MethodName: "PredictMagnitude", Handler: predictMagnitudeHandler},
		{MethodName: "TrainModel", Handler: trainModelHandler},
		{MethodName: "GetModelInfo", Handler: getModelInfoHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "risk/v1/risk.proto",
}

func predictRiskHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(PredictRiskRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).PredictRisk(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredictRisk}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).PredictRisk(ctx, req.(*PredictRiskRequest))
	})
}

func predictMagnitudeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(PredictRiskRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).PredictMagnitude(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredictMagnitude}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).PredictMagnitude(ctx, req.(*PredictRiskRequest))
	})
}

func trainModelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(TrainModelRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).TrainModel(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodTrainModel}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).TrainModel(ctx, req.(*TrainModelRequest))
	})
}

func getModelInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetModelInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).GetModelInfo(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetModelInfo}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).GetModelInfo(ctx, req.(*GetModelInfoRequest))
	})
}
