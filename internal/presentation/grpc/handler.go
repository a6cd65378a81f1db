package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/application/usecase"
	"github.com/bibbank/breachrisk/internal/domain/model"
)

// Proto-aligned request/response message types.

// PredictRiskRequest is shared by PredictRisk and PredictMagnitude.
type PredictRiskRequest struct {
	Organization string `json:"organization"`
	IncidentType string `json:"incident_type"`
	Year         int32  `json:"year,omitempty"`
}

// PredictionMsg represents the proto Prediction message.
type PredictionMsg struct {
	ID                string                 `json:"id"`
	PredictedAt       *timestamppb.Timestamp `json:"predicted_at"`
	Organization      string                 `json:"organization"`
	IncidentType      string                 `json:"incident_type"`
	Tier              string                 `json:"tier"`
	Factors           []string               `json:"factors"`
	Recommendations   []string               `json:"recommendations"`
	RiskScore         float64                `json:"risk_score"`
	Confidence        float64                `json:"confidence"`
	PredictedRecords  int64                  `json:"predicted_records"`
	Year              int32                  `json:"year"`
	HistoricalMatches int32                  `json:"historical_matches"`
	ModelVersion      int32                  `json:"model_version"`
}

// PredictRiskResponse wraps a Prediction.
type PredictRiskResponse struct {
	Prediction *PredictionMsg `json:"prediction"`
}

// PredictMagnitudeResponse is the magnitude-only result.
type PredictMagnitudeResponse struct {
	PredictedRecords int64 `json:"predicted_records"`
	ModelVersion     int32 `json:"model_version"`
}

// TrainModelRequest has no fields.
type TrainModelRequest struct{}

// TrainModelResponse reports the newly published model.
type TrainModelResponse struct {
	Message     string `json:"message"`
	Kind        string `json:"kind"`
	Version     int32  `json:"version"`
	RecordCount int32  `json:"record_count"`
	Synthetic   bool   `json:"synthetic"`
}

// GetModelInfoRequest has no fields.
type GetModelInfoRequest struct{}

// GetModelInfoResponse describes the serving model.
type GetModelInfoResponse struct {
	ID                     string                 `json:"id"`
	TrainedAt              *timestamppb.Timestamp `json:"trained_at"`
	Kind                   string                 `json:"kind"`
	Schema                 string                 `json:"schema"`
	Version                int32                  `json:"version"`
	RecordCount            int32                  `json:"record_count"`
	OrganizationVocabulary int32                  `json:"organization_vocabulary"`
	IncidentTypeVocabulary int32                  `json:"incident_type_vocabulary"`
	Synthetic              bool                   `json:"synthetic"`
}

// Compile-time assertion that Handler implements RiskServiceServer.
var _ RiskServiceServer = (*Handler)(nil)

// Handler implements the RiskServiceServer gRPC interface.
type Handler struct {
	UnimplementedRiskServiceServer
	predict   *usecase.PredictRisk
	magnitude *usecase.PredictMagnitude
	train     *usecase.TrainModel
	info      *usecase.GetModelInfo
	logger    *slog.Logger
}

// NewHandler creates a new gRPC Handler.
func NewHandler(
	predict *usecase.PredictRisk,
	magnitude *usecase.PredictMagnitude,
	train *usecase.TrainModel,
	info *usecase.GetModelInfo,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		predict:   predict,
		magnitude: magnitude,
		train:     train,
		info:      info,
		logger:    logger,
	}
}

func (r *PredictRiskRequest) toDTO() dto.PredictRiskRequest {
	return dto.PredictRiskRequest{
		Organization: r.Organization,
		IncidentType: r.IncidentType,
		Year:         int(r.Year),
	}
}

// PredictRisk scores an organization and incident type.
func (h *Handler) PredictRisk(ctx context.Context, req *PredictRiskRequest) (*PredictRiskResponse, error) {
	resp, err := h.predict.Execute(ctx, req.toDTO())
	if err != nil {
		return nil, h.toStatus(ctx, "PredictRisk", err)
	}
	return &PredictRiskResponse{Prediction: &PredictionMsg{
		ID:                resp.ID.String(),
		PredictedAt:       timestamppb.New(resp.PredictedAt),
		Organization:      resp.Organization,
		IncidentType:      resp.IncidentType,
		Tier:              resp.Tier,
		Factors:           resp.Factors,
		Recommendations:   resp.Recommendations,
		RiskScore:         resp.RiskScore,
		Confidence:        resp.Confidence,
		PredictedRecords:  resp.PredictedRecords,
		Year:              int32(resp.Year),
		HistoricalMatches: int32(resp.HistoricalCount),
		ModelVersion:      int32(resp.ModelVersion),
	}}, nil
}

// PredictMagnitude predicts records exposed only.
func (h *Handler) PredictMagnitude(ctx context.Context, req *PredictRiskRequest) (*PredictMagnitudeResponse, error) {
	resp, err := h.magnitude.Execute(ctx, req.toDTO())
	if err != nil {
		return nil, h.toStatus(ctx, "PredictMagnitude", err)
	}
	return &PredictMagnitudeResponse{
		PredictedRecords: resp.PredictedRecords,
		ModelVersion:     int32(resp.ModelVersion),
	}, nil
}

// TrainModel retrains from stored records.
func (h *Handler) TrainModel(ctx context.Context, _ *TrainModelRequest) (*TrainModelResponse, error) {
	resp, err := h.train.Execute(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "TrainModel", err)
	}
	return &TrainModelResponse{
		Message:     resp.Message,
		Kind:        resp.Kind,
		Version:     int32(resp.Version),
		RecordCount: int32(resp.RecordCount),
		Synthetic:   resp.Synthetic,
	}, nil
}

// GetModelInfo describes the serving model.
func (h *Handler) GetModelInfo(ctx context.Context, _ *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	resp, err := h.info.Execute()
	if err != nil {
		return nil, h.toStatus(ctx, "GetModelInfo", err)
	}
	return &GetModelInfoResponse{
		ID:                     resp.ID.String(),
		TrainedAt:              timestamppb.New(resp.TrainedAt),
		Kind:                   resp.Kind,
		Schema:                 resp.Schema,
		Version:                int32(resp.Version),
		RecordCount:            int32(resp.RecordCount),
		OrganizationVocabulary: int32(resp.OrganizationVocabLive),
		IncidentTypeVocabulary: int32(resp.IncidentTypeVocabLive),
		Synthetic:              resp.Synthetic,
	}, nil
}

// toStatus maps use case errors onto gRPC codes. Internal details are
// logged, not returned.
func (h *Handler) toStatus(ctx context.Context, method string, err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, model.ErrModelNotAvailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		h.logger.ErrorContext(ctx, "rpc failed", "method", method, "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
