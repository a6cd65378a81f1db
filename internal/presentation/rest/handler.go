package rest

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/bibbank/breachrisk/internal/application/dto"
	"github.com/bibbank/breachrisk/internal/application/usecase"
	"github.com/bibbank/breachrisk/internal/domain/model"
	"github.com/bibbank/breachrisk/internal/infrastructure/dataset"
)

// ModelHistory lists the retained artifact versions, newest first.
type ModelHistory interface {
	History(ctx context.Context) ([]model.ArtifactMetadata, error)
}

// UseCases groups the application operations served over HTTP. History may
// be nil when the artifact store keeps no history.
type UseCases struct {
	Predict    *usecase.PredictRisk
	Magnitude  *usecase.PredictMagnitude
	Train      *usecase.TrainModel
	Info       *usecase.GetModelInfo
	Statistics *usecase.GetStatistics
	Import     *usecase.ImportRecords
	Export     *usecase.ExportRecords
	History    ModelHistory
}

// Handler serves the risk API.
type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewHandler creates a REST Handler.
func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictRiskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.Predict.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) predictMagnitude(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictRiskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.Magnitude.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) train(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Train.Execute(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) modelInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Info.Execute()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type historyEntry struct {
	TrainedAt   time.Time `json:"trainedAt"`
	Kind        string    `json:"kind"`
	Version     int       `json:"version"`
	RecordCount int       `json:"recordCount"`
	Synthetic   bool      `json:"synthetic"`
	ID          string    `json:"id"`
}

func (h *Handler) modelHistory(w http.ResponseWriter, r *http.Request) {
	if h.uc.History == nil {
		writeJSON(w, http.StatusOK, []historyEntry{})
		return
	}
	versions, err := h.uc.History.History(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	out := make([]historyEntry, 0, len(versions))
	for _, md := range versions {
		out = append(out, historyEntry{
			TrainedAt:   md.TrainedAt,
			Kind:        string(md.Kind),
			Version:     md.Version,
			RecordCount: md.RecordCount,
			Synthetic:   md.Synthetic,
			ID:          md.ID.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) statistics(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.Statistics.Execute(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// importRecords accepts a CSV or JSON dataset. The format comes from the
// format query parameter, else the content type, else JSON.
func (h *Handler) importRecords(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "text/csv" {
			format = string(dataset.FormatCSV)
		}
	}
	if format == "" {
		format = string(dataset.FormatJSON)
	}
	f, err := dataset.ParseFormat(format, "")
	if err != nil {
		writeError(w, r, h.logger, model.NewValidationError("format", err.Error()))
		return
	}

	raw, err := f.Read(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, h.logger, model.NewValidationError("body", err.Error()))
		return
	}

	retrain, _ := strconv.ParseBool(r.URL.Query().Get("retrain"))
	resp, err := h.uc.Import.Execute(r.Context(), raw, retrain)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) exportRecords(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(dataset.FormatJSON)
	}
	f, err := dataset.ParseFormat(format, "")
	if err != nil {
		writeError(w, r, h.logger, model.NewValidationError("format", err.Error()))
		return
	}
	records, err := h.uc.Export.Execute(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := f.Write(&buf, records); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if f == dataset.FormatCSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes()) //nolint:errcheck
}
