package rest

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/model/validation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API is the read-only view of the validation coordinator served over HTTP.
type API interface {
	ListAssignments() validation.AssignmentList
	CommitRecords(jobID validation.JobID) ([]*validation.CommitRecord, error)
}

// ModelError is the body of every error response.
type ModelError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler serves the validation API routes.
type Handler struct {
	log zerolog.Logger
	api API
}

func NewHandler(log zerolog.Logger, api API) *Handler {
	return &Handler{
		log: log,
		api: api,
	}
}

// ListAssignments returns the active assignments and the completed history.
func (h *Handler) ListAssignments(w http.ResponseWriter, _ *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.api.ListAssignments())
}

// JobRecords returns the durable commit records of a job.
func (h *Handler) JobRecords(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["jobId"]
	jobID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid job id: "+raw)
		return
	}

	records, err := h.api.CommitRecords(validation.JobID(jobID))
	if err != nil {
		h.log.Error().Err(err).Uint64("job_id", jobID).Msg("could not retrieve commit records")
		h.errorResponse(w, http.StatusInternalServerError, "could not retrieve commit records")
		return
	}
	if records == nil {
		records = []*validation.CommitRecord{}
	}
	h.jsonResponse(w, http.StatusOK, records)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
		h.errorResponse(w, http.StatusInternalServerError, "error generating response")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, err = w.Write(encoded)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to write response")
	}
}

// errorResponse sends an HTTP error response with the given code and message.
func (h *Handler) errorResponse(w http.ResponseWriter, code int, message string) {
	encoded, err := json.Marshal(ModelError{Code: code, Message: message})
	if err != nil {
		h.log.Error().Str("response_message", message).Msg("failed to json encode error message")
		w.WriteHeader(code)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, err = w.Write(encoded)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to send error response")
	}
}
