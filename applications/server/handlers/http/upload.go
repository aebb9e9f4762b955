package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/chunkd/chunkd/applications/server"
	"github.com/chunkd/chunkd/applications/server/domain"
)

func NewRouter(svc server.UploadService, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", HealthHandler()).Methods(http.MethodGet)
	r.HandleFunc("/sessions", NewSessionHandler(logger)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{sessionID}/chunks/{chunkIndex}", ReceiveChunkHandler(svc, logger)).Methods(http.MethodPut)
	r.HandleFunc("/sessions/{sessionID}/finalize", FinalizeHandler(svc, logger)).Methods(http.MethodPost)
	return r
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type finalizeRequest struct {
	DestinationName string `json:"destination_name"`
	TotalChunks     int    `json:"total_chunks"`
}

type finalizeResponse struct {
	Path string `json:"path"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

// NewSessionHandler hands out a compliant session id. The session
// itself is still created implicitly by the first accepted chunk.
func NewSessionHandler(logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, sessionResponse{SessionID: uuid.NewString()})
	}
}

func ReceiveChunkHandler(svc server.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		sessionID := vars["sessionID"]

		// ParseUint rejects signs and stray characters, so only pure
		// digit strings make it through.
		chunkIndex, err := strconv.ParseUint(vars["chunkIndex"], 10, 31)
		if err != nil {
			writeErr(w, domain.NewError(domain.KindInvalidChunkIndex, "chunk index must be a non-negative integer"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			level.Error(logger).Log("msg", "can't read chunk body",
				"session_id", sessionID,
				"err", err,
			)
			writeErr(w, domain.NewError(domain.KindMissingPayload, "can't read chunk payload"))
			return
		}

		if err := svc.ReceiveChunk(r.Context(), sessionID, int(chunkIndex), payload); err != nil {
			level.Error(logger).Log("msg", "ReceiveChunk error",
				"session_id", sessionID,
				"err", err,
			)
			writeErr(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func FinalizeHandler(svc server.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]

		var req finalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, domain.NewError(domain.KindInvalidDestination, "can't decode finalize request body"))
			return
		}

		path, err := svc.Finalize(r.Context(), sessionID, req.DestinationName, req.TotalChunks)
		if err != nil {
			level.Error(logger).Log("msg", "Finalize error",
				"session_id", sessionID,
				"err", err,
			)
			writeErr(w, err)
			return
		}

		writeJSON(w, http.StatusOK, finalizeResponse{Path: path})
	}
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidSessionID,
		domain.KindInvalidChunkIndex,
		domain.KindMissingPayload,
		domain.KindInvalidChunkCount,
		domain.KindInvalidDestination:
		return http.StatusBadRequest
	case domain.KindSessionNotFound:
		return http.StatusNotFound
	case domain.KindAssemblyFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	msg := err.Error()
	if kind == "" {
		// Untyped errors never reach callers verbatim.
		msg = "internal error"
	}

	writeJSON(w, statusFor(kind), errorResponse{Error: msg, Kind: string(kind)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
