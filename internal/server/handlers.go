package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gatewayapi "github.com/danilofalcao/torchserve-gateway/internal/api/gateway/v1"
	"github.com/danilofalcao/torchserve-gateway/internal/backend"
	"github.com/danilofalcao/torchserve-gateway/internal/chat"
	"github.com/danilofalcao/torchserve-gateway/internal/constants/gateway"
	"github.com/danilofalcao/torchserve-gateway/internal/prompt"
	logutils "github.com/danilofalcao/torchserve-gateway/internal/utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

const maxChatBodySize = 4 << 20

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r.Context(), w, http.StatusOK, gatewayapi.Root{Hello: "World"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := s.backend.HealthCheck(ctx)
	if err != nil {
		s.writeBackendError(ctx, w, errors.Wrap(err, "error checking backend health"), "")
		return
	}
	s.writeRaw(ctx, w, body)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := s.backend.ListModels(ctx)
	if err != nil {
		s.writeBackendError(ctx, w, errors.Wrap(err, "error listing models"), "")
		return
	}
	s.writeRaw(ctx, w, body)
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model := chi.URLParam(r, "model_name")

	details, err := s.backend.ModelInfo(ctx, model)
	if err != nil {
		s.writeBackendError(ctx, w, errors.Wrapf(err, "error describing model %s", model), model)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, details)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lgr := logutils.FromContext(ctx)
	model := chi.URLParam(r, "model_name")

	recipientID := r.URL.Query().Get("recipient_id")
	if recipientID == "" {
		recipientID = s.newID()
	}

	var call gatewayapi.ChatCall
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBodySize)).Decode(&call); err != nil {
		err = errors.Wrap(err, "error parsing request")
		lgr.Error(ctx, err.Error())
		s.writeError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}
	if call.Sender == "" {
		call.Sender = s.newID()
	}

	promptText, warnings := prompt.Compile(call, model)
	for _, warning := range warnings {
		lgr.Warnf(ctx, "sender %s, model %s: %s", call.Sender, model, warning)
	}
	lgr.Debugf(ctx, "compiled %d messages from sender %s into %d prompt bytes",
		len(call.Messages), call.Sender, len(promptText))

	generated, err := s.backend.Predict(ctx, model, promptText)
	if err != nil {
		s.writeBackendError(ctx, w, errors.Wrapf(err, "error generating chat reply for sender %s", call.Sender), model)
		return
	}

	resp, err := chat.Normalize(generated, promptText, recipientID)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyGeneration) {
			lgr.Errorf(ctx, "model %s returned an empty generation for sender %s", model, call.Sender)
			s.writeError(ctx, w, http.StatusInternalServerError, gateway.EmptyGenerationDetail)
			return
		}
		err = errors.Wrap(err, "error normalizing generation")
		lgr.Error(ctx, err.Error())
		s.writeError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(ctx, w, http.StatusOK, resp)
}

// writeBackendError logs err and maps its kind to a client status.
func (s *Server) writeBackendError(ctx context.Context, w http.ResponseWriter, err error, model string) {
	lgr := logutils.FromContext(ctx)
	switch backend.KindOf(err) {
	case backend.KindNotFound:
		lgr.Warn(ctx, err.Error())
		s.writeError(ctx, w, http.StatusNotFound, fmt.Sprintf("model %s not found", model))
	case backend.KindFailure:
		lgr.Error(ctx, err.Error())
		s.writeError(ctx, w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, status int, detail string) {
	s.writeJSON(ctx, w, status, gatewayapi.ErrorResponse{Detail: detail})
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		err = errors.Wrap(err, "error encoding response")
		logutils.FromContext(ctx).Error(ctx, err.Error())
	}
}

func (s *Server) writeRaw(ctx context.Context, w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		err = errors.Wrap(err, "error writing response")
		logutils.FromContext(ctx).Error(ctx, err.Error())
	}
}
