package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/contactform/backend/internal/model"
	"github.com/contactform/backend/internal/repository"
	"github.com/contactform/backend/internal/service"
)

const maxBodyBytes = 100 << 10

// MessageHandler handles contact form submission and the admin message API.
type MessageHandler struct {
	messageService service.MessageService
}

// NewMessageHandler creates a MessageHandler with the given service.
func NewMessageHandler(messageService service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// createRequest is the expected body for POST /api/message.
type createRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Create handles POST /api/message.
// name, email and message are required; projectType is optional.
// Accepts JSON and URL-encoded form bodies.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	req, err := decodeCreateRequest(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	if isBlank(req.Name) || isBlank(req.Email) || isBlank(req.Message) {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	msg := &model.Message{
		Name:        req.Name,
		Email:       req.Email,
		ProjectType: req.ProjectType,
		Message:     req.Message,
	}
	if err := h.messageService.Submit(r.Context(), msg); err != nil {
		slog.Error("save message failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("new message saved", "message_id", msg.ID, "project_type", msg.ProjectType)
	writeJSON(w, http.StatusCreated, successResponse{Success: true, Message: "Message sent successfully"})
}

func decodeCreateRequest(r *http.Request) (createRequest, error) {
	var req createRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, err
		}
		req.Name = r.PostFormValue("name")
		req.Email = r.PostFormValue("email")
		req.ProjectType = r.PostFormValue("projectType")
		req.Message = r.PostFormValue("message")
		return req, nil
	default:
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			// An empty body is a request with every field missing.
			return req, nil
		}
		return req, err
	}
}

// List handles GET /api/messages (admin only).
// Returns every message as a JSON array, newest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messageService.List(r.Context())
	if err != nil {
		slog.Error("list messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Return [] not null for empty lists
	if msgs == nil {
		msgs = []*model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// UpdateStatus handles PATCH /api/messages/{id} (admin only).
// Any non-blank status is accepted.
func (h *MessageHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	id := r.PathValue("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBodyError(w, err)
		return
	}
	if isBlank(req.Status) {
		writeError(w, http.StatusBadRequest, "Status is required")
		return
	}

	if err := h.messageService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Message not found")
			return
		}
		slog.Error("update message status failed", "error", err, "message_id", id)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Status updated"})
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// writeBodyError maps a request body decoding failure to 413 or 400.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request body")
}
