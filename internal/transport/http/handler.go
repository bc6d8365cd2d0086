package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"live-trivia-service/internal/app"
	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/ingest"
)

const maxUploadBytes = 10 << 20

// Handler exposes the moderator and player surface over plain HTTP/JSON.
// Every failure becomes a response value; nothing escapes as a fault.
type Handler struct {
	service *app.QuizService
	log     zerolog.Logger
}

func NewHandler(service *app.QuizService, log zerolog.Logger) *Handler {
	return &Handler{service: service, log: log.With().Str("component", "http").Logger()}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/upload", h.Upload)
	mux.HandleFunc("/generate", h.Generate)
	mux.HandleFunc("/next", h.Next)
	mux.HandleFunc("/answerkey", h.AnswerKey)
	mux.HandleFunc("/current", h.Current)
	mux.HandleFunc("/answer", h.Answer)
	mux.HandleFunc("/scores", h.Scores)
	mux.HandleFunc("/reset", h.Reset)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

type loadResponse struct {
	Loaded bool   `json:"loaded"`
	Count  int    `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

type generateResponse struct {
	Generated bool   `json:"generated"`
	Count     int    `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Upload ingests a question document and replaces the bank. A bad upload
// leaves the previously loaded bank untouched.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, loadResponse{Loaded: false, Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, loadResponse{Loaded: false, Error: "missing file field"})
		return
	}
	defer file.Close()

	text, err := ingest.ForFilename(header.Filename).ExtractText(r.Context(), header.Filename, file)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("extraction failed")
		writeJSON(w, loadResponse{Loaded: false, Error: err.Error()})
		return
	}

	count, err := h.service.LoadBank(r.Context(), "upload", "", text)
	if err != nil {
		writeJSON(w, loadResponse{Loaded: false, Error: "could not find any questions in the document"})
		return
	}
	writeJSON(w, loadResponse{Loaded: true, Count: count})
}

// Generate asks the AI backend for a fresh bank on the requested subject.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		subject = "General knowledge"
	}

	count, err := h.service.Generate(r.Context(), subject)
	if err != nil {
		h.log.Warn().Err(err).Str("subject", subject).Msg("generation failed")
		writeJSON(w, generateResponse{Generated: false, Error: err.Error()})
		return
	}
	writeJSON(w, generateResponse{Generated: true, Count: count})
}

// Next advances the round.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Advance()
	switch {
	case errors.Is(err, domain.ErrNoBankLoaded):
		writeJSON(w, messageResponse{Message: "no questions loaded or generated"})
	case errors.Is(err, domain.ErrBankExhausted):
		writeJSON(w, messageResponse{Message: "no more questions"})
	default:
		writeJSON(w, snapshot)
	}
}

// AnswerKey reveals the correct option to the moderator.
func (h *Handler) AnswerKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.service.AnswerKey()
	if err != nil {
		writeJSON(w, messageResponse{Message: "no active question"})
		return
	}
	writeJSON(w, key)
}

// Current reports the latest selected question; always succeeds.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	view := h.service.Current()
	resp := struct {
		Index   int      `json:"questionIndex"`
		Prompt  *string  `json:"question"`
		Options []string `json:"options"`
	}{Index: view.Index, Options: view.Options}
	if view.Prompt != "" {
		resp.Prompt = &view.Prompt
	}
	writeJSON(w, resp)
}

// Answer accepts a player submission and replies with a plain-text verdict.
// Embedded clients match on the exact verdict strings.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	choice, _ := strconv.Atoi(r.URL.Query().Get("choice"))

	verdict := h.service.SubmitAnswer(player, choice)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(verdict))
}

// Scores dumps the full scoreboard.
func (h *Handler) Scores(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.service.Scores())
}

// Reset clears scores and round progress while keeping the loaded bank.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.service.Reset()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("game reset"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
