package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tokenlens/internal/ai"
	"tokenlens/internal/configs"
	"tokenlens/internal/pipeline"
	"tokenlens/internal/source"
)

// Handlers holds the request-independent collaborators. All fields are wired
// once at startup and read-only afterwards.
type Handlers struct {
	Price     source.Source
	Details   source.Source
	Validator source.Source
	Social    source.Source
	Tweets    source.Source
	Runner    *pipeline.Runner
	Completer ai.Completer
	AIOpts    ai.CompletionOptions
	Logger    zerolog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) TokenPrice(w http.ResponseWriter, r *http.Request) {
	h.fetchSource(w, r, h.Price, source.Query{
		TokenAddress: r.URL.Query().Get("token_address"),
		Chain:        r.URL.Query().Get("chain"),
	})
}

func (h *Handlers) TokenDetails(w http.ResponseWriter, r *http.Request) {
	h.fetchSource(w, r, h.Details, source.Query{
		TokenAddress: r.URL.Query().Get("token_address"),
		Chain:        r.URL.Query().Get("chain"),
	})
}

func (h *Handlers) ValidateCoin(w http.ResponseWriter, r *http.Request) {
	h.fetchSource(w, r, h.Validator, source.Query{
		Symbol: r.URL.Query().Get("symbol"),
	})
}

func (h *Handlers) SocialSentiment(w http.ResponseWriter, r *http.Request) {
	h.fetchSource(w, r, h.Social, source.Query{
		Symbol: r.URL.Query().Get("symbol"),
	})
}

func (h *Handlers) SocialSearch(w http.ResponseWriter, r *http.Request) {
	maxItems := 10
	if v := r.URL.Query().Get("max_items"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxItems = n
		}
	}

	h.fetchSource(w, r, h.Tweets, source.Query{
		SearchQuery: r.URL.Query().Get("query"),
		SearchType:  r.URL.Query().Get("search_type"),
		MaxItems:    maxItems,
	})
}

func (h *Handlers) fetchSource(w http.ResponseWriter, r *http.Request, src source.Source, q source.Query) {
	payload, err := src.Fetch(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

type analyzeRequest struct {
	TokenAddress string `json:"token_address"`
	Symbol       string `json:"symbol"`
	Chain        string `json:"chain"`
	Query        string `json:"query"`
}

func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	pipelineID := mux.Vars(r)["pipeline_id"]

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.TokenAddress == "" && req.Symbol == "" && req.Query == "" {
		respond(w, http.StatusBadRequest, errorResponse{Error: "token_address, symbol or query is required"})
		return
	}

	combined, err := h.Runner.Run(r.Context(), pipelineID, source.Query{
		TokenAddress: req.TokenAddress,
		Symbol:       req.Symbol,
		Chain:        req.Chain,
		SearchQuery:  req.Query,
	})
	if err != nil {
		var unknown *pipeline.ErrUnknownPipeline
		if errors.As(err, &unknown) {
			respond(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.writeError(w, err)
		return
	}

	// 部分失败仍返回成功分支, 全部失败才报错
	if combined.AllFailed() {
		respond(w, http.StatusBadRequest, combined)
		return
	}
	respond(w, http.StatusOK, combined)
}

type chatRequest struct {
	Messages    []ai.Message `json:"messages"`
	Temperature *float32     `json:"temperature"`
	MaxTokens   *int         `json:"max_tokens"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if len(req.Messages) == 0 {
		respond(w, http.StatusBadRequest, errorResponse{Error: "messages are required"})
		return
	}

	opts := h.AIOpts
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		opts.MaxTokens = *req.MaxTokens
	}

	text, err := h.Completer.Complete(r.Context(), req.Messages, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respond(w, http.StatusOK, chatResponse{Response: text})
}

// writeError maps adapter failures to 400 and configuration errors to 500.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var missing *configs.MissingKeyError
	if errors.As(err, &missing) {
		status = http.StatusInternalServerError
	}

	h.Logger.Error().Err(err).Int("status", status).Msg("request failed")
	respond(w, status, errorResponse{Error: err.Error()})
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
