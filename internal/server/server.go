package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/internal/cache"
	"github.com/iwvelando/loan-calculator/internal/jobs"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options wires the handler to its collaborators. Zero values select
// defaults; a nil Cache disables caching and a nil Runner disables the jobs API.
type Options struct {
	MaxBodySize int64
	Version     string
	Arithmetic  amortization.Arithmetic
	Cache       cache.Cache
	CacheTTL    time.Duration
	Runner      *jobs.Runner
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	arithmetic  amortization.Arithmetic
	calculators map[amortization.Arithmetic]*amortization.Calculator
	cache       cache.Cache
	cacheTTL    time.Duration
	runner      *jobs.Runner
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constants.DefaultCacheTTL
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		maxBodySize: opts.MaxBodySize,
		version:     trimmedVersion,
		arithmetic:  amortization.NewCalculator(logger, opts.Arithmetic).Arithmetic(),
		calculators: make(map[amortization.Arithmetic]*amortization.Calculator),
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		runner:      opts.Runner,
	}
	for _, a := range amortization.KnownArithmetics {
		h.calculators[a] = amortization.NewCalculator(logger, a)
	}

	mux := http.NewServeMux()

	// Schedule as JSON
	mux.HandleFunc("/api/schedule", h.handleSchedule)

	// Schedule as a CSV download
	mux.HandleFunc("/api/schedule/csv", h.handleScheduleCSV)

	// Background calculations
	mux.HandleFunc("/api/jobs", h.handleJobs)
	mux.HandleFunc("/api/jobs/", h.handleJob)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	req, ok := h.decodeScheduleRequest(w, r, op)
	if !ok {
		return
	}
	terms := req.terms()
	arithmetic, ok := h.resolveArithmetic(w, req.Arithmetic, op)
	if !ok {
		return
	}

	key := cache.Key(terms, arithmetic, "json:"+req.currency())
	if cached, hit := h.cacheGet(r.Context(), key, op); hit {
		h.writeCached(w, "application/json", cached)
		return
	}

	result, ok := h.calculate(w, terms, arithmetic, op)
	if !ok {
		return
	}

	response := newScheduleResponse(result, req.currency(), req.warnings())
	response.CSV = output.CsvString(result)

	body, err := json.Marshal(response)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode schedule: %v", err), op)
		return
	}
	body = append(body, '\n')
	h.cacheSet(r.Context(), key, body, op)

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.Int("periods", result.Len()),
		zap.String("arithmetic", string(arithmetic)),
		zap.Duration("duration", time.Since(start)),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write JSON response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleCSV"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	req, ok := h.decodeScheduleRequest(w, r, op)
	if !ok {
		return
	}
	terms := req.terms()
	arithmetic, ok := h.resolveArithmetic(w, req.Arithmetic, op)
	if !ok {
		return
	}

	key := cache.Key(terms, arithmetic, "csv")
	if cached, hit := h.cacheGet(r.Context(), key, op); hit {
		w.Header().Set("Content-Disposition", `attachment; filename="amortization-schedule.csv"`)
		h.writeCached(w, "text/csv", cached)
		return
	}

	result, ok := h.calculate(w, terms, arithmetic, op)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, result); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}
	h.cacheSet(r.Context(), key, buf.Bytes(), op)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="amortization-schedule.csv"`)
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleJobs"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if h.runner == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "background jobs are disabled", op)
		return
	}

	req, ok := h.decodeScheduleRequest(w, r, op)
	if !ok {
		return
	}
	terms := req.terms()
	if err := terms.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	arithmetic, ok := h.resolveArithmetic(w, req.Arithmetic, op)
	if !ok {
		return
	}

	id, err := h.runner.Submit(jobs.Request{
		Terms:      terms,
		Arithmetic: arithmetic,
		Currency:   req.currency(),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, jobs.ErrQueueFull) || errors.Is(err, jobs.ErrRunnerClosed) {
			status = http.StatusServiceUnavailable
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     id.String(),
		"status": string(jobs.StatePending),
	})
}

func (h *handler) handleJob(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleJob"
	if h.runner == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "background jobs are disabled", op)
		return
	}

	id, err := uuid.Parse(strings.TrimPrefix(r.URL.Path, "/api/jobs/"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid job id: %v", err), op)
		return
	}

	switch r.Method {
	case http.MethodGet:
		job, ok := h.runner.Status(id)
		if !ok {
			h.respondErrorWithOp(w, http.StatusNotFound, jobs.ErrJobNotFound.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, newJobResponse(job))
	case http.MethodDelete:
		if err := h.runner.Discard(id); err != nil {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondDecodeError(w, err, "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"loan", "calculation", "logging", "output"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) decodeScheduleRequest(w http.ResponseWriter, r *http.Request, op string) (scheduleRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return req, false
	}
	return req, true
}

func (h *handler) resolveArithmetic(w http.ResponseWriter, requested string, op string) (amortization.Arithmetic, bool) {
	if strings.TrimSpace(requested) == "" {
		return h.arithmetic, true
	}
	arithmetic, err := amortization.ParseArithmetic(requested)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return "", false
	}
	return arithmetic, true
}

func (h *handler) calculate(w http.ResponseWriter, terms amortization.LoanTerms, arithmetic amortization.Arithmetic, op string) (*amortization.Result, bool) {
	result, err := h.calculators[arithmetic].Calculate(terms)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, amortization.ErrInvalidTerms) || errors.Is(err, amortization.ErrScheduleBuild) {
			status = http.StatusBadRequest
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return nil, false
	}
	return result, true
}

func (h *handler) cacheGet(ctx context.Context, key, op string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	value, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warn("schedule cache read failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, false
	}
	return value, ok
}

func (h *handler) cacheSet(ctx context.Context, key string, value []byte, op string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, key, value, h.cacheTTL); err != nil {
		h.logger.Warn("schedule cache write failed",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (h *handler) writeCached(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write cached response", zap.Error(err))
	}
}

func (h *handler) respondDecodeError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("schedule request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
