package api

import (
	"encoding/json"
	"net/http"
	"time"

	"argus/analyzer"
	"argus/core"
	"argus/mitre"
)

// respondJSON writes a JSON response with proper error handling.
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorf("Failed to encode response: %v", err)
	}
}

// writeError logs the full error internally and returns a bounded message
// to the client.
func (a *API) writeError(w http.ResponseWriter, statusCode int, message string, err error) {
	if err != nil {
		a.logger.Errorw(message, "error", err.Error(), "status_code", statusCode)
	} else {
		a.logger.Errorw(message, "status_code", statusCode)
	}
	if len(message) > core.MaxErrorMessageLength {
		message = message[:core.MaxErrorMessageLength-3] + "..."
	}
	http.Error(w, message, statusCode)
}

type analyzeRequest struct {
	IOC     string                 `json:"ioc" validate:"required,max=2048"`
	IOCType string                 `json:"ioc_type" validate:"omitempty,max=32"`
	Context map[string]interface{} `json:"context"`
}

func (a *API) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Validation failed: ioc is required", err)
		return
	}

	result, err := a.analyzer.Analyze(r.Context(), req.IOC, core.IOCType(req.IOCType), req.Context)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "Analysis failed", err)
		return
	}
	a.respondJSON(w, result, http.StatusOK)
}

type batchAnalyzeRequest struct {
	IOCs    []string `json:"iocs" validate:"omitempty,max=100,dive,required,max=2048"`
	IOCType string   `json:"ioc_type" validate:"omitempty,max=32"`
}

func (a *API) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	var req batchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	// An empty batch is not an error; it yields an empty result set.
	results := a.analyzer.BatchAnalyze(r.Context(), req.IOCs, core.IOCType(req.IOCType))
	a.respondJSON(w, results, http.StatusOK)
}

func (a *API) handleTactics(w http.ResponseWriter, _ *http.Request) {
	a.respondJSON(w, map[string]interface{}{
		"tactics": a.analyzer.Catalog().AllTactics(),
	}, http.StatusOK)
}

func (a *API) handleTechniques(w http.ResponseWriter, r *http.Request) {
	catalog := a.analyzer.Catalog()

	if tactic := r.URL.Query().Get("tactic"); tactic != "" {
		ids := catalog.TechniquesForTactic(tactic)
		if ids == nil {
			ids = []string{}
		}
		a.respondJSON(w, map[string]interface{}{"techniques": ids}, http.StatusOK)
		return
	}

	ids := make([]string, 0, len(catalog.Techniques()))
	for _, t := range catalog.Techniques() {
		ids = append(ids, t.ID)
	}
	a.respondJSON(w, map[string]interface{}{"techniques": ids}, http.StatusOK)
}

// techniqueResponse is the search result representation, including the
// reference URL the catalog derives from the technique ID.
type techniqueResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Tactic       string   `json:"tactic"`
	Keywords     []string `json:"keywords"`
	ReferenceURL string   `json:"referenceUrl"`
}

func toTechniqueResponse(t mitre.Technique) techniqueResponse {
	return techniqueResponse{
		ID:           t.ID,
		Name:         t.Name,
		Tactic:       t.Tactic,
		Keywords:     t.Keywords,
		ReferenceURL: t.ReferenceURL(),
	}
}

func (a *API) handleSearchTechniques(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		a.writeError(w, http.StatusBadRequest, "Query parameter q is required", nil)
		return
	}

	matches := a.analyzer.Catalog().Search(query)
	results := make([]techniqueResponse, 0, len(matches))
	for _, t := range matches {
		results = append(results, toTechniqueResponse(t))
	}
	a.respondJSON(w, map[string]interface{}{"results": results}, http.StatusOK)
}

type recordRequest struct {
	IOC      string                 `json:"ioc" validate:"required,max=2048"`
	IOCType  string                 `json:"ioc_type" validate:"omitempty,max=32"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (a *API) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := a.validate.Struct(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, "Validation failed: ioc is required", err)
		return
	}

	iocType := core.IOCType(req.IOCType)
	if iocType == "" {
		iocType = core.DetectIOCType(req.IOC)
	}

	maxRelated := a.config.Analysis.MaxRelated
	if maxRelated <= 0 {
		maxRelated = analyzer.DefaultOptions().MaxRelated
	}

	correlator := a.analyzer.Correlator()
	correlator.Record(req.IOC, iocType, req.Metadata)
	related := correlator.FindRelated(req.IOC, iocType, maxRelated)
	a.respondJSON(w, map[string]interface{}{"relatedThreats": related}, http.StatusOK)
}

func (a *API) handleClusters(w http.ResponseWriter, r *http.Request) {
	window := 24 * time.Hour
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			a.writeError(w, http.StatusBadRequest, "Invalid window duration", err)
			return
		}
		window = parsed
	}
	a.respondJSON(w, map[string]interface{}{
		"clusters": a.analyzer.Correlator().ClusterByTime(window),
	}, http.StatusOK)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, map[string]interface{}{
		"correlator": a.analyzer.Correlator().Statistics(),
		"cache":      a.analyzer.CacheStats(r.Context()),
	}, http.StatusOK)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	a.respondJSON(w, map[string]interface{}{
		"status":    "healthy",
		"version":   core.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}
