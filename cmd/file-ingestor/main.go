package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/caseworks/submissionflow/internal/models"
	"github.com/caseworks/submissionflow/internal/services"
)

var (
	ingestorInstance *services.IngestorFunction
	once             sync.Once
	initErr          error
)

const maxUploadBytes = 64 << 20

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("IngestFile", handleIngestFile)
}

func main() {}

// handleIngestFile is the HTTP adapter in front of the ingestion pipeline.
// Routing, authentication, and the allowed-type decision live in the gateway
// ahead of this function; this handler only unpacks the multipart form and
// maps pipeline errors onto status codes.
func handleIngestFile(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		ingestorInstance, initErr = services.NewIngestor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Ingestor initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		slog.Warn("Could not parse multipart form", "error", err)
		http.Error(w, "Bad Request: could not parse multipart form", http.StatusBadRequest)
		return
	}

	req := &models.UploadRequest{
		TenantID:     r.FormValue("tenantId"),
		SubmissionID: r.FormValue("submissionId"),
		DocumentType: r.FormValue("documentType"),
		DisplayName:  r.FormValue("displayName"),
		Password:     r.FormValue("password"),
		AllowedTypes: parseAllowedTypes(r.Header.Get("X-Allowed-Document-Types")),
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.RelativePath = header.Filename
		req.DeclaredContentType = header.Header.Get("Content-Type")
		req.Payload, err = io.ReadAll(file)
	}
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		slog.Warn("Could not read uploaded file", "error", err)
		http.Error(w, "Bad Request: could not read uploaded file", http.StatusBadRequest)
		return
	}

	res, err := ingestorInstance.Process(r.Context(), req)
	if err != nil {
		// Errors are logged with context inside Process.
		if models.IsClientError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal Server Error: upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "storageKey", res.StorageKey)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}

// parseAllowedTypes reads the comma-separated allow-list injected by the
// authentication gateway. An absent header means unrestricted.
func parseAllowedTypes(header string) []models.DocumentType {
	if header == "" {
		return nil
	}
	var allowed []models.DocumentType
	for _, raw := range strings.Split(header, ",") {
		if docType, ok := models.ParseDocumentType(strings.TrimSpace(raw)); ok {
			allowed = append(allowed, docType)
		}
	}
	return allowed
}
