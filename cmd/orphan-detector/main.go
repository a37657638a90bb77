package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/caseworks/submissionflow/internal/services"
)

var (
	reconcilerInstance *services.ReconcilerFunction
	once               sync.Once
	initErr            error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("DetectOrphan", detectOrphan)
}

func main() {}

// detectOrphan fires on every finalized upload object and verifies that its
// aggregation record eventually exists. An object that never gets a record
// is logged as uploaded-but-unaggregated for the operator to repair.
func detectOrphan(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		reconcilerInstance, initErr = services.NewReconciler(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// The orphan signal itself is logged inside CheckObject; only
	// infrastructure faults fail the invocation so the event is retried.
	if _, err := reconcilerInstance.CheckObject(ctx, gcsEvent.Name); err != nil {
		return err
	}
	return nil
}
