package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/operatorservice/v1"
	"go.temporal.io/sdk/temporal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Search attributes upserted by the optimization workflow after analysis
var (
	OptimizerScoreField            = temporal.NewSearchAttributeKeyInt64("OptimizerScore")
	OptimizerHasErrorHandlingField = temporal.NewSearchAttributeKeyBool("OptimizerHasErrorHandling")
)

// SearchAttributeTypes lists the custom attributes the workflow needs registered
func SearchAttributeTypes() map[string]enums.IndexedValueType {
	return map[string]enums.IndexedValueType{
		OptimizerScoreField.GetName():            enums.INDEXED_VALUE_TYPE_INT,
		OptimizerHasErrorHandlingField.GetName(): enums.INDEXED_VALUE_TYPE_BOOL,
	}
}

// MissingSearchAttributes returns the required attributes absent from existing
func MissingSearchAttributes(existing map[string]enums.IndexedValueType) map[string]enums.IndexedValueType {
	missing := make(map[string]enums.IndexedValueType)
	for name, valueType := range SearchAttributeTypes() {
		if _, exists := existing[name]; !exists {
			missing[name] = valueType
		}
	}
	return missing
}

// RegisterSearchAttributesIfNeeded registers the optimizer search attributes with
// the Temporal server at hostPort if they don't already exist.
// This should be called during worker initialization.
func RegisterSearchAttributesIfNeeded(ctx context.Context, hostPort string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("Connecting to Temporal server to register search attributes", "host_port", hostPort)
	conn, err := grpc.NewClient(hostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("unable to create gRPC connection to %s: %w. Please register search attributes manually", hostPort, err)
	}
	defer conn.Close()

	operatorClient := operatorservice.NewOperatorServiceClient(conn)

	listResp, err := operatorClient.ListSearchAttributes(ctx, &operatorservice.ListSearchAttributesRequest{})
	if err != nil {
		return fmt.Errorf("failed to list search attributes (check connection and permissions): %w", err)
	}

	attributesToAdd := MissingSearchAttributes(listResp.CustomAttributes)
	if len(attributesToAdd) == 0 {
		slog.Info("All required search attributes are already registered")
		return nil
	}

	_, err = operatorClient.AddSearchAttributes(ctx, &operatorservice.AddSearchAttributesRequest{
		SearchAttributes: attributesToAdd,
	})
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "already exists") ||
			strings.Contains(errMsg, "AlreadyExists") ||
			strings.Contains(errMsg, "already registered") {
			slog.Info("Search attributes already exist (race condition handled)")
			return nil
		}
		return fmt.Errorf("failed to add search attributes: %w", err)
	}

	for name := range attributesToAdd {
		slog.Info("Registered search attribute", "name", name)
	}
	return nil
}
