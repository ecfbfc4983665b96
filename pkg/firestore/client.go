package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tuliahq/sales-sync/pkg/config"
	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
	"github.com/tuliahq/sales-sync/pkg/logger"
)

const (
	workspacesCollection = "workspaces"
	weeksCollection      = "weeks"
)

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errClientNotInitialized = errors.New("firestore client not initialized")
)

// Client wraps the Firestore document store used for weekly records.
type Client struct {
	client    *firestore.Client
	projectID string
}

// NewClient creates a Firestore client for the configured project.
func NewClient(ctx context.Context, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	fsClient, err := firestore.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "firestore client initialized")
	}

	return &Client{client: fsClient, projectID: projectID}, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}

// MergeWeek writes the payload into workspaces/{workspace}/weeks/{weekKey}
// as a field-level merge. Sibling fields already present on the document
// are left untouched, and repeating the write with the same payload is a
// no-op for readers.
func (c *Client) MergeWeek(ctx context.Context, workspace, weekKey string, payload map[string]any) error {
	if strings.TrimSpace(workspace) == "" || strings.TrimSpace(weekKey) == "" {
		return pkgerrors.New(pkgerrors.CodePersistence, "workspace and week key are required")
	}
	if c == nil || c.client == nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, errClientNotInitialized, "merge week document")
	}

	doc := c.client.
		Collection(workspacesCollection).Doc(workspace).
		Collection(weeksCollection).Doc(weekKey)

	if _, err := doc.Set(ctx, payload, firestore.MergeAll); err != nil {
		if status.Code(err) == codes.PermissionDenied {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err,
				fmt.Sprintf("permission denied writing %s/%s/%s/%s", workspacesCollection, workspace, weeksCollection, weekKey))
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err,
			fmt.Sprintf("merge write to %s/%s/%s/%s failed", workspacesCollection, workspace, weeksCollection, weekKey))
	}

	return nil
}

// Close releases the Firestore client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
