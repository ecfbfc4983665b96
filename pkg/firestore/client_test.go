package firestore

import (
	"context"
	"testing"

	"github.com/tuliahq/sales-sync/pkg/config"
	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
)

func TestClientOptionsPrioritizesJSON(t *testing.T) {
	gcp := config.GCPConfig{
		CredentialsJSON:        `{"dummy": "value"}`,
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option, got %d", len(opts))
	}
}

func TestClientOptionsWithFile(t *testing.T) {
	gcp := config.GCPConfig{
		ApplicationCredentials: "/tmp/creds",
	}

	opts := clientOptions(gcp)
	if len(opts) != 1 {
		t.Fatalf("expected 1 option when using credentials file, got %d", len(opts))
	}
}

func TestClientOptionsEmpty(t *testing.T) {
	opts := clientOptions(config.GCPConfig{})
	if len(opts) != 0 {
		t.Fatalf("expected 0 options when no credentials provided, got %d", len(opts))
	}
}

func TestNewClientRequiresProjectID(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCPConfig{}, nil); err == nil {
		t.Fatalf("expected error for missing project id")
	}
}

func TestMergeWeekValidatesPath(t *testing.T) {
	c := &Client{}
	err := c.MergeWeek(context.Background(), "", "2024-06-03", map[string]any{})
	if err == nil {
		t.Fatalf("expected error for blank workspace")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
