package store

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/honari/reading-backend/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{secret}/versions/{version}

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{
		client:    client,
		projectID: projectID,
	}
}

// Access returns the payload of secret, which may be a bare secret id, a
// secret resource name, or a full version resource name.
func (s *secretsStore) Access(ctx context.Context, secret string) (string, error) {
	name := secretVersionName(s.projectID, secret)
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if status.Code(err) == codes.NotFound {
		return "", errs.NewNotFoundError(fmt.Sprintf("secret %s not found", name))
	}
	if err != nil {
		return "", errs.NewExternalServiceError("secretmanager", "failed to access secret", false, err)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}

func secretVersionName(projectID, secret string) string {
	switch {
	case strings.Contains(secret, "/versions/"):
		return secret
	case strings.HasPrefix(secret, "projects/"):
		return secret + "/versions/latest"
	default:
		return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secret)
	}
}
