package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/honari/reading-backend/internal/errs"
	"github.com/honari/reading-backend/internal/models"
	"github.com/honari/reading-backend/pkg/logger"
)

const usersCollection = "users"

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection(usersCollection),
	}
}

// Set writes the whole user document, replacing whatever was there.
func (us *userStore) Set(ctx context.Context, user *models.User) error {
	_, err := us.Collection.Doc(user.ID).Set(ctx, encodeUser(user))
	if err != nil {
		return errs.NewDatabaseError("write", "failed to write user", err)
	}
	return nil
}

func (us *userStore) Get(ctx context.Context, uid string) (*models.User, error) {
	doc, err := us.Collection.Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("user not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get user", err)
	}

	user, problems := decodeUser(doc.Ref.ID, doc.Data())
	if len(problems) > 0 {
		logger.FromContext(ctx).Warn("user document has malformed fields", "uid", uid, "problems", problems)
	}
	return user, nil
}
