package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentora/access-layer/internal/core/domain"
)

const credentialCollection = "credentials"

// CredentialStore keeps one document per role, keyed by the role's
// credential key.
type CredentialStore struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewCredentialStore(db *mongo.Database) *CredentialStore {
	return &CredentialStore{coll: db.Collection(credentialCollection), timeout: defaultTimeout}
}

type mongoCredential struct {
	Key       string `bson:"_id"`
	Role      string `bson:"role"`
	Token     string `bson:"token"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *CredentialStore) Get(role domain.Role) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var doc mongoCredential
	err := s.coll.FindOne(ctx, bson.M{"_id": domain.CredentialKey(role)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("find credential: %w", err)
	}
	return doc.Token, nil
}

func (s *CredentialStore) Set(role domain.Role, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	key := domain.CredentialKey(role)
	doc := mongoCredential{
		Key:       key,
		Role:      string(role),
		Token:     token,
		UpdatedAt: time.Now().UTC().Unix(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Clear(role domain.Role) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": domain.CredentialKey(role)}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// Ping reports whether the backing deployment is reachable.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
