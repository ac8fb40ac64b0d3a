package storage

import (
	"context"
	"errors"
)

const (
	KeyIDToken = "id_token"
	KeyUserID  = "user_id"
)

// Credentials returns the stored identity token and user id. Both are empty
// when nobody is signed in.
func (s *Store) Credentials(ctx context.Context) (token, userID string, err error) {
	if err := s.getLenient(ctx, KeyIDToken, &token); err != nil {
		return "", "", err
	}
	if err := s.getLenient(ctx, KeyUserID, &userID); err != nil {
		return "", "", err
	}
	return token, userID, nil
}

// SetCredentials persists the identity token and user id.
func (s *Store) SetCredentials(ctx context.Context, token, userID string) error {
	if err := s.Set(ctx, KeyIDToken, token); err != nil {
		return err
	}
	return s.Set(ctx, KeyUserID, userID)
}

// ClearCredentials removes the identity token and user id.
func (s *Store) ClearCredentials(ctx context.Context) error {
	return errors.Join(
		s.Delete(ctx, KeyIDToken),
		s.Delete(ctx, KeyUserID),
	)
}
