package user

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type inMemUserRepo struct {
	lock  sync.RWMutex
	users map[uuid.UUID]userRow
}

// NewInMemUserRepo returns a process-local user store for tests and the memory backend.
func NewInMemUserRepo() *inMemUserRepo {
	return &inMemUserRepo{users: make(map[uuid.UUID]userRow)}
}

func (r *inMemUserRepo) InsertUser(ctx context.Context, u userRow) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.users[u.UUID] = u
	return nil
}

func (r *inMemUserRepo) GetUserByUUID(ctx context.Context, userUuid uuid.UUID) (userRow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	u, ok := r.users[userUuid]
	if !ok {
		return userRow{}, errNoUser
	}
	return u, nil
}

func (r *inMemUserRepo) GetUserByUsername(ctx context.Context, username string) (userRow, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return userRow{}, errNoUser
}

func (r *inMemUserRepo) ExistsUsernameOrEmail(ctx context.Context, username string, email string) (bool, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	var usernameTaken, emailTaken bool
	for _, u := range r.users {
		usernameTaken = usernameTaken || u.Username == username
		emailTaken = emailTaken || u.Email == email
	}
	return usernameTaken, emailTaken, nil
}

func (r *inMemUserRepo) RewriteRole(ctx context.Context, from string, to string) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	var n int64
	for id, u := range r.users {
		if u.Role == from {
			u.Role = to
			r.users[id] = u
			n++
		}
	}
	return n, nil
}
