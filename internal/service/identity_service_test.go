package service

import (
	"testing"

	"studybuddy_backend/internal/model"
	"studybuddy_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCanonicalKeyPassthrough(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")

	key := "a3f1c2d4-5678-4abc-9def-0123456789ab"
	res := svc.Resolve(key)

	assert.Equal(t, key, res.Key)
	assert.Equal(t, SourceCanonical, res.Source)
	assert.False(t, res.Fallback())
}

func TestResolveByUsername(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")
	user := createUser(t, db, "alice", "alice@example.com")

	res := svc.Resolve("alice")

	assert.Equal(t, user.ID, res.Key)
	assert.Equal(t, SourceUsername, res.Source)
}

func TestResolveByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")
	user := createUser(t, db, "bob", "bob@example.com")

	res := svc.Resolve("bob@example.com")

	assert.Equal(t, user.ID, res.Key)
	assert.Equal(t, SourceEmail, res.Source)
}

func TestResolveBySynthesizedEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")
	// 用户名不匹配，但补全默认域名后邮箱能命中
	user := createUser(t, db, "carol_account", "carol@gmail.com")

	res := svc.Resolve("carol")

	assert.Equal(t, user.ID, res.Key)
	assert.Equal(t, SourceSynthesizedEmail, res.Source)
}

func TestResolveByLegacyID(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")

	legacy := int64(42)
	user := &model.User{Username: "dave", Email: "dave@example.com", LegacyID: &legacy}
	require.NoError(t, db.Create(user).Error)

	res := svc.Resolve("42")

	assert.Equal(t, user.ID, res.Key)
	assert.Equal(t, SourceLegacyID, res.Source)
}

func TestResolveFallsBackToFirstUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")
	first := createUser(t, db, "first", "first@example.com")
	createUser(t, db, "second", "second@example.com")

	res := svc.Resolve("nobody-matches-this")

	assert.Equal(t, first.ID, res.Key)
	assert.Equal(t, SourceFallbackUser, res.Source)
	assert.True(t, res.Fallback())
}

func TestResolveEmptyIdentifierYieldsSentinel(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")

	res := svc.Resolve("   ")

	assert.Equal(t, model.SentinelUserKey, res.Key)
	assert.Equal(t, SourceSentinel, res.Source)
	assert.True(t, res.Fallback())
}

func TestResolveUnknownWithEmptyStoreYieldsSentinel(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")

	res := svc.Resolve("ghost")

	assert.Equal(t, model.SentinelUserKey, res.Key)
	assert.Equal(t, SourceSentinel, res.Source)
}

func TestResolveKeyForMiddleware(t *testing.T) {
	db := newTestDB(t)
	svc := NewIdentityService(repository.NewUserRepository(db), "gmail.com")
	user := createUser(t, db, "erin", "erin@example.com")

	key, ok := svc.ResolveKey("erin")
	assert.True(t, ok)
	assert.Equal(t, user.ID, key)

	_, ok = svc.ResolveKey("")
	assert.False(t, ok)
}
