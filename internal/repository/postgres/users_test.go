package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akulikov/streamtube/internal/apperrors"
	"github.com/akulikov/streamtube/internal/models"
	"github.com/akulikov/streamtube/internal/repository"
	"github.com/akulikov/streamtube/internal/testutil"
)

func createParams(username string) repository.CreateUserParams {
	return repository.CreateUserParams{
		Username:       username,
		Email:          username + "@example.com",
		FullName:       "Test User",
		Avatar:         "https://media.example.com/avatar.png",
		HashedPassword: "hashed_password",
	}
}

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, fn func(repo repository.UserRepo)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewStorage(tx).User())
		})
	}

	t.Run("CreateUser", func(t *testing.T) {
		t.Run("create ok", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				user, err := repo.CreateUser(t.Context(), createParams("testuser"))

				require.NoError(t, err, "creating new user should be ok")
				assert.NotEqual(t, uuid.Nil, user.ID, "user ID should be generated")
				assert.Equal(t, "testuser", user.Username)
				assert.Equal(t, "testuser@example.com", user.Email)
				assert.Equal(t, "https://media.example.com/avatar.png", user.Avatar)
				assert.Empty(t, user.CoverImage, "cover image is optional")
				assert.Nil(t, user.RefreshToken, "fresh user has no refresh token")
				assert.NotZero(t, user.CreatedAt)
				assert.NotZero(t, user.UpdatedAt)
			})
		})

		t.Run("duplicate username fail", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				_, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				arg := createParams("testuser")
				arg.Email = "other@example.com"
				_, err = repo.CreateUser(t.Context(), arg)

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})

		t.Run("duplicate email fail", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				_, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				arg := createParams("otheruser")
				arg.Email = "testuser@example.com"
				_, err = repo.CreateUser(t.Context(), arg)

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("GetUserByLogin", func(t *testing.T) {
		t.Run("by username or email", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				byUsername, err := repo.GetUserByLogin(t.Context(), "testuser")
				require.NoError(t, err)
				require.Equal(t, created.ID, byUsername.ID)

				byEmail, err := repo.GetUserByLogin(t.Context(), "testuser@example.com")
				require.NoError(t, err)
				require.Equal(t, created.ID, byEmail.ID)
			})
		})

		t.Run("not found", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				_, err := repo.GetUserByLogin(t.Context(), "nobody")
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("GetUserByID not found", func(t *testing.T) {
		inTx(t, func(repo repository.UserRepo) {
			_, err := repo.GetUserByID(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})

	t.Run("SetRefreshToken", func(t *testing.T) {
		t.Run("set and clear", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				token := "refresh-token-value"
				err = repo.SetRefreshToken(t.Context(), created.ID, &token)
				require.NoError(t, err)

				user, err := repo.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				require.NotNil(t, user.RefreshToken)
				require.Equal(t, token, *user.RefreshToken)

				err = repo.SetRefreshToken(t.Context(), created.ID, nil)
				require.NoError(t, err)

				user, err = repo.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				require.Nil(t, user.RefreshToken, "nil must clear the stored token")
			})
		})

		t.Run("unknown user fail", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				token := "refresh-token-value"
				err := repo.SetRefreshToken(t.Context(), uuid.New(), &token)
				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})

	t.Run("SwapRefreshToken", func(t *testing.T) {
		t.Run("swap when token matches", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				old := "old-token"
				err = repo.SetRefreshToken(t.Context(), created.ID, &old)
				require.NoError(t, err)

				swapped, err := repo.SwapRefreshToken(t.Context(), created.ID, "old-token", "new-token")
				require.NoError(t, err)
				require.True(t, swapped, "swap with matching token should succeed")

				user, err := repo.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				require.NotNil(t, user.RefreshToken)
				require.Equal(t, "new-token", *user.RefreshToken)
			})
		})

		t.Run("no-op when token differs", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				stored := "stored-token"
				err = repo.SetRefreshToken(t.Context(), created.ID, &stored)
				require.NoError(t, err)

				swapped, err := repo.SwapRefreshToken(t.Context(), created.ID, "some-other-token", "new-token")
				require.NoError(t, err)
				require.False(t, swapped, "swap with stale token must be rejected")

				user, err := repo.GetUserByID(t.Context(), created.ID)
				require.NoError(t, err)
				require.NotNil(t, user.RefreshToken)
				require.Equal(t, "stored-token", *user.RefreshToken, "stored token must stay unchanged")
			})
		})

		t.Run("no-op when token cleared", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				// refresh_token is NULL, the predicate can't match
				swapped, err := repo.SwapRefreshToken(t.Context(), created.ID, "anything", "new-token")
				require.NoError(t, err)
				require.False(t, swapped, "swap against cleared token must be rejected")
			})
		})
	})

	t.Run("UpdatePasswordHash", func(t *testing.T) {
		inTx(t, func(repo repository.UserRepo) {
			created, err := repo.CreateUser(t.Context(), createParams("testuser"))
			require.NoError(t, err)

			err = repo.UpdatePasswordHash(t.Context(), created.ID, "new_hash")
			require.NoError(t, err)

			user, err := repo.GetUserByID(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, "new_hash", user.HashedPassword)
		})
	})

	t.Run("UpdateAccount", func(t *testing.T) {
		t.Run("update ok", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				created, err := repo.CreateUser(t.Context(), createParams("testuser"))
				require.NoError(t, err)

				user, err := repo.UpdateAccount(t.Context(), created.ID, repository.UpdateAccountParams{
					FullName: "New Name",
					Email:    "newmail@example.com",
				})

				require.NoError(t, err)
				assert.Equal(t, "New Name", user.FullName)
				assert.Equal(t, "newmail@example.com", user.Email)
			})
		})

		t.Run("taken email fail", func(t *testing.T) {
			inTx(t, func(repo repository.UserRepo) {
				_, err := repo.CreateUser(t.Context(), createParams("first"))
				require.NoError(t, err)
				second, err := repo.CreateUser(t.Context(), createParams("second"))
				require.NoError(t, err)

				_, err = repo.UpdateAccount(t.Context(), second.ID, repository.UpdateAccountParams{
					FullName: "Second",
					Email:    "first@example.com",
				})

				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("UpdateAvatar and UpdateCoverImage", func(t *testing.T) {
		inTx(t, func(repo repository.UserRepo) {
			created, err := repo.CreateUser(t.Context(), createParams("testuser"))
			require.NoError(t, err)

			var user models.User
			user, err = repo.UpdateAvatar(t.Context(), created.ID, "https://media.example.com/new-avatar.png")
			require.NoError(t, err)
			require.Equal(t, "https://media.example.com/new-avatar.png", user.Avatar)

			user, err = repo.UpdateCoverImage(t.Context(), created.ID, "https://media.example.com/cover.png")
			require.NoError(t, err)
			require.Equal(t, "https://media.example.com/cover.png", user.CoverImage)
		})
	})
}
