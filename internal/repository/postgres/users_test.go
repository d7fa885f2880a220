package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akosarev/authd/internal/apperrors"
	"github.com/akosarev/authd/internal/repository"
	"github.com/akosarev/authd/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Helper to run tests with its own UserRepo in transaction
	// When test ends rollback
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, testFunc func(*UserRepo)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			testFunc(&UserRepo{DB: tx})
		})
	}

	t.Run("create user ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			user, err := r.CreateUser(t.Context(), repository.CreateUserParams{
				Email:        "a@test.com",
				PasswordHash: "hashedpassword123",
			})

			require.NoError(t, err)
			assert.Greater(t, user.ID, int64(0), "ID should be generated")
			assert.Equal(t, "a@test.com", user.Email)
			assert.Equal(t, "hashedpassword123", user.PasswordHash)
			assert.WithinDuration(t, time.Now(), user.CreatedAt, time.Second, "CreatedAt should be recent")
		})
	})

	t.Run("create user duplicate email fails", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			_, err := r.CreateUser(t.Context(), repository.CreateUserParams{Email: "dup@test.com", PasswordHash: "hash"})
			require.NoError(t, err)

			_, err = r.CreateUser(t.Context(), repository.CreateUserParams{Email: "dup@test.com", PasswordHash: "otherhash"})

			assert.Error(t, err, "Should fail on duplicate email")
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists, "if user exists must return well defined error")
		})
	})

	t.Run("get user by id ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			created, err := r.CreateUser(t.Context(), repository.CreateUserParams{Email: "findbyid@test.com", PasswordHash: "hash"})
			require.NoError(t, err)

			got, err := r.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
			assert.Equal(t, created.PasswordHash, got.PasswordHash)
			assert.Equal(t, created.CreatedAt, got.CreatedAt)
		})
	})

	t.Run("get user by id not found", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			_, err := r.GetUserByID(t.Context(), 99999)

			assert.Error(t, err, "Should return error for non-existent user")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})

	t.Run("get user by email ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			created, err := r.CreateUser(t.Context(), repository.CreateUserParams{Email: "findbyemail@test.com", PasswordHash: "hash"})
			require.NoError(t, err)

			got, err := r.GetUserByEmail(t.Context(), "findbyemail@test.com")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.Email, got.Email)
		})
	})

	t.Run("get user by email not found", func(t *testing.T) {
		withTx(pg.Pool, t, func(r *UserRepo) {
			_, err := r.GetUserByEmail(t.Context(), "nope@test.com")

			assert.ErrorIs(t, err, apperrors.ErrUserNotFound, "should return well known error")
		})
	})
}
