package keyring_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/habitkit/go-habitkit/internal/keyring"
)

func TestAuthTokenValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tok  keyring.AuthToken
		want bool
	}{
		{"future expiry is valid", keyring.AuthToken{AccessToken: "a", Expiry: now.Add(time.Hour)}, true},
		{"past expiry is invalid", keyring.AuthToken{AccessToken: "a", Expiry: now.Add(-time.Second)}, false},
		{"expiry equal to now is invalid", keyring.AuthToken{AccessToken: "a", Expiry: now}, false},
		{"missing access token is invalid", keyring.AuthToken{Expiry: now.Add(time.Hour)}, false},
		{"unknown expiry is invalid", keyring.AuthToken{AccessToken: "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.tok.Valid(now); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := keyring.NewStore(keyring.NewMemory())

	tok := keyring.AuthToken{
		AccessToken:  "a1",
		RefreshToken: "r1",
		Expiry:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.AccessToken != "a1" || got.RefreshToken != "r1" {
		t.Errorf("Load() = %+v, want saved token", got)
	}
	if !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("Expiry = %v, want %v", got.Expiry, tok.Expiry)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	t.Parallel()

	store := keyring.NewStore(keyring.NewMemory())

	_, err := store.Load(context.Background())
	if !errors.Is(err, keyring.ErrNoToken) {
		t.Errorf("Load() on empty store = %v, want ErrNoToken", err)
	}
}

func TestStoreSaveRejectsEmptyAccessToken(t *testing.T) {
	t.Parallel()

	store := keyring.NewStore(keyring.NewMemory())

	if err := store.Save(context.Background(), keyring.AuthToken{}); err == nil {
		t.Error("Save() with empty access token should fail")
	}
}

func TestStoreClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := keyring.NewStore(keyring.NewMemory())

	tok := keyring.AuthToken{AccessToken: "a1", RefreshToken: "r1", Expiry: time.Now().Add(time.Hour)}
	if err := store.Save(ctx, tok); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	if _, err := store.Load(ctx); !errors.Is(err, keyring.ErrNoToken) {
		t.Errorf("Load() after Clear() = %v, want ErrNoToken", err)
	}

	// Clearing twice is fine.
	if err := store.Clear(ctx); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestStoreUnparsableExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kr := keyring.NewMemory()
	store := keyring.NewStore(kr)

	if err := kr.Set(ctx, keyring.KeyAccessToken, "a1"); err != nil {
		t.Fatal(err)
	}
	if err := kr.Set(ctx, keyring.KeyTokenExpiry, "not-a-time"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !got.Expiry.IsZero() {
		t.Errorf("Expiry = %v, want zero for unparsable value", got.Expiry)
	}
}

func TestFileKeyring(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	kr := keyring.NewFile(path)

	t.Run("missing key", func(t *testing.T) {
		if _, err := kr.Get(ctx, "nope"); !errors.Is(err, keyring.ErrNotFound) {
			t.Errorf("Get() = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := kr.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		got, err := kr.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "v" {
			t.Errorf("Get() = %q, want %q", got, "v")
		}
	})

	t.Run("survives reopen", func(t *testing.T) {
		reopened := keyring.NewFile(path)
		got, err := reopened.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "v" {
			t.Errorf("Get() = %q, want %q", got, "v")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := kr.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := kr.Get(ctx, "k"); !errors.Is(err, keyring.ErrNotFound) {
			t.Errorf("Get() after delete = %v, want ErrNotFound", err)
		}
		// Deleting a missing key is a no-op.
		if err := kr.Delete(ctx, "k"); err != nil {
			t.Errorf("second Delete() error: %v", err)
		}
	})
}
