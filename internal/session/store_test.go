package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)
	ctx := context.Background()

	identity := Identity{ID: uuid.New(), Email: "a@b.com", Name: "Alguém", Role: RoleAdmin}
	if err := store.Save(ctx, "tok", identity); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("permissão esperada 0600, veio %o", perm)
	}

	token, stored, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok" || stored == nil || stored.ID != identity.ID {
		t.Fatal("sessão persistida não confere")
	}
}

func TestFileStoreMissingFileIsNotError(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	token, stored, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("arquivo ausente não é erro: %v", err)
	}
	if token != "" || stored != nil {
		t.Fatal("arquivo ausente significa sessão inexistente")
	}
}

func TestFileStoreCorruptedFileIsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{nem json"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewFileStore(path)
	token, stored, err := store.Load(context.Background())
	if err != nil || token != "" || stored != nil {
		t.Fatalf("arquivo corrompido equivale a sessão inexistente: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("arquivo corrompido deveria ter sido removido")
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)
	ctx := context.Background()

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear sem arquivo deveria ser seguro: %v", err)
	}

	_ = store.Save(ctx, "tok", Identity{ID: uuid.New()})
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("clear deveria remover o arquivo")
	}
}
