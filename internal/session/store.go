package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// persistedSession é o layout serializado em disco.
type persistedSession struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`
}

// FileStore persiste a sessão em um arquivo JSON local.
type FileStore struct {
	path string
}

// NewFileStore cria o store apontando para o arquivo informado.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save grava token e identidade em disco.
func (f *FileStore) Save(ctx context.Context, token string, identity Identity) error {
	data, err := json.Marshal(persistedSession{Token: token, Identity: identity})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Load lê a sessão persistida. Ausência do arquivo não é erro:
// apenas significa que não há sessão para restaurar.
func (f *FileStore) Load(ctx context.Context) (string, *Identity, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, nil
		}
		return "", nil, err
	}

	var stored persistedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// Arquivo corrompido equivale a sessão inexistente.
		_ = os.Remove(f.path)
		return "", nil, nil
	}

	return stored.Token, &stored.Identity, nil
}

// Clear remove a credencial persistida.
func (f *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore guarda a sessão apenas em memória.
type MemoryStore struct {
	mu       sync.Mutex
	token    string
	identity *Identity
}

// NewMemoryStore cria um store volátil.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save guarda token e identidade.
func (m *MemoryStore) Save(ctx context.Context, token string, identity Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	id := identity
	m.identity = &id
	return nil
}

// Load devolve o que estiver guardado.
func (m *MemoryStore) Load(ctx context.Context) (string, *Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return "", nil, nil
	}
	id := *m.identity
	return m.token, &id, nil
}

// Clear descarta o conteúdo.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.identity = nil
	return nil
}
