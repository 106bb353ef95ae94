package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/session"
)

type stubAuthenticator struct {
	identity session.Identity
	token    string
}

func (s *stubAuthenticator) Login(ctx context.Context, creds session.Credentials) (session.Identity, string, error) {
	return s.identity, s.token, nil
}

func (s *stubAuthenticator) CurrentIdentity(ctx context.Context, token string) (session.Identity, error) {
	return s.identity, nil
}

func TestDiscardSessionOnAuthFailure(t *testing.T) {
	auth := &stubAuthenticator{
		identity: session.Identity{ID: uuid.New(), Email: "a@b.com", Role: session.RoleTechnician},
		token:    "tok",
	}
	store := session.NewMemoryStore()
	sess := session.New(auth, store)

	if _, err := sess.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	wrapped := fmt.Errorf("%w: token expirado", session.ErrUnauthenticated)
	discardSessionOnAuthFailure(context.Background(), sess, wrapped)

	if sess.Authenticated() {
		t.Fatal("sessão deveria ser descartada após credencial rejeitada")
	}
	if token, identity, _ := store.Load(context.Background()); token != "" || identity != nil {
		t.Fatal("credencial persistida deveria ser limpa")
	}
}

func TestDiscardSessionKeepsSessionOnOtherErrors(t *testing.T) {
	auth := &stubAuthenticator{
		identity: session.Identity{ID: uuid.New(), Email: "a@b.com", Role: session.RoleTechnician},
		token:    "tok",
	}
	sess := session.New(auth, session.NewMemoryStore())

	if _, err := sess.Login(context.Background(), session.Credentials{Email: "a@b.com", Password: "x"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	discardSessionOnAuthFailure(context.Background(), sess, errors.New("falha de rede"))

	if !sess.Authenticated() {
		t.Fatal("erro não relacionado a autenticação não deveria derrubar a sessão")
	}
}
