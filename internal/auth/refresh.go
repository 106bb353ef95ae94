package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const refreshTokenBytes = 32

// ErrInvalidRefresh indica refresh token desconhecido, revogado ou
// expirado. O chamador trata como sessão encerrada.
var ErrInvalidRefresh = errors.New("refresh token inválido")

// GenerateRefreshToken devolve o token opaco entregue ao cliente e o
// hash que vai para o banco. O valor em claro nunca é persistido.
func GenerateRefreshToken() (raw string, hashed string, err error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, HashRefreshToken(raw), nil
}

// HashRefreshToken reduz o token em claro ao hash persistível.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey é a chave redis que marca o refresh como ativo.
func RefreshRedisKey(hash string) string {
	return "refresh:" + hash
}
