package auth

import (
	"github.com/alexedwards/argon2id"
)

// Parâmetros ficam embutidos no próprio hash, então podem evoluir sem
// invalidar senhas já cadastradas.
var hashParams = &argon2id.Params{
	Memory:      64 * 1024, // KiB
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id da senha.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, hashParams)
}

// Verify compara senha em claro com o hash armazenado.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}
