package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gearguard/api/internal/auth"
)

// Gera um hash Argon2id pronto para inserir na coluna password_hash.
// A senha vem do argumento ou, na ausência dele, da entrada padrão.
func main() {
	password := ""
	if len(os.Args) > 1 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "usage: hashpass [senha]")
			os.Exit(1)
		}
		password = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpass [senha]")
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpass: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
