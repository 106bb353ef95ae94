package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/gearguard/api/internal/board"
	"github.com/gearguard/api/internal/board/remote"
	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/util"
)

var laneOrder = []request.Status{
	request.StatusNew,
	request.StatusInProgress,
	request.StatusRepaired,
	request.StatusScrap,
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	baseURL := strings.TrimSpace(os.Getenv("GEARGUARD_API"))
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}

	client := remote.New(baseURL)
	sess := session.New(client, session.NewFileStore(sessionPath()))
	client.TokenSource = sess.Token

	ctx := context.Background()
	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "login":
		err = runLogin(ctx, sess, args)
	case "logout":
		sess.Logout(ctx)
		fmt.Println("sessão encerrada")
	case "whoami":
		err = runWhoami(ctx, sess)
	case "board":
		err = runBoard(ctx, sess, client, args)
	case "equipment":
		err = runEquipment(ctx, sess, client)
	case "move":
		err = runMove(ctx, sess, client, args)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		discardSessionOnAuthFailure(ctx, sess, err)
		if errors.Is(err, remote.ErrUnavailable) {
			log.Fatal().Err(err).Msg("sem conexão com a API")
		}
		log.Fatal().Err(err).Msg("comando falhou")
	}
}

// Credencial rejeitada no meio da execução não pode sobreviver no
// disco: a próxima invocação partiria de uma sessão já inválida.
func discardSessionOnAuthFailure(ctx context.Context, sess *session.Session, err error) {
	if errors.Is(err, session.ErrUnauthenticated) {
		sess.Invalidate(ctx)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: boardctl <command>

commands:
  login <email>              autentica e persiste a sessão
  logout                     encerra a sessão local
  whoami                     mostra a identidade da sessão
  board [--search <termo>]   mostra o quadro por raia
  equipment                  lista equipamentos e seus estados
  move <id> <from> <to>      move chamado entre raias`)
}

func sessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gearguard-session.json"
	}
	return filepath.Join(home, ".gearguard", "session.json")
}

func runLogin(ctx context.Context, sess *session.Session, args []string) error {
	if len(args) < 1 {
		return errors.New("uso: boardctl login <email>")
	}

	fmt.Fprint(os.Stderr, "senha: ")
	password, err := readPassword()
	if err != nil {
		return err
	}

	identity, err := sess.Login(ctx, session.Credentials{Email: args[0], Password: password})
	if err != nil {
		return err
	}

	fmt.Printf("autenticado como %s (%s)\n", identity.Name, identity.Role)
	return nil
}

func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func restore(ctx context.Context, sess *session.Session) error {
	if _, err := sess.Restore(ctx); err != nil {
		if errors.Is(err, session.ErrUnauthenticated) {
			return errors.New("sessão expirada, faça login novamente")
		}
		return err
	}
	if !sess.Authenticated() {
		return errors.New("não autenticado, faça login primeiro")
	}
	return nil
}

func runWhoami(ctx context.Context, sess *session.Session) error {
	if err := restore(ctx, sess); err != nil {
		return err
	}

	identity := sess.Identity()
	fmt.Printf("%s <%s>\n", identity.Name, identity.Email)
	fmt.Printf("papel: %s\n", identity.Role)
	if identity.TeamID != nil {
		fmt.Printf("equipe: %s\n", identity.TeamID)
	}
	return nil
}

func runBoard(ctx context.Context, sess *session.Session, client *remote.Client, args []string) error {
	if err := restore(ctx, sess); err != nil {
		return err
	}

	var search string
	for i := 0; i < len(args); i++ {
		if args[i] == "--search" && i+1 < len(args) {
			search = args[i+1]
			i++
		}
	}

	b := board.New(sess, client, board.LogNotifier{})
	if err := b.Load(ctx, request.Filters{}); err != nil {
		return err
	}

	today := util.DateOnly(util.Now())
	for _, lane := range laneOrder {
		items := board.Filter(b.Lane(lane), search)
		fmt.Printf("== %s (%d)\n", lane, len(items))
		for _, item := range items {
			marker := " "
			if board.IsOverdue(item, today) {
				marker = "!"
			}
			fmt.Printf(" %s %s  %-10s %s\n", marker, item.ID, item.Priority, item.Subject)
		}
	}
	return nil
}

func runEquipment(ctx context.Context, sess *session.Session, client *remote.Client) error {
	if err := restore(ctx, sess); err != nil {
		return err
	}

	items, err := client.FetchEquipment(ctx, equipment.Filters{})
	if err != nil {
		return err
	}

	for _, item := range items {
		fmt.Printf("%s  %-12s %s\n", item.ID, item.Status, item.Name)
	}
	return nil
}

func runMove(ctx context.Context, sess *session.Session, client *remote.Client, args []string) error {
	if len(args) < 3 {
		return errors.New("uso: boardctl move <id> <from> <to>")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return errors.New("id inválido")
	}

	from := request.Status(args[1])
	to := request.Status(args[2])
	if !request.ValidStatus(from) || !request.ValidStatus(to) {
		return errors.New("raia inválida (use: new, in_progress, repaired, scrap)")
	}

	if err := restore(ctx, sess); err != nil {
		return err
	}

	b := board.New(sess, client, board.LogNotifier{})
	if err := b.Load(ctx, request.Filters{}); err != nil {
		return err
	}

	if err := b.MoveRequest(ctx, id, from, to); err != nil {
		return err
	}

	fmt.Printf("chamado %s movido para %s\n", id, to)
	return nil
}
