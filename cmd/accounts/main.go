// Command accounts is an operator tool for the account store. It wires the
// configuration, logging, and MongoDB-backed repositories together and
// exposes the account-management operations as subcommands.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/config"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/models"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/sessions"
	"github.com/dmitrijs2005/accountkeeper/internal/repositories/users"
	"github.com/dmitrijs2005/accountkeeper/internal/services"
)

const usage = `usage: accounts <command> [flags]

commands:
  register       create an account (-email, -name; password is prompted)
  get            print an account (-email)
  prefs          replace account preferences (-email, -prefs '{"k":"v"}')
  session-start  create or refresh a session (-user, optional -token)
  session-end    delete a session (-user)
  delete         remove an account and its session (-email)

shared flags: -m URI, -db name, -t ms, -o ms, -w cost, -c config.json
`

func main() {
	if err := run(context.Background()); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}
	command := os.Args[1]

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	client, err := dbx.Connect(ctx, cfg.MongoURI, cfg.ConnectTimeout, cfg.OperationTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			logger.Warn(ctx, "disconnect failed", "error", err)
		}
	}()

	db := client.Database(cfg.Database)
	usersRepo := users.NewMongoRepository(db, logger)
	if err := usersRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	sessionsRepo := sessions.NewMongoRepository(db, logger)
	if err := sessionsRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	svc := services.NewAccountService(usersRepo, sessionsRepo, logger)

	switch command {
	case "register":
		return runRegister(ctx, svc, cfg)
	case "get":
		return runGet(ctx, svc)
	case "prefs":
		return runPrefs(ctx, svc)
	case "session-start":
		return runSessionStart(ctx, svc)
	case "session-end":
		return runSessionEnd(ctx, svc)
	case "delete":
		return runDelete(ctx, svc)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// commandFlags builds a FlagSet over only the flags this subcommand owns,
// so shared config flags pass through untouched.
func commandFlags(names ...string) (*flag.FlagSet, []string) {
	fs := flag.NewFlagSet("accounts", flag.ContinueOnError)
	return fs, flagx.FilterArgs(os.Args[2:], names)
}

func runRegister(ctx context.Context, svc *services.AccountService, cfg *config.Config) error {
	fs, args := commandFlags("-email", "-name")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := getPassword(os.Stderr)
	if err != nil {
		return err
	}
	hash, err := services.HashPassword(string(password), cfg.BcryptCost)
	if err != nil {
		return err
	}

	user := &models.User{Email: *email, Name: *name, HashedPassword: hash}
	if err := svc.CreateAccount(ctx, user); err != nil {
		return err
	}
	fmt.Printf("account %s created\n", *email)
	return nil
}

func runGet(ctx context.Context, svc *services.AccountService) error {
	fs, args := commandFlags("-email")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := svc.GetAccount(ctx, *email)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Printf("account %s not found\n", *email)
		return nil
	}
	out, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runPrefs(ctx context.Context, svc *services.AccountService) error {
	fs, args := commandFlags("-email", "-prefs")
	email := fs.String("email", "", "account email")
	prefs := fs.String("prefs", "", "preferences as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var preferences map[string]any
	if *prefs != "" {
		if err := json.Unmarshal([]byte(*prefs), &preferences); err != nil {
			return fmt.Errorf("parsing -prefs: %w", err)
		}
	}

	if err := svc.UpdatePreferences(ctx, *email, preferences); err != nil {
		return err
	}
	fmt.Printf("preferences for %s updated\n", *email)
	return nil
}

func runSessionStart(ctx context.Context, svc *services.AccountService) error {
	fs, args := commandFlags("-user", "-token")
	userID := fs.String("user", "", "user identifier")
	token := fs.String("token", "", "opaque session token (generated when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *token == "" {
		*token = uuid.NewString()
	}
	if err := svc.StartSession(ctx, *userID, *token); err != nil {
		return err
	}
	fmt.Printf("session for %s started, token %s\n", *userID, *token)
	return nil
}

func runSessionEnd(ctx context.Context, svc *services.AccountService) error {
	fs, args := commandFlags("-user")
	userID := fs.String("user", "", "user identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if svc.EndSession(ctx, *userID) {
		fmt.Printf("session for %s deleted\n", *userID)
	} else {
		fmt.Printf("no session deleted for %s\n", *userID)
	}
	return nil
}

func runDelete(ctx context.Context, svc *services.AccountService) error {
	fs, args := commandFlags("-email")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ok, err := svc.RemoveAccount(ctx, *email)
	if err != nil {
		return err
	}
	if ok {
		fmt.Printf("account %s removed\n", *email)
	}
	return nil
}
