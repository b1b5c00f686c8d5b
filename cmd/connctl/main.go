// connctl is a one-shot CLI for the gateway connection-management API.
//
// Usage:
//
//	connctl [flags] get <identifier>
//	connctl [flags] history <identifier>
//	connctl [flags] params <identifier>
//	connctl [flags] save <connection.json>
//	connctl [flags] move <identifier> <parent-identifier>
//	connctl [flags] delete <identifier>
//
// Authentication comes from flags or environment variables:
//
//	GATEWAY_URL      - REST base URL
//	GATEWAY_TOKEN    - pre-issued auth token
//	GATEWAY_USERNAME - username, used with GATEWAY_PASSWORD when no token is set
//	GATEWAY_PASSWORD - password
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mwhittaker/remotegate/internal/api"
	"github.com/mwhittaker/remotegate/internal/auth"
	"github.com/mwhittaker/remotegate/internal/version"
)

func main() {
	gateway := flag.String("gateway", os.Getenv("GATEWAY_URL"), "gateway REST base URL")
	token := flag.String("token", os.Getenv("GATEWAY_TOKEN"), "pre-issued auth token")
	username := flag.String("username", os.Getenv("GATEWAY_USERNAME"), "username for credential login")
	password := flag.String("password", os.Getenv("GATEWAY_PASSWORD"), "password for credential login")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: connctl [flags] <get|history|params|save|move|delete> ...")
		os.Exit(2)
	}

	if *gateway == "" {
		fatal(logger, "gateway base URL is required (--gateway or GATEWAY_URL)")
	}

	tokens, err := buildTokenSource(*gateway, *token, *username, *password)
	if err != nil {
		fatal(logger, err.Error())
	}

	client := api.NewClient(*gateway, tokens,
		api.WithTimeout(*timeout),
		api.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, client, args); err != nil {
		fatal(logger, err.Error())
	}
}

// buildTokenSource picks a token source: a pre-issued token wins, otherwise
// log in with credentials.
func buildTokenSource(baseURL, token, username, password string) (auth.TokenSource, error) {
	if token != "" {
		return auth.StaticTokenSource(token), nil
	}
	if username == "" || password == "" {
		return nil, fmt.Errorf("no token and no credentials: set --token or --username/--password")
	}
	return auth.NewSessionTokenSource(baseURL, username, password), nil
}

// run dispatches a single subcommand.
func run(ctx context.Context, client *api.Client, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "get":
		if len(rest) != 1 {
			return fmt.Errorf("usage: connctl get <identifier>")
		}
		conn, err := client.GetConnection(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(conn)

	case "history":
		if len(rest) != 1 {
			return fmt.Errorf("usage: connctl history <identifier>")
		}
		entries, err := client.GetConnectionHistory(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(entries)

	case "params":
		if len(rest) != 1 {
			return fmt.Errorf("usage: connctl params <identifier>")
		}
		params, err := client.GetConnectionParameters(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(params)

	case "save":
		if len(rest) != 1 {
			return fmt.Errorf("usage: connctl save <connection.json>")
		}
		conn, err := readConnection(rest[0])
		if err != nil {
			return err
		}
		identifier, err := client.SaveConnection(ctx, conn)
		if err != nil {
			return err
		}
		fmt.Println(identifier)
		return nil

	case "move":
		if len(rest) != 2 {
			return fmt.Errorf("usage: connctl move <identifier> <parent-identifier>")
		}
		conn, err := client.GetConnection(ctx, rest[0])
		if err != nil {
			return err
		}
		conn.ParentIdentifier = rest[1]
		return client.MoveConnection(ctx, conn)

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("usage: connctl delete <identifier>")
		}
		return client.DeleteConnection(ctx, &api.Connection{Identifier: rest[0]})

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// readConnection loads a connection definition from a JSON file, or stdin
// when path is "-".
func readConnection(path string) (*api.Connection, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read connection file: %w", err)
	}

	var conn api.Connection
	if err := json.Unmarshal(data, &conn); err != nil {
		return nil, fmt.Errorf("parse connection file: %w", err)
	}
	return &conn, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func fatal(logger *slog.Logger, msg string) {
	logger.Error(msg)
	fmt.Fprintln(os.Stderr, "connctl:", msg)
	os.Exit(1)
}
