// ABOUTME: Terminal client for duochat using the session poll loop.
// ABOUTME: Line-oriented commands: login, peer, pause, resume, logout, quit; plain lines send.

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/duochat/internal/api"
	"github.com/2389/duochat/internal/client"
	"github.com/2389/duochat/internal/config"
	"github.com/2389/duochat/internal/session"
)

// terminalView prints rendered messages as the session delivers them.
type terminalView struct {
	meID func() int64
}

func (v *terminalView) Reset(msgs []api.MessageResponse) {
	fmt.Println(color.HiBlackString("--- conversation ---"))
	v.Append(msgs)
}

func (v *terminalView) Append(msgs []api.MessageResponse) {
	me := v.meID()
	for _, m := range msgs {
		who := color.CyanString("#%d", m.FromID)
		if m.FromID == me {
			who = color.GreenString("you")
		}
		fmt.Printf("%s %s %s\n", color.HiBlackString(m.CreatedAt), who, m.Content)
	}
}

const usage = `Commands:
  login <id>    log in with your numeric id
  peer <id>     load a contact and start polling
  pause         pause polling (like backgrounding the tab)
  resume        resume polling
  logout        log out and clear local state
  quit          exit
Anything else is sent as a message to the loaded peer.`

// loadConfig resolves the same config file the server uses, so the
// terminal client polls at the configured interval. Resolution order:
// -config flag, DUOCHAT_CONFIG, ./duochat.yaml, built-in defaults.
func loadConfig(flagValue string) (*config.Config, error) {
	path := flagValue
	if path == "" {
		path = os.Getenv("DUOCHAT_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("duochat.yaml"); err == nil {
			path = "duochat.yaml"
		}
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func main() {
	serverURL := flag.String("server", "http://localhost:3000", "duochat server URL")
	configFlag := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		os.Exit(1)
	}

	c := client.New(*serverURL)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: server unreachable at %s: %v\n", *serverURL, err)
		os.Exit(1)
	}

	var sess *session.Session
	view := &terminalView{meID: func() int64 {
		if me := sess.Me(); me != nil {
			return me.ID
		}
		return 0
	}}
	sess = session.New(c, view, session.Options{
		PollInterval: cfg.Client.PollInterval,
		HistoryLimit: cfg.Client.HistoryLimit,
	})
	defer sess.Logout()

	fmt.Printf("Connected to %s\n", *serverURL)
	fmt.Println(usage)

	scanner := bufio.NewScanner(os.Stdin)
	prompt(sess)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			prompt(sess)
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "login":
			runLogin(ctx, sess, arg)
		case "peer":
			runPeer(ctx, sess, arg)
		case "pause":
			sess.SetVisible(false)
			fmt.Println("polling paused")
		case "resume":
			sess.SetVisible(true)
			fmt.Println("polling resumed")
		case "logout":
			sess.Logout()
			fmt.Println("logged out")
		case "help":
			fmt.Println(usage)
		default:
			if err := sess.Send(ctx, line); err != nil {
				printError(err)
			}
		}
		prompt(sess)
	}
}

func prompt(sess *session.Session) {
	fmt.Printf("%s> ", color.HiBlackString(sess.State().String()))
}

func runLogin(ctx context.Context, sess *session.Session, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		printError(fmt.Errorf("login needs a numeric id"))
		return
	}
	if err := sess.Login(ctx, id); err != nil {
		printError(err)
		return
	}
	me := sess.Me()
	fmt.Printf("logged in as %s (#%d)\n", me.Name, me.ID)
}

func runPeer(ctx context.Context, sess *session.Session, arg string) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		printError(fmt.Errorf("peer needs a numeric id"))
		return
	}
	if err := sess.LoadPeer(ctx, id); err != nil {
		printError(err)
		return
	}
	peer := sess.Peer()
	fmt.Printf("talking to %s (#%d)\n", peer.Name, peer.ID)
}

func printError(err error) {
	fmt.Println(color.RedString("error: %v", err))
}
