package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"text/tabwriter"

	"github.com/mkrupp/mesto/internal/domain"
	"github.com/mkrupp/mesto/internal/svc/appsvc"
	"github.com/mkrupp/mesto/internal/svc/imagesvc"
)

var (
	errUsage       = errors.New("usage")
	errNotSignedIn = errors.New("not signed in, run `mesto signin` first")
	errNoSuchCard  = errors.New("no such card in the feed")
)

// CLI maps subcommands onto AppController handlers and renders the resulting state.
type CLI struct {
	cfg    Config
	ctrl   *appsvc.AppController
	images imagesvc.ImageService
	out    io.Writer
	errOut io.Writer
}

type command struct {
	name    string
	args    string
	help    string
	session bool // requires a restored session
	run     func(c *CLI, ctx context.Context, args []string) error
}

//nolint:gochecknoglobals
var commands = []command{
	{"signup", "-email E -password P", "register a new account", false, (*CLI).signup},
	{"signin", "-email E -password P", "sign in and store the token", false, (*CLI).signin},
	{"signout", "", "forget the stored token", false, (*CLI).signout},
	{"whoami", "", "show the current profile", true, (*CLI).whoami},
	{"cards", "", "list the card feed", true, (*CLI).cards},
	{"add", "-name N -link URL", "create a card", true, (*CLI).add},
	{"like", "CARD_ID", "toggle your like on a card", true, (*CLI).like},
	{"delete", "CARD_ID", "delete one of your cards", true, (*CLI).remove},
	{"open", "[-width W] [-o FILE] CARD_ID", "save a resized preview of a card", true, (*CLI).open},
	{"profile", "-name N -about A", "edit name and about", true, (*CLI).profile},
	{"avatar", "-link URL", "change the avatar", true, (*CLI).avatar},
	{"env", "", "list configuration variables", false, (*CLI).env},
}

// Run executes the subcommand named by args[0].
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()

		return errUsage
	}

	idx := slices.IndexFunc(commands, func(cmd command) bool { return cmd.name == args[0] })
	if idx < 0 {
		fmt.Fprintf(c.errOut, "unknown command %q\n", args[0])
		c.usage()

		return errUsage
	}

	cmd := commands[idx]

	if cmd.name == "env" {
		return cmd.run(c, ctx, args[1:])
	}

	defer c.ctrl.Subscribe(c.statusRenderer())()

	if err := c.ctrl.Init(ctx); err != nil && cmd.session {
		return fmt.Errorf("restore session: %w", err)
	}

	if cmd.session && !c.ctrl.State().LoggedIn {
		return errNotSignedIn
	}

	return cmd.run(c, ctx, args[1:])
}

func (c *CLI) usage() {
	fmt.Fprintln(c.errOut, "usage: mesto COMMAND [ARGS]")
	fmt.Fprintln(c.errOut)

	tw := tabwriter.NewWriter(c.errOut, 0, 4, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(tw, "  %s %s\t%s\n", cmd.name, cmd.args, cmd.help)
	}

	_ = tw.Flush()
}

// statusRenderer prints the info tooltip whenever it opens or its message changes.
func (c *CLI) statusRenderer() appsvc.Listener {
	var (
		mu     sync.Mutex
		shown  bool
		status domain.StatusMessage
	)

	return func(s appsvc.State) {
		mu.Lock()
		defer mu.Unlock()

		if !s.Popups.InfoTooltip {
			shown = false

			return
		}

		if shown && s.Status == status {
			return
		}

		shown, status = true, s.Status
		fmt.Fprintf(c.errOut, "[%s] %s\n", s.Status.Icon, s.Status.Text)
	}
}

func (c *CLI) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)

	return fs
}

func (c *CLI) credentials(name string, args []string) (email, password string, err error) {
	fs := c.flags(name)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")

	if err := fs.Parse(args); err != nil {
		return "", "", errUsage
	}

	return email, password, nil
}

func (c *CLI) signup(ctx context.Context, args []string) error {
	email, password, err := c.credentials("signup", args)
	if err != nil {
		return err
	}

	c.ctrl.Navigate(appsvc.RouteSignUp)

	return c.ctrl.Register(ctx, password, email) //nolint:wrapcheck
}

func (c *CLI) signin(ctx context.Context, args []string) error {
	email, password, err := c.credentials("signin", args)
	if err != nil {
		return err
	}

	err = c.ctrl.Login(ctx, password, email)

	state := c.ctrl.State()

	switch {
	case err == nil:
		fmt.Fprintf(c.out, "signed in as %s (%d cards in feed)\n", state.Email, len(state.Cards))
	case errors.Is(err, appsvc.ErrInitialLoad) && state.LoggedIn:
		fmt.Fprintf(c.out, "signed in as %s (feed not loaded)\n", state.Email)
	default:
		return err //nolint:wrapcheck
	}

	return nil
}

func (c *CLI) signout(ctx context.Context, _ []string) error {
	if err := c.ctrl.SignOut(ctx); err != nil {
		return err //nolint:wrapcheck
	}

	fmt.Fprintln(c.out, "signed out")

	return nil
}

func (c *CLI) whoami(_ context.Context, _ []string) error {
	state := c.ctrl.State()
	user := state.CurrentUser

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id\t%s\n", user.ID)
	fmt.Fprintf(tw, "email\t%s\n", state.Email)
	fmt.Fprintf(tw, "name\t%s\n", user.Name)
	fmt.Fprintf(tw, "about\t%s\n", user.About)
	fmt.Fprintf(tw, "avatar\t%s\n", user.Avatar)

	return tw.Flush() //nolint:wrapcheck
}

func (c *CLI) cards(_ context.Context, _ []string) error {
	state := c.ctrl.State()
	me := state.CurrentUser.ID

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLIKES\tOWNER\tLINK")

	for _, card := range state.Cards {
		likes := fmt.Sprint(len(card.Likes))
		if card.IsLikedBy(me) {
			likes += "*"
		}

		owner := card.Owner.String()
		if card.IsOwnedBy(me) {
			owner = "you"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", card.ID, card.Name, likes, owner, card.Link)
	}

	return tw.Flush() //nolint:wrapcheck
}

func (c *CLI) add(ctx context.Context, args []string) error {
	var place domain.NewCard

	fs := c.flags("add")
	fs.StringVar(&place.Name, "name", "", "card title")
	fs.StringVar(&place.Link, "link", "", "image URL")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c.ctrl.OpenAddPlace()

	if err := c.ctrl.AddPlace(ctx, place); err != nil {
		return err //nolint:wrapcheck
	}

	fmt.Fprintf(c.out, "added %s\n", c.ctrl.State().Cards[0].ID)

	return nil
}

// feedCard resolves the single CARD_ID argument against the loaded feed.
func (c *CLI) feedCard(fs *flag.FlagSet, args []string) (domain.Card, error) {
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return domain.Card{}, errUsage
	}

	card, ok := c.ctrl.State().Card(domain.CardID(fs.Arg(0)))
	if !ok {
		return domain.Card{}, fmt.Errorf("%w: %s", errNoSuchCard, fs.Arg(0))
	}

	return card, nil
}

func (c *CLI) like(ctx context.Context, args []string) error {
	card, err := c.feedCard(c.flags("like"), args)
	if err != nil {
		return err
	}

	if err := c.ctrl.CardLike(ctx, card); err != nil {
		return err //nolint:wrapcheck
	}

	state := c.ctrl.State()
	updated, _ := state.Card(card.ID)

	verb := "unliked"
	if updated.IsLikedBy(state.CurrentUser.ID) {
		verb = "liked"
	}

	fmt.Fprintf(c.out, "%s %s (%d likes)\n", verb, updated.ID, len(updated.Likes))

	return nil
}

func (c *CLI) remove(ctx context.Context, args []string) error {
	card, err := c.feedCard(c.flags("delete"), args)
	if err != nil {
		return err
	}

	if err := c.ctrl.CardDelete(ctx, card); err != nil {
		return err //nolint:wrapcheck
	}

	fmt.Fprintf(c.out, "deleted %s\n", card.ID)

	return nil
}

func (c *CLI) open(ctx context.Context, args []string) error {
	var (
		width int
		path  string
	)

	fs := c.flags("open")
	fs.IntVar(&width, "width", 320, "preview width in pixels")
	fs.StringVar(&path, "o", "", "output file, defaults to CARD_ID.png")

	card, err := c.feedCard(fs, args)
	if err != nil {
		return err
	}

	c.ctrl.OpenCard(card)
	defer c.ctrl.CloseAll()

	preview, err := c.images.Preview(ctx, card.Link, width)
	if err != nil {
		return fmt.Errorf("preview %s: %w", card.ID, err)
	}

	if path == "" {
		path = card.ID.String() + ".png"
	}

	if err := os.WriteFile(path, preview, 0o600); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	fmt.Fprintf(c.out, "%s: %q by %s, %d likes, saved to %s\n",
		card.ID, card.Name, card.Owner, len(card.Likes), path)

	return nil
}

func (c *CLI) profile(ctx context.Context, args []string) error {
	current := c.ctrl.State().CurrentUser
	info := domain.UserInfo{Name: current.Name, About: current.About}

	fs := c.flags("profile")
	fs.StringVar(&info.Name, "name", info.Name, "display name")
	fs.StringVar(&info.About, "about", info.About, "short description")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c.ctrl.OpenEditProfile()

	if err := c.ctrl.UpdateUser(ctx, info); err != nil {
		return err //nolint:wrapcheck
	}

	return c.whoami(ctx, nil)
}

func (c *CLI) avatar(ctx context.Context, args []string) error {
	var avatar domain.UserAvatar

	fs := c.flags("avatar")
	fs.StringVar(&avatar.Avatar, "link", "", "image URL")

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	c.ctrl.OpenEditAvatar()

	if err := c.ctrl.UpdateAvatar(ctx, avatar); err != nil {
		return err //nolint:wrapcheck
	}

	return c.whoami(ctx, nil)
}

func (c *CLI) env(_ context.Context, _ []string) error {
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tDEFAULT\tSET")

	for _, v := range c.cfg.Vars() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, v.Default, strconv.FormatBool(v.Set))
	}

	return tw.Flush() //nolint:wrapcheck
}
