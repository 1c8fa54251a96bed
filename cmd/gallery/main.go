// gallery is the terminal client for the shared photo gallery. It reacts,
// comments and follows the activity feed through the same live-query store
// as the view server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/anonto42/nano-gallery/internal/identity"
	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/anonto42/nano-gallery/internal/models"
	"github.com/anonto42/nano-gallery/internal/photos"
	"github.com/anonto42/nano-gallery/internal/render"
	"github.com/anonto42/nano-gallery/internal/repositories"
	"github.com/anonto42/nano-gallery/internal/store"
	"github.com/anonto42/nano-gallery/internal/validators"
	"github.com/anonto42/nano-gallery/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printHelp(os.Stderr)
		return nil
	}

	cfg := config.Load()
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	logger := cfg.NewLogger(os.Stderr)

	if cfg.StoreDriver == config.DriverMemory {
		return errMemoryStore
	}
	st, err := config.InitStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	storage := identity.Storage(&identity.MemoryStorage{})
	path := cfg.IdentityPath
	if path == "" {
		path, _ = identity.DefaultPath()
	}
	if path != "" {
		storage = identity.NewFileStorage(path)
	}
	provider := identity.NewProvider(storage, identity.WithLogger(logger))

	var source photos.Source
	if cfg.UnsplashAccessKey != "" {
		source = photos.NewUnsplashClient(cfg.UnsplashAccessKey, photos.WithBaseURL(cfg.UnsplashBaseURL))
	}
	gallery := photos.NewGallery(source, photos.GalleryOptions{
		PerPage: cfg.PhotosPerPage,
		Order:   cfg.PhotosOrder,
	}, logger)

	a := newApp(st, provider, gallery, cfg.FeedLimit, logger, os.Stdout)
	return a.dispatch(ctx, args)
}

// app holds what the subcommands share
type app struct {
	identity     *identity.Provider
	gallery      *photos.Gallery
	comments     repositories.CommentRepository
	feed         repositories.FeedRepository
	interactions *interactions.Service
	out          io.Writer
}

func newApp(st store.Store, provider *identity.Provider, gallery *photos.Gallery, feedLimit int, logger *slog.Logger, out io.Writer) *app {
	v := validators.NewValidator()
	reactionRepo := repositories.NewLiveReactionRepository(st, v, logger)
	commentRepo := repositories.NewLiveCommentRepository(st, v, logger)
	return &app{
		identity:     provider,
		gallery:      gallery,
		comments:     commentRepo,
		feed:         repositories.NewLiveFeedRepository(st, v, feedLimit, logger),
		interactions: interactions.NewService(st, reactionRepo, commentRepo, provider, logger),
		out:          out,
	}
}

var errUsage = errors.New("usage")

// errMemoryStore rejects the in-process store: nothing written by one
// invocation would be visible to the next.
var errMemoryStore = errors.New("STORE_DRIVER=memory is not shared between processes; use firestore, mongo or postgres")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	name, rest := args[0], args[1:]
	switch name {
	case "identity":
		return a.cmdIdentity(rest)
	case "photos":
		return a.cmdPhotos(ctx, rest)
	case "react":
		return a.cmdReact(ctx, rest)
	case "reactions":
		return a.cmdReactions(ctx, rest)
	case "comment":
		return a.cmdComment(ctx, rest)
	case "uncomment":
		return a.cmdUncomment(ctx, rest)
	case "comments":
		return a.cmdComments(ctx, rest)
	case "feed":
		return a.cmdFeed(ctx, rest)
	}
	return usage("unknown command %q (run 'gallery help')", name)
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, usage("%s: %v", fs.Name(), err)
	}
	if positional >= 0 && fs.NArg() != positional {
		return nil, usage("%s takes %d argument(s), got %d", fs.Name(), positional, fs.NArg())
	}
	return fs.Args(), nil
}

func (a *app) cmdIdentity(args []string) error {
	fs := newFlagSet("identity")
	reset := fs.Bool("reset", false, "generate a new identity")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	var id models.Identity
	if *reset {
		id = a.identity.Reset()
	} else {
		id = a.identity.GetOrCreate()
	}
	fmt.Fprintln(a.out, render.Identity(id))
	return nil
}

func (a *app) cmdPhotos(ctx context.Context, args []string) error {
	fs := newFlagSet("photos")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 0, "photos per page (default from PHOTOS_PER_PAGE)")
	query := fs.StringP("query", "q", "", "search instead of listing")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *page < 1 {
		return usage("--page must be at least 1")
	}

	fmt.Fprintln(a.out, render.PhotoPage(a.gallery.Page(ctx, *query, *page, *perPage)))
	return nil
}

func (a *app) cmdReact(ctx context.Context, args []string) error {
	rest, err := parse(newFlagSet("react"), args, 2)
	if err != nil {
		return err
	}
	imageID, emoji := rest[0], rest[1]

	result, err := a.interactions.AddReaction(ctx, imageID, emoji)
	if err != nil {
		return err
	}
	if result.Added {
		fmt.Fprintf(a.out, "reacted %s on %s\n", emoji, imageID)
	} else {
		fmt.Fprintf(a.out, "removed %s from %s\n", emoji, imageID)
	}

	summary, err := a.interactions.ReactionSummary(ctx, imageID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Summary(summary))
	return nil
}

func (a *app) cmdReactions(ctx context.Context, args []string) error {
	fs := newFlagSet("reactions")
	follow := fs.BoolP("follow", "f", false, "keep printing as reactions change")
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	imageID := rest[0]

	if !*follow {
		summary, err := a.interactions.ReactionSummary(ctx, imageID)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Summary(summary))
		return nil
	}

	return followUntilDone(ctx, func(ctx context.Context, failed func(error)) (store.Unsubscribe, error) {
		return a.interactions.WatchReactions(ctx, imageID, func(summary models.ReactionSummary, err error) {
			if err != nil {
				failed(err)
				return
			}
			fmt.Fprintln(a.out, render.Summary(summary))
		})
	})
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	rest, err := parse(newFlagSet("comment"), args, -1)
	if err != nil {
		return err
	}
	if len(rest) < 2 {
		return usage("comment takes an image id and the text")
	}

	comment, err := a.interactions.AddComment(ctx, rest[0], strings.Join(rest[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Comment(*comment))
	return nil
}

func (a *app) cmdUncomment(ctx context.Context, args []string) error {
	rest, err := parse(newFlagSet("uncomment"), args, 1)
	if err != nil {
		return err
	}
	if err := a.interactions.DeleteComment(ctx, rest[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted comment %s\n", rest[0])
	return nil
}

func (a *app) cmdComments(ctx context.Context, args []string) error {
	rest, err := parse(newFlagSet("comments"), args, 1)
	if err != nil {
		return err
	}
	comments, err := a.comments.GetCommentsByImageID(ctx, rest[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, render.Comments(comments))
	return nil
}

func (a *app) cmdFeed(ctx context.Context, args []string) error {
	fs := newFlagSet("feed")
	follow := fs.BoolP("follow", "f", false, "keep printing as the feed changes")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	if !*follow {
		events, err := a.feed.GetRecentFeedEvents(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, render.Feed(events))
		return nil
	}

	return followUntilDone(ctx, func(ctx context.Context, failed func(error)) (store.Unsubscribe, error) {
		return a.feed.SubscribeFeed(ctx, func(events []models.FeedEvent, err error) {
			if err != nil {
				failed(err)
				return
			}
			fmt.Fprintln(a.out, render.Feed(events))
			fmt.Fprintln(a.out)
		})
	})
}

// followUntilDone keeps a subscription open until ctx ends or the store
// reports an error.
func followUntilDone(ctx context.Context, subscribe func(context.Context, func(error)) (store.Unsubscribe, error)) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	unsubscribe, err := subscribe(ctx, func(err error) { cancel(err) })
	if err != nil {
		return err
	}
	defer unsubscribe()

	<-ctx.Done()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `gallery - react to and comment on the shared photo gallery.

Usage:
  gallery <command> [flags] [arguments]

Commands:
  identity [--reset]               show (or regenerate) your identity
  photos [--page N] [--query Q]    list a page of photos
  react IMAGE EMOJI                toggle a reaction (🔥 💖 ✨ 🦄)
  reactions IMAGE [--follow]       show reaction counts for an image
  comment IMAGE TEXT...            comment on an image
  uncomment COMMENT_ID             delete one of your comments
  comments IMAGE                   list an image's comments
  feed [--follow]                  show the recent activity feed

The store is selected with STORE_DRIVER (memory, firestore, mongo,
postgres); see .env.example.
`)
}
