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

	"github.com/lmittmann/tint"

	"github.com/cipherpuzzles/ccxc-website/pkg/api"
	"github.com/cipherpuzzles/ccxc-website/pkg/config"
	"github.com/cipherpuzzles/ccxc-website/pkg/errors"
	"github.com/cipherpuzzles/ccxc-website/pkg/fingerprint"
	"github.com/cipherpuzzles/ccxc-website/pkg/navigation"
	"github.com/cipherpuzzles/ccxc-website/pkg/notification"
	"github.com/cipherpuzzles/ccxc-website/pkg/request"
	"github.com/cipherpuzzles/ccxc-website/pkg/session"
)

type options struct {
	Email  string
	Pass   string
	Code   string
	Nonce  string
	Path   string
	Output string
}

func main() {
	// Parse command line flags
	command := flag.String("cmd", "whoami", "Command: fingerprint, userid, captcha, login, logout, whoami, settings, profile, scoreboard, announcements, article, invites, start")
	configFile := flag.String("config", "", "Optional yaml/toml/edn/env config file")
	var opts options
	flag.StringVar(&opts.Email, "email", "", "Account email (login)")
	flag.StringVar(&opts.Pass, "pass", "", "Account password (login)")
	flag.StringVar(&opts.Code, "code", "", "Captcha answer (login)")
	flag.StringVar(&opts.Nonce, "nonce", "", "Captcha nonce printed by -cmd captcha (login)")
	flag.StringVar(&opts.Path, "path", "", "Article path (article)")
	flag.StringVar(&opts.Output, "out", "captcha.png", "Where to write the captcha image (captcha)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "\nEnvironment:\n%s\n", config.Usage())
	}
	flag.Parse()

	var (
		cfg config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Log.SlogLevel(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	storage, err := session.NewFileStorage(cfg.Storage.DataDir)
	if err != nil {
		slog.Error("Failed opening session storage", "dir", cfg.Storage.DataDir, "error", err)
		os.Exit(1)
	}
	store := session.NewStore(storage, session.WithLogger(logger))

	notifier := notification.NewManager()
	if err := notifier.Register("console", &notification.ConsoleNotifier{W: os.Stderr}); err != nil {
		slog.Error("Failed registering notifier", "sink", "console", "error", err)
		os.Exit(1)
	}
	if err := notifier.Register("log", notification.NewLogNotifier(logger)); err != nil {
		slog.Error("Failed registering notifier", "sink", "log", "error", err)
		os.Exit(1)
	}
	history := &navigation.History{Logger: logger}

	probe := fingerprint.NewHostProbe(
		fingerprint.WithUserAgent(cfg.Device.UserAgent),
		fingerprint.WithScreen(cfg.Device.ScreenWidth, cfg.Device.ScreenHeight),
	)
	collector := fingerprint.NewCollector(probe, fingerprint.WithLogger(logger))

	userAgent := cfg.Device.UserAgent
	if userAgent == "" {
		userAgent = fingerprint.DefaultUserAgent()
	}
	client := request.NewClient(cfg.Backend.Root, store,
		request.WithTimeout(cfg.Backend.Timeout),
		request.WithNotifier(notifier),
		request.WithNavigator(history),
		request.WithUserAgent(userAgent),
		request.WithLogger(logger),
	)
	svc := api.NewService(client, store,
		api.WithUserIDFunc(collector.DeriveUserID),
		api.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Backend.Timeout)
	defer cancel()

	if err := run(ctx, *command, opts, svc, collector, os.Stdout); err != nil {
		slog.Error("Command failed", "cmd", *command, "error", err)
		if last, ok := history.Last(); ok {
			fmt.Fprintf(os.Stderr, "The site wants you at %s\n", last.String())
		}
		os.Exit(1)
	}
}

// run executes one command and writes its result to out
func run(ctx context.Context, command string, opts options, svc *api.Service, collector *fingerprint.Collector, out io.Writer) error {
	switch command {
	case "fingerprint":
		payload, err := collector.Collect()
		if err != nil {
			return err
		}
		return printJSON(out, payload)

	case "userid":
		fmt.Fprintln(out, collector.DeriveUserID())
		return nil

	case "captcha":
		captcha, err := svc.GetCaptcha(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.Output, captcha.Image, 0600); err != nil {
			return errors.Wrapf(err, errors.ErrCodeInternal, "failed to write captcha to %s", opts.Output)
		}
		fmt.Fprintf(out, "Captcha written to %s\nNonce: %s\n", opts.Output, captcha.Nonce)
		return nil

	case "login":
		if opts.Email == "" {
			return errors.InvalidInput("email", "login needs -email")
		}
		if opts.Pass == "" {
			return errors.InvalidInput("pass", "login needs -pass")
		}
		if _, err := svc.Login(ctx, api.LoginParams{Email: opts.Email, Pass: opts.Pass, Code: opts.Code, Nonce: opts.Nonce}); err != nil {
			return err
		}
		record := svc.Session()
		fmt.Fprintf(out, "Logged in as %s (uid %s)\n", record.Username, record.Uid)
		return nil

	case "logout":
		if err := svc.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out")
		return nil

	case "whoami":
		record := svc.Session()
		if !record.IsLive() {
			fmt.Fprintln(out, "Not logged in")
			return nil
		}
		return printJSON(out, struct {
			Uid      string `json:"uid"`
			Username string `json:"username"`
			Roleid   int    `json:"roleid"`
			Color    string `json:"color"`
		}{record.Uid, record.Username, record.Roleid, record.Color})

	case "settings":
		setting, err := svc.GetDefaultSetting(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, setting)

	case "start":
		prefix, err := svc.StartCompetition(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, prefix)
		return nil

	case "profile":
		return printResponse(out)(svc.GetProfileInfo(ctx))
	case "scoreboard":
		return printResponse(out)(svc.GetScoreboardInfo(ctx))
	case "announcements":
		return printResponse(out)(svc.GetAnnouncements(ctx))
	case "invites":
		return printResponse(out)(svc.GetMyInvites(ctx))
	case "article":
		if opts.Path == "" {
			return errors.InvalidInput("path", "article needs -path")
		}
		return printResponse(out)(svc.GetArticle(ctx, opts.Path))

	default:
		return errors.InvalidInput("cmd", fmt.Sprintf("unknown command %q", command))
	}
}

func printResponse(out io.Writer) func(*request.Response, error) error {
	return func(resp *request.Response, err error) error {
		if err != nil {
			return err
		}
		m, err := resp.Map()
		if err != nil {
			return err
		}
		return printJSON(out, m)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
