package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/blocklist"
	"github.com/commentguard/commentguard/automod/store"

	cli "github.com/urfave/cli/v2"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "evaluate a single comment against the current options, without side effects",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "text",
			Required: true,
		},
		&cli.StringFlag{
			Name: "author",
		},
		&cli.StringFlag{
			Name: "mail",
		},
		&cli.StringFlag{
			Name: "ip",
		},
		&cli.BoolFlag{
			Name:  "admin",
			Usage: "evaluate as an administrator",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context
		svc, _, err := setup(cctx)
		if err != nil {
			return err
		}
		cfg, err := svc.options.Load(ctx)
		if err != nil {
			return err
		}
		cfg.AuditLog = false

		caller := automod.Caller{}
		if cctx.Bool("admin") {
			caller = automod.Caller{UserID: "cli", Group: automod.GroupAdministrator}
		}
		d := svc.engine.Evaluate(ctx, cfg, automod.Comment{
			Text:   cctx.String("text"),
			Author: cctx.String("author"),
			Mail:   cctx.String("mail"),
			IP:     cctx.String("ip"),
			Type:   automod.TypeComment,
		}, caller)
		return printJSON(map[string]any{
			"decision": d.Outcome,
			"reasons":  d.Reasons,
			"label":    d.Label,
		})
	},
}

var blacklistCmd = &cli.Command{
	Name:  "blacklist",
	Usage: "manage the IP and email blacklists",
	Subcommands: []*cli.Command{
		&cli.Command{
			Name:  "add",
			Usage: "add an IP and/or email, optionally deleting the offending comment",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name: "ip",
				},
				&cli.StringFlag{
					Name: "email",
				},
				&cli.UintFlag{
					Name:  "coid",
					Usage: "comment to delete, if the blacklistDeleteComment option is on",
				},
			},
			Action: func(cctx *cli.Context) error {
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				res, err := svc.blocklist.Block(cctx.Context, blocklist.BlockRequest{
					IP:        cctx.String("ip"),
					Email:     cctx.String("email"),
					CommentID: cctx.Uint("coid"),
				})
				if err != nil {
					return err
				}
				fmt.Println(res.Summary())
				return nil
			},
		},
	},
}

var logsCmd = &cli.Command{
	Name:  "logs",
	Usage: "inspect and prune blocked-comment audit logs",
	Subcommands: []*cli.Command{
		&cli.Command{
			Name:  "list",
			Usage: "list log files, newest first",
			Action: func(cctx *cli.Context) error {
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				files, err := svc.audit.ListFiles(cctx.Context)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Printf("%s\t%d records\t%d bytes\n", f.FileName, f.Count, f.Size)
				}
				return nil
			},
		},
		&cli.Command{
			Name:      "view",
			Usage:     "print one page of a log file, newest record first",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "page",
					Value: 1,
				},
			},
			Action: func(cctx *cli.Context) error {
				name := cctx.Args().First()
				if name == "" {
					return fmt.Errorf("need to provide log file name as an argument")
				}
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				page, err := svc.audit.View(cctx.Context, name, cctx.Int("page"))
				if err != nil {
					return err
				}
				return printJSON(page)
			},
		},
		&cli.Command{
			Name:      "delete",
			Usage:     "delete log files by name",
			ArgsUsage: "<file>...",
			Action: func(cctx *cli.Context) error {
				if cctx.Args().Len() == 0 {
					return fmt.Errorf("need to provide at least one log file name")
				}
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				deleted, failed := svc.audit.DeleteMany(cctx.Context, cctx.Args().Slice())
				fmt.Printf("deleted %d, failed %d\n", deleted, failed)
				return nil
			},
		},
		&cli.Command{
			Name:  "purge",
			Usage: "delete all log files, or only those dated before a day",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "before",
					Usage: "UTC day (YYYY-MM-DD); files dated earlier are deleted",
				},
			},
			Action: func(cctx *cli.Context) error {
				var before time.Time
				if s := cctx.String("before"); s != "" {
					t, err := time.Parse(time.DateOnly, s)
					if err != nil {
						return fmt.Errorf("invalid --before date: %w", err)
					}
					before = t
				}
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				deleted, failed, err := svc.audit.Purge(cctx.Context, before)
				if err != nil {
					return err
				}
				fmt.Printf("deleted %d, failed %d\n", deleted, failed)
				return nil
			},
		},
	},
}

var tokenCmd = &cli.Command{
	Name:  "token",
	Usage: "manage the cached classifier access token",
	Subcommands: []*cli.Command{
		&cli.Command{
			Name:  "reset",
			Usage: "drop the cached token, forcing a fresh exchange on next use",
			Action: func(cctx *cli.Context) error {
				ctx := cctx.Context
				svc, config, err := setup(cctx)
				if err != nil {
					return err
				}
				cfg, err := svc.options.Load(ctx)
				if err != nil {
					return err
				}
				if err := config.Tokens.Purge(ctx, cfg.Credentials().Key()); err != nil {
					return err
				}
				fmt.Println("classifier token purged")
				return nil
			},
		},
	},
}

var adminTokenCmd = &cli.Command{
	Name:  "admin-token",
	Usage: "mint a bearer token for the HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "subject",
			Usage: "user identifier carried in the token",
			Value: "admin",
		},
		&cli.StringFlag{
			Name:  "group",
			Value: automod.GroupAdministrator,
		},
		&cli.DurationFlag{
			Name:  "ttl",
			Value: 24 * time.Hour,
		},
	},
	Action: func(cctx *cli.Context) error {
		tok, err := mintToken([]byte(cctx.String("jwt-secret")), cctx.String("subject"), cctx.String("group"), cctx.Duration("ttl"))
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

var optionsCmd = &cli.Command{
	Name:  "options",
	Usage: "manage moderation options",
	Subcommands: []*cli.Command{
		&cli.Command{
			Name:  "list",
			Usage: "print current options, with secrets redacted",
			Action: func(cctx *cli.Context) error {
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				cfg, err := svc.options.Load(cctx.Context)
				if err != nil {
					return err
				}
				return printJSON(cfg.Redacted())
			},
		},
		&cli.Command{
			Name:      "import",
			Usage:     "load options from a JSON file of option names to values",
			ArgsUsage: "<file>",
			Action: func(cctx *cli.Context) error {
				path := cctx.Args().First()
				if path == "" {
					return fmt.Errorf("need to provide options file path as an argument")
				}
				opts, err := store.LoadOptionsFile(path)
				if err != nil {
					return err
				}
				svc, _, err := setup(cctx)
				if err != nil {
					return err
				}
				skipped, err := svc.options.Import(cctx.Context, opts)
				if err != nil {
					return err
				}
				for _, name := range skipped {
					fmt.Printf("skipped unknown option: %s\n", name)
				}
				fmt.Printf("imported %d options\n", len(opts)-len(skipped))
				return nil
			},
		},
	},
}
