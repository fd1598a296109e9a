// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/danielhkuo/bitvote/gateway"
	"github.com/danielhkuo/bitvote/ledger"
	"github.com/danielhkuo/bitvote/ledger/ledgerdb"
	"github.com/danielhkuo/bitvote/logging"
	"github.com/danielhkuo/bitvote/models"
)

// ctl holds the ledger opened for one invocation.
type ctl struct {
	db  ledger.Database
	gw  *gateway.Gateway
	now func() time.Time
}

func newApp() *cli.App {
	s := &ctl{now: time.Now}

	return &cli.App{
		Name:  "bitvotectl",
		Usage: "run bitvote transactions directly against a local ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-type",
				Aliases: []string{"t"},
				Value:   ledger.TypePebble,
				Usage:   "ledger backend (pebble, sqlite or postgres)",
				EnvVars: []string{"DATABASE_TYPE"},
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Pebble directory or SQL DSN",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "as",
				Value:   "admin",
				Usage:   "participant id to submit transactions as",
				EnvVars: []string{"BITVOTE_AS"},
			},
			&cli.StringFlag{
				Name:    "admin",
				Value:   "admin",
				Usage:   "participant id treated as the bootstrap admin",
				EnvVars: []string{"ADMIN_ID"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Before: s.open,
		After:  s.close,
		Commands: []*cli.Command{
			{
				Name:  "participant",
				Usage: "register and look up participants",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "register a participant (admin only)",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "role", Value: string(models.RoleVoter), Usage: "Voter, Organizer or Admin"},
						},
						Action: s.participantAdd,
					},
					{
						Name:      "show",
						Usage:     "show a participant",
						ArgsUsage: "ID",
						Action:    s.participantShow,
					},
				},
			},
			{
				Name:  "poll",
				Usage: "create and look up polls",
				Subcommands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a poll (organizer only)",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{Name: "option", Aliases: []string{"o"}, Required: true, Usage: "option label, repeat for each option"},
							&cli.StringFlag{Name: "open", Required: true, Usage: "RFC 3339 time, YYYY-MM-DD or Unix milliseconds"},
							&cli.StringFlag{Name: "closed", Required: true, Usage: "RFC 3339 time, YYYY-MM-DD or Unix milliseconds"},
						},
						Action: s.pollCreate,
					},
					{
						Name:   "list",
						Usage:  "list all polls",
						Action: s.pollList,
					},
					{
						Name:      "show",
						Usage:     "show a poll",
						ArgsUsage: "POLL_ID",
						Action:    s.pollShow,
					},
				},
			},
			{
				Name:      "vote",
				Usage:     "cast a vote (voter only)",
				ArgsUsage: "POLL_ID SELECTION",
				Action:    s.vote,
			},
			{
				Name:      "results",
				Usage:     "tally a poll (organizer only)",
				ArgsUsage: "POLL_ID",
				Action:    s.results,
			},
		},
	}
}

func (s *ctl) open(c *cli.Context) error {
	level, err := logging.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}

	db, err := ledgerdb.Open(c.String("db-type"), c.String("db"))
	if err != nil {
		return fmt.Errorf("cannot open ledger: %w", err)
	}

	gw, err := gateway.New(db, gateway.Options{
		AdminID: c.String("admin"),
		Logger:  logging.New(c.App.ErrWriter, level),
		Now:     s.now,
	})
	if err != nil {
		db.Close()
		return err
	}

	s.db, s.gw = db, gw
	return nil
}

func (s *ctl) close(c *cli.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *ctl) participantAdd(c *cli.Context) error {
	p, err := s.gw.RegisterParticipant(c.Context, c.String("as"), c.String("id"), c.String("name"), c.String("role"))
	if err != nil {
		return err
	}
	return s.print(c, p, func(w io.Writer) {
		fmt.Fprintf(w, "registered %s (%s) as %s\n", p.ID, p.Name, p.Role)
	})
}

func (s *ctl) participantShow(c *cli.Context) error {
	id, err := arg(c, 0, "ID")
	if err != nil {
		return err
	}
	p, err := s.gw.Participant(c.Context, c.String("as"), id)
	if err != nil {
		return err
	}
	return s.print(c, p, func(w io.Writer) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Role)
	})
}

func (s *ctl) pollCreate(c *cli.Context) error {
	open, err := models.ParseTimestamp(c.String("open"))
	if err != nil {
		return fmt.Errorf("--open: %w", err)
	}
	closed, err := models.ParseTimestamp(c.String("closed"))
	if err != nil {
		return fmt.Errorf("--closed: %w", err)
	}

	poll, err := s.gw.CreatePoll(c.Context, c.String("as"), c.StringSlice("option"), open, closed)
	if err != nil {
		return err
	}
	return s.print(c, poll, func(w io.Writer) {
		fmt.Fprintf(w, "created poll %s with %d options\n", poll.ID, len(poll.Options))
	})
}

func (s *ctl) pollList(c *cli.Context) error {
	polls, err := s.gw.Polls(c.Context, c.String("as"))
	if err != nil {
		return err
	}
	now := s.now()
	return s.print(c, polls, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "POLL\tORGANIZER\tOPTIONS\tSTATUS")
		for i := range polls {
			p := &polls[i]
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.OrganizerID, len(p.Options), status(p, now))
		}
		tw.Flush()
	})
}

func (s *ctl) pollShow(c *cli.Context) error {
	id, err := arg(c, 0, "POLL_ID")
	if err != nil {
		return err
	}
	p, err := s.gw.Poll(c.Context, c.String("as"), id)
	if err != nil {
		return err
	}
	now := s.now()
	return s.print(c, p, func(w io.Writer) {
		fmt.Fprintf(w, "poll %s by %s, %s\n", p.ID, p.OrganizerID, status(p, now))
		for i, opt := range p.Options {
			fmt.Fprintf(w, "  [%d] %s\n", i, opt)
		}
	})
}

func (s *ctl) vote(c *cli.Context) error {
	pollID, err := arg(c, 0, "POLL_ID")
	if err != nil {
		return err
	}
	raw, err := arg(c, 1, "SELECTION")
	if err != nil {
		return err
	}
	selection, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("SELECTION must be an option index: %w", err)
	}

	v, err := s.gw.CastVote(c.Context, c.String("as"), pollID, selection)
	if err != nil {
		return err
	}
	return s.print(c, v, func(w io.Writer) {
		fmt.Fprintf(w, "vote %s recorded for option %d\n", v.ID, v.Selection)
	})
}

func (s *ctl) results(c *cli.Context) error {
	pollID, err := arg(c, 0, "POLL_ID")
	if err != nil {
		return err
	}
	report, err := s.gw.Results(c.Context, c.String("as"), pollID)
	if err != nil {
		return err
	}
	poll, err := s.gw.Poll(c.Context, c.String("as"), pollID)
	if err != nil {
		return err
	}
	return s.print(c, report, func(w io.Writer) {
		writeReport(w, poll, report)
	})
}

// writeReport prints every option in poll order, including those without votes.
func writeReport(w io.Writer, poll *models.Poll, report *models.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, opt := range poll.Options {
		n := report.ResultSummary[opt].Count
		share := 0.0
		if report.TotalVotes > 0 {
			share = 100 * float64(n) / float64(report.TotalVotes)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", opt, humanize.Comma(int64(n)), humanize.FtoaWithDigits(share, 1))
	}
	tw.Flush()

	switch {
	case report.TotalVotes == 0:
		fmt.Fprintln(w, "no votes cast")
	case report.Tied:
		fmt.Fprintf(w, "%s votes, tied (first to lead: %s)\n", humanize.Comma(int64(report.TotalVotes)), report.Winner)
	default:
		fmt.Fprintf(w, "%s votes, winner: %s\n", humanize.Comma(int64(report.TotalVotes)), report.Winner)
	}
}

// status describes where now falls relative to the poll window.
func status(p *models.Poll, now time.Time) string {
	switch {
	case p.Contains(now):
		return "open, closes " + humanize.RelTime(p.Closed, now, "ago", "from now")
	case now.Before(p.Open):
		return "opens " + humanize.RelTime(p.Open, now, "ago", "from now")
	}
	return "closed " + humanize.RelTime(p.Closed, now, "ago", "from now")
}

func (s *ctl) print(c *cli.Context, v interface{}, text func(io.Writer)) error {
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(c.App.Writer)
	return nil
}

func arg(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return v, nil
}
