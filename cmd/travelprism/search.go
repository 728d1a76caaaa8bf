package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/travelprism/internal/agent"
	"github.com/CaptShanks/travelprism/internal/history"
	"github.com/CaptShanks/travelprism/internal/task"
	"github.com/CaptShanks/travelprism/internal/tui"
)

// resortFlags holds the command-line form of a task.ResortQuery
type resortFlags struct {
	destination string
	checkIn     string
	checkOut    string
	guests      int
	prefer      []string
	limit       int
}

func (f *resortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.destination, "destination", "d", "", "where to look for resorts (required)")
	cmd.Flags().StringVar(&f.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.guests, "guests", 0, "number of guests")
	cmd.Flags().StringSliceVar(&f.prefer, "prefer", nil, "preferred features, e.g. --prefer \"a kids club\"")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "how many resorts to ask for (default 5)")
}

func (f *resortFlags) query() (task.ResortQuery, error) {
	checkIn, err := task.ParseDate(f.checkIn)
	if err != nil {
		return task.ResortQuery{}, err
	}
	checkOut, err := task.ParseDate(f.checkOut)
	if err != nil {
		return task.ResortQuery{}, err
	}
	return task.ResortQuery{
		Place:       f.destination,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      f.guests,
		Preferences: f.prefer,
		Limit:       f.limit,
	}, nil
}

// flightFlags holds the command-line form of a task.FlightQuery
type flightFlags struct {
	from         string
	to           string
	depart       string
	ret          string
	airlines     []string
	adults       int
	childAges    []int
	arriveBefore string
}

func (f *flightFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "departure airport code (required)")
	cmd.Flags().StringVar(&f.to, "to", "", "arrival airport code (required)")
	cmd.Flags().StringVar(&f.depart, "depart", "", "departure date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&f.ret, "return", "", "return date (YYYY-MM-DD); omit for one way")
	cmd.Flags().StringSliceVar(&f.airlines, "airline", nil, "airline to consider (repeatable)")
	cmd.Flags().IntVar(&f.adults, "adults", 1, "number of adults")
	cmd.Flags().IntSliceVar(&f.childAges, "child-age", nil, "age of a child traveller (repeatable)")
	cmd.Flags().StringVar(&f.arriveBefore, "arrive-before", "", "latest arrival time (HH:MM)")
}

func (f *flightFlags) query() (task.FlightQuery, error) {
	depart, err := task.ParseDate(f.depart)
	if err != nil {
		return task.FlightQuery{}, err
	}
	ret, err := task.ParseDate(f.ret)
	if err != nil {
		return task.FlightQuery{}, err
	}
	return task.FlightQuery{
		From:         f.from,
		To:           f.to,
		Depart:       depart,
		Return:       ret,
		Airlines:     f.airlines,
		Adults:       f.adults,
		ChildAges:    f.childAges,
		ArriveBefore: f.arriveBefore,
	}, nil
}

// agentArgs returns the arguments given after "--"
func agentArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("unexpected arguments %q: agent arguments go after --", args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, fmt.Errorf("unexpected arguments %q before --", args[:dash])
	}
	return args[dash:], nil
}

func newResortsCmd(a *app) *cobra.Command {
	var flags resortFlags
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "resorts --destination PLACE [flags] [-- agent-args]",
		Short: "Ask the agent for resorts and show them as a table",
		Example: `  travelprism resorts -d Maui --check-in 2025-06-28 --check-out 2025-07-03 --guests 4
  travelprism resorts -d "Punta Mita" -i -- --model gpt-4o`,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := agentArgs(cmd, args)
			if err != nil {
				return err
			}
			if err := opts.validate(); err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			answer, runErr := a.runSearch(cmd.Context(), q, extra)
			if answer != "" {
				if err := a.renderResorts(cmd.OutOrStdout(), answer, "Resorts in "+q.Destination(), opts); err != nil {
					return errors.Join(runErr, err)
				}
			}
			return runErr
		},
	}
	flags.register(cmd)
	opts.register(cmd)
	return cmd
}

func newFlightsCmd(a *app) *cobra.Command {
	var flags flightFlags

	cmd := &cobra.Command{
		Use:   "flights --from CODE --to CODE --depart DATE [flags] [-- agent-args]",
		Short: "Ask the agent for the cheapest matching flight",
		Example: `  travelprism flights --from PDX --to OGG --depart 2025-06-21 --return 2025-06-28 \
    --airline Alaska --airline Hawaiian --adults 2 --child-age 8 --child-age 10 --arrive-before 15:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := agentArgs(cmd, args)
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			answer, runErr := a.runSearch(cmd.Context(), q, extra)
			if answer != "" {
				tui.PrintAnswer(cmd.OutOrStdout(), "Flights to "+q.Destination(), answer, a.styled())
			}
			return runErr
		},
	}
	flags.register(cmd)
	return cmd
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Print the instructions a search would send to the agent",
	}

	var rf resortFlags
	resorts := &cobra.Command{
		Use:   "resorts",
		Short: "Print the resort search task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := rf.query()
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), q)
		},
	}
	rf.register(resorts)

	var ff flightFlags
	flights := &cobra.Command{
		Use:   "flights",
		Short: "Print the flight search task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := ff.query()
			if err != nil {
				return err
			}
			return printTask(cmd.OutOrStdout(), q)
		},
	}
	ff.register(flights)

	cmd.AddCommand(resorts, flights)
	return cmd
}

func printTask(w io.Writer, q task.Query) error {
	text, err := q.Task()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, text)
	return err
}

// runSearch runs the agent for q, records the run in history and returns the
// answer. A failed run may still return a partial answer.
func (a *app) runSearch(ctx context.Context, q task.Query, extra []string) (string, error) {
	taskText, err := q.Task()
	if err != nil {
		return "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &agent.Runner{
		Command: a.cfg.Agent.Command,
		Args:    a.cfg.Agent.Args,
		Timeout: a.cfg.Agent.Timeout,
		Stderr:  os.Stderr,
		Logger:  a.logger,
	}

	historyPath := a.startHistory(q, runner.Command, runner.CommandLine(extra), taskText)

	a.logger.Info("asking the agent", "search", q.Kind(), "destination", q.Destination())
	res, runErr := runner.Run(ctx, taskText, extra)

	status := history.StatusSuccess
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		status = history.StatusCancelled
	default:
		status = history.StatusFailed
	}
	a.finishHistory(historyPath, res.Answer, status, runErr)

	if runErr != nil {
		if res.Answer != "" {
			a.logger.Warn("agent did not finish cleanly, showing its partial answer", "err", runErr)
		}
		return res.Answer, runErr
	}
	a.logger.Info("agent finished", "duration", res.Duration.Round(time.Second))
	return res.Answer, nil
}

// startHistory records the search before the agent runs. Failures are only
// logged and yield an empty path.
func (a *app) startHistory(q task.Query, agentCmd string, args []string, taskText string) string {
	header := history.CreateHeader(q.Kind(), agentCmd, args, taskText, time.Now())
	path, err := a.store.Create(q.Kind(), q.Destination(), header)
	if err != nil {
		a.logger.Warn("failed to save history", "err", err)
		return ""
	}
	return path
}

// finishHistory appends the answer and result footer, then marks the file with status
func (a *app) finishHistory(path, answer, status string, runErr error) {
	if path == "" {
		return
	}
	if err := a.store.Append(path, answer+history.CreateResultFooter(status, runErr, time.Now())); err != nil {
		a.logger.Warn("failed to save history", "err", err)
	}
	if _, err := a.store.SetStatus(path, status); err != nil {
		a.logger.Warn("failed to record history status", "err", err)
	}
	if deleted, _ := a.store.Cleanup(); deleted > 0 {
		a.logger.Info("cleaned up old history files", "deleted", deleted)
	}
}
