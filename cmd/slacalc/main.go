// Command slacalc runs the working-calendar engine offline against a
// calendar JSON file.
//
//	slacalc deadline --calendar karachi.json --start 2025-01-03T16:30:00+05:00 --hours 2
//	slacalc between  --calendar karachi.json --from ... --to ...
//	slacalc resume   --calendar karachi.json --held-at ... --deadline ... --resume-at ...
//	slacalc status   --calendar karachi.json --deadline ... --now ...
//
// Leaves are passed as repeated --leave START/END flags (RFC3339 instants)
// and are treated as approved.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/workcal"
)

const appVersion = "0.1.0"

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// calcOptions are the flags every subcommand shares.
type calcOptions struct {
	calendarPath string
	leaves       []string
	budget       int
	now          func() time.Time
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &calcOptions{now: now}

	root := &cobra.Command{
		Use:           "slacalc",
		Short:         "Working-calendar SLA deadline calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = appVersion
	root.SetVersionTemplate("slacalc v{{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.calendarPath, "calendar", "", "Calendar JSON file (working_days, start_time, end_time, timezone)")
	root.PersistentFlags().StringArrayVar(&opts.leaves, "leave", nil, "Approved leave as START/END in RFC3339 (repeatable)")
	root.PersistentFlags().IntVar(&opts.budget, "budget", int(workcal.DefaultStepBudget), "Maximum calendar days a deadline walk may cover")

	root.AddCommand(
		newDeadlineCmd(opts),
		newBetweenCmd(opts),
		newResumeCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

/* ---------------- subcommands ---------------- */

func newDeadlineCmd(opts *calcOptions) *cobra.Command {
	var startStr, hoursStr string

	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Deadline for an SLA of --hours working hours from --start",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, leaves, err := opts.load()
			if err != nil {
				return err
			}
			start, err := opts.instant("start", startStr)
			if err != nil {
				return err
			}
			minutes, err := workcal.ParseHours(hoursStr)
			if err != nil {
				return fmt.Errorf("invalid --hours: %w", err)
			}

			deadline, err := opts.engine().Deadline(start, minutes, cal, leaves)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKV(out, "start", start.In(cal.Location()).Format(time.RFC3339))
			printKV(out, "sla", workcal.FormatMinutes(minutes))
			printKV(out, "deadline", deadline.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&startStr, "start", "", "Start instant in RFC3339 (default now)")
	cmd.Flags().StringVar(&hoursStr, "hours", "", "SLA length in decimal hours (e.g. 2, 1.5)")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newBetweenCmd(opts *calcOptions) *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "between",
		Short: "Working minutes between --from and --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, leaves, err := opts.load()
			if err != nil {
				return err
			}
			from, err := opts.instant("from", fromStr)
			if err != nil {
				return err
			}
			to, err := opts.instant("to", toStr)
			if err != nil {
				return err
			}

			minutes, err := opts.engine().WorkingMinutesInRange(from, to, cal, leaves)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKV(out, "minutes", fmt.Sprint(minutes))
			printKV(out, "working", workcal.FormatMinutes(minutes))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "Range start in RFC3339")
	cmd.Flags().StringVar(&toStr, "to", "", "Range end in RFC3339 (default now)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newResumeCmd(opts *calcOptions) *cobra.Command {
	var heldStr, deadlineStr, resumeStr string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Recalculate a deadline for an SLA held at --held-at and resumed at --resume-at",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, leaves, err := opts.load()
			if err != nil {
				return err
			}
			heldAt, err := opts.instant("held-at", heldStr)
			if err != nil {
				return err
			}
			original, err := opts.instant("deadline", deadlineStr)
			if err != nil {
				return err
			}
			resumeAt, err := opts.instant("resume-at", resumeStr)
			if err != nil {
				return err
			}

			res, err := opts.engine().Resume(workcal.ResumeInput{
				HeldAt:           heldAt,
				OriginalDeadline: original,
				ResumeAt:         resumeAt,
				Calendar:         cal,
				LeavesAtHold:     leaves,
				LeavesAtResume:   leaves,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKV(out, "remaining", workcal.FormatMinutes(res.RemainingMinutes))
			if res.Breached {
				printKV(out, "breached", "true")
			}
			printKV(out, "deadline", res.Deadline.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&heldStr, "held-at", "", "Instant the SLA was put on hold (RFC3339)")
	cmd.Flags().StringVar(&deadlineStr, "deadline", "", "Deadline before the hold (RFC3339)")
	cmd.Flags().StringVar(&resumeStr, "resume-at", "", "Instant the SLA resumes (default now)")
	_ = cmd.MarkFlagRequired("held-at")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func newStatusCmd(opts *calcOptions) *cobra.Command {
	var deadlineStr, nowStr, perDayStr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Remaining or overdue working time for --deadline at --now",
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, leaves, err := opts.load()
			if err != nil {
				return err
			}
			deadline, err := opts.instant("deadline", deadlineStr)
			if err != nil {
				return err
			}
			now, err := opts.instant("now", nowStr)
			if err != nil {
				return err
			}
			perDay := cal.ShiftHours()
			if perDayStr != "" {
				if perDay, err = decimal.NewFromString(perDayStr); err != nil {
					return fmt.Errorf("invalid --hours-per-day %q: %w", perDayStr, err)
				}
			}

			st, err := opts.engine().Status(deadline, now, cal, leaves)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st.Overdue {
				printKV(out, "overdue", workcal.FormatMinutes(st.OverdueMinutes))
				printKV(out, "days", workcal.OverdueDays(st.OverdueMinutes, perDay).Round(2).String())
				return nil
			}
			printKV(out, "remaining", workcal.FormatMinutes(st.RemainingMinutes))
			return nil
		},
	}
	cmd.Flags().StringVar(&deadlineStr, "deadline", "", "SLA deadline (RFC3339)")
	cmd.Flags().StringVar(&nowStr, "now", "", "Reference instant (default now)")
	cmd.Flags().StringVar(&perDayStr, "hours-per-day", "", "Working hours per day for overdue days (default shift length)")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

/* ---------------- shared helpers ---------------- */

func (o *calcOptions) engine() workcal.Engine {
	return workcal.Engine{Budget: workcal.StepBudget(o.budget)}
}

// load reads the calendar file and parses the leave flags.
func (o *calcOptions) load() (*workcal.Calendar, []workcal.LeaveRecord, error) {
	if o.calendarPath == "" {
		return nil, nil, fmt.Errorf("--calendar is required")
	}
	data, err := os.ReadFile(o.calendarPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read calendar: %w", err)
	}
	cal, err := factory.NewCalendarFactory().ParseCalendar(string(data))
	if err != nil {
		return nil, nil, err
	}

	leaves := make([]workcal.LeaveRecord, 0, len(o.leaves))
	for _, raw := range o.leaves {
		l, err := parseLeave(raw)
		if err != nil {
			return nil, nil, err
		}
		leaves = append(leaves, l)
	}
	return cal, leaves, nil
}

// instant parses an RFC3339 flag value; empty means now.
func (o *calcOptions) instant(flag, v string) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return o.now(), nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want RFC3339 (2025-01-03T16:30:00+05:00)", flag, v)
	}
	return t, nil
}

func parseLeave(raw string) (workcal.LeaveRecord, error) {
	startStr, endStr, ok := strings.Cut(raw, "/")
	if !ok {
		return workcal.LeaveRecord{}, fmt.Errorf("invalid --leave %q: want START/END", raw)
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startStr))
	if err != nil {
		return workcal.LeaveRecord{}, fmt.Errorf("invalid --leave start %q: %w", startStr, err)
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(endStr))
	if err != nil {
		return workcal.LeaveRecord{}, fmt.Errorf("invalid --leave end %q: %w", endStr, err)
	}
	if !end.After(start) {
		return workcal.LeaveRecord{}, fmt.Errorf("invalid --leave %q: end must be after start", raw)
	}
	return workcal.LeaveRecord{Start: start, End: end}, nil
}

func printKV(w io.Writer, k, v string) {
	fmt.Fprintf(w, "%-10s %s\n", k+":", v)
}
