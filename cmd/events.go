package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudwalk/lending-registry/internal/flags"
	"github.com/cloudwalk/lending-registry/internal/identity"
	"github.com/cloudwalk/lending-registry/internal/infrastructure/sqlite"
	"github.com/cloudwalk/lending-registry/internal/registry"
	"github.com/cloudwalk/lending-registry/internal/watcher"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the registry audit journal",
	Long: `Prints journaled registry events in sequence order. With --follow the
command keeps watching the database and prints new events as they are
appended.`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringSlice("type", nil, "filter by event type (repeatable)")
	eventsCmd.Flags().String("creator", "", "filter creation events by creator")
	eventsCmd.Flags().Int("limit", 0, "maximum number of events to print")
	eventsCmd.Flags().Int64("after", 0, "only events after this sequence number")
	eventsCmd.Flags().BoolP("follow", "f", false, "keep watching for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	types, _ := cmd.Flags().GetStringSlice("type")
	creator, _ := cmd.Flags().GetString("creator")
	limit, _ := cmd.Flags().GetInt("limit")
	after, _ := cmd.Flags().GetInt64("after")
	follow, _ := cmd.Flags().GetBool("follow")

	r, err := openRuntime()
	if err != nil {
		return err
	}
	defer r.close()

	filter := sqlite.ListFilter{
		AfterSeq: after,
		Creator:  identity.Address(creator),
		Limit:    limit,
	}
	for _, t := range types {
		filter.Types = append(filter.Types, registry.EventType(t))
	}

	lastSeq, err := printEvents(r.journal, filter)
	if err != nil {
		return err
	}

	if !follow {
		return nil
	}
	if !r.features.Enabled(flags.FlagEventFollow) {
		return fmt.Errorf("event following is disabled (flags.event-follow)")
	}

	w, err := watcher.New(watcher.DefaultConfig(r.db.Path()))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	if err != nil {
		return err
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-onChange:
			next := filter
			next.AfterSeq = lastSeq
			next.Limit = 0
			seq, err := printEvents(r.journal, next)
			if err != nil {
				return err
			}
			if seq > lastSeq {
				lastSeq = seq
			}
		}
	}
}

// printEvents prints matching records and returns the last printed
// sequence number (or filter.AfterSeq when nothing matched).
func printEvents(journal *sqlite.JournalRepository, filter sqlite.ListFilter) (int64, error) {
	records, err := journal.List(filter)
	if err != nil {
		return 0, err
	}
	last := filter.AfterSeq
	for _, rec := range records {
		fmt.Printf("%6d  %s  %-22s %s\n",
			rec.Seq, rec.OccurredAt.Format("2006-01-02 15:04:05"), rec.Type, string(rec.Payload))
		last = rec.Seq
	}
	return last, nil
}
