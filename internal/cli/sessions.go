package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ghostwriter/internal/model"
	"ghostwriter/internal/session"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List pipeline sessions in the workspace",
	Long: `List every session in the workspace, newest first, with its
status, current stage, and topic.

Example:
  ghostwriter sessions
  ghostwriter sessions --workspace ./my-sessions`,
	RunE: runSessions,
}

var sessionsWorkspace string

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.Flags().StringVar(&sessionsWorkspace, "workspace", "", "session workspace directory (default ./ghostwriter-sessions)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	root := sessionsWorkspace
	if root == "" {
		root = model.DefaultConfig().Workspace
	}

	store, err := session.NewStore(root)
	if err != nil {
		return err
	}
	sessions, err := store.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Printf("No sessions in %s\n", root)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tSTATUS\tSTAGE\tREVISIONS\tTOPIC")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Status, s.CurrentStage, s.RevisionCount, s.Topic)
	}
	return w.Flush()
}
