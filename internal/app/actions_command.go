package app

import (
	"strings"

	clierr "github.com/ggonzalez94/loop-cli/internal/errors"
	"github.com/ggonzalez94/loop-cli/internal/execution"
	"github.com/spf13/cobra"
)

func (s *runtimeState) newActionsCommand() *cobra.Command {
	root := &cobra.Command{Use: "actions", Short: "Inspect planned loop actions"}

	var filter execution.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List planned actions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			if err := s.ensureActionStore(); err != nil {
				return err
			}
			actions, err := s.actionStore.List(ctx, filter)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list actions", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), actions, nil)
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "Filter by action status (planned|unchecked)")
	list.Flags().StringVar(&filter.Mode, "mode", "", "Filter by loop mode (swap|single|native)")
	list.Flags().StringVar(&filter.From, "from-address", "", "Filter by owner address")
	list.Flags().IntVar(&filter.Limit, "limit", 20, "Maximum actions to return")

	var actionID string
	status := &cobra.Command{
		Use:   "status",
		Short: "Show one planned action",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := s.commandContext()
			defer cancel()
			if strings.TrimSpace(actionID) == "" {
				return clierr.New(clierr.CodeUsage, "--action-id is required")
			}
			if err := s.ensureActionStore(); err != nil {
				return err
			}
			action, err := s.actionStore.Get(ctx, strings.TrimSpace(actionID))
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), action, nil)
		},
	}
	status.Flags().StringVar(&actionID, "action-id", "", "Action identifier returned by a plan command")

	root.AddCommand(list)
	root.AddCommand(status)
	return root
}
