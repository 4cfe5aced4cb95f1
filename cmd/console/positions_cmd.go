package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"positions-console/internal/model"
	"positions-console/internal/positions"
	"positions-console/internal/util"
)

func newPositionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "List, create, update and delete positions",
	}

	cmd.AddCommand(newPositionsListCmd(c))
	cmd.AddCommand(newPositionsCreateCmd(c))
	cmd.AddCommand(newPositionsUpdateCmd(c))
	cmd.AddCommand(newPositionsDeleteCmd(c))
	return cmd
}

// withPositions opens the core, runs the guard and hands over the
// controller. Nothing reaches the remote API without a stored token.
func (c *cli) withPositions(ctx context.Context, run func(ctrl *positions.Controller) error) error {
	core, err := c.core(ctx, nil)
	if err != nil {
		return err
	}
	defer core.Close()

	if decision := core.Guard.Enter(ctx); !decision.Allowed() {
		return withCode(exitUnauthorized, model.ErrNoToken)
	}

	if err := run(core.Positions); err != nil {
		return remoteError(err)
	}
	return nil
}

func newPositionsListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPositions(cmd.Context(), func(ctrl *positions.Controller) error {
				if err := ctrl.Refresh(cmd.Context()); err != nil {
					return err
				}
				return printPositions(c.out, ctrl.Snapshot().Positions)
			})
		},
	}
}

func newPositionsCreateCmd(c *cli) *cobra.Command {
	var code, name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withPositions(cmd.Context(), func(ctrl *positions.Controller) error {
				ctrl.SetField(util.CleanField(code), util.CleanField(name))
				if err := ctrl.Submit(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Position created.")
				return printPositions(c.out, ctrl.Snapshot().Positions)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "position code")
	cmd.Flags().StringVar(&name, "name", "", "position name")
	return cmd
}

func newPositionsUpdateCmd(c *cli) *cobra.Command {
	var code, name string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a position; omitted fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return c.withPositions(cmd.Context(), func(ctrl *positions.Controller) error {
				ctrl.BeginEdit(model.Position{PositionID: id})
				ctrl.SetField(util.CleanField(code), util.CleanField(name))
				if err := ctrl.Submit(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Position updated.")
				return printPositions(c.out, ctrl.Snapshot().Positions)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "new position code")
	cmd.Flags().StringVar(&name, "name", "", "new position name")
	return cmd
}

func newPositionsDeleteCmd(c *cli) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a position after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			confirm := positions.ConfirmFunc(func(_ context.Context, prompt string) bool {
				if yes {
					return true
				}
				return promptYes(c.in, c.errOut, prompt)
			})

			return c.withPositions(cmd.Context(), func(ctrl *positions.Controller) error {
				if err := ctrl.Remove(cmd.Context(), id, confirm); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Position deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, withCode(exitUsage, fmt.Errorf("invalid position id %q", raw))
	}
	return id, nil
}

func promptYes(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printPositions(out io.Writer, rows []model.Position) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No positions found.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME")
	for _, p := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.PositionID, p.PositionCode, p.PositionName)
	}
	return tw.Flush()
}
