package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/internal/scenario"
)

func simulateCmd() *cobra.Command {
	var (
		showHTML bool
		classes  bool
		check    bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a notification scenario against a manual clock",
		Long: `Run a scripted scenario and print the state of every notification
after each step.

The scenario defines styles, a capacity limit and a list of steps:
notify, end, advance, cancel and expect. Time only moves on advance,
so runs are deterministic.

Examples:
  hermes simulate scenarios/eviction.yaml
  hermes simulate scenarios/eviction.yaml --classes --html
  hermes simulate scenarios/eviction.yaml --check`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args[0], showHTML, classes, check)
		},
	}

	cmd.Flags().BoolVar(&showHTML, "html", false, "Print the final notification list as HTML")
	cmd.Flags().BoolVar(&classes, "classes", false, "Show each notification's classes")
	cmd.Flags().BoolVar(&check, "check", false, "Only validate the scenario file")

	return cmd
}

func runSimulate(path string, showHTML, classes, check bool) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if check {
		success("%s is valid (%d steps)", path, len(s.Steps))
		return nil
	}

	result, err := scenario.Run(s)
	if err != nil {
		return err
	}

	fmt.Printf("Scenario: %s\n", s.Name)
	if s.Description != "" {
		fmt.Printf("  %s\n", s.Description)
	}
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.Append([]string{"Step", "Time", "Action", "Queue", "Timers", "Notifications"})
	for _, row := range result.Rows {
		table.Append([]string{
			strconv.Itoa(row.Step),
			row.Elapsed.String(),
			row.Action,
			strconv.Itoa(row.Queue),
			strconv.Itoa(row.Pending),
			formatNotifications(row, classes),
		})
	}
	table.Render()

	if showHTML {
		fmt.Println()
		fmt.Println(result.HTML)
	}

	fmt.Println()
	if !result.Passed() {
		for _, f := range result.Failures {
			errorMsg("%s", f)
		}
		return errors.Newf(errors.CategoryScenario, "%d expectation(s) failed", len(result.Failures))
	}
	success("All steps passed")
	return nil
}

func formatNotifications(row scenario.Row, classes bool) string {
	if !classes {
		return row.Summary()
	}
	parts := make([]string, 0, len(row.Notifications))
	for _, n := range row.Notifications {
		parts = append(parts, fmt.Sprintf("%s=%s [%s]", n.Ref, n.State, strings.Join(n.Classes, " ")))
	}
	return strings.Join(parts, " ")
}
