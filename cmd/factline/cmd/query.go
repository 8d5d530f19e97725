package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/registry"
	"github.com/factline/registry/pkg/temporal"
)

var whoheldCmd = &cobra.Command{
	Use:   "whoheld <position-id> <date>",
	Short: "Who held a position on a date",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := registry.ParseDate(args[1])
		if err != nil {
			return err
		}
		return withTemporal(cmd, func(a *app, svc *temporal.Service) error {
			positionID := registry.PositionID(args[0])
			if _, ok := a.reg.Position(positionID); !ok {
				return errors.NewNotFoundError("position", args[0])
			}
			holders := svc.Holders(positionID, on)
			if len(holders) == 0 {
				fmt.Printf("%s was vacant on %s\n", args[0], on)
				return nil
			}
			for _, id := range holders {
				fmt.Println(personLine(a.reg, id))
			}
			return nil
		})
	},
}

var currentCmd = &cobra.Command{
	Use:   "current <position-id>",
	Short: "Current holder of a position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTemporal(cmd, func(a *app, svc *temporal.Service) error {
			positionID := registry.PositionID(args[0])
			if _, ok := a.reg.Position(positionID); !ok {
				return errors.NewNotFoundError("position", args[0])
			}
			holder, held := svc.CurrentHolder(positionID)
			if !held {
				fmt.Printf("%s is vacant\n", args[0])
				return nil
			}
			fmt.Println(personLine(a.reg, holder))
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <position-id>",
	Short: "Full holding history of a position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTemporal(cmd, func(a *app, svc *temporal.Service) error {
			positionID := registry.PositionID(args[0])
			if _, ok := a.reg.Position(positionID); !ok {
				return errors.NewNotFoundError("position", args[0])
			}
			for h := range svc.History(positionID) {
				fmt.Printf("%s  %s\n", h.TermLabel(), personLine(a.reg, h.PersonID))
			}
			return nil
		})
	},
}

var vacanciesCmd = &cobra.Command{
	Use:   "vacancies",
	Short: "Positions with no current holder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withTemporal(cmd, func(a *app, svc *temporal.Service) error {
			for _, id := range svc.Vacancies() {
				pos, _ := a.reg.Position(id)
				fmt.Printf("%s  %s\n", id, pos.Title)
			}
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Registry record counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		stats := a.reg.Stats()
		if cfg.Output == "json" || cfg.Output == "yaml" {
			return emit(stats)
		}
		fmt.Printf("organizations: %d\npeople: %d\npositions: %d\nholdings: %d\n",
			stats.Organizations, stats.People, stats.Positions, stats.Holdings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoheldCmd, currentCmd, historyCmd, vacanciesCmd, statsCmd)
}

// withTemporal opens the registry and hands the command a temporal
// service over it.
func withTemporal(cmd *cobra.Command, fn func(*app, *temporal.Service) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a, temporal.New(a.reg))
}

func personLine(reg *registry.Registry, id registry.PersonID) string {
	if p, ok := reg.Person(id); ok {
		return fmt.Sprintf("%s (%s)", p.FullName(), id)
	}
	return string(id)
}
