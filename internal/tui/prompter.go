package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/internal/domain"
)

// FormPrompter asks through huh forms.
type FormPrompter struct{}

func (FormPrompter) Action(ctx context.Context, status string) (Action, error) {
	var action Action
	err := run(ctx, huh.NewGroup(
		huh.NewSelect[Action]().
			Title("What next?").
			Description(status).
			Options(
				huh.NewOption("Pick a number", ActionNumber),
				huh.NewOption("Pick a category", ActionCategory),
				huh.NewOption("Place bet and spin", ActionBet),
				huh.NewOption("Deposit", ActionDeposit),
				huh.NewOption("Withdraw", ActionWithdraw),
				huh.NewOption("Refresh balance", ActionRefresh),
				huh.NewOption("Switch wallet", ActionWallet),
				huh.NewOption("Bet history", ActionHistory),
				huh.NewOption("Quit", ActionQuit),
			).
			Value(&action),
	))
	return action, err
}

func (FormPrompter) Number(ctx context.Context) (int, error) {
	var raw string
	err := run(ctx, huh.NewGroup(
		huh.NewInput().
			Title("Number").
			Description(fmt.Sprintf("0-%d, picking the selected number again clears it", domain.MaxNumber)).
			Value(&raw).
			Validate(validateNumber),
	))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(raw))
}

func (FormPrompter) Category(ctx context.Context) (domain.Category, error) {
	options := make([]huh.Option[domain.Category], 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		options = append(options, huh.NewOption(c.Title(), c))
	}

	var category domain.Category
	err := run(ctx, huh.NewGroup(
		huh.NewSelect[domain.Category]().
			Title("Category").
			Options(options...).
			Value(&category),
	))
	return category, err
}

func (FormPrompter) Amount(ctx context.Context, title string) (string, error) {
	var raw string
	err := run(ctx, huh.NewGroup(
		huh.NewInput().
			Title(title).
			Value(&raw).
			Validate(validateAmount),
	))
	return strings.TrimSpace(raw), err
}

func run(ctx context.Context, group *huh.Group) error {
	err := huh.NewForm(group).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

func validateNumber(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n < 0 || n > domain.MaxNumber {
		return fmt.Errorf("must be between 0 and %d", domain.MaxNumber)
	}
	return nil
}

func validateAmount(s string) error {
	if _, err := domain.ParseAmount(s); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return errors.New(ve.Reason)
		}
		return err
	}
	return nil
}
