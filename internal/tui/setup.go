package tui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/roulette/config"
	"github.com/vadiminshakov/roulette/internal/clients"
)

const (
	// GeneratedConfig is where the wizard writes its result.
	GeneratedConfig = "config.gen.yaml"

	addressSourceFile   = "file"
	addressSourceManual = "manual"
)

// setupAnswers holds everything the wizard asks for.
type setupAnswers struct {
	NodeURL       string
	ChainID       string
	AddressSource string
	ContractsFile string
	Ledger        string
	Game          string
	Wallet        string
	ExternalURL   string
	PrivateKey    string
	RelayPort     string
	StoreDSN      string
	RelayURL      string
}

func defaultAnswers() setupAnswers {
	return setupAnswers{
		NodeURL:       clients.DefaultNodeURL,
		ChainID:       "31337",
		AddressSource: addressSourceFile,
		ContractsFile: "contracts-config.js",
		Wallet:        config.WalletDev,
		ExternalURL:   "http://127.0.0.1:8550",
		RelayPort:     "3000",
		StoreDSN:      "wal://./wal/bets",
		RelayURL:      "http://localhost:3000",
	}
}

// RunSetup launches the terminal configuration wizard and writes the result to path.
func RunSetup(ctx context.Context, out io.Writer, path string) error {
	a := defaultAnswers()
	header := func(step string) {
		clearScreen(out)
		fmt.Fprintln(out, headerStyle.Render("ROULETTE CONFIG WIZARD"))
		fmt.Fprintln(out, stepStyle.Render(step))
	}

	header("STEP 1: NODE")
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node RPC URL").
				Description("JSON-RPC endpoint of the chain (hardhat: http://127.0.0.1:8545)").
				Value(&a.NodeURL).
				Validate(notEmpty("node url")),
			huh.NewInput().
				Title("Chain ID").
				Value(&a.ChainID).
				Validate(positiveInt),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	header("STEP 2: CONTRACTS")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where are the contract addresses?").
				Options(
					huh.NewOption("Deploy script output (contracts-config.js)", addressSourceFile),
					huh.NewOption("Enter them by hand", addressSourceManual),
				).
				Value(&a.AddressSource),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	if a.AddressSource == addressSourceFile {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Contracts file").
					Value(&a.ContractsFile).
					Validate(func(s string) error {
						_, err := config.ReadContractsFile(s)
						return err
					}),
			),
		).RunWithContext(ctx)
	} else {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Account manager (ledger) address").
					Value(&a.Ledger).
					Validate(hexAddress),
				huh.NewInput().
					Title("Roulette (game) address").
					Value(&a.Game).
					Validate(hexAddress),
			),
		).RunWithContext(ctx)
	}
	if err != nil {
		return err
	}

	header("STEP 3: WALLET")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which wallet should bets use?").
				Options(
					huh.NewOption("Development account (local key)", config.WalletDev),
					huh.NewOption("External signer (clef)", config.WalletInjected),
				).
				Value(&a.Wallet),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	if a.Wallet == config.WalletInjected {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("External signer URL").
					Value(&a.ExternalURL).
					Validate(notEmpty("signer url")),
			),
		).RunWithContext(ctx)
	} else {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Private key").
					Description("Leave empty to use the first hardhat account").
					Value(&a.PrivateKey).
					EchoMode(huh.EchoModePassword),
			),
		).RunWithContext(ctx)
	}
	if err != nil {
		return err
	}

	header("STEP 4: BET HISTORY")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Relay port").
				Value(&a.RelayPort).
				Validate(port),
			huh.NewInput().
				Title("Store").
				Description("wal://dir, sqlite://file, postgres://... or mongodb://...").
				Value(&a.StoreDSN).
				Validate(notEmpty("store")),
			huh.NewInput().
				Title("Relay URL used by the game").
				Value(&a.RelayURL).
				Validate(notEmpty("relay url")),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	header("FINAL CONFIRMATION")
	fmt.Fprintln(out, lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(a.summary()))

	var confirm bool
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := config.Save(path, a.configTmp()); err != nil {
		return err
	}

	fmt.Fprintln(out, lipgloss.NewStyle().Foreground(special).Render("\n✓ Configuration saved to "+path))
	return nil
}

func (a setupAnswers) summary() string {
	contracts := "file " + a.ContractsFile
	if a.AddressSource == addressSourceManual {
		contracts = fmt.Sprintf("ledger %s, game %s", a.Ledger, a.Game)
	}
	return fmt.Sprintf(
		"Node: %s (chain %s)\nContracts: %s\nWallet: %s\nRelay: :%s -> %s\nGame relay URL: %s",
		a.NodeURL, a.ChainID, contracts, a.Wallet, a.RelayPort, a.StoreDSN, a.RelayURL,
	)
}

func (a setupAnswers) configTmp() config.ConfigTmp {
	tmp := config.ConfigTmp{
		NodeURL: strings.TrimSpace(a.NodeURL),
		ChainID: strings.TrimSpace(a.ChainID),
		Relay: config.RelayTmp{
			Port:     strings.TrimSpace(a.RelayPort),
			StoreDSN: strings.TrimSpace(a.StoreDSN),
		},
		Client: config.ClientTmp{
			RelayURL: strings.TrimSpace(a.RelayURL),
			Wallet:   a.Wallet,
		},
	}

	if a.AddressSource == addressSourceManual {
		tmp.Contracts = config.ContractsTmp{Ledger: strings.TrimSpace(a.Ledger), Game: strings.TrimSpace(a.Game)}
	} else {
		tmp.ContractsFile = strings.TrimSpace(a.ContractsFile)
	}

	if a.Wallet == config.WalletInjected {
		tmp.Signer.ExternalURL = strings.TrimSpace(a.ExternalURL)
	} else {
		tmp.Signer.PrivateKey = strings.TrimSpace(a.PrivateKey)
	}

	return tmp
}

func notEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		return nil
	}
}

func positiveInt(s string) error {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return errors.New("must be a positive integer")
	}
	return nil
}

func port(s string) error {
	if _, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16); err != nil {
		return errors.New("must be a port number")
	}
	return nil
}

func hexAddress(s string) error {
	if !common.IsHexAddress(strings.TrimSpace(s)) {
		return errors.New("must be a 0x-prefixed hex address")
	}
	return nil
}
