package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// LedgerABI describes the AccountManager contract holding player balances.
const LedgerABI = `[
  {"type":"function","name":"activateAccount","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"accounts","stateMutability":"view",
   "inputs":[{"type":"address","name":""}],
   "outputs":[
     {"type":"uint256","name":"balance"},
     {"type":"uint256","name":"totalDeposit"},
     {"type":"uint256","name":"totalWithdraw"},
     {"type":"uint256","name":"lastUpdate"},
     {"type":"bool","name":"isActive"}]},
  {"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable",
   "inputs":[{"type":"uint256","name":"amount"}],"outputs":[]},
  {"type":"function","name":"getAccountInfo","stateMutability":"view",
   "inputs":[{"type":"address","name":"user"}],
   "outputs":[
     {"type":"uint256","name":"balance"},
     {"type":"uint256","name":"totalDeposit"},
     {"type":"uint256","name":"totalWithdraw"},
     {"type":"uint256","name":"lastUpdate"},
     {"type":"bool","name":"isActive"}]},
  {"type":"function","name":"transferToRoulette","stateMutability":"nonpayable",
   "inputs":[{"type":"uint256","name":"amount"}],"outputs":[]},
  {"type":"function","name":"handleInitialBet","stateMutability":"payable",
   "inputs":[{"type":"address","name":"player"},{"type":"uint256","name":"amount"}],"outputs":[]},
  {"type":"function","name":"subtractBalance","stateMutability":"nonpayable",
   "inputs":[{"type":"address","name":"player"},{"type":"uint256","name":"amount"}],"outputs":[]}
]`

// GameABI describes the Roulette contract.
const GameABI = `[
  {"type":"function","name":"placeBetAndSpin","stateMutability":"payable",
   "inputs":[{"type":"uint256[]","name":"choices"}],"outputs":[]},
  {"type":"function","name":"getbetCounter","stateMutability":"view",
   "inputs":[],"outputs":[{"type":"uint256","name":""}]},
  {"type":"function","name":"setAccountManager","stateMutability":"nonpayable",
   "inputs":[{"type":"address","name":"_accountManager"}],"outputs":[]},
  {"type":"event","name":"GameResult","anonymous":false,"inputs":[
     {"type":"uint256","name":"result","indexed":false},
     {"type":"uint256","name":"betAmount","indexed":false},
     {"type":"uint256","name":"winAmount","indexed":false},
     {"type":"bool","name":"isWin","indexed":false}]},
  {"type":"event","name":"BetPlaced","anonymous":false,"inputs":[
     {"type":"address","name":"player","indexed":true},
     {"type":"uint256","name":"amount","indexed":false},
     {"type":"uint256[]","name":"choices","indexed":false}]},
  {"type":"event","name":"SpinResult","anonymous":false,"inputs":[
     {"type":"uint256","name":"result","indexed":false}]},
  {"type":"event","name":"Debug","anonymous":false,"inputs":[
     {"type":"string","name":"message","indexed":false},
     {"type":"uint256","name":"value","indexed":false}]}
]`

const (
	eventGameResult = "GameResult"
	eventBetPlaced  = "BetPlaced"
	eventSpinResult = "SpinResult"
	eventDebug      = "Debug"
)

var (
	ledgerABI = mustParse(LedgerABI)
	gameABI   = mustParse(GameABI)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("malformed contract descriptor: " + err.Error())
	}
	return parsed
}

// LedgerDescriptor returns the parsed ledger ABI.
func LedgerDescriptor() abi.ABI { return ledgerABI }

// GameDescriptor returns the parsed game ABI.
func GameDescriptor() abi.ABI { return gameABI }
