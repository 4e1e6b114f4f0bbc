package contract

// Faucet method names the handle calls.
const (
	MethodAddFunds = "addFunds"
	MethodWithdraw = "withdraw"
)

// faucet is the Faucet contract interface. withdraw(uint256) → 0x2e1a7d4d.
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "faucet",
		Name:        "Faucet",
		Description: "Payable addFunds() and withdraw(uint256).",
		ABI:         faucetABI,
	})
}

var faucetABI = []ABIEntry{
	{
		Name: MethodAddFunds, Type: "function",
		StateMutability: "payable",
	},
	{
		Name: MethodWithdraw, Type: "function",
		Inputs:          []ABIParam{{Name: "withdrawAmount", Type: "uint256"}},
		StateMutability: "nonpayable",
	},
	{Type: "receive", StateMutability: "payable"},
}
