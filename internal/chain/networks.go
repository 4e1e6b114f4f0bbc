package chain

import "fmt"

// Network is display metadata for a network id (net_version).
type Network struct {
	ID       string
	Name     string
	Currency string
	Explorer string
	Local    bool // development chain (Ganache, Hardhat, Anvil)
}

var knownNetworks = map[string]Network{
	"1":        {ID: "1", Name: "Ethereum", Currency: "ETH", Explorer: "https://etherscan.io"},
	"11155111": {ID: "11155111", Name: "Sepolia", Currency: "ETH", Explorer: "https://sepolia.etherscan.io"},
	"17000":    {ID: "17000", Name: "Holesky", Currency: "ETH", Explorer: "https://holesky.etherscan.io"},
	"8453":     {ID: "8453", Name: "Base", Currency: "ETH", Explorer: "https://basescan.org"},
	"84532":    {ID: "84532", Name: "Base Sepolia", Currency: "ETH", Explorer: "https://sepolia.basescan.org"},
	"137":      {ID: "137", Name: "Polygon", Currency: "POL", Explorer: "https://polygonscan.com"},
	"1337":     {ID: "1337", Name: "Ganache", Currency: "ETH", Local: true},
	"5777":     {ID: "5777", Name: "Ganache", Currency: "ETH", Local: true},
	"31337":    {ID: "31337", Name: "Hardhat", Currency: "ETH", Local: true},
}

// LookupNetwork returns metadata for a network id. Unknown ids get a generic
// entry so callers can always render something.
func LookupNetwork(id string) Network {
	if n, ok := knownNetworks[id]; ok {
		return n
	}
	return Network{ID: id, Name: fmt.Sprintf("Network %s", id), Currency: "ETH"}
}

// String renders "Ganache (5777)".
func (n Network) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.ID)
}

// TxURL returns the explorer link for a transaction hash, or "" when the
// network has no explorer.
func (n Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}
