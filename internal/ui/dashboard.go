package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3faucet/internal/faucet"
	"github.com/Mohsinsiddi/w3faucet/internal/provider"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// Controller is the part of the faucet controller the dashboard drives.
type Controller interface {
	State() faucet.State
	Subscribe(ch chan<- faucet.State) event.Subscription
	RequestAccounts(ctx context.Context) (common.Address, error)
	AddFunds(ctx context.Context) (common.Hash, error)
	Withdraw(ctx context.Context) (common.Hash, error)
	Reinitialize(ctx context.Context) error
}

// SignerSource returns the local signer to switch to next.
type SignerSource func() (provider.Signer, error)

// signerSwitcher is a provider whose active account can be replaced. It
// reports the change as accountsChanged.
type signerSwitcher interface {
	SwitchSigner(s provider.Signer)
}

// DashboardOption configures the dashboard.
type DashboardOption func(*dashboardModel)

// WithWalletSwitch enables the s key, which moves a locally signing
// provider to the signer next returns.
func WithWalletSwitch(next SignerSource) DashboardOption {
	return func(m *dashboardModel) {
		m.nextSigner = next
	}
}

type stateMsg faucet.State

type actionMsg struct {
	action string
	detail string
	err    error
}

type subClosedMsg struct{ err error }

// dashboardModel is the Bubble Tea model for the faucet dashboard.
type dashboardModel struct {
	ctx         context.Context
	ctrl        Controller
	updates     chan faucet.State
	sub         event.Subscription
	providerURL string
	nextSigner  SignerSource

	state    faucet.State
	busy     string
	notice   string
	err      string
	quitting bool
}

// NewDashboard creates a Bubble Tea program rendering the controller's
// state. The subscription ends when the program quits.
func NewDashboard(ctx context.Context, ctrl Controller, providerURL string, opts ...DashboardOption) *tea.Program {
	return tea.NewProgram(newDashboardModel(ctx, ctrl, providerURL, opts...))
}

func newDashboardModel(ctx context.Context, ctrl Controller, providerURL string, opts ...DashboardOption) dashboardModel {
	updates := make(chan faucet.State, 16)
	m := dashboardModel{
		ctx:         ctx,
		ctrl:        ctrl,
		updates:     updates,
		sub:         ctrl.Subscribe(updates),
		providerURL: providerURL,
		state:       ctrl.State(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	return m.waitForState()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.state = faucet.State(msg)
		return m, m.waitForState()

	case actionMsg:
		m.busy = ""
		if msg.err != nil {
			m.notice = ""
			m.err = fmt.Sprintf("%s failed: %s", msg.action, reason(msg.err))
		} else {
			m.err = ""
			m.notice = msg.detail
		}

	case subClosedMsg:
		if msg.err != nil {
			m.err = "state feed closed: " + msg.err.Error()
		}
	}
	return m, nil
}

func (m dashboardModel) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.sub.Unsubscribe()
		return m, tea.Quit
	}
	if m.busy != "" {
		return m, nil
	}

	switch k.String() {
	case "c":
		if !m.state.HasProvider() || m.state.Account != nil {
			return m, nil
		}
		m.busy = "Connecting"
		return m, m.run("connect", func(ctx context.Context) (string, error) {
			addr, err := m.ctrl.RequestAccounts(ctx)
			if err != nil {
				return "", err
			}
			return "Connected " + addr.Hex(), nil
		})

	case "d":
		if !m.state.Connected() {
			return m, nil
		}
		m.busy = "Donating 1 ETH"
		return m, m.run("donate", func(ctx context.Context) (string, error) {
			h, err := m.ctrl.AddFunds(ctx)
			return "Donation submitted " + TruncateAddr(h.Hex()), err
		})

	case "w":
		if !m.state.Connected() {
			return m, nil
		}
		m.busy = "Withdrawing 0.5 ETH"
		return m, m.run("withdraw", func(ctx context.Context) (string, error) {
			h, err := m.ctrl.Withdraw(ctx)
			return "Withdrawal submitted " + TruncateAddr(h.Hex()), err
		})

	case "s":
		sw, ok := m.switcher()
		if !ok {
			return m, nil
		}
		m.busy = "Switching wallet"
		next := m.nextSigner
		return m, m.run("switch wallet", func(ctx context.Context) (string, error) {
			signer, err := next()
			if err != nil {
				return "", err
			}
			sw.SwitchSigner(signer)
			return "Switched to " + TruncateAddr(signer.Address()), nil
		})

	case "r":
		m.notice, m.err = "", ""
		return m, m.run("reinitialize", func(ctx context.Context) (string, error) {
			return "", m.ctrl.Reinitialize(ctx)
		})
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	s := m.state
	var sb strings.Builder
	sb.WriteString(Banner())

	if !s.ProviderDetected {
		sb.WriteString(Meta("Loading web3...") + "\n")
		return StylePanel.Render(sb.String()) + "\n" + m.help()
	}

	sb.WriteString(Meta("Status:  ") + StatusBadge(s.Status) + "\n")
	if s.NetworkID != "" {
		sb.WriteString(Meta("Network: ") + StyleNetwork.Render(s.Network().String()) + "\n")
	}

	switch {
	case s.Account != nil:
		sb.WriteString(Meta("Account: ") + Addr(s.Account.Hex()) + "\n")
	case !s.HasProvider():
		sb.WriteString(Warn("Wallet is not detected!") + "\n")
		sb.WriteString(Hint(fmt.Sprintf("Start a node at %s or set provider_url, then press r", m.providerURL)) + "\n")
	default:
		sb.WriteString(Meta("Account: ") + StyleKey.Render("[c]") + " Connect wallet\n")
	}

	sb.WriteString("\n" + Meta("Current Contract Balance") + "\n")
	sb.WriteString(StyleBalance.Render(s.Balance()+" ETH") + "\n")
	if s.SyncErr != nil {
		sb.WriteString(Meta("balance may be stale: "+reason(s.SyncErr)) + "\n")
	}

	if s.WrongNetwork() {
		sb.WriteString("\n" + Warn(fmt.Sprintf("Wrong network (%s). Connect to the network the Faucet is deployed on.", s.Network())) + "\n")
	}

	sb.WriteString("\n" + m.actions() + "\n")

	switch {
	case m.busy != "":
		sb.WriteString(Meta(m.busy+"...") + "\n")
	case m.err != "":
		sb.WriteString(Err(m.err) + "\n")
	case m.notice != "":
		sb.WriteString(Success(m.notice) + "\n")
	}

	return StylePanel.Render(strings.TrimRight(sb.String(), "\n")) + "\n" + m.help()
}

func (m dashboardModel) actions() string {
	donate := "[d] Donate 1 ETH"
	withdraw := "[w] Withdraw 0.5 ETH"
	if !m.state.Connected() || m.busy != "" {
		return Meta(donate + "   " + withdraw)
	}
	return StyleKey.Render(donate) + "   " + StyleKey.Render(withdraw)
}

// switcher returns the provider's signer switch when wallet switching is
// enabled and the provider signs locally.
func (m dashboardModel) switcher() (signerSwitcher, bool) {
	if m.nextSigner == nil {
		return nil, false
	}
	sw, ok := m.state.Provider.(signerSwitcher)
	return sw, ok
}

func (m dashboardModel) help() string {
	if _, ok := m.switcher(); ok {
		return Meta("s switch wallet · r reinitialize · q quit")
	}
	return Meta("r reinitialize · q quit")
}

func (m dashboardModel) waitForState() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.updates:
			return stateMsg(s)
		case err := <-m.sub.Err():
			return subClosedMsg{err: err}
		}
	}
}

func (m dashboardModel) run(action string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		detail, err := fn(m.ctx)
		return actionMsg{action: action, detail: detail, err: err}
	}
}

// reason strips wrapping so the dashboard shows the node's own message.
func reason(err error) string {
	var txErr *faucet.TransactionFailedError
	if errors.As(err, &txErr) && txErr.Reason != "" {
		return txErr.Reason
	}
	return errors.UnwrapAll(err).Error()
}
